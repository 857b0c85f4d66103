package port

import (
	"context"

	"esfhub/internal/domain"
)

// IdentityResolver turns a bearer token into the calling identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*domain.Identity, error)
}
