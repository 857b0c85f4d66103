package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

type referenceRepo struct {
	db sqlx.ExtContext
}

// NewReferenceRepo creates a ReferenceRepository over a pool or a transaction.
func NewReferenceRepo(db sqlx.ExtContext) port.ReferenceRepository {
	return &referenceRepo{db: db}
}

// selectList aliases the kind's columns onto the domain.Reference field names.
func selectList(d domain.RefDescriptor) string {
	cols := []string{"id", d.KeyColumn + " AS key"}
	for _, a := range d.Attrs {
		cols = append(cols, a.Column+" AS "+string(a.Field))
	}
	cols = append(cols, "created_at")
	return strings.Join(cols, ", ")
}

func (r *referenceRepo) GetOrCreate(ctx context.Context, ref *domain.Reference) (*domain.Reference, bool, error) {
	d, err := domain.LookupRefKind(ref.Kind)
	if err != nil {
		return nil, false, err
	}

	cols := []string{d.KeyColumn}
	args := []interface{}{ref.Key}
	for _, a := range d.Attrs {
		cols = append(cols, a.Column)
		args = append(args, ref.Value(a.Field))
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	// A concurrent insert of the same key makes this statement wait for the
	// other transaction; on its commit the row is skipped and read back below.
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING RETURNING %s`,
		d.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), d.KeyColumn, selectList(d))

	var rec domain.Reference
	err = sqlx.GetContext(ctx, r.db, &rec, query, args...)
	if err == nil {
		rec.Kind = d.Kind
		return &rec, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("referenceRepo.GetOrCreate %s: %w", d.Table, err)
	}

	err = sqlx.GetContext(ctx, r.db, &rec,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", selectList(d), d.Table, d.KeyColumn), ref.Key)
	if err != nil {
		return nil, false, fmt.Errorf("referenceRepo.GetOrCreate %s lookup: %w", d.Table, err)
	}
	rec.Kind = d.Kind
	return &rec, false, nil
}

func (r *referenceRepo) GetByID(ctx context.Context, kind domain.RefKind, id int64) (*domain.Reference, error) {
	d, err := domain.LookupRefKind(kind)
	if err != nil {
		return nil, err
	}
	var rec domain.Reference
	err = sqlx.GetContext(ctx, r.db, &rec,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", selectList(d), d.Table), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("referenceRepo.GetByID %s: %w", d.Table, err)
	}
	rec.Kind = d.Kind
	return &rec, nil
}

func (r *referenceRepo) List(ctx context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error) {
	d, err := domain.LookupRefKind(kind)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = sqlx.GetContext(ctx, r.db, &total, fmt.Sprintf("SELECT COUNT(*) FROM %s", d.Table))
	if err != nil {
		return nil, 0, fmt.Errorf("referenceRepo.List %s count: %w", d.Table, err)
	}

	var recs []domain.Reference
	err = sqlx.SelectContext(ctx, r.db, &recs,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2", selectList(d), d.Table, d.KeyColumn),
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("referenceRepo.List %s: %w", d.Table, err)
	}
	for i := range recs {
		recs[i].Kind = d.Kind
	}
	return recs, total, nil
}
