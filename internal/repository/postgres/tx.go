package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"esfhub/internal/port"
)

type unitOfWork struct {
	db *sqlx.DB
}

// NewUnitOfWork creates a UnitOfWork that runs each Do in one transaction.
func NewUnitOfWork(db *sqlx.DB) port.UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores port.SyncStores) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unitOfWork.Do begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	stores := port.SyncStores{
		References: NewReferenceRepo(tx),
		Invoices:   NewInvoiceRepo(tx),
	}
	if err := fn(ctx, stores); err != nil {
		rollback(tx, "unitOfWork.Do")
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unitOfWork.Do commit: %w", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, op string) {
	if err := tx.Rollback(); err != nil {
		log.Error().Err(err).Str("op", op).Msg("transaction rollback failed")
	}
}
