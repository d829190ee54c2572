package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// SQLRepository implements the persistence ports on PostgreSQL with the
// PostGIS extension.
type SQLRepository struct {
	db *sql.DB
}

var (
	_ ports.UserRepository        = (*SQLRepository)(nil)
	_ ports.SponsorshipRepository = (*SQLRepository)(nil)
	_ ports.ProximityReader       = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqInvalidText         = pq.ErrorCode("22P02")
)

// translate maps driver errors onto the port sentinels. Malformed ids can
// never match a row, so they read as not found.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, ports.ErrDuplicate)
		case pqForeignKeyViolation, pqInvalidText:
			return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ports.ErrNotFound)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrNotFound)
}
