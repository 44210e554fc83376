// Package database carries the gorm transaction through context.Context so
// repositories of different features can join the same unit of work.
package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres SQLSTATEs.
const (
	pgLockNotAvailable = "55P03"
	pgUniqueViolation  = "23505"
)

type txKey struct{}

type (
	Transactor interface {
		// WithinTransaction runs fn in a transaction. Calls nested inside fn
		// become savepoints of the outer transaction.
		WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	}

	transactor struct {
		db *gorm.DB
	}
)

func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return Conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction bound to ctx, or db when there is none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
// Dialects without row locks (SQLite) drop the clause and rely on their
// database-level write lock instead.
func ForUpdate() clause.Expression {
	return clause.Locking{Strength: "UPDATE"}
}

// ForUpdateNoWait fails immediately instead of queueing behind another holder.
func ForUpdateNoWait() clause.Expression {
	return clause.Locking{Strength: "UPDATE", Options: "NOWAIT"}
}

func IsLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgLockNotAvailable
	}
	return false
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
