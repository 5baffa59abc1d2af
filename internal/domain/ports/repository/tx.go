package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via tx.
//
// Repositories accept the handle and bind their queries to it, so that a
// conditional UPDATE and the rows written next to it (history, outbox) commit
// or roll back together. Repositories MUST accept a nil tx (pool path).
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
//		ok, err := payments.TransitionStatus(ctx, tx, ...)
//		...
//		return outbox.Enqueue(ctx, tx, ev)
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
