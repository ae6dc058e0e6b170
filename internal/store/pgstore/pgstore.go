// Package pgstore implements the engine's audit journal directly on pgx, for
// deployments that already hold a Postgres pool and do not want GORM in the
// write path.
package pgstore

import (
	"context"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	errorOperationJournal = "journal"
	errorSubjectTxn       = "transaction"
	errorSubjectSnapshot  = "snapshot"
	errorCodeInsert       = "insert"
	errorCodeMigrate      = "migrate"

	sqlCreateTransactions = `
		create table if not exists accepted_transactions(
			record_id uuid primary key default gen_random_uuid(),
			type text not null,
			client_id integer not null,
			tx_id bigint not null,
			amount numeric not null,
			created_at timestamptz not null default now()
		)
	`

	sqlCreateSnapshots = `
		create table if not exists account_snapshots(
			record_id uuid primary key default gen_random_uuid(),
			client_id integer not null,
			available numeric not null,
			held numeric not null,
			total numeric not null,
			locked boolean not null,
			created_at timestamptz not null default now()
		)
	`

	sqlInsertTransaction = `
		insert into accepted_transactions(type, client_id, tx_id, amount)
		values($1, $2, $3, $4)
	`

	sqlInsertSnapshot = `
		insert into account_snapshots(client_id, available, held, total, locked)
		values($1, $2, $3, $4, $5)
	`
)

// Journal implements engine.Journal over a pgx pool.
type Journal struct {
	pool *pgxpool.Pool
}

var _ engine.Journal = (*Journal)(nil)

// New returns a Journal backed by the given pool.
func New(pool *pgxpool.Pool) *Journal {
	return &Journal{pool: pool}
}

// Migrate creates the journal tables if they do not exist.
func (journal *Journal) Migrate(ctx context.Context) error {
	if _, err := journal.pool.Exec(ctx, sqlCreateTransactions); err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectTxn, errorCodeMigrate, err)
	}
	if _, err := journal.pool.Exec(ctx, sqlCreateSnapshots); err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectSnapshot, errorCodeMigrate, err)
	}
	return nil
}

// RecordTransaction appends one accepted transaction to the journal.
func (journal *Journal) RecordTransaction(ctx context.Context, transaction engine.Transaction) error {
	_, err := journal.pool.Exec(ctx, sqlInsertTransaction,
		transaction.Type.String(),
		int32(transaction.Client),
		int64(transaction.TxID),
		transaction.Amount.String(),
	)
	if err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectTxn, errorCodeInsert, err)
	}
	return nil
}

// RecordSnapshot appends one final account snapshot to the journal.
func (journal *Journal) RecordSnapshot(ctx context.Context, snapshot engine.Snapshot) error {
	_, err := journal.pool.Exec(ctx, sqlInsertSnapshot,
		int32(snapshot.Client),
		snapshot.Available.String(),
		snapshot.Held.String(),
		snapshot.Total.String(),
		snapshot.Locked,
	)
	if err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectSnapshot, errorCodeInsert, err)
	}
	return nil
}
