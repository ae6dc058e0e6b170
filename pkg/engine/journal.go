package engine

import "context"

// Journal receives accepted transactions and final balances for audit. The
// engine never reads from the journal; a failed write is logged and otherwise
// ignored so that journal trouble cannot stall processing.
type Journal interface {
	RecordTransaction(ctx context.Context, transaction Transaction) error
	RecordSnapshot(ctx context.Context, snapshot Snapshot) error
}

// WithJournal wires an audit journal that records every accepted transaction.
func WithJournal(journal Journal) EngineOption {
	return func(engine *Engine) {
		engine.journal = journal
	}
}
