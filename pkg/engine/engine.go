package engine

import "context"

// Engine routes transactions to per-client accounts in input order. It owns
// the client-to-account mapping exclusively; there is no external mutation
// path, so a single Engine must only be driven from one goroutine at a time.
type Engine struct {
	accounts map[ClientID]*Account
	logger   OperationLogger
	journal  Journal
}

// NewEngine wires an Engine.
func NewEngine(options ...EngineOption) *Engine {
	engine := &Engine{accounts: make(map[ClientID]*Account)}
	for _, option := range options {
		if option != nil {
			option(engine)
		}
	}
	return engine
}

// Process applies one transaction. Rule violations degrade to a no-op on that
// single record and are reported through the operation logger; the engine
// never halts processing of subsequent records.
func (engine *Engine) Process(ctx context.Context, transaction Transaction) {
	account, exists := engine.accounts[transaction.Client]
	if !exists {
		if !transaction.Type.Funded() {
			// No history can exist for an unseen client, so a dispute-family
			// record cannot match anything. No account is created.
			engine.logOperation(ctx, transaction, ErrUnknownTransaction)
			return
		}
		account = NewAccount(transaction.Client)
		engine.accounts[transaction.Client] = account
	}
	applyErr := account.Apply(transaction)
	if applyErr == nil {
		engine.recordTransaction(ctx, transaction)
	}
	engine.logOperation(ctx, transaction, applyErr)
}

// Snapshots returns the final state of every client seen so far, in
// unspecified order. Callers that need a deterministic report sort by client
// id at the reporting boundary.
func (engine *Engine) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0, len(engine.accounts))
	for _, account := range engine.accounts {
		snapshots = append(snapshots, account.Snapshot())
	}
	return snapshots
}

// Snapshot returns the state of a single client, if that client has been seen.
func (engine *Engine) Snapshot(client ClientID) (Snapshot, bool) {
	account, exists := engine.accounts[client]
	if !exists {
		return Snapshot{}, false
	}
	return account.Snapshot(), true
}

func (engine *Engine) recordTransaction(ctx context.Context, transaction Transaction) {
	if engine.journal == nil {
		return
	}
	if err := engine.journal.RecordTransaction(ctx, transaction); err != nil && engine.logger != nil {
		// Journal failures must not block processing.
		engine.logger.LogOperation(ctx, OperationLog{
			Operation: operationJournal,
			Client:    transaction.Client,
			TxID:      transaction.TxID,
			Amount:    transaction.Amount,
			Status:    operationStatusError,
			Error:     WrapError(operationJournal, errorSubjectTransaction, errorCodeRecord, err),
		})
	}
}

func (engine *Engine) logOperation(ctx context.Context, transaction Transaction, operationError error) {
	if engine.logger == nil {
		return
	}
	status := operationStatusOK
	if operationError != nil {
		status = operationStatusIgnored
	}
	engine.logger.LogOperation(ctx, OperationLog{
		Operation: transaction.Type.String(),
		Client:    transaction.Client,
		TxID:      transaction.TxID,
		Amount:    transaction.Amount,
		Status:    status,
		Error:     operationError,
	})
}
