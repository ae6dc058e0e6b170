package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// EngineOption configures an Engine instance.
type EngineOption func(*Engine)

// OperationLogger records the outcome of every processed transaction.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes the outcome of applying one transaction record.
type OperationLog struct {
	Operation string
	Client    ClientID
	TxID      TransactionID
	Amount    decimal.Decimal
	Status    string
	Error     error
}

// WithOperationLogger wires a logger that receives a callback per record.
func WithOperationLogger(logger OperationLogger) EngineOption {
	return func(engine *Engine) {
		engine.logger = logger
	}
}
