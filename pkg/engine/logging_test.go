package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type recorderLogger struct {
	entries []OperationLog
}

func (logger *recorderLogger) LogOperation(_ context.Context, entry OperationLog) {
	logger.entries = append(logger.entries, entry)
}

func TestProcessLogsAcceptedOperation(test *testing.T) {
	test.Parallel()
	logger := &recorderLogger{}
	engine := NewEngine(WithOperationLogger(logger))
	deposit := mustDeposit(test, 1, 1, "5.0")
	engine.Process(context.Background(), deposit)
	if len(logger.entries) != 1 {
		test.Fatalf("expected one log entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Operation != TypeDeposit.String() || entry.Client != 1 || entry.TxID != 1 {
		test.Fatalf("unexpected log entry: %+v", entry)
	}
	if !entry.Amount.Equal(deposit.Amount) {
		test.Fatalf("expected amount %s, got %s", deposit.Amount, entry.Amount)
	}
	if entry.Status != operationStatusOK || entry.Error != nil {
		test.Fatalf("expected ok entry, got %+v", entry)
	}
}

func TestProcessLogsIgnoredOperations(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name        string
		setup       []Transaction
		transaction Transaction
		wantErr     error
	}{
		{
			name:        "unknown dispute reference",
			setup:       []Transaction{},
			transaction: NewDispute(1, 99),
			wantErr:     ErrUnknownTransaction,
		},
		{
			name:        "dispute against unseen client",
			transaction: NewDispute(7, 1),
			wantErr:     ErrUnknownTransaction,
		},
		{
			name:        "insufficient funds",
			setup:       []Transaction{},
			transaction: Transaction{Type: TypeWithdrawal, Client: 1, TxID: 2, Amount: decimal.NewFromInt(100)},
			wantErr:     ErrInsufficientFunds,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			logger := &recorderLogger{}
			engine := NewEngine(WithOperationLogger(logger))
			if testCase.setup != nil {
				processAll(test, engine, mustDeposit(test, 1, 1, "5.0"))
				processAll(test, engine, testCase.setup...)
			}
			logger.entries = nil
			engine.Process(context.Background(), testCase.transaction)
			if len(logger.entries) != 1 {
				test.Fatalf("expected one log entry, got %d", len(logger.entries))
			}
			entry := logger.entries[0]
			if entry.Status != operationStatusIgnored {
				test.Fatalf("expected ignored status, got %q", entry.Status)
			}
			if !errors.Is(entry.Error, testCase.wantErr) {
				test.Fatalf("expected %v, got %v", testCase.wantErr, entry.Error)
			}
		})
	}
}
