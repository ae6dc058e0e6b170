package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies an account owner.
type ClientID uint16

// TransactionID identifies a deposit or withdrawal record. Dispute, resolve and
// chargeback records reuse the id of the transaction they act on.
type TransactionID uint32

// Type enumerates transaction kinds.
type Type string

const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeDispute    Type = "dispute"
	TypeResolve    Type = "resolve"
	TypeChargeback Type = "chargeback"
)

// ParseType normalizes a raw kind string into a Type.
func ParseType(raw string) (Type, error) {
	normalized := Type(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case TypeDeposit, TypeWithdrawal, TypeDispute, TypeResolve, TypeChargeback:
		return normalized, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, raw)
	}
}

// String returns the lowercase kind name.
func (transactionType Type) String() string {
	return string(transactionType)
}

// Funded reports whether the kind introduces its own amount. Deposits and
// withdrawals are funded; the dispute family references an earlier transaction
// and carries no amount of its own.
func (transactionType Type) Funded() bool {
	return transactionType == TypeDeposit || transactionType == TypeWithdrawal
}

// DisputeStatus tracks the lifecycle of a deposit inside the account history.
// Resolved and chargebacked are terminal per transaction.
type DisputeStatus string

const (
	DisputeStatusNone         DisputeStatus = "none"
	DisputeStatusDisputed     DisputeStatus = "disputed"
	DisputeStatusResolved     DisputeStatus = "resolved"
	DisputeStatusChargebacked DisputeStatus = "chargebacked"
)

// Transaction is one immutable input record.
type Transaction struct {
	Type   Type
	Client ClientID
	TxID   TransactionID
	Amount decimal.Decimal
}

// NewDeposit builds a deposit record; the amount must be strictly positive.
func NewDeposit(client ClientID, txID TransactionID, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: deposit amount must be greater than zero", ErrInvalidAmount)
	}
	return Transaction{Type: TypeDeposit, Client: client, TxID: txID, Amount: amount}, nil
}

// NewWithdrawal builds a withdrawal record; the amount must be strictly positive.
func NewWithdrawal(client ClientID, txID TransactionID, amount decimal.Decimal) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: withdrawal amount must be greater than zero", ErrInvalidAmount)
	}
	return Transaction{Type: TypeWithdrawal, Client: client, TxID: txID, Amount: amount}, nil
}

// NewDispute builds a dispute referencing an earlier deposit.
func NewDispute(client ClientID, txID TransactionID) Transaction {
	return Transaction{Type: TypeDispute, Client: client, TxID: txID}
}

// NewResolve builds a resolve for a currently disputed deposit.
func NewResolve(client ClientID, txID TransactionID) Transaction {
	return Transaction{Type: TypeResolve, Client: client, TxID: txID}
}

// NewChargeback builds a chargeback for a currently disputed deposit.
func NewChargeback(client ClientID, txID TransactionID) Transaction {
	return Transaction{Type: TypeChargeback, Client: client, TxID: txID}
}

// NewTransaction builds a record of any kind, enforcing that only funded kinds
// carry an amount.
func NewTransaction(transactionType Type, client ClientID, txID TransactionID, amount decimal.Decimal) (Transaction, error) {
	switch transactionType {
	case TypeDeposit:
		return NewDeposit(client, txID, amount)
	case TypeWithdrawal:
		return NewWithdrawal(client, txID, amount)
	case TypeDispute:
		return NewDispute(client, txID), nil
	case TypeResolve:
		return NewResolve(client, txID), nil
	case TypeChargeback:
		return NewChargeback(client, txID), nil
	default:
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidTransactionType, transactionType)
	}
}

// Snapshot is the read-only view of one account. Total is derived as
// available plus held at the moment the snapshot is taken.
type Snapshot struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
