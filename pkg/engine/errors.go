package engine

import (
	"errors"
	"fmt"
)

// Domain-level error values. All of them are advisory: the engine treats every
// rule violation as "ignore this record and continue".
var (
	ErrAccountLocked          = errors.New("account locked")
	ErrDuplicateTransaction   = errors.New("duplicate transaction id")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnknownTransaction     = errors.New("unknown transaction id")
	ErrTransactionDisputed    = errors.New("transaction already disputed or settled")
	ErrTransactionNotDisputed = errors.New("transaction not under dispute")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
