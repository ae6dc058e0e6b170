// Package csvio parses transaction records from CSV input and renders account
// snapshots back out. The engine itself never touches the wire format.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"github.com/shopspring/decimal"
)

// ErrMalformedRecord marks rows that cannot be parsed into a transaction.
// Parse failures are fatal to the run, unlike engine-level rule violations.
var ErrMalformedRecord = errors.New("malformed record")

const (
	columnType   = 0
	columnClient = 1
	columnTx     = 2
	columnAmount = 3

	headerType = "type"
)

// Reader decodes transaction records from delimited text, one row per record.
// Rows look like `type, client, tx, amount`; dispute-family rows carry no
// amount. Field whitespace is trimmed and an optional header row is skipped.
type Reader struct {
	csv       *csv.Reader
	firstRead bool
}

// NewReader wraps an io.Reader producing CSV rows.
func NewReader(reader io.Reader) *Reader {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	return &Reader{csv: csvReader, firstRead: true}
}

// Read returns the next transaction, or io.EOF once the input is exhausted.
func (reader *Reader) Read() (engine.Transaction, error) {
	for {
		row, err := reader.csv.Read()
		if err != nil {
			return engine.Transaction{}, err
		}
		if reader.firstRead {
			reader.firstRead = false
			if isHeader(row) {
				continue
			}
		}
		return parseRow(row)
	}
}

func isHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[columnType]), headerType)
}

func parseRow(row []string) (engine.Transaction, error) {
	if len(row) < 3 {
		return engine.Transaction{}, fmt.Errorf("%w: expected at least 3 fields, got %d", ErrMalformedRecord, len(row))
	}
	transactionType, err := engine.ParseType(row[columnType])
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	client, err := parseClient(row[columnClient])
	if err != nil {
		return engine.Transaction{}, err
	}
	txID, err := parseTxID(row[columnTx])
	if err != nil {
		return engine.Transaction{}, err
	}
	amount := decimal.Zero
	if transactionType.Funded() {
		amount, err = parseAmount(row)
		if err != nil {
			return engine.Transaction{}, err
		}
	}
	transaction, err := engine.NewTransaction(transactionType, client, txID, amount)
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return transaction, nil
}

func parseClient(raw string) (engine.ClientID, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: client id %q", ErrMalformedRecord, raw)
	}
	return engine.ClientID(value), nil
}

func parseTxID(raw string) (engine.TransactionID, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: tx id %q", ErrMalformedRecord, raw)
	}
	return engine.TransactionID(value), nil
}

func parseAmount(row []string) (decimal.Decimal, error) {
	if len(row) <= columnAmount || strings.TrimSpace(row[columnAmount]) == "" {
		return decimal.Zero, fmt.Errorf("%w: missing amount", ErrMalformedRecord)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(row[columnAmount]))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrMalformedRecord, row[columnAmount])
	}
	return amount, nil
}
