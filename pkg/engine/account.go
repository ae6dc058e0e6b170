package engine

import "github.com/shopspring/decimal"

// depositRecord keeps the original deposit amount and its dispute state for the
// lifetime of the account. Entries are never removed once written, including
// after a resolve or chargeback, so the history stays auditable.
type depositRecord struct {
	amount decimal.Decimal
	status DisputeStatus
}

// Account owns one client's monetary state and the deposit history that later
// dispute-family records are matched against.
type Account struct {
	client    ClientID
	available decimal.Decimal
	held      decimal.Decimal
	locked    bool
	deposits  map[TransactionID]*depositRecord
}

// NewAccount returns a zero-balance account for the given client.
func NewAccount(client ClientID) *Account {
	return &Account{
		client:    client,
		available: decimal.Zero,
		held:      decimal.Zero,
		deposits:  make(map[TransactionID]*depositRecord),
	}
}

// Apply interprets one transaction against the account. The returned error is
// advisory: callers following the ignore-and-continue policy treat every
// non-nil result as a no-op on that single record. Either the full rule fires
// or nothing changes.
func (account *Account) Apply(transaction Transaction) error {
	if account.locked {
		return ErrAccountLocked
	}
	switch transaction.Type {
	case TypeDeposit:
		return account.applyDeposit(transaction)
	case TypeWithdrawal:
		return account.applyWithdrawal(transaction)
	case TypeDispute:
		return account.applyDispute(transaction)
	case TypeResolve:
		return account.applyResolve(transaction)
	case TypeChargeback:
		return account.applyChargeback(transaction)
	default:
		return ErrInvalidTransactionType
	}
}

func (account *Account) applyDeposit(transaction Transaction) error {
	if !transaction.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, exists := account.deposits[transaction.TxID]; exists {
		return ErrDuplicateTransaction
	}
	account.available = account.available.Add(transaction.Amount)
	account.deposits[transaction.TxID] = &depositRecord{
		amount: transaction.Amount,
		status: DisputeStatusNone,
	}
	return nil
}

func (account *Account) applyWithdrawal(transaction Transaction) error {
	if !transaction.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if account.available.Cmp(transaction.Amount) < 0 {
		return ErrInsufficientFunds
	}
	account.available = account.available.Sub(transaction.Amount)
	return nil
}

func (account *Account) applyDispute(transaction Transaction) error {
	record, exists := account.deposits[transaction.TxID]
	if !exists {
		return ErrUnknownTransaction
	}
	if record.status != DisputeStatusNone {
		return ErrTransactionDisputed
	}
	account.available = account.available.Sub(record.amount)
	account.held = account.held.Add(record.amount)
	record.status = DisputeStatusDisputed
	return nil
}

func (account *Account) applyResolve(transaction Transaction) error {
	record, exists := account.deposits[transaction.TxID]
	if !exists {
		return ErrUnknownTransaction
	}
	if record.status != DisputeStatusDisputed {
		return ErrTransactionNotDisputed
	}
	account.held = account.held.Sub(record.amount)
	account.available = account.available.Add(record.amount)
	record.status = DisputeStatusResolved
	return nil
}

func (account *Account) applyChargeback(transaction Transaction) error {
	record, exists := account.deposits[transaction.TxID]
	if !exists {
		return ErrUnknownTransaction
	}
	if record.status != DisputeStatusDisputed {
		return ErrTransactionNotDisputed
	}
	account.held = account.held.Sub(record.amount)
	record.status = DisputeStatusChargebacked
	account.locked = true
	return nil
}

// Client returns the owning client id.
func (account *Account) Client() ClientID {
	return account.client
}

// Locked reports whether a chargeback has frozen the account.
func (account *Account) Locked() bool {
	return account.locked
}

// DisputeStatus returns the current status of a deposit in the history.
func (account *Account) DisputeStatus(txID TransactionID) (DisputeStatus, bool) {
	record, exists := account.deposits[txID]
	if !exists {
		return "", false
	}
	return record.status, true
}

// Snapshot returns the account's current balances.
func (account *Account) Snapshot() Snapshot {
	return Snapshot{
		Client:    account.client,
		Available: account.available,
		Held:      account.held,
		Total:     account.available.Add(account.held),
		Locked:    account.locked,
	}
}
