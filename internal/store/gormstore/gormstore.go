// Package gormstore implements the engine's audit journal on top of GORM,
// backed by sqlite or Postgres.
package gormstore

import (
	"context"
	"time"

	"github.com/RichoDemus/payments-engine/pkg/engine"
	"gorm.io/gorm"
)

const (
	errorOperationJournal = "journal"
	errorSubjectTxn       = "transaction"
	errorSubjectSnapshot  = "snapshot"
	errorCodeInsert       = "insert"
	errorCodeMigrate      = "migrate"
)

// Journal implements engine.Journal using GORM.
type Journal struct {
	db *gorm.DB
}

var _ engine.Journal = (*Journal)(nil)

// New returns a Journal backed by gorm.DB.
func New(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Migrate creates the journal tables if they do not exist.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TransactionRecord{}, &SnapshotRecord{}); err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectTxn, errorCodeMigrate, err)
	}
	return nil
}

// RecordTransaction appends one accepted transaction to the journal.
func (journal *Journal) RecordTransaction(ctx context.Context, transaction engine.Transaction) error {
	record := TransactionRecord{
		Type:      transaction.Type.String(),
		ClientID:  uint16(transaction.Client),
		TxID:      uint32(transaction.TxID),
		Amount:    transaction.Amount.String(),
		CreatedAt: time.Now().UTC(),
	}
	if err := journal.db.WithContext(ctx).Create(&record).Error; err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectTxn, errorCodeInsert, err)
	}
	return nil
}

// RecordSnapshot appends one final account snapshot to the journal.
func (journal *Journal) RecordSnapshot(ctx context.Context, snapshot engine.Snapshot) error {
	record := SnapshotRecord{
		ClientID:  uint16(snapshot.Client),
		Available: snapshot.Available.String(),
		Held:      snapshot.Held.String(),
		Total:     snapshot.Total.String(),
		Locked:    snapshot.Locked,
		CreatedAt: time.Now().UTC(),
	}
	if err := journal.db.WithContext(ctx).Create(&record).Error; err != nil {
		return engine.WrapError(errorOperationJournal, errorSubjectSnapshot, errorCodeInsert, err)
	}
	return nil
}
