package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionRecord mirrors the accepted_transactions table. Amounts are kept
// as text so decimal values survive the round trip without float drift.
type TransactionRecord struct {
	RecordID  string    `gorm:"type:uuid;primaryKey"`
	Type      string    `gorm:"not null"`
	ClientID  uint16    `gorm:"not null;index:idx_transactions_client_created,priority:1"`
	TxID      uint32    `gorm:"not null"`
	Amount    string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_transactions_client_created,priority:2"`
}

func (TransactionRecord) TableName() string { return "accepted_transactions" }

func (record *TransactionRecord) BeforeCreate(tx *gorm.DB) error {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()
	}
	return nil
}

// SnapshotRecord mirrors the account_snapshots table.
type SnapshotRecord struct {
	RecordID  string    `gorm:"type:uuid;primaryKey"`
	ClientID  uint16    `gorm:"not null;index:idx_snapshots_client"`
	Available string    `gorm:"not null"`
	Held      string    `gorm:"not null"`
	Total     string    `gorm:"not null"`
	Locked    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (SnapshotRecord) TableName() string { return "account_snapshots" }

func (record *SnapshotRecord) BeforeCreate(tx *gorm.DB) error {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()
	}
	return nil
}
