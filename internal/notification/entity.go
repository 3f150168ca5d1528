package notification

import (
	"database/sql"
	"time"
)

// Notification type constants
const (
	TypeLoanApproved      = "loan.approved"
	TypeLoanRejected      = "loan.rejected"
	TypeLoanReturnOpened  = "loan.return_opened"
	TypeLoanSettled       = "loan.settled"
	TypeTransferApproved  = "transfer.approved"
	TypeTransferRejected  = "transfer.rejected"
	TypeTransferDelivered = "transfer.delivered"
	TypeRepairOpened      = "repair.opened"
	TypeRepairDone        = "repair.done"
	TypeRepairRejected    = "repair.rejected"
)

// Notification represents a user notification record.
type Notification struct {
	ID         int64        `gorm:"primaryKey" json:"id"`
	UserID     int64        `gorm:"index" json:"user_id"`
	Type       string       `gorm:"index" json:"type"`
	Title      string       `json:"title"`
	Body       string       `json:"body"`
	EntityType string       `json:"entity_type,omitempty"`
	EntityID   int64        `json:"entity_id,omitempty"`
	ReadAt     sql.NullTime `json:"read_at"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// MarkAsRead marks a notification as read.
func (n *Notification) MarkAsRead() {
	n.ReadAt = sql.NullTime{Time: time.Now(), Valid: true}
}

// IsRead returns true if notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt.Valid
}
