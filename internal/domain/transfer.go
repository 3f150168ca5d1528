package domain

import "time"

type TransferStatus string

const (
	TransferWaiting   TransferStatus = "waiting"
	TransferApproved  TransferStatus = "approved"
	TransferRejected  TransferStatus = "rejected"
	TransferDelivered TransferStatus = "delivered"
)

// TransferRequest is a lab manager's request to pull stock from the
// warehouse. Approval reserves concrete units (ReservedUnitIDs) without
// relocating them; delivery performs the physical move.
type TransferRequest struct {
	ID          int64 `json:"id" gorm:"primaryKey"`
	ModelID     int64 `json:"model_id" gorm:"index"`
	Quantity    int   `json:"quantity"`
	RequestedBy int64 `json:"requested_by" gorm:"index"`

	Status          TransferStatus `json:"status" gorm:"index"`
	ReservedUnitIDs []int64        `json:"reserved_unit_ids,omitempty" gorm:"serializer:json"`

	ApprovedBy   *int64     `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CertificateDecision string

const (
	CertApproved CertificateDecision = "approved"
	CertRejected CertificateDecision = "rejected"
)

// Certificate is the append-only audit snapshot of a transfer decision. It
// freezes the exact unit ids granted, surviving later mutation of the
// request itself. Delivery only stamps DeliveredAt.
type Certificate struct {
	ID         int64               `json:"id" gorm:"primaryKey"`
	Number     string              `json:"number" gorm:"uniqueIndex"`
	TransferID int64               `json:"transfer_id" gorm:"index"`
	ModelID    int64               `json:"model_id"`
	Quantity   int                 `json:"quantity"`
	Decision   CertificateDecision `json:"decision"`
	UnitIDs    []int64             `json:"unit_ids,omitempty" gorm:"serializer:json"`
	DecidedBy  int64               `json:"decided_by"`
	Reason     string              `json:"reason,omitempty"`

	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
