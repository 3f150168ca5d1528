package domain

import "time"

type RepairStatus string

const (
	RepairPending    RepairStatus = "pending"
	RepairApproved   RepairStatus = "approved"
	RepairInProgress RepairStatus = "in_progress"
	RepairDone       RepairStatus = "done"
	RepairRejected   RepairStatus = "rejected"
)

// Open reports whether the ticket still blocks a new one for the same unit.
func (s RepairStatus) Open() bool {
	return s == RepairPending || s == RepairApproved || s == RepairInProgress
}

type RepairType string

const (
	RepairInternal RepairType = "internal"
	RepairWarranty RepairType = "warranty"
	RepairPaid     RepairType = "paid"
)

func (t RepairType) Valid() bool {
	return t == RepairInternal || t == RepairWarranty || t == RepairPaid
}

// RepairTicket tracks fixing one broken unit. At most one open ticket
// (pending/approved/in_progress) may exist per unit. LoanID links tickets
// spawned by a loan return intake so completion can unblock the loan.
type RepairTicket struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	UnitID     int64  `json:"unit_id" gorm:"index"`
	ModelID    int64  `json:"model_id"`
	ReporterID int64  `json:"reporter_id"`
	LoanID     *int64 `json:"loan_id,omitempty" gorm:"index"`

	Reason string       `json:"reason"`
	Type   RepairType   `json:"type"`
	Status RepairStatus `json:"status" gorm:"index"`

	LaborCost float64 `json:"labor_cost"`
	PartsCost float64 `json:"parts_cost"`

	// Compensation marks a unit that could not be fixed: the unit is
	// written off and the owning loan moves to pending_compensation.
	Compensation bool `json:"compensation"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t RepairTicket) TotalCost() float64 { return t.LaborCost + t.PartsCost }
