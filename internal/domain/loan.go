package domain

import "time"

type LoanStatus string

const (
	LoanPending             LoanStatus = "pending"
	LoanApproved            LoanStatus = "approved"
	LoanRejected            LoanStatus = "rejected"
	LoanBorrowed            LoanStatus = "borrowed"
	LoanReturnRequested     LoanStatus = "return_requested"
	LoanReturnPending       LoanStatus = "return_pending"
	LoanReturned            LoanStatus = "returned"
	LoanPendingCompensation LoanStatus = "pending_compensation"
)

// LoanItem is one line of a loan: a model, how many units, and (after
// approval) exactly which units.
type LoanItem struct {
	ModelID  int64   `json:"model_id" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	UnitIDs  []int64 `json:"unit_ids,omitempty"`
}

// Loan is a student borrow record. Items holds units still out with the
// student; RepairingItems holds units the student surrendered broken that
// are at the repair shop and still block completion. A loan is returned
// only when both lists are empty.
type Loan struct {
	ID        int64 `json:"id" gorm:"primaryKey"`
	StudentID int64 `json:"student_id" gorm:"index"`

	Items          []LoanItem `json:"items" gorm:"serializer:json"`
	RepairingItems []LoanItem `json:"repairing_items" gorm:"serializer:json"`

	DueDate time.Time  `json:"due_date"`
	Purpose string     `json:"purpose,omitempty"`
	Status  LoanStatus `json:"status" gorm:"index"`

	ApprovedBy   *int64     `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settled reports whether every unit the student took has come back, good
// or via a completed repair.
func (l Loan) Settled() bool {
	return len(l.Items) == 0 && len(l.RepairingItems) == 0
}
