package loan

import "time"

type LoanItemRequest struct {
	ModelID  int64 `json:"model_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

type CreateLoanRequest struct {
	Items   []LoanItemRequest `json:"items" binding:"required,min=1"`
	DueDate time.Time         `json:"due_date" binding:"required"`
	Purpose string            `json:"purpose"`
}

// AssignmentRequest carries the exact units the approver hands out for one
// line item. The count must equal the requested quantity.
type AssignmentRequest struct {
	ModelID int64   `json:"model_id" binding:"required"`
	UnitIDs []int64 `json:"unit_ids" binding:"required,min=1"`
}

type ApproveLoanRequest struct {
	Assignments []AssignmentRequest `json:"assignments" binding:"required,min=1"`
}

type RejectLoanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReturnLine reports, per model, which units came back and which of those
// are broken. BrokenUnitIDs must be a subset of UnitIDs.
type ReturnLine struct {
	ModelID       int64   `json:"model_id" binding:"required"`
	UnitIDs       []int64 `json:"unit_ids" binding:"required,min=1"`
	BrokenUnitIDs []int64 `json:"broken_unit_ids"`
}

type ReturnRequest struct {
	Lines []ReturnLine `json:"lines" binding:"required,min=1"`
}
