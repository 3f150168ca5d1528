package repair

import "labstock/internal/domain"

type CreateTicketRequest struct {
	UnitID int64             `json:"unit_id" binding:"required"`
	Reason string            `json:"reason" binding:"required"`
	Type   domain.RepairType `json:"type" binding:"required"`
}

type CompleteTicketRequest struct {
	LaborCost    float64 `json:"labor_cost" binding:"gte=0"`
	PartsCost    float64 `json:"parts_cost" binding:"gte=0"`
	Compensation bool    `json:"compensation"`
}

type RejectTicketRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ListTicketsQuery struct {
	UnitID int64               `form:"unit_id"`
	LoanID int64               `form:"loan_id"`
	Status domain.RepairStatus `form:"status"`
}
