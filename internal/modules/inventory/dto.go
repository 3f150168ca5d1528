package inventory

import (
	"time"

	"labstock/internal/domain"
)

type CreateModelRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Verified bool   `json:"verified"`
}

type IntakeRequest struct {
	ModelID       int64                `json:"model_id" binding:"required"`
	Quantity      int                  `json:"quantity" binding:"required,gt=0"`
	Condition     domain.UnitCondition `json:"condition"`
	Location      domain.Location      `json:"location"`
	PurchasePrice float64              `json:"purchase_price"`
	Supplier      string               `json:"supplier"`
	PurchaseDate  *time.Time           `json:"purchase_date"`
	WarrantyUntil *time.Time           `json:"warranty_until"`
}

type SuggestResponse struct {
	ModelID  int64           `json:"model_id"`
	Location domain.Location `json:"location"`
	Quantity int             `json:"quantity"`
	Units    []ScoredUnit    `json:"units"`
}
