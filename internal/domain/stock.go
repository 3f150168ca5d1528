package domain

import "time"

// StockRow is the per-model-per-location aggregate counter cache. It is a
// derived view: Reconcile recomputes it from unit records and is its only
// writer. Units at the repair shop count toward the row of their
// OriginLocation under Repairing.
//
// Retired and maintenance units are excluded, so the row always satisfies
// Total == Available + Borrowed + Broken + Repairing.
type StockRow struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ModelID   int64     `json:"model_id" gorm:"uniqueIndex:idx_stock_model_location"`
	Location  Location  `json:"location" gorm:"uniqueIndex:idx_stock_model_location"`
	Total     int       `json:"total"`
	Available int       `json:"available"`
	Borrowed  int       `json:"borrowed"`
	Broken    int       `json:"broken"`
	Repairing int       `json:"repairing"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StockRow) TableName() string { return "stock_rows" }
