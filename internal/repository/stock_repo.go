package repository

import (
	"context"
	"errors"

	"labstock/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) Get(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error) {
	var row domain.StockRow
	err := r.db.WithContext(ctx).
		Where("model_id = ? AND location = ?", modelID, loc).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no units ever counted here: an all-zero row
		return &domain.StockRow{ModelID: modelID, Location: loc}, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *StockRepository) ListByModel(ctx context.Context, modelID int64) ([]domain.StockRow, error) {
	var rows []domain.StockRow
	err := r.db.WithContext(ctx).
		Where("model_id = ?", modelID).
		Order("location").
		Find(&rows).Error
	return rows, err
}

func (r *StockRepository) List(ctx context.Context) ([]domain.StockRow, error) {
	var rows []domain.StockRow
	err := r.db.WithContext(ctx).Order("model_id, location").Find(&rows).Error
	return rows, err
}

// Reconcile recomputes the (model, location) row from unit records in its
// own transaction. Unit mutations reconcile inside their own transaction
// instead; this entry point serves manual repair and the intake path.
func (r *StockRepository) Reconcile(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error) {
	var row *domain.StockRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = reconcileStock(tx, modelID, loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// reconcileStock rebuilds one aggregate row by counting units. It is the
// only writer of stock_rows and must run inside the same transaction as the
// unit mutation that made the row stale.
//
// Units physically at the repair shop count toward their origin
// warehouse/lab row under Repairing. Retired and maintenance units are not
// counted, so Total == Available + Borrowed + Broken + Repairing holds.
func reconcileStock(tx *gorm.DB, modelID int64, loc domain.Location) (*domain.StockRow, error) {
	if loc == domain.LocRepairShop {
		// repair_shop has no row of its own; its units roll up to origin
		return nil, nil
	}

	type statusCount struct {
		Status string
		N      int
	}
	var counts []statusCount
	err := tx.Model(&domain.Unit{}).
		Select("status, COUNT(*) AS n").
		Where(
			"model_id = ? AND ((location = ? AND status IN ?) OR (location = ? AND origin_location = ? AND status = ?))",
			modelID,
			loc, []domain.UnitStatus{domain.UnitAvailable, domain.UnitBorrowed, domain.UnitBroken},
			domain.LocRepairShop, loc, domain.UnitRepairing,
		).
		Group("status").
		Find(&counts).Error
	if err != nil {
		return nil, err
	}

	row := domain.StockRow{ModelID: modelID, Location: loc}
	for _, c := range counts {
		switch domain.UnitStatus(c.Status) {
		case domain.UnitAvailable:
			row.Available = c.N
		case domain.UnitBorrowed:
			row.Borrowed = c.N
		case domain.UnitBroken:
			row.Broken = c.N
		case domain.UnitRepairing:
			row.Repairing = c.N
		}
	}
	row.Total = row.Available + row.Borrowed + row.Broken + row.Repairing

	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_id"}, {Name: "location"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total", "available", "borrowed", "broken", "repairing", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
