package inventory

import (
	"context"

	"labstock/internal/domain"
	"labstock/internal/repository"
)

type UnitRepository interface {
	CreateBatch(ctx context.Context, units []*domain.Unit) error
	GetByID(ctx context.Context, id int64) (*domain.Unit, error)
	List(ctx context.Context, f repository.UnitFilters) ([]domain.Unit, error)
	ListAvailable(ctx context.Context, modelID int64, loc domain.Location) ([]domain.Unit, error)
	Retire(ctx context.Context, id int64, expect repository.UnitPrecondition) error
}

type StockRepository interface {
	Get(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error)
	ListByModel(ctx context.Context, modelID int64) ([]domain.StockRow, error)
	List(ctx context.Context) ([]domain.StockRow, error)
	Reconcile(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error)
}

type ModelRepository interface {
	Create(ctx context.Context, m *domain.EquipmentModel) error
	GetByID(ctx context.Context, id int64) (*domain.EquipmentModel, error)
	List(ctx context.Context, verifiedOnly bool) ([]domain.EquipmentModel, error)
	SetVerified(ctx context.Context, id int64, verified bool) error
}

type ActivityRecorder interface {
	Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string)
}
