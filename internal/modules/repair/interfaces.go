package repair

import (
	"context"

	"labstock/internal/domain"
	"labstock/internal/repository"
)

type RepairRepository interface {
	Create(ctx context.Context, t *domain.RepairTicket) error
	GetByID(ctx context.Context, id int64) (*domain.RepairTicket, error)
	List(ctx context.Context, f repository.RepairFilters) ([]domain.RepairTicket, error)
	UpdateStatusGuard(ctx context.Context, id int64, from, to domain.RepairStatus, extra map[string]interface{}) error
	CommitApproval(ctx context.Context, id int64) (*domain.RepairTicket, error)
	CommitCompletion(ctx context.Context, id int64, laborCost, partsCost float64, compensation bool) (*domain.RepairTicket, *domain.Loan, error)
	CommitRejection(ctx context.Context, id int64) (*domain.RepairTicket, error)
}

type UnitRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Unit, error)
}

type NotificationSender interface {
	Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error
}

type ActivityRecorder interface {
	Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string)
}
