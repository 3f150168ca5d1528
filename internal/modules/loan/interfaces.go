package loan

import (
	"context"

	"labstock/internal/domain"
)

type LoanRepository interface {
	Create(ctx context.Context, l *domain.Loan) error
	GetByID(ctx context.Context, id int64) (*domain.Loan, error)
	ListByStudent(ctx context.Context, studentID int64) ([]domain.Loan, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error)
	Update(ctx context.Context, l *domain.Loan) error
	UpdateStatusGuard(ctx context.Context, id int64, from, to domain.LoanStatus) error
	CommitApproval(ctx context.Context, loan *domain.Loan, unitIDs []int64) error
	CommitReturn(ctx context.Context, loan *domain.Loan, good, broken []int64, tickets []*domain.RepairTicket) error
}

type UnitRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Unit, error)
}

type StockReader interface {
	Get(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error)
}

type NotificationSender interface {
	Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error
}

type ActivityRecorder interface {
	Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string)
}
