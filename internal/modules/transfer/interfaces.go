package transfer

import (
	"context"

	"labstock/internal/domain"
)

type TransferRepository interface {
	Create(ctx context.Context, t *domain.TransferRequest) error
	GetByID(ctx context.Context, id int64) (*domain.TransferRequest, error)
	List(ctx context.Context, status domain.TransferStatus) ([]domain.TransferRequest, error)
	CommitDecision(ctx context.Context, req *domain.TransferRequest, cert *domain.Certificate) error
	CommitDelivery(ctx context.Context, id int64) (*domain.TransferRequest, error)
}

type CertificateRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Certificate, error)
	List(ctx context.Context) ([]domain.Certificate, error)
	ListByTransfer(ctx context.Context, transferID int64) ([]domain.Certificate, error)
}

type UnitRepository interface {
	ListAvailable(ctx context.Context, modelID int64, loc domain.Location) ([]domain.Unit, error)
}

type StockReader interface {
	Get(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error)
}

type ModelReader interface {
	GetByID(ctx context.Context, id int64) (*domain.EquipmentModel, error)
}

type NotificationSender interface {
	Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error
}

type ActivityRecorder interface {
	Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string)
}
