package repository

import (
	"context"
	"errors"
	"time"

	"labstock/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, t *domain.TransferRequest) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransferRepository) GetByID(ctx context.Context, id int64) (*domain.TransferRequest, error) {
	var t domain.TransferRequest
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransferRepository) List(ctx context.Context, status domain.TransferStatus) ([]domain.TransferRequest, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var ts []domain.TransferRequest
	err := q.Find(&ts).Error
	return ts, err
}

// CommitDecision records an approval (with the reserved unit ids already
// chosen by the service) or a rejection, and writes the certificate in the
// same transaction. The request must still be waiting. Approval reserves on
// paper only; no unit is touched until delivery.
func (r *TransferRepository) CommitDecision(ctx context.Context, req *domain.TransferRequest, cert *domain.Certificate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.TransferRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if current.Status != domain.TransferWaiting {
			return domain.ErrStateConflict
		}
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return tx.Create(cert).Error
	})
}

// CommitDelivery relocates every reserved unit warehouse->lab in one
// transaction, rebuilds both aggregate rows, flips the request to delivered
// and stamps the certificate. A reserved unit no longer available at the
// warehouse fails the whole delivery with ErrStateConflict.
func (r *TransferRepository) CommitDelivery(ctx context.Context, id int64) (*domain.TransferRequest, error) {
	var result *domain.TransferRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req domain.TransferRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if req.Status != domain.TransferApproved {
			return domain.ErrStateConflict
		}

		units, err := lockUnits(tx, req.ReservedUnitIDs)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for i := range units {
			u := &units[i]
			if err := checkPrecondition(*u, UnitPrecondition{
				Status:   domain.UnitAvailable,
				Location: domain.LocWarehouse,
			}); err != nil {
				return err
			}
			err := applyUnitChange(tx, u, UnitChange{
				Status:   domain.UnitAvailable,
				Location: domain.LocLab,
			}, now)
			if err != nil {
				return err
			}
		}

		req.Status = domain.TransferDelivered
		req.DeliveredAt = &now
		if err := tx.Save(&req).Error; err != nil {
			return err
		}

		err = tx.Model(&domain.Certificate{}).
			Where("transfer_id = ? AND decision = ?", req.ID, domain.CertApproved).
			Update("delivered_at", now).Error
		if err != nil {
			return err
		}

		dirty := map[stockKey]struct{}{
			{req.ModelID, domain.LocWarehouse}: {},
			{req.ModelID, domain.LocLab}:       {},
		}
		if err := reconcileDirty(tx, dirty); err != nil {
			return err
		}
		result = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) GetByID(ctx context.Context, id int64) (*domain.Certificate, error) {
	var c domain.Certificate
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) List(ctx context.Context) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&certs).Error
	return certs, err
}

func (r *CertificateRepository) ListByTransfer(ctx context.Context, transferID int64) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("created_at").
		Find(&certs).Error
	return certs, err
}
