package transfer

import (
	"context"
	"fmt"
	"time"

	"labstock/internal/domain"
	"labstock/internal/notification"

	"github.com/google/uuid"
)

type Service struct {
	transfers TransferRepository
	certs     CertificateRepository
	units     UnitRepository
	stock     StockReader
	models    ModelReader
	notifs    NotificationSender
	audit     ActivityRecorder
}

func NewService(
	transfers TransferRepository,
	certs CertificateRepository,
	units UnitRepository,
	stock StockReader,
	models ModelReader,
	notifs NotificationSender,
	audit ActivityRecorder,
) *Service {
	return &Service{
		transfers: transfers,
		certs:     certs,
		units:     units,
		stock:     stock,
		models:    models,
		notifs:    notifs,
		audit:     audit,
	}
}

func (s *Service) Create(ctx context.Context, requesterID int64, req CreateTransferRequest) (*domain.TransferRequest, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrValidation
	}
	if _, err := s.models.GetByID(ctx, req.ModelID); err != nil {
		return nil, err
	}

	t := &domain.TransferRequest{
		ModelID:     req.ModelID,
		Quantity:    req.Quantity,
		RequestedBy: requesterID,
		Status:      domain.TransferWaiting,
	}
	if err := s.transfers.Create(ctx, t); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, requesterID, "transfer.create", "transfer", t.ID,
			fmt.Sprintf("model=%d quantity=%d", t.ModelID, t.Quantity))
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.TransferRequest, error) {
	return s.transfers.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status domain.TransferStatus) ([]domain.TransferRequest, error) {
	return s.transfers.List(ctx, status)
}

// Approve reserves exactly Quantity warehouse units on paper, lowest serial
// first, and freezes the decision in a certificate. The units themselves
// are not touched until delivery confirms physical receipt.
func (s *Service) Approve(ctx context.Context, approverID, transferID int64) (*domain.TransferRequest, error) {
	t, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TransferWaiting {
		return nil, domain.ErrStateConflict
	}

	row, err := s.stock.Get(ctx, t.ModelID, domain.LocWarehouse)
	if err != nil {
		return nil, err
	}
	if row.Available < t.Quantity {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, t.Quantity, row.Available)
	}

	candidates, err := s.units.ListAvailable(ctx, t.ModelID, domain.LocWarehouse)
	if err != nil {
		return nil, err
	}
	if len(candidates) < t.Quantity {
		return nil, fmt.Errorf("%w: %d requested, %d on shelf", ErrInsufficientStock, t.Quantity, len(candidates))
	}

	reserved := make([]int64, 0, t.Quantity)
	for _, u := range candidates[:t.Quantity] {
		reserved = append(reserved, u.ID)
	}

	now := time.Now().UTC()
	t.Status = domain.TransferApproved
	t.ReservedUnitIDs = reserved
	t.ApprovedBy = &approverID
	t.ApprovedAt = &now

	cert := &domain.Certificate{
		Number:     uuid.NewString(),
		TransferID: t.ID,
		ModelID:    t.ModelID,
		Quantity:   t.Quantity,
		Decision:   domain.CertApproved,
		UnitIDs:    reserved,
		DecidedBy:  approverID,
	}

	if err := s.transfers.CommitDecision(ctx, t, cert); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, t.RequestedBy, notification.TypeTransferApproved,
			"Transfer approved", "Warehouse units were reserved for your request.", "transfer", t.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, approverID, "transfer.approve", "transfer", t.ID,
			fmt.Sprintf("reserved=%d", len(reserved)))
	}
	return t, nil
}

func (s *Service) Reject(ctx context.Context, approverID, transferID int64, reason string) (*domain.TransferRequest, error) {
	if reason == "" {
		return nil, domain.ErrValidation
	}
	t, err := s.transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TransferWaiting {
		return nil, domain.ErrStateConflict
	}

	now := time.Now().UTC()
	t.Status = domain.TransferRejected
	t.RejectReason = reason
	t.ApprovedBy = &approverID
	t.ApprovedAt = &now

	cert := &domain.Certificate{
		Number:     uuid.NewString(),
		TransferID: t.ID,
		ModelID:    t.ModelID,
		Quantity:   t.Quantity,
		Decision:   domain.CertRejected,
		DecidedBy:  approverID,
		Reason:     reason,
	}

	if err := s.transfers.CommitDecision(ctx, t, cert); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, t.RequestedBy, notification.TypeTransferRejected,
			"Transfer rejected", reason, "transfer", t.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, approverID, "transfer.reject", "transfer", t.ID, reason)
	}
	return t, nil
}

// Deliver confirms physical receipt at the lab: the reserved units move
// warehouse->lab and both aggregate rows are rebuilt in the same
// transaction. Reserved units poached in the meantime fail the delivery
// with ErrStateConflict.
func (s *Service) Deliver(ctx context.Context, actorID, transferID int64) (*domain.TransferRequest, error) {
	t, err := s.transfers.CommitDelivery(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, t.RequestedBy, notification.TypeTransferDelivered,
			"Transfer delivered", "Reserved units arrived at the lab.", "transfer", t.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "transfer.deliver", "transfer", t.ID,
			fmt.Sprintf("units=%d", len(t.ReservedUnitIDs)))
	}
	return t, nil
}

func (s *Service) GetCertificate(ctx context.Context, id int64) (*domain.Certificate, error) {
	return s.certs.GetByID(ctx, id)
}

func (s *Service) ListCertificates(ctx context.Context) ([]domain.Certificate, error) {
	return s.certs.List(ctx)
}
