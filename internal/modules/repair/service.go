package repair

import (
	"context"
	"fmt"

	"labstock/internal/domain"
	"labstock/internal/notification"
	"labstock/internal/repository"
)

type Service struct {
	tickets RepairRepository
	units   UnitRepository
	notifs  NotificationSender
	audit   ActivityRecorder
}

func NewService(tickets RepairRepository, units UnitRepository, notifs NotificationSender, audit ActivityRecorder) *Service {
	return &Service{
		tickets: tickets,
		units:   units,
		notifs:  notifs,
		audit:   audit,
	}
}

// Create opens a standalone ticket for a broken unit. Tickets for units
// surrendered broken at loan return are created by the return intake
// instead, with the loan already linked. Either way at most one open
// ticket per unit exists; the repository enforces that.
func (s *Service) Create(ctx context.Context, reporterID int64, req CreateTicketRequest) (*domain.RepairTicket, error) {
	if !req.Type.Valid() {
		return nil, domain.ErrValidation
	}
	u, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	if u.Status != domain.UnitBroken {
		return nil, fmt.Errorf("%w: unit %d is %s", ErrUnitNotBroken, u.ID, u.Status)
	}

	t := &domain.RepairTicket{
		UnitID:     req.UnitID,
		ReporterID: reporterID,
		Reason:     req.Reason,
		Type:       req.Type,
		Status:     domain.RepairPending,
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, reporterID, notification.TypeRepairOpened,
			"Repair ticket opened", req.Reason, "repair", t.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, reporterID, "repair.create", "repair", t.ID,
			fmt.Sprintf("unit=%d type=%s", t.UnitID, t.Type))
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	return s.tickets.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListTicketsQuery) ([]domain.RepairTicket, error) {
	return s.tickets.List(ctx, repository.RepairFilters{
		UnitID: q.UnitID,
		LoanID: q.LoanID,
		Status: q.Status,
	})
}

// Approve accepts the ticket and hands the unit over to the repair shop.
// Units that arrived broken via a loan return are already at the shop;
// only a broken shelf unit actually moves. Ticket flip and unit handover
// commit together.
func (s *Service) Approve(ctx context.Context, actorID, ticketID int64) (*domain.RepairTicket, error) {
	t, err := s.tickets.CommitApproval(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "repair.approve", "repair", t.ID, fmt.Sprintf("unit=%d", t.UnitID))
	}
	return t, nil
}

func (s *Service) Start(ctx context.Context, actorID, ticketID int64) (*domain.RepairTicket, error) {
	if err := s.tickets.UpdateStatusGuard(ctx, ticketID, domain.RepairApproved, domain.RepairInProgress, nil); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "repair.start", "repair", ticketID, "")
	}
	return s.tickets.GetByID(ctx, ticketID)
}

// Complete closes an in-progress ticket. A fixed unit returns available to
// the location it was taken from, carrying the repair cost in its stats. A
// compensation ticket writes the unit off instead. The owning loan, if any,
// releases the unit from its repairing list in the same transaction.
func (s *Service) Complete(ctx context.Context, actorID, ticketID int64, req CompleteTicketRequest) (*domain.RepairTicket, error) {
	t, l, err := s.tickets.CommitCompletion(ctx, ticketID, req.LaborCost, req.PartsCost, req.Compensation)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, t.ReporterID, notification.TypeRepairDone,
			"Repair completed", fmt.Sprintf("Unit repair finished, total cost %.2f", t.TotalCost()), "repair", t.ID)
		if l != nil && l.Status == domain.LoanReturned {
			_ = s.notifs.Notify(ctx, l.StudentID, notification.TypeLoanSettled,
				"Loan settled", "The last repaired unit was returned.", "loan", l.ID)
		}
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "repair.complete", "repair", t.ID,
			fmt.Sprintf("unit=%d cost=%.2f compensation=%t", t.UnitID, t.TotalCost(), t.Compensation))
	}
	return t, nil
}

// Reject closes the ticket without repairing. A unit already moved to the
// shop goes back broken to where it came from.
func (s *Service) Reject(ctx context.Context, actorID, ticketID int64, reason string) (*domain.RepairTicket, error) {
	t, err := s.tickets.CommitRejection(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, t.ReporterID, notification.TypeRepairRejected,
			"Repair rejected", reason, "repair", t.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "repair.reject", "repair", t.ID, reason)
	}
	return t, nil
}
