package loan

import (
	"context"
	"fmt"
	"time"

	"labstock/internal/domain"
	"labstock/internal/notification"
)

type Service struct {
	loans  LoanRepository
	units  UnitRepository
	stock  StockReader
	notifs NotificationSender
	audit  ActivityRecorder
}

func NewService(loans LoanRepository, units UnitRepository, stock StockReader, notifs NotificationSender, audit ActivityRecorder) *Service {
	return &Service{
		loans:  loans,
		units:  units,
		stock:  stock,
		notifs: notifs,
		audit:  audit,
	}
}

// CreateLoan records a pending borrow request. Quantities are checked
// against the lab aggregate but no units are reserved: assignment is
// first-come-first-served at approval time.
func (s *Service) CreateLoan(ctx context.Context, studentID int64, req CreateLoanRequest) (*domain.Loan, error) {
	if len(req.Items) == 0 || req.DueDate.Before(time.Now()) {
		return nil, domain.ErrValidation
	}

	seen := map[int64]bool{}
	items := make([]domain.LoanItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 || seen[it.ModelID] {
			return nil, domain.ErrValidation
		}
		seen[it.ModelID] = true

		row, err := s.stock.Get(ctx, it.ModelID, domain.LocLab)
		if err != nil {
			return nil, err
		}
		if row.Available < it.Quantity {
			return nil, ErrInsufficientStock
		}
		items = append(items, domain.LoanItem{ModelID: it.ModelID, Quantity: it.Quantity})
	}

	l := &domain.Loan{
		StudentID: studentID,
		Items:     items,
		DueDate:   req.DueDate,
		Purpose:   req.Purpose,
		Status:    domain.LoanPending,
	}
	if err := s.loans.Create(ctx, l); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Log(ctx, studentID, "loan.create", "loan", l.ID, fmt.Sprintf("items=%d", len(items)))
	}
	return l, nil
}

func (s *Service) GetLoan(ctx context.Context, id int64) (*domain.Loan, error) {
	return s.loans.GetByID(ctx, id)
}

func (s *Service) ListMyLoans(ctx context.Context, studentID int64) ([]domain.Loan, error) {
	return s.loans.ListByStudent(ctx, studentID)
}

func (s *Service) ListLoans(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	return s.loans.ListByStatus(ctx, status)
}

// Approve assigns concrete units to every line item and activates the
// loan. Every supplied unit must currently be available at the lab; a unit
// concurrently claimed by another approval fails the whole call with
// ErrStateConflict and no partial assignment survives.
func (s *Service) Approve(ctx context.Context, approverID, loanID int64, req ApproveLoanRequest) (*domain.Loan, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.Status != domain.LoanPending {
		return nil, domain.ErrStateConflict
	}

	byModel := map[int64][]int64{}
	for _, a := range req.Assignments {
		if _, dup := byModel[a.ModelID]; dup {
			return nil, domain.ErrValidation
		}
		byModel[a.ModelID] = a.UnitIDs
	}

	var allIDs []int64
	idSeen := map[int64]bool{}
	for i := range l.Items {
		item := &l.Items[i]
		ids, ok := byModel[item.ModelID]
		if !ok {
			return nil, domain.ErrValidation
		}
		if len(ids) != item.Quantity {
			return nil, domain.ErrQuantityMismatch
		}
		for _, id := range ids {
			if idSeen[id] {
				return nil, domain.ErrValidation
			}
			idSeen[id] = true
		}
		item.UnitIDs = ids
		allIDs = append(allIDs, ids...)
	}
	if len(byModel) != len(l.Items) {
		return nil, domain.ErrValidation
	}

	units, err := s.units.GetByIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if ids, ok := byModel[u.ModelID]; !ok || !contains(ids, u.ID) {
			return nil, domain.ErrValidation
		}
		if u.Status != domain.UnitAvailable || u.Location != domain.LocLab {
			return nil, domain.ErrStateConflict
		}
	}

	now := time.Now().UTC()
	l.Status = domain.LoanBorrowed
	l.ApprovedBy = &approverID
	l.ApprovedAt = &now

	if err := s.loans.CommitApproval(ctx, l, allIDs); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, l.StudentID, notification.TypeLoanApproved,
			"Loan approved", "Your equipment loan was approved and assigned.", "loan", l.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, approverID, "loan.approve", "loan", l.ID, fmt.Sprintf("units=%d", len(allIDs)))
	}
	return l, nil
}

// Reject closes a pending loan without touching any unit.
func (s *Service) Reject(ctx context.Context, approverID, loanID int64, reason string) (*domain.Loan, error) {
	if reason == "" {
		return nil, domain.ErrValidation
	}
	if err := s.loans.UpdateStatusGuard(ctx, loanID, domain.LoanPending, domain.LoanRejected); err != nil {
		return nil, err
	}
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	l.RejectReason = reason
	l.ApprovedBy = &approverID
	l.ApprovedAt = &now
	if err := s.loans.Update(ctx, l); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.Notify(ctx, l.StudentID, notification.TypeLoanRejected,
			"Loan rejected", reason, "loan", l.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, approverID, "loan.reject", "loan", l.ID, reason)
	}
	return l, nil
}

// RequestReturn is the student's explicit "I am bringing it back" action,
// required before an overdue loan accepts a return intake.
func (s *Service) RequestReturn(ctx context.Context, studentID, loanID int64) (*domain.Loan, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if l.StudentID != studentID {
		return nil, ErrNotOwner
	}
	if err := s.loans.UpdateStatusGuard(ctx, loanID, domain.LoanBorrowed, domain.LoanReturnRequested); err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, studentID, "loan.request_return", "loan", l.ID, "")
	}
	return s.loans.GetByID(ctx, loanID)
}

// RecordReturn applies a return intake. Good units go back on the lab
// shelf; broken units are surrendered to the repair shop, get a repair
// ticket and move into the loan's repairing list, where they keep blocking
// completion until their ticket closes. A loan left return_pending by a
// partial intake accepts further intakes for the units still out.
func (s *Service) RecordReturn(ctx context.Context, actorID, loanID int64, req ReturnRequest) (*domain.Loan, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	switch l.Status {
	case domain.LoanBorrowed, domain.LoanReturnRequested, domain.LoanReturnPending:
	default:
		return nil, domain.ErrStateConflict
	}
	if l.Status == domain.LoanBorrowed && time.Now().After(l.DueDate) {
		return nil, ErrOverdueReturnRequired
	}

	var good, broken []int64
	var tickets []*domain.RepairTicket

	for _, line := range req.Lines {
		item := findItem(l.Items, line.ModelID)
		if item == nil {
			return nil, domain.ErrValidation
		}
		if len(line.BrokenUnitIDs) > len(line.UnitIDs) {
			return nil, domain.ErrValidation
		}

		brokenSet := map[int64]bool{}
		for _, id := range line.BrokenUnitIDs {
			if !contains(line.UnitIDs, id) {
				return nil, domain.ErrValidation
			}
			brokenSet[id] = true
		}

		for _, id := range line.UnitIDs {
			if !contains(item.UnitIDs, id) {
				return nil, domain.ErrValidation
			}
			if brokenSet[id] {
				broken = append(broken, id)
				tickets = append(tickets, &domain.RepairTicket{
					UnitID:     id,
					ModelID:    line.ModelID,
					ReporterID: actorID,
					LoanID:     &l.ID,
					Reason:     "returned broken from loan",
					Type:       domain.RepairInternal,
					Status:     domain.RepairPending,
				})
			} else {
				good = append(good, id)
			}
			item.UnitIDs = remove(item.UnitIDs, id)
		}
		item.Quantity = len(item.UnitIDs)

		if len(line.BrokenUnitIDs) > 0 {
			addRepairing(l, line.ModelID, line.BrokenUnitIDs)
		}
	}

	l.Items = dropEmpty(l.Items)
	if l.Settled() {
		l.Status = domain.LoanReturned
	} else {
		l.Status = domain.LoanReturnPending
	}

	if err := s.loans.CommitReturn(ctx, l, good, broken, tickets); err != nil {
		return nil, err
	}

	if s.notifs != nil && l.Status == domain.LoanReturned {
		_ = s.notifs.Notify(ctx, l.StudentID, notification.TypeLoanSettled,
			"Loan settled", "All borrowed equipment was returned.", "loan", l.ID)
	}
	if s.audit != nil {
		s.audit.Log(ctx, actorID, "loan.return", "loan", l.ID,
			fmt.Sprintf("good=%d broken=%d", len(good), len(broken)))
	}
	return l, nil
}

func findItem(items []domain.LoanItem, modelID int64) *domain.LoanItem {
	for i := range items {
		if items[i].ModelID == modelID {
			return &items[i]
		}
	}
	return nil
}

func addRepairing(l *domain.Loan, modelID int64, unitIDs []int64) {
	for i := range l.RepairingItems {
		if l.RepairingItems[i].ModelID == modelID {
			l.RepairingItems[i].UnitIDs = append(l.RepairingItems[i].UnitIDs, unitIDs...)
			l.RepairingItems[i].Quantity = len(l.RepairingItems[i].UnitIDs)
			return
		}
	}
	l.RepairingItems = append(l.RepairingItems, domain.LoanItem{
		ModelID:  modelID,
		Quantity: len(unitIDs),
		UnitIDs:  append([]int64{}, unitIDs...),
	})
}

func dropEmpty(items []domain.LoanItem) []domain.LoanItem {
	out := items[:0]
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
