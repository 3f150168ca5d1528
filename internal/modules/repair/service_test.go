package repair

import (
	"context"
	"testing"
	"time"

	"labstock/internal/domain"
	"labstock/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories

type MockRepairRepository struct {
	mock.Mock
}

func (m *MockRepairRepository) Create(ctx context.Context, t *domain.RepairTicket) error {
	args := m.Called(ctx, t)
	if t != nil {
		t.ID = 77 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRepairRepository) GetByID(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairTicket), args.Error(1)
}

func (m *MockRepairRepository) List(ctx context.Context, f repository.RepairFilters) ([]domain.RepairTicket, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.RepairTicket), args.Error(1)
}

func (m *MockRepairRepository) UpdateStatusGuard(ctx context.Context, id int64, from, to domain.RepairStatus, extra map[string]interface{}) error {
	args := m.Called(ctx, id, from, to, extra)
	return args.Error(0)
}

func (m *MockRepairRepository) CommitApproval(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairTicket), args.Error(1)
}

func (m *MockRepairRepository) CommitCompletion(ctx context.Context, id int64, laborCost, partsCost float64, compensation bool) (*domain.RepairTicket, *domain.Loan, error) {
	args := m.Called(ctx, id, laborCost, partsCost, compensation)
	var t *domain.RepairTicket
	var l *domain.Loan
	if args.Get(0) != nil {
		t = args.Get(0).(*domain.RepairTicket)
	}
	if args.Get(1) != nil {
		l = args.Get(1).(*domain.Loan)
	}
	return t, l, args.Error(2)
}

func (m *MockRepairRepository) CommitRejection(ctx context.Context, id int64) (*domain.RepairTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairTicket), args.Error(1)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) GetByID(ctx context.Context, id int64) (*domain.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Unit), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error {
	args := m.Called(ctx, userID, typ, title, body, entityType, entityID)
	return args.Error(0)
}

func newTestService() (*Service, *MockRepairRepository, *MockUnitRepository, *MockNotificationSender) {
	tickets := new(MockRepairRepository)
	units := new(MockUnitRepository)
	notifs := new(MockNotificationSender)
	return NewService(tickets, units, notifs, nil), tickets, units, notifs
}

func TestCreate_Success(t *testing.T) {
	svc, tickets, units, notifs := newTestService()
	ctx := context.Background()

	units.On("GetByID", ctx, int64(11)).Return(&domain.Unit{
		ID: 11, ModelID: 1, Status: domain.UnitBroken, Location: domain.LocLab,
	}, nil)
	tickets.On("Create", ctx, mock.AnythingOfType("*domain.RepairTicket")).Return(nil)
	notifs.On("Notify", ctx, int64(2), mock.Anything, mock.Anything, mock.Anything, "repair", int64(77)).Return(nil)

	ticket, err := svc.Create(ctx, 2, CreateTicketRequest{
		UnitID: 11, Reason: "cracked screen", Type: domain.RepairInternal,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RepairPending, ticket.Status)
	assert.Equal(t, int64(11), ticket.UnitID)
	assert.Nil(t, ticket.LoanID)
}

func TestCreate_UnitNotBroken(t *testing.T) {
	svc, tickets, units, _ := newTestService()
	ctx := context.Background()

	units.On("GetByID", ctx, int64(11)).Return(&domain.Unit{
		ID: 11, Status: domain.UnitAvailable, Location: domain.LocLab,
	}, nil)

	_, err := svc.Create(ctx, 2, CreateTicketRequest{
		UnitID: 11, Reason: "noise", Type: domain.RepairInternal,
	})

	assert.ErrorIs(t, err, ErrUnitNotBroken)
	tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_DuplicateOpenTicket(t *testing.T) {
	svc, tickets, units, _ := newTestService()
	ctx := context.Background()

	units.On("GetByID", ctx, int64(11)).Return(&domain.Unit{
		ID: 11, Status: domain.UnitBroken, Location: domain.LocLab,
	}, nil)
	tickets.On("Create", ctx, mock.Anything).Return(domain.ErrStateConflict)

	_, err := svc.Create(ctx, 2, CreateTicketRequest{
		UnitID: 11, Reason: "still broken", Type: domain.RepairInternal,
	})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestCreate_InvalidType(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), 2, CreateTicketRequest{
		UnitID: 11, Reason: "broken", Type: "magic",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func ticketInState(status domain.RepairStatus) *domain.RepairTicket {
	return &domain.RepairTicket{
		ID:         77,
		UnitID:     11,
		ModelID:    1,
		ReporterID: 2,
		Status:     status,
		Type:       domain.RepairInternal,
	}
}

func TestApprove_Success(t *testing.T) {
	svc, tickets, _, _ := newTestService()
	ctx := context.Background()

	tickets.On("CommitApproval", ctx, int64(77)).Return(ticketInState(domain.RepairApproved), nil)

	ticket, err := svc.Approve(ctx, 9, 77)

	require.NoError(t, err)
	assert.Equal(t, domain.RepairApproved, ticket.Status)
	tickets.AssertExpectations(t)
}

func TestApprove_NotPending(t *testing.T) {
	svc, tickets, _, _ := newTestService()
	ctx := context.Background()

	tickets.On("CommitApproval", ctx, int64(77)).Return(nil, domain.ErrStateConflict)

	_, err := svc.Approve(ctx, 9, 77)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestStart_ForwardOnly(t *testing.T) {
	svc, tickets, _, _ := newTestService()
	ctx := context.Background()

	// still pending: approved->in_progress guard finds no matching row
	tickets.On("UpdateStatusGuard", ctx, int64(77), domain.RepairApproved, domain.RepairInProgress,
		map[string]interface{}(nil)).Return(domain.ErrStateConflict)

	_, err := svc.Start(ctx, 9, 77)
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestComplete_NotifiesReporter(t *testing.T) {
	svc, tickets, _, notifs := newTestService()
	ctx := context.Background()

	done := ticketInState(domain.RepairDone)
	done.LaborCost = 30
	done.PartsCost = 25
	now := time.Now().UTC()
	done.CompletedAt = &now

	tickets.On("CommitCompletion", ctx, int64(77), 30.0, 25.0, false).Return(done, nil, nil)
	notifs.On("Notify", ctx, int64(2), mock.Anything, mock.Anything, mock.Anything, "repair", int64(77)).Return(nil)

	ticket, err := svc.Complete(ctx, 9, 77, CompleteTicketRequest{LaborCost: 30, PartsCost: 25})

	require.NoError(t, err)
	assert.Equal(t, domain.RepairDone, ticket.Status)
	assert.Equal(t, 55.0, ticket.TotalCost())
	notifs.AssertExpectations(t)
}

func TestComplete_SettledLoanNotifiesStudent(t *testing.T) {
	svc, tickets, _, notifs := newTestService()
	ctx := context.Background()

	loanID := int64(42)
	done := ticketInState(domain.RepairDone)
	done.LoanID = &loanID
	settled := &domain.Loan{ID: 42, StudentID: 7, Status: domain.LoanReturned}

	tickets.On("CommitCompletion", ctx, int64(77), 0.0, 0.0, false).Return(done, settled, nil)
	notifs.On("Notify", ctx, int64(2), mock.Anything, mock.Anything, mock.Anything, "repair", int64(77)).Return(nil)
	notifs.On("Notify", ctx, int64(7), mock.Anything, mock.Anything, mock.Anything, "loan", int64(42)).Return(nil)

	_, err := svc.Complete(ctx, 9, 77, CompleteTicketRequest{})

	require.NoError(t, err)
	notifs.AssertExpectations(t)
}

func TestComplete_NotInProgress(t *testing.T) {
	svc, tickets, _, _ := newTestService()
	ctx := context.Background()

	tickets.On("CommitCompletion", ctx, int64(77), 0.0, 0.0, false).
		Return(nil, nil, domain.ErrStateConflict)

	_, err := svc.Complete(ctx, 9, 77, CompleteTicketRequest{})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestReject_NotifiesReporter(t *testing.T) {
	svc, tickets, _, notifs := newTestService()
	ctx := context.Background()

	tickets.On("CommitRejection", ctx, int64(77)).Return(ticketInState(domain.RepairRejected), nil)
	notifs.On("Notify", ctx, int64(2), mock.Anything, mock.Anything, "not worth fixing", "repair", int64(77)).Return(nil)

	ticket, err := svc.Reject(ctx, 9, 77, "not worth fixing")

	require.NoError(t, err)
	assert.Equal(t, domain.RepairRejected, ticket.Status)
	notifs.AssertExpectations(t)
}
