package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"labstock/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	args := m.Called(ctx, l)
	if l != nil {
		l.ID = 42 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStudent(ctx context.Context, studentID int64) ([]domain.Loan, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.Loan, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, l *domain.Loan) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateStatusGuard(ctx context.Context, id int64, from, to domain.LoanStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockLoanRepository) CommitApproval(ctx context.Context, loan *domain.Loan, unitIDs []int64) error {
	args := m.Called(ctx, loan, unitIDs)
	return args.Error(0)
}

func (m *MockLoanRepository) CommitReturn(ctx context.Context, loan *domain.Loan, good, broken []int64, tickets []*domain.RepairTicket) error {
	args := m.Called(ctx, loan, good, broken, tickets)
	return args.Error(0)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Unit, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}

type MockStockReader struct {
	mock.Mock
}

func (m *MockStockReader) Get(ctx context.Context, modelID int64, loc domain.Location) (*domain.StockRow, error) {
	args := m.Called(ctx, modelID, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRow), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Notify(ctx context.Context, userID int64, typ, title, body, entityType string, entityID int64) error {
	args := m.Called(ctx, userID, typ, title, body, entityType, entityID)
	return args.Error(0)
}

type MockActivityRecorder struct {
	mock.Mock
}

func (m *MockActivityRecorder) Log(ctx context.Context, actorID int64, action, entityType string, entityID int64, details string) {
	m.Called(ctx, actorID, action, entityType, entityID, details)
}

func newTestService() (*Service, *MockLoanRepository, *MockUnitRepository, *MockStockReader, *MockNotificationSender) {
	loans := new(MockLoanRepository)
	units := new(MockUnitRepository)
	stock := new(MockStockReader)
	notifs := new(MockNotificationSender)
	return NewService(loans, units, stock, notifs, nil), loans, units, stock, notifs
}

func TestCreateLoan_Success(t *testing.T) {
	svc, loans, _, stock, _ := newTestService()
	ctx := context.Background()

	stock.On("Get", ctx, int64(1), domain.LocLab).
		Return(&domain.StockRow{ModelID: 1, Location: domain.LocLab, Available: 5}, nil)
	loans.On("Create", ctx, mock.AnythingOfType("*domain.Loan")).Return(nil)

	l, err := svc.CreateLoan(ctx, 7, CreateLoanRequest{
		Items:   []LoanItemRequest{{ModelID: 1, Quantity: 2}},
		DueDate: time.Now().Add(72 * time.Hour),
		Purpose: "physics lab",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanPending, l.Status)
	assert.Equal(t, int64(7), l.StudentID)
	require.Len(t, l.Items, 1)
	assert.Empty(t, l.Items[0].UnitIDs)
	loans.AssertExpectations(t)
}

func TestCreateLoan_InsufficientStock(t *testing.T) {
	svc, loans, _, stock, _ := newTestService()
	ctx := context.Background()

	stock.On("Get", ctx, int64(1), domain.LocLab).
		Return(&domain.StockRow{ModelID: 1, Location: domain.LocLab, Available: 1}, nil)

	_, err := svc.CreateLoan(ctx, 7, CreateLoanRequest{
		Items:   []LoanItemRequest{{ModelID: 1, Quantity: 2}},
		DueDate: time.Now().Add(72 * time.Hour),
	})

	assert.ErrorIs(t, err, ErrInsufficientStock)
	loans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLoan_DuplicateModel(t *testing.T) {
	svc, _, _, stock, _ := newTestService()
	ctx := context.Background()

	stock.On("Get", ctx, int64(1), domain.LocLab).
		Return(&domain.StockRow{Available: 10}, nil)

	_, err := svc.CreateLoan(ctx, 7, CreateLoanRequest{
		Items: []LoanItemRequest{
			{ModelID: 1, Quantity: 1},
			{ModelID: 1, Quantity: 2},
		},
		DueDate: time.Now().Add(72 * time.Hour),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func pendingLoan() *domain.Loan {
	return &domain.Loan{
		ID:        42,
		StudentID: 7,
		Items:     []domain.LoanItem{{ModelID: 1, Quantity: 2}},
		DueDate:   time.Now().Add(72 * time.Hour),
		Status:    domain.LoanPending,
	}
}

func labUnits(modelID int64, ids ...int64) []domain.Unit {
	out := make([]domain.Unit, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Unit{
			ID:       id,
			ModelID:  modelID,
			Status:   domain.UnitAvailable,
			Location: domain.LocLab,
		})
	}
	return out
}

func TestApprove_Success(t *testing.T) {
	svc, loans, units, _, notifs := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(pendingLoan(), nil)
	units.On("GetByIDs", ctx, []int64{10, 11}).Return(labUnits(1, 10, 11), nil)
	loans.On("CommitApproval", ctx, mock.AnythingOfType("*domain.Loan"), []int64{10, 11}).Return(nil)
	notifs.On("Notify", ctx, int64(7), mock.Anything, mock.Anything, mock.Anything, "loan", int64(42)).Return(nil)

	l, err := svc.Approve(ctx, 2, 42, ApproveLoanRequest{
		Assignments: []AssignmentRequest{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanBorrowed, l.Status)
	assert.Equal(t, []int64{10, 11}, l.Items[0].UnitIDs)
	require.NotNil(t, l.ApprovedBy)
	assert.Equal(t, int64(2), *l.ApprovedBy)
	loans.AssertExpectations(t)
}

func TestApprove_QuantityMismatch(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(pendingLoan(), nil)

	_, err := svc.Approve(ctx, 2, 42, ApproveLoanRequest{
		Assignments: []AssignmentRequest{{ModelID: 1, UnitIDs: []int64{10}}},
	})

	assert.ErrorIs(t, err, domain.ErrQuantityMismatch)
	loans.AssertNotCalled(t, "CommitApproval", mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_UnitAlreadyClaimed(t *testing.T) {
	svc, loans, units, _, _ := newTestService()
	ctx := context.Background()

	claimed := labUnits(1, 10, 11)
	claimed[1].Status = domain.UnitBorrowed

	loans.On("GetByID", ctx, int64(42)).Return(pendingLoan(), nil)
	units.On("GetByIDs", ctx, []int64{10, 11}).Return(claimed, nil)

	_, err := svc.Approve(ctx, 2, 42, ApproveLoanRequest{
		Assignments: []AssignmentRequest{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestApprove_NotPending(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	l := pendingLoan()
	l.Status = domain.LoanBorrowed
	loans.On("GetByID", ctx, int64(42)).Return(l, nil)

	_, err := svc.Approve(ctx, 2, 42, ApproveLoanRequest{
		Assignments: []AssignmentRequest{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestApprove_NotificationFailureSwallowed(t *testing.T) {
	svc, loans, units, _, notifs := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(pendingLoan(), nil)
	units.On("GetByIDs", ctx, []int64{10, 11}).Return(labUnits(1, 10, 11), nil)
	loans.On("CommitApproval", ctx, mock.Anything, []int64{10, 11}).Return(nil)
	notifs.On("Notify", ctx, int64(7), mock.Anything, mock.Anything, mock.Anything, "loan", int64(42)).
		Return(errors.New("smtp down"))

	l, err := svc.Approve(ctx, 2, 42, ApproveLoanRequest{
		Assignments: []AssignmentRequest{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanBorrowed, l.Status)
}

func borrowedLoan() *domain.Loan {
	return &domain.Loan{
		ID:        42,
		StudentID: 7,
		Items:     []domain.LoanItem{{ModelID: 1, Quantity: 2, UnitIDs: []int64{10, 11}}},
		DueDate:   time.Now().Add(72 * time.Hour),
		Status:    domain.LoanBorrowed,
	}
}

func TestRecordReturn_SplitGoodBroken(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(borrowedLoan(), nil)
	loans.On("CommitReturn", ctx, mock.AnythingOfType("*domain.Loan"),
		[]int64{10}, []int64{11}, mock.AnythingOfType("[]*domain.RepairTicket")).Return(nil)

	l, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10, 11}, BrokenUnitIDs: []int64{11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturnPending, l.Status)
	assert.Empty(t, l.Items)
	require.Len(t, l.RepairingItems, 1)
	assert.Equal(t, []int64{11}, l.RepairingItems[0].UnitIDs)

	loans.AssertCalled(t, "CommitReturn", ctx, mock.Anything, []int64{10}, []int64{11},
		mock.MatchedBy(func(tickets []*domain.RepairTicket) bool {
			return len(tickets) == 1 &&
				tickets[0].UnitID == 11 &&
				tickets[0].LoanID != nil && *tickets[0].LoanID == 42 &&
				tickets[0].Status == domain.RepairPending
		}))
}

func TestRecordReturn_AllGoodSettles(t *testing.T) {
	svc, loans, _, _, notifs := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(borrowedLoan(), nil)
	loans.On("CommitReturn", ctx, mock.Anything, []int64{10, 11}, []int64(nil), mock.Anything).Return(nil)
	notifs.On("Notify", ctx, int64(7), mock.Anything, mock.Anything, mock.Anything, "loan", int64(42)).Return(nil)

	l, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, l.Status)
	assert.True(t, l.Settled())
	notifs.AssertExpectations(t)
}

func TestRecordReturn_UnknownUnitRejected(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(borrowedLoan(), nil)

	_, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10, 99}}},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordReturn_OverdueGate(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	overdue := borrowedLoan()
	overdue.DueDate = time.Now().Add(-24 * time.Hour)
	loans.On("GetByID", ctx, int64(42)).Return(overdue, nil)

	_, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})
	assert.ErrorIs(t, err, ErrOverdueReturnRequired)
}

func TestRecordReturn_OverdueAllowedAfterRequest(t *testing.T) {
	svc, loans, _, _, notifs := newTestService()
	ctx := context.Background()

	overdue := borrowedLoan()
	overdue.DueDate = time.Now().Add(-24 * time.Hour)
	overdue.Status = domain.LoanReturnRequested
	loans.On("GetByID", ctx, int64(42)).Return(overdue, nil)
	loans.On("CommitReturn", ctx, mock.Anything, []int64{10, 11}, []int64(nil), mock.Anything).Return(nil)
	notifs.On("Notify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	l, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10, 11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, l.Status)
}

func TestRecordReturn_SecondIntakeCompletesPartialReturn(t *testing.T) {
	svc, loans, _, _, notifs := newTestService()
	ctx := context.Background()

	// a first intake already took unit 10 back; 11 is still out
	partial := &domain.Loan{
		ID:        42,
		StudentID: 7,
		Items:     []domain.LoanItem{{ModelID: 1, Quantity: 1, UnitIDs: []int64{11}}},
		DueDate:   time.Now().Add(72 * time.Hour),
		Status:    domain.LoanReturnPending,
	}
	loans.On("GetByID", ctx, int64(42)).Return(partial, nil)
	loans.On("CommitReturn", ctx, mock.Anything, []int64{11}, []int64(nil), mock.Anything).Return(nil)
	notifs.On("Notify", ctx, int64(7), mock.Anything, mock.Anything, mock.Anything, "loan", int64(42)).Return(nil)

	l, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{11}}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanReturned, l.Status)
	assert.True(t, l.Settled())
	loans.AssertExpectations(t)
}

func TestRecordReturn_AlreadyReturnedRejected(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	done := borrowedLoan()
	done.Items = nil
	done.Status = domain.LoanReturned
	loans.On("GetByID", ctx, int64(42)).Return(done, nil)

	_, err := svc.RecordReturn(ctx, 2, 42, ReturnRequest{
		Lines: []ReturnLine{{ModelID: 1, UnitIDs: []int64{10}}},
	})

	assert.ErrorIs(t, err, domain.ErrStateConflict)
	loans.AssertNotCalled(t, "CommitReturn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestReturn_NotOwner(t *testing.T) {
	svc, loans, _, _, _ := newTestService()
	ctx := context.Background()

	loans.On("GetByID", ctx, int64(42)).Return(borrowedLoan(), nil)

	_, err := svc.RequestReturn(ctx, 99, 42)
	assert.ErrorIs(t, err, ErrNotOwner)
}
