package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-festival-cashless/internal/domain/attendee"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/festival"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/stats"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/ticket"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/transaction"
	"github.com/sanosuguru/go-festival-cashless/internal/domain/wristband"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newCommittableTx はCommit/Rollbackを許可するトランザクションのペアを返す
func newCommittableTx() (*MockTxManager, *MockTx) {
	tx := new(MockTx)
	tx.On("Commit").Return(nil)
	tx.On("Rollback").Return(nil)
	tm := new(MockTxManager)
	tm.On("Begin", mock.Anything).Return(tx, nil)
	return tm, tx
}

// MockFestivalRepository implements festival.Repository
type MockFestivalRepository struct {
	mock.Mock
}

func (m *MockFestivalRepository) Create(ctx context.Context, f *festival.Festival) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFestivalRepository) GetByID(ctx context.Context, id string) (*festival.Festival, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*festival.Festival), args.Error(1)
}

func (m *MockFestivalRepository) List(ctx context.Context, limit, offset int) ([]*festival.Festival, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*festival.Festival), args.Error(1)
}

func (m *MockFestivalRepository) Update(ctx context.Context, f *festival.Festival) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

// MockTicketTypeRepository implements ticket.TypeRepository
type MockTicketTypeRepository struct {
	mock.Mock
}

func (m *MockTicketTypeRepository) Create(ctx context.Context, t *ticket.TicketType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id string) (*ticket.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) ListByFestivalID(ctx context.Context, festivalID string) ([]*ticket.TicketType, error) {
	args := m.Called(ctx, festivalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.TicketType), args.Error(1)
}

func (m *MockTicketTypeRepository) DecrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) (int, error) {
	args := m.Called(ctx, tx, id, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketTypeRepository) IncrementStock(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

// MockPurchaseRepository implements ticket.PurchaseRepository
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, tx transaction.Tx, p *ticket.Purchase) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id string) (*ticket.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*ticket.Purchase, error) {
	args := m.Called(ctx, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Purchase), args.Error(1)
}

// MockAssignedTicketRepository implements ticket.AssignedRepository
type MockAssignedTicketRepository struct {
	mock.Mock
}

func (m *MockAssignedTicketRepository) CreateBulk(ctx context.Context, tx transaction.Tx, tickets []*ticket.AssignedTicket) error {
	args := m.Called(ctx, tx, tickets)
	return args.Error(0)
}

func (m *MockAssignedTicketRepository) GetByID(ctx context.Context, id string) (*ticket.AssignedTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.AssignedTicket), args.Error(1)
}

func (m *MockAssignedTicketRepository) GetByCode(ctx context.Context, code string) (*ticket.AssignedTicket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.AssignedTicket), args.Error(1)
}

func (m *MockAssignedTicketRepository) ListByPurchaseID(ctx context.Context, purchaseID string) ([]*ticket.AssignedTicket, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.AssignedTicket), args.Error(1)
}

func (m *MockAssignedTicketRepository) ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*ticket.AssignedTicket, error) {
	args := m.Called(ctx, festivalID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.AssignedTicket), args.Error(1)
}

func (m *MockAssignedTicketRepository) Update(ctx context.Context, tx transaction.Tx, t *ticket.AssignedTicket, from ticket.Status) error {
	args := m.Called(ctx, tx, t, from)
	return args.Error(0)
}

// MockAttendeeRepository implements attendee.Repository
type MockAttendeeRepository struct {
	mock.Mock
}

func (m *MockAttendeeRepository) Create(ctx context.Context, tx transaction.Tx, a *attendee.Attendee) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockAttendeeRepository) GetByID(ctx context.Context, id string) (*attendee.Attendee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendee.Attendee), args.Error(1)
}

func (m *MockAttendeeRepository) GetByEmail(ctx context.Context, email string) (*attendee.Attendee, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attendee.Attendee), args.Error(1)
}

// MockWristbandRepository implements wristband.Repository
type MockWristbandRepository struct {
	mock.Mock
}

func (m *MockWristbandRepository) Create(ctx context.Context, tx transaction.Tx, w *wristband.Wristband) error {
	args := m.Called(ctx, tx, w)
	return args.Error(0)
}

func (m *MockWristbandRepository) GetByUID(ctx context.Context, uid string) (*wristband.Wristband, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandRepository) ListByFestivalID(ctx context.Context, festivalID string, limit, offset int) ([]*wristband.Wristband, error) {
	args := m.Called(ctx, festivalID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wristband.Wristband), args.Error(1)
}

func (m *MockWristbandRepository) UpdateBinding(ctx context.Context, tx transaction.Tx, w *wristband.Wristband) error {
	args := m.Called(ctx, tx, w)
	return args.Error(0)
}

func (m *MockWristbandRepository) AddBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWristbandRepository) DeductBalance(ctx context.Context, tx transaction.Tx, id string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLedgerRepository implements wristband.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, tx transaction.Tx, t *wristband.BalanceTransaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByWristbandID(ctx context.Context, wristbandID string) ([]*wristband.BalanceTransaction, error) {
	args := m.Called(ctx, wristbandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wristband.BalanceTransaction), args.Error(1)
}

// MockStatsRepository implements stats.Repository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) ComputeByFestivalID(ctx context.Context, festivalID string) (*stats.FestivalStats, error) {
	args := m.Called(ctx, festivalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stats.FestivalStats), args.Error(1)
}

// MockPaymentConfirmer implements PaymentConfirmer
type MockPaymentConfirmer struct {
	mock.Mock
}

func (m *MockPaymentConfirmer) Confirm(ctx context.Context, paymentRef string, amount decimal.Decimal) error {
	args := m.Called(ctx, paymentRef, amount)
	return args.Error(0)
}
