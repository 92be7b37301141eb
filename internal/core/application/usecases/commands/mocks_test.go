package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ordering/internal/core/application/usecases/commands"
	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/dms"
	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/keylock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListReconcilable(ctx context.Context, companyIDs []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, companyIDs)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockDMSRepository struct{ mock.Mock }

func (m *MockDMSRepository) ActiveMappings(ctx context.Context) ([]dms.Mapping, error) {
	args := m.Called(ctx)
	mappings, _ := args.Get(0).([]dms.Mapping)
	return mappings, args.Error(1)
}

func (m *MockDMSRepository) MatchedRefs(ctx context.Context, refs []string) (map[string]bool, error) {
	args := m.Called(ctx, refs)
	matched, _ := args.Get(0).(map[string]bool)
	return matched, args.Error(1)
}

func (m *MockDMSRepository) RecordMatch(ctx context.Context, record dms.MatchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DMSRepository() ports.DMSRepository {
	args := m.Called()
	return args.Get(0).(ports.DMSRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyOrderUpdated(e ports.OrderUpdatedEvent) {
	m.Called(e)
}

func (m *MockNotifier) NotifyEditingStatusChanged(e ports.EditingStatusChangedEvent) {
	m.Called(e)
}

type MockAuditSink struct{ mock.Mock }

func (m *MockAuditSink) Record(ctx context.Context, r ports.AuditRecord) {
	m.Called(ctx, r)
}

type MockLockInspector struct{ mock.Mock }

func (m *MockLockInspector) Holder(orderID kernel.UUID) (editlock.Lock, bool) {
	args := m.Called(orderID)
	return args.Get(0).(editlock.Lock), args.Bool(1)
}

type MockDMSClient struct{ mock.Mock }

func (m *MockDMSClient) FetchDocuments(ctx context.Context, codes []string, since time.Time) ([]dms.Document, error) {
	args := m.Called(ctx, codes, since)
	docs, _ := args.Get(0).([]dms.Document)
	return docs, args.Error(1)
}

var (
	t0        = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	companyA  = kernel.MustUUIDFromString("aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa")
	companyB  = kernel.MustUUIDFromString("bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb")
	discardLg = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func fixedClock(at time.Time) kernel.Clock {
	return kernel.ClockFunc(func() time.Time { return at })
}

func newWriter(notifier ports.Notifier, audit ports.AuditSink, now time.Time) *commands.OrderWriter {
	return commands.NewOrderWriter(keylock.New(), notifier, audit, fixedClock(now), discardLg)
}

func newItem(t *testing.T, total string) order.Item {
	t.Helper()
	item, err := order.NewItem("P-1", "Brake pad", 1, decimal.RequireFromString(total), nil, order.Available)
	require.NoError(t, err)
	return item
}

type orderState struct {
	status       order.Status
	company      kernel.UUID
	total        string
	createdAt    time.Time
	lastModified time.Time
	bl           *string
}

func restoreOrder(t *testing.T, id kernel.UUID, s orderState) *order.Order {
	t.Helper()
	if s.company.IsZero() {
		s.company = companyA
	}
	if s.total == "" {
		s.total = "100"
	}
	if s.createdAt.IsZero() {
		s.createdAt = t0.Add(-time.Hour)
	}
	if s.lastModified.IsZero() {
		s.lastModified = s.createdAt
	}
	o, err := order.RestoreOrder(order.Snapshot{
		ID:             id,
		CompanyID:      s.company,
		Items:          []order.Item{newItem(t, s.total)},
		Status:         s.status,
		BLNumber:       s.bl,
		CreatedAt:      s.createdAt,
		LastModifiedAt: s.lastModified,
		Version:        1,
	})
	require.NoError(t, err)
	return o
}

func newActor(t *testing.T, name string, role actor.Role, company *kernel.UUID) actor.Actor {
	t.Helper()
	a, err := actor.New(kernel.NewUUID(), name, role, company)
	require.NoError(t, err)
	return a
}
