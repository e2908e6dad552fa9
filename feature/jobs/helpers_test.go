package jobs

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"reconciler/core/database"
	"reconciler/core/lock"
	"reconciler/core/reconcile"
	"reconciler/core/records"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memStore is an in-memory records.Store. When gate is set, Load blocks until it is closed
// and first signals entered.
type memStore struct {
	mu      sync.Mutex
	sets    map[string][]reconcile.Record
	loads   int
	gate    chan struct{}
	entered chan struct{}
}

func newMemStore() *memStore {
	return &memStore{sets: make(map[string][]reconcile.Record)}
}

func (m *memStore) Name() string { return "memory" }

func (m *memStore) Load(_ context.Context, ref string) ([]reconcile.Record, error) {
	if m.entered != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
	}
	if m.gate != nil {
		<-m.gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	recs, ok := m.sets[ref]
	if !ok {
		return nil, records.ErrRecordSetNotFound
	}
	return recs, nil
}

func (m *memStore) Save(_ context.Context, ref string, recs []reconcile.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[ref] = recs
	return nil
}

func (m *memStore) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[ref]; !ok {
		return records.ErrRecordSetNotFound
	}
	delete(m.sets, ref)
	return nil
}

func (m *memStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := make([]string, 0, len(m.sets))
	for ref := range m.sets {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, NewRepository(db).Migrate(context.Background()))
	return db
}

type fixture struct {
	repo    *Repository
	store   *memStore
	locker  *lock.MemoryLocker
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	store := newMemStore()
	locker := lock.NewMemoryLocker()
	svc := NewService(repo, store, time.Minute, locker, reconcile.Default(), zap.NewNop())

	store.sets["stripe"] = []reconcile.Record{
		reconcile.NewRecord(map[string]any{"id": "s1", "order_id": "1001", "amount": 99.99}),
		reconcile.NewRecord(map[string]any{"id": "s2", "order_id": "1002", "amount": 15.00}),
	}
	store.sets["bank"] = []reconcile.Record{
		reconcile.NewRecord(map[string]any{"id": "t1", "order_id": "1001", "amount": 99.99}),
		reconcile.NewRecord(map[string]any{"id": "t2", "order_id": "2002", "amount": 40.00}),
	}

	return &fixture{repo: repo, store: store, locker: locker, service: svc}
}

func tolerance(f float64) *float64 { return &f }

func orderJobRequest() CreateJobRequest {
	return CreateJobRequest{
		Name:      "stripe vs bank",
		SourceRef: "stripe",
		TargetRef: "bank",
		Rules: []reconcile.RuleSpec{
			{Field: "order_id", Type: reconcile.RuleExact},
			{Field: "amount", Type: reconcile.RuleExact, Tolerance: tolerance(0.01)},
		},
	}
}
