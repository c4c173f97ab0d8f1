package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/orgwise/payroll_service/internal/config"
	"github.com/orgwise/payroll_service/internal/entity"
	"github.com/redis/go-redis/v9"
)

// fakeHierarchyStore is a map-backed store used by engine and validator
// tests. Snapshot returns the store itself: the fake is never mutated while
// a computation runs, so it already is a consistent view.
type fakeHierarchyStore struct {
	mu        sync.Mutex
	nextID    uint64
	employees map[uint64]*entity.Employee
}

func newFakeStore(employees ...entity.Employee) *fakeHierarchyStore {
	store := &fakeHierarchyStore{
		employees: make(map[uint64]*entity.Employee, len(employees)),
	}

	for _, emp := range employees {
		e := emp
		store.employees[e.ID] = &e
		if e.ID > store.nextID {
			store.nextID = e.ID
		}
	}

	return store
}

func (s *fakeHierarchyStore) GetEmployee(ctx context.Context, id uint64) (*entity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	emp, ok := s.employees[id]
	if !ok {
		return nil, entity.ErrEmployeeNotFound
	}

	copied := *emp
	copied.Subordinates = s.directSubordinates(id)

	return &copied, nil
}

func (s *fakeHierarchyStore) GetEmployeeByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, emp := range s.employees {
		if emp.Email != nil && *emp.Email == email {
			copied := *emp
			return &copied, nil
		}
	}

	return nil, entity.ErrEmployeeNotFound
}

func (s *fakeHierarchyStore) GetDirectSubordinates(ctx context.Context, id uint64) ([]entity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.directSubordinates(id), nil
}

func (s *fakeHierarchyStore) GetAllEmployees(ctx context.Context) ([]entity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]entity.Employee, 0, len(s.employees))
	for _, emp := range s.employees {
		all = append(all, *emp)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	return all, nil
}

func (s *fakeHierarchyStore) CreateEmployee(ctx context.Context, emp *entity.Employee) (*entity.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	emp.ID = s.nextID

	now := time.Now()
	emp.CreatedAt = &now
	emp.UpdatedAt = &now

	copied := *emp
	s.employees[emp.ID] = &copied

	return emp, nil
}

func (s *fakeHierarchyStore) ApplyMutation(ctx context.Context, m *entity.Mutation) (*entity.Employee, error) {
	s.mu.Lock()

	current, ok := s.employees[m.Employee.ID]
	if !ok {
		s.mu.Unlock()
		return nil, entity.ErrEmployeeNotFound
	}

	updated := m.Employee
	updated.Email = current.Email
	updated.Password = current.Password
	s.employees[updated.ID] = &updated

	for _, subID := range m.Detach {
		if sub, found := s.employees[subID]; found && sub.SupervisorID != nil && *sub.SupervisorID == updated.ID {
			sub.SupervisorID = nil
		}
	}

	for _, subID := range m.Attach {
		if sub, found := s.employees[subID]; found {
			supervisorID := updated.ID
			sub.SupervisorID = &supervisorID
		}
	}

	s.mu.Unlock()

	return s.GetEmployee(ctx, updated.ID)
}

func (s *fakeHierarchyStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return entity.ErrEmployeeNotFound
	}

	delete(s.employees, id)
	return nil
}

func (s *fakeHierarchyStore) Snapshot(ctx context.Context) (entity.HierarchyReader, error) {
	return s, nil
}

func (s *fakeHierarchyStore) directSubordinates(id uint64) []entity.Employee {
	var subs []entity.Employee
	for _, emp := range s.employees {
		if emp.SupervisorID != nil && *emp.SupervisorID == id {
			subs = append(subs, *emp)
		}
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	return subs
}

// setBaseSalary mutates a record in place, bypassing the validator. Used to
// check cache behavior.
func (s *fakeHierarchyStore) setBaseSalary(id uint64, salary float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emp, ok := s.employees[id]; ok {
		emp.BaseSalary = salary
	}
}

// noopRedis misses every Get and discards every Set.
type noopRedis struct{}

func (noopRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	cmd.SetErr(redis.Nil)
	return cmd
}

func (noopRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (noopRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(0)
	return cmd
}

// memoryRedis is a map-backed stand-in for the real client.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStringCmd(ctx)
	if val, ok := m.data[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}

	return cmd
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = fmt.Sprint(value)

	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}

	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

// RedisInterface mirrors the Redis dependency of Dependens.
type RedisInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

func createTestDependencies(store entity.HierarchyStore, rdb RedisInterface) *Dependens {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret-key"
	cfg.Redis.AccessTokenTTL = time.Hour
	cfg.Redis.RefreshTokenTTL = time.Hour * 24
	cfg.Payroll.DefaultBaseSalary = 600
	cfg.Payroll.SalaryCacheTTL = time.Minute

	return &Dependens{
		Store:  store,
		Redis:  rdb,
		Logger: logger,
		Config: cfg,
	}
}

func testEmployee(id uint64, role entity.Role, baseSalary float64, joinYear int, supervisorID *uint64) entity.Employee {
	return entity.Employee{
		ID:           id,
		Name:         fmt.Sprintf("employee-%d", id),
		Role:         role,
		BaseSalary:   baseSalary,
		DateOfJoin:   time.Date(joinYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		SupervisorID: supervisorID,
	}
}

func Uint64Ptr(u uint64) *uint64 {
	return &u
}

func StringPtr(s string) *string {
	return &s
}
