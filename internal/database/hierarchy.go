package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/orgwise/payroll_service/internal/entity"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// HierarchyStore is the pgx-backed employee store. Subordinate edges live in
// the supervisor_id column only; the forward list is always derived from it,
// so forward and back links cannot diverge in storage.
type HierarchyStore struct {
	db     Querier
	logger *slog.Logger
}

func NewHierarchyStore(db Querier, logger *slog.Logger) *HierarchyStore {
	return &HierarchyStore{
		db:     db,
		logger: logger,
	}
}

var _ entity.HierarchyStore = (*HierarchyStore)(nil)

func (s *HierarchyStore) GetEmployee(ctx context.Context, id uint64) (*entity.Employee, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM employees WHERE id = $1", id)
	if err != nil {
		s.logger.Error("Error querying employee", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	employee, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entity.Employee])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrEmployeeNotFound
		}

		s.logger.Error("Error collecting row", slog.String("error", err.Error()))
		return nil, err
	}

	subordinates, err := s.GetDirectSubordinates(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Subordinates = subordinates
	employee.Password = nil

	return &employee, nil
}

// GetEmployeeByEmail is the login lookup. Unlike GetEmployee it keeps the
// password hash on the record.
func (s *HierarchyStore) GetEmployeeByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM employees WHERE email = $1", email)
	if err != nil {
		s.logger.Error("Error querying employee by email", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	employee, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entity.Employee])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrEmployeeNotFound
		}

		s.logger.Error("Error collecting row", slog.String("error", err.Error()))
		return nil, err
	}

	return &employee, nil
}

func (s *HierarchyStore) GetDirectSubordinates(ctx context.Context, id uint64) ([]entity.Employee, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM employees WHERE supervisor_id = $1 ORDER BY id", id)
	if err != nil {
		s.logger.Error("Error querying subordinates", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	employees, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.Employee])
	if err != nil {
		s.logger.Error("Error collecting rows", slog.String("error", err.Error()))
		return nil, err
	}

	for i := range employees {
		employees[i].Password = nil
	}

	return employees, nil
}

func (s *HierarchyStore) GetAllEmployees(ctx context.Context) ([]entity.Employee, error) {
	rows, err := s.db.Query(ctx, "SELECT * FROM employees ORDER BY id")
	if err != nil {
		s.logger.Error("Error querying employees", slog.String("error", err.Error()))
		return nil, err
	}
	defer rows.Close()

	employees, err := pgx.CollectRows(rows, pgx.RowToStructByName[entity.Employee])
	if err != nil {
		s.logger.Error("Error collecting rows", slog.String("error", err.Error()))
		return nil, err
	}

	for i := range employees {
		employees[i].Password = nil
	}

	return employees, nil
}

func (s *HierarchyStore) CreateEmployee(ctx context.Context, emp *entity.Employee) (*entity.Employee, error) {
	now := time.Now()
	query := `INSERT INTO employees (name, email, password, role, base_salary, date_of_join, supervisor_id, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              RETURNING id`

	if err := s.db.QueryRow(ctx, query,
		emp.Name, emp.Email, emp.Password, emp.Role, emp.BaseSalary,
		emp.DateOfJoin, emp.SupervisorID, now, now,
	).Scan(&emp.ID); err != nil {
		s.logger.Error("Error inserting employee", slog.String("error", err.Error()))
		return nil, err
	}

	emp.CreatedAt = &now
	emp.UpdatedAt = &now
	emp.Password = nil

	return emp, nil
}

// ApplyMutation persists a validated hierarchy change in one transaction:
// the new record value plus every supervisor back-link it attaches or
// detaches. Nothing is applied on error.
func (s *HierarchyStore) ApplyMutation(ctx context.Context, m *entity.Mutation) (*entity.Employee, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error("Error starting transaction", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	emp := m.Employee

	tag, err := tx.Exec(ctx, `UPDATE employees
              SET name = $1, date_of_join = $2, base_salary = $3, role = $4, updated_at = $5
              WHERE id = $6`,
		emp.Name, emp.DateOfJoin, emp.BaseSalary, emp.Role, now, emp.ID)
	if err != nil {
		s.logger.Error("Error updating employee", slog.String("error", err.Error()))
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, entity.ErrEmployeeNotFound
	}

	if len(m.Detach) > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE employees SET supervisor_id = NULL, updated_at = $1 WHERE supervisor_id = $2 AND id = ANY($3)`,
			now, emp.ID, m.Detach); err != nil {
			s.logger.Error("Error detaching subordinates", slog.String("error", err.Error()))
			return nil, err
		}
	}

	if len(m.Attach) > 0 {
		if _, err = tx.Exec(ctx,
			`UPDATE employees SET supervisor_id = $1, updated_at = $2 WHERE id = ANY($3)`,
			emp.ID, now, m.Attach); err != nil {
			s.logger.Error("Error attaching subordinates", slog.String("error", err.Error()))
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error("Error committing mutation", slog.String("error", err.Error()))
		return nil, err
	}

	return s.GetEmployee(ctx, emp.ID)
}

func (s *HierarchyStore) Delete(ctx context.Context, id uint64) error {
	result, err := s.db.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		s.logger.Error("Error deleting employee", slog.String("error", err.Error()))
		return err
	}

	if result.RowsAffected() == 0 {
		s.logger.Warn("Employee not found", slog.Any("id", id))
		return entity.ErrEmployeeNotFound
	}

	return nil
}

// Snapshot materializes the forest with a single statement, which Postgres
// serves from one consistent snapshot. The returned reader is immutable, so
// a computation fanning out over goroutines never observes a mutation
// mid-flight.
func (s *HierarchyStore) Snapshot(ctx context.Context) (entity.HierarchyReader, error) {
	employees, err := s.GetAllEmployees(ctx)
	if err != nil {
		return nil, err
	}

	return newMemorySnapshot(employees), nil
}

type memorySnapshot struct {
	byID         map[uint64]entity.Employee
	bySupervisor map[uint64][]entity.Employee
	all          []entity.Employee
}

func newMemorySnapshot(employees []entity.Employee) *memorySnapshot {
	snap := &memorySnapshot{
		byID:         make(map[uint64]entity.Employee, len(employees)),
		bySupervisor: make(map[uint64][]entity.Employee),
		all:          employees,
	}

	for _, emp := range employees {
		emp.Subordinates = nil
		snap.byID[emp.ID] = emp

		if emp.SupervisorID != nil {
			snap.bySupervisor[*emp.SupervisorID] = append(snap.bySupervisor[*emp.SupervisorID], emp)
		}
	}

	return snap
}

func (s *memorySnapshot) GetEmployee(_ context.Context, id uint64) (*entity.Employee, error) {
	emp, ok := s.byID[id]
	if !ok {
		return nil, entity.ErrEmployeeNotFound
	}

	emp.Subordinates = append([]entity.Employee(nil), s.bySupervisor[id]...)

	return &emp, nil
}

func (s *memorySnapshot) GetDirectSubordinates(_ context.Context, id uint64) ([]entity.Employee, error) {
	return append([]entity.Employee(nil), s.bySupervisor[id]...), nil
}

func (s *memorySnapshot) GetAllEmployees(_ context.Context) ([]entity.Employee, error) {
	return append([]entity.Employee(nil), s.all...), nil
}
