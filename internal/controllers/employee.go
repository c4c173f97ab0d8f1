package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orgwise/payroll_service/internal/entity"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeController struct {
	deps      *Dependens
	validator *HierarchyValidator
}

func NewEmployeeController(deps *Dependens) *EmployeeController {
	return &EmployeeController{
		deps:      deps,
		validator: NewHierarchyValidator(deps),
	}
}

func (c *EmployeeController) GetEmployees(ctx context.Context, params *entity.GetEmployeesParams) ([]entity.Employee, error) {
	employees, err := c.deps.Store.GetAllEmployees(ctx)
	if err != nil {
		c.deps.Logger.Error("Error querying employees", slog.String("error", err.Error()))
		return nil, err
	}

	if params == nil || params.Role == nil {
		return employees, nil
	}

	filtered := make([]entity.Employee, 0, len(employees))
	for _, emp := range employees {
		if emp.Role == *params.Role {
			filtered = append(filtered, emp)
		}
	}

	return filtered, nil
}

func (c *EmployeeController) GetEmployeeByID(ctx context.Context, id uint64) (*entity.Employee, error) {
	employee, err := c.deps.Store.GetEmployee(ctx, id)
	if err != nil {
		c.deps.Logger.Error("Error getting employee", slog.Any("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	return employee, nil
}

func (c *EmployeeController) CreateEmployee(ctx context.Context, emp entity.Employee) (*entity.Employee, error) {
	if emp.Name == "" {
		c.deps.Logger.Error("Required field: name")
		return nil, errors.New("required field: name")
	}

	if emp.BaseSalary < 0 {
		c.deps.Logger.Error("Negative base salary", slog.Any("base_salary", emp.BaseSalary))
		return nil, errors.New("base salary must be non-negative")
	}

	if emp.BaseSalary == 0 {
		emp.BaseSalary = c.deps.Config.Payroll.DefaultBaseSalary
	}

	if emp.Role == "" {
		emp.Role = entity.RoleEmployee
	}

	if !emp.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, emp.Role)
	}

	if emp.DateOfJoin.IsZero() {
		emp.DateOfJoin = time.Now()
	}

	if emp.Email != nil {
		password := "default123"
		if emp.Password != nil && *emp.Password != "" {
			password = *emp.Password
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.deps.Logger.Error("Error hashing password", slog.String("error", err.Error()))
			return nil, err
		}

		hashStr := string(passwordHash)
		emp.Password = &hashStr
	} else {
		emp.Password = nil
	}

	created, err := c.deps.Store.CreateEmployee(ctx, &emp)
	if err != nil {
		c.deps.Logger.Error("Error creating employee", slog.String("error", err.Error()))
		return nil, err
	}

	return created, nil
}

// UpdateEmployee reassigns role, base fields and the subordinate set. The
// change goes through the hierarchy validator and is persisted atomically;
// a rejection leaves the record untouched.
func (c *EmployeeController) UpdateEmployee(ctx context.Context, id uint64, req *entity.UpdateEmployeeRequest) (*entity.Employee, error) {
	current, err := c.deps.Store.GetEmployee(ctx, id)
	if err != nil {
		c.deps.Logger.Error("Error getting employee", slog.Any("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	mutation, err := c.validator.ValidateUpdate(ctx, current, req)
	if err != nil {
		c.deps.Logger.Warn("Update rejected", slog.Any("id", id), slog.String("reason", err.Error()))
		return nil, err
	}

	updated, err := c.deps.Store.ApplyMutation(ctx, mutation)
	if err != nil {
		c.deps.Logger.Error("Error applying update", slog.Any("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee removes a record. An employee that still supervises anyone
// is rejected; subordinates never end up with a dangling supervisor link.
func (c *EmployeeController) DeleteEmployee(ctx context.Context, id uint64) error {
	subordinates, err := c.deps.Store.GetDirectSubordinates(ctx, id)
	if err != nil {
		c.deps.Logger.Error("Error querying subordinates", slog.Any("id", id), slog.String("error", err.Error()))
		return err
	}

	if len(subordinates) > 0 {
		c.deps.Logger.Warn("Delete rejected", slog.Any("id", id), slog.Int("subordinates", len(subordinates)))
		return entity.ErrHasSubordinates
	}

	if err = c.deps.Store.Delete(ctx, id); err != nil {
		c.deps.Logger.Error("Error deleting employee", slog.Any("id", id), slog.String("error", err.Error()))
		return err
	}

	return nil
}
