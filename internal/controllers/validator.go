package controllers

import (
	"context"
	"fmt"

	"github.com/orgwise/payroll_service/internal/entity"
)

// HierarchyValidator checks every role/subordinate change before it touches
// the store. It is the single choke point for edge mutations: on success it
// stages a Mutation for atomic persistence, on rejection nothing changes.
type HierarchyValidator struct {
	deps *Dependens
}

func NewHierarchyValidator(deps *Dependens) *HierarchyValidator {
	return &HierarchyValidator{
		deps: deps,
	}
}

// ValidateUpdate applies the rules in order, first violation wins:
//  1. a terminal role cannot keep subordinates,
//  2. an employee cannot be its own subordinate,
//  3. every candidate id must exist,
//  4. an employee cannot take its own supervisor as a subordinate.
//
// The staged record is a fresh value; the current record is never touched.
func (v *HierarchyValidator) ValidateUpdate(ctx context.Context, current *entity.Employee, req *entity.UpdateEmployeeRequest) (*entity.Mutation, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownRole, req.Role)
	}

	if req.Role == entity.RoleEmployee && len(req.SubordinatesIDs) > 0 {
		return nil, entity.ErrRoleCannotSupervise
	}

	seen := make(map[uint64]bool, len(req.SubordinatesIDs))
	attach := make([]uint64, 0, len(req.SubordinatesIDs))

	for _, subID := range req.SubordinatesIDs {
		if subID == current.ID {
			return nil, entity.ErrSelfSubordinate
		}

		if seen[subID] {
			continue
		}
		seen[subID] = true

		sub, err := v.deps.Store.GetEmployee(ctx, subID)
		if err != nil {
			return nil, err
		}

		if current.SupervisorID != nil && *current.SupervisorID == sub.ID {
			return nil, entity.ErrSupervisorCycle
		}

		attach = append(attach, subID)
	}

	detach := make([]uint64, 0, len(current.Subordinates))
	for _, sub := range current.Subordinates {
		if !seen[sub.ID] {
			detach = append(detach, sub.ID)
		}
	}

	updated := *current
	updated.Name = req.Name
	updated.DateOfJoin = req.DateOfJoin
	updated.BaseSalary = req.BaseSalary
	updated.Role = req.Role
	updated.Subordinates = nil

	return &entity.Mutation{
		Employee: updated,
		Attach:   attach,
		Detach:   detach,
	}, nil
}
