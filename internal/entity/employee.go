package entity

import (
	"time"
)

// Role is the closed set of positions an employee can hold. The role decides
// which salary formula applies and how deep into the subordinate tree the
// team contribution reaches.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleSales    Role = "sales"
)

// TraversalDepth selects which part of the subordinate tree feeds a role's
// team contribution.
type TraversalDepth int

const (
	DepthNone TraversalDepth = iota
	DepthDirect
	DepthSubtree
)

// RolePolicy carries the salary parameters of a single role: the tenure
// bonus rate per year of service, the cap on that bonus, and the rate and
// traversal depth of the team contribution. Adding a role is a new table
// entry, not a new branch in the engine.
type RolePolicy struct {
	BonusPerYear float64
	BonusCap     float64
	TeamRate     float64
	Depth        TraversalDepth
}

var rolePolicies = map[Role]RolePolicy{
	RoleEmployee: {BonusPerYear: 0.03, BonusCap: 0.30},
	RoleManager:  {BonusPerYear: 0.05, BonusCap: 0.40, TeamRate: 0.005, Depth: DepthDirect},
	RoleSales:    {BonusPerYear: 0.01, BonusCap: 0.35, TeamRate: 0.003, Depth: DepthSubtree},
}

// Policy returns the salary policy for the role. The second result is false
// for a role outside the enumeration.
func (r Role) Policy() (RolePolicy, bool) {
	policy, ok := rolePolicies[r]
	return policy, ok
}

func (r Role) Valid() bool {
	_, ok := rolePolicies[r]
	return ok
}

type Employee struct {
	ID           uint64    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Password     *string   `json:"password,omitempty" db:"password"`
	Role         Role      `json:"role" db:"role"`
	BaseSalary   float64   `json:"base_salary" db:"base_salary"`
	DateOfJoin   time.Time `json:"date_of_join" db:"date_of_join"`
	SupervisorID *uint64   `json:"supervisor_id,omitempty" db:"supervisor_id"`

	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	// Subordinates is the materialized first layer, attached on point lookup.
	// It is derived from the supervisor_id column and never written directly.
	Subordinates []Employee `json:"subordinates,omitempty" db:"-"`
}

// GetEmployeesParams are the optional listing filters.
type GetEmployeesParams struct {
	Role *Role
}

// UpdateEmployeeRequest is a full-record update. The subordinate set is
// declarative: ids missing from it are detached.
type UpdateEmployeeRequest struct {
	Name            string    `json:"name"`
	DateOfJoin      time.Time `json:"date_of_join"`
	BaseSalary      float64   `json:"base_salary"`
	Role            Role      `json:"role"`
	SubordinatesIDs []uint64  `json:"subordinates_ids"`
}

// Mutation is a validated hierarchy change, staged by the validator and
// persisted as a single atomic unit. Employee is a fresh record value, never
// a live object mutated in place.
type Mutation struct {
	Employee Employee
	Attach   []uint64
	Detach   []uint64
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
