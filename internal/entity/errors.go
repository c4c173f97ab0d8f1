package entity

import "errors"

var (
	// ErrEmployeeNotFound is returned when a referenced employee id does not
	// resolve to a stored record.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrHierarchyCycle reports a cycle discovered while walking stored
	// supervisor/subordinate edges. It marks corrupted data and is never
	// silently recovered.
	ErrHierarchyCycle = errors.New("hierarchy cycle detected")

	// ErrUnknownRole reports a role outside the enumeration. This is an
	// invariant violation, not user input to tolerate.
	ErrUnknownRole = errors.New("unknown role")

	// Validation rejections, in the order the validator checks them.
	ErrRoleCannotSupervise = errors.New("role cannot supervise")
	ErrSelfSubordinate     = errors.New("cannot add yourself as a subordinate")
	ErrSupervisorCycle     = errors.New("cannot add your supervisor as a subordinate")

	// ErrHasSubordinates rejects deletion of an employee that still
	// supervises someone; subordinates must be reassigned first.
	ErrHasSubordinates = errors.New("employee still has subordinates")
)
