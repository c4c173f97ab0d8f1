package entity

import "context"

// HierarchyReader is the read side of the hierarchy store. A reader returned
// by Snapshot answers every call from one consistent view of the forest and
// is safe for concurrent use.
type HierarchyReader interface {
	GetEmployee(ctx context.Context, id uint64) (*Employee, error)
	GetDirectSubordinates(ctx context.Context, id uint64) ([]Employee, error)
	GetAllEmployees(ctx context.Context) ([]Employee, error)
}

// HierarchyStore holds employee records and supervisor edges. All edge
// mutations go through ApplyMutation so forward and back links change as one
// unit.
type HierarchyStore interface {
	HierarchyReader

	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	CreateEmployee(ctx context.Context, emp *Employee) (*Employee, error)
	ApplyMutation(ctx context.Context, m *Mutation) (*Employee, error)
	Delete(ctx context.Context, id uint64) error
	Snapshot(ctx context.Context) (HierarchyReader, error)
}
