package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"strconv"
	"time"

	"github.com/orgwise/payroll_service/internal/entity"
	"golang.org/x/sync/errgroup"
)

// SalaryController computes employee compensation over a snapshot of the
// hierarchy: the role's tenure-capped bonus on the base salary plus a small
// rate on subordinates' already-computed salaries, one layer deep for
// managers and over the whole subtree for sales.
type SalaryController struct {
	deps *Dependens
}

func NewSalaryController(deps *Dependens) *SalaryController {
	return &SalaryController{
		deps: deps,
	}
}

// ComputeSalary evaluates one employee as of the given date. Results are
// cached in Redis per (id, day); entries expire by TTL, so a hierarchy
// mutation becomes visible after at most one cache period.
func (c *SalaryController) ComputeSalary(ctx context.Context, id uint64, asOf time.Time) (float64, error) {
	cacheKey := salaryCacheKey(id, asOf)
	if cached, err := c.deps.Redis.Get(ctx, cacheKey).Result(); err == nil {
		if salary, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			return salary, nil
		}
	}

	reader, err := c.deps.Store.Snapshot(ctx)
	if err != nil {
		c.deps.Logger.Error("Error taking hierarchy snapshot", slog.String("error", err.Error()))
		return 0, err
	}

	emp, err := reader.GetEmployee(ctx, id)
	if err != nil {
		return 0, err
	}

	salary, err := c.computeSalary(ctx, reader, emp, asOf, map[uint64]bool{})
	if err != nil {
		return 0, err
	}

	value := strconv.FormatFloat(salary, 'f', -1, 64)
	if err = c.deps.Redis.Set(ctx, cacheKey, value, c.deps.Config.Payroll.SalaryCacheTTL).Err(); err != nil {
		c.deps.Logger.Warn("Error caching salary", slog.String("error", err.Error()))
	}

	return salary, nil
}

// TotalPayroll sums ComputeSalary over every employee, all evaluated against
// the same snapshot and the same as-of date.
func (c *SalaryController) TotalPayroll(ctx context.Context, asOf time.Time) (float64, error) {
	reader, err := c.deps.Store.Snapshot(ctx)
	if err != nil {
		c.deps.Logger.Error("Error taking hierarchy snapshot", slog.String("error", err.Error()))
		return 0, err
	}

	employees, err := reader.GetAllEmployees(ctx)
	if err != nil {
		return 0, err
	}

	return c.sumSalaries(ctx, reader, employees, asOf, map[uint64]bool{})
}

// computeSalary applies the role policy to one employee. The path set holds
// every supervisor above this point of the recursion; meeting one again
// means the stored hierarchy has a cycle.
func (c *SalaryController) computeSalary(ctx context.Context, reader entity.HierarchyReader, emp *entity.Employee, asOf time.Time, path map[uint64]bool) (float64, error) {
	if path[emp.ID] {
		c.deps.Logger.Error("Hierarchy cycle detected", slog.Any("id", emp.ID))
		return 0, fmt.Errorf("%w: employee %d is its own ancestor", entity.ErrHierarchyCycle, emp.ID)
	}
	path[emp.ID] = true

	policy, ok := emp.Role.Policy()
	if !ok {
		return 0, fmt.Errorf("%w: %q", entity.ErrUnknownRole, emp.Role)
	}

	years := YearsOfService(emp.DateOfJoin, asOf)
	salary := emp.BaseSalary + math.Min(float64(years)*policy.BonusPerYear, policy.BonusCap)*emp.BaseSalary

	if policy.Depth == entity.DepthNone {
		return salary, nil
	}

	team, err := c.teamSalaries(ctx, reader, emp, asOf, policy.Depth, path)
	if err != nil {
		return 0, err
	}

	return salary + policy.TeamRate*team, nil
}

func (c *SalaryController) teamSalaries(ctx context.Context, reader entity.HierarchyReader, emp *entity.Employee, asOf time.Time, depth entity.TraversalDepth, path map[uint64]bool) (float64, error) {
	var team []entity.Employee
	var err error

	switch depth {
	case entity.DepthDirect:
		team = emp.Subordinates
		if team == nil {
			if team, err = reader.GetDirectSubordinates(ctx, emp.ID); err != nil {
				return 0, err
			}
		}
	case entity.DepthSubtree:
		if team, err = c.collectDescendants(ctx, reader, emp.ID); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%w: traversal depth %d", entity.ErrUnknownRole, depth)
	}

	return c.sumSalaries(ctx, reader, team, asOf, path)
}

// sumSalaries computes each member's salary and adds them up. Members are
// independent of each other, so they are evaluated concurrently; the sum is
// taken in input order once all results are in, keeping the float
// accumulation deterministic for a fixed input.
func (c *SalaryController) sumSalaries(ctx context.Context, reader entity.HierarchyReader, team []entity.Employee, asOf time.Time, path map[uint64]bool) (float64, error) {
	if len(team) == 0 {
		return 0, nil
	}

	salaries := make([]float64, len(team))

	g, gctx := errgroup.WithContext(ctx)
	for i := range team {
		i := i
		g.Go(func() error {
			salary, err := c.computeSalary(gctx, reader, &team[i], asOf, maps.Clone(path))
			if err != nil {
				return err
			}

			salaries[i] = salary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total float64
	for _, salary := range salaries {
		total += salary
	}

	return total, nil
}

// collectDescendants walks the subtree below rootID breadth-first with an
// explicit worklist and a visited set. Any id reached twice is a cycle in
// the stored data: the walk aborts instead of looping. Cancellation is
// checked between layers.
func (c *SalaryController) collectDescendants(ctx context.Context, reader entity.HierarchyReader, rootID uint64) ([]entity.Employee, error) {
	visited := map[uint64]bool{rootID: true}

	var descendants []entity.Employee
	frontier := []uint64{rootID}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next []uint64
		for _, id := range frontier {
			subordinates, err := reader.GetDirectSubordinates(ctx, id)
			if err != nil {
				return nil, err
			}

			for _, sub := range subordinates {
				if visited[sub.ID] {
					c.deps.Logger.Error("Hierarchy cycle detected", slog.Any("id", sub.ID))
					return nil, fmt.Errorf("%w: employee %d reached twice below %d", entity.ErrHierarchyCycle, sub.ID, rootID)
				}

				visited[sub.ID] = true
				descendants = append(descendants, sub)
				next = append(next, sub.ID)
			}
		}

		frontier = next
	}

	return descendants, nil
}

func salaryCacheKey(id uint64, asOf time.Time) string {
	return fmt.Sprintf("salary:%d:%s", id, asOf.Format("2006-01-02"))
}
