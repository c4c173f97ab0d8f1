package controllers

import (
	"context"
	"log/slog"
	"time"

	"github.com/orgwise/payroll_service/internal/config"
	"github.com/orgwise/payroll_service/internal/entity"
	"github.com/redis/go-redis/v9"
)

type Controllers struct {
	AuthController     *AuthController
	EmployeeController *EmployeeController
	SalaryController   *SalaryController
}

func NewControllers(deps *Dependens) *Controllers {
	return &Controllers{
		AuthController:     NewAuthController(deps),
		EmployeeController: NewEmployeeController(deps),
		SalaryController:   NewSalaryController(deps),
	}
}

type Dependens struct {
	Store entity.HierarchyStore
	Redis interface {
		Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
		Get(ctx context.Context, key string) *redis.StringCmd
		Del(ctx context.Context, keys ...string) *redis.IntCmd
	}
	Logger *slog.Logger
	Config *config.Config
}
