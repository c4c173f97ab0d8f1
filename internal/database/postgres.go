package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgwise/payroll_service/internal/config"
)

// NewConnect opens a pgx pool. Salary computations fan out concurrent reads,
// so a single pgx.Conn is not enough here.
func NewConnect(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	var url = fmt.Sprintf("postgres://%s:%s@%s/%s",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Database)

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		logger.Error("Error connecting to DB", slog.String("error", err.Error()))
		return nil, err
	}

	if err = pool.Ping(context.Background()); err != nil {
		logger.Error("Error pinging DB", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Connected to DB successfully")
	return pool, nil
}
