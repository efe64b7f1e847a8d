package main

import (
	"context"

	"github.com/inkpress/inkpress/internal/config"
	pg "github.com/inkpress/inkpress/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}
