package main

import (
	"context"

	"github.com/kavica-app/kavica/internal/config"
	"github.com/kavica-app/kavica/internal/db"
)

func main() {
	cfg := config.Load()
	db.Migrate(context.Background(), cfg.PostgresDSN)
}
