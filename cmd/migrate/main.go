// migrate aplica las migraciones SQL embebidas con goose.
//
// Uso:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate status
//	go run ./cmd/migrate redo
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stockmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migraciones de base de datos de StockMaster",
}

func gooseCommand(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), name, args...)
		},
	}
}

func run(ctx context.Context, command string, args ...string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, command, args...); err != nil {
		return err
	}
	log.Info().Str("command", command).Msg("migración completada")
	return nil
}

func init() {
	rootCmd.AddCommand(
		gooseCommand("up", "Aplica todas las migraciones pendientes"),
		gooseCommand("up-by-one", "Aplica la siguiente migración"),
		gooseCommand("down", "Revierte la última migración"),
		gooseCommand("redo", "Revierte y vuelve a aplicar la última migración"),
		gooseCommand("status", "Muestra el estado de cada migración"),
		gooseCommand("version", "Muestra la versión actual del esquema"),
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
