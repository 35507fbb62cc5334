// seed carga datos de demostración o importa un catálogo de productos desde CSV.
//
// Uso:
//
//	go run ./cmd/seed demo
//	go run ./cmd/seed products --file catalogo.csv --charset latin1 --location "Main Warehouse"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/stockmaster-api/internal/application/auth"
	"github.com/jhoicas/stockmaster-api/internal/application/dto"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/mail"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

const (
	demoEmail    = "demo@stockmaster.com"
	seedActorKey = "seed"
)

var (
	demoPassword string
	catalogFile  string
	catalogCSet  string
	locationName string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Datos iniciales de StockMaster",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Crea usuario demo, ubicaciones y productos de ejemplo",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()
		return app.seedDemo(cmd.Context())
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Importa productos desde un CSV (sku,name,category,uom,reorder_level,initial_stock)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(catalogFile)
		if err != nil {
			return fmt.Errorf("abrir catálogo: %w", err)
		}
		defer f.Close()
		rows, err := readCatalog(f, catalogCSet)
		if err != nil {
			return err
		}

		app, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()
		return app.importProducts(cmd.Context(), rows, locationName)
	},
}

type seeder struct {
	products  *usecase.ProductUseCase
	locations *usecase.LocationUseCase
	auth      *auth.AuthUseCase
	log       *logger.Logger
	close     func()
}

func open(ctx context.Context) (*seeder, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	engine := inventory.NewMovementEngine(
		postgres.NewTxRunner(pool, postgres.DefaultTxOptions(), log),
		productRepo, locationRepo,
		postgres.NewOperationRepository(pool), postgres.NewLedgerRepository(pool),
		inventory.EngineConfig{OperationTimeout: cfg.Engine.OperationTimeout},
		log,
	)
	return &seeder{
		products:  usecase.NewProductUseCase(productRepo, locationRepo, postgres.NewStockRepository(pool), engine),
		locations: usecase.NewLocationUseCase(locationRepo),
		auth: auth.NewAuthUseCase(
			postgres.NewUserRepository(pool), postgres.NewPasswordResetRepository(pool),
			mail.NewLogMailer(log),
			auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer},
		),
		log:   log.Named("seed"),
		close: pool.Close,
	}, nil
}

func (s *seeder) seedDemo(ctx context.Context) error {
	user, err := s.auth.CreateUser(ctx, dto.SignupRequest{
		Name: "Demo Manager", Email: demoEmail, Password: demoPassword,
	}, entity.RoleInventoryManager)
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		s.log.Info().Str("email", demoEmail).Msg("usuario demo ya existe")
	case err != nil:
		return fmt.Errorf("usuario demo: %w", err)
	default:
		s.log.Info().Str("email", user.Email).Msg("usuario demo creado")
	}

	warehouse, err := s.ensureLocation(ctx, "Main Warehouse", entity.LocationTypeWarehouse)
	if err != nil {
		return err
	}
	if _, err := s.ensureLocation(ctx, "Production Floor", entity.LocationTypeLocation); err != nil {
		return err
	}
	if _, err := s.ensureLocation(ctx, "Rack A1", entity.LocationTypeLocation); err != nil {
		return err
	}

	demo := []catalogRow{
		{SKU: "STL-001", Name: "Steel Rod 12mm", Category: "Raw Materials", UOM: "kg",
			ReorderLevel: decimal.NewFromInt(200), InitialStock: decimal.NewFromInt(1500)},
		{SKU: "BLT-M8", Name: "Bolt M8", Category: "Fasteners", UOM: "pcs",
			ReorderLevel: decimal.NewFromInt(500), InitialStock: decimal.NewFromInt(320)},
		{SKU: "PNT-BLU", Name: "Blue Paint 4L", Category: "Finishing", UOM: "can",
			ReorderLevel: decimal.NewFromInt(10), InitialStock: decimal.NewFromInt(25)},
		{SKU: "BOX-M", Name: "Shipping Box M", Category: "Packaging", UOM: "pcs",
			ReorderLevel: decimal.NewFromInt(100)},
	}
	return s.createProducts(ctx, demo, warehouse)
}

func (s *seeder) importProducts(ctx context.Context, rows []catalogRow, location string) error {
	loc, err := s.ensureLocation(ctx, location, entity.LocationTypeWarehouse)
	if err != nil {
		return err
	}
	return s.createProducts(ctx, rows, loc)
}

func (s *seeder) createProducts(ctx context.Context, rows []catalogRow, loc *dto.LocationResponse) error {
	created, skipped := 0, 0
	for _, r := range rows {
		in := dto.CreateProductRequest{
			SKU: r.SKU, Name: r.Name, Category: r.Category, UOM: r.UOM, ReorderLevel: r.ReorderLevel,
		}
		if r.InitialStock.IsPositive() {
			qty := r.InitialStock
			in.InitialStock = &qty
			in.LocationID = loc.ID
		}
		_, err := s.products.Create(ctx, seedActorKey, in)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			return fmt.Errorf("producto %s: %w", r.SKU, err)
		default:
			created++
		}
	}
	s.log.Info().Int("created", created).Int("skipped", skipped).Str("location", loc.Name).Msg("productos cargados")
	return nil
}

// ensureLocation busca la ubicación por nombre (sin distinguir mayúsculas) o la crea.
func (s *seeder) ensureLocation(ctx context.Context, name, typ string) (*dto.LocationResponse, error) {
	list, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if strings.EqualFold(list[i].Name, name) {
			return &list[i], nil
		}
	}
	return s.locations.Create(ctx, dto.CreateLocationRequest{Name: name, Type: typ})
}

func init() {
	demoCmd.Flags().StringVar(&demoPassword, "password", "demo1234", "contraseña del usuario demo")
	productsCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "ruta del CSV")
	productsCmd.Flags().StringVar(&catalogCSet, "charset", "utf-8", "codificación del CSV: utf-8, latin1, windows-1252")
	productsCmd.Flags().StringVar(&locationName, "location", "Main Warehouse", "ubicación del stock inicial")
	_ = productsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(demoCmd, productsCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
