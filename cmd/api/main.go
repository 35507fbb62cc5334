package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	appanalytics "github.com/jhoicas/stockmaster-api/internal/application/analytics"
	"github.com/jhoicas/stockmaster-api/internal/application/auth"
	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/events"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/stockmaster-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/stockmaster-api/internal/interfaces/http"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
	"github.com/jhoicas/stockmaster-api/pkg/metrics"
	pkgredis "github.com/jhoicas/stockmaster-api/pkg/redis"
)

// eventPublisher publica movimientos confirmados y alertas de stock bajo.
type eventPublisher interface {
	inventory.MovementPublisher
	scheduler.LowStockPublisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opMetrics := metrics.NewOperationMetrics(registry)

	// Eventos: RabbitMQ si hay AMQP_URL, si no se descartan.
	var publisher eventPublisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.Connect(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			log.Error().Err(err).Msg("RabbitMQ no disponible; eventos deshabilitados")
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
		}
	}

	// Caché de KPIs: Redis opcional.
	var kpiCache appanalytics.KPICache
	if cfg.Redis.Enabled() {
		redisClient, err := pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("Redis no disponible; KPIs sin caché")
		} else {
			defer redisClient.Close()
			kpiCache = redisClient
		}
	}

	engine := inventory.NewMovementEngine(
		st.tx, st.products, st.locations, st.operations, st.ledger,
		inventory.EngineConfig{OperationTimeout: cfg.Engine.OperationTimeout},
		log,
	).WithObserver(opMetrics).WithPublisher(publisher)

	productUC := usecase.NewProductUseCase(st.products, st.locations, st.stock, engine)
	locationUC := usecase.NewLocationUseCase(st.locations)
	replenishmentUC := inventory.NewReplenishmentUseCase(st.analytics)
	dashboardUC := appanalytics.NewDashboardUseCase(st.analytics, kpiCache, cfg.Redis.KPITTL, log)
	reportUC := appanalytics.NewReportUseCase(st.analytics, infrapdf.NewStockReportGenerator(language.English))
	authUC := auth.NewAuthUseCase(st.users, st.resets, mail.New(cfg.SMTP, log), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	lowStockJob := scheduler.NewLowStockJob(st.analytics, publisher, opMetrics, log)
	cron, err := scheduler.Start(cfg.Jobs.LowStockCron, lowStockJob, log)
	if err != nil {
		log.Fatal().Err(err).Msg("programar jobs")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StockMaster API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		Engine:        engine,
		ProductUC:     productUC,
		LocationUC:    locationUC,
		Replenishment: replenishmentUC,
		DashboardUC:   dashboardUC,
		ReportUC:      reportUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Esperar a que termine una ejecución del job en curso.
	<-cron.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
