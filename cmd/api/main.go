package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/chefmanager/chefmanager-api/internal/application/auth"
	"github.com/chefmanager/chefmanager-api/internal/application/catalogo"
	"github.com/chefmanager/chefmanager-api/internal/application/inventario"
	"github.com/chefmanager/chefmanager-api/internal/application/pedidos"
	"github.com/chefmanager/chefmanager-api/internal/application/recepcion"
	"github.com/chefmanager/chefmanager-api/internal/infrastructure/postgres"
	httpRouter "github.com/chefmanager/chefmanager-api/internal/interfaces/http"
	"github.com/chefmanager/chefmanager-api/pkg/config"
	"github.com/chefmanager/chefmanager-api/pkg/logger"
	"github.com/chefmanager/chefmanager-api/pkg/metrics"
)

// runMigrations aplica las migraciones goose pendientes antes de servir.
func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	pedidoRepo := postgres.NewPedidoRepository(pool)
	itemRepo := postgres.NewPedidoItemRepository(pool)
	invRepo := postgres.NewInventarioRepository(pool)
	movRepo := postgres.NewMovimientoRepository(pool)
	productRepo := postgres.NewProductoRepository(pool)
	unitRepo := postgres.NewUnidadRepository(pool)
	userRepo := postgres.NewUsuarioRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := inventario.NewLedgerUseCase(txRunner, invRepo, movRepo)
	pedidosUC := pedidos.NewUseCase(txRunner, pedidoRepo, itemRepo, productRepo)
	recepcionUC := recepcion.NewUseCase(txRunner, ledgerUC, pedidosUC)
	catalogoUC := catalogo.NewUseCase(productRepo, unitRepo)
	authUC := auth.NewUseCase(userRepo, unitRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ChefManager API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CatalogoUC:  catalogoUC,
		PedidosUC:   pedidosUC,
		RecepcionUC: recepcionUC,
		LedgerUC:    ledgerUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.Addr)
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr).Msg("servidor de métricas iniciado")
			if err := metricsSrv.Start(); err != nil {
				log.Error().Err(err).Msg("servidor de métricas finalizado")
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("apagado del servidor de métricas")
		}
	}

	log.Info().Msg("aplicación detenida")
}
