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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturas-api/internal/application/billing"
	"github.com/jhoicas/facturas-api/internal/domain/repository"
	"github.com/jhoicas/facturas-api/internal/infrastructure/memory"
	"github.com/jhoicas/facturas-api/internal/infrastructure/metrics"
	"github.com/jhoicas/facturas-api/internal/infrastructure/mongodb"
	infrapdf "github.com/jhoicas/facturas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/facturas-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/facturas-api/internal/interfaces/http"
	"github.com/jhoicas/facturas-api/pkg/config"
	"github.com/jhoicas/facturas-api/pkg/logger"
)

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
		Str("pdf_engine", cfg.PDF.Engine).
		Msg("iniciando aplicación")

	// Los importes viajan como números JSON, no como strings.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	// ── Almacén ──────────────────────────────────────────────────────────────
	var (
		invoiceRepo repository.InvoiceRepository
		txRunner    billing.InvoiceTxRunner
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema PostgreSQL")
		}
		invoiceRepo = postgres.NewInvoiceRepository(pool)
		txRunner = postgres.NewTxRunner(pool)

	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a MongoDB")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("índices MongoDB")
		}
		repo := mongodb.NewInvoiceRepository(db)
		invoiceRepo = repo
		// Unicidad entre instancias: índice único sobre invoice_number.
		txRunner = memory.NewSerialTxRunner(repo)

	default:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		repo := memory.NewInvoiceRepository()
		invoiceRepo = repo
		txRunner = memory.NewSerialTxRunner(repo)
	}

	// ── Renderizado PDF ──────────────────────────────────────────────────────
	company := infrapdf.Company{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		TaxID:   cfg.Company.TaxID,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
	}
	var renderer billing.InvoicePDFRenderer
	switch cfg.PDF.Engine {
	case config.EngineMaroto:
		renderer = infrapdf.NewMarotoRenderer(company)
	default:
		profile := infrapdf.DevelopmentProfile()
		if cfg.App.IsProduction() {
			profile = infrapdf.ProductionProfile(cfg.PDF.BrowserBin)
		}
		engine := infrapdf.NewRodEngine(profile,
			infrapdf.WithLoadTimeout(cfg.PDF.LoadTimeout),
			infrapdf.WithEngineLogger(log.Component("rod")),
		)
		log.Info().Str("profile", profile.Name).Str("bin", profile.Bin).Msg("motor PDF Chromium")
		renderer = infrapdf.NewHTMLInvoiceRenderer(engine, company)
	}

	pdfMetrics := metrics.NewPDFMetrics(prometheus.DefaultRegisterer)

	invoiceUC := billing.NewInvoiceUseCase(invoiceRepo, txRunner)
	pdfUC := billing.NewPDFUseCase(invoiceRepo, renderer,
		billing.WithRenderTimeout(cfg.PDF.RenderTimeout),
		billing.WithObserver(pdfMetrics),
		billing.WithLogger(log.Component("pdf")),
	)

	// ── HTTP ─────────────────────────────────────────────────────────────────
	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// Por encima del plazo de render para que el 504 llegue al cliente.
		WriteTimeout: cfg.PDF.RenderTimeout + 30*time.Second,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(httpLog))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturas API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:   invoiceUC,
		PDFUC:       pdfUC,
		Log:         httpLog,
		AppName:     cfg.App.Name,
		Development: cfg.App.IsDevelopment(),
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Metrics:     promhttp.Handler(),
	})

	if !cfg.JWT.Enabled() {
		log.Warn().Msg("JWT_SECRET vacío: autenticación desactivada")
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

	log.Info().Msg("aplicación detenida")
}
