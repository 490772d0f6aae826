package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/sahminvest/marketplace/docs"
	"github.com/sahminvest/marketplace/internal/config"
	"github.com/sahminvest/marketplace/internal/database"
	"github.com/sahminvest/marketplace/internal/deal"
	"github.com/sahminvest/marketplace/internal/distribution"
	"github.com/sahminvest/marketplace/internal/investment"
	"github.com/sahminvest/marketplace/internal/investor"
	"github.com/sahminvest/marketplace/internal/logger"
	"github.com/sahminvest/marketplace/internal/mailer"
	"github.com/sahminvest/marketplace/internal/notification"
	"github.com/sahminvest/marketplace/internal/transaction"
	mw "github.com/sahminvest/marketplace/pkg/middleware"
)

// @title           Sahem Invest Marketplace API
// @version         1.0
// @description     Investment marketplace with partner-submitted profit distributions
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.L.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.L.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		logger.L.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	logger.L.Info("connected to database")

	auth := mw.NewAuthenticator(cfg.JWTSecret)
	mail := mailer.New(cfg)

	// Investor feature
	investorRepo := investor.NewRepository(db)
	investorService := investor.NewService(investorRepo)
	investorHandler := investor.NewHandler(investorService)

	// Deal feature
	dealRepo := deal.NewRepository(db)
	dealService := deal.NewService(dealRepo, cfg.DealStatsCacheTTL)
	dealHandler := deal.NewHandler(dealService)

	// Ledger feature
	transactionRepo := transaction.NewRepository(db)
	transactionService := transaction.NewService(transactionRepo)
	transactionHandler := transaction.NewHandler(transactionService)

	// Investment feature
	investmentRepo := investment.NewRepository(db)
	investmentService := investment.NewService(db, investmentRepo, investorRepo, transactionRepo, dealService)
	investmentHandler := investment.NewHandler(investmentService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Distribution feature (store spans the other repositories)
	distributionRepo := distribution.NewRepository(db, investorRepo, dealRepo, transactionRepo, notificationService)
	distributionService := distribution.NewService(distributionRepo, dealService, investmentRepo, mail, cfg.ApprovalTxTimeout)
	distributionHandler := distribution.NewHandler(distributionService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public deal catalog
		r.Mount("/deals", dealHandler.Routes())

		// Authenticated routes, grouped by role
		r.Group(func(r chi.Router) {
			r.Use(auth.Verify)

			r.Route("/partner", func(r chi.Router) {
				r.Use(mw.RequireRole(mw.RolePartner))
				r.Mount("/", distributionHandler.PartnerRoutes())
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(mw.RequireRole(mw.RoleAdmin))
				r.Mount("/profit-distribution-requests", distributionHandler.AdminRoutes())
				r.Mount("/investors", investorHandler.AdminRoutes())
			})

			r.Route("/investor", func(r chi.Router) {
				r.Use(mw.RequireRole(mw.RoleInvestor))
				r.Mount("/deals", investmentHandler.Routes())
				r.Mount("/transactions", transactionHandler.Routes())
				r.Mount("/notifications", notificationHandler.Routes())
				r.Mount("/", investorHandler.Routes())
			})
		})
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.L.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.L.Error("server failed", "error", err)
		os.Exit(1)
	}
}
