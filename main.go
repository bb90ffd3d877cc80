package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/santyago-pixel/portfolio-analyzer/src/config"
	"github.com/santyago-pixel/portfolio-analyzer/src/database"
	"github.com/santyago-pixel/portfolio-analyzer/src/handlers"
	"github.com/santyago-pixel/portfolio-analyzer/src/logger"
	"github.com/santyago-pixel/portfolio-analyzer/src/processors"
	"github.com/santyago-pixel/portfolio-analyzer/src/security"
	"github.com/santyago-pixel/portfolio-analyzer/src/services"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Portfolio analyzer backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	ledger := processors.NewLedgerProcessor()

	var analysisService services.AnalysisService
	datasetService := services.NewDatasetService(ledger, nil)
	analysisService = services.NewAnalysisService(datasetService, reportCache)
	// rebuild the dataset service with cache invalidation wired in
	datasetService = services.NewDatasetService(ledger, analysisService)
	chartService := services.NewChartService()

	userHandler := handlers.NewUserHandler(authService)
	datasetHandler := handlers.NewDatasetHandler(datasetService)
	analysisHandler := handlers.NewAnalysisHandler(analysisService)
	chartHandler := handlers.NewChartHandler(analysisHandler, chartService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Portfolio analyzer backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/refresh", userHandler.RefreshTokenHandler)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Post("/auth/logout", userHandler.LogoutUserHandler)

			r.Post("/upload", datasetHandler.HandleUpload)
			r.Get("/datasets", datasetHandler.HandleListDatasets)
			r.Post("/datasets/sample", datasetHandler.HandleCreateSample)
			r.Delete("/datasets/{id}", datasetHandler.HandleDeleteDataset)

			r.Get("/datasets/{id}/analysis", analysisHandler.HandleGetAnalysis)
			r.Get("/datasets/{id}/metrics", analysisHandler.HandleGetMetrics)
			r.Get("/datasets/{id}/snapshots", analysisHandler.HandleGetSnapshots)
			r.Get("/datasets/{id}/returns", analysisHandler.HandleGetReturns)
			r.Get("/datasets/{id}/attribution", analysisHandler.HandleGetAttribution)
			r.Get("/datasets/{id}/attribution/monthly", analysisHandler.HandleGetMonthlyAttribution)
			r.Get("/datasets/{id}/charts/value.png", chartHandler.HandleValueChart)
			r.Get("/datasets/{id}/charts/drawdown.png", chartHandler.HandleDrawdownChart)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
