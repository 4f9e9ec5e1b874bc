package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"yt-clipper/internal/batch"
	"yt-clipper/internal/catalog"
	"yt-clipper/internal/clipper"
	"yt-clipper/internal/encoder"
	"yt-clipper/internal/handlers"
	"yt-clipper/internal/jobs"
	"yt-clipper/internal/logging"
	"yt-clipper/internal/memory"
	"yt-clipper/internal/metrics"
	"yt-clipper/internal/middleware"
	"yt-clipper/internal/resolver"
	"yt-clipper/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Set GOMEMLIMIT before anything allocates
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// The pipeline is all subprocess orchestration; refuse to start
	// without the tools it shells out to.
	if err := startup.LogToolCheck(); err != nil {
		startup.LogFatal("External tool error: %v", err)
	}

	// Detect the best available encoder once for the process lifetime
	detectCtx, cancelDetect := context.WithTimeout(context.Background(), 15*time.Second)
	profile := encoder.Detect(detectCtx)
	cancelDetect()
	startup.LogEncoderInit(profile.Name, profile.Hardware())

	// Batch sequence store
	store := batch.NewStore(config.StateFile)
	state := store.Status()
	startup.LogBatchInit(state.Counter, state.LastReset)

	// Metrics
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
		metrics.BatchCounter.Set(float64(state.Counter))
	}

	// Pipeline components
	res := resolver.New(config.TmpDir)
	clip := clipper.New(profile)
	cat := catalog.New(config.ClipsDir, config.TmpDir, store)

	// Job registry and the single worker goroutine
	registry := jobs.NewRegistry()
	worker := jobs.NewWorker(registry, res, clip, config.ClipsDir)
	workerDone := make(chan struct{})
	go func() {
		worker.Run(context.Background())
		close(workerDone)
	}()
	startup.LogWorkerStarted()

	// Initialize handlers
	h := handlers.New(registry, store, res, clip, cat, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	// Apply CORS middleware (the API serves a browser extension)
	corsHandler := middleware.CORS(middleware.DefaultCORSConfig())(router)

	// Apply metrics middleware
	var metered http.Handler = corsHandler
	if config.MetricsEnabled {
		metered = middleware.Metrics(middleware.DefaultMetricsConfig())(corsHandler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggedHandler := middleware.Logger(loggingConfig)(metered)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(loggedHandler)

	// Create server
	srv := &http.Server{
		Addr:        ":" + config.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// Sync clips and large downloads can hold a response open for
		// minutes; no write timeout.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Dedicated metrics server so scrapes never contend with clip
	// traffic
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, registry, workerDone)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
	<-workerDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Clip pipeline routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/clip/queue", h.SubmitClip).Methods("POST")
	api.HandleFunc("/clip", h.SyncClip).Methods("POST")
	api.HandleFunc("/jobs", h.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", h.GetJob).Methods("GET")
	api.HandleFunc("/batch/status", h.BatchStatus).Methods("GET")
	api.HandleFunc("/batch/reset", h.BatchReset).Methods("POST")
	api.HandleFunc("/files", h.ListFiles).Methods("GET")
	api.HandleFunc("/probe", h.Probe).Methods("POST")

	// Finished clips
	r.HandleFunc("/clips/{filename}", h.ServeClip).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, registry *jobs.Registry, workerDone <-chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Closing job queue")
	registry.Close()
	select {
	case <-workerDone:
		startup.LogShutdownStepComplete("Worker stopped")
	case <-ctx.Done():
		logging.Warn("Worker did not stop before timeout")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
