// Copyright (C) 2026 LatticeWorks AI (dev@latticeworks.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package riskintel provides the provider risk intelligence service.
//
// The package wires the pipeline components together: HTTP routing,
// the LLM-backed explanation client, the Badger-backed record and audit
// stores, optional Weaviate summary indexing, and observability
// infrastructure.
//
// # Usage
//
//	cfg := riskintel.Config{Port: 12310, LLMBackend: "ollama"}
//	svc, err := riskintel.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(svc.Run())
package riskintel

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	badgerstore "github.com/LatticeWorksAI/LatticeRisk/pkg/storage/badger"
	"github.com/LatticeWorksAI/LatticeRisk/services/llm"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/datatypes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/engine"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/explain"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/indexer"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/observability"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/routes"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/scoring"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/signals"
	"github.com/LatticeWorksAI/LatticeRisk/services/riskintel/store"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the risk intelligence service.
//
// Implementations must be safe for concurrent use. Run() blocks and
// should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing. Callers
	// must not modify routes after construction.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds riskintel configuration options. All fields have
// sensible defaults applied by New().
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// LLMBackend specifies the explanation model provider.
	// Valid values: "openai", "ollama", "claude", "anthropic"
	// Default: "ollama"
	LLMBackend string

	// WeaviateURL is the Weaviate vector database URL. If empty, risk
	// summary indexing is disabled and the service runs in lightweight
	// mode. Example: "http://localhost:8080"
	WeaviateURL string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Default: "lattice-otel-collector:4317"
	OTelEndpoint string

	// EnableMetrics exposes Prometheus metrics at /metrics.
	// Default: true
	EnableMetrics bool

	// GinMode sets the Gin framework mode ("debug", "release", "test").
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// DataDir is the directory for the embedded BadgerDB holding
	// provider records and the signal audit log.
	// Default: "./data/riskintel"
	DataDir string

	// InMemoryStore replaces BadgerDB with in-memory storage. Useful
	// for tests and ephemeral deployments.
	InMemoryStore bool

	// PolicyPath is an optional YAML file overriding the default
	// aggregation policy (weights, thresholds, keyword bonuses).
	PolicyPath string

	// SimulatorSeed seeds the watchlist simulator. Zero means
	// time-seeded (non-deterministic).
	SimulatorSeed int64

	// InFlightWindow bounds duplicate refresh suppression.
	// Default: engine.DefaultInFlightWindow
	InFlightWindow time.Duration
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use. All fields are
// read-only after New() returns.
type service struct {
	config         Config
	router         *gin.Engine
	engine         *engine.Engine
	providers      store.ProviderStore
	llmClient      llm.LLMClient
	weaviateClient *weaviate.Client
	db             *badgerstore.DB
	tracerCleanup  func(context.Context)
}

// New creates a risk intelligence Service with the given configuration:
// tracing, metrics, storage, the LLM client, the pipeline engine, and
// the HTTP router, in that order. Initialization of optional
// collaborators (Weaviate) degrades to lightweight mode instead of
// failing.
func New(cfg Config) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	cleanup, err := s.initTracer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	s.tracerCleanup = cleanup

	var metrics *observability.PipelineMetrics
	if s.config.EnableMetrics {
		metrics = observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics for risk pipeline")
	}

	if err := s.initWeaviate(); err != nil {
		slog.Warn("Weaviate initialization failed, running without summary indexing",
			"error", err)
		// Not fatal - the pipeline works without the vector store.
	}

	if err := s.initStorage(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := s.initLLMClient(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	policy, err := s.loadPolicy()
	if err != nil {
		s.cleanup()
		return nil, err
	}

	var audit signals.Audit
	if s.db != nil {
		audit = signals.NewAuditStore(s.db.DB)
	}
	var summaryIndexer engine.SummaryIndexer
	if s.weaviateClient != nil {
		summaryIndexer = indexer.New(s.weaviateClient)
	}

	s.engine, err = engine.New(engine.Config{
		Store:          s.providers,
		Source:         signals.NewSimulator(s.config.SimulatorSeed),
		Audit:          audit,
		Explainer:      explain.NewClient(s.llmClient),
		Policy:         policy,
		Indexer:        summaryIndexer,
		Metrics:        metrics,
		InFlightWindow: s.config.InFlightWindow,
	})
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize risk engine: %w", err)
	}

	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
// Cleanup is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting riskintel server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = "ollama"
	}
	if cfg.OTelEndpoint == "" {
		cfg.OTelEndpoint = "lattice-otel-collector:4317"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/riskintel"
	}
	cfg.EnableMetrics = true
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing via an OTLP
// gRPC exporter. Uses an insecure connection, appropriate for internal
// networks.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("riskintel-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initWeaviate creates the Weaviate client if a URL is configured and
// ensures the RiskSummary schema exists. An empty URL is not an error;
// indexing is simply disabled.
func (s *service) initWeaviate() error {
	weaviateURL := strings.Trim(s.config.WeaviateURL, "\"' ")

	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("Weaviate URL not configured, summary indexing disabled")
		return nil
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("invalid Weaviate URL: %s", weaviateURL)
	}

	clientConf := weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	}

	s.weaviateClient, err = weaviate.NewClient(clientConf)
	if err != nil {
		return fmt.Errorf("failed to create Weaviate client: %w", err)
	}

	datatypes.EnsureWeaviateSchema(s.weaviateClient)
	slog.Info("Weaviate client initialized", "url", weaviateURL)

	return nil
}

// initStorage opens the embedded database (or the in-memory store) and
// builds the provider store on top of it.
func (s *service) initStorage() error {
	if s.config.InMemoryStore {
		s.providers = store.NewMemoryStore()
		db, err := badgerstore.OpenInMemory()
		if err != nil {
			return fmt.Errorf("failed to open in-memory audit database: %w", err)
		}
		s.db = db
		slog.Info("Using in-memory provider storage")
		return nil
	}

	cfg := badgerstore.DefaultConfig()
	cfg.Path = s.config.DataDir
	cfg.Logger = slog.Default()
	db, err := badgerstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", s.config.DataDir, err)
	}
	s.db = db
	s.providers = store.NewBadgerStore(db.DB)
	slog.Info("Opened provider database", "path", s.config.DataDir)
	return nil
}

// initLLMClient selects the explanation model backend.
func (s *service) initLLMClient() error {
	var err error

	switch s.config.LLMBackend {
	case "openai":
		s.llmClient, err = llm.NewOpenAIClient()
		slog.Info("Using OpenAI explanation backend")
	case "ollama":
		s.llmClient, err = llm.NewOllamaClient()
		slog.Info("Using Ollama explanation backend")
	case "claude", "anthropic":
		s.llmClient, err = llm.NewAnthropicClient()
		slog.Info("Using Anthropic (Claude) explanation backend")
	default:
		slog.Warn("Unknown LLM backend, defaulting to ollama", "backend", s.config.LLMBackend)
		s.llmClient, err = llm.NewOllamaClient()
	}

	return err
}

// loadPolicy loads the aggregation policy from the configured YAML file,
// falling back to the built-in default table.
func (s *service) loadPolicy() (scoring.Policy, error) {
	if s.config.PolicyPath == "" {
		return scoring.DefaultPolicy(), nil
	}
	policy, err := scoring.LoadPolicy(s.config.PolicyPath)
	if err != nil {
		return scoring.Policy{}, fmt.Errorf("failed to load aggregation policy: %w", err)
	}
	slog.Info("Loaded aggregation policy", "path", s.config.PolicyPath)
	return policy, nil
}

// initRouter sets up the Gin HTTP router with middleware and routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("riskintel-service"))

	if s.config.EnableMetrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	routes.SetupRoutes(s.router, s.engine, s.providers)
}

// cleanup releases all resources held by the service.
func (s *service) cleanup() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Warn("Database close error", "error", err)
		}
	}
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
