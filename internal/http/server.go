// Package http serves the dashboard page, its HTMX partials and the JSON API.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bankdash/internal/cache"
	"bankdash/internal/config"
	"bankdash/internal/dashboard"
	"bankdash/internal/log"
	"bankdash/internal/middleware/ratelimit"
	"bankdash/internal/middleware/security"
	"bankdash/internal/middleware/trace"
	"bankdash/internal/theme"
	"bankdash/internal/upload"
	appweb "bankdash/web"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Addr               string
	UploadMaxBytes     int64
	MultipartMemory    int64
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
	CleanupInterval    time.Duration
	// RefreshTimeout bounds a reload triggered by an upload or /api/refresh.
	RefreshTimeout time.Duration
}

// OptionsFromConfig maps the application configuration onto server options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Addr:               ":" + cfg.Port,
		UploadMaxBytes:     cfg.UploadMaxBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
	}
}

func (o Options) withDefaults() Options {
	if o.UploadMaxBytes <= 0 {
		o.UploadMaxBytes = 10 << 20
	}
	if o.MultipartMemory <= 0 {
		o.MultipartMemory = 32 << 20
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 60
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 64
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = time.Minute
	}
	if o.RefreshTimeout <= 0 {
		o.RefreshTimeout = 30 * time.Second
	}
	return o
}

// Server wraps http.Server with the dashboard dependencies.
type Server struct {
	http.Server
	loader  *dashboard.Loader
	themes  *theme.Flag
	uploads *upload.Service
	logger  *log.Logger
	opts    Options

	templates *template.Template

	// rendered content partials
	views         *cache.LRUCache[cache.ViewKey, []byte]
	caches        *cache.Manager
	cancelCleanup context.CancelFunc

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	metrics *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	startedAt       time.Time
	uploadsAccepted atomic.Int64
	uploadsRejected atomic.Int64
	refreshes       atomic.Int64
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server. Call Shutdown to stop background cleanup.
func NewServer(opts Options, loader *dashboard.Loader, themes *theme.Flag, uploads *upload.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	s := &Server{
		loader:  loader,
		themes:  themes,
		uploads: uploads,
		logger:  logger.WithComponent(log.ComponentHTTP),
		opts:    opts,
		views:   cache.NewLRUCache[cache.ViewKey, []byte](opts.CacheSize, opts.CacheTTL),
		caches:  cache.NewManager(logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		securityDetector: security.NewDetector(),
		metrics:          &appMetrics{startedAt: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	s.caches.Register(s.views)
	cleanupCtx, cancel := context.WithCancel(context.Background())
	s.cancelCleanup = cancel
	s.caches.StartCleanup(cleanupCtx, opts.CleanupInterval)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldComponent, log.ComponentTemplate, log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /ui/content", s.handleContent)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
	mux.HandleFunc("POST /theme/toggle", s.handleToggleTheme)

	mux.HandleFunc("POST /upload", s.handleUpload)

	// outermost first: trace, suspicious requests, headers, rate limit
	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown stops background workers and gracefully shuts down the server.
// It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cancelCleanup()
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
		return
	}
	writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.", "RATE_LIMITED")
}

// refresh reloads the dashboard detached from the caller's cancellation so a
// client disconnect does not abort a half-finished load.
func (s *Server) refresh(ctx context.Context) (*dashboard.Snapshot, error) {
	s.metrics.refreshes.Add(1)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RefreshTimeout)
	defer cancel()
	return s.loader.Load(ctx)
}
