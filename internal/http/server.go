package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"recipehub/internal/log"
	"recipehub/internal/middleware/ratelimit"
	"recipehub/internal/middleware/security"
	"recipehub/internal/middleware/trace"
	"recipehub/internal/services"
)

// readyTimeout bounds the store probe behind /readyz.
const readyTimeout = 5 * time.Second

type Server struct {
	http.Server
	catalog *services.RecipeCatalog
	grocery *services.GroceryService
	logger  *log.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	recipesCreated int64
	recipesDeleted int64
	groceryLists   int64
	uptime         time.Time
}

// Options tunes the middleware stack. The zero value is usable.
type Options struct {
	RateLimit      ratelimit.Config
	TrustedProxies []string
}

// NewServer wires routes and middleware over store, returning a
// ready-to-run http.Server.
func NewServer(addr string, store services.CatalogStore, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		catalog:          services.NewRecipeCatalog(store, logger),
		grocery:          services.NewGroceryService(store, logger),
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /recipes", s.handleListRecipes)
	mux.HandleFunc("POST /recipes", s.handleCreateRecipe)
	mux.HandleFunc("GET /recipes/{title}", s.handleGetRecipe)
	mux.HandleFunc("DELETE /recipes/{title}", s.handleDeleteRecipe)

	mux.HandleFunc("POST /grocery-list", s.handleGroceryList)
	mux.HandleFunc("POST /ingredients/parse", s.handleParseIngredients)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, ratelimit.Mutating, s.onRateLimited)(handler)
	handler = s.detectSuspicious(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// detectSuspicious logs probing requests and lets them through; the routes
// reject them on their own.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", "60").
		Write(w)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
