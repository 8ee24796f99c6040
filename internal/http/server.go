package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gastos/internal/auth"
	"gastos/internal/cache"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	appweb "gastos/web"
)

// Server is the household-facing web app: server-rendered pages and HTMX
// partials over the ledger and purchase services.
type Server struct {
	http.Server
	templates *template.Template

	ledger  *services.LedgerService
	summary *services.SummaryService

	authn         *auth.GoogleAuthenticator
	sessionSecret string
	sessionTTL    time.Duration

	// Computed month views are cached; writes invalidate.
	summaryCache   *cache.LRUCache[core.MonthSummary]
	breakdownCache *cache.LRUCache[[]core.CategoryAmount]
	cacheManager   *cache.Manager

	limiter      *ratelimit.Limiter
	clientIP     *security.ClientIPResolver
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(cfg *config.Config, ledger *services.LedgerService, summary *services.SummaryService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:         ledger,
		summary:        summary,
		sessionSecret:  cfg.SessionSecret,
		sessionTTL:     cfg.SessionTTL,
		summaryCache:   cache.NewLRUCache[core.MonthSummary](100, 5*time.Minute),
		breakdownCache: cache.NewLRUCache[[]core.CategoryAmount](100, 5*time.Minute),
		cacheManager:   cache.NewManager(),
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		clientIP:       security.NewClientIPResolver(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.breakdownCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	if cfg.AuthEnabled() {
		s.authn = auth.NewGoogleAuthenticator(
			cfg.GoogleOAuthClientID,
			cfg.GoogleOAuthClientSecret,
			cfg.GoogleOAuthRedirectURL,
			cfg.AllowedEmails)
	} else {
		slog.Warn("Google sign-in not configured; record routes are open")
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Sign-in flow
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("GET /auth/login", s.handleAuthRedirect)
	mux.HandleFunc("GET /auth/callback", s.handleAuthCallback)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)

	// Record routes; behind the session when sign-in is configured
	protected := s.protect
	limited := s.limiter.Middleware(s.clientIP.ExtractClientIP)

	mux.Handle("GET /{$}", protected(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /ui/month-summary", protected(http.HandlerFunc(s.handleMonthSummary)))
	mux.Handle("GET /ui/ledger", protected(http.HandlerFunc(s.handleLedgerList)))
	mux.Handle("GET /ui/purchases", protected(http.HandlerFunc(s.handlePurchaseList)))
	mux.Handle("GET /ui/purchases/{id}/schedule", protected(http.HandlerFunc(s.handlePurchaseSchedule)))

	mux.Handle("POST /entries", protected(limited(http.HandlerFunc(s.handleCreateEntry))))
	mux.Handle("POST /entries/{id}/settle", protected(http.HandlerFunc(s.handleSettleEntry)))
	mux.Handle("POST /entries/{id}/delete", protected(http.HandlerFunc(s.handleDeleteEntry)))

	mux.Handle("POST /purchases", protected(limited(http.HandlerFunc(s.handleCreatePurchase))))
	mux.Handle("POST /purchases/{id}/delete", protected(http.HandlerFunc(s.handleDeletePurchase)))

	mux.Handle("GET /api/chart/categories", protected(http.HandlerFunc(s.handleCategoryChart)))
	mux.Handle("GET /api/chart/projection", protected(http.HandlerFunc(s.handleProjectionChart)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.clientIP.ExtractClientIP)

	s.Server = http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           headers.Middleware(tracer.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) protect(next http.Handler) http.Handler {
	if s.authn == nil {
		return next
	}
	return auth.NewMiddleware(s.sessionSecret).RequireSession(next)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func monthCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateMonth drops cached views for one month after a ledger write.
func (s *Server) invalidateMonth(year, month int) {
	key := monthCacheKey(year, month)
	s.summaryCache.Delete(key)
	s.breakdownCache.Delete(key)
}

// invalidateAllMonths drops every cached view. Purchase writes change the
// credit column of every month in the installment schedule.
func (s *Server) invalidateAllMonths() {
	s.summaryCache.Clear()
	s.breakdownCache.Clear()
}

func (s *Server) getMonthSummary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	key := monthCacheKey(year, month)
	if data, found := s.summaryCache.Get(key); found {
		return data, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	data, err := s.summary.MonthSummary(cctx, month, year)
	if err != nil {
		return core.MonthSummary{}, err
	}

	s.summaryCache.Set(key, data)
	return data, nil
}

func (s *Server) getBreakdown(ctx context.Context, year, month int) ([]core.CategoryAmount, error) {
	key := monthCacheKey(year, month)
	if data, found := s.breakdownCache.Get(key); found {
		return data, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	data, err := s.summary.CategoryBreakdown(cctx, month, year)
	if err != nil {
		return nil, err
	}

	s.breakdownCache.Set(key, data)
	return data, nil
}
