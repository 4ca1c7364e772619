package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"lustbot-widget/internal/backend"
	"lustbot-widget/internal/identity"
	"lustbot-widget/internal/lead"
	"lustbot-widget/internal/types"
	"lustbot-widget/internal/widget"
)

const defaultIdleTTL = 30 * time.Minute

type Options struct {
	Backend       backend.Exchanger
	Detector      *lead.Detector
	AllowedOrigin string
	SecureCookies bool
	// LeadDelay is applied by the page as an animation delay on the lead
	// overlay; the widget itself opens the form immediately.
	LeadDelay time.Duration
	IdleTTL   time.Duration
	Logger    zerolog.Logger
}

// Server hosts the widget as a server-rendered page. Each browser gets its
// own widget, found through the identity cookie.
type Server struct {
	router    *chi.Mux
	visitors  *visitors
	secure    bool
	leadDelay time.Duration
	log       zerolog.Logger
}

func New(opts Options) *Server {
	log := opts.Logger.With().Str("component", "server").Logger()
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	if opts.IdleTTL == 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.LeadDelay == 0 {
		opts.LeadDelay = widget.DefaultLeadDelay
	}

	s := &Server{
		router:    chi.NewRouter(),
		secure:    opts.SecureCookies,
		leadDelay: opts.LeadDelay,
		log:       log,
	}
	s.visitors = &visitors{
		byID:    make(map[string]*visitor),
		idleTTL: opts.IdleTTL,
		now:     time.Now,
		build: func(userID string, surface *webSurface) (*widget.Widget, error) {
			return widget.New(widget.Options{
				Backend:   opts.Backend,
				Surface:   surface,
				UserID:    userID,
				Detector:  opts.Detector,
				AfterFunc: func(_ time.Duration, f func()) { f() },
				Logger:    opts.Logger,
			})
		},
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/", s.handlePage)
	s.router.Post("/chat/send", s.handleSend)
	s.router.Post("/lead", s.handleLead)
	s.router.Post("/lead/dismiss", s.handleLeadDismiss)
	s.router.Post("/notice/dismiss", s.handleNoticeDismiss)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.HealthResponse{Status: "healthy", Service: "LustBot"})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	vis, ok := s.visitor(w, r)
	if !ok {
		return
	}
	data := pageData{
		surfaceSnapshot: vis.surface.snapshot(),
		QuickActions:    widget.QuickActions,
		LeadDelayMS:     s.leadDelay.Milliseconds(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Error().Err(err).Msg("render page")
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	vis, ok := s.visitor(w, r)
	if !ok {
		return
	}
	message := r.PostFormValue("message")
	if widget.CanSend(message) {
		// The exchange outlives a client that navigates away mid-request.
		vis.widget.SendMessage(context.WithoutCancel(r.Context()), message)
	}
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	vis, ok := s.visitor(w, r)
	if !ok {
		return
	}
	l := lead.Lead{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Product: strings.TrimSpace(r.PostFormValue("product")),
	}
	vis.surface.keepForm(l)
	vis.widget.SubmitLead(context.WithoutCancel(r.Context()), l)
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

func (s *Server) handleLeadDismiss(w http.ResponseWriter, r *http.Request) {
	vis, ok := s.visitor(w, r)
	if !ok {
		return
	}
	vis.widget.DismissLead()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleNoticeDismiss(w http.ResponseWriter, r *http.Request) {
	vis, ok := s.visitor(w, r)
	if !ok {
		return
	}
	vis.surface.dismissNotice()
	http.Redirect(w, r, "/#latest", http.StatusSeeOther)
}

// visitor resolves the browser's identity cookie (creating it on first
// visit) and returns its widget.
func (s *Server) visitor(w http.ResponseWriter, r *http.Request) (*visitor, bool) {
	userID := identity.GetOrCreateUserID(cookieStore{r: r, w: w, secure: s.secure}, s.log)
	vis, err := s.visitors.get(userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("create widget")
		s.writeError(w, http.StatusInternalServerError, "chat unavailable")
		return nil, false
	}
	return vis, true
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
