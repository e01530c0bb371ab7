package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
)

type ctxKey int

const kindKey ctxKey = iota

// NewRouter mounts the REST API and the middleware chain.
func NewRouter(cfg Config, svc *Service) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
		IsDevelopment:      !cfg.IsProduction(),
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger,
		secureMiddleware.Handler,
	)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.RateLimit > 0 {
		r.Use(httprate.Limit(cfg.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeMessage(w, http.StatusTooManyRequests, "Rate limited")
			}),
		))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h := &handler{svc: svc}
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(cfg.Token))
		r.With(withKind).Get("/stats/{kind}", h.stats)
		r.Route("/{kind}", func(r chi.Router) {
			r.Use(withKind)
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Get("/search", h.search)
			r.Get("/{id}", h.get)
			r.Delete("/{id}", h.remove)
			r.Post("/{id}/{action}", h.act)
		})
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	log := logging.WithPrefix("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"dur", time.Since(start), "req_id", middleware.GetReqID(r.Context()))
	})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind, err := hr.ParseKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "Unknown collection")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), kindKey, kind)))
	})
}

func kindOf(r *http.Request) hr.Kind {
	k, _ := r.Context().Value(kindKey).(hr.Kind)
	return k
}

type handler struct {
	svc *Service
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request)   { h.page(w, r, false) }
func (h *handler) search(w http.ResponseWriter, r *http.Request) { h.page(w, r, true) }

func (h *handler) page(w http.ResponseWriter, r *http.Request, search bool) {
	req, err := ParsePageRequest(kindOf(r), r.URL.Query(), search)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.svc.Page(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	body, err := h.svc.Get(r.Context(), kindOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// maxCreateBody caps create request bodies.
const maxCreateBody = 1 << 20

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Create(r.Context(), kindOf(r), http.MaxBytesReader(w, r.Body, maxCreateBody))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, msg)
}

func (h *handler) act(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Act(r.Context(), kindOf(r), chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Delete(r.Context(), kindOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, msg)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Stats(r.Context(), kindOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
