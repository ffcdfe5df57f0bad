package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/soaringjerry/NeuroReclaim/internal/middleware"
	"github.com/soaringjerry/NeuroReclaim/internal/services"
	"github.com/soaringjerry/NeuroReclaim/internal/utils"
)

type Options struct {
	Version     string
	Commit      string
	BuildTime   string
	OwnerEmail  string
	TokenTTL    time.Duration
	CORS        bool
	// CORSOrigins restricts cross-origin callers; empty allows any origin.
	CORSOrigins []string
}

type Router struct {
	store    Store
	opts     Options
	auth     *services.AuthService
	profiles *services.ProfileService
	workouts *services.WorkoutService
	checkins *services.CheckinService
	relapses *services.RelapseService
	metrics  *services.MetricsService
}

func NewRouter(store Store, opts Options) *Router {
	auth := services.NewAuthService(store, middleware.SignToken).WithOwner(opts.OwnerEmail)
	if opts.TokenTTL > 0 {
		auth = auth.WithTokenTTL(opts.TokenTTL)
	}
	return &Router{
		store:    store,
		opts:     opts,
		auth:     auth,
		profiles: services.NewProfileService(store),
		workouts: services.NewWorkoutService(store),
		checkins: services.NewCheckinService(store),
		relapses: services.NewRelapseService(store),
		metrics:  services.NewMetricsService(store),
	}
}

// Handler builds the HTTP handler with the full middleware chain.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	if rt.opts.CORS {
		r.Use(middleware.CORS(rt.opts.CORSOrigins))
	}
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.NoStore)
	r.Use(middleware.LocaleMiddleware)
	r.Use(middleware.WithAuth)

	r.Get("/health", rt.handleHealth)
	r.Get("/version", rt.handleVersion)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", rt.handleRegister)
		r.Post("/auth/login", rt.handleLogin)

		r.Get("/tools/one-rep-max", rt.handleOneRepMax)
		r.Get("/tools/points", rt.handlePoints)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", rt.handleMe)
			r.Post("/auth/logout", rt.handleLogout)

			r.Post("/substance-config", rt.handleCreateProfile)
			r.Get("/substance-config", rt.handleGetProfile)
			r.Put("/substance-config", rt.handleUpdateProfile)

			r.Post("/workouts", rt.handleCreateWorkout)
			r.Get("/workouts", rt.handleListWorkouts)
			r.Put("/workouts/{id}", rt.handleUpdateWorkout)
			r.Delete("/workouts/{id}", rt.handleDeleteWorkout)

			r.Post("/checkins", rt.handleCreateCheckin)
			r.Get("/checkins", rt.handleListCheckins)
			r.Put("/checkins/{id}", rt.handleUpdateCheckin)

			r.Post("/relapses", rt.handleCreateRelapse)
			r.Get("/relapses", rt.handleListRelapses)
			r.Put("/relapses/{id}", rt.handleUpdateRelapse)

			r.Get("/metrics", rt.handleDashboard)
			r.Get("/metrics/projections", rt.handleProjections)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, string(services.ErrorNotFound), "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       "NeuroReclaim API",
		"locale":     locale,
		"msg":        utils.T(locale, "health.ok"),
		"commit":     rt.opts.Commit,
		"build_time": rt.opts.BuildTime,
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    rt.opts.Version,
		"commit":     rt.opts.Commit,
		"build_time": rt.opts.BuildTime,
	})
}

// userID is only called behind RequireAuth.
func userID(r *http.Request) string {
	uid, _ := middleware.UserIDFromContext(r.Context())
	return uid
}
