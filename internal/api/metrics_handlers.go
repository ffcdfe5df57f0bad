package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/middleware"
	"github.com/soaringjerry/NeuroReclaim/internal/models"
	"github.com/soaringjerry/NeuroReclaim/internal/recovery"
	"github.com/soaringjerry/NeuroReclaim/internal/services"
	"github.com/soaringjerry/NeuroReclaim/internal/utils"
)

func auditNow(actor, action, target string) models.AuditEntry {
	return models.AuditEntry{Time: time.Now().UTC(), Actor: actor, Action: action, Target: target}
}

// GET /api/metrics?now=RFC3339
func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := rt.metrics.Now()
	if v := strings.TrimSpace(r.URL.Query().Get("now")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeServiceError(w, r, services.NewFieldError("now", "expected RFC3339 timestamp"))
			return
		}
		now = t.UTC()
	}
	d, err := rt.metrics.Dashboard(userID(r), now)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	localizeDashboard(d, middleware.LocaleFromContext(r.Context()))
	writeJSON(w, http.StatusOK, d)
}

// GET /api/metrics/projections?days=7,30,90
func (rt *Router) handleProjections(w http.ResponseWriter, r *http.Request) {
	var horizons []int
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				writeServiceError(w, r, services.NewFieldError("days", "expected comma separated integers"))
				return
			}
			horizons = append(horizons, d)
		}
	}
	p, err := rt.metrics.Projections(userID(r), horizons)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projections": p, "points": p.Points()})
}

// GET /api/tools/one-rep-max?weight=100&reps=5
func (rt *Router) handleOneRepMax(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weight, err := strconv.ParseFloat(q.Get("weight"), 64)
	if err != nil {
		writeServiceError(w, r, services.NewFieldError("weight", "must be a number"))
		return
	}
	reps, err := strconv.Atoi(q.Get("reps"))
	if err != nil {
		writeServiceError(w, r, services.NewFieldError("reps", "must be an integer"))
		return
	}
	res, err := services.OneRepMax(weight, reps)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/tools/points?activity=workout&streak=8
func (rt *Router) handlePoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	streak := 0
	if v := q.Get("streak"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeServiceError(w, r, services.NewFieldError("streak", "must be an integer"))
			return
		}
		streak = n
	}
	res, err := services.Points(q.Get("activity"), streak)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func localizeLevel(l *recovery.DopamineLevel, locale string) {
	l.Name = utils.TOr(locale, "level."+l.Key, l.Name)
}

func localizeDashboard(d *services.Dashboard, locale string) {
	localizeLevel(&d.DopamineLevel, locale)
	for i := range d.Gamification.Badges {
		localizeLevel(&d.Gamification.Badges[i], locale)
	}
	if d.Gamification.NextLevel != nil {
		localizeLevel(d.Gamification.NextLevel, locale)
	}
}
