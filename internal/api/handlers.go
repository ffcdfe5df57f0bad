package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/NeuroReclaim/internal/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (rt *Router) writeAuthResult(w http.ResponseWriter, status int, res *services.AuthResult) {
	writeJSON(w, status, map[string]any{
		"token":      res.Token,
		"user_id":    res.UserID,
		"role":       res.Role,
		"expires_in": int(rt.auth.TokenTTL().Seconds()),
	})
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rt.writeAuthResult(w, http.StatusCreated, res)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	rt.writeAuthResult(w, http.StatusOK, res)
}

func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := rt.auth.Me(userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Tokens are stateless; logout only records the event.
func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	rt.store.AddAudit(auditNow(userID(r), "auth.logout", userID(r)))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// substance configuration

type profileUpdate struct {
	ID string `json:"id,omitempty"`
	services.ProfileInput
}

func (rt *Router) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := rt.profiles.Create(userID(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (rt *Router) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := rt.profiles.Get(userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if p == nil {
		writeServiceError(w, r, services.NewNotFoundError("substance config not found"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (rt *Router) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := rt.profiles.Update(userID(r), in.ID, in.ProfileInput)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// workouts

func (rt *Router) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var in services.WorkoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	wk, err := rt.workouts.Create(userID(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wk)
}

func (rt *Router) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ws, err := rt.workouts.List(userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": ws})
}

func (rt *Router) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var in services.WorkoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	wk, err := rt.workouts.Update(userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}

func (rt *Router) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := rt.workouts.Delete(userID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// check-ins

func (rt *Router) handleCreateCheckin(w http.ResponseWriter, r *http.Request) {
	var in services.CheckinInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := rt.checkins.Create(userID(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (rt *Router) handleListCheckins(w http.ResponseWriter, r *http.Request) {
	cs, err := rt.checkins.List(userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkins": cs})
}

func (rt *Router) handleUpdateCheckin(w http.ResponseWriter, r *http.Request) {
	var in services.CheckinInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := rt.checkins.Update(userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// relapse logs

func (rt *Router) handleCreateRelapse(w http.ResponseWriter, r *http.Request) {
	var in services.RelapseInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	rl, err := rt.relapses.Create(userID(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rl)
}

func (rt *Router) handleListRelapses(w http.ResponseWriter, r *http.Request) {
	rs, err := rt.relapses.List(userID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relapses": rs})
}

func (rt *Router) handleUpdateRelapse(w http.ResponseWriter, r *http.Request) {
	var in services.RelapseInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	rl, err := rt.relapses.Update(userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rl)
}
