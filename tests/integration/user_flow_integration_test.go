//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/db"
	"github.com/soaringjerry/NeuroReclaim/internal/middleware"
)

// baseURL targets NEURORECLAIM_TEST_BASE_URL when set, otherwise a local server on a fresh
// SQLite database.
func baseURL(t *testing.T) string {
	if v := os.Getenv("NEURORECLAIM_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "integration.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.RunMigrations(sqlDB, db.SQLite, ""); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store, err := db.NewSQLiteStore(sqlDB)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	middleware.SetSecret("integration-secret")
	srv := httptest.NewServer(api.NewRouter(store, api.Options{Version: "integration"}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestUserJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL(t)

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/auth/register", "", map[string]any{
		"email":    userEmail,
		"password": password,
		"name":     "Integration",
	}, http.StatusCreated, &registerResp)
	if registerResp.Token == "" || registerResp.UserID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, http.StatusOK, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	start := time.Now().UTC().AddDate(0, 0, -10).Format("2006-01-02")
	var profile struct {
		ID       string `json:"id"`
		Currency string `json:"currency"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/substance-config", token, map[string]any{
		"substance_type":          "nicotine",
		"unit":                    "cigarette",
		"unit_price":              0.5,
		"currency":                "eur",
		"abstinence_start_date":   start,
		"prior_daily_consumption": 20,
	}, http.StatusCreated, &profile)
	if profile.ID == "" || profile.Currency != "EUR" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	var checkin struct {
		ID string `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/checkins", token, map[string]any{
		"mood": 8, "craving": 2, "biometrics": map[string]float64{"steps": 6500},
	}, http.StatusCreated, &checkin)
	if checkin.ID == "" {
		t.Fatalf("expected checkin id")
	}

	var workout struct {
		ID        string `json:"id"`
		Exercises []struct {
			EstimatedOneRepMax *float64 `json:"estimated_one_rep_max"`
		} `json:"exercises"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/workouts", token, map[string]any{
		"date":      time.Now().UTC().Format("2006-01-02"),
		"exercises": []map[string]any{{"name": "Deadlift", "sets": 3, "reps": 5, "weight": 120}},
	}, http.StatusCreated, &workout)
	if len(workout.Exercises) != 1 || workout.Exercises[0].EstimatedOneRepMax == nil || *workout.Exercises[0].EstimatedOneRepMax != 140 {
		t.Fatalf("unexpected workout: %+v", workout)
	}

	var before struct {
		StreakDays int `json:"streak_days"`
		Savings    struct {
			DaysSinceReference int     `json:"days_since_reference"`
			MoneySaved         float64 `json:"money_saved"`
		} `json:"savings"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/metrics", token, nil, http.StatusOK, &before)
	if before.Savings.DaysSinceReference != 10 || before.Savings.MoneySaved != 100 || before.StreakDays != 10 {
		t.Fatalf("unexpected metrics before relapse: %+v", before)
	}

	doJSON(t, client, http.MethodPost, base+"/api/relapses", token, map[string]any{
		"trigger_tags": []string{"stress"}, "economic_impact": 5,
	}, http.StatusCreated, nil)

	var after struct {
		StreakDays    int `json:"streak_days"`
		DopamineLevel struct {
			Key string `json:"key"`
		} `json:"dopamine_level"`
		Savings struct {
			DaysSinceReference int `json:"days_since_reference"`
		} `json:"savings"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/metrics", token, nil, http.StatusOK, &after)
	// a relapse resets the streak, the level still follows days since the start date
	if after.StreakDays != 0 || after.DopamineLevel.Key != "stable_momentum" || after.Savings.DaysSinceReference != 10 {
		t.Fatalf("unexpected metrics after relapse: %+v", after)
	}
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d body %s", method, url, resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode response: %v; body=%s", err, string(data))
		}
	}
}
