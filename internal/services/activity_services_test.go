package services

import (
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

func TestWorkoutServiceLifecycle(t *testing.T) {
	store := newStubStore()
	svc := NewWorkoutService(store)
	svc.now = fixedClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	svc.idGen = seqIDs("W")

	w, err := svc.Create("U1", WorkoutInput{
		Date: "2024-03-01",
		Exercises: []models.Exercise{
			{Name: "Squat", Sets: 3, Reps: 5, RPE: 8, Weight: 100},
			{Name: "Plank", Sets: 3},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if w.ID != "W1" || len(w.Exercises) != 2 {
		t.Fatalf("unexpected workout: %+v", w)
	}
	if orm := w.Exercises[0].EstimatedOneRepMax; orm == nil || *orm != 116.67 {
		t.Fatalf("expected 1RM 116.67, got %v", orm)
	}
	if w.Exercises[1].EstimatedOneRepMax != nil {
		t.Fatalf("bodyweight exercise should have no 1RM")
	}

	if _, err := svc.Create("U1", WorkoutInput{Date: "2024-02-27"}); err != nil {
		t.Fatalf("second Create: %v", err)
	}
	list, err := svc.List("U1")
	if err != nil || len(list) != 2 || list[0].Date != "2024-03-01" {
		t.Fatalf("List: %+v %v", list, err)
	}

	_, err = svc.Update("U2", "W1", WorkoutInput{Date: "2024-03-02"})
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	up, err := svc.Update("U1", "W1", WorkoutInput{Date: "2024-03-02", Exercises: []models.Exercise{{Name: "Bench", Sets: 1, Reps: 1, Weight: 60}}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if up.Date != "2024-03-02" || *up.Exercises[0].EstimatedOneRepMax != 62 {
		t.Fatalf("unexpected update: %+v", up)
	}

	if err := svc.Delete("U2", "W1"); err == nil {
		t.Fatalf("expected forbidden delete")
	}
	if err := svc.Delete("U1", "W1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete("U1", "W1")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWorkoutServiceValidation(t *testing.T) {
	svc := NewWorkoutService(newStubStore())
	neg := -5
	cases := []WorkoutInput{
		{Date: "yesterday"},
		{Date: "2024-01-01", EstimatedCalories: &neg},
		{Date: "2024-01-01", Exercises: []models.Exercise{{Name: ""}}},
		{Date: "2024-01-01", Exercises: []models.Exercise{{Name: "Row", RPE: 11}}},
		{Date: "2024-01-01", Exercises: []models.Exercise{{Name: "Row", Weight: -1}}},
	}
	for i, in := range cases {
		if _, err := svc.Create("U1", in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestWorkoutServiceRPERange(t *testing.T) {
	svc := NewWorkoutService(newStubStore())
	if _, err := svc.Create("U1", WorkoutInput{Date: "2024-01-01", Exercises: []models.Exercise{{Name: "Walk", RPE: 0}}}); err != nil {
		t.Fatalf("unrecorded rpe must be accepted: %v", err)
	}
	_, err := svc.Create("U1", WorkoutInput{Date: "2024-01-01", Exercises: []models.Exercise{{Name: "Row", RPE: 11}}})
	se, ok := AsServiceError(err)
	if !ok || se.Field != "exercises" || !strings.Contains(se.Message, "or 0 when not recorded") {
		t.Fatalf("unexpected rpe error: %v", err)
	}
}

func TestCheckinService(t *testing.T) {
	store := newStubStore()
	svc := NewCheckinService(store)
	at := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	svc.now = fixedClock(at)
	svc.idGen = seqIDs("C")

	c, err := svc.Create("U1", CheckinInput{Mood: 8, Craving: 2, Notes: "  calm  ", Biometrics: map[string]float64{"steps": 9000}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !c.At.Equal(at) || c.Notes != "calm" || !IsHealthy(c) {
		t.Fatalf("unexpected checkin: %+v", c)
	}

	for _, in := range []CheckinInput{{Mood: 0, Craving: 5}, {Mood: 5, Craving: 11}} {
		if _, err := svc.Create("U1", in); err == nil {
			t.Fatalf("expected validation error for %+v", in)
		}
	}

	up, err := svc.Update("U1", "C1", CheckinInput{Mood: 4, Craving: 6})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if IsHealthy(up) {
		t.Fatalf("mood 4 craving 6 should not be healthy")
	}
	if _, err := svc.Update("U2", "C1", CheckinInput{Mood: 4, Craving: 6}); err == nil {
		t.Fatalf("expected forbidden")
	}
	list, err := svc.List("U1")
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %+v %v", list, err)
	}
}

func TestIsHealthyBoundaries(t *testing.T) {
	cases := []struct {
		mood, craving int
		want          bool
	}{
		{8, 3, true},
		{7, 3, false},
		{8, 4, false},
		{10, 1, true},
	}
	for _, tc := range cases {
		if got := IsHealthy(&models.Checkin{Mood: tc.mood, Craving: tc.craving}); got != tc.want {
			t.Fatalf("IsHealthy(%d,%d)=%v want %v", tc.mood, tc.craving, got, tc.want)
		}
	}
}

func TestRelapseService(t *testing.T) {
	store := newStubStore()
	svc := NewRelapseService(store)
	svc.now = fixedClock(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC))
	svc.idGen = seqIDs("R")

	r, err := svc.Create("U1", RelapseInput{TriggerTags: []string{" stress ", ""}, EconomicImpact: 12.5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !r.ResetStreak || len(r.TriggerTags) != 1 || r.TriggerTags[0] != "stress" {
		t.Fatalf("unexpected relapse: %+v", r)
	}

	keep := false
	r2, err := svc.Create("U1", RelapseInput{ResetStreak: &keep})
	if err != nil || r2.ResetStreak {
		t.Fatalf("expected reset_streak=false, got %+v %v", r2, err)
	}

	if _, err := svc.Create("U1", RelapseInput{EconomicImpact: -1}); err == nil {
		t.Fatalf("expected validation error")
	}

	up, err := svc.Update("U1", "R1", RelapseInput{Context: "party", ResetStreak: &keep})
	if err != nil || up.Context != "party" || up.ResetStreak {
		t.Fatalf("Update: %+v %v", up, err)
	}
	if _, err := svc.Update("U2", "R1", RelapseInput{}); err == nil {
		t.Fatalf("expected forbidden")
	}
	if len(store.audit) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(store.audit))
	}
}

func TestLastResetBefore(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	logs := []*models.RelapseLog{
		{At: d(1), ResetStreak: true},
		{At: d(3), ResetStreak: true},
		{At: d(6), ResetStreak: false},
		{At: d(9), ResetStreak: true},
	}
	start := d(2)
	if got := lastResetBefore(logs, start, d(2)); got != nil {
		t.Fatalf("expected nil before first relapse after start, got %v", got)
	}
	if got := lastResetBefore(logs, start, d(7)); got == nil || !got.Equal(d(3)) {
		t.Fatalf("expected Jan 3, got %v", got)
	}
	if got := lastResetBefore(logs, start, d(9)); got == nil || !got.Equal(d(9)) {
		t.Fatalf("expected Jan 9, got %v", got)
	}
	if got := lastResetBefore(logs, d(1), d(2)); got == nil || !got.Equal(d(1)) {
		t.Fatalf("relapse on the start date counts, got %v", got)
	}
}
