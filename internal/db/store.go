package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/NeuroReclaim/internal/api"
	"github.com/soaringjerry/NeuroReclaim/internal/logger"
	"github.com/soaringjerry/NeuroReclaim/internal/models"
)

// SQLStore implements api.Store on SQLite or PostgreSQL. Queries are written with '?'
// placeholders and rebound for PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ api.Store = (*SQLStore)(nil)

func NewSQLiteStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLStore{db: db, dialect: SQLite}, nil
}

func NewPostgresStore(db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &SQLStore{db: db, dialect: Postgres}, nil
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) logErr(prefix string, err error) {
	if err != nil {
		logger.Error(s.dialect.String()+" store: "+prefix, "error", err)
	}
}

// rebind rewrites '?' placeholders to $1..$n for PostgreSQL.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(q string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.rebind(q), args...)
}

func (s *SQLStore) queryRow(q string, args ...any) *sql.Row {
	return s.db.QueryRow(s.rebind(q), args...)
}

func (s *SQLStore) query(q string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.rebind(q), args...)
}

// mustAffect turns a zero-row update or delete into models.ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func toNullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeJSON[T any](ns sql.NullString, what string) T {
	var out T
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		logger.Warn("store: decode "+what, "error", err)
	}
	return out
}

func closeRows(rows *sql.Rows, s *SQLStore, what string) {
	if err := rows.Close(); err != nil {
		s.logErr(what+": rows.Close", err)
	}
}

// --- users ---

const userColumns = `id, email, name, role, pass_hash, created_at, last_signed_in`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PassHash, &u.CreatedAt, &u.LastSignedIn); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLStore) AddUser(u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := s.exec(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Role, u.PassHash, u.CreatedAt.UTC(), u.LastSignedIn.UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLStore) FindUserByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.queryRow(`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *SQLStore) GetUser(id string) (*models.User, error) {
	u, err := scanUser(s.queryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (s *SQLStore) TouchUserSignIn(id string, at time.Time) error {
	return mustAffect(s.exec(`UPDATE users SET last_signed_in = ? WHERE id = ?`, at.UTC(), id))
}

// --- substance profiles ---

const profileColumns = `id, user_id, substance_type, unit, unit_price, currency, abstinence_start_date,
	prior_daily_consumption, conversion_factor, custom_settings, created_at, updated_at`

func (s *SQLStore) CreateProfile(p *models.SubstanceProfile) error {
	_, err := s.exec(`INSERT INTO substance_profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.SubstanceType, p.Unit, p.UnitPrice, p.Currency, p.AbstinenceStartDate,
		p.PriorDailyConsumption, toNullFloat(p.ConversionFactor), toNullString(p.CustomSettings),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert substance profile: %w", err)
	}
	return nil
}

func (s *SQLStore) GetProfileByUser(userID string) (*models.SubstanceProfile, error) {
	var p models.SubstanceProfile
	var factor sql.NullFloat64
	var custom sql.NullString
	err := s.queryRow(`SELECT `+profileColumns+` FROM substance_profiles WHERE user_id = ?`, userID).Scan(
		&p.ID, &p.UserID, &p.SubstanceType, &p.Unit, &p.UnitPrice, &p.Currency, &p.AbstinenceStartDate,
		&p.PriorDailyConsumption, &factor, &custom, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if factor.Valid {
		f := factor.Float64
		p.ConversionFactor = &f
	}
	p.CustomSettings = custom.String
	return &p, nil
}

func (s *SQLStore) UpdateProfile(p *models.SubstanceProfile) error {
	return mustAffect(s.exec(`UPDATE substance_profiles SET substance_type = ?, unit = ?, unit_price = ?, currency = ?,
		abstinence_start_date = ?, prior_daily_consumption = ?, conversion_factor = ?, custom_settings = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		p.SubstanceType, p.Unit, p.UnitPrice, p.Currency, p.AbstinenceStartDate, p.PriorDailyConsumption,
		toNullFloat(p.ConversionFactor), toNullString(p.CustomSettings), p.UpdatedAt.UTC(), p.ID, p.UserID))
}

// --- workouts ---

const workoutColumns = `id, user_id, date, exercises, estimated_calories, created_at`

func scanWorkout(row interface{ Scan(...any) error }) (*models.Workout, error) {
	var w models.Workout
	var exercises sql.NullString
	var calories sql.NullInt64
	if err := row.Scan(&w.ID, &w.UserID, &w.Date, &exercises, &calories, &w.CreatedAt); err != nil {
		return nil, err
	}
	w.Exercises = decodeJSON[[]models.Exercise](exercises, "exercises")
	if w.Exercises == nil {
		w.Exercises = []models.Exercise{}
	}
	if calories.Valid {
		c := int(calories.Int64)
		w.EstimatedCalories = &c
	}
	return &w, nil
}

func encodeExercises(list []models.Exercise) (string, error) {
	if list == nil {
		list = []models.Exercise{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

func (s *SQLStore) CreateWorkout(w *models.Workout) error {
	exercises, err := encodeExercises(w.Exercises)
	if err != nil {
		return fmt.Errorf("encode exercises: %w", err)
	}
	_, err = s.exec(`INSERT INTO workouts (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.Date, exercises, toNullInt(w.EstimatedCalories), w.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

func (s *SQLStore) GetWorkout(id string) (*models.Workout, error) {
	w, err := scanWorkout(s.queryRow(`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

func (s *SQLStore) ListWorkouts(userID string) ([]*models.Workout, error) {
	rows, err := s.query(`SELECT `+workoutColumns+` FROM workouts WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer closeRows(rows, s, "ListWorkouts")
	out := []*models.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateWorkout(w *models.Workout) error {
	exercises, err := encodeExercises(w.Exercises)
	if err != nil {
		return fmt.Errorf("encode exercises: %w", err)
	}
	return mustAffect(s.exec(`UPDATE workouts SET date = ?, exercises = ?, estimated_calories = ? WHERE id = ?`,
		w.Date, exercises, toNullInt(w.EstimatedCalories), w.ID))
}

func (s *SQLStore) DeleteWorkout(id string) error {
	return mustAffect(s.exec(`DELETE FROM workouts WHERE id = ?`, id))
}

// --- check-ins ---

const checkinColumns = `id, user_id, at, mood, craving, notes, biometrics, created_at`

func scanCheckin(row interface{ Scan(...any) error }) (*models.Checkin, error) {
	var c models.Checkin
	var notes, biometrics sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.At, &c.Mood, &c.Craving, &notes, &biometrics, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Notes = notes.String
	c.Biometrics = decodeJSON[map[string]float64](biometrics, "biometrics")
	return &c, nil
}

func biometricsParam(m map[string]float64) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	return encodeJSON(m)
}

func (s *SQLStore) CreateCheckin(c *models.Checkin) error {
	bio, err := biometricsParam(c.Biometrics)
	if err != nil {
		return fmt.Errorf("encode biometrics: %w", err)
	}
	_, err = s.exec(`INSERT INTO checkins (`+checkinColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.At.UTC(), c.Mood, c.Craving, toNullString(c.Notes), bio, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert checkin: %w", err)
	}
	return nil
}

func (s *SQLStore) GetCheckin(id string) (*models.Checkin, error) {
	c, err := scanCheckin(s.queryRow(`SELECT `+checkinColumns+` FROM checkins WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *SQLStore) ListCheckins(userID string) ([]*models.Checkin, error) {
	rows, err := s.query(`SELECT `+checkinColumns+` FROM checkins WHERE user_id = ? ORDER BY at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer closeRows(rows, s, "ListCheckins")
	out := []*models.Checkin{}
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateCheckin(c *models.Checkin) error {
	bio, err := biometricsParam(c.Biometrics)
	if err != nil {
		return fmt.Errorf("encode biometrics: %w", err)
	}
	return mustAffect(s.exec(`UPDATE checkins SET mood = ?, craving = ?, notes = ?, biometrics = ? WHERE id = ?`,
		c.Mood, c.Craving, toNullString(c.Notes), bio, c.ID))
}

// --- relapse logs ---

const relapseColumns = `id, user_id, at, trigger_tags, context, economic_impact, reset_streak, created_at`

func scanRelapse(row interface{ Scan(...any) error }) (*models.RelapseLog, error) {
	var r models.RelapseLog
	var tags, context sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &r.At, &tags, &context, &r.EconomicImpact, &r.ResetStreak, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.TriggerTags = decodeJSON[[]string](tags, "trigger_tags")
	r.Context = context.String
	return &r, nil
}

func tagsParam(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	return encodeJSON(tags)
}

func (s *SQLStore) CreateRelapse(r *models.RelapseLog) error {
	tags, err := tagsParam(r.TriggerTags)
	if err != nil {
		return fmt.Errorf("encode trigger tags: %w", err)
	}
	_, err = s.exec(`INSERT INTO relapse_logs (`+relapseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.At.UTC(), tags, toNullString(r.Context), r.EconomicImpact, r.ResetStreak, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert relapse log: %w", err)
	}
	return nil
}

func (s *SQLStore) GetRelapse(id string) (*models.RelapseLog, error) {
	r, err := scanRelapse(s.queryRow(`SELECT `+relapseColumns+` FROM relapse_logs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *SQLStore) ListRelapses(userID string) ([]*models.RelapseLog, error) {
	rows, err := s.query(`SELECT `+relapseColumns+` FROM relapse_logs WHERE user_id = ? ORDER BY at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list relapse logs: %w", err)
	}
	defer closeRows(rows, s, "ListRelapses")
	out := []*models.RelapseLog{}
	for rows.Next() {
		r, err := scanRelapse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateRelapse(r *models.RelapseLog) error {
	tags, err := tagsParam(r.TriggerTags)
	if err != nil {
		return fmt.Errorf("encode trigger tags: %w", err)
	}
	return mustAffect(s.exec(`UPDATE relapse_logs SET trigger_tags = ?, context = ?, economic_impact = ?, reset_streak = ? WHERE id = ?`,
		tags, toNullString(r.Context), r.EconomicImpact, r.ResetStreak, r.ID))
}

// --- audit ---

func (s *SQLStore) AddAudit(e models.AuditEntry) {
	_, err := s.exec(`INSERT INTO audit_log (time, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Actor, e.Action, e.Target, toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func (s *SQLStore) ListAudit() []models.AuditEntry {
	rows, err := s.query(`SELECT time, actor, action, target, note FROM audit_log ORDER BY id ASC`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return nil
	}
	defer closeRows(rows, s, "ListAudit")
	out := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var note sql.NullString
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &e.Target, &note); err != nil {
			s.logErr("ListAudit: scan", err)
			continue
		}
		e.Note = note.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListAudit: rows.Err", err)
	}
	return out
}
