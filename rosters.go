package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"teams/config"
	"teams/metrics"
	"teams/roster"
	"teams/solver"
)

// foreignKeyViolation is the SQLSTATE postgres reports when a referenced
// row is gone.
const foreignKeyViolation = "23503"

func rosterID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("rosterID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid roster ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// canAccessRoster reports whether email may read, solve or delete a roster
// uploaded by owner.
func canAccessRoster(owner, email string) bool {
	return owner == email || isAdmin(email)
}

// rowScanner is the part of *sql.Rows the list handlers read.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanAll reads every row with scan. An error raised while iterating is
// returned instead of a short list.
func scanAll[T any](rows rowScanner, scan func(rowScanner) (T, error)) ([]T, error) {
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// requireRosterOwner admits admins and the user who uploaded the roster.
func requireRosterOwner(db *sql.DB, w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	email, ok := requireUser(w, r)
	if !ok {
		return "", 0, false
	}
	id, ok := rosterID(w, r)
	if !ok {
		return "", 0, false
	}
	var owner string
	err := db.QueryRow("SELECT owner FROM rosters WHERE id = $1", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "roster not found", http.StatusNotFound)
		return "", 0, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return "", 0, false
	}
	if !canAccessRoster(owner, email) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", 0, false
	}
	return email, id, true
}

func handleListRosters(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requireUser(w, r)
		if !ok {
			return
		}
		rows, err := db.Query(`
			SELECT id, name, people, owner, created_at
			FROM rosters
			WHERE owner = $1 OR $2
			ORDER BY id`, email, isAdmin(email))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type rosterSummary struct {
			ID        int64     `json:"id"`
			Name      string    `json:"name"`
			People    int       `json:"people"`
			Owner     string    `json:"owner"`
			CreatedAt time.Time `json:"created_at"`
		}
		rosters, err := scanAll(rows, func(rows rowScanner) (rosterSummary, error) {
			var rs rosterSummary
			err := rows.Scan(&rs.ID, &rs.Name, &rs.People, &rs.Owner, &rs.CreatedAt)
			return rs, err
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rosters)
	}
}

func handleCreateRoster(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := requireUser(w, r)
		if !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		store, err := roster.Parse(strings.NewReader(body.Body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if store.Len() == 0 {
			http.Error(w, "roster is empty", http.StatusBadRequest)
			return
		}
		var id int64
		err = db.QueryRow("INSERT INTO rosters (name, body, people, owner) VALUES ($1, $2, $3, $4) RETURNING id",
			body.Name, body.Body, store.Len(), email).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "name": body.Name, "people": store.Len()})
	}
}

func handleGetRoster(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, id, ok := requireRosterOwner(db, w, r)
		if !ok {
			return
		}
		var name, text string
		if err := db.QueryRow("SELECT name, body FROM rosters WHERE id = $1", id).Scan(&name, &text); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		store, err := roster.Parse(strings.NewReader(text))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		type person struct {
			ID        string   `json:"id"`
			Preferred []string `json:"preferred"`
			GroupSize int      `json:"group_size"`
			Disliked  []string `json:"disliked"`
		}
		people := make([]person, 0, store.Len())
		for _, pid := range store.IDs() {
			p, _ := store.Person(pid)
			people = append(people, person{ID: p.ID, Preferred: p.Preferred, GroupSize: p.GroupSize, Disliked: p.Disliked})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "name": name, "people": people})
	}
}

func handleDeleteRoster(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, id, ok := requireRosterOwner(db, w, r)
		if !ok {
			return
		}
		result, err := db.Exec("DELETE FROM rosters WHERE id = $1", id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "roster not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type solveDeps struct {
	cfg      *config.Config
	logger   *zap.Logger
	search   solver.Observer
	requests *metrics.Service
}

type solveRequest struct {
	timeout time.Duration
	seed    int64
}

// parseSolveRequest reads the timeout and seed query parameters, falling
// back to configured values.
func parseSolveRequest(r *http.Request, cfg *config.Config) (solveRequest, error) {
	req := solveRequest{timeout: cfg.Server.SolveTimeout, seed: cfg.Search.Seed}
	q := r.URL.Query()
	if v := q.Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return req, fmt.Errorf("invalid timeout %q", v)
		}
		req.timeout = d
	}
	req.timeout = min(req.timeout, cfg.Server.MaxSolveTimeout)
	if v := q.Get("seed"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid seed %q", v)
		}
		req.seed = s
	}
	return req, nil
}

// runSearch collects every snapshot Solve yields before ctx expires.
func runSearch(ctx context.Context, store *solver.Store, opts solver.Options) []solver.Snapshot {
	var snaps []solver.Snapshot
	for snap := range solver.Solve(ctx, store, opts) {
		snaps = append(snaps, snap)
	}
	return snaps
}

func handleSolve(db *sql.DB, deps solveDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, id, ok := requireRosterOwner(db, w, r)
		if !ok {
			return
		}
		req, err := parseSolveRequest(r, deps.cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var text string
		if err := db.QueryRow("SELECT body FROM rosters WHERE id = $1", id).Scan(&text); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		store, err := roster.Parse(strings.NewReader(text))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		runID := uuid.New()
		log := deps.logger.With(zap.String("run", runID.String()), zap.Int64("roster", id))

		ctx, cancel := context.WithTimeout(r.Context(), req.timeout)
		defer cancel()
		start := time.Now()
		opts := deps.cfg.Search.Options()
		opts.Seed = req.seed
		opts.Logger = log
		opts.Observer = deps.search
		snaps := runSearch(ctx, store, opts)
		elapsed := time.Since(start)

		if err := saveRun(db, runID, id, email, req, deps.cfg.Search.MaxSteps, snaps); err != nil {
			deps.requests.Solved("error", elapsed)
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
				http.Error(w, "roster not found", http.StatusNotFound)
				return
			}
			log.Error("failed to save run", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		deps.requests.Solved("ok", elapsed)

		best := snaps[len(snaps)-1]
		log.Info("solved", zap.Int("cost", best.TotalCost), zap.Int("improvements", len(snaps)), zap.Duration("elapsed", elapsed))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"run_id":       runID,
			"improvements": len(snaps),
			"best":         best,
		})
	}
}

func saveRun(db *sql.DB, runID uuid.UUID, rosterID int64, email string, req solveRequest, maxSteps int, snaps []solver.Snapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO solve_runs (id, roster_id, seed, timeout_ms, max_steps, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, rosterID, req.seed, req.timeout.Milliseconds(), maxSteps, email)
	if err != nil {
		return err
	}
	for i, snap := range snaps {
		_, err := tx.Exec("INSERT INTO snapshots (run_id, seq, total_cost, groups) VALUES ($1, $2, $3, $4)",
			runID, i, snap.TotalCost, pq.Array(snap.AssignedGroups))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func handleListRuns(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, id, ok := requireRosterOwner(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query(`
			SELECT sr.id, sr.seed, sr.timeout_ms, sr.requested_by, sr.created_at, s.seq, s.total_cost, s.groups
			FROM solve_runs sr
			JOIN LATERAL (
				SELECT seq, total_cost, groups FROM snapshots
				WHERE run_id = sr.id
				ORDER BY seq DESC
				LIMIT 1
			) s ON true
			WHERE sr.roster_id = $1
			ORDER BY sr.created_at DESC`, id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type run struct {
			ID           uuid.UUID       `json:"id"`
			Seed         int64           `json:"seed"`
			TimeoutMS    int64           `json:"timeout_ms"`
			RequestedBy  string          `json:"requested_by"`
			CreatedAt    time.Time       `json:"created_at"`
			Improvements int             `json:"improvements"`
			Best         solver.Snapshot `json:"best"`
		}
		runs, err := scanAll(rows, func(rows rowScanner) (run, error) {
			var rn run
			var last int
			err := rows.Scan(&rn.ID, &rn.Seed, &rn.TimeoutMS, &rn.RequestedBy, &rn.CreatedAt,
				&last, &rn.Best.TotalCost, pq.Array(&rn.Best.AssignedGroups))
			rn.Improvements = last + 1
			return rn, err
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}
