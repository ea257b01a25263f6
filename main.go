package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"teams/config"
	"teams/metrics"
)

//go:embed schema.sql
var schema string

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	for _, key := range []string{"PGCONN", "CLIENT_ID", "CLIENT_SECRET", "ADMINS"} {
		if os.Getenv(key) == "" {
			logger.Fatal("environment variable is required", zap.String("key", key))
		}
	}

	cfg, err := config.Load(os.Getenv("CONFIG"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := sql.Open("postgres", os.Getenv("PGCONN"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	logger.Info("connected to database")

	if _, err := db.Exec(schema); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	searchMetrics, err := metrics.NewSearch(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)
	if err != nil {
		logger.Fatal("failed to register search metrics", zap.Error(err))
	}
	serviceMetrics, err := metrics.NewService(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)
	if err != nil {
		logger.Fatal("failed to register service metrics", zap.Error(err))
	}

	solve := solveDeps{
		cfg:      cfg,
		logger:   logger.Named("solve"),
		search:   searchMetrics,
		requests: serviceMetrics,
	}

	http.HandleFunc("POST /auth/google/callback", handleGoogleCallback(logger))
	http.HandleFunc("GET /api/admin/check", handleAdminCheck)
	http.HandleFunc("GET /api/rosters", handleListRosters(db))
	http.HandleFunc("POST /api/rosters", handleCreateRoster(db))
	http.HandleFunc("GET /api/rosters/{rosterID}", handleGetRoster(db))
	http.HandleFunc("DELETE /api/rosters/{rosterID}", handleDeleteRoster(db))
	http.HandleFunc("POST /api/rosters/{rosterID}/solve", handleSolve(db, solve))
	http.HandleFunc("GET /api/rosters/{rosterID}/runs", handleListRuns(db))
	http.Handle("GET /metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func handleGoogleCallback(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credential := r.FormValue("credential")
		if credential == "" {
			http.Error(w, "missing credential", http.StatusBadRequest)
			return
		}

		payload, err := idtoken.Validate(context.Background(), credential, os.Getenv("CLIENT_ID"))
		if err != nil {
			logger.Warn("failed to validate token", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		email, _ := payload.Claims["email"].(string)
		if email == "" {
			http.Error(w, "token has no email", http.StatusUnauthorized)
			return
		}

		profile := map[string]any{
			"email":   email,
			"name":    payload.Claims["name"],
			"picture": payload.Claims["picture"],
			"token":   signEmail(email),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	}
}

func signEmail(email string) string {
	h := hmac.New(sha256.New, []byte(os.Getenv("CLIENT_SECRET")))
	h.Write([]byte(email))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(email)) + "." + sig
}

func authorize(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	emailBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	email := string(emailBytes)
	if !hmac.Equal([]byte(signEmail(email)), []byte(token)) {
		return "", false
	}
	return email, true
}

func isAdmin(email string) bool {
	return slices.ContainsFunc(strings.Split(os.Getenv("ADMINS"), ","), func(a string) bool {
		return strings.TrimSpace(a) == email
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return email, true
}

func handleAdminCheck(w http.ResponseWriter, r *http.Request) {
	email, ok := requireUser(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"admin": isAdmin(email)})
}
