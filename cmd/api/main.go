package main

import (
	"database/sql"
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gsokolov/noteblog/internal/config"
	"github.com/gsokolov/noteblog/internal/db"
	"github.com/gsokolov/noteblog/internal/handlers"
	"github.com/gsokolov/noteblog/internal/logging"
	"github.com/gsokolov/noteblog/internal/middleware"
	"github.com/gsokolov/noteblog/internal/repo"
	"github.com/gsokolov/noteblog/internal/stats"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogFormat)

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		log.Fatal("JWT_SECRET must be set when ENV=prod")
	}

	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := db.Run(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("database ready", "host", cfg.DBHost, "name", cfg.DBName)

	statsJob, err := stats.Run(cfg.StatsCron, repo.NewUserRepo(database), repo.NewNoteRepo(database))
	if err != nil {
		log.Fatalf("Failed to start stats job: %v", err)
	}
	if statsJob != nil {
		defer statsJob.Stop()
	}

	r := newRouter(database, cfg)

	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting api", "addr", addr, "tls", true)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting api", "addr", addr, "tls", false)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// newRouter assembles the full HTTP surface. Kept separate from main so
// integration tests can mount it on an httptest server.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(database)
	profileRepo := repo.NewProfileRepo(database)
	noteRepo := repo.NewNoteRepo(database)
	feedRepo := repo.NewFeedRepo(database)

	authHandler := &handlers.AuthHandler{
		UserRepo:    userRepo,
		Secret:      []byte(cfg.JWTSecret),
		ExpireHours: cfg.JWTExpireHours,
	}
	profileHandler := &handlers.ProfileHandler{Repo: profileRepo}
	noteHandler := &handlers.NoteHandler{Repo: noteRepo, Profiles: profileRepo}
	feedHandler := &handlers.FeedHandler{Repo: feedRepo, Profiles: profileRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Open endpoints, rate limited per IP.
	authLimiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/accounts/signup/", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
	})

	// Everything else requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware([]byte(cfg.JWTSecret)))

		r.Get("/accounts/profiles/", profileHandler.ListProfiles)
		r.Get("/accounts/profiles/{id}/", profileHandler.GetProfile)
		r.Put("/accounts/profiles/{id}/", profileHandler.UpdateProfile)
		r.Get("/accounts/profiles/{id}/follows/", profileHandler.GetFollows)

		r.Get("/notes/", noteHandler.ListNotes)
		r.Post("/notes/", noteHandler.CreateNote)
		r.Get("/notes/{id}/", noteHandler.GetNote)
		r.Put("/notes/{id}/", noteHandler.UpdateNote)
		r.Patch("/notes/{id}/", noteHandler.PatchNote)
		r.Delete("/notes/{id}/", noteHandler.DeleteNote)

		r.Get("/feed/", feedHandler.GetFeed)
		r.Get("/feed/{id}/", noteHandler.GetNote)
	})

	return r
}
