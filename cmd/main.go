package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"feedback/pkg/comment"
	"feedback/pkg/comment/api"
	"feedback/pkg/logger"
	"feedback/pkg/middleware"
	"feedback/pkg/sessions"
	"feedback/pkg/storage"
)

type EnvConfig struct {
	DBHost     string
	DBName     string
	DBUser     string
	DBPassword string
	Port       string
	LogLevel   string
	SeedData   bool
}

func init() {
	rand.Seed(time.Now().UnixNano())
}

func main() {
	cfg := readConfig()
	lg := logger.Run(cfg.LogLevel)
	defer lg.Sync()

	db, err := storage.Open(cfg.DSN())
	if err != nil {
		lg.Fatalf("main: can't open database: %v", err)
	}
	defer db.Close()

	ctx := logger.WithLogger(context.Background(), lg)
	if err := storage.WaitReady(ctx, db, storage.ReadyAttempts, storage.ReadyDelay); err != nil {
		lg.Fatalf("main: %v", err)
	}

	sessionManager := sessions.NewSessionManager(db)
	commentRepo := comment.NewCommentRepo()
	commentHandler := api.NewCommentHandler(commentRepo, sessionManager)

	if cfg.SeedData {
		seed(ctx, sessionManager, commentRepo)
	}

	r := mux.NewRouter()
	r.HandleFunc("/comments", commentHandler.Create).Methods("POST")
	r.HandleFunc("/comments", commentHandler.List).Methods("GET")
	r.HandleFunc("/comments", commentHandler.DeleteAll).Methods("DELETE")
	r.HandleFunc("/comments/{id:[0-9]+}", commentHandler.DeleteOne).Methods("DELETE")

	logMiddleware := middleware.NewLoggingMiddleware(lg)
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)
	r.Use(logMiddleware.Recover)

	lg.Infof("serving at http://localhost:%s/", cfg.Port)
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, r))
}

func readConfig() EnvConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("main: no .env file found, reading configuration from the environment")
	}
	return EnvConfig{
		DBHost:     getenv("DB_HOST", "localhost"),
		DBName:     getenv("DB_NAME", "comment_db"),
		DBUser:     getenv("DB_USER", "comment_user"),
		DBPassword: getenv("DB_PASSWORD", "secure_pw"),
		Port:       getenv("PORT", "8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		SeedData:   os.Getenv("SEED_FAKE_DATA") == "true",
	}
}

func (c EnvConfig) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:5432/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
