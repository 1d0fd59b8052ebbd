package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/ssat-prep/backend/internal/auth"
	"github.com/ssat-prep/backend/internal/content"
	"github.com/ssat-prep/backend/internal/database"
	"github.com/ssat-prep/backend/internal/generator"
	"github.com/ssat-prep/backend/internal/middleware"
	"github.com/ssat-prep/backend/internal/pool"
	"github.com/ssat-prep/backend/internal/testjob"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	poolStore := pool.NewStore(db)
	gen := generator.NewGenerator()
	contentService := content.NewService(poolStore, gen)
	jobManager := testjob.NewManager(contentService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	contentHandler := content.NewHandler(contentService, poolStore)
	jobHandler := testjob.NewHandler(jobManager)
	mw := middleware.New(db)

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	go jobManager.StartReaper(workerCtx)
	if content.Enabled() {
		go content.NewReplenisher(poolStore, gen).Start(workerCtx)
	}

	// Setup router
	r := newRouter(authHandler, contentHandler, jobHandler, mw)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func newRouter(authHandler *auth.Handler, contentHandler *content.Handler, jobHandler *testjob.Handler, mw *middleware.Middleware) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(mw.RequireAuth)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/generate", contentHandler.Generate).Methods("POST")
	protected.HandleFunc("/generate/complete-test/start", jobHandler.StartTest).Methods("POST")
	protected.HandleFunc("/generate/complete-test/{job_id}/status", jobHandler.JobStatus).Methods("GET")
	protected.HandleFunc("/generate/complete-test/{job_id}/result", jobHandler.JobResult).Methods("GET")

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(mw.RequireAdmin)
	admin.HandleFunc("/generate", contentHandler.AdminGenerate).Methods("POST")
	admin.HandleFunc("/generate/complete-test/start", jobHandler.AdminStartTest).Methods("POST")
	admin.HandleFunc("/pool/stats", contentHandler.PoolStats).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
