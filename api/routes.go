package api

import (
	"context"

	"github.com/gorilla/mux"

	"github.com/oakhurst/talentpipe/internal/activity"
	"github.com/oakhurst/talentpipe/internal/config"
	"github.com/oakhurst/talentpipe/internal/db"
	"github.com/oakhurst/talentpipe/internal/gdpr"
	"github.com/oakhurst/talentpipe/internal/importer"
	"github.com/oakhurst/talentpipe/internal/jobs"
	"github.com/oakhurst/talentpipe/internal/pipeline"
	"github.com/oakhurst/talentpipe/internal/repository/sqlite"
)

func SetupRoutes(ctx context.Context, cfg *config.Config, version, buildTime string, database *db.DB, pool *jobs.WorkerPool) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(RateLimitMiddleware(NewClientLimiter(cfg.RateLimit, cfg.RateBurst)))

	// Repository and services
	repo := sqlite.New(database, nil)
	act := activity.NewLogger(repo, logger)
	gdprSvc := gdpr.NewService(repo, act, logger, cfg.GDPR.BulkConcurrent)
	pipelineSvc := pipeline.NewService(repo, act, logger)
	loader, err := importer.NewLoader(ctx, repo)
	if err != nil {
		return nil, err
	}
	imp := importer.New(loader, repo, act, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	jobReqsHandler := NewJobReqsHandler(repo)
	candidatesHandler := NewCandidatesHandler(repo, imp, gdprSvc, pool)
	pipelineHandler := NewPipelineHandler(pipelineSvc, repo)
	gdprHandler := NewGDPRHandler(gdprSvc)
	placementsHandler := NewPlacementsHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Job requisition endpoints
	apiV1.HandleFunc("/jobreqs", jobReqsHandler.CreateJobReq).Methods("POST")
	apiV1.HandleFunc("/jobreqs", jobReqsHandler.ListJobReqs).Methods("GET")
	apiV1.HandleFunc("/jobreqs/{id}", jobReqsHandler.GetJobReq).Methods("GET")
	apiV1.HandleFunc("/jobreqs/{id}/status", jobReqsHandler.UpdateJobReqStatus).Methods("PATCH")

	// Candidate endpoints
	apiV1.HandleFunc("/candidates", candidatesHandler.CreateCandidate).Methods("POST")
	apiV1.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	apiV1.HandleFunc("/candidates/import", candidatesHandler.ImportCandidate).Methods("POST")
	apiV1.HandleFunc("/candidates/{id}", candidatesHandler.GetCandidate).Methods("GET")
	apiV1.HandleFunc("/candidates/{id}/touch", candidatesHandler.TouchContact).Methods("POST")

	// Pipeline endpoints
	apiV1.HandleFunc("/pipeline", pipelineHandler.CreateEntry).Methods("POST")
	apiV1.HandleFunc("/pipeline", pipelineHandler.ListEntriesByJob).Methods("GET")
	apiV1.HandleFunc("/pipeline/{id}", pipelineHandler.GetEntry).Methods("GET")
	apiV1.HandleFunc("/pipeline/{id}", pipelineHandler.DeleteEntry).Methods("DELETE")
	apiV1.HandleFunc("/pipeline/{id}/transition", pipelineHandler.Transition).Methods("POST")
	apiV1.HandleFunc("/pipeline/{id}/history", pipelineHandler.History).Methods("GET")
	apiV1.HandleFunc("/pipeline/{id}/placement", placementsHandler.GetPlacementByEntry).Methods("GET")

	// GDPR endpoints
	apiV1.HandleFunc("/gdpr/overview", gdprHandler.Overview).Methods("GET")
	apiV1.HandleFunc("/gdpr/candidates/{id}/anonymise", gdprHandler.Anonymise).Methods("POST")
	apiV1.HandleFunc("/gdpr/candidates/{id}", gdprHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/gdpr/bulk/anonymise", gdprHandler.BulkAnonymise).Methods("POST")
	apiV1.HandleFunc("/gdpr/bulk/delete", gdprHandler.BulkDelete).Methods("POST")

	// Placement endpoints
	apiV1.HandleFunc("/placements", placementsHandler.ListPlacements).Methods("GET")

	return r, nil
}
