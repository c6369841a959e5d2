// cmd/talent-engine/main.go
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talent-engine/internal/common/config"
	"talent-engine/internal/common/database"
	"talent-engine/internal/common/errors"
	"talent-engine/internal/common/logger"
	"talent-engine/internal/common/observability"
	"talent-engine/internal/engine/aggregate"
	"talent-engine/internal/engine/cvmerge"
	"talent-engine/internal/engine/score"
	"talent-engine/internal/engine/search"
	"talent-engine/internal/models"
	"talent-engine/internal/parser"
	"talent-engine/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting talent engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("talent-engine")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional) with retry ---
	var textIndex search.TextIndex
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		textIndex = store.NewTextIndexStore(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, text queries fall back to the store")
	}

	// --- Wire engine components ---
	pgStore := store.NewPostgresStore(pg.DB, log)
	catalog := store.NewCachedCatalog(pgStore, redisClient.Client, cfg.Engine.Catalog.TTL(), log)
	aggregator := aggregate.NewAggregator(pgStore, catalog, log)
	pipeline := search.NewPipeline(
		&search.Config{
			DefaultPageSize: cfg.Engine.Search.DefaultPageSize,
			MaxPageSize:     cfg.Engine.Search.MaxPageSize,
		},
		pgStore, aggregator, textIndex, obs, log,
	)
	scorer := score.NewEngine(log)
	committer := cvmerge.NewCommitter(pgStore, log)

	parserClient, err := parser.NewClient(cfg.Parser.URL, config.GetDuration(cfg.Parser.Timeout), log)
	if err != nil {
		zapLog.Fatal("parser client init failed", zap.Error(err))
	}

	api := &apiServer{
		cfg:        cfg,
		pipeline:   pipeline,
		aggregator: aggregator,
		store:      pgStore,
		scorer:     scorer,
		committer:  committer,
		parser:     parserClient,
		logger:     log,
	}

	// --- API, Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", api.handleSearch)
	mux.HandleFunc("GET /api/talent/stats", api.handleStats)
	mux.HandleFunc("POST /api/match", api.handleMatch)
	mux.HandleFunc("POST /api/import/classify", api.handleClassify)
	mux.HandleFunc("POST /api/import/commit", api.handleCommit)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		state := "ready"
		if err := pg.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{
			"status": state,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	go func() {
		zapLog.Info("API server listening", zap.Int("port", cfg.Metrics.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Talent engine stopped gracefully")
}

// ==========================
// API HANDLERS
// ==========================

type apiServer struct {
	cfg        *config.Config
	pipeline   *search.Pipeline
	aggregator *aggregate.Aggregator
	store      *store.PostgresStore
	scorer     *score.Engine
	committer  *cvmerge.Committer
	parser     *parser.Client
	logger     logger.Logger
}

type searchRequest struct {
	Filters  models.SearchFilterSet `json:"filters"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

func (a *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidFilterError(fmt.Sprintf("malformed request body: %v", err)))
		return
	}

	result, err := a.pipeline.Search(r.Context(), req.Filters, req.Page, req.PageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.pipeline.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type matchRequest struct {
	ProfileIDs []string             `json:"profileIds"`
	Target     models.TargetProfile `json:"target"`
}

type matchResponse struct {
	Results []models.MatchResult `json:"results"`
}

// handleMatch scores and ranks the given candidates against a target
// profile. Signals are joined the same way the search pipeline joins them,
// so both surfaces agree on a candidate's resolved skills.
func (a *apiServer) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidFilterError(fmt.Sprintf("malformed request body: %v", err)))
		return
	}
	if len(req.ProfileIDs) == 0 {
		writeJSON(w, http.StatusOK, matchResponse{Results: []models.MatchResult{}})
		return
	}
	if req.Target.ScaleMax == 0 {
		req.Target.ScaleMax = a.cfg.Engine.Scoring.ScaleMax
	}

	profiles, err := a.store.FetchProfiles(r.Context(), search.StoreQuery{IDs: req.ProfileIDs, VisibleOnly: true})
	if err != nil {
		writeError(w, errors.NewCollaboratorError(errors.ErrCodeQueryExecutionFailed, "profile fetch failed", err))
		return
	}
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	signals, err := a.aggregator.Aggregate(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	candidates := make([]score.Candidate, 0, len(profiles))
	for _, p := range profiles {
		c := score.Candidate{
			ProfileID:      p.ID,
			LookingForWork: p.LookingForWork,
			WorkType:       p.WorkType,
		}
		if set := signals[p.ID]; set != nil {
			c.SkillNames = set.ResolvedSkills
			if set.Assessment != nil {
				vec := set.Assessment.Vector()
				c.Assessment = &vec
			}
			if set.Interview != nil {
				c.Seniority = set.Interview.Seniority
			}
		}
		candidates = append(candidates, c)
	}

	ranked, err := a.scorer.ScoreAndRank(r.Context(), candidates, req.Target)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := matchResponse{Results: make([]models.MatchResult, len(ranked))}
	for i, sc := range ranked {
		resp.Results[i] = sc.Result
	}
	writeJSON(w, http.StatusOK, resp)
}

type classifyRequest struct {
	ProfileID string `json:"profileId"`
	FileRef   string `json:"fileRef"`
}

type classifyResponse struct {
	Document *cvmerge.ParsedDocument `json:"document"`
	Plan     *cvmerge.MergePlan      `json:"plan"`
}

func (a *apiServer) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidDocumentError(fmt.Sprintf("malformed request body: %v", err)))
		return
	}
	if req.ProfileID == "" || req.FileRef == "" {
		writeError(w, errors.NewInvalidDocumentError("profileId and fileRef are required"))
		return
	}

	doc, err := a.parser.ParseDocument(r.Context(), req.FileRef)
	if err != nil {
		writeError(w, err)
		return
	}
	existing, err := a.store.ExistingRecords(r.Context(), req.ProfileID)
	if err != nil {
		writeError(w, errors.NewCollaboratorError(errors.ErrCodeQueryExecutionFailed, "existing record fetch failed", err))
		return
	}

	plan := cvmerge.Classify(doc, existing)
	writeJSON(w, http.StatusOK, classifyResponse{Document: doc, Plan: plan})
}

type commitRequest struct {
	ProfileID string                  `json:"profileId"`
	Document  *cvmerge.ParsedDocument `json:"document"`
	Plan      *cvmerge.MergePlan      `json:"plan"`
}

func (a *apiServer) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewInvalidDocumentError(fmt.Sprintf("malformed request body: %v", err)))
		return
	}
	if req.ProfileID == "" {
		writeError(w, errors.NewInvalidDocumentError("profileId is required"))
		return
	}

	result, err := a.committer.Commit(r.Context(), req.ProfileID, req.Document, req.Plan)
	if err != nil {
		var partial *errors.PartialCommitError
		if stderrors.As(err, &partial) {
			// The caller needs both what landed and what failed so it can
			// re-offer only the failed kinds.
			writeJSON(w, http.StatusMultiStatus, map[string]interface{}{
				"inserted":    result.Inserted,
				"committed":   partial.Committed,
				"failedKinds": partial.FailedKinds(),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsInput(err):
		status = http.StatusBadRequest
	case errors.IsCollaborator(err):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
