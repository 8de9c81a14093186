package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"wellness-backend/internal/analysis"
	"wellness-backend/internal/llm"
	"wellness-backend/internal/llm/gemini"
	"wellness-backend/internal/sessions"
	"wellness-backend/internal/shared/config"
	"wellness-backend/internal/shared/server"
	"wellness-backend/internal/shared/storage/db"
	"wellness-backend/internal/shared/storage/object"
	localstore "wellness-backend/internal/shared/storage/object/local"
	s3store "wellness-backend/internal/shared/storage/object/s3"
	"wellness-backend/internal/stt"
	"wellness-backend/internal/stt/assemblyai"
	"wellness-backend/internal/vision"
	"wellness-backend/internal/vision/huggingface"
)

// App holds shared dependencies for the API process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	SessionsRepo    sessions.Repo
	AnalysisService *analysis.Service
	SessionsService *sessions.Service
	AnalysisHandler *analysis.Handler
	SessionsHandler *sessions.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	sttClient, err := buildSTT(cfg)
	if err != nil {
		return nil, err
	}
	visionClient, err := buildVision(cfg)
	if err != nil {
		return nil, err
	}

	var sessionsRepo sessions.Repo
	if sqlDB != nil {
		sessionsRepo = &sessions.PGRepo{DB: sqlDB}
	} else {
		sessionsRepo = sessions.NewMemoryRepo()
	}

	analysisSvc := &analysis.Service{
		LLM:         llmClient,
		Vision:      visionClient,
		Transcriber: analysis.NewTranscriber(sttClient, cfg.TranscribePollInterval, cfg.TranscribeTimeout),
	}
	sessionsSvc := sessions.NewService(sessionsRepo)

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		SessionsRepo:    sessionsRepo,
		AnalysisService: analysisSvc,
		SessionsService: sessionsSvc,
		AnalysisHandler: &analysis.Handler{Service: analysisSvc, Store: store},
		SessionsHandler: &sessions.Handler{Service: sessionsSvc, Store: store},
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		SessionsHandler: app.SessionsHandler,
		Health: server.HealthState{
			Database:     sqlDB != nil,
			TextProvider: cfg.GeminiAPIKey != "",
			Voice:        sttClient != nil,
			Face:         visionClient != nil,
		},
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory session storage")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database unreachable, falling back to memory: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: migrations failed, falling back to memory: %v", err)
			_ = sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if cfg.ObjectStoreType == "s3" {
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	}
	return localstore.New(cfg.LocalStoreDir), nil
}

func buildLLM(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: GEMINI_API_KEY empty; analysis endpoints will reject requests")
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
}

func buildSTT(cfg config.Config) (stt.Client, error) {
	if strings.TrimSpace(cfg.AssemblyAIAPIKey) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: ASSEMBLYAI_API_KEY empty; voice analysis disabled")
			return nil, nil
		}
		return nil, fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	return assemblyai.NewClient(cfg.AssemblyAIAPIKey, cfg.AssemblyAIBaseURL, cfg.AssemblyAITimeout)
}

func buildVision(cfg config.Config) (vision.Client, error) {
	if strings.TrimSpace(cfg.HFAPIKey) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: HF_API_KEY empty; face analysis disabled")
			return nil, nil
		}
		return nil, fmt.Errorf("HF_API_KEY is required")
	}
	return huggingface.NewClient(cfg.HFAPIKey, cfg.HFBaseURL, cfg.HFFaceModel, cfg.HFTimeout)
}
