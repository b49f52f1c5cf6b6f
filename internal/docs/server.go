// Package docssvc provides the document service server implementation.
package docssvc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/chopper-ai/chopper-docs/internal/docs/biz"
	"github.com/chopper-ai/chopper-docs/internal/docs/handler"
	"github.com/chopper-ai/chopper-docs/internal/docs/router"
	"github.com/chopper-ai/chopper-docs/internal/docs/store"
	"github.com/chopper-ai/chopper-docs/pkg/component/milvus"
	"github.com/chopper-ai/chopper-docs/pkg/component/redis"
	"github.com/chopper-ai/chopper-docs/pkg/llm"

	// 导入供应商以自动注册
	_ "github.com/chopper-ai/chopper-docs/pkg/llm/ollama"
	_ "github.com/chopper-ai/chopper-docs/pkg/llm/openai"

	cacheopts "github.com/chopper-ai/chopper-docs/pkg/options/cache"
	docsopts "github.com/chopper-ai/chopper-docs/pkg/options/docs"
	llmopts "github.com/chopper-ai/chopper-docs/pkg/options/llm"
	logopts "github.com/chopper-ai/chopper-docs/pkg/options/logger"
	milvusopts "github.com/chopper-ai/chopper-docs/pkg/options/milvus"
	httpopts "github.com/chopper-ai/chopper-docs/pkg/options/server/http"
)

// Name is the name of the application.
const Name = "chopper-docs"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	DocsOptions      *docsopts.Options
	CacheOptions     *cacheopts.Options
	ShutdownTimeout  time.Duration
}

// Server represents the document service server.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	milvusClose     func()
	redisClose      func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. 初始化日志
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting document service...")

	// 2. 初始化 Milvus 客户端
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	logger.Info("Milvus client initialized")

	// 3. 初始化 Store 层
	vectorStore := store.NewMilvusStore(milvusClient, cfg.MilvusOptions.Collection)
	logger.Info("Vector store initialized")

	// 4. 初始化 Redis 客户端（查询与 Embedding 缓存）
	var redisClient *goredis.Client
	var queryCache *biz.QueryCache
	var redisClose func()
	if cfg.CacheOptions.Enabled {
		redisOpts := cfg.CacheOptions.Redis
		if redisOpts == nil {
			logger.Warn("Cache is enabled but no Redis configuration provided in CacheOptions")
		} else if rc, err := redis.New(redisOpts); err != nil {
			logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		} else {
			redisClient = rc.RawClient()
			queryCache = biz.NewQueryCache(redisClient, &biz.QueryCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			redisClose = func() { _ = rc.Close() }
			logger.Infow("Redis cache initialized",
				"addr", redisOpts.Addr,
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Cache is disabled")
	}

	// 5. 初始化 Embedding 供应商
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	if redisClient != nil {
		cacheConfig := llm.DefaultEmbeddingCacheConfig()
		cacheConfig.Model = cfg.EmbeddingOptions.Model
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisClient, cacheConfig)
	}
	normalized := llm.NewNormalizedProvider(embedProvider, cfg.EmbeddingOptions.Dimensions)
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
		"dimensions", cfg.EmbeddingOptions.Dimensions,
	)

	// 6. 创建并加载集合
	if err := vectorStore.EnsureCollection(ctx, &store.CollectionConfig{
		Name:        cfg.MilvusOptions.Collection,
		Description: "Document chunks with tenant-scoped embeddings",
		Dimension:   cfg.EmbeddingOptions.Dimensions,
	}); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	logger.Infow("Collection ready", "collection", cfg.MilvusOptions.Collection)

	// 7. 初始化 Biz 层
	serviceConfig := &biz.ServiceConfig{
		IngestorConfig: &biz.IngestorConfig{
			ChunkSize:      cfg.DocsOptions.ChunkSize,
			ChunkOverlap:   cfg.DocsOptions.ChunkOverlap,
			MaxUploadBytes: cfg.DocsOptions.MaxUploadBytes,
		},
		RetrieverConfig: &biz.RetrieverConfig{
			TopK: cfg.DocsOptions.TopK,
		},
		AssemblerConfig: &biz.AssemblerConfig{
			MaxContextTokens: cfg.DocsOptions.MaxContextTokens,
		},
	}
	docsService := biz.NewDocsService(vectorStore, normalized, queryCache, serviceConfig)
	logger.Infow("Document service initialized",
		"chunk_size", cfg.DocsOptions.ChunkSize,
		"chunk_overlap", cfg.DocsOptions.ChunkOverlap,
		"top_k", cfg.DocsOptions.TopK,
		"cache.enabled", cfg.CacheOptions.Enabled,
	)

	// 8. 初始化 Handler 层与路由
	docsHandler := handler.NewDocsHandler(docsService, cfg.DocsOptions.MaxUploadBytes)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	router.Register(engine, docsHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	logger.Info("Document service is ready")
	return &Server{
		httpServer:      httpServer,
		shutdownTimeout: shutdownTimeout,
		milvusClose:     func() { _ = milvusClient.Close(context.Background()) },
		redisClose:      redisClose,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer func() {
		if s.milvusClose != nil {
			s.milvusClose()
		}
		if s.redisClose != nil {
			s.redisClose()
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down document service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	logger.Info("Document service stopped")
	return nil
}
