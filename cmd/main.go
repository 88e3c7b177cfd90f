package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fyerfyer/legal-summary/api"
	"github.com/fyerfyer/legal-summary/api/handler"
	"github.com/fyerfyer/legal-summary/api/middleware"
	appconfig "github.com/fyerfyer/legal-summary/config"
	"github.com/fyerfyer/legal-summary/internal/cache"
	"github.com/fyerfyer/legal-summary/internal/database"
	"github.com/fyerfyer/legal-summary/internal/entity"
	"github.com/fyerfyer/legal-summary/internal/evaluation"
	"github.com/fyerfyer/legal-summary/internal/loader"
	"github.com/fyerfyer/legal-summary/internal/repository"
	"github.com/fyerfyer/legal-summary/internal/services"
	"github.com/fyerfyer/legal-summary/internal/summarizer"
	"github.com/fyerfyer/legal-summary/pkg/storage"
	"github.com/fyerfyer/legal-summary/pkg/taskqueue"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 命令行参数，非空时覆盖配置文件
type flags struct {
	ConfigFile string // 配置文件路径
	EnvFile    string // .env文件路径
	Port       int    // 服务端口
	Mode       string // 运行模式 (debug/release)
	LogLevel   string // 日志级别
	DataDir    string // 预分块数据目录
	RougeMode  string // ROUGE计算方式
	Queue      bool   // 是否启用任务队列
}

func main() {
	// 解析命令行参数
	f := parseFlags()

	if err := appconfig.LoadEnvFile(f.EnvFile); err != nil {
		log.Printf("Warning: %v", err)
	}

	// 加载配置，文件不存在时使用默认值
	cfg, err := appconfig.Load(f.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化日志
	logger, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer closeLog()
	logger.WithField("config_file", appconfig.ConfigFileUsed(f.ConfigFile)).Info("Starting Legal Summary System...")

	// 初始化数据库
	db, err := database.Open(&database.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: database.DefaultConfig().MaxOpenConns,
		MaxIdleConns: database.DefaultConfig().MaxIdleConns,
		MaxLifetime:  database.DefaultConfig().MaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	// 创建文件存储服务
	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 创建缓存服务
	cacheService, err := setupCache(cfg.Cache)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// 建立案件索引
	caseLoader, err := loader.New(cfg.Data.Dir, loader.WithLogger(logger))
	if err != nil {
		logger.Fatalf("Failed to load case data: %v", err)
	}

	// 摘要器与评估器
	mode, err := evaluation.ParseMode(cfg.Evaluation.RougeMode)
	if err != nil {
		logger.Fatalf("Invalid rouge mode: %v", err)
	}
	sum := summarizer.New(
		summarizer.WithScorer(summarizer.NewTFIDFScorer(cfg.Evaluation.MaxFeatures)),
		summarizer.WithLogger(logger),
	)
	evaluator := evaluation.NewEvaluator(evaluation.WithMode(mode), evaluation.WithLogger(logger))
	extractor := entity.NewExtractor()

	// 初始化业务服务
	comparisonOptions := []services.ComparisonOption{
		services.WithComparisonSentences(cfg.Evaluation.SummarySentences),
		services.WithComparisonWorkers(cfg.Evaluation.Workers),
		services.WithComparisonLogger(logger),
	}
	summaryOptions := []services.SummaryOption{
		services.WithSummaryStorage(fileStorage),
		services.WithSummaryRepository(repository.NewSummaryRepository(db)),
		services.WithSummaryLogger(logger),
	}
	if cacheService != nil {
		comparisonOptions = append(comparisonOptions, services.WithComparisonCache(cacheService))
		summaryOptions = append(summaryOptions, services.WithSummaryCache(cacheService, cfg.Cache.CacheTTL()))
	}

	comparisonService := services.NewComparisonService(caseLoader, sum, evaluator, comparisonOptions...)
	summaryService := services.NewSummaryService(sum, extractor, summaryOptions...)
	analysisService := services.NewAnalysisService(caseLoader, sum, extractor, comparisonService,
		services.WithAnalysisStorage(fileStorage),
		services.WithAnalysisLogger(logger),
	)

	evaluationOptions := []services.EvaluationOption{
		services.WithEvaluationRepository(repository.NewEvaluationRepository(db)),
		services.WithEvaluationLogger(logger),
	}

	// 初始化任务队列（如果启用）
	var worker *taskqueue.RedisWorker
	var queue *taskqueue.RedisQueue
	if cfg.Queue.Enable {
		queue, err = setupTaskQueue(cfg.Queue, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		evaluationOptions = append(evaluationOptions, services.WithEvaluationQueue(queue))
		logger.Info("Task queue initialized successfully")
	}

	evaluationService := services.NewEvaluationService(comparisonService, evaluationOptions...)

	if queue != nil {
		callbacks := taskqueue.NewCallbackProcessor(logger)
		worker = taskqueue.NewRedisWorker(queue, callbacks)
		evaluationService.RegisterTaskHandlers(worker, callbacks)
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		logger.Info("Evaluation tasks will run on the async task queue")
	}

	// 设置路由
	r := api.SetupRouter(api.Handlers{
		Health:     handler.NewHealthHandler(analysisService, comparisonService, evaluationService),
		Summary:    handler.NewSummaryHandler(summaryService),
		Case:       handler.NewCaseHandler(analysisService, comparisonService),
		Evaluation: handler.NewEvaluationHandler(evaluationService),
	})

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":       srv.Addr,
			"cases":      len(caseLoader.ListCaseIDs()),
			"rouge_mode": evaluator.Mode(),
		}).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Stop()
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() flags {
	f := flags{}

	flag.StringVar(&f.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.StringVar(&f.EnvFile, "env", ".env", "Path to .env file")
	flag.IntVar(&f.Port, "port", 0, "Server port")
	flag.StringVar(&f.Mode, "mode", "", "Run mode (debug/release)")
	flag.StringVar(&f.LogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	flag.StringVar(&f.DataDir, "data-dir", "", "Pre-chunked case data directory")
	flag.StringVar(&f.RougeMode, "rouge-mode", "", "ROUGE mode (auto/full/approx)")
	flag.BoolVar(&f.Queue, "queue", false, "Enable async evaluation task queue")

	flag.Parse()
	return f
}

// applyFlags 用显式设置的命令行参数覆盖配置
func applyFlags(cfg *appconfig.Config, f flags) {
	if f.Port != 0 {
		cfg.Server.Port = f.Port
	}
	if f.Mode != "" {
		cfg.Server.Mode = f.Mode
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.DataDir != "" {
		cfg.Data.Dir = f.DataDir
	}
	if f.RougeMode != "" {
		cfg.Evaluation.RougeMode = f.RougeMode
	}
	if f.Queue {
		cfg.Queue.Enable = true
	}
}

// setupLogger 设置日志系统
// 配置了日志文件时同时写入标准输出和按大小轮转的文件
func setupLogger(cfg appconfig.LogConfig) (*logrus.Logger, func(), error) {
	logger := middleware.GetLogger()

	var output io.Writer = os.Stdout
	closeFn := func() {}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		output = io.MultiWriter(os.Stdout, rotator)
		closeFn = func() { _ = rotator.Close() }
	}

	if err := middleware.Configure(cfg.Level, output); err != nil {
		return nil, nil, err
	}
	return logger, closeFn, nil
}

// setupStorage 设置文件存储服务
func setupStorage(cfg appconfig.StorageConfig) (storage.Storage, error) {
	return storage.New(storage.Config{
		Type: cfg.Type,
		Local: storage.LocalConfig{
			Path: cfg.Path,
		},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
		},
	})
}

// setupCache 设置缓存服务，未启用时返回nil
func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	if !cfg.Enable {
		return nil, nil
	}

	cacheConfig := cache.Config{
		Type:            cfg.Type,
		KeyPrefix:       cfg.KeyPrefix,
		DefaultTTL:      cfg.CacheTTL(),
		CleanupInterval: 10 * time.Minute,
		MaxEntries:      cfg.MaxEntries,
	}

	// 如果配置了Redis，添加Redis配置
	if cfg.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Address
		cacheConfig.RedisPassword = cfg.Password
		cacheConfig.RedisDB = cfg.DB
	}

	return cache.NewCache(cacheConfig)
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg appconfig.QueueConfig, logger *logrus.Logger) (*taskqueue.RedisQueue, error) {
	queueConfig := taskqueue.DefaultConfig()
	queueConfig.RedisAddr = cfg.RedisAddr
	queueConfig.RedisPassword = cfg.RedisPassword
	queueConfig.RedisDB = cfg.RedisDB
	queueConfig.Concurrency = cfg.Concurrency
	queueConfig.RetryLimit = cfg.RetryLimit
	queueConfig.RetryDelay = time.Duration(cfg.RetryDelay) * time.Second
	queueConfig.TaskExpiry = time.Duration(cfg.TaskExpiry) * time.Hour

	logger.WithFields(logrus.Fields{
		"type":        cfg.Type,
		"redis_addr":  cfg.RedisAddr,
		"concurrency": cfg.Concurrency,
		"retry_limit": cfg.RetryLimit,
	}).Info("Setting up task queue")

	return taskqueue.NewRedisQueue(queueConfig, taskqueue.WithQueueLogger(logger))
}
