package service

import (
	"context"
	"database/sql"
	"fmt"

	"employee-import/internal/config"
	"employee-import/internal/consumer"
	"employee-import/internal/database"
	"employee-import/internal/importer"
	"employee-import/internal/notifier"
	redisx "employee-import/internal/redis"
	"employee-import/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ImporterService 员工导入服务
// 数据库和 Redis 连接在服务生命周期内各获取一次，Stop 时统一释放
type ImporterService struct {
	config         *config.Config
	logger         *zap.Logger
	db             *sql.DB
	redisClient    *redis.Client
	uploadConsumer *consumer.UploadConsumer
}

// NewImporterService 创建员工导入服务
func NewImporterService(cfg *config.Config, logger *zap.Logger) (*ImporterService, error) {
	// 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 初始化 Redis（上传事件 + 欢迎邮件队列）
	redisClient := redisx.NewRedisClient(&cfg.Redis)
	if err := redisx.Ping(context.Background(), redisClient); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	usersRepo := repository.NewPostgresUsersRepository(db)
	queueNotifier := notifier.NewQueueNotifier(
		redisClient,
		cfg.Importer.NotifyQueue,
		cfg.Importer.DefaultPassword,
		logger,
	)
	reconciler := importer.NewReconciler(usersRepo, queueNotifier, cfg.Importer.DefaultPassword, logger)
	processor := importer.NewBatchProcessor(reconciler, logger)

	uploadConsumer := consumer.NewUploadConsumer(
		redisClient,
		processor,
		logger,
		cfg.Importer.UploadDir,
		cfg.Importer.UploadStream,
		cfg.Importer.ConsumerGroup,
		cfg.Importer.ConsumerName,
		int64(cfg.Importer.BatchSize),
	)

	return &ImporterService{
		config:         cfg,
		logger:         logger,
		db:             db,
		redisClient:    redisClient,
		uploadConsumer: uploadConsumer,
	}, nil
}

// Start 启动服务（阻塞直到 ctx 取消）
func (s *ImporterService) Start(ctx context.Context) error {
	s.logger.Info("Starting employee import service",
		zap.String("upload_stream", s.config.Importer.UploadStream),
		zap.String("notify_queue", s.config.Importer.NotifyQueue),
	)

	return s.uploadConsumer.Start(ctx)
}

// Stop 停止服务并释放连接
func (s *ImporterService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping employee import service")

	var firstErr error
	if err := redisx.Close(s.redisClient); err != nil {
		firstErr = err
	}
	if err := database.Close(s.db); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
