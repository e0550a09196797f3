package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"employee-import/internal/importer"
	redisx "employee-import/internal/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// UploadEvent 花名册上传事件
// 由存储侧在文件落盘后发布，file_name 相对上传目录解析
type UploadEvent struct {
	FileName  string `json:"file_name"`
	Path      string `json:"path,omitempty"` // 绝对路径时优先使用
	Timestamp int64  `json:"timestamp,omitempty"`
}

// fileProcessor 单文件处理能力
type fileProcessor interface {
	ProcessFile(ctx context.Context, r io.Reader, fileName string) (importer.Summary, error)
}

// UploadConsumer 上传事件消费者
// 从 Redis Streams 读取上传事件，打开文件并交给批处理编排器
type UploadConsumer struct {
	redisClient  *redis.Client
	processor    fileProcessor
	logger       *zap.Logger
	uploadDir    string
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
}

// NewUploadConsumer 创建上传事件消费者
func NewUploadConsumer(
	redisClient *redis.Client,
	processor fileProcessor,
	logger *zap.Logger,
	uploadDir string,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *UploadConsumer {
	return &UploadConsumer{
		redisClient:  redisClient,
		processor:    processor,
		logger:       logger,
		uploadDir:    uploadDir,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动上传事件消费者
func (c *UploadConsumer) Start(ctx context.Context) error {
	// 创建消费者组
	if err := redisx.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Upload consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
		zap.String("upload_dir", c.uploadDir),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				c.logger.Error("Failed to consume upload events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

// consumeEvents 读取并处理一批上传事件
func (c *UploadConsumer) consumeEvents(ctx context.Context) error {
	messages, err := redisx.ReadFromStream(
		ctx,
		c.redisClient,
		c.stream,
		c.groupName,
		c.consumerName,
		c.batchSize,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		event, err := parseUploadEvent(msg.Values)
		if err != nil {
			// 畸形事件无法重试，记录后确认丢弃
			c.logger.Error("Malformed upload event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			c.ack(ctx, msg.ID)
			continue
		}

		if err := c.handleUpload(ctx, event); err != nil {
			// 文件级失败不确认，留在 pending 中等待重投
			c.logger.Error("File invocation failed",
				zap.String("message_id", msg.ID),
				zap.String("file", event.FileName),
				zap.Error(err),
			)
			continue
		}

		c.ack(ctx, msg.ID)
	}

	return nil
}

// handleUpload 处理一个上传事件：打开文件并运行批处理
func (c *UploadConsumer) handleUpload(ctx context.Context, event UploadEvent) error {
	path := event.Path
	if path == "" || !filepath.IsAbs(path) {
		path = filepath.Join(c.uploadDir, event.FileName)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open upload %s: %w", path, err)
	}
	defer f.Close()

	summary, err := c.processor.ProcessFile(ctx, f, event.FileName)
	if err != nil {
		return err
	}

	c.logger.Info("Upload processed",
		zap.String("file", event.FileName),
		zap.String("summary", summary.String()),
		zap.Bool("rejected", summary.Rejected),
	)
	return nil
}

// parseUploadEvent 从 Streams 消息解析上传事件
// 事件 JSON 在 "data" 字段中（见 redisx.PublishJSONToStream）
func parseUploadEvent(values map[string]interface{}) (UploadEvent, error) {
	raw, ok := values["data"].(string)
	if !ok || raw == "" {
		return UploadEvent{}, fmt.Errorf("missing data field")
	}

	var event UploadEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return UploadEvent{}, fmt.Errorf("failed to unmarshal upload event: %w", err)
	}
	if event.FileName == "" && event.Path == "" {
		return UploadEvent{}, fmt.Errorf("upload event has no file name")
	}

	return event, nil
}

func (c *UploadConsumer) ack(ctx context.Context, messageID string) {
	if err := redisx.AckMessage(ctx, c.redisClient, c.stream, c.groupName, messageID); err != nil {
		c.logger.Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
