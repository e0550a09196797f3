package notifier

import (
	"context"
	"fmt"
	"strings"

	redisx "employee-import/internal/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// WelcomeSubject 欢迎邮件固定主题
const WelcomeSubject = "Welcome! Your account has been created"

// WelcomeMessage 欢迎邮件负载，JSON序列化后投递到邮件队列
type WelcomeMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier 欢迎通知发送接口
// 仅在新聚合创建时触发，更新路径永不发送
type Notifier interface {
	SendWelcome(ctx context.Context, email string, firstName string) error
}

// QueueNotifier 基于 Redis Streams 的通知发送器
// 下游邮件服务从固定队列（默认 "certs-queue"）消费
type QueueNotifier struct {
	client          *redis.Client
	stream          string
	defaultPassword string
	logger          *zap.Logger
}

// NewQueueNotifier 创建通知发送器
// defaultPassword 来自配置注入，禁止硬编码
func NewQueueNotifier(client *redis.Client, stream string, defaultPassword string, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{
		client:          client,
		stream:          stream,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

var _ Notifier = (*QueueNotifier)(nil)

// BuildWelcomeMessage 构造欢迎邮件负载
// ⚠️ 正文包含明文默认密码（沿用既有邮件流程），后续应改为重置链接
func BuildWelcomeMessage(email string, firstName string, defaultPassword string) WelcomeMessage {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour employee account has been created. Sign in with the temporary password: %s\n\nPlease change it after your first login.",
		name, defaultPassword,
	)

	return WelcomeMessage{
		To:      email,
		Subject: WelcomeSubject,
		Body:    body,
	}
}

// SendWelcome 发送欢迎通知
// 投递失败向上传播，由行级错误边界统计为 Errored，不在此处重试
func (n *QueueNotifier) SendWelcome(ctx context.Context, email string, firstName string) error {
	msg := BuildWelcomeMessage(email, firstName, n.defaultPassword)

	id, err := redisx.PublishJSONToStream(ctx, n.client, n.stream, msg)
	if err != nil {
		return fmt.Errorf("failed to publish welcome message: %w", err)
	}

	n.logger.Info("Welcome notification dispatched",
		zap.String("to", email),
		zap.String("stream", n.stream),
		zap.String("message_id", id),
	)

	return nil
}
