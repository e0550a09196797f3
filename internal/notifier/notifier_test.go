package notifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWelcomeMessage(t *testing.T) {
	msg := BuildWelcomeMessage("a@x.com", "Alice", "Welcome1!")

	assert.Equal(t, "a@x.com", msg.To)
	assert.Equal(t, WelcomeSubject, msg.Subject)
	assert.Contains(t, msg.Body, "Alice")
	assert.Contains(t, msg.Body, "Welcome1!")
}

func TestBuildWelcomeMessage_EmptyFirstName(t *testing.T) {
	msg := BuildWelcomeMessage("a@x.com", "  ", "Welcome1!")

	// 缺失名字时使用通用称呼
	assert.Contains(t, msg.Body, "Hi there,")
}

func TestWelcomeMessage_JSONShape(t *testing.T) {
	msg := BuildWelcomeMessage("a@x.com", "Alice", "Welcome1!")

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// 下游邮件服务按这三个字段消费
	assert.Equal(t, "a@x.com", decoded["to"])
	assert.Equal(t, WelcomeSubject, decoded["subject"])
	assert.NotEmpty(t, decoded["body"])
}
