package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/safar/printshop/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactNotification(t *testing.T) {
	msg := ContactNotification("inbox@shop.test", &models.ContactMessage{
		Name:      "Ada",
		Email:     "ada@example.com",
		Subject:   "Bulk order",
		Message:   "Can you print 200 hoodies?",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "inbox@shop.test", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "[Contact] Bulk order", msg.Subject)
	assert.Contains(t, msg.Body, "Ada <ada@example.com>")
	assert.Contains(t, msg.Body, "200 hoodies")
}

func TestContactNotificationDefaultSubject(t *testing.T) {
	msg := ContactNotification("inbox@shop.test", &models.ContactMessage{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, "[Contact] New contact form message", msg.Subject)
}

func TestBuildSetsHeaders(t *testing.T) {
	m := build("shop@shop.test", Message{To: "a@b.c", ReplyTo: "r@b.c", Subject: "Hi", Body: "Hello"})

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "From: shop@shop.test")
	assert.Contains(t, raw, "To: a@b.c")
	assert.Contains(t, raw, "Reply-To: r@b.c")
	assert.Contains(t, raw, "Subject: Hi")
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()

	err := LogSender{Log: logger}.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi"})
	require.NoError(t, err)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "a@b.c", hook.LastEntry().Data["to"])
}
