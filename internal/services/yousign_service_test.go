// internal/services/yousign_service_test.go
package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentflow/tf-backend/internal/config"
)

func TestVerifyWebhookSignature(t *testing.T) {
	cfg := &config.Config{}
	cfg.YouSign.WebhookSecret = "webhook-secret"
	svc := NewYouSignService(cfg)

	body := []byte(`{"event_name":"signature_request.done"}`)
	mac := hmac.New(sha256.New, []byte("webhook-secret"))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifyWebhookSignature(body, valid))
	assert.False(t, svc.VerifyWebhookSignature(body, "deadbeef"))
	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"tampered":true}`), valid))
}

func TestVerifyWebhookSignatureWithoutSecret(t *testing.T) {
	svc := NewYouSignService(&config.Config{})
	assert.True(t, svc.VerifyWebhookSignature([]byte("anything"), ""))
}
