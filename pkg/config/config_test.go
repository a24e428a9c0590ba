package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("R2_BUCKET_NAME", "")
	t.Setenv("R2_PUBLIC_URL", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:5173", cfg.Server.FrontendURL)
	assert.Equal(t, "cteskills-media", cfg.R2.BucketName)
	assert.Equal(t, "https://cdn.cteskills.com", cfg.R2.PublicURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("FRONTEND_URL", "https://cteskills.com")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("R2_BUCKET_NAME", "custom-bucket")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://cteskills.com", cfg.Server.FrontendURL)
	assert.Equal(t, "whsec_test", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "custom-bucket", cfg.R2.BucketName)
}
