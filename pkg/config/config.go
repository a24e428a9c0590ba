package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	JWT    JWTConfig
	Stripe StripeConfig
	R2     R2Config
}

type ServerConfig struct {
	Port        string
	FrontendURL string
}

type JWTConfig struct {
	Secret string
}

type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	MonthlyPriceID string
	AnnualPriceID  string
}

type R2Config struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "3000"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			MonthlyPriceID: getEnv("STRIPE_PRICE_MONTHLY", ""),
			AnnualPriceID:  getEnv("STRIPE_PRICE_ANNUAL", ""),
		},
		R2: R2Config{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", "cteskills-media"),
			PublicURL:  getEnv("R2_PUBLIC_URL", "https://cdn.cteskills.com"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
