package config

import (
	"os"
	"strconv"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	Port                       string
	PostgresURI                string
	RedisURI                   string
	CronAPIKey                 string
	SecretKey                  string
	InstagramAccessToken       string
	InstagramBusinessAccountID string
	TwitterAccessToken         string
	BlueskyIdentifier          string
	BlueskyAppPassword         string
	ThreadsAccessToken         string
	ThreadsUserID              string
	DownloadDir                string
	CandidateFetchLimit        int
	R2                         R2
}

func LoadConfig() *Config {
	return &Config{
		Port:                       getEnv("PORT", "3000"),
		PostgresURI:                getEnv("POSTGRES_URI", ""),
		RedisURI:                   getEnv("REDIS_URI", "127.0.0.1:6379"),
		CronAPIKey:                 getEnv("CRON_API_KEY", ""),
		SecretKey:                  getEnv("SECRET_KEY", ""),
		InstagramAccessToken:       getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramBusinessAccountID: getEnv("INSTAGRAM_BUSINESS_ACCOUNT_ID", ""),
		TwitterAccessToken:         getEnv("TWITTER_ACCESS_TOKEN", ""),
		BlueskyIdentifier:          getEnv("BLUESKY_IDENTIFIER", ""),
		BlueskyAppPassword:         getEnv("BLUESKY_APP_PASSWORD", ""),
		ThreadsAccessToken:         getEnv("THREADS_ACCESS_TOKEN", ""),
		ThreadsUserID:              getEnv("THREADS_USER_ID", ""),
		DownloadDir:                getEnv("DOWNLOAD_DIR", "temp/downloads"),
		CandidateFetchLimit:        getEnvInt("CANDIDATE_FETCH_LIMIT", 100),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
