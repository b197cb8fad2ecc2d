package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"
)

type NotifierConfig struct {
	WebhookURL string
	Secret     string
	Timeout    time.Duration
	RetryCount int
}

var (
	notifierConfig *NotifierConfig
	notifierOnce   sync.Once
)

func LoadNotifierConfig() *NotifierConfig {
	notifierOnce.Do(func() {
		retries := 2
		if v := os.Getenv("NOTIFY_RETRY_COUNT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				log.Printf("Warning: invalid NOTIFY_RETRY_COUNT %q, defaulting to %d", v, retries)
			} else {
				retries = n
			}
		}
		notifierConfig = &NotifierConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Secret:     os.Getenv("NOTIFY_WEBHOOK_SECRET"),
			Timeout:    durationEnv("NOTIFY_TIMEOUT", 10*time.Second),
			RetryCount: retries,
		}
	})
	return notifierConfig
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s %q, defaulting to %s", key, v, fallback)
		return fallback
	}
	return d
}
