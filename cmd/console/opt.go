package main

import (
	"fmt"
	"os"
	"time"
)

type opt struct {
	pgHost string
	pgUser string
	pgPass string
	pgPort string
	pgName string

	natsURL     string
	redisAddr   string
	httpAddress string
	metricsAddr string
	jwtSecret   string

	docTimeout time.Duration
}

func optsFromEnv() opt {
	o := opt{
		pgHost:      os.Getenv("PG_HOST"),
		pgUser:      os.Getenv("PG_USER"),
		pgPass:      os.Getenv("PG_PASS"),
		pgPort:      os.Getenv("PG_PORT"),
		pgName:      os.Getenv("PG_NAME"),
		natsURL:     os.Getenv("NATS_URL"),
		redisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		httpAddress: getEnv("HTTP_ADDRESS", ":3000"),
		metricsAddr: getEnv("METRICS_ADDRESS", ":9090"),
		jwtSecret:   os.Getenv("JWT_SECRET"),
		docTimeout:  8 * time.Second,
	}

	if raw := os.Getenv("DOC_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			o.docTimeout = d
		}
	}

	return o
}

func (o *opt) ConnectionString() string {
	host := o.pgHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		o.pgUser, o.pgPass, host, o.pgPort, o.pgName)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
