// Package config loads the order service configuration from the environment.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default bus topics. They match the queue names the sibling services listen
// on, so overriding one side means overriding the other.
const (
	DefaultCartFetchTopic   = "get_cart_request"
	DefaultCartCommandTopic = "cart_service_queue"
	DefaultInventoryTopic   = "product_service_queue"
	DefaultAuditTopic       = "log_service_queue"
)

// BusConfig holds message-bus connection and topic settings.
type BusConfig struct {
	URL              string
	CallTimeout      time.Duration
	CartFetchTopic   string
	CartCommandTopic string
	InventoryTopic   string
	AuditTopic       string
	DialTimeout      *time.Duration
	ReadTimeout      *time.Duration
	WriteTimeout     *time.Duration
	PoolSize         *int
	EnableOTel       bool
	TLSConfig        *tls.Config
}

// StoreConfig holds order persistence settings. An empty DSN selects the
// in-memory store.
type StoreConfig struct {
	DSN string
}

// HTTPConfig holds the public HTTP listener settings. The rate-limit pair is
// the ingress token bucket; both zero disables limiting.
type HTTPConfig struct {
	Addr              string
	ShutdownTimeout   time.Duration
	RateLimitInterval time.Duration
	RateLimitBurst    int
}

// ReliabilityConfig holds outbound-call protection settings. Zero values mean
// single attempt, no breaker, no rate limit.
type ReliabilityConfig struct {
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration
	BreakerFailures   int
	BreakerReset      time.Duration
	RateLimitInterval time.Duration
	RateLimitBurst    int
}

// LoadBus reads bus config from env. BUS_URL is the only required setting.
func LoadBus() (BusConfig, error) {
	cfg := BusConfig{
		CartFetchTopic:   optionalString("BUS_CART_FETCH_TOPIC", DefaultCartFetchTopic),
		CartCommandTopic: optionalString("BUS_CART_COMMAND_TOPIC", DefaultCartCommandTopic),
		InventoryTopic:   optionalString("BUS_INVENTORY_TOPIC", DefaultInventoryTopic),
		AuditTopic:       optionalString("BUS_AUDIT_TOPIC", DefaultAuditTopic),
	}

	url, err := requiredString("BUS_URL")
	if err != nil {
		return cfg, err
	}
	cfg.URL = url

	timeout, err := optionalDuration("BUS_CALL_TIMEOUT")
	if err != nil {
		return cfg, err
	}
	if timeout != nil {
		cfg.CallTimeout = *timeout
	}

	if cfg.DialTimeout, err = optionalDuration("BUS_DIAL_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.ReadTimeout, err = optionalDuration("BUS_READ_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = optionalDuration("BUS_WRITE_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.PoolSize, err = optionalInt("BUS_POOL_SIZE"); err != nil {
		return cfg, err
	}
	if cfg.EnableOTel, err = optionalBool("BUS_OTEL"); err != nil {
		return cfg, err
	}
	if cfg.TLSConfig, err = loadBusTLSFromEnv(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadStore reads persistence config from env.
func LoadStore() StoreConfig {
	return StoreConfig{DSN: strings.TrimSpace(os.Getenv("DATABASE_URL"))}
}

// LoadHTTP reads HTTP listener config from env.
func LoadHTTP() (HTTPConfig, error) {
	cfg := HTTPConfig{
		Addr:            optionalString("HTTP_ADDR", ":8080"),
		ShutdownTimeout: 10 * time.Second,
	}

	timeout, err := optionalDuration("HTTP_SHUTDOWN_TIMEOUT")
	if err != nil {
		return cfg, err
	}
	if timeout != nil {
		cfg.ShutdownTimeout = *timeout
	}

	interval, err := optionalDuration("HTTP_RATE_LIMIT_INTERVAL")
	if err != nil {
		return cfg, err
	}
	if interval != nil {
		cfg.RateLimitInterval = *interval
	}

	burst, err := optionalInt("HTTP_RATE_LIMIT_BURST")
	if err != nil {
		return cfg, err
	}
	if burst != nil {
		cfg.RateLimitBurst = *burst
	}

	return cfg, nil
}

// LoadReliability reads outbound-call protection settings from env. With
// nothing set, every control is disabled.
func LoadReliability() (ReliabilityConfig, error) {
	var cfg ReliabilityConfig
	var err error

	attempts, err := optionalInt("RETRY_MAX_ATTEMPTS")
	if err != nil {
		return cfg, err
	}
	if attempts != nil {
		cfg.RetryAttempts = *attempts
	}

	base, err := optionalDuration("RETRY_BASE_DELAY")
	if err != nil {
		return cfg, err
	}
	if base != nil {
		cfg.RetryBaseDelay = *base
	}

	max, err := optionalDuration("RETRY_MAX_DELAY")
	if err != nil {
		return cfg, err
	}
	if max != nil {
		cfg.RetryMaxDelay = *max
	}

	failures, err := optionalInt("BREAKER_MAX_FAILURES")
	if err != nil {
		return cfg, err
	}
	if failures != nil {
		cfg.BreakerFailures = *failures
	}

	reset, err := optionalDuration("BREAKER_RESET_TIMEOUT")
	if err != nil {
		return cfg, err
	}
	if reset != nil {
		cfg.BreakerReset = *reset
	}

	interval, err := optionalDuration("RATE_LIMIT_INTERVAL")
	if err != nil {
		return cfg, err
	}
	if interval != nil {
		cfg.RateLimitInterval = *interval
	}

	burst, err := optionalInt("RATE_LIMIT_BURST")
	if err != nil {
		return cfg, err
	}
	if burst != nil {
		cfg.RateLimitBurst = *burst
	}

	return cfg, nil
}

func loadBusTLSFromEnv() (*tls.Config, error) {
	caFile := strings.TrimSpace(os.Getenv("BUS_TLS_CA_FILE"))
	certFile := strings.TrimSpace(os.Getenv("BUS_TLS_CERT_FILE"))
	keyFile := strings.TrimSpace(os.Getenv("BUS_TLS_KEY_FILE"))
	serverName := strings.TrimSpace(os.Getenv("BUS_TLS_SERVER_NAME"))
	insecureStr := strings.TrimSpace(os.Getenv("BUS_TLS_INSECURE_SKIP_VERIFY"))

	if caFile == "" && certFile == "" && keyFile == "" && serverName == "" && insecureStr == "" {
		return nil, nil
	}
	if (certFile == "") != (keyFile == "") {
		return nil, errors.New("BUS_TLS_CERT_FILE and BUS_TLS_KEY_FILE must be set together")
	}

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: serverName,
	}

	if insecureStr != "" {
		insecure, err := strconv.ParseBool(insecureStr)
		if err != nil {
			return nil, fmt.Errorf("BUS_TLS_INSECURE_SKIP_VERIFY: %w", err)
		}
		tlsConfig.InsecureSkipVerify = insecure
	}

	if caFile != "" {
		pemData, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read BUS_TLS_CA_FILE: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemData) {
			return nil, errors.New("BUS_TLS_CA_FILE contains no valid certificates")
		}
		tlsConfig.RootCAs = pool
	}

	if certFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("load bus TLS keypair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func optionalString(name, fallback string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return raw
}

func optionalDuration(name string) (*time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return nil, fmt.Errorf("%s must be >= 0", name)
	}
	return &val, nil
}

func optionalInt(name string) (*int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return nil, fmt.Errorf("%s must be >= 0", name)
	}
	return &val, nil
}

func optionalBool(name string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return val, nil
}

func requiredString(name string) (string, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return raw, nil
}
