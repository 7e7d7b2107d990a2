package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	UpstreamBaseURL string
	CatalogAPIURL   string
	OrderAPIURL     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	DraftTTL        time.Duration
	PollInterval    time.Duration
	FakeUpstreams   bool
	ServiceName     string
	TracingEnabled  bool
}

// Load reads the configuration from the environment. Relative catalog and
// order API URLs are resolved against UPSTREAM_BASE_URL.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		UpstreamBaseURL: getenv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ServiceName:     getenv("OTEL_SERVICE_NAME", "order-console"),
	}

	var err error
	if cfg.CatalogAPIURL, err = resolve(cfg.UpstreamBaseURL, getenv("CATALOG_API_URL", "/api/catalog")); err != nil {
		return Config{}, fmt.Errorf("CATALOG_API_URL: %w", err)
	}
	if cfg.OrderAPIURL, err = resolve(cfg.UpstreamBaseURL, getenv("ORDER_API_URL", "/api/orders")); err != nil {
		return Config{}, fmt.Errorf("ORDER_API_URL: %w", err)
	}
	if cfg.RedisDB, err = getint("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.DraftTTL, err = getduration("DRAFT_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = getduration("POLL_INTERVAL", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.FakeUpstreams, err = getbool("CONSOLE_FAKE_UPSTREAMS", false); err != nil {
		return Config{}, err
	}
	if cfg.TracingEnabled, err = getbool("OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolve(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if r.IsAbs() {
		return strings.TrimRight(r.String(), "/"), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("UPSTREAM_BASE_URL: %w", err)
	}
	if !b.IsAbs() {
		return "", fmt.Errorf("UPSTREAM_BASE_URL %q is not absolute", base)
	}
	return strings.TrimRight(b.ResolveReference(r).String(), "/"), nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", k, v)
	}
	return d, nil
}

func getint(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return i, nil
}

func getbool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
