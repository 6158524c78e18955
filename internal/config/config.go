package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "https://aviation-certs-api.onrender.com"
	DefaultFetchDelay = 300 * time.Millisecond
)

// Config holds settings for the batch CLI and the preview server.
type Config struct {
	APIBaseURL  string
	SessionFile string
	FetchDelay  time.Duration
	// HTTPTimeout of zero keeps the transport default.
	HTTPTimeout time.Duration
	OutputDir   string

	PDFChromiumPath string
	PDFTimeout      time.Duration
	PDFMarginMM     float64

	ListenAddr      string
	JobRetention    time.Duration
	BatchRatePerMin int

	MaxItems       int
	MaxDescription int
}

type configFile struct {
	API struct {
		BaseURL     string `yaml:"base_url"`
		SessionFile string `yaml:"session_file"`
		FetchDelay  string `yaml:"fetch_delay"`
		HTTPTimeout string `yaml:"http_timeout"`
	} `yaml:"api"`
	Export struct {
		OutputDir    string   `yaml:"output_dir"`
		ChromiumPath string   `yaml:"chromium_path"`
		Timeout      string   `yaml:"timeout"`
		MarginMM     *float64 `yaml:"margin_mm"`
	} `yaml:"export"`
	Server struct {
		ListenAddr      string `yaml:"listen_addr"`
		JobRetention    string `yaml:"job_retention"`
		BatchRatePerMin int    `yaml:"batch_rate_per_min"`
	} `yaml:"server"`
	Validation struct {
		MaxItems       int `yaml:"max_items"`
		MaxDescription int `yaml:"max_description"`
	} `yaml:"validation"`
}

func defaults() Config {
	return Config{
		APIBaseURL:      DefaultAPIBaseURL,
		SessionFile:     "session.json",
		FetchDelay:      DefaultFetchDelay,
		OutputDir:       "out",
		PDFTimeout:      30 * time.Second,
		PDFMarginMM:     0.2,
		ListenAddr:      ":8080",
		JobRetention:    30 * time.Minute,
		BatchRatePerMin: 30,
		MaxItems:        100,
		MaxDescription:  240,
	}
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, then the optional YAML file at
// path (or CERTS_CONFIG_FILE), then environment variables.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CERTS_CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.applyFile(raw); err != nil {
			return Config{}, err
		}
	}

	cfg.APIBaseURL = getenv("CERTS_API_BASE_URL", cfg.APIBaseURL)
	cfg.SessionFile = getenv("CERTS_SESSION_FILE", cfg.SessionFile)
	cfg.FetchDelay = getDuration("CERTS_FETCH_DELAY", cfg.FetchDelay)
	cfg.HTTPTimeout = getDuration("CERTS_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.OutputDir = getenv("CERTS_OUTPUT_DIR", cfg.OutputDir)
	cfg.PDFChromiumPath = getenv("PDF_CHROMIUM_PATH", cfg.PDFChromiumPath)
	cfg.PDFTimeout = getDuration("PDF_TIMEOUT", cfg.PDFTimeout)
	cfg.PDFMarginMM = getFloat("PDF_MARGIN_MM", cfg.PDFMarginMM)
	cfg.ListenAddr = getenv("CERTS_LISTEN_ADDR", cfg.ListenAddr)
	cfg.JobRetention = getDuration("CERTS_JOB_RETENTION", cfg.JobRetention)
	cfg.BatchRatePerMin = getInt("CERTS_BATCH_RATE_PER_MIN", cfg.BatchRatePerMin)
	cfg.MaxItems = getInt("CERTS_MAX_ITEMS", cfg.MaxItems)
	cfg.MaxDescription = getInt("CERTS_MAX_DESCRIPTION", cfg.MaxDescription)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	setString(&c.APIBaseURL, f.API.BaseURL)
	setString(&c.SessionFile, f.API.SessionFile)
	setString(&c.OutputDir, f.Export.OutputDir)
	setString(&c.PDFChromiumPath, f.Export.ChromiumPath)
	setString(&c.ListenAddr, f.Server.ListenAddr)
	if f.Export.MarginMM != nil {
		c.PDFMarginMM = *f.Export.MarginMM
	}
	if f.Server.BatchRatePerMin > 0 {
		c.BatchRatePerMin = f.Server.BatchRatePerMin
	}
	if f.Validation.MaxItems > 0 {
		c.MaxItems = f.Validation.MaxItems
	}
	if f.Validation.MaxDescription > 0 {
		c.MaxDescription = f.Validation.MaxDescription
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"api.fetch_delay", f.API.FetchDelay, &c.FetchDelay},
		{"api.http_timeout", f.API.HTTPTimeout, &c.HTTPTimeout},
		{"export.timeout", f.Export.Timeout, &c.PDFTimeout},
		{"server.job_retention", f.Server.JobRetention, &c.JobRetention},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config file: %s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("CERTS_API_BASE_URL: invalid url %q", c.APIBaseURL))
	}
	if c.FetchDelay < 0 {
		errs = append(errs, errors.New("CERTS_FETCH_DELAY: must not be negative"))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("CERTS_HTTP_TIMEOUT: must not be negative"))
	}
	if c.PDFMarginMM < 0 {
		errs = append(errs, errors.New("PDF_MARGIN_MM: must not be negative"))
	}
	if c.BatchRatePerMin <= 0 {
		errs = append(errs, errors.New("CERTS_BATCH_RATE_PER_MIN: must be positive"))
	}
	if c.MaxItems <= 0 || c.MaxDescription <= 0 {
		errs = append(errs, errors.New("CERTS_MAX_ITEMS and CERTS_MAX_DESCRIPTION must be positive"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
