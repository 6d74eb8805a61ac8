// Package config loads intakeqc settings: built-in defaults, then an optional
// YAML file, then INTAKEQC_* environment variables. Binaries apply their flags
// last.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intakeqc/pkg/metrics"
	"github.com/goliatone/go-intakeqc/pkg/qcform"
	"github.com/goliatone/go-intakeqc/pkg/record"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL        = "INTAKEQC_API_URL"
	EnvAddr          = "INTAKEQC_ADDR"
	EnvSessionSecret = "INTAKEQC_SESSION_SECRET"
	EnvLogLevel      = "INTAKEQC_LOG_LEVEL"
	EnvLogFormat     = "INTAKEQC_LOG_FORMAT"
)

// Config is the root configuration.
type Config struct {
	API       APIConfig      `yaml:"api"`
	Server    ServerConfig   `yaml:"server"`
	Log       LogConfig      `yaml:"log"`
	Theme     ThemeConfig    `yaml:"theme"`
	Metrics   metrics.Config `yaml:"metrics"`
	Resources []Resource     `yaml:"resources"`
}

// APIConfig points at the intake REST API.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
	// ListCacheSize bounds how many per-token list caches each resource keeps.
	ListCacheSize int `yaml:"list_cache_size"`
}

// ServerConfig configures the web front-end.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	SessionSecret string        `yaml:"session_secret"`
	SecureCookies bool          `yaml:"secure_cookies"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ThemeConfig selects the page theme.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Column is a record field shown in a table or summary.
type Column struct {
	Field string `yaml:"field"`
	Label string `yaml:"label"`
}

// Resource describes one intake workflow.
type Resource struct {
	Name           string   `yaml:"name"`
	Title          string   `yaml:"title"`
	DetailTitle    string   `yaml:"detail_title"`
	Description    string   `yaml:"description"`
	Route          string   `yaml:"route"`
	ListEndpoint   string   `yaml:"list_endpoint"`
	SubmitEndpoint string   `yaml:"submit_endpoint"`
	RecordKeys     []string `yaml:"record_keys"`
	PlateField     string   `yaml:"plate_field"`
	Columns        []Column `yaml:"columns"`
	Summary        []Column `yaml:"summary"`
	Profile        string   `yaml:"profile"`
	// Help maps field names to help text shown under the control. Basic
	// inline HTML is kept; everything else is stripped when rendered.
	Help map[string]string `yaml:"help"`
}

// FormProfile returns the parsed profile.
func (r Resource) FormProfile() qcform.Profile {
	profile, err := qcform.ParseProfile(r.Profile)
	if err != nil {
		return qcform.ProfileInspection
	}
	return profile
}

// Default returns the built-in configuration.
func Default() Config {
	plate := Column{Field: record.FieldPlate, Label: "차량번호"}
	summary := []Column{plate, {Field: "CHADAENO", Label: "차대번호"}, {Field: "MODEL", Label: "모델"}}
	photoHelp := map[string]string{"IMGLIST": "차량 <strong>전면, 후면, 계기판</strong> 사진을 첨부해 주세요."}
	return Config{
		API: APIConfig{
			Timeout:     15 * time.Second,
			CacheMaxAge: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			ShutdownGrace: 5 * time.Second,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Theme:   ThemeConfig{Name: "intakeqc", Variant: "light"},
		Metrics: metrics.DefaultConfig(),
		Resources: []Resource{
			{
				Name:           "INQCOLD",
				Title:          "재렌트 입고 QC",
				DetailTitle:    "재렌트 입고 QC 상세",
				Route:          "inqcold",
				ListEndpoint:   "INQCOLD",
				SubmitEndpoint: "INQCOLD",
				PlateField:     record.FieldPlate,
				Columns: []Column{
					plate,
					{Field: "CNAME", Label: "고객명"},
					{Field: "INRSON", Label: "입고 사유"},
				},
				Summary: summary,
				Profile: string(qcform.ProfileInspection),
				Help:    photoHelp,
			},
			{
				Name:           "CompQC",
				Title:          "상품화 완료 QC",
				DetailTitle:    "상품화 완료 QC 상세 조회",
				Route:          "compqc",
				ListEndpoint:   "CompQC/D",
				SubmitEndpoint: "CompQC",
				PlateField:     record.FieldPlate,
				Columns: []Column{
					plate,
					{Field: "MODEL", Label: "모델"},
					{Field: "GUBUN", Label: "구분"},
				},
				Summary: summary,
				Profile: string(qcform.ProfileInspection),
				Help:    photoHelp,
			},
			{
				Name:           "LOCSET",
				Title:          "위치 변경",
				DetailTitle:    "위치 변경 입력",
				Route:          "LOCSET",
				ListEndpoint:   "LOCSET",
				SubmitEndpoint: "LOCSET",
				PlateField:     record.FieldPlate,
				Columns: []Column{
					plate,
					{Field: "MODEL", Label: "모델"},
					{Field: "ENTRYLOCATION", Label: "현재 위치"},
				},
				Summary: summary,
				Profile: string(qcform.ProfileLocation),
			},
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (when set)
// and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.Merge(data); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Merge decodes YAML data over cfg. A resources list replaces the defaults.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	set := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	set(EnvAPIURL, &c.API.BaseURL)
	set(EnvAddr, &c.Server.Addr)
	set(EnvSessionSecret, &c.Server.SessionSecret)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFormat, &c.Log.Format)
}

// Validate checks the settings every binary needs.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("config: api.base_url is required"))
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if len(c.Resources) == 0 {
		errs = append(errs, errors.New("config: at least one resource is required"))
	}

	routes := make(map[string]string, len(c.Resources))
	for i, res := range c.Resources {
		label := res.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if strings.TrimSpace(res.Name) == "" {
			errs = append(errs, fmt.Errorf("config: resource %s: name is required", label))
		}
		route := strings.ToLower(strings.Trim(res.Route, "/ "))
		if route == "" {
			errs = append(errs, fmt.Errorf("config: resource %s: route is required", label))
		} else if other, dup := routes[route]; dup {
			errs = append(errs, fmt.Errorf("config: resource %s: route %q already used by %s", label, res.Route, other))
		} else {
			routes[route] = label
		}
		if res.ListEndpoint == "" || res.SubmitEndpoint == "" {
			errs = append(errs, fmt.Errorf("config: resource %s: list_endpoint and submit_endpoint are required", label))
		}
		if _, err := qcform.ParseProfile(res.Profile); err != nil {
			errs = append(errs, fmt.Errorf("config: resource %s: %w", label, err))
		}
	}
	return errors.Join(errs...)
}

// Resource returns the resource named name, ignoring case.
func (c Config) Resource(name string) (Resource, bool) {
	for _, res := range c.Resources {
		if strings.EqualFold(res.Name, name) {
			return res, true
		}
	}
	return Resource{}, false
}

// Endpoint joins the API base URL and path.
func (c Config) Endpoint(path string) string {
	return strings.TrimRight(c.API.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Logger builds the slog logger described by c writing to w.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(c.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
