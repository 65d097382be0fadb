package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SpotPrice/internal/collector"
	"SpotPrice/internal/colormap"
	"SpotPrice/internal/model"
	"SpotPrice/internal/scheduler"
)

// Config holds all application configuration.
type Config struct {
	Feed struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"feed"`
	Schedule struct {
		Anchors       []string      `yaml:"anchors"`
		RetryInterval time.Duration `yaml:"retry_interval"`
	} `yaml:"schedule"`
	Cache struct {
		StaleAfter time.Duration `yaml:"stale_after"`
	} `yaml:"cache"`
	Display struct {
		Refresh   time.Duration `yaml:"refresh"`
		Width     int           `yaml:"width"`
		Height    int           `yaml:"height"`
		Timezone  string        `yaml:"timezone"`
		Surface   string        `yaml:"surface"`
		Output    string        `yaml:"output"`
		FillRatio float64       `yaml:"fill_ratio"`
	} `yaml:"display"`
	Thresholds struct {
		Low       float64 `yaml:"low"`
		Med       float64 `yaml:"med"`
		High      float64 `yaml:"high"`
		Max       float64 `yaml:"max"`
		GraphLow  float64 `yaml:"graph_low"`
		GraphHigh float64 `yaml:"graph_high"`
	} `yaml:"thresholds"`
	Graph struct {
		PastSlots8h  *int `yaml:"past_slots_8h"`
		PastSlots24h *int `yaml:"past_slots_24h"`
	} `yaml:"graph"`
	Radio struct {
		Up      string        `yaml:"up"`
		Down    string        `yaml:"down"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"radio"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Credentials are the network settings provisioned onto the device.
type Credentials struct {
	SSID     string
	Password string
}

// Validate reports missing credentials as a ConfigError. The caller keeps
// running and shows the "not configured" state instead of exiting.
func (c Credentials) Validate() error {
	if c.SSID == "" {
		return &model.ConfigError{Field: "WIFI_SSID", Message: "network credentials not provisioned"}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DISPLAY_SURFACE"); v != "" {
		cfg.Display.Surface = v
	}
	if v := os.Getenv("DISPLAY_OUTPUT"); v != "" {
		cfg.Display.Output = v
	}
	if v := os.Getenv("DISPLAY_TIMEZONE"); v != "" {
		cfg.Display.Timezone = v
	}
	if v := os.Getenv("RETRY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Schedule.RetryInterval = d
		}
	}
	if v := os.Getenv("STALE_AFTER"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.StaleAfter = d
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Feed.URL == "" {
		cfg.Feed.URL = collector.DefaultFeedURL
	}
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = 30 * time.Second
	}
	if len(cfg.Schedule.Anchors) == 0 {
		cfg.Schedule.Anchors = scheduler.DefaultAnchors
	}
	if cfg.Schedule.RetryInterval == 0 {
		cfg.Schedule.RetryInterval = 30 * time.Second
	}
	if cfg.Cache.StaleAfter == 0 {
		cfg.Cache.StaleAfter = 13 * time.Hour
	}
	if cfg.Display.Refresh == 0 {
		cfg.Display.Refresh = 120 * time.Second
	}
	if cfg.Display.Width == 0 {
		cfg.Display.Width = 240
	}
	if cfg.Display.Height == 0 {
		cfg.Display.Height = 135
	}
	if cfg.Display.Timezone == "" {
		cfg.Display.Timezone = "Europe/Helsinki"
	}
	if cfg.Display.Surface == "" {
		cfg.Display.Surface = "png"
	}
	if cfg.Display.Output == "" {
		cfg.Display.Output = "data/frame.png"
	}
	if cfg.Display.FillRatio == 0 {
		cfg.Display.FillRatio = colormap.DefaultGraphThresholds.FillRatio
	}
	// Each threshold group is all-or-nothing; 0 is a legitimate edge.
	th := &cfg.Thresholds
	if th.Low == 0 && th.Med == 0 && th.High == 0 && th.Max == 0 {
		th.Low = colormap.DefaultThresholds.Low
		th.Med = colormap.DefaultThresholds.Med
		th.High = colormap.DefaultThresholds.High
		th.Max = colormap.DefaultThresholds.Max
	}
	if th.GraphLow == 0 && th.GraphHigh == 0 {
		th.GraphLow = colormap.DefaultGraphThresholds.Low
		th.GraphHigh = colormap.DefaultGraphThresholds.High
	}
	if cfg.Graph.PastSlots8h == nil {
		n := 2
		cfg.Graph.PastSlots8h = &n
	}
	if cfg.Graph.PastSlots24h == nil {
		n := 4
		cfg.Graph.PastSlots24h = &n
	}
	if cfg.Radio.Timeout == 0 {
		cfg.Radio.Timeout = 30 * time.Second
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/spotprice.db"
	}
}

// LoadCredentials reads WIFI_SSID and WIFI_PASSWORD from a dotenv file,
// letting the process environment override it. A missing file is not an error.
func LoadCredentials(path string) (Credentials, error) {
	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		values, err = godotenv.Read(path)
		if err != nil {
			return Credentials{}, fmt.Errorf("read credentials: %w", err)
		}
	}
	c := Credentials{SSID: values["WIFI_SSID"], Password: values["WIFI_PASSWORD"]}
	if v := os.Getenv("WIFI_SSID"); v != "" {
		c.SSID = v
	}
	if v := os.Getenv("WIFI_PASSWORD"); v != "" {
		c.Password = v
	}
	return c, nil
}

// ColorThresholds returns the single-price band edges.
func (c *Config) ColorThresholds() colormap.Thresholds {
	return colormap.Thresholds{
		Low:  c.Thresholds.Low,
		Med:  c.Thresholds.Med,
		High: c.Thresholds.High,
		Max:  c.Thresholds.Max,
	}
}

// GraphThresholds returns the graph band edges and fill darkening.
func (c *Config) GraphThresholds() colormap.GraphThresholds {
	return colormap.GraphThresholds{
		Low:       c.Thresholds.GraphLow,
		High:      c.Thresholds.GraphHigh,
		FillRatio: c.Display.FillRatio,
	}
}

// Location resolves the display timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone %q: %w", c.Display.Timezone, err)
	}
	return loc, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if c.Schedule.RetryInterval < time.Second {
		return fmt.Errorf("schedule.retry_interval must be at least 1s")
	}
	if c.Cache.StaleAfter <= 0 {
		return fmt.Errorf("cache.stale_after must be positive")
	}
	if c.Display.Refresh <= 0 {
		return fmt.Errorf("display.refresh must be positive")
	}
	if c.Display.Width < 64 || c.Display.Height < 64 {
		return fmt.Errorf("display size %dx%d too small", c.Display.Width, c.Display.Height)
	}
	switch c.Display.Surface {
	case "png", "console":
	default:
		return fmt.Errorf("display.surface must be png or console, got %q", c.Display.Surface)
	}
	if err := c.ColorThresholds().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if err := c.GraphThresholds().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if *c.Graph.PastSlots8h < 0 || *c.Graph.PastSlots8h >= model.ViewGraph8h.Slots() {
		return fmt.Errorf("graph.past_slots_8h must be in [0, %d)", model.ViewGraph8h.Slots())
	}
	if *c.Graph.PastSlots24h < 0 || *c.Graph.PastSlots24h >= model.ViewGraph24h.Slots() {
		return fmt.Errorf("graph.past_slots_24h must be in [0, %d)", model.ViewGraph24h.Slots())
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
