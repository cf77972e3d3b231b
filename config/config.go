package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultOrdersAPIURL       = "https://www.swiggy.com/dapi/order/all"
	DefaultPageIntervalMillis = 1000
	DefaultMaxPages           = 50
	DefaultTimezone           = "Asia/Kolkata"
	DefaultBrowserProfileDir  = "./swiggy-browser-profile"
)

// Config holds the user settings edited from the dashboard.
type Config struct {
	OrdersAPIURL        string `json:"ordersAPIURL" validate:"required,url"`
	PageIntervalMillis  int    `json:"pageIntervalMillis" validate:"gte=1000"`
	MaxPages            int    `json:"maxPages" validate:"gte=1,lte=50"`
	Timezone            string `json:"timezone" validate:"required,timezone"`
	AmountsInMinorUnits bool   `json:"amountsInMinorUnits"`
	Headless            bool   `json:"headless"`
	BrowserControlURL   string `json:"browserControlURL" validate:"omitempty,url"`
	BrowserProfileDir   string `json:"browserProfileDir"`
}

// Env holds process settings read from SWIGGY_* variables.
type Env struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DBPath      string `envconfig:"DB_PATH" default:"./swiggy.db"`
	ConfigPath  string `envconfig:"CONFIG_PATH" default:"./swiggy_config.json"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"console"`
	OpenBrowser bool   `envconfig:"OPEN_BROWSER" default:"true"`
}

const EnvPrefix = "SWIGGY"

var (
	cfg            = Defaults()
	mu             sync.RWMutex
	configFilePath = "./swiggy_config.json"
	validate       = validator.New()
)

func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return env, nil
}

// SetPath changes the settings file used by LoadConfig and SaveConfig.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePath = path
}

func Defaults() Config {
	return Config{
		OrdersAPIURL:       DefaultOrdersAPIURL,
		PageIntervalMillis: DefaultPageIntervalMillis,
		MaxPages:           DefaultMaxPages,
		Timezone:           DefaultTimezone,
		Headless:           false,
		BrowserProfileDir:  DefaultBrowserProfileDir,
	}
}

func applyDefaults(c *Config) {
	d := Defaults()
	if c.OrdersAPIURL == "" {
		c.OrdersAPIURL = d.OrdersAPIURL
	}
	if c.PageIntervalMillis < d.PageIntervalMillis {
		c.PageIntervalMillis = d.PageIntervalMillis
	}
	if c.MaxPages <= 0 || c.MaxPages > d.MaxPages {
		c.MaxPages = d.MaxPages
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.BrowserProfileDir == "" {
		c.BrowserProfileDir = d.BrowserProfileDir
	}
}

// LoadConfig reads the settings file. A missing file yields defaults.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = Defaults()
			return cfg, nil
		}
		return Config{}, err
	}

	var tempCfg Config
	if err := json.Unmarshal(file, &tempCfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&tempCfg)
	cfg = tempCfg
	return cfg, nil
}

func SaveConfig(newCfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)
	if err := validate.Struct(newCfg); err != nil {
		return err
	}

	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFilePath, file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Location resolves Timezone, falling back to the machine's zone.
func (c Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.Local
}

func (c Config) PageInterval() time.Duration {
	return time.Duration(c.PageIntervalMillis) * time.Millisecond
}
