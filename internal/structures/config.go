package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SourceConfig struct {
	Endpoint    string        `yaml:"endpoint" validate:"required|fullUrl"`
	Timeout     time.Duration `yaml:"timeout" validate:"required|min:1"`
	PerPage     int           `yaml:"perPage"`
	PageSpace   int           `yaml:"pageSpace"`
	MaxAttempts int           `yaml:"maxAttempts"`
	MinDelay    time.Duration `yaml:"minDelay"`
}

type GachaConfig struct {
	MaxRolls    int           `yaml:"maxRolls"`
	RevealDelay time.Duration `yaml:"revealDelay"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Gacha       GachaConfig   `yaml:"gacha"`
	Source      SourceConfig  `yaml:"source"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
