package structures

import "time"

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

type DisplayConfig struct {
	MinInterval time.Duration `yaml:"minInterval" validate:"required|min:1"`
	MaxInterval time.Duration `yaml:"maxInterval" validate:"required|min:1"`
}

type PlaybackConfig struct {
	CountdownTicks   int     `yaml:"countdownTicks" validate:"required|min:1"`
	SkipDelayTicks   int     `yaml:"skipDelayTicks"`
	SkipVideoPercent float64 `yaml:"skipVideoPercent"`
}

type FrequencyCapConfig struct {
	Enabled bool `yaml:"enabled"`
	Daily   int  `yaml:"daily"`
	Weekly  int  `yaml:"weekly"`
	Monthly int  `yaml:"monthly"`
}

type TargetingConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Devices    []string `yaml:"devices"`
	Browsers   []string `yaml:"browsers"`
	TimesOfDay []string `yaml:"timesOfDay"`
	Days       []string `yaml:"days"`
}

type ABTestConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Variants []string `yaml:"variants"`
}

type PersonalizationConfig struct {
	Enabled bool `yaml:"enabled"`
}

type AdServiceConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"required|min:1"`
}

type EngineConfig struct {
	Display         DisplayConfig         `yaml:"display"`
	Playback        PlaybackConfig        `yaml:"playback"`
	FrequencyCap    FrequencyCapConfig    `yaml:"frequencyCap"`
	Targeting       TargetingConfig       `yaml:"targeting"`
	ABTest          ABTestConfig          `yaml:"abTest"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	AdService       AdServiceConfig       `yaml:"adService"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Engine      EngineConfig  `yaml:"engine"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
