package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// MaxSpeedLimit keeps the tick interval at one millisecond or more.
const MaxSpeedLimit = 1000

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath  string `json:"selfpath"`
	Port      string `json:"port"`
	Blocksize int    `json:"blocksize"` // pixels per cell
	Width     int    `json:"width"`     // canvas width in pixels
	Height    int    `json:"height"`    // canvas height in pixels
	Speed     int    `json:"speed"`     // ticks per second
	MaxSpeed  int    `json:"maxspeed"`
	DBPath    string `json:"dbpath"`
	OutputDir string `json:"outputdir"`
	StaticDir string `json:"staticdir"`
	LogLevel  string `json:"loglevel"`
}

// Default returns the configuration written on first run.
func Default() *AppConfig {
	return &AppConfig{
		SelfPath:  "localhost:38870",
		Port:      "38870",
		Blocksize: 20,
		Width:     400,
		Height:    400,
		Speed:     8,
		MaxSpeed:  20,
		DBPath:    "game.db",
		OutputDir: "output",
		StaticDir: "static",
		LogLevel:  "info",
	}
}

// Validate checks the values the game cannot run without.
func (c *AppConfig) Validate() error {
	if c.Blocksize <= 0 {
		return fmt.Errorf("blocksize must be positive, got %d", c.Blocksize)
	}
	if c.Width < c.Blocksize || c.Height < c.Blocksize {
		return fmt.Errorf("canvas %dx%d smaller than one cell of %d", c.Width, c.Height, c.Blocksize)
	}
	if c.MaxSpeed < 1 || c.MaxSpeed > MaxSpeedLimit {
		return fmt.Errorf("maxspeed must be between 1 and %d, got %d", MaxSpeedLimit, c.MaxSpeed)
	}
	if c.Speed < 1 {
		return fmt.Errorf("speed must be at least 1, got %d", c.Speed)
	}
	if c.Port == "" {
		return fmt.Errorf("port is empty")
	}
	return nil
}

var (
	instance *AppConfig
	mu       sync.RWMutex
)

// LoadConfig initializes the shared instance from filePath.
// The file is created with defaults if it does not exist.
func LoadConfig(filePath string) (*AppConfig, error) {
	cfg, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	set(cfg)
	return cfg, nil
}

// Load reads filePath over the defaults, creating the file if missing.
func Load(filePath string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := saveConfig(filePath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := loadConfig(filePath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return cfg, nil
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", filePath, err)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

func set(cfg *AppConfig) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// Current returns the shared instance, or the defaults before LoadConfig.
func Current() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return Default()
	}
	return instance
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	cfg := Current()
	switch key {
	case "selfpath":
		return cfg.SelfPath
	case "port":
		return cfg.Port
	case "blocksize":
		return cfg.Blocksize
	case "width":
		return cfg.Width
	case "height":
		return cfg.Height
	case "speed":
		return cfg.Speed
	case "maxspeed":
		return cfg.MaxSpeed
	case "dbpath":
		return cfg.DBPath
	case "outputdir":
		return cfg.OutputDir
	case "staticdir":
		return cfg.StaticDir
	case "loglevel":
		return cfg.LogLevel
	default:
		return ""
	}
}
