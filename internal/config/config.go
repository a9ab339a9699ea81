package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/linkgen"
	"github.com/tusharkr1918/excel-whatsapp-message-generator/internal/logger"
)

type Config struct {
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	Output   OutputConfig   `toml:"output"`
	Session  SessionConfig  `toml:"session"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WhatsAppConfig struct {
	CountryCode    string   `toml:"country_code"`
	PhoneNumberLen PhoneLen `toml:"phone_number_len"`
	AnchorText     string   `toml:"anchor_text"`
	BaseURL        string   `toml:"base_url"`
}

type OutputConfig struct {
	Directory string `toml:"directory"`
	ChunkSize int    `toml:"chunk_size"`
}

type SessionConfig struct {
	StateFile string `toml:"state_file"`
}

type LoggingConfig struct {
	Directory string `toml:"directory"`
	Level     string `toml:"level"`
}

// PhoneLen accepts either an integer or a numeric string in the config file.
type PhoneLen int

func (p *PhoneLen) UnmarshalTOML(v interface{}) error {
	switch n := v.(type) {
	case int64:
		*p = PhoneLen(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return fmt.Errorf("phone_number_len %q is not a number", n)
		}
		*p = PhoneLen(i)
	default:
		return fmt.Errorf("phone_number_len has unsupported type %T", v)
	}
	return nil
}

func (p PhoneLen) MarshalTOML() ([]byte, error) {
	return []byte(strconv.Itoa(int(p))), nil
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		WhatsApp: WhatsAppConfig{
			CountryCode:    "91",
			PhoneNumberLen: 10,
			AnchorText:     "Send Message",
			BaseURL:        "https://wa.me/",
		},
		Output: OutputConfig{
			Directory: "data/output",
			ChunkSize: 200,
		},
		Session: SessionConfig{
			StateFile: "data/state_data.json",
		},
		Logging: LoggingConfig{
			Directory: "logs",
			Level:     "info",
		},
	}
}

// LinkSettings returns the link constants for the formula generator.
func (c *Config) LinkSettings() linkgen.Settings {
	return linkgen.Settings{
		BaseURL:        c.WhatsApp.BaseURL,
		CountryCode:    strings.TrimSpace(c.WhatsApp.CountryCode),
		PhoneNumberLen: int(c.WhatsApp.PhoneNumberLen),
		AnchorText:     strings.TrimSpace(c.WhatsApp.AnchorText),
	}
}

// LoadConfig loads configuration from the specified config file path
func LoadConfig(configPath string) (*Config, error) {
	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		defaultConfig := Default()
		err = SaveConfig(configPath, defaultConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		logger.Info("Created default config file", "path", configPath)
		return defaultConfig, nil
	}

	var config Config
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Set defaults if missing
	def := Default()
	if config.WhatsApp.CountryCode == "" {
		config.WhatsApp.CountryCode = def.WhatsApp.CountryCode
	}
	if config.WhatsApp.PhoneNumberLen == 0 {
		config.WhatsApp.PhoneNumberLen = def.WhatsApp.PhoneNumberLen
	}
	if config.WhatsApp.AnchorText == "" {
		config.WhatsApp.AnchorText = def.WhatsApp.AnchorText
	}
	if config.WhatsApp.BaseURL == "" {
		config.WhatsApp.BaseURL = def.WhatsApp.BaseURL
	}
	if config.Output.Directory == "" {
		config.Output.Directory = def.Output.Directory
	}
	if config.Output.ChunkSize <= 0 {
		config.Output.ChunkSize = def.Output.ChunkSize
	}
	if config.Session.StateFile == "" {
		config.Session.StateFile = def.Session.StateFile
	}
	if config.Logging.Directory == "" {
		config.Logging.Directory = def.Logging.Directory
	}
	if config.Logging.Level == "" {
		config.Logging.Level = def.Logging.Level
	}

	logger.Info("Loaded configuration", "path", configPath)
	return &config, nil
}

// SaveConfig saves configuration to the specified config file path
func SaveConfig(configPath string, config *Config) error {
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	err = encoder.Encode(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	logger.Info("Saved configuration", "path", configPath)
	return nil
}
