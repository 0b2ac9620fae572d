package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	BackendAsk    = "ask"
	BackendOpenAI = "openai"

	DefaultEndpoint   = "https://api-sand-two-62.vercel.app/api/ask"
	DefaultListenAddr = "127.0.0.1:7531"
	DefaultDebounce   = 200 * time.Millisecond
	DefaultPendingCap = 64
)

type Profile struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Model   string `yaml:"model" validate:"required"`
}

type Config struct {
	Backend       string             `yaml:"backend" validate:"oneof=ask openai"`
	Endpoint      string             `yaml:"endpoint" validate:"required,url"`
	Profiles      map[string]Profile `yaml:"profiles" validate:"dive"`
	ActiveProfile string             `yaml:"active_profile"`
	ListenAddr    string             `yaml:"listen_addr" validate:"required,hostname_port"`
	Debounce      time.Duration      `yaml:"debounce" validate:"gte=0"`
	PanelCommand  []string           `yaml:"panel_command,omitempty"`
	PendingCap    int                `yaml:"pending_cap" validate:"gte=0"`
	LogLevel      string             `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile       string             `yaml:"log_file,omitempty"`

	path           string
	currentProfile *Profile
}

var validate = validator.New()

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config at configPath, creating it with defaults when
// it does not exist yet.
func LoadFrom(configPath string) (*Config, error) {
	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.path = configPath
	config.applyDefaults()

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// Default returns an unsaved config holding the built-in defaults
func Default() *Config {
	return &Config{
		Backend:  BackendAsk,
		Endpoint: DefaultEndpoint,
		Profiles: map[string]Profile{
			"default": {
				APIKey:  "",
				BaseURL: "",
				Model:   "gpt-4o-mini",
			},
		},
		ActiveProfile: "default",
		ListenAddr:    DefaultListenAddr,
		Debounce:      DefaultDebounce,
		PendingCap:    DefaultPendingCap,
		LogLevel:      "info",
	}
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.APIKey != ""
}

func (c *Config) GetAPIKey() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	if c.currentProfile == nil {
		return "gpt-4o-mini"
	}
	return c.currentProfile.Model
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.BaseURL
}

// Dir is the directory holding the config file; logs default to it
func (c *Config) Dir() string {
	return filepath.Dir(c.path)
}

func getConfigPath() (string, error) {
	var configDir string

	// Use CODEASSIST_HOME if set, otherwise use user's home directory
	if home := os.Getenv("CODEASSIST_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".codeassist", "config.yaml"), nil
}

func ensureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := Default()
	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}
	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	if c.path == "" {
		configPath, err := getConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		c.path = configPath
	}
	return saveConfig(c, c.path)
}

// applyDefaults fills fields left empty by older or hand-written files
func (c *Config) applyDefaults() {
	d := Default()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.Debounce == 0 {
		c.Debounce = d.Debounce
	}
	if c.PendingCap == 0 {
		c.PendingCap = d.PendingCap
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if len(c.Profiles) == 0 {
		c.Profiles = d.Profiles
		if c.ActiveProfile == "" {
			c.ActiveProfile = d.ActiveProfile
		}
	}
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, try to use the first available profile
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}
