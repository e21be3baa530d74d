// internal/config/config.go
//
// This package handles configuration and the .leads directory structure.
// Every directory the CLI runs from gets a .leads/ folder holding the
// config file, the stored session, logs and the activity journal.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// LeadsDir is the name of the directory we create in each project
	LeadsDir = ".leads"

	defaultAPIBaseURL    = "http://127.0.0.1:8765/api"
	defaultAPITimeout    = 15 * time.Second
	defaultDevServerHost = "127.0.0.1"
	defaultDevServerPort = 8765
	defaultDevSecret     = "leads-dev-secret"
)

const defaultProjectConfigYAML = `# leads admin configuration
version: 1

# Remote leads API. Every request path is appended to base_url.
api:
  base_url: http://127.0.0.1:8765/api
  timeout: 15s

# Local stand-in for the leads API (leads devserver).
devserver:
  host: 127.0.0.1
  port: 8765
  secret: leads-dev-secret
`

// APIConfig points the client at the leads API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DevServerConfig configures `leads devserver`.
type DevServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`
}

// ProjectConfig models .leads/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	DevServer DevServerConfig `yaml:"devserver"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory the CLI was started from
	ProjectDir string

	// LeadsProjectDir is ProjectDir/.leads
	LeadsProjectDir string

	Project ProjectConfig
}

// InitLeadsDir creates the .leads directory structure in the given project directory.
//
// Structure created:
// .leads/
// ├── config.yaml
// ├── logs/      <- zap log file
// └── state/     <- session.json and journal.log
func InitLeadsDir(projectDir string) error {
	leadsDir := filepath.Join(projectDir, LeadsDir)
	dirs := []string{
		filepath.Join(leadsDir, "logs"),
		filepath.Join(leadsDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(leadsDir, "config.yaml"))
}

// NewConfig loads .leads/config.yaml (defaults when missing), then applies
// .env and environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectDir:      projectDir,
		LeadsProjectDir: filepath.Join(projectDir, LeadsDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	cfg.Project.normalize()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.LeadsProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.LeadsProjectDir, "state")
}

// SessionPath returns where the authenticated session is stored
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir(), "session.json")
}

// JournalPath returns the activity journal file
func (c *Config) JournalPath() string {
	return filepath.Join(c.StateDir(), "journal.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LeadsProjectDir, "config.yaml")
}

// APIBaseURL returns the configured API root.
func (c *Config) APIBaseURL() string {
	return c.Project.API.BaseURL
}

// APITimeout returns the per-request timeout.
func (c *Config) APITimeout() time.Duration {
	return c.Project.API.Timeout
}

// SetAPIBaseURL validates and persists a new API root to .leads/config.yaml.
// Only the file's own values are written back; environment overrides stay
// in memory.
func (c *Config) SetAPIBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("config: api base url is required")
	}
	onDisk, err := c.readProjectConfig()
	if err != nil {
		return err
	}
	onDisk.API.BaseURL = raw
	onDisk.normalize()
	if err := onDisk.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.saveProjectConfig(onDisk); err != nil {
		return err
	}
	c.Project.API.BaseURL = onDisk.API.BaseURL
	return nil
}

func (c *Config) loadProjectConfig() error {
	parsed, err := c.readProjectConfig()
	if err != nil {
		return err
	}
	c.Project = parsed
	return nil
}

// readProjectConfig returns the defaults overlaid with config.yaml, without
// .env or environment overrides.
func (c *Config) readProjectConfig() (ProjectConfig, error) {
	parsed := defaultProjectConfig()
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return parsed, nil
		}
		return parsed, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return parsed, fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return parsed, fmt.Errorf("config: %w", err)
	}
	return parsed, nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		API: APIConfig{
			BaseURL: defaultAPIBaseURL,
			Timeout: defaultAPITimeout,
		},
		DevServer: DevServerConfig{
			Host:   defaultDevServerHost,
			Port:   defaultDevServerPort,
			Secret: defaultDevSecret,
		},
	}
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if value := strings.TrimSpace(os.Getenv("LEADS_API_URL")); value != "" {
		pc.API.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("LEADS_API_TIMEOUT")); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			pc.API.Timeout = d
		}
	}
	if value := strings.TrimSpace(os.Getenv("LEADS_DEVSERVER_HOST")); value != "" {
		pc.DevServer.Host = value
	}
	if value := strings.TrimSpace(os.Getenv("LEADS_DEVSERVER_PORT")); value != "" {
		if port, err := strconv.Atoi(value); err == nil && isValidPort(port) {
			pc.DevServer.Port = port
		}
	}
	if value := strings.TrimSpace(os.Getenv("LEADS_DEVSERVER_SECRET")); value != "" {
		pc.DevServer.Secret = value
	}
}

func (pc *ProjectConfig) normalize() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	pc.API.BaseURL = strings.TrimRight(strings.TrimSpace(pc.API.BaseURL), "/")
	if pc.API.BaseURL == "" {
		pc.API.BaseURL = defaultAPIBaseURL
	}
	if pc.API.Timeout <= 0 {
		pc.API.Timeout = defaultAPITimeout
	}
	pc.DevServer.Host = strings.TrimSpace(pc.DevServer.Host)
	if pc.DevServer.Host == "" {
		pc.DevServer.Host = defaultDevServerHost
	}
	if pc.DevServer.Port == 0 {
		pc.DevServer.Port = defaultDevServerPort
	}
	if strings.TrimSpace(pc.DevServer.Secret) == "" {
		pc.DevServer.Secret = defaultDevSecret
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	parsed, err := url.Parse(pc.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url must include a host")
	}
	if !isValidPort(pc.DevServer.Port) {
		return fmt.Errorf("devserver.port must be between 1 and 65535")
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig(pc ProjectConfig) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if err := os.MkdirAll(c.LeadsProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure leads dir: %w", err)
	}
	data, err := yaml.Marshal(pc)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
