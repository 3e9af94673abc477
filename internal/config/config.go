// Package config reads environment-based configuration, with an optional
// YAML servers file for multi-homeserver deployments.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all environment-based configuration for matrix-sync.
type Config struct {
	// Single-server credentials. Ignored when ServersFile is set.
	Homeserver string `env:"MATRIX_HOMESERVER"`
	Username   string `env:"MATRIX_USERNAME"`
	Password   string `env:"MATRIX_PASSWORD"`

	// ServerName labels the session in logs and storage. Defaults to the
	// homeserver's host.
	ServerName string `env:"MATRIX_SERVER_NAME"`

	// StorageDir is where device identities and session state live.
	// Defaults to ~/.matrix-sync.
	StorageDir string `env:"MATRIX_STORAGE_DIR"`

	// ServersFile points at a YAML file listing multiple servers. When
	// set, the MATRIX_* single-server variables above are ignored.
	ServersFile string `env:"MATRIX_SERVERS_FILE"`

	// KeysPassphrase protects key export files for the keys subcommand.
	KeysPassphrase string `env:"MATRIX_KEYS_PASSPHRASE"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Session is one configured homeserver account.
type Session struct {
	Name       string `yaml:"name"`
	Homeserver string `yaml:"homeserver"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	StorageDir string `yaml:"storage_dir"`
}

// serversFile is the YAML document shape of ServersFile.
type serversFile struct {
	Servers []Session `yaml:"servers"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.StorageDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}

		cfg.StorageDir = filepath.Join(home, ".matrix-sync")
	}

	absDir, err := filepath.Abs(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage dir to absolute path: %w", err)
	}
	cfg.StorageDir = absDir

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServersFile != "" {
		return nil
	}

	if c.Homeserver == "" {
		return fmt.Errorf("MATRIX_HOMESERVER is required")
	}

	if c.Username == "" {
		return fmt.Errorf("MATRIX_USERNAME is required")
	}

	if c.Password == "" {
		return fmt.Errorf("MATRIX_PASSWORD is required")
	}

	return nil
}

// Sessions resolves the configured sessions: the entries of ServersFile
// when one is set, otherwise the single session described by the MATRIX_*
// variables. Every session gets a name and its own storage directory under
// StorageDir.
func (c *Config) Sessions() ([]Session, error) {
	if c.ServersFile == "" {
		session := Session{
			Name:       c.ServerName,
			Homeserver: c.Homeserver,
			Username:   c.Username,
			Password:   c.Password,
		}
		if err := c.fillDefaults(&session); err != nil {
			return nil, err
		}

		return []Session{session}, nil
	}

	data, err := os.ReadFile(c.ServersFile)
	if err != nil {
		return nil, fmt.Errorf("reading servers file: %w", err)
	}

	var parsed serversFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing servers file: %w", err)
	}

	if len(parsed.Servers) == 0 {
		return nil, fmt.Errorf("servers file %s lists no servers", c.ServersFile)
	}

	seen := make(map[string]struct{})
	for i := range parsed.Servers {
		session := &parsed.Servers[i]
		if err := c.fillDefaults(session); err != nil {
			return nil, fmt.Errorf("server entry %d: %w", i+1, err)
		}

		if _, dup := seen[session.Name]; dup {
			return nil, fmt.Errorf("duplicate server name %q in servers file", session.Name)
		}
		seen[session.Name] = struct{}{}
	}

	return parsed.Servers, nil
}

func (c *Config) fillDefaults(session *Session) error {
	if session.Homeserver == "" {
		return fmt.Errorf("homeserver is required")
	}

	if session.Username == "" {
		return fmt.Errorf("username is required")
	}

	if session.Password == "" {
		return fmt.Errorf("password is required")
	}

	if session.Name == "" {
		session.Name = deriveName(session.Homeserver)
	}

	if session.StorageDir == "" {
		session.StorageDir = filepath.Join(c.StorageDir, session.Name)
	}

	return nil
}

// deriveName labels a session by its homeserver host when no explicit name
// is configured.
func deriveName(homeserver string) string {
	u, err := url.Parse(homeserver)
	if err == nil && u.Host != "" {
		return u.Host
	}

	return homeserver
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
