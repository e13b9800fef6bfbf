package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// MaxPageSize is the largest page the playlistItems endpoint will serve.
	MaxPageSize = 50

	CheckpointBackendFile     = "file"
	CheckpointBackendDatabase = "database"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Transfer    TransferConfig    `toml:"transfer"`
	Checkpoint  CheckpointConfig  `toml:"checkpoint"`
	Database    DatabaseConfig    `toml:"database"`
	Auth        AuthConfig        `toml:"auth"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains YouTube Data API credentials.
type YouTubeConfig struct {
	APIKey       string `toml:"api_key"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	BaseURL      string `toml:"base_url"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
}

// CanRefresh reports whether enough OAuth client data is present to mint new access tokens.
func (y YouTubeConfig) CanRefresh() bool {
	return y.RefreshToken != "" && y.HasClient()
}

// HasClient reports whether an OAuth client is configured for the browser authorization flow.
func (y YouTubeConfig) HasClient() bool {
	return y.ClientID != "" && y.ClientSecret != ""
}

// TransferConfig identifies the playlists and pacing of a transfer.
type TransferConfig struct {
	SourcePlaylistID      string  `toml:"source_playlist_id"`
	DestinationPlaylistID string  `toml:"destination_playlist_id"`
	PageSize              int     `toml:"page_size"`
	DelayMS               int     `toml:"delay_ms"`
	RequestsPerSecond     float64 `toml:"requests_per_second"`
}

// Delay returns the pause applied after each successful insertion.
func (t TransferConfig) Delay() time.Duration {
	if t.DelayMS < 0 {
		return 0
	}
	return time.Duration(t.DelayMS) * time.Millisecond
}

// CheckpointConfig selects where resume state is kept.
type CheckpointConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	RecordRuns   bool   `toml:"record_runs"`
}

// AuthConfig is the loopback address that receives the OAuth redirect during `plcopy auth`.
type AuthConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address of the callback server.
func (a AuthConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// RedirectURL returns the URL registered as the OAuth client's redirect URI.
func (a AuthConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s/callback", a.Addr())
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values absent from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing the file if it exists.
//
// The file holds credentials, so it is written with owner-only permissions.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks that everything a transfer needs is present before any network activity happens.
//
// Missing required values are reported together, wrapped in [ErrConfigIncomplete].
func (c *Config) Validate() error {
	var missing []string
	yt := c.Credentials.YouTube

	if yt.APIKey == "" {
		missing = append(missing, "credentials.youtube.api_key")
	}
	if yt.AccessToken == "" && !yt.CanRefresh() {
		missing = append(missing, "credentials.youtube.access_token")
	}
	if c.Transfer.SourcePlaylistID == "" {
		missing = append(missing, "transfer.source_playlist_id")
	}
	if c.Transfer.DestinationPlaylistID == "" {
		missing = append(missing, "transfer.destination_playlist_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfigIncomplete, strings.Join(missing, ", "))
	}

	if c.Transfer.PageSize < 1 || c.Transfer.PageSize > MaxPageSize {
		return fmt.Errorf("%w: transfer.page_size must be between 1 and %d, got %d", ErrInvalidConfig, MaxPageSize, c.Transfer.PageSize)
	}

	switch c.Checkpoint.Backend {
	case CheckpointBackendFile:
		if c.Checkpoint.Path == "" {
			return fmt.Errorf("%w: checkpoint.path is required for the file backend", ErrInvalidConfig)
		}
	case CheckpointBackendDatabase:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for the database backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown checkpoint backend %q", ErrInvalidConfig, c.Checkpoint.Backend)
	}

	return nil
}
