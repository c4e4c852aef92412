package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Last.fm username whose history is aggregated
	Username string

	// Output format template for the now command
	// Default: "{{.Artist}} - {{.Name}}"
	OutputFormat string

	// Fixed output width for the now command (0 = disabled)
	OutputWidth int

	// Marquee scrolling for output longer than OutputWidth
	MarqueeEnabled   bool
	MarqueeSpeed     int
	MarqueeSeparator string

	// Poll interval for the playback watcher (in milliseconds)
	PollIntervalMs int

	// Months fetched per history page
	PageSize int

	// Authorization flow: "pkce" or "implicit"
	AuthFlow string

	// Last.fm API credentials
	LastFM LastFMConfig

	// Spotify app credentials
	Spotify SpotifyConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey string
}

// SpotifyConfig holds Spotify app registration details
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("output_format", "{{.Artist}} - {{.Name}}")
	v.SetDefault("output_width", 0)
	v.SetDefault("marquee_enabled", false)
	v.SetDefault("marquee_speed", 2)
	v.SetDefault("marquee_separator", "   ")
	v.SetDefault("poll_interval_ms", 1000)
	v.SetDefault("page_size", 14)
	v.SetDefault("auth_flow", "pkce")
	v.SetDefault("spotify.redirect_uri", "http://127.0.0.1:8910/callback")

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("TIMEWARP")
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		Username:         v.GetString("username"),
		OutputFormat:     v.GetString("output_format"),
		OutputWidth:      v.GetInt("output_width"),
		MarqueeEnabled:   v.GetBool("marquee_enabled"),
		MarqueeSpeed:     v.GetInt("marquee_speed"),
		MarqueeSeparator: v.GetString("marquee_separator"),
		PollIntervalMs:   v.GetInt("poll_interval_ms"),
		PageSize:         v.GetInt("page_size"),
		AuthFlow:         v.GetString("auth_flow"),
		LastFM: LastFMConfig{
			APIKey: v.GetString("lastfm.api_key"),
		},
		Spotify: SpotifyConfig{
			ClientID:     v.GetString("spotify.client_id"),
			ClientSecret: v.GetString("spotify.client_secret"),
			RedirectURI:  v.GetString("spotify.redirect_uri"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "timewarp")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// DatabasePath returns the path of the local sqlite database
func DatabasePath() string {
	return filepath.Join(getConfigDir(), "timewarp.db")
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("username", c.Username)
	v.Set("output_format", c.OutputFormat)
	v.Set("output_width", c.OutputWidth)
	v.Set("marquee_enabled", c.MarqueeEnabled)
	v.Set("marquee_speed", c.MarqueeSpeed)
	v.Set("marquee_separator", c.MarqueeSeparator)
	v.Set("poll_interval_ms", c.PollIntervalMs)
	v.Set("page_size", c.PageSize)
	v.Set("auth_flow", c.AuthFlow)
	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("spotify.client_id", c.Spotify.ClientID)
	v.Set("spotify.client_secret", c.Spotify.ClientSecret)
	v.Set("spotify.redirect_uri", c.Spotify.RedirectURI)

	// Write to file
	return v.WriteConfigAs(configFile)
}
