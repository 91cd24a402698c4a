package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the tool configuration
type Config struct {
	Theme  ThemeConfig  `mapstructure:"theme"`
	Server ServerConfig `mapstructure:"server"`
	Build  BuildConfig  `mapstructure:"build"`
	Debug  bool         `mapstructure:"debug"`
}

// ThemeConfig describes the theme directory layout
type ThemeConfig struct {
	Dir          string   `mapstructure:"dir"`
	AssetsDir    string   `mapstructure:"assets_dir"`
	OutputDir    string   `mapstructure:"output_dir"`
	ScriptExts   []string `mapstructure:"script_extensions"`
	StyleExts    []string `mapstructure:"style_extensions"`
	TemplateExts []string `mapstructure:"template_extensions"`
	Ignore       []string `mapstructure:"ignore"`
}

// ServerConfig contains live-reload server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ConnectionGrace time.Duration `mapstructure:"connection_grace"`
}

// BuildConfig contains bundler settings
type BuildConfig struct {
	SourceMaps bool     `mapstructure:"source_maps"`
	External   []string `mapstructure:"external"`
}

// Load reads configuration from environment variables and an optional
// config file. cfgFile may be empty, in which case themedev.yaml in the
// working directory is tried.
func Load(cfgFile string) (*Config, error) {
	// Load .env file if it exists (best effort)
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix("THEMEDEV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("themedev")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err == nil {
			log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Theme layout
	v.SetDefault("theme.dir", ".")
	v.SetDefault("theme.assets_dir", "assets")
	v.SetDefault("theme.output_dir", filepath.Join("assets", "built"))
	v.SetDefault("theme.script_extensions", []string{".js", ".ts", ".mjs"})
	v.SetDefault("theme.style_extensions", []string{".css"})
	v.SetDefault("theme.template_extensions", []string{".hbs"})
	v.SetDefault("theme.ignore", []string{"node_modules"})

	// Live-reload server
	v.SetDefault("server.address", "localhost:35729")
	v.SetDefault("server.connection_grace", 5000*time.Millisecond)

	// Bundler
	v.SetDefault("build.source_maps", true)
	v.SetDefault("build.external", []string{"*.woff", "*.woff2", "*.eot", "*.ttf", "*.otf"})
}

// Validate checks the configuration for obvious mistakes
func (c *Config) Validate() error {
	if c.Theme.Dir == "" {
		return fmt.Errorf("theme.dir cannot be empty")
	}
	if c.Theme.OutputDir == "" {
		return fmt.Errorf("theme.output_dir cannot be empty")
	}
	if c.Server.ConnectionGrace <= 0 {
		return fmt.Errorf("server.connection_grace must be positive")
	}
	return nil
}

// AssetsPath returns the assets directory joined to the theme dir.
func (c *Config) AssetsPath() string {
	return filepath.Join(c.Theme.Dir, c.Theme.AssetsDir)
}

// OutputPath returns the build output directory joined to the theme dir.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Theme.Dir, c.Theme.OutputDir)
}

// SourceExtensions returns the script and style extensions combined.
func (c *Config) SourceExtensions() []string {
	exts := make([]string, 0, len(c.Theme.ScriptExts)+len(c.Theme.StyleExts))
	exts = append(exts, c.Theme.ScriptExts...)
	exts = append(exts, c.Theme.StyleExts...)
	return exts
}
