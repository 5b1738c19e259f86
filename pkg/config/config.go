// Package config loads the YAML settings cmd/metro runs with: where
// to resolve modules from, which extensions and aliases the resolver
// honors, how the watcher debounces and what it ignores, and the
// address the query server binds to. It is a versioned root struct of
// nested per-concern structs, backed by a viper file/env loader and a
// yaml.v3 load/save pair.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root of a metro.yaml file.
type Config struct {
	Version   int             `yaml:"version"`
	Resolve   ResolveConfig   `yaml:"resolve"`
	Watch     WatchConfig     `yaml:"watch"`
	Transform TransformConfig `yaml:"transform"`
	Server    ServerConfig    `yaml:"server"`
}

// ResolveConfig configures pkg/resolve.Options.
type ResolveConfig struct {
	Extensions []string          `yaml:"extensions"`
	Aliases    map[string]string `yaml:"aliases"`
}

// WatchConfig configures pkg/watch.Options.
type WatchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	IgnorePatterns []string      `yaml:"ignore"`
}

// TransformConfig holds include/exclude globs for transformed files,
// independent of the resolver's own extension list. pkg/transform and
// cmd/metro do not read these fields: a build walks only what is
// reachable from its entry points.
type TransformConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// ServerConfig configures pkg/server.Config.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the configuration cmd/metro runs with when no
// metro.yaml is present and no overriding flags were given.
func Default() *Config {
	return &Config{
		Version: 1,
		Resolve: ResolveConfig{
			Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".json", ".mjs", ".cjs"},
			Aliases:    map[string]string{},
		},
		Watch: WatchConfig{
			Debounce:       300 * time.Millisecond,
			IgnorePatterns: []string{".git", ".metro-cache", "node_modules", ".idea", ".vscode"},
		},
		Transform: TransformConfig{
			Include: []string{"**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx"},
			Exclude: []string{"**/node_modules/**", "**/.git/**"},
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
}

// Init wires viper to look for metro.yaml alongside an explicit
// --config flag, falling back to a .metro directory in the current
// project and to METRO_-prefixed environment variables. cmd/metro
// registers it via cobra.OnInitialize.
func Init(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".metro")
		viper.AddConfigPath(".")
		viper.SetConfigName("metro")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("METRO")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not an error; Default() covers it
}

// ConfigFileUsed reports the path viper resolved a config file to, or
// "" if none was found.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// Load reads and parses configPath, returning Default() unchanged if
// the file does not exist.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	return cfg, nil
}

// Save writes cfg to configPath as YAML, creating its parent
// directory if needed.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", configPath, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", configPath, err)
	}
	return nil
}
