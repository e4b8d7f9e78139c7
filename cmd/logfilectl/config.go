package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// fileConfig is the on-disk shape of logfilectl.toml.
type fileConfig struct {
	Mode     string `toml:"mode"`
	PageSize int    `toml:"page_size"`
	Path     string `toml:"path"`
}

// configSearchPaths returns the config file search order: the working directory first,
// then the XDG config directory, so a project-local file overrides a user-wide default.
func configSearchPaths() []string {
	var paths []string
	paths = append(paths, "logfilectl.toml")

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		if home, err := os.UserHomeDir(); err == nil {
			xdg = filepath.Join(home, ".config")
		}
	}
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, "logfilectl", "config.toml"))
	}
	return paths
}

// loadFileConfig decodes the first config file found in configSearchPaths, using
// BurntSushi/toml directly since this CLI's config format is TOML.
func loadFileConfig() (fileConfig, string, error) {
	var cfg fileConfig
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if _, err := toml.DecodeFile(p, &cfg); err != nil {
			return fileConfig{}, p, err
		}
		return cfg, p, nil
	}
	return cfg, "", nil
}

// bindViperDefaults seeds v's defaults from the decoded file config, so flags and
// LOGFILECTL_-prefixed environment variables (bound via v.AutomaticEnv) can still override
// it without re-parsing the file at every lookup.
func bindViperDefaults(v *viper.Viper, cfg fileConfig) {
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("page_size", cfg.PageSize)
	v.SetDefault("path", cfg.Path)
}
