package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "promptpack"

// configType is the config file format.
const configType = "toml"

// Load builds settings for a project directory. Precedence, lowest first:
// built-in defaults, the user config file, the project config file, then the
// named profile if one is given. Missing config files are not errors.
func Load(projectDir, profile string) (Settings, error) {
	v := viper.New()
	v.SetConfigType(configType)

	applyDefaults(v)

	if userDir, err := os.UserConfigDir(); err == nil {
		mergeConfigFile(v, filepath.Join(userDir, configName, configName+"."+configType))
	}
	mergeConfigFile(v, filepath.Join(projectDir, configName+"."+configType))
	mergeConfigFile(v, filepath.Join(projectDir, "."+configName+"."+configType))

	if profile != "" {
		sub := v.Sub("profiles." + profile)
		if sub == nil {
			return Settings{}, fmt.Errorf("profile %q not found", profile)
		}
		if err := v.MergeConfigMap(sub.AllSettings()); err != nil {
			return Settings{}, fmt.Errorf("failed to apply profile %q: %w", profile, err)
		}
		log.Debug("applied config profile", "profile", profile)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settings.BaseDir = projectDir
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Profiles lists the profile names defined across the config files for a
// project directory.
func Profiles(projectDir string) ([]string, error) {
	v := viper.New()
	v.SetConfigType(configType)

	if userDir, err := os.UserConfigDir(); err == nil {
		mergeConfigFile(v, filepath.Join(userDir, configName, configName+"."+configType))
	}
	mergeConfigFile(v, filepath.Join(projectDir, configName+"."+configType))
	mergeConfigFile(v, filepath.Join(projectDir, "."+configName+"."+configType))

	sub := v.Sub("profiles")
	if sub == nil {
		return nil, nil
	}

	names := make([]string, 0)
	for name := range sub.AllSettings() {
		names = append(names, name)
	}
	return names, nil
}

// SaveProfile writes the given settings as a named profile into the project
// config file, creating the file when absent.
func SaveProfile(projectDir, name string, settings Settings) error {
	path := filepath.Join(projectDir, configName+"."+configType)
	if _, err := os.Stat(path); err != nil {
		if alt := filepath.Join(projectDir, "."+configName+"."+configType); fileExists(alt) {
			path = alt
		}
	}

	v := viper.New()
	v.SetConfigType(configType)
	mergeConfigFile(v, path)

	prefix := "profiles." + name + "."
	v.Set(prefix+"include", settings.IncludePatterns)
	v.Set(prefix+"exclude", settings.ExcludePatterns)
	v.Set(prefix+"include_priority", settings.IncludePriority)
	v.Set(prefix+"no_ignore", settings.NoIgnore)
	v.Set(prefix+"hidden", settings.Hidden)
	v.Set(prefix+"follow_symlinks", settings.FollowSymlinks)
	v.Set(prefix+"chunk_strategy", settings.ChunkStrategy)
	v.Set(prefix+"output_format", settings.OutputFormat)
	v.Set(prefix+"line_numbers", settings.LineNumbers)
	v.Set(prefix+"no_codeblock", settings.NoCodeblock)
	v.Set(prefix+"absolute_paths", settings.AbsolutePaths)
	v.Set(prefix+"encoding", settings.Encoding)
	v.Set(prefix+"sort", settings.SortMethod)
	v.Set(prefix+"trace", settings.Trace)
	v.Set(prefix+"trace_filter_unused", settings.TraceFilterUnused)
	v.Set(prefix+"show_deps", settings.ShowDeps)
	if len(settings.ExternalPackages) > 0 {
		v.Set(prefix+"external_packages", settings.ExternalPackages)
	}
	if settings.TemplatePath != "" {
		v.Set(prefix+"template", settings.TemplatePath)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write profile %q to %s: %w", name, path, err)
	}
	log.Info("saved config profile", "profile", name, "path", path)
	return nil
}

func applyDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("input_paths", defaults.InputPaths)
	v.SetDefault("chunk_strategy", defaults.ChunkStrategy)
	v.SetDefault("output_format", defaults.OutputFormat)
	v.SetDefault("encoding", defaults.Encoding)
	v.SetDefault("sort", defaults.SortMethod)
}

// mergeConfigFile merges one config file into v if it exists. Parse failures
// are surfaced as warnings rather than aborting the load.
func mergeConfigFile(v *viper.Viper, path string) {
	if !fileExists(path) {
		return
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("failed to read config file", "path", path, "error", err)
		}
		return
	}
	log.Debug("merged config file", "path", path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
