// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/common"
	"github.com/stratastor/smbadmin/internal/constants"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/paths"
	"gopkg.in/yaml.v3"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from

	validate = validator.New()
)

type Config struct {
	Server struct {
		Port      int    `mapstructure:"port"      validate:"min=1,max=65535"`
		LogLevel  string `mapstructure:"logLevel"`
		Daemonize bool   `mapstructure:"daemonize"`
	} `mapstructure:"server"`

	Health struct {
		Interval string `mapstructure:"interval"`
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"health"`

	Logs struct {
		Path      string `mapstructure:"path"`
		Retention string `mapstructure:"retention"`
		Output    string `mapstructure:"output" validate:"omitempty,oneof=stdout file"` // stdout or file
	} `mapstructure:"logs"`

	Logger struct {
		LogLevel     string `mapstructure:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"`
	} `mapstructure:"logger"`

	Samba Samba `mapstructure:"samba"`

	Privilege privilege.Config `mapstructure:"privilege"`

	Monitor struct {
		Enabled  bool   `mapstructure:"enabled"`
		Interval string `mapstructure:"interval"`
	} `mapstructure:"monitor"`

	Watcher struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"watcher"`

	Environment string `mapstructure:"environment"`
}

// Samba locates the managed configuration files. Empty file settings are
// filled from the selected profile.
type Samba struct {
	Profile      string   `mapstructure:"profile"      validate:"required,oneof=staged live"`
	LiveFile     string   `mapstructure:"liveFile"     validate:"required"`
	StagedFile   string   `mapstructure:"stagedFile"   validate:"required,nefield=LiveFile"`
	ExtraSources []string `mapstructure:"extraSources"`

	ReservedShares []string     `mapstructure:"reservedShares"`
	Checker        []string     `mapstructure:"checker"`
	Provision      paths.Config `mapstructure:"provision"`
}

// Staged reports whether the samba profile writes to local working files.
func (s Samba) Staged() bool {
	return s.Profile == constants.ProfileStaged
}

// LoadConfig loads the configuration with precedence rules.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		l, err := logger.NewTag(logger.Config{LogLevel: "info"}, "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		cfg, path, err := Load(configFilePath)
		configPath = path
		if err != nil {
			l.Error("Error loading configuration, continuing with defaults", "path", path, "err", err)
		}
		instance = cfg

		if err == nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				l.Info("Config file not found, creating default", "path", path)
				if err := SaveConfig(path); err != nil {
					l.Error("Failed to save default configuration", "err", err)
				}
			}
		}

		l.Debug("Loaded configuration", "path", configPath, "config", fmt.Sprintf("%+v", *instance))
	})

	return instance
}

// Load reads configuration from configFilePath (or $SMBADMIN_CONFIG, or the
// default location), environment variables and defaults. The returned Config
// is never nil; on error it carries the defaults.
func Load(configFilePath string) (*Config, string, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	path := configFilePath
	if path == "" {
		path = os.Getenv(constants.EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	v.SetConfigFile(path)

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var readErr error
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		readErr = fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults(), path, fmt.Errorf("failed to parse configuration: %w", err)
	}
	applyProfile(&cfg, v)

	if readErr != nil {
		return &cfg, path, readErr
	}
	if err := Validate(&cfg); err != nil {
		return &cfg, path, err
	}
	return &cfg, path, nil
}

func isNotFound(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")
	v.SetDefault("server.port", 8043)
	v.SetDefault("server.logLevel", "debug")
	v.SetDefault("server.daemonize", false)
	v.SetDefault("health.interval", "30s")
	v.SetDefault("health.endpoint", "/health")
	v.SetDefault("logs.path", "/var/log/smbadmin/smbadmin.log")
	v.SetDefault("logs.retention", "7d")
	v.SetDefault("logs.output", "stdout")
	v.SetDefault("logger.logLevel", "debug")
	v.SetDefault("logger.enableSentry", false)
	v.SetDefault("logger.sentryDSN", "")

	v.SetDefault("samba.profile", constants.ProfileStaged)
	v.SetDefault("samba.liveFile", "")
	v.SetDefault("samba.stagedFile", "")
	v.SetDefault("samba.reservedShares", []string{"share", "secure-share"})
	v.SetDefault("samba.checker", []string{"testparm", "-s", "--suppress-prompt"})
	v.SetDefault("samba.provision.owner", paths.DefaultOwner)
	v.SetDefault("samba.provision.group", paths.DefaultGroup)
	v.SetDefault("samba.provision.mode", paths.DefaultMode)

	v.SetDefault("privilege.allowed_paths", privilege.DefaultConfig().AllowedPaths)

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", "30s")
	v.SetDefault("watcher.enabled", true)
}

// applyProfile fills file locations and sudo usage the profile implies
// unless they were set explicitly.
func applyProfile(cfg *Config, v *viper.Viper) {
	s := &cfg.Samba
	s.Profile = strings.ToLower(strings.TrimSpace(s.Profile))

	switch s.Profile {
	case constants.ProfileLive:
		setIfEmpty(&s.LiveFile, "/etc/samba/smb.conf")
		setIfEmpty(&s.StagedFile, "/etc/samba/shares.conf")
	default:
		setIfEmpty(&s.LiveFile, "./smb.conf")
		setIfEmpty(&s.StagedFile, "./shares.conf")
		if !v.IsSet("samba.extraSources") {
			s.ExtraSources = []string{"/etc/samba/smb.conf"}
		}
	}

	if v.IsSet("samba.extraSources") {
		s.ExtraSources = v.GetStringSlice("samba.extraSources")
	}
	for _, f := range []*string{&s.LiveFile, &s.StagedFile} {
		if expanded, err := common.ExpandPath(*f); err == nil {
			*f = expanded
		}
	}

	if v.IsSet("privilege.use_sudo") {
		cfg.Privilege.UseSudo = v.GetBool("privilege.use_sudo")
	} else {
		cfg.Privilege.UseSudo = s.Profile == constants.ProfileLive
	}
}

func setIfEmpty(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}

func defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	applyProfile(&cfg, v)
	return &cfg
}

// Validate checks struct tags and the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	for name, d := range map[string]string{
		"health.interval":  cfg.Health.Interval,
		"monitor.interval": cfg.Monitor.Interval,
	} {
		if d == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d); err != nil || parsed <= 0 {
			return fmt.Errorf("%s: invalid duration %q", name, d)
		}
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		if err := EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
	}

	if err := common.EnsureParentDir(path, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to file: %w", err)
	}

	configPath = path
	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance.
func GetConfig() *Config {
	if instance == nil {
		return LoadConfig("")
	}
	return instance
}

func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
	}

	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
