// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package privilege

// Config contains configuration for the privilege operations module
type Config struct {
	// UseSudo prefixes privileged commands with "sudo -n"
	UseSudo bool `yaml:"use_sudo" json:"use_sudo" mapstructure:"use_sudo"`

	// AllowedPaths defines paths that can be written with sudo
	AllowedPaths []string `yaml:"allowed_paths" json:"allowed_paths" mapstructure:"allowed_paths"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		UseSudo: true,
		AllowedPaths: []string{
			"/etc/samba",
		},
	}
}
