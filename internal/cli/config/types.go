// Package config provides configuration management for the sqlrebuild CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	Dialect    string `koanf:"dialect"`
	Style      string `koanf:"style"`
	Numbered   string `koanf:"numbered"`
	MaxParams  int    `koanf:"max_params"`
	MaxNameLen int    `koanf:"max_name_len"`
	Driver     string `koanf:"driver"`
	DSN        string `koanf:"dsn"`
	Output     string `koanf:"output"`
	Verbose    bool   `koanf:"verbose"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDialect  = "postgres"
	DefaultStyle    = "named"
	DefaultNumbered = "?"
	DefaultOutput   = OutputText
	DefaultFile     = "sqlrebuild.yaml"
	EnvPrefix       = "SQLREBUILD_"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Dialect:  DefaultDialect,
		Style:    DefaultStyle,
		Numbered: DefaultNumbered,
		Output:   DefaultOutput,
	}
}
