package config

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gandaldf/sqlrebuild"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := sqlrebuild.ParseDialect(c.Dialect); err != nil {
		return err
	}
	if _, err := sqlrebuild.ParseStyle(c.Style); err != nil {
		return err
	}
	if len(c.Numbered) != 1 || c.Numbered[0] >= utf8.RuneSelf {
		return fmt.Errorf("numbered must be a single ASCII character, got %q", c.Numbered)
	}
	if c.MaxNameLen < 0 {
		return fmt.Errorf("max_name_len must not be negative, got %d", c.MaxNameLen)
	}
	switch strings.ToLower(c.Output) {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", c.Output)
	}
	return nil
}

// Engine returns the dialect and library settings described by c. The
// logger receives the library's debug and warning records.
func (c *Config) Engine(logger *slog.Logger) (sqlrebuild.Dialect, sqlrebuild.Config, error) {
	d, err := sqlrebuild.ParseDialect(c.Dialect)
	if err != nil {
		return 0, sqlrebuild.Config{}, err
	}
	st, err := sqlrebuild.ParseStyle(c.Style)
	if err != nil {
		return 0, sqlrebuild.Config{}, err
	}
	lib := sqlrebuild.Config{
		MaxParams:  c.MaxParams,
		MaxNameLen: c.MaxNameLen,
		Style:      st,
		Logger:     logger,
	}
	if c.Numbered != "" {
		lib.NumberedTrigger = c.Numbered[0]
	}
	return d, lib, nil
}
