// Package sheets reads tasks from a Google Sheets spreadsheet.
package sheets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/nova/internal/gauth"
)

// Config holds the configuration for the Google Sheets task reader.
type Config struct {
	Auth          gauth.Config
	SpreadsheetID string
	Range         string
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns a Config reading the whole first sheet.
func DefaultConfig() Config {
	return Config{
		Range:         "Sheet1",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return errors.New("spreadsheet ID is required")
	}

	if c.Range == "" {
		return errors.New("range is required")
	}

	if c.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return errors.New("retry delay cannot be negative")
	}

	return nil
}

// ValidateAuth checks the credentials in addition to Validate.
func (c *Config) ValidateAuth() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("sheets authentication: %w", err)
	}
	return nil
}
