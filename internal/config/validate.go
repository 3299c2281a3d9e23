package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateService() error {
	if err := validateHTTPURL("service.base_url", c.Service.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("service.asset_base_url", c.Service.AssetBaseURL); err != nil {
		return err
	}
	timeouts := []struct {
		key   string
		value int
	}{
		{"service.health_timeout", c.Service.HealthTimeout},
		{"service.catalog_timeout", c.Service.CatalogTimeout},
		{"service.generate_timeout", c.Service.GenerateTimeout},
		{"service.download_timeout", c.Service.DownloadTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("%s must be positive", t.key)
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.CacheTTLSeconds < 0 {
		return errors.New("catalog.cache_ttl_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if err := c.DefaultSettings().Validate(); err != nil {
		return fmt.Errorf("generation defaults: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s is missing a host", key)
	}
	return nil
}
