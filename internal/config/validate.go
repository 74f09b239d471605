package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
// Notify settings are checked separately by NotifyConfig.Validate, since only
// the notify command needs them.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an http(s) URL, got %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}

	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	if c.Data.CSVFile == "" {
		return errors.New("data.csv_file is required")
	}

	if c.Database.Enabled {
		if err := c.Database.Postgres.validate("database.postgres"); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that enough SMTP settings are present to send mail.
func (n *NotifyConfig) Validate() error {
	if n.Host == "" {
		return errors.New("notify.smtp_host is required")
	}
	if n.Port < 1 || n.Port > 65535 {
		return fmt.Errorf("notify.smtp_port must be between 1 and 65535, got %d", n.Port)
	}
	if n.From == "" {
		return errors.New("notify.from is required")
	}
	if len(n.To) == 0 {
		return errors.New("notify.to is required")
	}
	for _, addr := range n.To {
		if !strings.Contains(addr, "@") {
			return fmt.Errorf("notify.to: invalid address %q", addr)
		}
	}
	if n.User != "" && n.Password == "" {
		return errors.New("notify.password is required when notify.user is set")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
