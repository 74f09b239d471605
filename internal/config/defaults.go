package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultURL              = "https://www.canada.ca/content/dam/ircc/documents/json/ee_rounds_123_en.json"
	DefaultAPITimeout       = 10 * time.Second
	DefaultDataDir          = "Data"
	DefaultCSVFile          = "EE.csv"
	DefaultSnapshotFile     = "EE.json"
	DefaultAnalysisFile     = "analysis.json"
	DefaultTimeAnalysisFile = "time_analysis.json"
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 4
	DefaultSMTPPort         = 587
)

// Environment variables consulted when the notify section leaves a field empty.
const (
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUser     = "SMTP_USER"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPFrom     = "SMTP_FROM_EMAIL"
	EnvSMTPTo       = "SMTP_TO_EMAIL"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.URL == "" {
		c.API.URL = DefaultURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Data defaults
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Data.CSVFile == "" {
		c.Data.CSVFile = DefaultCSVFile
	}
	if c.Data.SnapshotFile == "" {
		c.Data.SnapshotFile = DefaultSnapshotFile
	}
	if c.Data.AnalysisFile == "" {
		c.Data.AnalysisFile = DefaultAnalysisFile
	}
	if c.Data.TimeAnalysisFile == "" {
		c.Data.TimeAnalysisFile = DefaultTimeAnalysisFile
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Notify defaults
	if c.Notify.Port == 0 {
		c.Notify.Port = DefaultSMTPPort
	}
	if c.Notify.From == "" {
		c.Notify.From = c.Notify.User
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
}

// applyEnv fills empty notify fields from SMTP_* variables.
func (c *Config) applyEnv() error {
	n := &c.Notify
	setIfEmpty(&n.Host, EnvSMTPServer)
	setIfEmpty(&n.User, EnvSMTPUser)
	setIfEmpty(&n.Password, EnvSMTPPassword)
	setIfEmpty(&n.From, EnvSMTPFrom)

	if n.Port == 0 {
		if v := os.Getenv(EnvSMTPPort); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: invalid port %q", EnvSMTPPort, v)
			}
			n.Port = port
		}
	}
	if len(n.To) == 0 {
		n.To = splitTrimmed(os.Getenv(EnvSMTPTo))
	}
	return nil
}

func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func splitTrimmed(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
