package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration for eedraws.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// APIConfig holds the upstream feed settings.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DataConfig locates the local dataset and its derived files.
// File names are relative to Dir unless absolute.
type DataConfig struct {
	Dir              string `yaml:"dir"`
	CSVFile          string `yaml:"csv_file"`
	SnapshotFile     string `yaml:"snapshot_file"`
	AnalysisFile     string `yaml:"analysis_file"`
	TimeAnalysisFile string `yaml:"time_analysis_file"`
}

// CSVPath is the authoritative dataset file.
func (d DataConfig) CSVPath() string { return d.resolve(d.CSVFile) }

// SnapshotPath is the raw feed body saved on each update.
func (d DataConfig) SnapshotPath() string { return d.resolve(d.SnapshotFile) }

// AnalysisPath is where draw statistics are written.
func (d DataConfig) AnalysisPath() string { return d.resolve(d.AnalysisFile) }

// TimeAnalysisPath is where the draw time distribution is written.
func (d DataConfig) TimeAnalysisPath() string { return d.resolve(d.TimeAnalysisFile) }

func (d DataConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// DatabaseConfig holds the optional Postgres mirror.
type DatabaseConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// NotifyConfig holds SMTP settings for draw notifications.
type NotifyConfig struct {
	Host     string   `yaml:"smtp_host"`
	Port     int      `yaml:"smtp_port"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}
