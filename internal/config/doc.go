// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file next to the config file (or in the working directory when no
// config file is given) is loaded first. SMTP settings fall back to the
// SMTP_* environment variables.
package config
