// Package config loads server configuration from an optional YAML file
// with environment variable overrides on top. Precedence, lowest to
// highest: built-in defaults, config file, environment.
package config
