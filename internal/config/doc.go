// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and CAROUSEL_* environment variables.
// It provides type-safe access to settings for the server, the generation
// adapter, the carousel pipeline, authentication and the run log database.
package config
