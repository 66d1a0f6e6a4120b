package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Carousel CarouselConfig `mapstructure:"carousel" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains the run log database settings.
// An empty URL disables run recording.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains bearer token settings.
// An empty JWTSecret leaves the API unauthenticated.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0,lte=43200"`
}

// Image generation modes supported by the Gemini adapter.
const (
	ImageModeContent = "content"
	ImageModeImagen  = "imagen"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// GeminiAPIKey may be empty; generation calls then fail as unavailable.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	TextModel    string `mapstructure:"text_model"     validate:"required"`
	ImageModel   string `mapstructure:"image_model"    validate:"required"`
	// ImageMode selects how images are requested: "content" uses
	// GenerateContent with an image response modality, "imagen" uses GenerateImages.
	ImageMode    string        `mapstructure:"image_mode"    validate:"required,oneof=content imagen"`
	TextTimeout  time.Duration `mapstructure:"text_timeout"  validate:"gt=0"`
	ImageTimeout time.Duration `mapstructure:"image_timeout" validate:"gt=0"`
}

// CarouselConfig tunes the generation pipeline.
type CarouselConfig struct {
	// MaxConcurrentImages bounds in-flight image calls per request; 1 is sequential.
	MaxConcurrentImages int `mapstructure:"max_concurrent_images" validate:"gte=1,lte=32"`
	// RefineImageDescriptions asks the text model once more, per element, for
	// image descriptions missing from the combined response.
	RefineImageDescriptions bool `mapstructure:"refine_image_descriptions"`
}
