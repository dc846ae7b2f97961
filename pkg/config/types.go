// Package config provides configuration loading and validation for wareader.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	// Self is the participant whose messages render as outgoing.
	Self string `yaml:"self,omitempty"`

	// Palette overrides the participant colour cycle.
	Palette []string `yaml:"palette,omitempty" validate:"omitempty,dive,hexcolor"`

	// SystemPhrases extend the built-in system notice phrases.
	SystemPhrases []string `yaml:"system_phrases,omitempty" validate:"omitempty,dive,required"`

	// Output is the default report format.
	Output string `yaml:"output,omitempty" validate:"oneof=text json markdown"`

	Store    StoreConfig     `yaml:"store"`
	Server   ServerConfig    `yaml:"server"`
	Watch    WatchConfig     `yaml:"watch"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" validate:"-"`
}

// StoreConfig locates the transcript database.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen       string `yaml:"listen"         validate:"required,hostname_port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" validate:"gt=0"`
}

// WatchConfig configures the re-import schedule.
type WatchConfig struct {
	Every time.Duration `yaml:"every" validate:"min=1s"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnMessages fires only when the report holds at least one user message (default).
	WebhookTriggerOnMessages WebhookTrigger = "on_messages"
	// WebhookTriggerAlways fires after every parse.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending parse reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "on_messages".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
