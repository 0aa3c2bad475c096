// Package profile holds the runtime configuration of schedwise.
package profile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Profile is the configuration to start the assistant.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Data is the data directory
	Data string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN points to where schedwise stores its own data
	DSN string
	// Timezone is the IANA zone used to interpret zone-naive user input
	Timezone string
	// Session identifies the conversation session to load and append to
	Session string
	// Verbose enables debug logging and verbose dispatcher output
	Verbose bool
	// Version is the current version of the binary
	Version string

	// LLM configuration
	LLMBaseURL    string // SCHEDWISE_LLM_BASE_URL (default: https://api.openai.com/v1)
	LLMAPIKey     string // SCHEDWISE_LLM_API_KEY
	LLMModel      string // SCHEDWISE_LLM_MODEL (default: gpt-4o-mini)
	LLMMaxRetries int    // SCHEDWISE_LLM_MAX_RETRIES (default: 3)
	LLMTimeoutSec int    // SCHEDWISE_LLM_TIMEOUT_SECONDS (default: 30)

	// BackendTimeoutSec bounds each calendar backend call
	BackendTimeoutSec int
}

// IsDev returns true unless running in prod mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// FromViper builds a profile from a configured viper instance
// (flags + config file + SCHEDWISE_* environment variables).
func FromViper(v *viper.Viper) (*Profile, error) {
	p := &Profile{
		Mode:              v.GetString("mode"),
		Data:              v.GetString("data"),
		Driver:            v.GetString("driver"),
		DSN:               v.GetString("dsn"),
		Timezone:          v.GetString("timezone"),
		Session:           v.GetString("session"),
		Verbose:           v.GetBool("verbose"),
		LLMBaseURL:        v.GetString("llm.base-url"),
		LLMAPIKey:         v.GetString("llm.api-key"),
		LLMModel:          v.GetString("llm.model"),
		LLMMaxRetries:     v.GetInt("llm.max-retries"),
		LLMTimeoutSec:     v.GetInt("llm.timeout-seconds"),
		BackendTimeoutSec: v.GetInt("backend-timeout-seconds"),
	}

	if err := p.applyDefaults(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) applyDefaults() error {
	if p.Mode != "prod" && p.Mode != "dev" {
		p.Mode = "dev"
	}
	if p.Data == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to resolve home directory")
		}
		p.Data = filepath.Join(home, ".schedwise")
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(p.Data, "schedwise.db")
	}
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	if p.Session == "" {
		p.Session = "default"
	}
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = "https://api.openai.com/v1"
	}
	if p.LLMModel == "" {
		p.LLMModel = "gpt-4o-mini"
	}
	if p.LLMMaxRetries <= 0 {
		p.LLMMaxRetries = 3
	}
	if p.LLMTimeoutSec <= 0 {
		p.LLMTimeoutSec = 30
	}
	if p.BackendTimeoutSec <= 0 {
		p.BackendTimeoutSec = 15
	}
	return nil
}

// Validate checks the profile for inconsistencies before startup.
func (p *Profile) Validate() error {
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q (expected sqlite or postgres)", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}
	if p.Driver == "sqlite" {
		if err := os.MkdirAll(p.Data, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create data directory %s", p.Data)
		}
	}
	return nil
}
