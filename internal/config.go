package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Org      OrgConfig         `yaml:"org"`
	Sections SectionsConfig    `yaml:"sections"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Approval ApprovalConfig    `yaml:"approval"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Org.Validate(); err != nil {
		return err
	}
	if err := c.Sections.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Approval.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// OrgConfig holds the paths of the org directory: the root, the task
// outline file, and the journal directory (both relative to the root).
type OrgConfig struct {
	Path       string `yaml:"path"`
	TasksFile  string `yaml:"tasks_file"`
	JournalDir string `yaml:"journal_dir"`
}

// Validate validates the org configuration.
func (c *OrgConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.TasksFile, validation.Required),
		validation.Field(&c.JournalDir, validation.Required),
	)
}

// SectionsConfig maps task statuses to the level-1 section headings of the
// outline file. Section names are configuration, never hard-coded.
type SectionsConfig struct {
	Open      string `yaml:"open"`
	Closed    string `yaml:"closed"`
	Checklist string `yaml:"checklist"`
}

// Validate validates the sections configuration.
func (c *SectionsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Open, validation.Required),
		validation.Field(&c.Closed, validation.Required),
	); err != nil {
		return err
	}
	if c.Open == c.Closed {
		return fmt.Errorf("sections: open and closed sections must differ")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ApprovalConfig controls the interactive write-approval gate. When
// disabled, every change is auto-approved.
type ApprovalConfig struct {
	Enabled        bool   `yaml:"enabled"`
	EmacsClient    string `yaml:"emacsclient"`
	ElispFile      string `yaml:"elisp_file"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Validate validates the approval configuration.
func (c *ApprovalConfig) Validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("approval: timeout_seconds must not be negative")
	}
	return nil
}

// Timeout returns the per-review deadline.
func (c *ApprovalConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Org: OrgConfig{
			Path:       "./org",
			TasksFile:  "tasks.org",
			JournalDir: "journal",
		},
		Sections: SectionsConfig{
			Open:      "Tasks",
			Closed:    "Completed Tasks",
			Checklist: "High Level Tasks",
		},
		SQLite: SQLiteConfig{
			Path: "./dagaz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
