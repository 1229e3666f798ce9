// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/horario/internal/timetable"
)

// EnvPrefix is prepended to every environment override, e.g. HORARIO_DB_PATH.
const EnvPrefix = "HORARIO_"

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	LLM      LLMConfig      `toml:"llm" envPrefix:"LLM_"`
	UI       UIConfig       `toml:"ui" envPrefix:"UI_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

// ScheduleConfig holds the week layout used for sections that were never configured.
type ScheduleConfig struct {
	WorkingDays   []string `toml:"working_days" env:"WORKING_DAYS" validate:"min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DayStart      string   `toml:"day_start" env:"DAY_START" validate:"required,datetime=15:04"`
	DayEnd        string   `toml:"day_end" env:"DAY_END" validate:"required,datetime=15:04"`
	ClassDuration int      `toml:"class_duration" env:"CLASS_DURATION" validate:"min=1,max=240"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path" env:"DB_PATH" validate:"required"`
}

// LLMConfig holds LLM provider settings used by autofill.
type LLMConfig struct {
	Provider string `toml:"provider" env:"PROVIDER"` // "copilot", "ollama", "lmstudio"
	Model    string `toml:"model" env:"MODEL"`
	BaseURL  string `toml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme" env:"THEME"` // built-in name or path to a .toml theme file
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
	File  string `toml:"file" env:"FILE"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			WorkingDays:   []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			DayStart:      "07:00",
			DayEnd:        "13:00",
			ClassDuration: 45,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		LLM: LLMConfig{
			Provider: "copilot",
			Model:    "gpt-4o",
			BaseURL:  "http://localhost:11434",
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			Level: "",
			File:  defaultLogPath(),
		},
	}
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "horario")
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	dir := dataDir()
	if dir == "" {
		return "horario.db"
	}
	return filepath.Join(dir, "horario.db")
}

func defaultLogPath() string {
	dir := dataDir()
	if dir == "" {
		return "horario.log"
	}
	return filepath.Join(dir, "horario.log")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "horario", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)
	for i, d := range cfg.Schedule.WorkingDays {
		cfg.Schedule.WorkingDays[i] = strings.ToLower(strings.TrimSpace(d))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies HORARIO_* environment variables on top of cfg.
// Unset variables leave the current value alone.
func applyEnvOverrides(cfg *Config) error {
	err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return fmt.Errorf("reading environment: %w", aggErr.Errors[0])
		}
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check (got %v)", fieldName(fe), fe.Tag(), fe.Value())
		}
		return err
	}
	if timetable.TimeToMinutes(c.Schedule.DayStart) >= timetable.TimeToMinutes(c.Schedule.DayEnd) {
		return errors.New("day_start must be before day_end")
	}
	return nil
}

// fieldName maps a validator namespace like Config.Schedule.DayStart to schedule.day_start.
func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	isUpper := func(b byte) bool { return b >= 'A' && b <= 'Z' }
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUpper(b) {
			if i > 0 && (!isUpper(s[i-1]) || (i+1 < len(s) && !isUpper(s[i+1]))) {
				sb.WriteByte('_')
			}
			b += 'a' - 'A'
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

// Weekdays returns the configured default working days.
func (c *Config) Weekdays() []timetable.Weekday {
	days, err := timetable.ParseWeekdays(strings.Join(c.Schedule.WorkingDays, ","))
	if err != nil {
		return nil
	}
	return days
}

// SectionDefaults returns the schedule configuration a section starts with
// before it is set up: the configured week with the default recess kept
// wherever it still fits inside the day.
func (c *Config) SectionDefaults(sectionID int64) *timetable.ScheduleConfig {
	cfg := timetable.DefaultScheduleConfig(sectionID)
	days := c.Weekdays()
	if len(days) == 0 {
		return cfg
	}

	var recess []timetable.ScheduleSlot
	start, end := timetable.TimeToMinutes(c.Schedule.DayStart), timetable.TimeToMinutes(c.Schedule.DayEnd)
	for _, slot := range cfg.BreakSlots.For(timetable.Monday) {
		if timetable.TimeToMinutes(slot.Start) >= start && timetable.TimeToMinutes(slot.End) <= end {
			recess = append(recess, slot)
		}
	}

	cfg.WorkingDays = days
	cfg.StartTime = c.Schedule.DayStart
	cfg.EndTime = c.Schedule.DayEnd
	cfg.ClassDuration = c.Schedule.ClassDuration
	cfg.BreakSlots = timetable.InitializeForDays(days, recess)
	return cfg
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
