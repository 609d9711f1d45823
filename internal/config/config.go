package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mgiorello/turnero/pkg/core/model"
	"github.com/mgiorello/turnero/pkg/core/timeutil"
)

// CoverageRequirement is the YAML form of a coverage rule.
type CoverageRequirement struct {
	ID       string `yaml:"id" validate:"required"`
	Role     string `yaml:"role" validate:"required"`
	Start    string `yaml:"start" validate:"required"`
	End      string `yaml:"end" validate:"required"`
	MinStaff int    `yaml:"minStaff" validate:"min=0"`
}

// DailyRoleMinimum is the YAML form of a per-day role floor. MinDaily is a
// float so sloppy input ("1.5") is sanitized instead of rejected.
type DailyRoleMinimum struct {
	Role     string  `yaml:"role" validate:"required"`
	MinDaily float64 `yaml:"minDaily"`
}

// Holiday is the YAML form of a calendar holiday.
type Holiday struct {
	Date string `yaml:"date" validate:"required"`
	Name string `yaml:"name" validate:"required"`
}

// Config is the engine configuration.
type Config struct {
	RosterFile   string `yaml:"rosterFile" validate:"required"`
	ScheduleFile string `yaml:"scheduleFile,omitempty"`

	CoverageRequirements []CoverageRequirement `yaml:"coverageRequirements,omitempty" validate:"dive"`
	DailyRoleMinimums    []DailyRoleMinimum    `yaml:"dailyRoleMinimums,omitempty" validate:"dive"`
	Holidays             []Holiday             `yaml:"holidays,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from turnero.yaml, looking in
// the current directory first and the user's home directory second.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct validation, then checks every time window and date
// the way struct tags cannot: times must parse as "HH:MM", windows must run
// forward, and holiday dates must be "YYYY-MM-DD".
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, req := range cfg.CoverageRequirements {
		start, err := timeutil.TimeToMinutes(req.Start)
		if err != nil {
			return fmt.Errorf("invalid start in coverageRequirements[%d]: %w", i, err)
		}
		end, err := timeutil.TimeToMinutes(req.End)
		if err != nil {
			return fmt.Errorf("invalid end in coverageRequirements[%d]: %w", i, err)
		}
		if start >= end {
			return fmt.Errorf("coverageRequirements[%d]: window %s-%s does not run forward", i, req.Start, req.End)
		}
		if start >= timeutil.MinutesPerDay {
			return fmt.Errorf("coverageRequirements[%d]: start %q is not a valid start of day", i, req.Start)
		}
	}

	for i, holiday := range cfg.Holidays {
		if _, err := timeutil.ParseDate(holiday.Date); err != nil {
			return fmt.Errorf("invalid date in holidays[%d]: %w", i, err)
		}
	}

	return nil
}

// Requirements converts the configured coverage rules to model values.
func (c *Config) Requirements() []model.CoverageRequirement {
	reqs := make([]model.CoverageRequirement, len(c.CoverageRequirements))
	for i, req := range c.CoverageRequirements {
		reqs[i] = model.CoverageRequirement{
			ID:       req.ID,
			Role:     model.NormalizeRole(req.Role),
			Start:    req.Start,
			End:      req.End,
			MinStaff: req.MinStaff,
		}
	}
	return reqs
}

// Minimums converts the configured daily floors to model values, sanitizing
// each to max(0, floor(minDaily)).
func (c *Config) Minimums() []model.DailyRoleMinimum {
	minimums := make([]model.DailyRoleMinimum, len(c.DailyRoleMinimums))
	for i, minimum := range c.DailyRoleMinimums {
		sanitized := int(math.Floor(minimum.MinDaily))
		if sanitized < 0 {
			sanitized = 0
		}
		minimums[i] = model.DailyRoleMinimum{
			Role:     model.NormalizeRole(minimum.Role),
			MinDaily: sanitized,
		}
	}
	return minimums
}

// HolidayList converts the configured holidays to model values.
func (c *Config) HolidayList() []model.Holiday {
	holidays := make([]model.Holiday, len(c.Holidays))
	for i, holiday := range c.Holidays {
		holidays[i] = model.Holiday{Date: holiday.Date, Name: holiday.Name}
	}
	return holidays
}

// findConfigFile searches for turnero.yaml in the current directory and the
// home directory.
func findConfigFile() (string, error) {
	configFileName := "turnero.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
