// Package config loads the optional eventconv.yaml from the working
// directory. Every field has a default, so the file only needs to exist
// when a default has to change. The tool never writes the file: its only
// output is the meetings JSON.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"eventconv/internal/convert"
	"eventconv/internal/ics"
)

// File is the config file name looked up in the working directory.
const File = "eventconv.yaml"

// Default file names: the sheet's export name as the spreadsheet service
// produces it, and the JSON name the website loads.
const (
	DefaultInput  = "NLP SIG (all previous talks from 2021) - Sheet1.csv"
	DefaultOutput = "meetings-data.json"
)

const dateFormat = "2006-01-02"

// Config is the converter configuration.
type Config struct {
	// Input is the file converted when no argument is given.
	Input string `yaml:"input"`

	// Output is the JSON file the website reads.
	Output string `yaml:"output"`

	// Venue names the physical venue in hybrid meeting locations.
	Venue string `yaml:"venue"`

	// GroupLabel is the presenter label for a journal club without one.
	GroupLabel string `yaml:"group_label"`

	// FormatEpoch (YYYY-MM-DD) is the day the sheet switched from
	// month/day to day/month dates.
	FormatEpoch string `yaml:"format_epoch"`

	// InfoCutover (YYYY-MM-DD) is the day the site started publishing
	// abstracts, bios and paper links.
	InfoCutover string `yaml:"info_cutover"`

	// ICSHorizonDays bounds how far past the cutover a calendar input is
	// expanded.
	ICSHorizonDays int `yaml:"ics_horizon_days"`

	formatEpoch time.Time
	infoCutover time.Time
}

// DefaultConfig returns the all-default configuration.
func DefaultConfig() *Config {
	return &Config{
		Input:          DefaultInput,
		Output:         DefaultOutput,
		Venue:          convert.DefaultVenue,
		GroupLabel:     convert.DefaultGroupLabel,
		FormatEpoch:    convert.DefaultFormatEpoch.Format(dateFormat),
		InfoCutover:    convert.DefaultInfoCutover.Format(dateFormat),
		ICSHorizonDays: ics.DefaultHorizonDays,
		formatEpoch:    convert.DefaultFormatEpoch,
		infoCutover:    convert.DefaultInfoCutover,
	}
}

// Normalize fills missing fields with defaults so a partial file behaves
// like a full one.
func (c *Config) Normalize() {
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Venue == "" {
		c.Venue = convert.DefaultVenue
	}
	if c.GroupLabel == "" {
		c.GroupLabel = convert.DefaultGroupLabel
	}
	if c.FormatEpoch == "" {
		c.FormatEpoch = convert.DefaultFormatEpoch.Format(dateFormat)
	}
	if c.InfoCutover == "" {
		c.InfoCutover = convert.DefaultInfoCutover.Format(dateFormat)
	}
	if c.ICSHorizonDays <= 0 {
		c.ICSHorizonDays = ics.DefaultHorizonDays
	}
}

// finish parses the date fields. Called after Normalize, so both are set.
func (c *Config) finish() error {
	var err error
	if c.formatEpoch, err = time.Parse(dateFormat, c.FormatEpoch); err != nil {
		return fmt.Errorf("config: format_epoch: %w", err)
	}
	if c.infoCutover, err = time.Parse(dateFormat, c.InfoCutover); err != nil {
		return fmt.Errorf("config: info_cutover: %w", err)
	}
	return nil
}

// FormatEpochTime returns the parsed format epoch.
func (c *Config) FormatEpochTime() time.Time { return c.formatEpoch }

// InfoCutoverTime returns the parsed information cutover.
func (c *Config) InfoCutoverTime() time.Time { return c.infoCutover }

// ConvertOptions renders the configuration as conversion options.
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{
		FormatEpoch: c.formatEpoch,
		InfoCutover: c.infoCutover,
		Venue:       c.Venue,
		GroupLabel:  c.GroupLabel,
	}
}

// ICSOptions renders the configuration as the calendar expansion window.
func (c *Config) ICSOptions() ics.Options {
	return ics.Options{
		WindowStart: ics.DefaultWindowStart,
		WindowEnd:   c.infoCutover.AddDate(0, 0, c.ICSHorizonDays),
	}
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults apply. Invalid dates are load-time errors so a bad file never
// half-applies. Load never creates or rewrites the file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
