package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventconv/internal/convert"
	"eventconv/internal/ics"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), File)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultInput, cfg.Input)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, convert.DefaultVenue, cfg.Venue)
	assert.Equal(t, convert.DefaultFormatEpoch, cfg.FormatEpochTime())
	assert.Equal(t, convert.DefaultInfoCutover, cfg.InfoCutoverTime())

	// Loading never creates the file.
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), File)
	require.NoError(t, os.WriteFile(path, []byte(
		"venue: Example Institute\ninfo_cutover: 2026-01-01\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Example Institute", cfg.Venue)
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.InfoCutoverTime())
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultInput, cfg.Input)
	assert.Equal(t, convert.DefaultFormatEpoch, cfg.FormatEpochTime())
	assert.Equal(t, ics.DefaultHorizonDays, cfg.ICSHorizonDays)
}

func TestLoadRejectsBadDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), File)
	require.NoError(t, os.WriteFile(path, []byte("info_cutover: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "info_cutover")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), File)
	require.NoError(t, os.WriteFile(path, []byte("venue: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConvertOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.ConvertOptions()

	assert.Equal(t, convert.DefaultFormatEpoch, opts.FormatEpoch)
	assert.Equal(t, convert.DefaultInfoCutover, opts.InfoCutover)
	assert.Equal(t, convert.DefaultVenue, opts.Venue)
	assert.Equal(t, convert.DefaultGroupLabel, opts.GroupLabel)
}

func TestICSOptionsWindow(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.ICSOptions()

	assert.Equal(t, ics.DefaultWindowStart, opts.WindowStart)
	assert.Equal(t,
		convert.DefaultInfoCutover.AddDate(0, 0, ics.DefaultHorizonDays),
		opts.WindowEnd)
}
