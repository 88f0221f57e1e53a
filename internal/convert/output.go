package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"eventconv/internal/model"
)

// Encode serializes records the way the website expects them: a two-space
// indented JSON array with HTML escaping off, so URLs and non-ASCII names
// appear verbatim.
func Encode(records []model.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("convert: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile replaces path with the serialized records. The data goes to a
// temp file in the destination directory first and is renamed over the
// target, so a failed run never leaves a truncated file behind. An empty
// record set is refused and any previous output stays in place.
func WriteFile(path string, records []model.Record) error {
	if path == "" {
		return errors.New("convert: output path is empty")
	}
	if len(records) == 0 {
		return errors.New("convert: refusing to write an empty record set")
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".meetings-data-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
