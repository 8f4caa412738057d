// Package dataset provisions and builds the read-only scripture database.
//
// Provision copies a bundled database into the data directory before the
// store opens it. Build produces such a database from a JSON export using
// GORM, so fixtures and releases share one schema.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abelbrown/versefeed/internal/logging"
)

// Policy decides what happens to an existing copy of the dataset.
type Policy string

const (
	// Overwrite replaces any existing copy on every launch.
	Overwrite Policy = "overwrite"
	// Preserve keeps an existing copy and only copies when none exists.
	Preserve Policy = "preserve"
)

// ParsePolicy maps a config value to a Policy. Unknown values fall back to
// Overwrite.
func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(s))) == Preserve {
		return Preserve
	}
	return Overwrite
}

// Provision makes the bundled dataset available at target. It reports
// whether a copy was made. An empty bundled path means the dataset is
// expected to already be in place.
func Provision(bundled, target string, policy Policy) (bool, error) {
	_, statErr := os.Stat(target)
	exists := statErr == nil

	if bundled == "" || filepath.Clean(bundled) == filepath.Clean(target) {
		if !exists {
			return false, fmt.Errorf("dataset not found at %s", target)
		}
		return false, nil
	}

	if exists && policy == Preserve {
		logging.Debug("Dataset preserved", "path", target)
		return false, nil
	}

	if err := copyFile(bundled, target); err != nil {
		return false, err
	}

	logging.Info("Dataset provisioned", "from", bundled, "to", target, "policy", string(policy))
	return true, nil
}

// copyFile writes src to a temp file next to dst and renames it into place,
// so a crash never leaves a half-written dataset behind.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open bundled dataset: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".dataset-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp dataset: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("install dataset: %w", err)
	}
	return nil
}
