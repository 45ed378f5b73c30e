// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

const defaultFileHeader = `# confirmgate configuration
#
# Precedence: environment (CONFIRMGATE_*, LOG_LEVEL, LOG_SERVICE) > this file > defaults.
# Unknown keys are rejected.

`

// ErrConfigExists is returned by WriteDefault when the target exists and overwrite is off.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes the default configuration as YAML to path. The file is replaced
// atomically and fsynced; an existing file is only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
	}

	body, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.WriteString(defaultFileHeader); err != nil {
		return fmt.Errorf("write config header: %w", err)
	}
	if _, err := pending.Write(body); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}
