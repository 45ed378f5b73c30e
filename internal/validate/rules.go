// SPDX-License-Identifier: MIT
package validate

import (
	"cmp"
	"errors"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// LogLevels lists the level names accepted by LogLevel.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

func within[T cmp.Ordered](v, lo, hi T) bool { return v >= lo && v <= hi }

// Range requires lo <= value <= hi.
func (v *Validator) Range(field string, value, lo, hi int) {
	if !within(value, lo, hi) {
		v.addf(field, value, "value must be between %d and %d, got %d", lo, hi, value)
	}
}

// Duration requires lo <= value <= hi.
func (v *Validator) Duration(field string, value, lo, hi time.Duration) {
	if !within(value, lo, hi) {
		v.addf(field, value, "duration must be between %s and %s, got %s", lo, hi, value)
	}
}

func (v *Validator) Fraction(field string, value float64) {
	if !within(value, 0, 1) {
		v.addf(field, value, "value must be between 0.0 and 1.0, got %g", value)
	}
}

func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.addf(field, value, "value cannot be negative, got %d", value)
	}
}

func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

func (v *Validator) OneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		v.addf(field, value, "value must be one of %v, got %q", allowed, value)
	}
}

// LogLevel accepts the names in LogLevels.
func (v *Validator) LogLevel(field, value string) {
	v.OneOf(field, value, LogLevels)
}

// Token requires a non-empty run of letters, digits, '-' or '_', as used for cookie names.
func (v *Validator) Token(field, value string) {
	if !tokenPattern.MatchString(value) {
		v.AddError(field, "must be a non-empty token of letters, digits, '-' or '_'", value)
	}
}

// Origin accepts a browser origin: http or https scheme plus host, nothing else.
func (v *Validator) Origin(field, value string) {
	u, err := url.Parse(value)
	switch {
	case err != nil:
		v.addf(field, value, "invalid origin: %v", err)
	case u.Scheme != "http" && u.Scheme != "https":
		v.addf(field, value, "unsupported origin scheme %q (allowed: http, https)", u.Scheme)
	case u.Host == "":
		v.AddError(field, "origin must have a host", value)
	case strings.Trim(u.Path, "/") != "" || u.RawQuery != "" || u.Fragment != "":
		v.AddError(field, "origin must not have a path, query or fragment", value)
	}
}

// ListenAddr accepts host:port with an optional host.
func (v *Validator) ListenAddr(field, addr string) {
	v.address(field, addr, false)
}

// HostPort accepts host:port with a mandatory host.
func (v *Validator) HostPort(field, addr string) {
	v.address(field, addr, true)
}

func (v *Validator) address(field, addr string, needHost bool) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.addf(field, addr, "invalid address: %v", err)
		return
	}
	if needHost && host == "" {
		v.AddError(field, "address must have a host", addr)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.addf(field, addr, "invalid port %q", portStr)
		return
	}
	if !within(port, 1, 65535) {
		v.addf(field, addr, "port must be between 1 and 65535, got %d", port)
	}
}

// Directory requires path to name a directory. Unless mustExist is set a missing
// directory is created with mode 0750.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if path == "" {
		v.AddError(field, "directory path cannot be empty", path)
		return
	}
	if strings.Contains(path, "..") {
		v.AddError(field, "path contains traversal sequences (..)", path)
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		v.addf(field, path, "invalid path: %v", err)
		return
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist) && mustExist:
		v.AddError(field, "directory does not exist", path)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(abs, 0o750); err != nil {
			v.addf(field, path, "cannot create directory: %v", err)
		}
	case err != nil:
		v.addf(field, path, "cannot access directory: %v", err)
	case !info.IsDir():
		v.AddError(field, "path is not a directory", path)
	}
}
