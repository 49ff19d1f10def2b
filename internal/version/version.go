// Package version holds the application version and save compatibility rules.
package version

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set via -ldflags at build time.
var Version = "0.3.0"

var (
	// ErrInvalid is returned for strings that are not semantic versions.
	ErrInvalid = errors.New("invalid version")
	// ErrNewerMajor is returned for data written by a newer major release.
	ErrNewerMajor = errors.New("written by a newer major version")
)

// Canonical returns v in "vMAJOR.MINOR.PATCH" form.
func Canonical(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalid, v)
	}
	return semver.Canonical(v), nil
}

// CheckCompatible reports whether data tagged with stored can be read by
// the running version current. An empty tag predates versioning and is
// accepted.
func CheckCompatible(stored, current string) error {
	if strings.TrimSpace(stored) == "" {
		return nil
	}
	s, err := Canonical(stored)
	if err != nil {
		return err
	}
	c, err := Canonical(current)
	if err != nil {
		// Development builds carry no usable version.
		return nil
	}
	if semver.Compare(semver.Major(s), semver.Major(c)) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrNewerMajor, s, c)
	}
	return nil
}
