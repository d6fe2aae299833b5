package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrivateSourceTimedOut is matched by PrivateSourceTimedOutError.
	ErrPrivateSourceTimedOut = errors.New("private source timed out")

	// ErrAllVersionsIgnored is matched by AllVersionsIgnoredError.
	ErrAllVersionsIgnored = errors.New("all versions ignored")

	// ErrUnsupportedProtocol is returned for a source whose protocol has no
	// registered feed implementation.
	ErrUnsupportedProtocol = errors.New("unsupported feed protocol")
)

// PrivateSourceTimedOutError is returned when a feed other than the default
// registry cannot be reached in time.
type PrivateSourceTimedOutError struct {
	RepositoryURL string
	Cause         error
}

func (e *PrivateSourceTimedOutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("private source %s timed out: %v", e.RepositoryURL, e.Cause)
	}
	return fmt.Sprintf("private source %s timed out", e.RepositoryURL)
}

func (e *PrivateSourceTimedOutError) Unwrap() error {
	return ErrPrivateSourceTimedOut
}

// AllVersionsIgnoredError is returned when published versions exist but the
// ignore rules exclude all of them.
type AllVersionsIgnoredError struct {
	Name    string
	Ignored []string
}

func (e *AllVersionsIgnoredError) Error() string {
	return fmt.Sprintf("all versions of %s are ignored by: %s", e.Name, strings.Join(e.Ignored, "; "))
}

func (e *AllVersionsIgnoredError) Unwrap() error {
	return ErrAllVersionsIgnored
}
