package main

import (
	"errors"

	"github.com/reglet-dev/dbmatrix/internal/domain/entities"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitUnresolved = 3
	ExitDuplicate  = 4
	ExitMalformed  = 5
)

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	var (
		unresolved *entities.UnresolvedProfileError
		duplicate  *entities.DuplicateProfileError
		malformed  *entities.MalformedDefinitionError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &unresolved):
		return ExitUnresolved
	case errors.As(err, &duplicate):
		return ExitDuplicate
	case errors.As(err, &malformed):
		return ExitMalformed
	default:
		return ExitError
	}
}
