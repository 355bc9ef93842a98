// Copyright 2026 The trigsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

package trigsim

import "github.com/pkg/errors"

// Errors returned by the trigger components. Use errors.Cause to match
// wrapped errors against these values.
//
var (
	ErrNotInitialized     = errors.New("sequencer not initialized")
	ErrAlreadyInitialized = errors.New("sequencer already initialized")
	ErrAlreadyRun         = errors.New("sequencer already run")
	ErrNoTranslator       = errors.New("no address translator")
	ErrMissingTable       = errors.New("missing memory table")
	ErrInvalidAddress     = errors.New("invalid geometric address")
)
