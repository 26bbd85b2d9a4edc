// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package intake

import "errors"

var (
	// ErrNotFound is returned when a form, submission or file does not
	// exist or, for public lookups, the form is inactive.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when the form already has a submission for
	// the normalized email address.
	ErrDuplicate = errors.New("duplicate submission")
)

// DuplicateMessage is shown to visitors whose email already submitted the
// form.
const DuplicateMessage = "We already received a submission from this email address. " +
	"Please contact our team directly if you need to update your information."

// ValidationError rejects a submission before anything is written. Field
// is the internal field name, empty for form-wide problems.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
