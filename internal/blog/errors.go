// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blog

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Errors returned by Service operations. Handlers translate them at the
// HTTP boundary; nothing above the handler ever sees them.
var (
	// ErrNotFound covers both missing rows and rows the viewer may not
	// see, so hidden posts are indistinguishable from absent ones.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the viewer is signed in but does not own the
	// post or comment being changed.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthenticated means the operation needs a signed-in viewer.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError carries per-field messages for a rejected form.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}

// Messages flattens the field errors for templates.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for field, err := range e.Fields {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}

// FieldNames returns the invalid field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for field, err := range e.Fields {
		if err != nil {
			names = append(names, field)
		}
	}
	sort.Strings(names)
	return names
}

// fieldErrors collects ozzo results and extra checks into one error.
type fieldErrors validation.Errors

// merge folds the result of validation.ValidateStruct into fe. A
// non-validation error (a broken rule) is returned as is.
func (fe fieldErrors) merge(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	for k, v := range errs {
		fe[k] = v
	}
	return nil
}

// add records a message for field unless it already has one.
func (fe fieldErrors) add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = errors.New(msg)
	}
}

// err returns a *ValidationError when any field failed, nil otherwise.
func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: validation.Errors(fe)}
}
