// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"net/url"
	"strconv"
)

// Form carries submitted values and per-field error messages back into
// a template so a rejected form is re-rendered as the user typed it.
type Form struct {
	Values url.Values
	Errors map[string]string
}

// NewForm wraps values; a nil map starts an empty form.
func NewForm(values url.Values) *Form {
	if values == nil {
		values = url.Values{}
	}
	return &Form{Values: values, Errors: map[string]string{}}
}

// Get returns the first value submitted for field.
func (f *Form) Get(field string) string {
	return f.Values.Get(field)
}

// Checked reports whether a checkbox field was ticked.
func (f *Form) Checked(field string) bool {
	switch f.Values.Get(field) {
	case "on", "true", "1":
		return true
	}
	return false
}

// Selected reports whether id is the chosen option of a select field.
func (f *Form) Selected(field string, id int64) bool {
	return f.Values.Get(field) == strconv.FormatInt(id, 10)
}

// Error returns the message recorded for field, or "".
func (f *Form) Error(field string) string {
	return f.Errors[field]
}

// SetErrors replaces the recorded messages.
func (f *Form) SetErrors(errs map[string]string) {
	f.Errors = errs
}

// Valid reports whether no field has an error.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}
