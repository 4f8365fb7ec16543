// Package form implements the login form: field state, validation with
// touched-gated error display, and submission through a caller supplied
// callback.
package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MinPasswordLength is the minimum number of characters of a password.
const MinPasswordLength = 8

// Field names a form field.
type Field string

const (
	FieldEmail      Field = "email"
	FieldPassword   Field = "password"
	FieldRememberMe Field = "rememberMe"

	// FieldForm carries errors that do not belong to a single field.
	FieldForm Field = "form"
)

// Values are the login form fields.
type Values struct {
	Email      string `form:"email" json:"email" validate:"required,email"`
	Password   string `form:"password" json:"-" validate:"required,min=8"`
	RememberMe bool   `form:"rememberMe" json:"rememberMe"`
}

// ErrSubmitting is returned when a submission is attempted while another one
// is still pending.
var ErrSubmitting = errors.New("submission already in progress")

// ValidationError is returned when a submission is blocked by invalid fields.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid fields: %s", strings.Join(names, ", "))
}

// SubmitFunc receives validated values. Its outcome, success or failure, is
// handled by the caller.
type SubmitFunc func(ctx context.Context, v Values) error

// Login holds the state of one login form. It is safe for concurrent use so a
// pending submission can complete while the form is being rendered.
type Login struct {
	validator *Validator

	mu           sync.Mutex
	values       Values
	touched      map[Field]bool
	errs         map[Field]string
	submitting   bool
	attempts     int
	showPassword bool
}

// NewLogin returns a pristine form with empty values.
func NewLogin(v *Validator) *Login {
	l := &Login{validator: v}
	l.Reset()
	return l
}

// Reset discards the values and returns every field to pristine.
// A pending submission is not affected.
func (l *Login) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.values = Values{}
	l.touched = make(map[Field]bool)
	l.attempts = 0
	l.showPassword = false
	l.errs = l.validator.Validate(l.values)
}

// Change sets a field from its raw input value and marks it touched.
// Unknown fields are ignored.
func (l *Login) Change(field Field, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch field {
	case FieldEmail:
		l.values.Email = value
	case FieldPassword:
		l.values.Password = value
	case FieldRememberMe:
		l.values.RememberMe = parseCheckbox(value)
	default:
		return
	}

	l.touched[field] = true
	l.errs = l.validator.Validate(l.values)
}

// Blur marks a field touched.
func (l *Login) Blur(field Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch field {
	case FieldEmail, FieldPassword, FieldRememberMe:
		l.touched[field] = true
	}
}

// Touched reports whether the field has been interacted with.
func (l *Login) Touched(field Field) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.touched[field]
}

// Values returns a copy of the current values.
func (l *Login) Values() Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values
}

// Errors returns the validation errors of every field, touched or not.
func (l *Login) Errors() map[Field]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.errs)
}

// VisibleErrors returns the errors that should be displayed: those of touched
// fields, or of every field once a submission was attempted.
func (l *Login) VisibleErrors() map[Field]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visibleErrors()
}

func (l *Login) visibleErrors() map[Field]string {
	out := make(map[Field]string, len(l.errs))
	for f, msg := range l.errs {
		if l.touched[f] || l.attempts > 0 || f == FieldForm {
			out[f] = msg
		}
	}
	return out
}

// TogglePasswordVisibility switches the password between masked and plain
// text and returns the new visibility.
func (l *Login) TogglePasswordVisibility() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showPassword = !l.showPassword
	return l.showPassword
}

// Submitting reports whether a submission is pending.
func (l *Login) Submitting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.submitting
}

// Submit validates every field and, when all pass, calls fn with the values
// and returns its result. Invalid values mark every field touched and return
// a *ValidationError without calling fn.
func (l *Login) Submit(ctx context.Context, fn SubmitFunc) error {
	done, err := l.Start(ctx, fn)
	if err != nil {
		return err
	}
	return <-done
}

// Start behaves like Submit but runs fn on its own goroutine. The returned
// channel yields fn's result once and is then closed. The form reports
// Submitting until fn returns.
func (l *Login) Start(ctx context.Context, fn SubmitFunc) (<-chan error, error) {
	l.mu.Lock()

	if l.submitting {
		l.mu.Unlock()
		return nil, ErrSubmitting
	}

	l.attempts++
	l.errs = l.validator.Validate(l.values)
	if len(l.errs) > 0 {
		for _, f := range []Field{FieldEmail, FieldPassword, FieldRememberMe} {
			l.touched[f] = true
		}
		err := &ValidationError{Fields: maps.Clone(l.errs)}
		l.mu.Unlock()
		return nil, err
	}

	l.submitting = true
	values := l.values
	l.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)

		err := fn(ctx, values)

		l.mu.Lock()
		l.submitting = false
		l.mu.Unlock()

		done <- err
	}()

	return done, nil
}

// State is a consistent snapshot of the form used for rendering.
type State struct {
	Email        string
	Password     string
	RememberMe   bool
	ShowPassword bool
	Submitting   bool
	Errors       map[Field]string
}

// State returns a snapshot of the form.
func (l *Login) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return State{
		Email:        l.values.Email,
		RememberMe:   l.values.RememberMe,
		Password:     l.values.Password,
		ShowPassword: l.showPassword,
		Submitting:   l.submitting,
		Errors:       l.visibleErrors(),
	}
}

func parseCheckbox(v string) bool {
	if strings.EqualFold(v, "on") {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
