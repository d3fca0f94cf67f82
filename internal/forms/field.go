// Package forms provides the reactive form-field abstraction and the form
// stores that turn validated field values into ledger calls.
package forms

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/raffle-labs/raffler-go/pkg/observable"
)

// FormField is the type-erased surface a form composes. Concrete fields are
// Field[T] instances.
type FormField interface {
	Label() string
	Required() bool
	Changed() bool
	MarkChanged()
	// ErrorText returns the current validation message, empty when the
	// field has no error. A field never reports an error before it has
	// been touched.
	ErrorText() string
	IsValid() bool
	AnyValue() interface{}
	SetAnyValue(v interface{}) error
}

// FieldConfig configures a reactive field.
type FieldConfig[T any] struct {
	DefaultValue T
	Label        string
	Required     bool
	// Validate returns a message for an invalid value, empty for a valid
	// one. Evaluated only after the field has changed, and after the
	// required-but-empty check.
	Validate func(v T) string
}

// Field is a single observable input value with dirty-tracking and pluggable
// validation.
type Field[T any] struct {
	mu       sync.RWMutex
	value    T
	changed  bool
	label    string
	required bool
	validate func(v T) string
	emitter  *observable.Emitter
}

// NewField creates a field holding its default value, untouched.
func NewField[T any](cfg FieldConfig[T]) *Field[T] {
	return &Field[T]{
		value:    cfg.DefaultValue,
		label:    cfg.Label,
		required: cfg.Required,
		validate: cfg.Validate,
		emitter:  observable.NewEmitter(),
	}
}

// Subscribe registers an observer for value changes.
func (f *Field[T]) Subscribe(fn func()) func() {
	return f.emitter.Subscribe(fn)
}

// Value returns the current value.
func (f *Field[T]) Value() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// SetValue writes the value and flips the changed flag.
func (f *Field[T]) SetValue(v T) {
	f.mu.Lock()
	f.value = v
	f.changed = true
	f.mu.Unlock()
	f.emitter.Notify()
}

// Label returns the display label.
func (f *Field[T]) Label() string { return f.label }

// Required reports whether an empty value is an error once touched.
func (f *Field[T]) Required() bool { return f.required }

// Changed reports whether the field has been written to.
func (f *Field[T]) Changed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.changed
}

// MarkChanged forces the changed flag so that validation surfaces without a
// per-field edit. Used when a submit attempt should highlight every error.
func (f *Field[T]) MarkChanged() {
	f.mu.Lock()
	f.changed = true
	f.mu.Unlock()
	f.emitter.Notify()
}

// ErrorText evaluates validation. Untouched fields never report an error;
// the required-but-empty check precedes the custom validator.
func (f *Field[T]) ErrorText() string {
	f.mu.RLock()
	value := f.value
	changed := f.changed
	f.mu.RUnlock()

	if !changed {
		return ""
	}
	if f.required && isZero(value) {
		return "Field is required"
	}
	if f.validate != nil {
		return f.validate(value)
	}
	return ""
}

// IsValid reports whether the field currently shows no error.
func (f *Field[T]) IsValid() bool {
	return f.ErrorText() == ""
}

// AnyValue implements FormField.
func (f *Field[T]) AnyValue() interface{} {
	return f.Value()
}

// SetAnyValue implements FormField, rejecting values of the wrong type.
func (f *Field[T]) SetAnyValue(v interface{}) error {
	typed, ok := v.(T)
	if !ok {
		return fmt.Errorf("field %q: cannot assign %T", f.label, v)
	}
	f.SetValue(typed)
	return nil
}

func isZero(v interface{}) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
