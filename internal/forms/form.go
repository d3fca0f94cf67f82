package forms

import "fmt"

// Form aggregates named fields and exposes aggregate validity. Concrete
// forms embed it and add a Submit operation.
type Form struct {
	fields map[string]FormField
}

// NewForm creates a form over the given field set.
func NewForm(fields map[string]FormField) *Form {
	return &Form{fields: fields}
}

// Field returns the named field, or an error for an unknown name.
func (f *Form) Field(name string) (FormField, error) {
	field, ok := f.fields[name]
	if !ok {
		return nil, fmt.Errorf("no field named %q", name)
	}
	return field, nil
}

// SetField writes a value into the named field.
func (f *Form) SetField(name string, value interface{}) error {
	field, err := f.Field(name)
	if err != nil {
		return err
	}
	return field.SetAnyValue(value)
}

// Errors collects the current validation messages by field name.
func (f *Form) Errors() map[string]string {
	errs := make(map[string]string)
	for name, field := range f.fields {
		if msg := field.ErrorText(); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// IsValidFormValues is true iff no field currently reports an error.
func (f *Form) IsValidFormValues() bool {
	return len(f.Errors()) == 0
}

// HighlightErrorFields forces every field's changed flag so a submit attempt
// surfaces all errors at once.
func (f *Form) HighlightErrorFields() {
	for _, field := range f.fields {
		field.MarkChanged()
	}
}

// PlainValues serializes the current field values into a plain map.
func (f *Form) PlainValues() map[string]interface{} {
	values := make(map[string]interface{}, len(f.fields))
	for name, field := range f.fields {
		values[name] = field.AnyValue()
	}
	return values
}
