package discover

import (
	"fmt"
	"strings"
)

// FieldType classifies one logical form input by the interaction protocol it
// needs, not by its DOM tag.
type FieldType string

const (
	TypeText          FieldType = "text"
	TypeEmail         FieldType = "email"
	TypePhone         FieldType = "phone"
	TypeTextarea      FieldType = "textarea"
	TypeDate          FieldType = "date"
	TypeDatePicker    FieldType = "date-picker"
	TypeTimeGroup     FieldType = "time-group"
	TypeSelect        FieldType = "select"
	TypeReactSelect   FieldType = "react-select"
	TypeAutocomplete  FieldType = "autocomplete"
	TypeRadioGroup    FieldType = "radio-group"
	TypeCheckboxGroup FieldType = "checkbox-group"
	TypeFile          FieldType = "file"
)

// Grouped reports whether the type carries an option set and is addressed by
// a synthetic group key instead of a single element selector.
func (t FieldType) Grouped() bool {
	switch t {
	case TypeRadioGroup, TypeCheckboxGroup, TypeSelect, TypeReactSelect:
		return true
	}
	return false
}

// FieldOption is one selectable choice inside a grouped field.
type FieldOption struct {
	ID       string
	Value    string
	Label    string
	Selector string
	// InputSelector targets the underlying input when Selector points at an
	// associated label (hidden-input widgets). Empty when they coincide.
	InputSelector string
}

// Field is the normalized description of one discovered input. Immutable
// once produced; per-attempt annotations live in interact.Outcome instead.
type Field struct {
	Label    string
	Type     FieldType
	Required bool
	// Name is the structural name attribute (or shared group key) when the
	// page provides one; the mapper scores it alongside the label.
	Name string
	// Selector resolves to the single interactive target, or to the group
	// container for grouped types.
	Selector string
	// InputSelector is the underlying input element when Selector points at
	// a container (react-select widgets, fieldset groups). Empty otherwise.
	InputSelector string
	Options       []FieldOption
	Disabled      bool
	ReadOnly      bool
}

// Key is the field's stable identity for mapping: the selector, or a
// synthetic group key for grouped types.
func (f Field) Key() string {
	if f.Type.Grouped() {
		return "group-" + f.Label
	}
	return f.Selector
}

// Summary renders the human/LLM-readable digest consumed verbatim by
// collaborators: one line per field, `type [*] "label" (options: [...])`.
func Summary(fields []Field) string {
	var b strings.Builder
	for _, f := range fields {
		marker := ""
		if f.Required {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s %s%q", f.Type, marker, f.Label)
		if len(f.Options) > 0 {
			labels := make([]string, 0, len(f.Options))
			for _, opt := range f.Options {
				labels = append(labels, opt.Label)
			}
			fmt.Fprintf(&b, " (options: [%s])", strings.Join(labels, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
