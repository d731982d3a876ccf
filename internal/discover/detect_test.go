package discover

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vpetrenko/formfill-agent/internal/page"
)

func newTestDetector() *Detector {
	return New(zerolog.Nop())
}

func TestDetectEmptyPage(t *testing.T) {
	fields := newTestDetector().Detect(&page.Snapshot{URL: "http://example.test"})
	require.Empty(t, fields)
}

func TestStructuredContainerRadioGroup(t *testing.T) {
	snap := &page.Snapshot{
		Containers: []page.Container{
			{Selector: "div[role='listitem']:nth-of-type(1)", Heading: "Preferred contact method *"},
		},
		Nodes: []page.Node{
			{Selector: "div#opt-email", Tag: "div", Role: "radio", Text: "Email", Container: 0, Visible: true},
			{Selector: "div#opt-phone", Tag: "div", Role: "radio", Text: "Phone", Container: 0, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)

	f := fields[0]
	require.Equal(t, "Preferred contact method", f.Label)
	require.True(t, f.Required)
	require.Equal(t, TypeRadioGroup, f.Type)
	require.Len(t, f.Options, 2)
	require.Equal(t, "Email", f.Options[0].Label)
	require.Equal(t, "div#opt-email", f.Options[0].Selector)
}

func TestStructuredContainerTextEntry(t *testing.T) {
	snap := &page.Snapshot{
		Containers: []page.Container{
			{Selector: "div[role='listitem']:nth-of-type(1)", Heading: "Your email"},
		},
		Nodes: []page.Node{
			{Selector: "input#resp", Tag: "input", Type: "text", Container: 0, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	// The heading mentions email, so the bare text input refines to email.
	require.Equal(t, TypeEmail, fields[0].Type)
	require.Equal(t, "input#resp", fields[0].Selector)
}

func TestNativeGroupByName(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#g-m", Tag: "input", Type: "radio", Name: "gender", Value: "Male",
				LabelText: "Male", LabelSelector: "label[for='g-m']", LegendText: "Gender *",
				FieldsetSelector: "fieldset:nth-of-type(1)", Container: -1, Visible: true},
			{Selector: "input#g-f", Tag: "input", Type: "radio", Name: "gender", Value: "Female",
				LabelText: "Female", LabelSelector: "label[for='g-f']", LegendText: "Gender *",
				FieldsetSelector: "fieldset:nth-of-type(1)", Container: -1, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)

	f := fields[0]
	require.Equal(t, "Gender", f.Label)
	require.True(t, f.Required)
	require.Equal(t, TypeRadioGroup, f.Type)
	require.Equal(t, "gender", f.Name)
	require.Equal(t, "fieldset:nth-of-type(1)", f.Selector)
	require.Len(t, f.Options, 2)
	// Click target is the associated label; the input stays for verification.
	require.Equal(t, "label[for='g-m']", f.Options[0].Selector)
	require.Equal(t, "input#g-m", f.Options[0].InputSelector)
}

func TestNativeGroupByIDPrefix(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#hobby-1", Tag: "input", Type: "checkbox", ID: "hobby-1", Value: "Sports",
				LabelText: "Sports", LabelSelector: "label[for='hobby-1']", WrapText: "Hobbies",
				Container: -1, Visible: true},
			{Selector: "input#hobby-2", Tag: "input", Type: "checkbox", ID: "hobby-2", Value: "Reading",
				LabelText: "Reading", LabelSelector: "label[for='hobby-2']", WrapText: "Hobbies",
				Container: -1, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, "Hobbies", fields[0].Label)
	require.Equal(t, TypeCheckboxGroup, fields[0].Type)
	require.Len(t, fields[0].Options, 2)
}

func TestNativeGroupHiddenInputNeedsLabel(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			// Hidden but reachable through its styled label.
			{Selector: "input#ok", Tag: "input", Type: "radio", Name: "plan", Value: "Basic",
				LabelText: "Basic", LabelSelector: "label[for='ok']", Container: -1, Visible: false},
			// Hidden with no label association: a decoy.
			{Selector: "input#decoy", Tag: "input", Type: "radio", Name: "honeypot", Value: "x",
				Container: -1, Visible: false},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, "plan", fields[0].Name)
}

func TestGenericScanLabelFallbackOrder(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#a", Tag: "input", Type: "text", LabelText: "From Label",
				WrapText: "From Wrapper", Placeholder: "From Placeholder", Container: -1, Visible: true},
			{Selector: "input#b", Tag: "input", Type: "text",
				WrapText: "From Wrapper", Placeholder: "From Placeholder", Container: -1, Visible: true},
			{Selector: "input#c", Tag: "input", Type: "text",
				Placeholder: "From Placeholder", Container: -1, Visible: true},
			// No label context at all: dropped as noise.
			{Selector: "input#d", Tag: "input", Type: "text", Container: -1, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 3)
	require.Equal(t, "From Label", fields[0].Label)
	require.Equal(t, "From Wrapper", fields[1].Label)
	require.Equal(t, "From Placeholder", fields[2].Label)
}

func TestGenericScanTypeClassification(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#em", Tag: "input", Type: "email", LabelText: "Work contact", Container: -1, Visible: true},
			{Selector: "input#ph", Tag: "input", Type: "tel", LabelText: "Number", Container: -1, Visible: true},
			{Selector: "textarea#bio", Tag: "textarea", Multiline: true, LabelText: "Bio", Container: -1, Visible: true},
			{Selector: "input#mob", Tag: "input", Type: "text", LabelText: "Mobile", Container: -1, Visible: true},
			{Selector: "input#when", Tag: "input", Type: "text", LabelText: "Start Date", Container: -1, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 5)

	byLabel := map[string]FieldType{}
	for _, f := range fields {
		byLabel[f.Label] = f.Type
	}
	require.Equal(t, TypeEmail, byLabel["Work contact"])
	require.Equal(t, TypePhone, byLabel["Number"])
	require.Equal(t, TypeTextarea, byLabel["Bio"])
	require.Equal(t, TypePhone, byLabel["Mobile"])
	require.Equal(t, TypeDate, byLabel["Start Date"])
}

func TestGenericScanReactSelectWidget(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#state-inner", Tag: "input", Type: "text",
				Class: "select__input", WidgetSelector: "div.select__control",
				WrapText: "State", Container: -1, Visible: false},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)

	f := fields[0]
	require.Equal(t, TypeReactSelect, f.Type)
	// Open clicks land on the container; the hidden input stays addressable.
	require.Equal(t, "div.select__control", f.Selector)
	require.Equal(t, "input#state-inner", f.InputSelector)
}

func TestGenericScanNativeSelectOptions(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "select#country", Tag: "select", LabelText: "Country", Container: -1, Visible: true,
				Options: []page.OptionNode{
					{Value: "", Label: "Select..."},
					{Value: "DE", Label: "Germany"},
					{Value: "FR", Label: "France"},
				}},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, TypeSelect, fields[0].Type)
	require.Len(t, fields[0].Options, 3)
	require.Equal(t, "Germany", fields[0].Options[1].Label)
	require.Equal(t, "DE", fields[0].Options[1].Value)
}

func TestGenericScanHiddenFileInput(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#cv", Tag: "input", Type: "file", WrapText: "Resume", Container: -1, Visible: false},
			{Selector: "input#hp", Tag: "input", Type: "hidden", WrapText: "Trap", Container: -1, Visible: false},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, TypeFile, fields[0].Type)
	require.Equal(t, "Resume", fields[0].Label)
}

func TestStrategyPrecedence(t *testing.T) {
	// The same control is visible to both the container strategy and the
	// generic scan; the container claim must hold.
	snap := &page.Snapshot{
		Containers: []page.Container{
			{Selector: "div[role='listitem']:nth-of-type(1)", Heading: "City"},
		},
		Nodes: []page.Node{
			{Selector: "input#city", Tag: "input", Type: "text", LabelText: "City",
				Container: 0, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, "City", fields[0].Label)
	require.Equal(t, "input#city", fields[0].Selector)
}

func TestDuplicateLabelSameStrategyLastWins(t *testing.T) {
	snap := &page.Snapshot{
		Nodes: []page.Node{
			{Selector: "input#first", Tag: "input", Type: "text", LabelText: "Comment", Container: -1, Visible: true},
			{Selector: "input#second", Tag: "input", Type: "text", LabelText: "Comment", Container: -1, Visible: true},
		},
	}
	fields := newTestDetector().Detect(snap)
	require.Len(t, fields, 1)
	require.Equal(t, "input#second", fields[0].Selector)
}

func TestStripRequiredMarker(t *testing.T) {
	label, required := stripRequiredMarker("Name * *")
	require.Equal(t, "Name", label)
	require.True(t, required)

	label, required = stripRequiredMarker("  Plain ")
	require.Equal(t, "Plain", label)
	require.False(t, required)
}

func TestIDPrefix(t *testing.T) {
	require.Equal(t, "hobby", idPrefix("hobby-1"))
	require.Equal(t, "hobby", idPrefix("hobby_12"))
	require.Equal(t, "opt", idPrefix("opt3"))
	require.Empty(t, idPrefix("standalone"))
	require.Empty(t, idPrefix("42"))
	require.Empty(t, idPrefix(""))
}

func TestSummaryFormat(t *testing.T) {
	fields := []Field{
		{Label: "First Name", Type: TypeText, Required: true},
		{Label: "Gender", Type: TypeRadioGroup, Options: []FieldOption{
			{Label: "Male"}, {Label: "Female"},
		}},
	}
	got := Summary(fields)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, `text * "First Name"`, lines[0])
	require.Equal(t, `radio-group "Gender" (options: [Male, Female])`, lines[1])
}
