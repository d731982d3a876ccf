package fill

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vpetrenko/formfill-agent/internal/discover"
	"github.com/vpetrenko/formfill-agent/internal/interact"
	"github.com/vpetrenko/formfill-agent/internal/page"
)

// Ops exposes the engine as narrow single-step operations, each
// independently invokable and verifiable. The external agent loop calls
// these one at a time instead of RunFill.
type Ops struct {
	page     page.Capability
	detector *discover.Detector
	exec     *interact.Executor
	logger   zerolog.Logger

	// fields caches the last detection pass; fill/select steps address
	// fields by label against this cache.
	fields []discover.Field
}

func NewOps(p page.Capability, logger zerolog.Logger) *Ops {
	return &Ops{
		page:     p,
		detector: discover.New(logger.With().Str("comp", "discover").Logger()),
		exec:     interact.New(p, logger.With().Str("comp", "interact").Logger()),
		logger:   logger,
	}
}

// Tool describes one operation for tool-calling callers.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// OpResult carries a human-readable observation of what the step did.
type OpResult struct {
	Observation string
}

// Describe lists the operation set in a tool-calling friendly shape.
func (o *Ops) Describe() []Tool {
	return []Tool{
		newTool("navigate", "Open the form URL and wait for it to load",
			schema{"url": str("url to open")}, []string{"url"}),
		newTool("detect_fields", "Scan the page and return one line per detected field",
			schema{}, nil),
		newTool("fill_field", "Fill one detected field by its label",
			schema{"label": str("field label from detect_fields"), "value": str("value to enter")},
			[]string{"label", "value"}),
		newTool("select_option", "Select one option of a grouped field by label",
			schema{"label": str("field label"), "option": str("option text")},
			[]string{"label", "option"}),
		newTool("submit", "Click the submit control and confirm submission",
			schema{}, nil),
	}
}

// Invoke dispatches one named operation. Unknown names are errors, not
// silent no-ops.
func (o *Ops) Invoke(ctx context.Context, name string, input map[string]any) (OpResult, error) {
	switch name {
	case "navigate":
		url, err := requiredString(input, "url")
		if err != nil {
			return OpResult{}, err
		}
		return o.Navigate(ctx, url)
	case "detect_fields":
		return o.DetectFields(ctx)
	case "fill_field":
		label, err := requiredString(input, "label")
		if err != nil {
			return OpResult{}, err
		}
		value, err := requiredString(input, "value")
		if err != nil {
			return OpResult{}, err
		}
		return o.FillField(ctx, label, value)
	case "select_option":
		label, err := requiredString(input, "label")
		if err != nil {
			return OpResult{}, err
		}
		option, err := requiredString(input, "option")
		if err != nil {
			return OpResult{}, err
		}
		return o.SelectOption(ctx, label, option)
	case "submit":
		return o.Submit(ctx)
	default:
		return OpResult{}, fmt.Errorf("unknown operation %s", name)
	}
}

func (o *Ops) Navigate(ctx context.Context, url string) (OpResult, error) {
	if err := o.page.Navigate(ctx, url); err != nil {
		return OpResult{}, fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}
	return OpResult{Observation: fmt.Sprintf("opened %s", url)}, nil
}

// DetectFields refreshes the field cache and returns the per-field digest,
// one line per field, the format collaborators consume verbatim.
func (o *Ops) DetectFields(ctx context.Context) (OpResult, error) {
	snap, err := o.page.Snapshot(ctx)
	if err != nil {
		return OpResult{}, fmt.Errorf("page scan: %w", err)
	}
	o.fields = o.detector.Detect(snap)
	if len(o.fields) == 0 {
		return OpResult{Observation: "no form fields detected"}, nil
	}
	return OpResult{Observation: discover.Summary(o.fields)}, nil
}

func (o *Ops) FillField(ctx context.Context, label, value string) (OpResult, error) {
	f, err := o.fieldByLabel(label)
	if err != nil {
		return OpResult{}, err
	}
	out := o.exec.Fill(ctx, *f, value)
	if out.Failed() {
		return OpResult{}, fmt.Errorf("field %q with value %q: %s", f.Label, out.AttemptedValue, out.Err)
	}
	return OpResult{Observation: describeOutcome(out)}, nil
}

func (o *Ops) SelectOption(ctx context.Context, label, option string) (OpResult, error) {
	f, err := o.fieldByLabel(label)
	if err != nil {
		return OpResult{}, err
	}
	if !f.Type.Grouped() {
		return OpResult{}, fmt.Errorf("field %q (%s) has no options to select", f.Label, f.Type)
	}
	out := o.exec.Fill(ctx, *f, option)
	if out.Failed() {
		return OpResult{}, fmt.Errorf("field %q option %q: %s", f.Label, option, out.Err)
	}
	return OpResult{Observation: describeOutcome(out)}, nil
}

func (o *Ops) Submit(ctx context.Context) (OpResult, error) {
	orch := NewOrchestrator(o.page, o.logger, Options{})
	firstSelector := ""
	if len(o.fields) > 0 {
		firstSelector = o.fields[0].Selector
	}
	if err := orch.submit(ctx, firstSelector); err != nil {
		return OpResult{}, err
	}
	return OpResult{Observation: "form submitted and confirmed"}, nil
}

func (o *Ops) fieldByLabel(label string) (*discover.Field, error) {
	if len(o.fields) == 0 {
		return nil, fmt.Errorf("no detected fields: run detect_fields first")
	}
	for i := range o.fields {
		if strings.EqualFold(o.fields[i].Label, label) {
			return &o.fields[i], nil
		}
	}
	return nil, fmt.Errorf("no detected field labeled %q", label)
}

func describeOutcome(out interact.Outcome) string {
	state := "filled and verified"
	if !out.Verified {
		state = "filled, not verified"
	}
	return fmt.Sprintf("%s %q with %q", state, out.Field.Label, out.AttemptedValue)
}

type schema map[string]any

func newTool(name, desc string, props schema, required []string) Tool {
	return Tool{
		Name:        name,
		Description: desc,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func requiredString(input map[string]any, key string) (string, error) {
	val, ok := input[key]
	if !ok {
		return "", fmt.Errorf("field %s required", key)
	}
	s, ok := val.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("field %s must be a non-empty string", key)
	}
	return s, nil
}
