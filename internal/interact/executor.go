// Package interact executes one type-specific fill protocol per field, with
// verification and an internal fallback chain. Handlers own their retries;
// the orchestrator never retries a handler from outside.
package interact

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vpetrenko/formfill-agent/internal/discover"
	"github.com/vpetrenko/formfill-agent/internal/page"
)

const (
	defaultTypeDelay = 60 * time.Millisecond
	defaultSettle    = 400 * time.Millisecond
	widgetWait       = 3 * time.Second
)

// Outcome is the per-field result reported upward. Soft marks failures the
// orchestrator should log and move past even on required fields (file
// attachments mostly).
type Outcome struct {
	Field          discover.Field
	AttemptedValue string
	Verified       bool
	Soft           bool
	Err            string
}

func (o Outcome) Failed() bool { return o.Err != "" }

// Executor drives the page through one field's protocol at a time. It holds
// no state between calls beyond the page handle itself.
type Executor struct {
	page      page.Capability
	logger    zerolog.Logger
	typeDelay time.Duration
	settle    time.Duration
}

func New(p page.Capability, logger zerolog.Logger) *Executor {
	return &Executor{page: p, logger: logger, typeDelay: defaultTypeDelay, settle: defaultSettle}
}

// WithTypeDelay overrides the per-keystroke delay. Zero keeps the default.
func (e *Executor) WithTypeDelay(d time.Duration) *Executor {
	if d > 0 {
		e.typeDelay = d
	}
	return e
}

// Fill dispatches to the handler for the field's type. It never panics and
// never throws past the Outcome: every failure mode ends up in Outcome.Err.
func (e *Executor) Fill(ctx context.Context, f discover.Field, value string) Outcome {
	out := Outcome{Field: f, AttemptedValue: value}
	if err := ctx.Err(); err != nil {
		out.Err = err.Error()
		return out
	}
	e.logger.Debug().Str("label", f.Label).Str("type", string(f.Type)).Str("value", value).Msg("fill field")

	var err error
	switch f.Type {
	case discover.TypeText, discover.TypeTextarea:
		out.Verified, err = e.fillText(ctx, f, value)
	case discover.TypeEmail:
		out.Verified, err = e.fillEmail(ctx, f, value)
	case discover.TypePhone:
		out.AttemptedValue = digitsOnly(value)
		out.Verified, err = e.fillPhone(ctx, f, out.AttemptedValue)
	case discover.TypeDate, discover.TypeDatePicker:
		out.Verified, err = e.fillDate(ctx, f, value)
	case discover.TypeTimeGroup:
		out.Verified, err = e.fillTimeGroup(ctx, f, value)
	case discover.TypeRadioGroup:
		out.Verified, err = e.fillChoiceGroup(ctx, f, []string{value})
	case discover.TypeCheckboxGroup:
		out.Verified, err = e.fillChoiceGroup(ctx, f, splitValues(value))
	case discover.TypeSelect:
		out.Verified, err = e.fillSelect(ctx, f, value)
	case discover.TypeReactSelect:
		out.Verified, err = e.fillReactSelect(ctx, f, value)
	case discover.TypeAutocomplete:
		out.Verified, err = e.fillAutocomplete(ctx, f, splitValues(value))
	case discover.TypeFile:
		out.Soft = true
		out.Verified, err = e.fillFile(ctx, f, value)
	default:
		err = fmt.Errorf("no handler for field type %q", f.Type)
	}
	if err != nil {
		out.Err = err.Error()
		e.logger.Warn().
			Str("label", f.Label).
			Str("value", value).
			Str("kind", string(classifyError(err))).
			Err(err).
			Msg("field fill failed")
	}
	return out
}

// fillText clears, types, and blurs. Verification is a verbatim read-back.
func (e *Executor) fillText(ctx context.Context, f discover.Field, value string) (bool, error) {
	if err := e.enterText(ctx, f.Selector, value); err != nil {
		return false, err
	}
	got, err := e.page.InputValue(ctx, f.Selector)
	if err != nil {
		return false, nil
	}
	return got == value, nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (e *Executor) fillEmail(ctx context.Context, f discover.Field, value string) (bool, error) {
	if !emailPattern.MatchString(value) {
		return false, fmt.Errorf("value %q is not an email address", value)
	}
	if err := e.enterText(ctx, f.Selector, value); err != nil {
		return false, err
	}
	got, err := e.page.InputValue(ctx, f.Selector)
	if err != nil {
		return false, nil
	}
	return got == value && emailPattern.MatchString(got), nil
}

func (e *Executor) fillPhone(ctx context.Context, f discover.Field, digits string) (bool, error) {
	if err := e.enterText(ctx, f.Selector, digits); err != nil {
		return false, err
	}
	got, err := e.page.InputValue(ctx, f.Selector)
	if err != nil {
		return false, nil
	}
	// Widgets reformat phone numbers freely; ten digits surviving is enough.
	return len(digitsOnly(got)) >= 10, nil
}

func (e *Executor) enterText(ctx context.Context, selector, value string) error {
	if err := e.page.ScrollTo(ctx, selector); err != nil {
		e.logger.Debug().Str("selector", selector).Err(err).Msg("scroll before type failed")
	}
	if err := e.page.Clear(ctx, selector); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := e.page.Fill(ctx, selector, value); err != nil {
		// Some controlled inputs reject programmatic fill; keystrokes work.
		// A broken selector or missing element is not worth retyping against.
		if !retryWorthTyping(classifyError(err)) {
			return fmt.Errorf("fill: %w", err)
		}
		if terr := e.page.TypeDelayed(ctx, selector, value, e.typeDelay); terr != nil {
			return fmt.Errorf("fill: %w", err)
		}
	}
	if err := e.page.Blur(ctx, selector); err != nil {
		e.logger.Debug().Str("selector", selector).Err(err).Msg("blur failed")
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitValues turns a multi-value string into its parts. Checkbox groups and
// autocomplete fields accept "a, b; c" style lists.
func splitValues(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(value)}
	}
	return out
}

func (e *Executor) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
