package interact

import (
	"context"
	"fmt"
	"strings"

	"github.com/vpetrenko/formfill-agent/internal/discover"
)

// matchOption resolves a value against the option set: exact case-insensitive
// match on option value or label, first exact match wins. No fuzzy matching
// at the option level.
func matchOption(options []discover.FieldOption, value string) *discover.FieldOption {
	for i := range options {
		if strings.EqualFold(options[i].Value, value) || strings.EqualFold(options[i].Label, value) {
			return &options[i]
		}
	}
	return nil
}

// fillChoiceGroup handles radio and checkbox groups. Checkbox groups take one
// or many values and skip options already checked, so re-running is safe.
func (e *Executor) fillChoiceGroup(ctx context.Context, f discover.Field, values []string) (bool, error) {
	for _, v := range values {
		opt := matchOption(f.Options, v)
		if opt == nil {
			return false, fmt.Errorf("option %q not offered by %q", v, f.Label)
		}
		inputSel := opt.InputSelector
		if inputSel == "" {
			inputSel = opt.Selector
		}
		if f.Type == discover.TypeCheckboxGroup {
			if checked, err := e.page.Checked(ctx, inputSel); err == nil && checked {
				continue
			}
		}
		if err := e.page.ScrollTo(ctx, opt.Selector); err != nil {
			e.logger.Debug().Str("selector", opt.Selector).Err(err).Msg("scroll to option failed")
		}
		if err := e.page.Click(ctx, opt.Selector); err != nil {
			return false, fmt.Errorf("click option %q: %w", v, err)
		}
		checked, err := e.page.Checked(ctx, inputSel)
		if err == nil && checked {
			continue
		}
		// One forced retry at an offset before giving up: styled widgets
		// sometimes cover the input's hit area with decoration.
		if err := e.page.ForceClick(ctx, opt.Selector, 4, 4); err != nil {
			return false, fmt.Errorf("option %q did not register: %w", v, err)
		}
		checked, err = e.page.Checked(ctx, inputSel)
		if err != nil || !checked {
			return false, fmt.Errorf("option %q did not register after forced click", v)
		}
	}
	return true, nil
}

func (e *Executor) fillSelect(ctx context.Context, f discover.Field, value string) (bool, error) {
	if len(f.Options) > 0 {
		return e.fillNativeSelect(ctx, f, value)
	}
	return e.fillListbox(ctx, f, value)
}

func (e *Executor) fillNativeSelect(ctx context.Context, f discover.Field, value string) (bool, error) {
	idx := -1
	var want discover.FieldOption
	for i, opt := range f.Options {
		if strings.EqualFold(opt.Value, value) || strings.EqualFold(opt.Label, value) {
			idx, want = i, opt
			break
		}
	}
	if idx < 0 {
		return false, fmt.Errorf("option %q not offered by %q", value, f.Label)
	}
	if err := e.page.SelectByIndex(ctx, f.Selector, idx); err != nil {
		return false, fmt.Errorf("select option %q: %w", value, err)
	}
	got, err := e.page.InputValue(ctx, f.Selector)
	if err != nil {
		return false, nil
	}
	return strings.EqualFold(got, want.Value) || strings.EqualFold(got, want.Label), nil
}

// fillListbox drives a custom listbox-style control: open, read the rendered
// option texts, exact-match, click, close.
func (e *Executor) fillListbox(ctx context.Context, f discover.Field, value string) (bool, error) {
	if err := e.page.Click(ctx, f.Selector); err != nil {
		return false, fmt.Errorf("open listbox: %w", err)
	}
	e.pause(ctx, e.settle)
	optSel := "[role='option']"
	texts, err := e.page.InnerTexts(ctx, optSel)
	if err != nil || len(texts) == 0 {
		e.closeOverlay(ctx, f.Selector)
		return false, fmt.Errorf("listbox %q rendered no options", f.Label)
	}
	for i, t := range texts {
		if strings.EqualFold(strings.TrimSpace(t), value) {
			if err := e.page.ClickNth(ctx, optSel, i); err != nil {
				return false, fmt.Errorf("click option %q: %w", value, err)
			}
			e.pause(ctx, e.settle)
			shown, rerr := e.page.InnerText(ctx, f.Selector)
			if rerr != nil {
				return false, nil
			}
			return strings.Contains(strings.ToLower(shown), strings.ToLower(value)), nil
		}
	}
	e.closeOverlay(ctx, f.Selector)
	return false, fmt.Errorf("option %q not rendered by %q", value, f.Label)
}

// fillReactSelect opens the widget by clicking its container, nudges the menu
// with an arrow key (some implementations render nothing until keyboard
// input), matches option text exactly then by substring, and afterwards
// deliberately hands focus back to the document: this widget class steals
// keyboard focus in a way that blocks every later field if left alone.
func (e *Executor) fillReactSelect(ctx context.Context, f discover.Field, value string) (bool, error) {
	defer e.restoreFocus(ctx)

	if err := e.page.Click(ctx, f.Selector); err != nil {
		return false, fmt.Errorf("open menu: %w", err)
	}
	if err := e.page.Press(ctx, f.Selector, "ArrowDown"); err != nil {
		e.logger.Debug().Str("label", f.Label).Err(err).Msg("menu nudge failed")
	}
	e.pause(ctx, e.settle)

	for _, optSel := range []string{"[class*='menu'] [class*='option']", "[role='option']"} {
		texts, err := e.page.InnerTexts(ctx, optSel)
		if err != nil || len(texts) == 0 {
			continue
		}
		idx := -1
		for i, t := range texts {
			if strings.EqualFold(strings.TrimSpace(t), value) {
				idx = i
				break
			}
		}
		if idx < 0 {
			lower := strings.ToLower(value)
			for i, t := range texts {
				if strings.Contains(strings.ToLower(t), lower) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			continue
		}
		if err := e.page.ClickNth(ctx, optSel, idx); err != nil {
			return false, fmt.Errorf("click menu option %q: %w", value, err)
		}
		e.pause(ctx, e.settle)
		return e.reactSelectShows(ctx, f.Selector, value), nil
	}

	// Menu matching failed: type into the inner input and commit with Enter.
	input := f.InputSelector
	if input == "" {
		input = f.Selector + " input"
	}
	if err := e.page.TypeDelayed(ctx, input, value, e.typeDelay); err != nil {
		return false, fmt.Errorf("type into widget input: %w", err)
	}
	if err := e.page.Press(ctx, input, "Enter"); err != nil {
		return false, fmt.Errorf("commit widget input: %w", err)
	}
	e.pause(ctx, e.settle)
	return e.reactSelectShows(ctx, f.Selector, value), nil
}

func (e *Executor) reactSelectShows(ctx context.Context, selector, value string) bool {
	shown, err := e.page.InnerText(ctx, selector)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(shown), strings.ToLower(value))
}

// restoreFocus clicks outside the widget and blurs whatever holds focus.
func (e *Executor) restoreFocus(ctx context.Context) {
	if err := e.page.Click(ctx, "body"); err != nil {
		e.logger.Debug().Err(err).Msg("outside click failed")
	}
	if _, err := e.page.Evaluate(ctx,
		`() => { if (document.activeElement && document.activeElement.blur) document.activeElement.blur(); }`); err != nil {
		e.logger.Debug().Err(err).Msg("active element blur failed")
	}
}

func (e *Executor) closeOverlay(ctx context.Context, selector string) {
	if err := e.page.Press(ctx, selector, "Escape"); err != nil {
		e.logger.Debug().Str("selector", selector).Err(err).Msg("overlay close failed")
	}
}

// fillAutocomplete commits each value in turn: click, type, give suggestions
// a beat to render, press Enter. A committed value leaves the input empty
// (chip widgets) or verbatim (plain suggest inputs).
func (e *Executor) fillAutocomplete(ctx context.Context, f discover.Field, values []string) (bool, error) {
	verified := true
	for _, v := range values {
		if err := e.page.Click(ctx, f.Selector); err != nil {
			return false, fmt.Errorf("focus autocomplete: %w", err)
		}
		if err := e.page.TypeDelayed(ctx, f.Selector, v, e.typeDelay); err != nil {
			return false, fmt.Errorf("type %q: %w", v, err)
		}
		e.pause(ctx, e.settle)
		if err := e.page.Press(ctx, f.Selector, "Enter"); err != nil {
			return false, fmt.Errorf("commit %q: %w", v, err)
		}
		e.pause(ctx, e.settle)
		got, err := e.page.InputValue(ctx, f.Selector)
		if err != nil || (got != "" && !strings.EqualFold(got, v)) {
			verified = false
		}
	}
	return verified, nil
}
