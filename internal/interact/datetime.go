package interact

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vpetrenko/formfill-agent/internal/discover"
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// parseDate accepts the common caller formats. Anything unparseable fails
// fast, before any DOM interaction.
func parseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", value)
}

func (e *Executor) fillDate(ctx context.Context, f discover.Field, value string) (bool, error) {
	date, err := parseDate(value)
	if err != nil {
		return false, err
	}
	iso := date.Format("2006-01-02")

	input := f.Selector
	if f.InputSelector != "" {
		input = f.InputSelector
	}

	// Native-like inputs take the ISO string directly.
	if f.Type == discover.TypeDate {
		if err := e.enterText(ctx, input, iso); err != nil {
			return false, err
		}
		got, rerr := e.page.InputValue(ctx, input)
		if rerr != nil {
			return false, nil
		}
		return sameDate(got, date), nil
	}

	// Picker widget: open the overlay and drive it.
	if err := e.page.Click(ctx, input); err != nil {
		return false, fmt.Errorf("open picker: %w", err)
	}
	overlay := "[class*='datepicker']:not(input)"
	if werr := e.page.WaitVisible(ctx, overlay, widgetWait); werr == nil {
		if err := e.drivePicker(ctx, overlay, date); err == nil {
			e.pause(ctx, e.settle)
			got, rerr := e.page.InputValue(ctx, input)
			if rerr == nil && sameDate(got, date) {
				return true, nil
			}
		}
	}

	// Overlay missing or uncooperative: type a localized date string.
	localized := date.Format("01/02/2006")
	if err := e.enterText(ctx, input, localized); err != nil {
		return false, fmt.Errorf("type date fallback: %w", err)
	}
	got, rerr := e.page.InputValue(ctx, input)
	if rerr != nil {
		return false, nil
	}
	return sameDate(got, date), nil
}

// drivePicker selects month and year controls, then clicks the day cell.
func (e *Executor) drivePicker(ctx context.Context, overlay string, date time.Time) error {
	monthSel := overlay + " select:nth-of-type(1)"
	if ok, _ := e.page.Exists(ctx, monthSel); ok {
		if err := e.page.SelectByIndex(ctx, monthSel, int(date.Month())-1); err != nil {
			return fmt.Errorf("select month: %w", err)
		}
	}
	yearSel := overlay + " select:nth-of-type(2)"
	if ok, _ := e.page.Exists(ctx, yearSel); ok {
		years, err := e.page.InnerTexts(ctx, yearSel+" option")
		if err != nil {
			return fmt.Errorf("read years: %w", err)
		}
		want := strconv.Itoa(date.Year())
		idx := -1
		for i, y := range years {
			if strings.TrimSpace(y) == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("year %s not offered by picker", want)
		}
		if err := e.page.SelectByIndex(ctx, yearSel, idx); err != nil {
			return fmt.Errorf("select year: %w", err)
		}
	}

	daySel := overlay + " [class*='day']:not([class*='outside'])"
	days, err := e.page.InnerTexts(ctx, daySel)
	if err != nil {
		return fmt.Errorf("read day cells: %w", err)
	}
	want := strconv.Itoa(date.Day())
	for i, d := range days {
		if strings.TrimSpace(d) == want {
			return e.page.ClickNth(ctx, daySel, i)
		}
	}
	return fmt.Errorf("day %s not found in picker", want)
}

func sameDate(got string, want time.Time) bool {
	got = strings.TrimSpace(got)
	if got == "" {
		return false
	}
	if t, err := parseDate(got); err == nil {
		return t.Year() == want.Year() && t.Month() == want.Month() && t.Day() == want.Day()
	}
	return false
}

var meridiemToken = regexp.MustCompile(`(?i)\b(am|pm)\b`)

type timeValue struct {
	hour     string
	minute   string
	meridiem string // "AM" or "PM"
}

// parseTime normalizes "HH:MM" with an optional am/pm marker. Meridiem comes
// from an explicit token when present, otherwise from hour >= 12.
func parseTime(value string) (timeValue, error) {
	v := strings.TrimSpace(value)
	meridiem := ""
	if m := meridiemToken.FindString(v); m != "" {
		meridiem = strings.ToUpper(m)
		v = strings.TrimSpace(meridiemToken.ReplaceAllString(v, ""))
	}
	parts := strings.Split(v, ":")
	if len(parts) < 2 {
		return timeValue{}, fmt.Errorf("time %q needs at least hour:minute", value)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return timeValue{}, fmt.Errorf("bad hour in %q", value)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return timeValue{}, fmt.Errorf("bad minute in %q", value)
	}
	if meridiem == "" {
		if hour >= 12 {
			meridiem = "PM"
		} else {
			meridiem = "AM"
		}
	}
	return timeValue{
		hour:     strconv.Itoa(hour),
		minute:   fmt.Sprintf("%02d", minute),
		meridiem: meridiem,
	}, nil
}

func (e *Executor) fillTimeGroup(ctx context.Context, f discover.Field, value string) (bool, error) {
	tv, err := parseTime(value)
	if err != nil {
		return false, err
	}

	hourSel, err := e.resolveSubInput(ctx, f.Selector, "hour", 1)
	if err != nil {
		return false, err
	}
	minuteSel, err := e.resolveSubInput(ctx, f.Selector, "minute", 2)
	if err != nil {
		return false, err
	}

	if err := e.typeSubInput(ctx, hourSel, tv.hour); err != nil {
		return false, fmt.Errorf("hour: %w", err)
	}
	if err := e.typeSubInput(ctx, minuteSel, tv.minute); err != nil {
		return false, fmt.Errorf("minute: %w", err)
	}
	e.selectMeridiem(ctx, f.Selector, hourSel, tv.meridiem)

	// Read-back on every numeric sub-input; all must match exactly.
	gotHour, herr := e.page.InputValue(ctx, hourSel)
	gotMinute, merr := e.page.InputValue(ctx, minuteSel)
	if herr != nil || merr != nil {
		return false, nil
	}
	return strings.TrimSpace(gotHour) == tv.hour && strings.TrimSpace(gotMinute) == tv.minute, nil
}

// resolveSubInput probes marker-based selectors before falling back to
// positional addressing inside the group container.
func (e *Executor) resolveSubInput(ctx context.Context, root, marker string, nth int) (string, error) {
	candidates := []string{
		fmt.Sprintf("%s input[class*='%s']", root, marker),
		fmt.Sprintf("%s input[name*='%s']", root, marker),
		fmt.Sprintf("%s [class*='%s'] input", root, marker),
		fmt.Sprintf("%s input:nth-of-type(%d)", root, nth),
	}
	for _, sel := range candidates {
		if ok, _ := e.page.Exists(ctx, sel); ok {
			return sel, nil
		}
	}
	return "", fmt.Errorf("no %s sub-input under %s", marker, root)
}

// typeSubInput clicks, clears, and types digit by digit. Time widgets are
// the classic fast-input droppers.
func (e *Executor) typeSubInput(ctx context.Context, selector, digits string) error {
	if err := e.page.Click(ctx, selector); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	if err := e.page.Clear(ctx, selector); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return e.page.TypeDelayed(ctx, selector, digits, e.typeDelay)
}

// selectMeridiem prefers an exact text match among the group's option
// elements, then falls back to the single-keystroke shortcut. Failure here
// is not fatal: the numeric read-back decides the outcome.
func (e *Executor) selectMeridiem(ctx context.Context, root, hourSel, meridiem string) {
	for _, optSel := range []string{root + " [role='option']", root + " li", root + " select option"} {
		texts, err := e.page.InnerTexts(ctx, optSel)
		if err != nil || len(texts) == 0 {
			continue
		}
		for i, t := range texts {
			if strings.EqualFold(strings.TrimSpace(t), meridiem) {
				if strings.HasSuffix(optSel, "option") && !strings.HasSuffix(optSel, "[role='option']") {
					if err := e.page.SelectByIndex(ctx, root+" select", i); err == nil {
						return
					}
					continue
				}
				if err := e.page.ClickNth(ctx, optSel, i); err == nil {
					return
				}
			}
		}
	}
	key := "a"
	if meridiem == "PM" {
		key = "p"
	}
	if err := e.page.Press(ctx, hourSel, key); err != nil {
		e.logger.Debug().Str("meridiem", meridiem).Err(err).Msg("meridiem shortcut failed")
	}
}
