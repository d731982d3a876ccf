package fill

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vpetrenko/formfill-agent/internal/discover"
	"github.com/vpetrenko/formfill-agent/internal/interact"
	"github.com/vpetrenko/formfill-agent/internal/mapper"
	"github.com/vpetrenko/formfill-agent/internal/page"
)

// typePriority is the fixed fill order. Widgets that open overlays go late
// so their menus cannot occlude targets that are still pending; file inputs
// go last because attachment dialogs are the most disruptive of all.
var typePriority = map[discover.FieldType]int{
	discover.TypeText:          0,
	discover.TypeEmail:         0,
	discover.TypePhone:         0,
	discover.TypeTextarea:      0,
	discover.TypeRadioGroup:    1,
	discover.TypeCheckboxGroup: 2,
	discover.TypeSelect:        3,
	discover.TypeDate:          4,
	discover.TypeDatePicker:    4,
	discover.TypeTimeGroup:     4,
	discover.TypeReactSelect:   5,
	discover.TypeAutocomplete:  5,
	discover.TypeFile:          6,
}

// submitSelectors is the prioritized probe list for the submit control; the
// full-DOM text scan below is the fallback.
var submitSelectors = []string{
	"button[type='submit']",
	"input[type='submit']",
	"button[id*='submit']",
	"button[class*='submit']",
	"[role='button'][id*='submit']",
}

const clickableScan = "button, input[type='button'], [role='button'], a"

var successPattern = regexp.MustCompile(
	`(?i)(thank you|thanks for|success|submitted|has been recorded|response received)`)

// Options tunes one orchestrator. Zero values get sensible defaults.
type Options struct {
	RequiredPolicy Policy
	SettleWait     time.Duration
	SubmitWait     time.Duration
	TypeDelay      time.Duration
}

// ValidationSummary reports required-field coverage for the caller.
type ValidationSummary struct {
	TotalRequired   int
	FilledRequired  int
	MissingRequired []string
}

// Result is what RunFill hands upward. Log mirrors the lines written to the
// job context so callers without a persistent job store still get the record.
type Result struct {
	FinalState State
	Summary    ValidationSummary
	Outcomes   []interact.Outcome
	Log        []string
}

// Orchestrator owns the QUEUED -> INSPECTING -> FILLING -> SUBMITTING state
// machine for one job at a time. Discovery output is an immutable snapshot
// for the rest of the job; a form that mutates mid-fill is not re-inspected.
type Orchestrator struct {
	page     page.Capability
	detector *discover.Detector
	exec     *interact.Executor
	logger   zerolog.Logger
	opts     Options
}

func NewOrchestrator(p page.Capability, logger zerolog.Logger, opts Options) *Orchestrator {
	if opts.RequiredPolicy == "" {
		opts.RequiredPolicy = PolicyStrict
	}
	if opts.SettleWait <= 0 {
		opts.SettleWait = 500 * time.Millisecond
	}
	if opts.SubmitWait <= 0 {
		opts.SubmitWait = 2 * time.Second
	}
	exec := interact.New(p, logger.With().Str("comp", "interact").Logger()).
		WithTypeDelay(opts.TypeDelay)
	return &Orchestrator{
		page:     p,
		detector: discover.New(logger.With().Str("comp", "discover").Logger()),
		exec:     exec,
		logger:   logger,
		opts:     opts,
	}
}

// OrderFields sorts by the fixed type priority, keeping discovery order
// within a priority class.
func OrderFields(fields []discover.Field) []discover.Field {
	ordered := append([]discover.Field(nil), fields...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priorityOf(ordered[i].Type) < priorityOf(ordered[j].Type)
	})
	return ordered
}

func priorityOf(t discover.FieldType) int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

// RunFill drives one whole attempt: discovery, mapping, ordered interaction,
// submission, confirmation. It reports the terminal state instead of
// returning an error; the taxonomy message lands in the job context.
func (o *Orchestrator) RunFill(ctx context.Context, job JobContext, formURL string, data *Data) Result {
	res := Result{FinalState: StateQueued}
	logLine := func(message, level string) {
		job.Log(message, level)
		res.Log = append(res.Log, fmt.Sprintf("[%s] %s", level, message))
	}
	fail := func(err error) Result {
		job.SetError(err.Error())
		logLine(err.Error(), "error")
		job.UpdateState(StateFailed)
		res.FinalState = StateFailed
		return res
	}

	job.UpdateState(StateInspecting)
	if err := o.page.Navigate(ctx, formURL); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrNavigationTimeout, err))
	}
	// Let late-rendering widgets land in the DOM before the one-shot scan.
	o.wait(ctx, o.opts.SettleWait)
	snap, err := o.page.Snapshot(ctx)
	if err != nil {
		return fail(fmt.Errorf("page scan: %v", err))
	}
	fields := o.detector.Detect(snap)
	job.SetDetectedFields(fields)
	logLine(fmt.Sprintf("discovered %d fields", len(fields)), "info")
	if len(fields) == 0 && data.Len() > 0 {
		return fail(ErrDiscoveryEmpty)
	}

	job.UpdateState(StateFilling)
	mapping := mapper.Map(fields, data.Keys())
	job.SetFieldMapping(mapping)

	for _, f := range fields {
		if f.Required {
			res.Summary.TotalRequired++
		}
	}

	var missing []string
	firstSelector := ""
	if len(fields) > 0 {
		firstSelector = fields[0].Selector
	}

	for _, f := range OrderFields(fields) {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("job cancelled: %v", err))
		}
		if f.Disabled || f.ReadOnly {
			logLine(fmt.Sprintf("skipping %q: target is disabled or read-only", f.Label), "info")
			continue
		}
		key, ok := mapping[f.Key()]
		if !ok {
			if f.Required {
				// Unmapped required fields warn but do not block: the
				// caller decides whether the gap matters.
				missing = append(missing, f.Label)
				logLine(fmt.Sprintf("required field %q has no matching data key", f.Label), "warn")
			}
			continue
		}
		value, _ := data.Get(key)
		out := o.exec.Fill(ctx, f, value)
		res.Outcomes = append(res.Outcomes, out)
		if out.Failed() {
			if f.Required && !out.Soft && o.opts.RequiredPolicy == PolicyStrict {
				return fail(fmt.Errorf("required field %q failed with value %q: %s",
					f.Label, out.AttemptedValue, out.Err))
			}
			logLine(fmt.Sprintf("field %q failed with value %q: %s (continuing)",
				f.Label, out.AttemptedValue, out.Err), "warn")
			continue
		}
		if f.Required {
			res.Summary.FilledRequired++
		}
		if !out.Verified {
			logLine(fmt.Sprintf("field %q filled but not verified", f.Label), "warn")
		}
	}
	res.Summary.MissingRequired = missing
	job.SetMissingFields(missing)

	job.UpdateState(StateSubmitting)
	if err := o.submit(ctx, firstSelector); err != nil {
		return fail(err)
	}

	job.UpdateState(StateCompleted)
	res.FinalState = StateCompleted
	return res
}

// submit clicks the submit control and demands a positive confirmation
// signal. A click that lands but confirms nothing is still a failure.
func (o *Orchestrator) submit(ctx context.Context, firstSelector string) error {
	preURL := o.page.URL()

	clicked := false
	for _, sel := range submitSelectors {
		ok, err := o.page.Exists(ctx, sel)
		if err != nil || !ok {
			continue
		}
		if err := o.page.Click(ctx, sel); err == nil {
			o.logger.Debug().Str("selector", sel).Msg("submit clicked")
			clicked = true
			break
		}
	}
	if !clicked {
		// Full scan for any clickable whose text says submit.
		texts, err := o.page.InnerTexts(ctx, clickableScan)
		if err == nil {
			for i, t := range texts {
				if strings.Contains(strings.ToLower(t), "submit") {
					if err := o.page.ClickNth(ctx, clickableScan, i); err == nil {
						clicked = true
						break
					}
				}
			}
		}
	}
	if !clicked {
		return ErrSubmitNotFound
	}

	o.wait(ctx, o.opts.SubmitWait)

	if body, err := o.page.BodyText(ctx); err == nil && successPattern.MatchString(body) {
		return nil
	}
	if o.page.URL() != preURL {
		return nil
	}
	if firstSelector != "" {
		if ok, err := o.page.Visible(ctx, firstSelector); err == nil && !ok {
			return nil
		}
	}
	return ErrSubmitUnconfirmed
}

func (o *Orchestrator) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
