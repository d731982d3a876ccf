package discover

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vpetrenko/formfill-agent/internal/page"
)

// Detector turns one page snapshot into a deduplicated field list by running
// three strategies in order: structured question containers, native
// radio/checkbox groups, then a generic scan of whatever is left. An earlier
// strategy's claim on a label is never overwritten by a later one.
type Detector struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect never fails on an empty page: zero fields is a valid result and the
// orchestrator decides whether that matters.
func (d *Detector) Detect(snap *page.Snapshot) []Field {
	reg := newRegistry()
	d.structuredContainers(snap, reg)
	d.nativeGroups(snap, reg)
	d.genericScan(snap, reg)
	fields := reg.fields()
	d.logger.Debug().Int("fields", len(fields)).Str("url", snap.URL).Msg("discovery pass done")
	return fields
}

// registry keeps label->field assignment deterministic: first strategy to
// claim a label wins, later duplicates inside the same strategy replace in
// place (last-seen-wins), and every consumed node selector is recorded so a
// later strategy does not re-detect the same element.
type registry struct {
	list       []Field
	strategies []int
	byLabel    map[string]int
	claimed    map[string]bool
}

func newRegistry() *registry {
	return &registry{byLabel: map[string]int{}, claimed: map[string]bool{}}
}

func (r *registry) add(f Field, strategy int, claims ...string) {
	for _, sel := range claims {
		if sel != "" {
			r.claimed[sel] = true
		}
	}
	if f.Label == "" {
		return
	}
	if pos, ok := r.byLabel[f.Label]; ok {
		if r.strategies[pos] < strategy {
			return
		}
		r.list[pos] = f
		return
	}
	r.byLabel[f.Label] = len(r.list)
	r.list = append(r.list, f)
	r.strategies = append(r.strategies, strategy)
}

func (r *registry) isClaimed(selector string) bool {
	return selector != "" && r.claimed[selector]
}

func (r *registry) fields() []Field {
	return r.list
}

// structuredContainers handles pages that wrap each question in a uniform
// repeating container: the container heading is the label and the contained
// control shape decides the type.
func (d *Detector) structuredContainers(snap *page.Snapshot, reg *registry) {
	for ci, c := range snap.Containers {
		label, required := stripRequiredMarker(c.Heading)
		if label == "" {
			continue
		}
		var members []page.Node
		claims := make([]string, 0, 4)
		for _, n := range snap.Nodes {
			if n.Container == ci {
				members = append(members, n)
				claims = append(claims, n.Selector)
			}
		}
		if len(members) == 0 {
			continue
		}

		var radios, checks []page.Node
		var listbox *page.Node
		for i, n := range members {
			switch n.Role {
			case "radio":
				radios = append(radios, n)
			case "checkbox":
				checks = append(checks, n)
			case "listbox":
				if listbox == nil {
					listbox = &members[i]
				}
			}
		}

		f := Field{Label: label, Required: required, Selector: c.Selector}
		switch {
		case len(radios) > 0:
			f.Type = TypeRadioGroup
			f.Options = roleOptions(radios)
		case len(checks) > 0:
			f.Type = TypeCheckboxGroup
			f.Options = roleOptions(checks)
		case listbox != nil:
			f.Type = TypeSelect
			f.Selector = listbox.Selector
			// Option list is rendered on open; resolved at interaction time.
		default:
			entry := firstTextEntry(members)
			if entry == nil {
				continue
			}
			f.Selector = entry.Selector
			f.Name = entry.Name
			f.Disabled = entry.Disabled
			f.ReadOnly = entry.ReadOnly
			switch {
			case entry.Multiline:
				f.Type = TypeTextarea
			default:
				f.Type = refineTextType(label)
			}
		}
		reg.add(f, 1, claims...)
	}
}

// nativeGroups collects native radio/checkbox inputs not claimed above,
// grouped by shared name attribute. Inputs without a name that share a
// structural id prefix (trailing counter stripped) are grouped synthetically.
func (d *Detector) nativeGroups(snap *page.Snapshot, reg *registry) {
	groups := map[string][]page.Node{}
	var order []string
	for _, n := range snap.Nodes {
		if !n.IsChoice() || reg.isClaimed(n.Selector) {
			continue
		}
		// A hidden input is still usable when its visual trigger is an
		// associated label; anything else hidden is a decoy.
		if !n.Visible && n.LabelSelector == "" {
			continue
		}
		key := n.Name
		if key == "" {
			key = idPrefix(n.ID)
		}
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], n)
	}

	for _, key := range order {
		members := groups[key]
		label, required := stripRequiredMarker(groupLabel(members, key))
		gtype := TypeRadioGroup
		if members[0].Type == "checkbox" {
			gtype = TypeCheckboxGroup
		}
		f := Field{Label: label, Type: gtype, Required: required, Name: key}
		claims := make([]string, 0, len(members))
		for _, n := range members {
			if n.Required {
				f.Required = true
			}
			claims = append(claims, n.Selector)
			f.Options = append(f.Options, nativeOption(n))
		}
		if members[0].FieldsetSelector != "" {
			f.Selector = members[0].FieldsetSelector
		} else {
			f.Selector = members[0].Selector
		}
		reg.add(f, 2, claims...)
	}
}

// genericScan picks up every remaining visible control, plus the hidden ones
// whose visibility is irrelevant to interaction (file inputs, custom
// widgets). Elements with no resolvable label are noise, not errors.
func (d *Detector) genericScan(snap *page.Snapshot, reg *registry) {
	for _, n := range snap.Nodes {
		if reg.isClaimed(n.Selector) || n.IsChoice() || n.Type == "hidden" {
			continue
		}
		isFile := n.Tag == "input" && n.Type == "file"
		widget := widgetType(n)
		isSelect := n.Tag == "select"
		if !isFile && widget == "" && !isSelect && !n.IsTextEntry() {
			continue
		}
		if !n.Visible && !isFile && widget == "" {
			continue
		}

		rawLabel := firstNonEmpty(n.LabelText, n.WrapText, n.Placeholder)
		label, required := stripRequiredMarker(rawLabel)
		if label == "" {
			continue
		}
		required = required || n.Required

		f := Field{
			Label:    label,
			Required: required,
			Name:     n.Name,
			Selector: n.Selector,
			Disabled: n.Disabled,
			ReadOnly: n.ReadOnly,
		}
		switch {
		case isFile:
			f.Type = TypeFile
		case widget == TypeReactSelect:
			f.Type = TypeReactSelect
			// The container, not the hidden inner input, must receive the
			// open/close click.
			if n.WidgetSelector != "" {
				f.Selector = n.WidgetSelector
				f.InputSelector = n.Selector
			}
		case widget != "":
			f.Type = widget
			if widget == TypeTimeGroup && n.WidgetSelector != "" {
				f.Selector = n.WidgetSelector
				f.InputSelector = n.Selector
			}
		case isSelect:
			f.Type = TypeSelect
			for _, opt := range n.Options {
				f.Options = append(f.Options, FieldOption{
					Value:    opt.Value,
					Label:    firstNonEmpty(opt.Label, opt.Value),
					Selector: opt.Selector,
				})
			}
		case n.Multiline:
			f.Type = TypeTextarea
		default:
			f.Type = inputTextType(n, label)
		}
		reg.add(f, 3, n.Selector)
	}
}

func roleOptions(nodes []page.Node) []FieldOption {
	opts := make([]FieldOption, 0, len(nodes))
	for _, n := range nodes {
		label := firstNonEmpty(n.Text, n.AriaLabel, n.Value)
		opts = append(opts, FieldOption{
			ID:       n.ID,
			Value:    firstNonEmpty(n.Value, label),
			Label:    label,
			Selector: n.Selector,
		})
	}
	return opts
}

func nativeOption(n page.Node) FieldOption {
	opt := FieldOption{
		ID:       n.ID,
		Value:    n.Value,
		Label:    firstNonEmpty(n.LabelText, n.Value),
		Selector: n.Selector,
	}
	// Inputs are frequently visually hidden behind styled labels; clicking
	// the label is the reliable path, the input stays for verification.
	if n.LabelSelector != "" {
		opt.Selector = n.LabelSelector
		opt.InputSelector = n.Selector
	}
	return opt
}

func groupLabel(members []page.Node, key string) string {
	for _, n := range members {
		if n.LegendText != "" {
			return n.LegendText
		}
	}
	for _, n := range members {
		if n.WrapText != "" {
			return n.WrapText
		}
	}
	for _, n := range members {
		if n.PrecedingLabel != "" {
			return n.PrecedingLabel
		}
	}
	return key
}

func firstTextEntry(members []page.Node) *page.Node {
	for i, n := range members {
		if n.Tag == "input" && !n.Multiline && n.IsTextEntry() {
			return &members[i]
		}
	}
	for i, n := range members {
		if n.Multiline {
			return &members[i]
		}
	}
	for i, n := range members {
		if n.Editable {
			return &members[i]
		}
	}
	return nil
}

func widgetType(n page.Node) FieldType {
	marker := strings.ToLower(n.Class + " " + n.ID)
	switch {
	case strings.Contains(marker, "react-select") || strings.Contains(marker, "select__"):
		return TypeReactSelect
	case strings.Contains(marker, "datepicker") || strings.Contains(marker, "date-picker"):
		return TypeDatePicker
	case strings.Contains(marker, "timepicker") || strings.Contains(marker, "time-picker"):
		return TypeTimeGroup
	case strings.Contains(marker, "autocomplete") || strings.Contains(marker, "typeahead"):
		return TypeAutocomplete
	}
	return ""
}

func inputTextType(n page.Node, label string) FieldType {
	switch n.Type {
	case "email":
		return TypeEmail
	case "tel":
		return TypePhone
	case "date":
		return TypeDate
	case "time":
		return TypeTimeGroup
	}
	return refineTextType(label)
}

func refineTextType(label string) FieldType {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "email"):
		return TypeEmail
	case strings.Contains(l, "phone") || strings.Contains(l, "mobile"):
		return TypePhone
	case strings.Contains(l, "date"):
		return TypeDate
	}
	return TypeText
}

func stripRequiredMarker(s string) (label string, required bool) {
	label = strings.TrimSpace(s)
	for strings.HasSuffix(label, "*") {
		required = true
		label = strings.TrimSpace(strings.TrimSuffix(label, "*"))
	}
	return label, required
}

var trailingCounter = regexp.MustCompile(`[-_]?[0-9]+$`)

// idPrefix derives a synthetic group key from a structural id like
// "hobby-1" / "hobby-2". Ids without a trailing counter do not group.
func idPrefix(id string) string {
	if id == "" {
		return ""
	}
	prefix := trailingCounter.ReplaceAllString(id, "")
	if prefix == id || prefix == "" {
		return ""
	}
	return prefix
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
