package interact

import (
	"context"
	"fmt"
	"time"

	"github.com/vpetrenko/formfill-agent/internal/page"
)

// fakePage is a scripted in-memory page. Selector behavior is configured per
// test; every call is recorded for interaction-order assertions.
type fakePage struct {
	values  map[string]string
	checked map[string]bool
	exists  map[string]bool
	visible map[string]bool
	texts   map[string][]string
	inner   map[string]string
	files   map[string][]string
	body    string
	url     string
	snap    *page.Snapshot

	// clickSets / forceSets mark an input checked when its click target is
	// clicked, mimicking label-for association.
	clickSets map[string]string
	forceSets map[string]string
	// selectValues holds per-select option values applied by SelectByIndex.
	selectValues map[string][]string
	// enterClears lists inputs that empty themselves when Enter commits
	// (chip-style autocomplete widgets).
	enterClears map[string]bool
	failFill    map[string]bool
	navErr      error

	calls []string
}

func newFakePage() *fakePage {
	return &fakePage{
		values:       map[string]string{},
		checked:      map[string]bool{},
		exists:       map[string]bool{},
		visible:      map[string]bool{},
		texts:        map[string][]string{},
		inner:        map[string]string{},
		files:        map[string][]string{},
		clickSets:    map[string]string{},
		forceSets:    map[string]string{},
		selectValues: map[string][]string{},
		enterClears:  map[string]bool{},
		failFill:     map[string]bool{},
	}
}

func (p *fakePage) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) called(call string) bool {
	for _, c := range p.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	if p.navErr != nil {
		return p.navErr
	}
	p.url = url
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Snapshot(ctx context.Context) (*page.Snapshot, error) {
	p.record("snapshot")
	if p.snap == nil {
		return &page.Snapshot{URL: p.url}, nil
	}
	return p.snap, nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.record("click %s", selector)
	if target, ok := p.clickSets[selector]; ok {
		p.checked[target] = true
	}
	return nil
}

func (p *fakePage) ClickNth(ctx context.Context, selector string, index int) error {
	p.record("clicknth %s %d", selector, index)
	return nil
}

func (p *fakePage) ForceClick(ctx context.Context, selector string, offsetX, offsetY float64) error {
	p.record("forceclick %s", selector)
	if target, ok := p.forceSets[selector]; ok {
		p.checked[target] = true
	}
	return nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.record("fill %s", selector)
	if p.failFill[selector] {
		return fmt.Errorf("element rejects programmatic fill")
	}
	p.values[selector] = value
	return nil
}

func (p *fakePage) Clear(ctx context.Context, selector string) error {
	p.record("clear %s", selector)
	p.values[selector] = ""
	return nil
}

func (p *fakePage) TypeDelayed(ctx context.Context, selector, text string, delay time.Duration) error {
	p.record("type %s", selector)
	p.values[selector] += text
	return nil
}

func (p *fakePage) Press(ctx context.Context, selector, key string) error {
	p.record("press %s %s", selector, key)
	if key == "Enter" && p.enterClears[selector] {
		p.values[selector] = ""
	}
	return nil
}

func (p *fakePage) Blur(ctx context.Context, selector string) error {
	p.record("blur %s", selector)
	return nil
}

func (p *fakePage) ScrollTo(ctx context.Context, selector string) error {
	p.record("scroll %s", selector)
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	p.record("waitvisible %s", selector)
	if !p.visible[selector] {
		return fmt.Errorf("%s not visible", selector)
	}
	return nil
}

func (p *fakePage) Exists(ctx context.Context, selector string) (bool, error) {
	return p.exists[selector], nil
}

func (p *fakePage) Visible(ctx context.Context, selector string) (bool, error) {
	return p.visible[selector], nil
}

func (p *fakePage) InputValue(ctx context.Context, selector string) (string, error) {
	return p.values[selector], nil
}

func (p *fakePage) Checked(ctx context.Context, selector string) (bool, error) {
	return p.checked[selector], nil
}

func (p *fakePage) InnerText(ctx context.Context, selector string) (string, error) {
	return p.inner[selector], nil
}

func (p *fakePage) InnerTexts(ctx context.Context, selector string) ([]string, error) {
	return p.texts[selector], nil
}

func (p *fakePage) BodyText(ctx context.Context) (string, error) {
	return p.body, nil
}

func (p *fakePage) SelectByIndex(ctx context.Context, selector string, index int) error {
	p.record("select %s %d", selector, index)
	if vals, ok := p.selectValues[selector]; ok && index >= 0 && index < len(vals) {
		p.values[selector] = vals[index]
	}
	return nil
}

func (p *fakePage) SetFiles(ctx context.Context, selector string, paths []string) error {
	p.record("setfiles %s", selector)
	p.files[selector] = paths
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	p.record("evaluate")
	return nil, nil
}

var _ page.Capability = (*fakePage)(nil)
