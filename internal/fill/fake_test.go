package fill

import (
	"context"
	"fmt"
	"time"

	"github.com/vpetrenko/formfill-agent/internal/page"
)

// fakePage scripts a whole page for orchestrator runs: a snapshot for
// discovery, value storage for interaction, and submit/confirmation behavior.
type fakePage struct {
	snap    *page.Snapshot
	values  map[string]string
	checked map[string]bool
	exists  map[string]bool
	visible map[string]bool
	texts   map[string][]string
	inner   map[string]string
	body    string
	url     string
	navErr  error
	// postSubmitBody replaces body after any successful click, simulating the
	// confirmation page.
	postSubmitBody string

	calls []string
}

func newFakePage(snap *page.Snapshot) *fakePage {
	return &fakePage{
		snap:    snap,
		values:  map[string]string{},
		checked: map[string]bool{},
		exists:  map[string]bool{},
		visible: map[string]bool{},
		texts:   map[string][]string{},
		inner:   map[string]string{},
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
	if p.snap == nil {
		return &page.Snapshot{URL: p.url}, nil
	}
	return p.snap, nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.record("click %s", selector)
	if p.postSubmitBody != "" {
		p.body = p.postSubmitBody
	}
	return nil
}

func (p *fakePage) ClickNth(ctx context.Context, selector string, index int) error {
	p.record("clicknth %s %d", selector, index)
	if p.postSubmitBody != "" {
		p.body = p.postSubmitBody
	}
	return nil
}

func (p *fakePage) ForceClick(ctx context.Context, selector string, offsetX, offsetY float64) error {
	p.record("forceclick %s", selector)
	return nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.record("fill %s", selector)
	p.values[selector] = value
	return nil
}

func (p *fakePage) Clear(ctx context.Context, selector string) error {
	p.values[selector] = ""
	return nil
}

func (p *fakePage) TypeDelayed(ctx context.Context, selector, text string, delay time.Duration) error {
	p.values[selector] += text
	return nil
}

func (p *fakePage) Press(ctx context.Context, selector, key string) error {
	p.record("press %s %s", selector, key)
	return nil
}

func (p *fakePage) Blur(ctx context.Context, selector string) error { return nil }

func (p *fakePage) ScrollTo(ctx context.Context, selector string) error { return nil }

func (p *fakePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
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
	return nil
}

func (p *fakePage) SetFiles(ctx context.Context, selector string, paths []string) error {
	p.record("setfiles %s", selector)
	return nil
}

func (p *fakePage) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	return nil, nil
}

var _ page.Capability = (*fakePage)(nil)
