package page

import (
	"context"
	"time"
)

// Capability is the full set of page operations the engine needs. The engine
// only ever talks to a page through this interface, with plain CSS-like
// selector strings, so discovery and interaction stay independent of any
// particular automation library.
type Capability interface {
	Navigate(ctx context.Context, url string) error
	URL() string

	// Snapshot runs the in-page collector and returns a structured view of
	// every candidate form control. Discovery strategies are pure functions
	// over this result.
	Snapshot(ctx context.Context) (*Snapshot, error)

	Click(ctx context.Context, selector string) error
	// ClickNth clicks the n-th (zero-based) element matching the selector.
	// Rendered option lists are addressed by position after reading their
	// texts with InnerTexts.
	ClickNth(ctx context.Context, selector string, index int) error
	// ForceClick clicks at an offset from the element's top-left corner,
	// bypassing actionability checks. Fallback for stubborn radio/checkbox
	// targets whose inputs are visually hidden.
	ForceClick(ctx context.Context, selector string, offsetX, offsetY float64) error

	Fill(ctx context.Context, selector, value string) error
	Clear(ctx context.Context, selector string) error
	// TypeDelayed types text one keystroke at a time. Some widgets drop
	// input that arrives faster than their event handlers re-render.
	TypeDelayed(ctx context.Context, selector, text string, delay time.Duration) error
	Press(ctx context.Context, selector, key string) error
	Blur(ctx context.Context, selector string) error

	ScrollTo(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	Exists(ctx context.Context, selector string) (bool, error)
	Visible(ctx context.Context, selector string) (bool, error)
	InputValue(ctx context.Context, selector string) (string, error)
	Checked(ctx context.Context, selector string) (bool, error)
	InnerText(ctx context.Context, selector string) (string, error)
	InnerTexts(ctx context.Context, selector string) ([]string, error)
	BodyText(ctx context.Context) (string, error)

	SelectByIndex(ctx context.Context, selector string, index int) error
	SetFiles(ctx context.Context, selector string, paths []string) error

	Evaluate(ctx context.Context, script string, args ...any) (any, error)
}
