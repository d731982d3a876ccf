// Package browser is the playwright-backed implementation of the page
// capability. Nothing outside this package touches playwright types.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	defaultNavTimeout = 30 * time.Second
	defaultActionTime = 10 * time.Second
)

// Launcher owns the playwright lifecycle.
type Launcher struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	headless bool
}

func NewLauncher(ctx context.Context, headless bool) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &Launcher{pw: pw, browser: browser, headless: headless}, nil
}

// NewSession opens one browser context and page. Sessions are explicitly
// passed through the pipeline; there is no ambient shared page.
func (l *Launcher) NewSession(ctx context.Context, storagePath string, navTimeout time.Duration) (*Session, error) {
	opts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if strings.TrimSpace(storagePath) != "" {
		if _, err := os.Stat(storagePath); err == nil {
			opts.StorageStatePath = playwright.String(storagePath)
		}
	}
	bctx, err := l.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	pg, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	if navTimeout <= 0 {
		navTimeout = defaultNavTimeout
	}
	pg.SetDefaultTimeout(float64(defaultActionTime.Milliseconds()))
	return &Session{context: bctx, page: pg, navTimeout: navTimeout}, nil
}

func (l *Launcher) Close() error {
	if l.browser != nil {
		_ = l.browser.Close()
	}
	if l.pw != nil {
		return l.pw.Stop()
	}
	return nil
}

// Session implements page.Capability over one playwright page.
type Session struct {
	context    playwright.BrowserContext
	page       playwright.Page
	navTimeout time.Duration
}

// Close tears the context down. Deliberately not called on failed jobs so an
// operator can inspect the page.
func (s *Session) Close(ctx context.Context) error {
	_ = ctx
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.context != nil {
		return s.context.Close()
	}
	return nil
}

// SaveState writes the context storage state (cookies, local storage) so a
// later session can reuse it.
func (s *Session) SaveState(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state, err := s.context.StorageState()
	if err != nil {
		return wrap(err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(s.navTimeout.Milliseconds())),
	})
	return wrap(err)
}

func (s *Session) URL() string {
	return s.page.URL()
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	first := s.page.Locator(selector).First()
	if err := first.WaitFor(playwright.LocatorWaitForOptions{State: playwright.WaitForSelectorStateVisible}); err != nil {
		return wrap(err)
	}
	if err := first.ScrollIntoViewIfNeeded(); err != nil {
		// If scroll fails, try click anyway
	}
	return wrap(first.Click())
}

func (s *Session) ClickNth(ctx context.Context, selector string, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := s.page.Locator(selector).Nth(index)
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		// best effort
	}
	return wrap(loc.Click())
}

func (s *Session) ForceClick(ctx context.Context, selector string, offsetX, offsetY float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	first := s.page.Locator(selector).First()
	return wrap(first.Click(playwright.LocatorClickOptions{
		Force:    playwright.Bool(true),
		Position: &playwright.Position{X: offsetX, Y: offsetY},
	}))
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().Fill(value))
}

func (s *Session) Clear(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().Clear())
}

func (s *Session) TypeDelayed(ctx context.Context, selector, text string, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().PressSequentially(text,
		playwright.LocatorPressSequentiallyOptions{
			Delay: playwright.Float(float64(delay.Milliseconds())),
		}))
}

func (s *Session) Press(ctx context.Context, selector, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().Press(key))
}

func (s *Session) Blur(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().Blur())
}

func (s *Session) ScrollTo(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().ScrollIntoViewIfNeeded())
}

func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = defaultActionTime
	}
	return wrap(s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}))
}

func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	count, err := s.page.Locator(selector).Count()
	if err != nil {
		return false, wrap(err)
	}
	return count > 0, nil
}

func (s *Session) Visible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := s.page.Locator(selector).First().IsVisible()
	return ok, wrap(err)
}

func (s *Session) InputValue(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	val, err := s.page.Locator(selector).First().InputValue()
	return val, wrap(err)
}

// Checked reads the native checked state, falling back to aria-checked for
// role-based widgets.
func (s *Session) Checked(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	loc := s.page.Locator(selector).First()
	if checked, err := loc.IsChecked(); err == nil {
		return checked, nil
	}
	attr, err := loc.GetAttribute("aria-checked")
	if err != nil {
		return false, wrap(err)
	}
	return attr == "true", nil
}

func (s *Session) InnerText(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	val, err := s.page.Locator(selector).First().InnerText()
	return val, wrap(err)
}

func (s *Session) InnerTexts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vals, err := s.page.Locator(selector).AllInnerTexts()
	return vals, wrap(err)
}

func (s *Session) BodyText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	val, err := s.page.InnerText("body")
	return val, wrap(err)
}

func (s *Session) SelectByIndex(ctx context.Context, selector string, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Indexes: &[]int{index},
	})
	return wrap(err)
}

func (s *Session) SetFiles(ctx context.Context, selector string, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return wrap(s.page.Locator(selector).First().SetInputFiles(paths))
}

func (s *Session) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var val any
	var err error
	if len(args) > 0 {
		val, err = s.page.Evaluate(script, args[0])
	} else {
		val, err = s.page.Evaluate(script)
	}
	return val, wrap(err)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("playwright: %w", err)
}
