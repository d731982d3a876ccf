package interact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vpetrenko/formfill-agent/internal/discover"
)

// fillFile attaches a file to a file input. Errors are reported as soft
// failures upstream: a broken attachment rarely blocks a form.
func (e *Executor) fillFile(ctx context.Context, f discover.Field, value string) (bool, error) {
	path := value
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false, fmt.Errorf("resolve path %q: %w", value, err)
		}
		path = abs
	}
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Errorf("file %q: %w", path, err)
	}
	if err := e.page.SetFiles(ctx, f.Selector, []string{path}); err != nil {
		return false, fmt.Errorf("attach %q: %w", path, err)
	}
	return true, nil
}
