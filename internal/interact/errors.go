package interact

import "strings"

// errorKind buckets driver errors for adaptive handling: some kinds are worth
// a keystroke retry, a malformed selector never is.
type errorKind string

const (
	kindSelectorParse  errorKind = "selector_parse_error"
	kindTimeout        errorKind = "timeout"
	kindNotFound       errorKind = "element_not_found"
	kindNotInteractive errorKind = "not_interactable"
	kindStale          errorKind = "stale_element"
	kindNetwork        errorKind = "network_error"
	kindUnknown        errorKind = "unknown"
)

func classifyError(err error) errorKind {
	if err == nil {
		return kindUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "badstring") ||
		strings.Contains(msg, "unsupported token") ||
		strings.Contains(msg, "parsing selector"):
		return kindSelectorParse
	case strings.Contains(msg, "timeout"):
		return kindTimeout
	case strings.Contains(msg, "not found") || strings.Contains(msg, "not visible"):
		return kindNotFound
	case strings.Contains(msg, "not clickable") || strings.Contains(msg, "not interactable"):
		return kindNotInteractive
	case strings.Contains(msg, "stale") || strings.Contains(msg, "detached"):
		return kindStale
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return kindNetwork
	}
	return kindUnknown
}

// retryWorthTyping reports whether a failed programmatic fill might still
// succeed through per-keystroke input.
func retryWorthTyping(kind errorKind) bool {
	switch kind {
	case kindSelectorParse, kindNotFound, kindNetwork:
		return false
	}
	return true
}
