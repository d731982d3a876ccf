// Package mapper matches discovered fields against caller-supplied data keys.
// Map is a pure function: same fields and keys always produce the same
// mapping, with no DOM access and no side effects.
package mapper

import (
	"strings"

	"github.com/vpetrenko/formfill-agent/internal/discover"
)

// AcceptThreshold is the minimum score at which a (field, key) pair maps.
// One point below never maps.
const AcceptThreshold = 40

// Mapping associates a field's stable key (selector or group-<label>) with
// the caller data key that will fill it. At most one data key per field and
// each data key is consumed by at most one field.
type Mapping map[string]string

// Map scores every (field, key) pair and assigns, per field in discovery
// order, the highest-scoring still-unclaimed key that clears the acceptance
// threshold. Ties break toward the first key in caller-supplied order.
func Map(fields []discover.Field, dataKeys []string) Mapping {
	out := Mapping{}
	taken := map[string]bool{}
	for _, f := range fields {
		best := ""
		bestScore := 0
		for _, key := range dataKeys {
			if taken[key] {
				continue
			}
			s := Score(f, key)
			if s > bestScore {
				best, bestScore = key, s
			}
		}
		if best != "" && bestScore >= AcceptThreshold {
			out[f.Key()] = best
			taken[best] = true
		}
	}
	return out
}

// curatedKeywords are high-confidence terms: when both the label and the key
// normalize to contain one, the pair is almost certainly the same field.
var curatedKeywords = []string{
	"mobile", "gender", "hobbies", "email", "dob", "city", "country", "address",
}

// multiValueHints mark keys that imply multiple selections, antagonistic to
// single-choice radio groups.
var multiValueHints = []string{"hobbies", "interests", "skills", "languages"}

// Score computes the weighted signal sum for one (field, key) pair.
func Score(f discover.Field, key string) int {
	labelNorm := Normalize(f.Label)
	nameNorm := Normalize(f.Name)
	keyNorm := Normalize(key)
	if labelNorm == "" || keyNorm == "" {
		return 0
	}

	score := 0
	if labelNorm == keyNorm {
		score += 100
	}
	if nameNorm != "" && nameNorm == keyNorm {
		score += 100
	}

	labelFirst := strings.Contains(labelNorm, "first")
	labelLast := strings.Contains(labelNorm, "last")
	keyFirst := strings.Contains(keyNorm, "first")
	keyLast := strings.Contains(keyNorm, "last")
	if (labelFirst && keyFirst) || (labelLast && keyLast) {
		score += 50
	}
	if (labelFirst && keyLast && !keyFirst) || (labelLast && keyFirst && !keyLast) {
		// "First Name" must never claim a "Last Name" key.
		score -= 100
	}

	if labelNorm != keyNorm &&
		(strings.Contains(labelNorm, keyNorm) || strings.Contains(keyNorm, labelNorm)) {
		score += 20
	}

	score += 15 * sharedTokens(f.Label, key)

	for _, kw := range curatedKeywords {
		if strings.Contains(labelNorm, kw) && strings.Contains(keyNorm, kw) {
			score += 200
			break
		}
	}

	if f.Type == discover.TypeRadioGroup {
		for _, hint := range multiValueHints {
			if strings.Contains(keyNorm, hint) {
				score -= 500
				break
			}
		}
	}

	return score
}

// Normalize lowercases, trims, and strips everything non-alphanumeric.
// Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sharedTokens counts whole-word tokens longer than two characters that the
// label and the key have in common.
func sharedTokens(label, key string) int {
	seen := map[string]bool{}
	for _, t := range tokenize(label) {
		seen[t] = true
	}
	count := 0
	counted := map[string]bool{}
	for _, t := range tokenize(key) {
		if seen[t] && !counted[t] {
			counted[t] = true
			count++
		}
	}
	return count
}

func tokenize(s string) []string {
	raw := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	out := raw[:0]
	for _, t := range raw {
		if len(t) > 2 {
			out = append(out, t)
		}
	}
	return out
}
