// Package cui handles Romanian company identifiers (CUI / CIF / fiscal
// codes): normalization of caller-supplied identifiers and extraction of
// candidate identifiers from free text such as web search results.
package cui

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"fintel/internal/errs"
)

// MinDigits and MaxDigits bound a normalized identifier.
const (
	MinDigits = 2
	MaxDigits = 10
)

var digitsOnly = regexp.MustCompile(`[^0-9]`)

// Normalize strips a leading RO/CUI/CIF prefix and every non-digit character
// from raw and validates the remaining digit count. Returns a ValidationError
// for anything outside 2..10 digits.
//
//	"RO 12345678"  -> "12345678"
//	"CUI: 445566"  -> "445566"
//	"1"            -> error (too short)
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errs.Validationf("tax ID is required")
	}

	digits := digitsOnly.ReplaceAllString(trimmed, "")
	if len(digits) < MinDigits || len(digits) > MaxDigits {
		return "", errs.Validationf(
			"invalid tax ID %q: expected %d-%d digits after removing the RO/CUI/CIF prefix, got %d",
			raw, MinDigits, MaxDigits, len(digits))
	}
	return digits, nil
}

// Confidence ranks how trustworthy an extracted candidate is, based on where
// it was found. Higher is better.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceVeryHigh
)

// Label returns the wire form of the confidence level.
func (c Confidence) Label() string {
	switch c {
	case ConfidenceVeryHigh:
		return "very_high"
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Candidate is one identifier found in text, with enough provenance for a
// caller to rank and display it.
type Candidate struct {
	CUI        string     `json:"cui"`
	Fragment   string     `json:"fragment"`
	Source     string     `json:"source"`
	Confidence Confidence `json:"confidence"`
}

// labeledPattern matches an identifier introduced by a recognizable label.
// The Romanian registry sites write these as "CUI 123456", "CIF: 123456",
// "RO123456" or "Cod fiscal 123456".
var labeledPattern = regexp.MustCompile(`(?i)\b(?:CUI|CIF|RO|Cod\s+fiscal)[\s:\-]*([0-9]{2,10})\b`)

// officialDomains are registry-grade sources; a labeled match on one of these
// is as good as it gets without calling the registry itself.
var officialDomains = []string{"mfinante.ro", "onrc.ro", "anaf.ro"}

// ExtractCandidates finds labeled identifier candidates in text. sourceURL
// determines the confidence: official registry domains rank very_high, the
// registry aggregator ranks high, anything else ranks medium.
func ExtractCandidates(text, sourceURL string) []Candidate {
	return extract(text, sourceURL, 0)
}

// ExtractCandidatesDemoted behaves like ExtractCandidates but knocks the
// confidence down one level. Used for matches recovered from fetched page
// bodies rather than search result snippets.
func ExtractCandidatesDemoted(text, sourceURL string) []Candidate {
	return extract(text, sourceURL, 1)
}

func extract(text, sourceURL string, demote int) []Candidate {
	matches := labeledPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	conf := confidenceForSource(sourceURL)
	for i := 0; i < demote && conf > ConfidenceLow; i++ {
		conf--
	}

	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		digits := m[1]
		if len(digits) < MinDigits || len(digits) > MaxDigits {
			continue
		}
		candidates = append(candidates, Candidate{
			CUI:        digits,
			Fragment:   strings.TrimSpace(m[0]),
			Source:     sourceURL,
			Confidence: conf,
		})
	}
	return candidates
}

// DedupeBest collapses candidates sharing a CUI, keeping the highest
// confidence occurrence. Relative order of first appearance is preserved so
// downstream stable sorts break ties by discovery order.
func DedupeBest(candidates []Candidate) []Candidate {
	best := make(map[string]int, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if i, seen := best[c.CUI]; seen {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		best[c.CUI] = len(out)
		out = append(out, c)
	}
	return out
}

func confidenceForSource(sourceURL string) Confidence {
	host := hostOf(sourceURL)
	if host == "" {
		return ConfidenceMedium
	}
	for _, d := range officialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return ConfidenceVeryHigh
		}
	}
	if host == "targetare.ro" || strings.HasSuffix(host, ".targetare.ro") {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

func hostOf(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Host, "www."))
}

// MarshalText lets Candidate confidence serialize as its label in envelopes.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.Label()), nil
}

// String implements fmt.Stringer for log lines.
func (c Confidence) String() string {
	return fmt.Sprintf("%s(%d)", c.Label(), int(c))
}
