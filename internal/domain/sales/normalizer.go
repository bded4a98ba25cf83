package sales

import (
	"math"
	"regexp"
	"strings"
)

var (
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	notApplicablePattern = regexp.MustCompile(`(?i)\bN\s*/?\s*A\b`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// DefaultBookendWords are venue names that the ticketing system sometimes
// prepends and appends to the same label.
var DefaultBookendWords = []string{"vagalume", "bagatelle", "bonbonniere", "mandala", "rakata", "abolengo"}

// DefaultKeywords are category tokens that should appear at most once in a
// product name.
var DefaultKeywords = []string{"nye", "ga", "vip", "bronze", "silver", "gold", "platinum", "table", "access", "dinner", "experience"}

// keywordKeepRatio is the minimum share of tokens the keyword filter must
// keep for its result to be used.
const keywordKeepRatio = 0.6

// Normalizer cleans noisy product labels into canonical display names.
// It is safe for concurrent use once constructed.
type Normalizer struct {
	bookendWords map[string]struct{}
	keywords     map[string]struct{}
}

// NewNormalizer creates a normalizer with the given vocabularies. Nil
// slices select the defaults.
func NewNormalizer(bookendWords, keywords []string) *Normalizer {
	if bookendWords == nil {
		bookendWords = DefaultBookendWords
	}
	if keywords == nil {
		keywords = DefaultKeywords
	}
	return &Normalizer{
		bookendWords: toLowerSet(bookendWords),
		keywords:     toLowerSet(keywords),
	}
}

var defaultNormalizer = NewNormalizer(nil, nil)

// NormalizeProductName cleans a label with the default vocabularies.
func NormalizeProductName(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns the canonical form of a raw product label. It never
// returns an empty string.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return PlaceholderProduct
	}

	// Parenthesised fragments carry stray price annotations, e.g. "(23,000.00)".
	cleaned = parentheticalPattern.ReplaceAllString(cleaned, " ")
	cleaned = notApplicablePattern.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	words = dropConsecutiveDuplicates(words)
	words = collapseLeadingRepeat(words)
	words = dropTrailingRepeat(words)
	words = n.dropBookends(words)
	words = n.dedupeKeywords(words)

	cleaned = strings.TrimSpace(whitespacePattern.ReplaceAllString(strings.Join(words, " "), " "))
	if cleaned == "" {
		return PlaceholderProduct
	}
	return cleaned
}

// dropConsecutiveDuplicates turns "SILVER SILVER" into "SILVER".
func dropConsecutiveDuplicates(words []string) []string {
	out := make([]string, 0, len(words))
	for i, w := range words {
		if i > 0 && strings.EqualFold(w, words[i-1]) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// collapseLeadingRepeat turns "NYE BRONZE NYE BRONZE" into "NYE BRONZE". The
// shortest leading phrase that is immediately repeated wins.
func collapseLeadingRepeat(words []string) []string {
	if len(words) < 2 {
		return words
	}
	for i := 1; i <= len(words)/2; i++ {
		first := joinLower(words[:i])
		second := joinLower(words[i : 2*i])
		if first != "" && first == second {
			return words[:i]
		}
	}
	return words
}

// dropTrailingRepeat handles labels whose opening words come back, possibly
// cut short, at the end: "NYE Dinner Table Experience NYE Dinner Table Expe".
func dropTrailingRepeat(words []string) []string {
	if len(words) < 4 {
		return words
	}
	for k := 2; k <= len(words)/2; k++ {
		lead := joinLower(words[:k])
		trail := joinLower(words[len(words)-k:])
		if !windowsMatch(lead, trail) {
			continue
		}
		if len(words)-2*k > 0 {
			return words[:len(words)-k]
		}
		return words[:k]
	}
	return words
}

func windowsMatch(lead, trail string) bool {
	if lead == trail {
		return true
	}
	if len(lead) > 5 && strings.HasPrefix(trail, lead[:len(lead)-2]) {
		return true
	}
	return len(trail) > 5 && strings.HasPrefix(lead, trail)
}

// dropBookends turns "VAGALUME GENERAL ACCESS VAGALUME" into "GENERAL ACCESS".
func (n *Normalizer) dropBookends(words []string) []string {
	if len(words) < 3 {
		return words
	}
	first := strings.ToLower(words[0])
	last := strings.ToLower(words[len(words)-1])
	if first != last {
		return words
	}
	if _, ok := n.bookendWords[first]; !ok {
		return words
	}
	return words[1 : len(words)-1]
}

// dedupeKeywords keeps the first occurrence of each category keyword, unless
// that would strip more than 40% of the label.
func (n *Normalizer) dedupeKeywords(words []string) []string {
	seen := make(map[string]struct{})
	kept := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, isKeyword := n.keywords[lw]; isKeyword {
			if _, dup := seen[lw]; dup {
				continue
			}
			seen[lw] = struct{}{}
		}
		kept = append(kept, w)
	}
	if len(kept) >= int(math.Ceil(float64(len(words))*keywordKeepRatio)) {
		return kept
	}
	return words
}

func joinLower(words []string) string {
	return strings.ToLower(strings.Join(words, " "))
}

func toLowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
