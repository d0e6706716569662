package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// codePrefixRe recognizes a short set-code prefix at the start of a name,
// e.g. "SV5a: Crimson Haze": 1-3 letters, digits, an optional trailing
// letter, then a colon.
var codePrefixRe = regexp.MustCompile(`^([A-Za-z]{1,3}[0-9]+[A-Za-z]?):\s*`)

// bracketSuffixRe strips one trailing bracketed or parenthetical qualifier,
// e.g. "Base Set (Shadowless)" or "Team Rocket [Unlimited]".
var bracketSuffixRe = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*$`)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// synonymFolds maps franchise-specific glyphs and spelling drift to the form
// the provider uses. Accented letters are already handled by NFKD mark
// stripping; only true synonyms live here.
var synonymFolds = strings.NewReplacer(
	"♀", " f",
	"♂", " m",
	"δ", " delta",
	"impostor", "imposter",
)

// CodePrefix extracts the short code prefix from a name, if present.
func CodePrefix(name string) (code string, ok bool) {
	m := codePrefixRe.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Normalize runs the shared name-normalization pipeline used both when
// building the canonical index and when matching local names against it:
// NFKD decomposition with combining marks stripped, synonym folding, leading
// code-prefix removal, trailing bracket removal, non-alphanumeric collapse,
// trim, lower-case.
//
// Both sides of every normalized comparison must go through this exact
// function; a second implementation would silently break exact-only matching.
func Normalize(name string) string {
	s := stripMarks(norm.NFKD.String(name))
	s = strings.ToLower(s)
	s = synonymFolds.Replace(s)
	s = codePrefixRe.ReplaceAllString(s, "")
	for {
		next := bracketSuffixRe.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func stripMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ScopeMarkers returns the normalized-name markers expected for a provider
// region scope. An empty slice disables the out-of-scope heuristic for that
// scope.
func ScopeMarkers(scope string) []string {
	switch strings.ToLower(scope) {
	case "jp", "ja", "japan":
		return []string{"jp", "jpn", "japan", "japanese"}
	case "kr", "ko", "korea":
		return []string{"kr", "kor", "korea", "korean"}
	default:
		return nil
	}
}
