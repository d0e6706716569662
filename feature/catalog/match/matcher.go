package match

import (
	"strings"

	"cardstock/feature/catalog/models"
)

// Outcome classifies the result of matching one local entity.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeUnmatched  Outcome = "unmatched"
	OutcomeConflict   Outcome = "conflict"
	OutcomeOutOfScope Outcome = "out_of_scope"
)

// Type names the strategy that produced an accepted match.
type Type string

const (
	TypeCodeExact       Type = "code_exact"
	TypeNameExact       Type = "name_exact"
	TypeNormalizedExact Type = "normalized_exact"
)

// Reasons attached to non-matched outcomes.
const (
	ReasonAmbiguous        = "normalized name collides with multiple remote records"
	ReasonNoMatch          = "no exact match found"
	ReasonCodeNameConflict = "code matches but normalized names disagree"
	ReasonMissingScope     = "name carries no marker for the current provider scope"
)

// Result is the matching verdict for one local entity. RemoteID is set only
// for OutcomeMatched and always carries the remote system's identifier, never
// its display name.
type Result struct {
	LocalID   uint    `json:"local_id"`
	Name      string  `json:"name"`
	Outcome   Outcome `json:"outcome"`
	MatchType Type    `json:"match_type,omitempty"`
	RemoteID  string  `json:"remote_id,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

// Matcher applies the exact-only matching policy against one canonical index.
// No fuzzy scoring, edit distance or partial matching is ever attempted; a
// wrong link silently corrupts pricing and inventory, while an unmatched entity
// only costs a human a look at the triage report.
type Matcher struct {
	index   *Index
	markers []string
}

// NewMatcher creates a matcher for the given index and provider scope. The
// scope selects the markers used by the advisory out-of-scope heuristic.
func NewMatcher(index *Index, scope string) *Matcher {
	return &Matcher{index: index, markers: ScopeMarkers(scope)}
}

// Match classifies one local entity that lacks a provider id. Strategies run
// in strict order: code-exact, name-exact, normalized-exact. An ambiguous
// normalized key short-circuits to unmatched without trying anything further.
func (m *Matcher) Match(row models.CatalogRow) Result {
	res := Result{LocalID: row.LocalID, Name: row.Name}

	prefix, hasPrefix := CodePrefix(row.Name)
	lookupCode := row.Code
	if lookupCode == "" && hasPrefix {
		lookupCode = prefix
	}

	if lookupCode != "" {
		if rec, ok := m.index.Code(lookupCode); ok {
			// A shared code with divergent names is a genuine data problem
			// that needs human review, not auto-resolution.
			if Normalize(row.Name) != Normalize(rec.Name) {
				res.Outcome = OutcomeConflict
				res.Reason = ReasonCodeNameConflict
				return res
			}
			res.Outcome = OutcomeMatched
			res.MatchType = TypeCodeExact
			res.RemoteID = rec.ID
			return res
		}
	}

	if rec, ok := m.index.Name(row.Name); ok {
		res.Outcome = OutcomeMatched
		res.MatchType = TypeNameExact
		res.RemoteID = rec.ID
		return res
	}

	normKey := Normalize(row.Name)
	if normKey != "" {
		rec, ok, ambiguous := m.index.Normalized(normKey)
		if ambiguous {
			res.Outcome = OutcomeUnmatched
			res.Reason = ReasonAmbiguous
			return res
		}
		if ok {
			res.Outcome = OutcomeMatched
			res.MatchType = TypeNormalizedExact
			res.RemoteID = rec.ID
			return res
		}
	}

	// Advisory only: a name without any scope marker and without any code
	// likely belongs to a different provider scope and is reported separately
	// so it is not retried identically forever.
	if len(m.markers) > 0 && !hasPrefix && row.Code == "" && !containsMarker(normKey, m.markers) {
		res.Outcome = OutcomeOutOfScope
		res.Reason = ReasonMissingScope
		return res
	}

	res.Outcome = OutcomeUnmatched
	res.Reason = ReasonNoMatch
	return res
}

// containsMarker checks whole words of the normalized name against the scope
// marker list.
func containsMarker(normKey string, markers []string) bool {
	for _, word := range strings.Fields(normKey) {
		for _, marker := range markers {
			if word == marker {
				return true
			}
		}
	}
	return false
}
