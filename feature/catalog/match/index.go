package match

import (
	"strings"

	"cardstock/core/provider"
)

// Record is one remote catalog record inside the canonical index.
type Record struct {
	ID   string
	Name string
	Code string
}

type normEntry struct {
	rec       Record
	ambiguous bool
}

// Index holds the lookup structures built from one fully-fetched remote
// collection. It must never be built from a partial fetch: a partial index
// cannot distinguish "not yet fetched" from "does not exist", which would
// corrupt both matching and rollback.
type Index struct {
	byCode map[string]Record
	byName map[string]Record
	byNorm map[string]normEntry
	ids    map[string]struct{}
}

// NewIndex builds the canonical index. Codes and exact names are
// first-write-wins (codes are expected unique upstream; later duplicates are
// ignored). A second distinct record normalizing to an already-seen key
// permanently marks that key ambiguous; ambiguity is never silently resolved
// by picking one of the colliding records.
func NewIndex(items []provider.Item) *Index {
	ix := &Index{
		byCode: make(map[string]Record),
		byName: make(map[string]Record),
		byNorm: make(map[string]normEntry),
		ids:    make(map[string]struct{}),
	}

	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, seen := ix.ids[item.ID]; seen {
			// Same record twice (e.g. resumed fetch merged with the local
			// mirror seed); not a collision.
			continue
		}
		ix.ids[item.ID] = struct{}{}

		rec := Record{ID: item.ID, Name: item.Name, Code: item.Code}

		if rec.Code != "" {
			key := strings.ToLower(rec.Code)
			if _, exists := ix.byCode[key]; !exists {
				ix.byCode[key] = rec
			}
		}

		if rec.Name != "" {
			if _, exists := ix.byName[rec.Name]; !exists {
				ix.byName[rec.Name] = rec
			}
		}

		if key := Normalize(rec.Name); key != "" {
			entry, exists := ix.byNorm[key]
			switch {
			case !exists:
				ix.byNorm[key] = normEntry{rec: rec}
			case !entry.ambiguous:
				// Once ambiguous, always ambiguous for this build.
				ix.byNorm[key] = normEntry{ambiguous: true}
			}
		}
	}

	return ix
}

// Code looks up a record by its lower-cased code.
func (ix *Index) Code(code string) (Record, bool) {
	rec, ok := ix.byCode[strings.ToLower(code)]
	return rec, ok
}

// Name looks up a record by its exact display name.
func (ix *Index) Name(name string) (Record, bool) {
	rec, ok := ix.byName[name]
	return rec, ok
}

// Normalized looks up a record by an already-normalized name key. ambiguous
// reports a collision marker; when it is true the record is zero-valued and
// callers must not match.
func (ix *Index) Normalized(key string) (rec Record, ok bool, ambiguous bool) {
	entry, exists := ix.byNorm[key]
	if !exists {
		return Record{}, false, false
	}
	if entry.ambiguous {
		return Record{}, false, true
	}
	return entry.rec, true, false
}

// HasID reports whether the given provider id exists in the fetched
// collection. The rollback auditor treats this as ground truth of "exists
// upstream".
func (ix *Index) HasID(id string) bool {
	_, ok := ix.ids[id]
	return ok
}

// Size returns the number of distinct remote records indexed.
func (ix *Index) Size() int {
	return len(ix.ids)
}
