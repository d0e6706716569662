// Package match implements provider-identity matching for the local catalog.
//
// It builds a canonical index over one fully-fetched remote collection and
// classifies each local entity with an exact-only policy:
//
//	code-exact -> name-exact -> normalized-name-exact
//
// Normalized-name collisions are marked ambiguous and never resolved by
// picking a record. Code matches with divergent normalized names are demoted
// to conflicts for human review. There is deliberately no fuzzy matching
// anywhere in this package: a false positive links real inventory to the
// wrong card.
package match
