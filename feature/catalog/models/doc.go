// Package models defines the persisted entities of the local catalog mirror:
// the game/set/card/variant hierarchy, sync cursors, sync runs and phase
// checkpoints.
//
// Every hierarchy level carries a nullable provider_id next to the local
// primary key. The local id is what inventory references; the provider id is
// only a link to the remote system of record and may be rolled back when the
// remote record disappears.
package models
