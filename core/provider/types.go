package provider

// EntityType names one level of the remote catalog hierarchy.
type EntityType string

const (
	EntityGames    EntityType = "games"
	EntitySets     EntityType = "sets"
	EntityCards    EntityType = "cards"
	EntityVariants EntityType = "variants"
)

// Item is the canonical shape of one remote catalog record after envelope
// decoding. ID is the provider's own stable identifier and is the only value
// ever written to a local provider_id column.
type Item struct {
	// ID is the provider's stable identifier for the record.
	ID string `json:"id"`
	// Name is the human-readable display name.
	Name string `json:"name"`
	// Code is the structured short code (e.g. a set code), if any.
	Code string `json:"code,omitempty"`
	// Number is the collector number for cards, if any.
	Number string `json:"number,omitempty"`
	// Rarity is the printed rarity for cards/variants, if any.
	Rarity string `json:"rarity,omitempty"`
	// ParentID is the provider id of the parent record, if the endpoint
	// includes it.
	ParentID string `json:"parent_id,omitempty"`
}

// Page is one page of a cursored remote collection. An empty NextCursor means
// the collection is exhausted.
type Page struct {
	Items      []Item
	NextCursor string
}
