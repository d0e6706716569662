package provider

import (
	"encoding/json"
	"fmt"

	"cardstock/core/utils"
)

// Envelope key candidates, in lookup order. The provider's endpoints disagree
// on how they wrap collections and cursors; everything is normalized here so
// the rest of the engine never branches on response shape.
var (
	itemKeys   = []string{"data", "sets", "cards", "variants", "games", "results"}
	cursorKeys = []string{"next_cursor", "nextCursor", "cursor"}
	idKeys     = []string{"id", "uuid"}
	nameKeys   = []string{"name", "title"}
)

// decodeEnvelope parses a raw list-endpoint response body into a canonical
// Page. It returns an error when no recognizable item array is present, which
// indicates a contract change upstream rather than an empty collection.
func decodeEnvelope(body []byte) (Page, error) {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Page{}, fmt.Errorf("failed to parse response body: %w", err)
	}

	rawItems, err := findItems(envelope)
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: make([]Item, 0, len(rawItems))}
	for _, raw := range rawItems {
		obj, ok := raw.(map[string]any)
		if !ok {
			return Page{}, fmt.Errorf("unexpected item shape %T in response", raw)
		}
		page.Items = append(page.Items, decodeItem(obj))
	}

	for _, key := range cursorKeys {
		if v, ok := envelope[key]; ok {
			page.NextCursor = utils.ToString(v)
			break
		}
	}

	return page, nil
}

// findItems locates the collection array under any of the known envelope keys.
func findItems(envelope map[string]any) ([]any, error) {
	for _, key := range itemKeys {
		v, ok := envelope[key]
		if !ok {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("envelope key %q is not an array", key)
		}
		return items, nil
	}
	return nil, fmt.Errorf("no recognizable item array in response envelope")
}

func decodeItem(obj map[string]any) Item {
	item := Item{
		Code:     utils.ToString(obj["code"]),
		Number:   utils.ToString(obj["number"]),
		Rarity:   utils.ToString(obj["rarity"]),
		ParentID: utils.ToString(obj["parent_id"]),
	}
	for _, key := range idKeys {
		if v, ok := obj[key]; ok {
			item.ID = utils.ToString(v)
			break
		}
	}
	for _, key := range nameKeys {
		if v, ok := obj[key]; ok {
			item.Name = utils.ToString(v)
			break
		}
	}
	return item
}
