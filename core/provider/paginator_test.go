package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetch serves a fixed chain of pages keyed by cursor.
func scriptedFetch(pages map[string]Page, failOn map[string]error) FetchPage {
	return func(ctx context.Context, cursor string) (Page, error) {
		if err, ok := failOn[cursor]; ok {
			return Page{}, err
		}
		page, ok := pages[cursor]
		if !ok {
			return Page{}, fmt.Errorf("unexpected cursor %q", cursor)
		}
		return page, nil
	}
}

func threePages() map[string]Page {
	return map[string]Page{
		"":   {Items: []Item{{ID: "1"}, {ID: "2"}}, NextCursor: "c1"},
		"c1": {Items: []Item{{ID: "3"}}, NextCursor: "c2"},
		"c2": {Items: []Item{{ID: "4"}}, NextCursor: ""},
	}
}

func TestPaginatorWalksToExhaustion(t *testing.T) {
	p := NewPaginator(scriptedFetch(threePages(), nil), "")

	var ids []string
	for {
		page, ok, err := p.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		for _, item := range page.Items {
			ids = append(ids, item.ID)
		}
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)

	// Exhausted paginators stay exhausted.
	_, ok, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaginatorResumesFromPersistedCursor(t *testing.T) {
	// A run that persisted c1 and crashed resumes with exactly the remaining
	// item sequence, no gaps and no duplicates.
	p := NewPaginator(scriptedFetch(threePages(), nil), "c1")

	var ids []string
	for {
		page, ok, err := p.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		for _, item := range page.Items {
			ids = append(ids, item.ID)
		}
	}

	assert.Equal(t, []string{"3", "4"}, ids)
}

func TestPaginatorErrorDoesNotAdvanceCursor(t *testing.T) {
	fail := map[string]error{"c1": fmt.Errorf("boom")}
	p := NewPaginator(scriptedFetch(threePages(), fail), "")

	_, ok, err := p.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "c1", p.Cursor())

	_, _, err = p.Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, "c1", p.Cursor(), "failed fetch must leave the resume point untouched")
}

func TestPaginatorHonorsCancelledContext(t *testing.T) {
	p := NewPaginator(scriptedFetch(threePages(), nil), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
