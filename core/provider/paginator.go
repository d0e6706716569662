package provider

import "context"

// FetchPage fetches one page of a cursored collection. An empty cursor means
// the first page.
type FetchPage func(ctx context.Context, cursor string) (Page, error)

// Paginator drives cursor-based traversal of one remote collection. It is lazy
// (nothing is fetched until Next), finite (stops when the remote returns no
// cursor) and restartable from any previously persisted cursor.
//
// Rate limiting happens inside the client's fetch path, so every page request
// consumes a token before going out.
type Paginator struct {
	fetch  FetchPage
	cursor string
	done   bool
}

// NewPaginator creates a paginator resuming from startCursor. Pass an empty
// cursor to start from the beginning of the collection.
func NewPaginator(fetch FetchPage, startCursor string) *Paginator {
	return &Paginator{fetch: fetch, cursor: startCursor}
}

// Next fetches the next page. ok is false when the collection is exhausted.
// On error the internal cursor is not advanced, so the caller can retry or
// resume later from the same position.
func (p *Paginator) Next(ctx context.Context) (page Page, ok bool, err error) {
	if p.done {
		return Page{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return Page{}, false, err
	}

	page, err = p.fetch(ctx, p.cursor)
	if err != nil {
		return Page{}, false, err
	}

	p.cursor = page.NextCursor
	if page.NextCursor == "" {
		p.done = true
	}
	return page, true, nil
}

// Cursor returns the cursor that resumes traversal after the last page
// returned by Next. Callers persist it only after that page's results are
// durably written.
func (p *Paginator) Cursor() string {
	return p.cursor
}
