package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"cardstock/core/provider"
	"cardstock/feature/catalog/models"
	"cardstock/feature/catalog/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI serves canned pages keyed by cursor. errOn makes one cursor fail.
type fakeAPI struct {
	mu       gosync.Mutex
	name     string
	scope    string
	sets     map[string]provider.Page // cursor -> page
	cards    map[string]map[string]provider.Page // setRemoteID -> cursor -> page
	variants map[string]map[string]provider.Page
	errOn    string
	calls    int
}

func (f *fakeAPI) Name() string  { return f.name }
func (f *fakeAPI) Scope() string { return f.scope }

func (f *fakeAPI) ListSets(_ context.Context, _, cursor string) (provider.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.errOn != "" && cursor == f.errOn {
		return provider.Page{}, fmt.Errorf("boom at %q", cursor)
	}
	page, ok := f.sets[cursor]
	if !ok {
		return provider.Page{}, fmt.Errorf("no page for cursor %q", cursor)
	}
	return page, nil
}

func (f *fakeAPI) ListCards(_ context.Context, _, setID, cursor string) (provider.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	pages, ok := f.cards[setID]
	if !ok {
		return provider.Page{}, nil
	}
	return pages[cursor], nil
}

func (f *fakeAPI) ListVariants(_ context.Context, _, cardID, cursor string) (provider.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	pages, ok := f.variants[cardID]
	if !ok {
		return provider.Page{}, nil
	}
	return pages[cursor], nil
}

type rowKey struct {
	et     provider.EntityType
	parent uint
}

// fakeCatalog is an in-memory Catalog recording the operation order so tests
// can assert upsert-before-cursor and terminal-state behavior.
type fakeCatalog struct {
	mu          gosync.Mutex
	games       []models.Game
	unlinked    map[rowKey][]models.CatalogRow
	linked      map[rowKey][]models.CatalogRow
	mirror      map[rowKey][]provider.Item
	linkedSets  map[uint][]models.Set
	linkedCards map[uint][]models.Card
	cursors     map[string]string
	checkpoints map[string]time.Time
	applied     []store.Link
	cleared     []uint
	runStatus   string
	runErr      string
	ops         []string
}

func newFakeCatalog(games ...models.Game) *fakeCatalog {
	return &fakeCatalog{
		games:       games,
		unlinked:    map[rowKey][]models.CatalogRow{},
		linked:      map[rowKey][]models.CatalogRow{},
		mirror:      map[rowKey][]provider.Item{},
		linkedSets:  map[uint][]models.Set{},
		linkedCards: map[uint][]models.Card{},
		cursors:     map[string]string{},
		checkpoints: map[string]time.Time{},
	}
}

func (f *fakeCatalog) log(op string) {
	f.ops = append(f.ops, op)
}

func cursorKey(gameID uint, et provider.EntityType) string {
	return fmt.Sprintf("%d/%s", gameID, et)
}

func (f *fakeCatalog) Games(_ context.Context, codes []string) ([]models.Game, error) {
	if len(codes) == 0 {
		return f.games, nil
	}
	var out []models.Game
	for _, g := range f.games {
		for _, c := range codes {
			if g.Code == c {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) MissingProviderID(_ context.Context, et provider.EntityType, parent uint) ([]models.CatalogRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unlinked[rowKey{et, parent}], nil
}

func (f *fakeCatalog) WithProviderID(_ context.Context, et provider.EntityType, parent uint) ([]models.CatalogRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.linked[rowKey{et, parent}], nil
}

func (f *fakeCatalog) RemoteItems(_ context.Context, et provider.EntityType, parent uint) ([]provider.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mirror[rowKey{et, parent}], nil
}

func (f *fakeCatalog) LinkedSets(_ context.Context, gameID uint) ([]models.Set, error) {
	return f.linkedSets[gameID], nil
}

func (f *fakeCatalog) LinkedCards(_ context.Context, setID uint) ([]models.Card, error) {
	return f.linkedCards[setID], nil
}

func (f *fakeCatalog) ClearProviderIDs(_ context.Context, et provider.EntityType, ids []uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, ids...)
	f.log(fmt.Sprintf("clear:%s", et))
	return int64(len(ids)), nil
}

func (f *fakeCatalog) UpsertRemote(_ context.Context, et provider.EntityType, parent uint, items []provider.Item, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log(fmt.Sprintf("upsert:%s:%d:%d", et, parent, len(items)))
	return int64(len(items)), nil
}

func (f *fakeCatalog) ApplyMatches(_ context.Context, et provider.EntityType, links []store.Link, _ int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, links...)
	f.log(fmt.Sprintf("apply:%s:%d", et, len(links)))
	return int64(len(links)), nil
}

func (f *fakeCatalog) GetCursor(_ context.Context, gameID uint, et provider.EntityType) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursors[cursorKey(gameID, et)], nil
}

func (f *fakeCatalog) SetCursor(_ context.Context, gameID uint, et provider.EntityType, cursor string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[cursorKey(gameID, et)] = cursor
	f.log(fmt.Sprintf("cursor:%s:%s", et, cursor))
	return nil
}

func (f *fakeCatalog) ResetCursor(ctx context.Context, gameID uint, et provider.EntityType) error {
	return f.SetCursor(ctx, gameID, et, "")
}

func (f *fakeCatalog) StartRun(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runStatus = models.RunRunning
	return nil
}

func (f *fakeCatalog) UpdateProgress(_ context.Context, _ string, _, _ int) error {
	return nil
}

func (f *fakeCatalog) CompleteRun(_ context.Context, _, status, _, _, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runStatus = status
	f.runErr = errMsg
	return nil
}

func (f *fakeCatalog) SaveCheckpoint(_ context.Context, gameID uint, phase string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkpoints[fmt.Sprintf("%d/%s", gameID, phase)] = time.Now()
	return nil
}

func (f *fakeCatalog) LastCheckpoint(_ context.Context, gameID uint, phase string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.checkpoints[fmt.Sprintf("%d/%s", gameID, phase)]
	if !ok {
		return nil, nil
	}
	return &ts, nil
}

func newTestOrchestrator(api *fakeAPI, cat *fakeCatalog) *Orchestrator {
	return NewOrchestrator(api, cat, nil, Config{ChunkSize: 50}, zap.NewNop())
}

func testRun() *models.SyncRun {
	return &models.SyncRun{ID: "run-1", Status: models.RunQueued}
}

func TestExecuteHappyPathCompletesRun(t *testing.T) {
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"":   {Items: []provider.Item{{ID: "r1", Name: "Crimson Haze", Code: "sv5a"}}, NextCursor: "c1"},
			"c1": {Items: []provider.Item{{ID: "r2", Name: "Jungle"}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	cat.unlinked[rowKey{provider.EntitySets, 7}] = []models.CatalogRow{
		{LocalID: 11, Name: "Jungle"},
	}

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, cat.runStatus)
	require.Len(t, cat.applied, 1)
	assert.Equal(t, store.Link{LocalID: 11, RemoteID: "r2"}, cat.applied[0])

	// Each page is upserted before its cursor is persisted, and the cursor is
	// reset once the phase completes.
	assert.Equal(t, []string{
		"upsert:sets:7:1",
		"cursor:sets:c1",
		"upsert:sets:7:1",
		"cursor:sets:",
		"apply:sets:1",
		"cursor:sets:",
	}, cat.ops[:6])
	assert.Empty(t, cat.cursors[cursorKey(7, provider.EntitySets)])
	assert.Contains(t, cat.checkpoints, "7/sets")
	assert.Contains(t, cat.checkpoints, "7/cards")
	assert.Contains(t, cat.checkpoints, "7/variants")
}

func TestExecuteFailureKeepsCursorForResume(t *testing.T) {
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"": {Items: []provider.Item{{ID: "r1", Name: "Crimson Haze"}}, NextCursor: "c1"},
		},
		errOn: "c1",
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.Error(t, err)

	assert.Equal(t, models.RunFailed, cat.runStatus)
	assert.NotEmpty(t, cat.runErr)
	// The cursor still points at the failed page so the next run resumes there.
	assert.Equal(t, "c1", cat.cursors[cursorKey(7, provider.EntitySets)])
	assert.NotContains(t, cat.checkpoints, "7/sets")
}

func TestExecuteCancelledContextMarksRunCancelled(t *testing.T) {
	api := &fakeAPI{name: "cardcatalog", scope: "en"}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newTestOrchestrator(api, cat)
	err := o.Execute(ctx, testRun(), Options{})
	require.NoError(t, err)
	assert.Equal(t, models.RunCancelled, cat.runStatus)
}

func TestGuardSkipsFreshPhaseUnlessForced(t *testing.T) {
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"": {Items: []provider.Item{{ID: "r1", Name: "Jungle"}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	now := time.Now()
	cat.checkpoints["7/sets"] = now
	cat.checkpoints["7/cards"] = now
	cat.checkpoints["7/variants"] = now

	o := NewOrchestrator(api, cat, nil, Config{ChunkSize: 50, FreshnessWindowMinutes: 60}, zap.NewNop())
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)
	assert.Zero(t, api.calls, "fresh phases must not hit the provider")
	assert.Equal(t, models.RunCompleted, cat.runStatus)

	err = o.Execute(context.Background(), testRun(), Options{Force: true})
	require.NoError(t, err)
	assert.NotZero(t, api.calls)
}

func TestExecuteRejectsUnknownGameCode(t *testing.T) {
	api := &fakeAPI{name: "cardcatalog", scope: "en"}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{Games: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, models.RunFailed, cat.runStatus)
}

func TestChildPhaseEncodesParentInCursor(t *testing.T) {
	setRemote := "rs1"
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"": {},
		},
		cards: map[string]map[string]provider.Page{
			setRemote: {
				"":   {Items: []provider.Item{{ID: "rc1", Name: "Pikachu", Number: "25"}}, NextCursor: "p2"},
				"p2": {Items: []provider.Item{{ID: "rc2", Name: "Raichu", Number: "26"}}},
			},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	cat.linkedSets[7] = []models.Set{{ID: 3, GameID: 7, ProviderID: &setRemote}}

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)

	assert.Contains(t, cat.ops, "cursor:cards:rs1|p2")
	assert.Empty(t, cat.cursors[cursorKey(7, provider.EntityCards)])
	assert.Equal(t, models.RunCompleted, cat.runStatus)
}

func TestChildPhaseResumesPastFinishedParents(t *testing.T) {
	ra, rb := "ra", "rb"
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets:  map[string]provider.Page{"": {}},
		cards: map[string]map[string]provider.Page{
			rb: {"": {Items: []provider.Item{{ID: "rc9", Name: "Snorlax"}}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	cat.linkedSets[7] = []models.Set{
		{ID: 1, GameID: 7, ProviderID: &ra},
		{ID: 2, GameID: 7, ProviderID: &rb},
	}
	cat.cursors[cursorKey(7, provider.EntityCards)] = "rb|"

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)

	// Parent ra finished in an earlier run and is never refetched.
	for _, op := range cat.ops {
		assert.NotContains(t, op, "upsert:cards:1:")
	}
	assert.Contains(t, cat.ops, "upsert:cards:2:1")
}

func TestResumeSeedsIndexFromLocalMirror(t *testing.T) {
	// The first page (holding r1) was fetched by an earlier run. The resumed
	// run only fetches from c1 onward, yet r1 must still be matchable.
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"c1": {Items: []provider.Item{{ID: "r2", Name: "Jungle"}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	cat.cursors[cursorKey(7, provider.EntitySets)] = "c1"
	cat.mirror[rowKey{provider.EntitySets, 7}] = []provider.Item{{ID: "r1", Name: "Crimson Haze"}}
	cat.unlinked[rowKey{provider.EntitySets, 7}] = []models.CatalogRow{
		{LocalID: 21, Name: "Crimson Haze"},
	}

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)

	require.Len(t, cat.applied, 1)
	assert.Equal(t, "r1", cat.applied[0].RemoteID)
}

func TestRollbackClearsLinksMissingUpstream(t *testing.T) {
	gone := "gone"
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"": {Items: []provider.Item{{ID: "r1", Name: "Jungle"}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})
	cat.linked[rowKey{provider.EntitySets, 7}] = []models.CatalogRow{
		{LocalID: 31, Name: "Vanished Set", ProviderID: &gone},
	}

	o := newTestOrchestrator(api, cat)
	err := o.Execute(context.Background(), testRun(), Options{})
	require.NoError(t, err)

	assert.Equal(t, []uint{31}, cat.cleared)
}

func TestEventsNeverBlockTheRun(t *testing.T) {
	api := &fakeAPI{
		name:  "cardcatalog",
		scope: "en",
		sets: map[string]provider.Page{
			"": {Items: []provider.Item{{ID: "r1", Name: "Jungle"}}},
		},
	}
	cat := newFakeCatalog(models.Game{ID: 7, Code: "ptcg"})

	// Nobody consumes o.Events(); the run must still terminate.
	o := newTestOrchestrator(api, cat)
	done := make(chan error, 1)
	go func() { done <- o.Execute(context.Background(), testRun(), Options{}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked on event channel")
	}
}
