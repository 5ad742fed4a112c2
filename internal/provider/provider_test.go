package provider_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlite/ledgerlite/internal/cache"
	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/live"
	"github.com/ledgerlite/ledgerlite/internal/provider"
	"github.com/ledgerlite/ledgerlite/internal/snapshot"
)

var errBackendDown = errors.New("backend down")

// fakeSource counts fetches and serves either canned records or an error.
type fakeSource struct {
	records ledger.Records
	err     error
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context, _ live.Query) (ledger.Records, error) {
	f.calls++
	if f.err != nil {
		return ledger.Records{}, f.err
	}
	return f.records, nil
}

// fakeSnapshots counts loads and serves a canned snapshot or an error.
type fakeSnapshots struct {
	snap  *snapshot.Snapshot
	err   error
	calls int
}

func (f *fakeSnapshots) Load(_ string) (*snapshot.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func newProvider(src *fakeSource, snaps *fakeSnapshots, cats *cache.CategoryCache) *provider.Provider {
	return provider.New(src, snaps, cats, time.Second, zerolog.Nop())
}

func snapshotWith(data ledger.Dataset) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Version: snapshot.SchemaVersion,
		SavedAt: time.Now().UTC(),
		UserID:  "user-1",
		Data:    data,
	}
}

// TestLiveSuccessSkipsSnapshot verifies the snapshot store is never
// consulted when the live query succeeds.
func TestLiveSuccessSkipsSnapshot(t *testing.T) {
	src := &fakeSource{records: ledger.Records{Cards: []ledger.Card{{ID: "c1", Name: "Main"}}}}
	snaps := &fakeSnapshots{snap: snapshotWith(ledger.Dataset{})}
	p := newProvider(src, snaps, nil)

	res, err := p.GetDomain(context.Background(), "user-1", ledger.DomainCards)
	require.NoError(t, err)

	assert.Equal(t, provider.SourceLive, res.Source)
	assert.Len(t, res.Records.Cards, 1)
	assert.Equal(t, 0, snaps.calls, "no wasted fallback reads on live success")
	assert.False(t, p.UsingOfflineData())
}

// TestEmptyLiveResultIsSuccess verifies an empty live response is not
// treated as a failure.
func TestEmptyLiveResultIsSuccess(t *testing.T) {
	src := &fakeSource{records: ledger.Records{}}
	snaps := &fakeSnapshots{snap: snapshotWith(testDataset())}
	p := newProvider(src, snaps, nil)

	res, err := p.GetDomain(context.Background(), "user-1", ledger.DomainExpenses)
	require.NoError(t, err)
	assert.Equal(t, provider.SourceLive, res.Source)
	assert.Equal(t, 0, res.Records.Len())
	assert.Equal(t, 0, snaps.calls)
}

// TestFallbackToSnapshot verifies live failure reads the snapshot and
// tags the result, with values equal to the snapshot's domain slice.
func TestFallbackToSnapshot(t *testing.T) {
	data := testDataset()
	src := &fakeSource{err: errBackendDown}
	snaps := &fakeSnapshots{snap: snapshotWith(data)}
	p := newProvider(src, snaps, nil)

	res, err := p.GetDomain(context.Background(), "user-1", ledger.DomainExpenses)
	require.NoError(t, err)

	assert.Equal(t, provider.SourceSnapshot, res.Source)
	assert.Equal(t, data.Expenses, res.Records.Expenses)
	assert.Equal(t, 1, src.calls, "live is always attempted first")
	assert.Equal(t, 1, snaps.calls)
	assert.True(t, p.UsingOfflineData())
}

// TestBothFailIsExplicitlyUnavailable verifies the provider never turns
// a double failure into an empty success.
func TestBothFailIsExplicitlyUnavailable(t *testing.T) {
	src := &fakeSource{err: errBackendDown}
	snaps := &fakeSnapshots{err: snapshot.ErrSnapshotNotFound}
	p := newProvider(src, snaps, nil)

	_, err := p.GetDomain(context.Background(), "user-1", ledger.DomainIncome)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

// TestOfflineFlagResetsOnLiveSuccess verifies the banner signal clears
// once the backend answers again.
func TestOfflineFlagResetsOnLiveSuccess(t *testing.T) {
	src := &fakeSource{err: errBackendDown}
	snaps := &fakeSnapshots{snap: snapshotWith(testDataset())}
	p := newProvider(src, snaps, nil)

	_, err := p.GetDomain(context.Background(), "user-1", ledger.DomainExpenses)
	require.NoError(t, err)
	require.True(t, p.UsingOfflineData())

	src.err = nil
	_, err = p.GetDomain(context.Background(), "user-1", ledger.DomainExpenses)
	require.NoError(t, err)
	assert.False(t, p.UsingOfflineData())
}

// TestGetAllMergesPerDomainSources verifies the concurrent all-domain
// read and its per-domain tags.
func TestGetAllMergesPerDomainSources(t *testing.T) {
	data := testDataset()
	src := &fakeSource{records: ledger.Records{}}
	snaps := &fakeSnapshots{snap: snapshotWith(data)}
	p := newProvider(src, snaps, nil)

	got, sources, err := p.GetAll(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, sources, len(ledger.AllDomains()))
	for _, domain := range ledger.AllDomains() {
		assert.Equal(t, provider.SourceLive, sources[domain])
	}
	assert.Equal(t, 0, got.Counts()[ledger.DomainExpenses])
}

// TestGetAllFailsWhenUnavailable verifies a fully unavailable domain
// fails the combined read.
func TestGetAllFailsWhenUnavailable(t *testing.T) {
	src := &fakeSource{err: errBackendDown}
	snaps := &fakeSnapshots{err: snapshot.ErrSnapshotNotFound}
	p := newProvider(src, snaps, nil)

	_, _, err := p.GetAll(context.Background(), "user-1")
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

// TestCategoriesUsesCache verifies a cache hit skips the live source and
// a miss repopulates the cache from a live read.
func TestCategoriesUsesCache(t *testing.T) {
	cats := []ledger.Category{{ID: "cat1", UserID: "user-1", Name: "Groceries"}}
	src := &fakeSource{records: ledger.Records{Categories: cats}}
	snaps := &fakeSnapshots{err: snapshot.ErrSnapshotNotFound}
	c := cache.New(cache.DefaultTTL)
	p := newProvider(src, snaps, c)

	got, tag, err := p.Categories(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, cats, got)
	assert.Equal(t, provider.SourceLive, tag)
	require.Equal(t, 1, src.calls)

	// Second read is served from the cache.
	got, _, err = p.Categories(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, cats, got)
	assert.Equal(t, 1, src.calls, "cache hit must not touch the live source")
}

// TestCategoriesSnapshotNotCached verifies snapshot-sourced category
// lists do not linger in the freshness cache.
func TestCategoriesSnapshotNotCached(t *testing.T) {
	data := testDataset()
	src := &fakeSource{err: errBackendDown}
	snaps := &fakeSnapshots{snap: snapshotWith(data)}
	c := cache.New(cache.DefaultTTL)
	p := newProvider(src, snaps, c)

	_, tag, err := p.Categories(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, provider.SourceSnapshot, tag)
	assert.Equal(t, 0, c.Len())
}

func testDataset() ledger.Dataset {
	return ledger.Dataset{
		Expenses:   []ledger.Expense{{ID: "e1", UserID: "user-1", Category: "Groceries"}},
		Income:     []ledger.Income{{ID: "i1", UserID: "user-1", Source: "Salary"}},
		Categories: []ledger.Category{{ID: "cat1", UserID: "user-1", Name: "Groceries"}},
		ForValues:  []ledger.ForValue{{ID: "f1", UserID: "user-1", Value: "Week 31"}},
		Cards:      []ledger.Card{{ID: "c1", UserID: "user-1", Name: "Main", LastFour: "4242"}},
	}
}
