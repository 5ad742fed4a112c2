// Package provider orchestrates the offline-first read path: every
// domain read tries the live source first and falls back to the local
// snapshot when the live query fails. Each result carries a source tag
// so the UI can render provenance.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerlite/ledgerlite/internal/cache"
	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/live"
	"github.com/ledgerlite/ledgerlite/internal/snapshot"
)

// ErrUnavailable means the live source failed and no snapshot exists.
// Callers must distinguish this from an empty-but-successful read.
var ErrUnavailable = errors.New("data unavailable: live source failed and no local snapshot exists")

// Tag records which source served a result.
type Tag string

const (
	// SourceLive marks data served by the hosted backend.
	SourceLive Tag = "live"
	// SourceSnapshot marks data served from the local backup.
	SourceSnapshot Tag = "snapshot"
)

// Label returns the user-facing provenance string used by exports and
// banners.
func (t Tag) Label() string {
	if t == SourceSnapshot {
		return "Offline Backup"
	}
	return "Ledgerlite Cloud"
}

// Result is the outcome of a single-domain read. Records never blends
// rows from both sources: it is entirely live or entirely snapshot.
type Result struct {
	Domain  ledger.Domain
	Source  Tag
	Records ledger.Records
}

// SnapshotReader is the slice of the snapshot store the provider needs.
type SnapshotReader interface {
	Load(userID string) (*snapshot.Snapshot, error)
}

// Provider is the offline-first data provider.
type Provider struct {
	source    live.Source
	snapshots SnapshotReader
	cats      *cache.CategoryCache
	timeout   time.Duration
	logger    zerolog.Logger

	// offline flips to true whenever a read was served from snapshot,
	// and back to false on the next live success. Feeds the
	// "Using Offline Backup Data" banner.
	offline atomic.Bool
}

// New creates a provider. The cache may be nil when category caching is
// not wanted (it is optional glue, not part of the fallback path).
func New(source live.Source, snapshots SnapshotReader, cats *cache.CategoryCache, timeout time.Duration, logger zerolog.Logger) *Provider {
	return &Provider{
		source:    source,
		snapshots: snapshots,
		cats:      cats,
		timeout:   timeout,
		logger:    logger.With().Str("component", "provider").Logger(),
	}
}

// GetDomain reads one domain for userID. The live attempt always runs
// first under the configured timeout; the snapshot is consulted only
// when the live attempt fails. When both fail, ErrUnavailable is
// returned rather than an empty success.
func (p *Provider) GetDomain(ctx context.Context, userID string, domain ledger.Domain) (Result, error) {
	liveCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	records, liveErr := p.source.Fetch(liveCtx, live.Query{UserID: userID, Domain: domain})
	if liveErr == nil {
		p.offline.Store(false)
		return Result{Domain: domain, Source: SourceLive, Records: records}, nil
	}

	p.logger.Warn().
		Str("user_id", userID).
		Stringer("domain", domain).
		Err(liveErr).
		Msg("live query failed, falling back to snapshot")

	snap, snapErr := p.snapshots.Load(userID)
	if snapErr != nil {
		if errors.Is(snapErr, snapshot.ErrSnapshotNotFound) {
			return Result{}, fmt.Errorf("get %s for %s: %w", domain, userID, ErrUnavailable)
		}
		return Result{}, fmt.Errorf("get %s for %s: snapshot: %w", domain, userID, snapErr)
	}

	p.offline.Store(true)
	return Result{Domain: domain, Source: SourceSnapshot, Records: snap.Data.Slice(domain)}, nil
}

// GetAll reads every domain concurrently. Domains are independent: each
// one resolves its own source. The per-domain source tags are returned
// alongside the merged dataset. Any fully unavailable domain fails the
// whole call.
func (p *Provider) GetAll(ctx context.Context, userID string) (ledger.Dataset, map[ledger.Domain]Tag, error) {
	var (
		mu      sync.Mutex
		data    ledger.Dataset
		sources = make(map[ledger.Domain]Tag)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, domain := range ledger.AllDomains() {
		domain := domain
		g.Go(func() error {
			res, err := p.GetDomain(gctx, userID, domain)
			if err != nil {
				return err
			}
			mu.Lock()
			data.SetSlice(domain, res.Records)
			sources[domain] = res.Source
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ledger.Dataset{}, nil, err
	}
	return data, sources, nil
}

// Categories resolves the user's category list through the freshness
// cache. A cache hit skips both sources entirely; a miss goes through
// the normal offline-first path, and only live-sourced lists are cached
// so a stale snapshot read cannot outlive reconnection.
func (p *Provider) Categories(ctx context.Context, userID string) ([]ledger.Category, Tag, error) {
	if p.cats != nil {
		if cached, ok := p.cats.Get(userID); ok {
			return cached, SourceLive, nil
		}
	}

	res, err := p.GetDomain(ctx, userID, ledger.DomainCategories)
	if err != nil {
		return nil, "", err
	}
	if p.cats != nil && res.Source == SourceLive {
		p.cats.Set(userID, res.Records.Categories)
	}
	return res.Records.Categories, res.Source, nil
}

// UsingOfflineData reports whether the most recent read was served from
// the local snapshot.
func (p *Provider) UsingOfflineData() bool {
	return p.offline.Load()
}
