// Package aggregate fans a query out to every source client, substitutes catalog
// data per source, and merges the fragments into one PoliticianRecord.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/polscope/internal/fallback"
	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/sources"
)

// mergeOrder is the identity and list precedence. Profile is catalog-only and always last.
var mergeOrder = []model.SourceKind{
	model.SourceEncyclopedia,
	model.SourceLegislative,
	model.SourceNews,
	model.SourceProfile,
}

// Aggregator runs the source clients concurrently and merges their output
type Aggregator struct {
	clients map[model.SourceKind]sources.Client
	catalog *fallback.Catalog
	budget  time.Duration
	logger  *zap.Logger
}

// New creates an aggregator. Live kinds without a client always resolve to the catalog.
func New(clients []sources.Client, catalog *fallback.Catalog, budget time.Duration, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	byKind := make(map[model.SourceKind]sources.Client, len(clients))
	for _, c := range clients {
		byKind[c.Kind()] = c
	}
	return &Aggregator{
		clients: byKind,
		catalog: catalog,
		budget:  budget,
		logger:  logger,
	}
}

// Aggregate never fails: every source that errors, times out or returns nothing
// usable is replaced by its catalog fragment. Wall-clock cost is the slowest
// client, not the sum.
func (a *Aggregator) Aggregate(ctx context.Context, q model.PoliticianQuery) *model.PoliticianRecord {
	kinds := model.LiveSources
	slots := make([]model.SourceFragment, len(kinds))
	latencies := make([]time.Duration, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		client, ok := a.clients[kind]
		if !ok {
			slots[i] = model.Unavailable(kind, "source not configured")
			continue
		}
		g.Go(func() error {
			start := time.Now()
			slots[i] = a.fetch(ctx, client, q.Name)
			latencies[i] = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()

	resolved := make(map[model.SourceKind]model.SourceFragment, len(mergeOrder))
	dataSources := make([]model.SourceKind, 0, len(kinds))

	for i, kind := range kinds {
		frag := slots[i]
		if frag.Usable() {
			resolved[kind] = frag
			dataSources = append(dataSources, kind)
			a.logger.Info("source resolved",
				zap.String("politician", q.Name),
				zap.String("source", string(kind)),
				zap.String("provenance", string(model.ProvenanceLive)),
				zap.Duration("latency", latencies[i]),
			)
			continue
		}

		reason := frag.Reason
		if reason == "" {
			reason = "no usable data"
		}
		fb := a.catalog.Lookup(q.Name, kind)
		fb.Reason = reason
		resolved[kind] = fb

		a.logger.Warn("source degraded to fallback",
			zap.String("politician", q.Name),
			zap.String("source", string(kind)),
			zap.String("provenance", string(model.ProvenanceFallback)),
			zap.String("reason", reason),
			zap.Duration("latency", latencies[i]),
		)
	}
	resolved[model.SourceProfile] = a.catalog.Lookup(q.Name, model.SourceProfile)

	record := Merge(q.Name, resolved)
	record.DataSources = dataSources
	return record
}

// fetch calls one client, converting a panic into a failed fragment
func (a *Aggregator) fetch(ctx context.Context, client sources.Client, name string) (frag model.SourceFragment) {
	kind := client.Kind()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("source client panicked", zap.String("source", string(kind)), zap.Any("panic", r))
			frag = model.Unavailable(kind, fmt.Sprintf("client panic: %v", r))
		}
	}()

	frag = client.Fetch(ctx, name, a.budget)
	frag.Kind = kind
	return frag
}

// Merge combines resolved fragments in precedence order. Identity fields take the
// first non-empty live value, then the first non-empty fallback value; lists are
// concatenated without deduplication. DataSources is left empty for the caller.
func Merge(name string, resolved map[model.SourceKind]model.SourceFragment) *model.PoliticianRecord {
	rec := &model.PoliticianRecord{
		Name:          name,
		Activities:    []model.Activity{},
		Promises:      []model.Promise{},
		Bills:         []model.Bill{},
		Controversies: []model.Controversy{},
		VotingRecord:  model.VotingRecord{KeyVotes: []model.KeyVote{}},
		DataSources:   []model.SourceKind{},
	}

	// Identity: live fragments first, catalog values fill what is left
	for _, live := range []bool{true, false} {
		for _, kind := range mergeOrder {
			frag, ok := resolved[kind]
			if !ok || (frag.Provenance == model.ProvenanceLive) != live {
				continue
			}
			rec.Party = firstNonEmpty(rec.Party, frag.Party)
			rec.Position = firstNonEmpty(rec.Position, frag.Position)
			rec.TermPeriod = firstNonEmpty(rec.TermPeriod, frag.TermPeriod)
			rec.Biography = firstNonEmpty(rec.Biography, frag.Biography)
		}
	}

	var votes *model.VotingRecord
	for _, kind := range mergeOrder {
		frag, ok := resolved[kind]
		if !ok {
			continue
		}

		for _, b := range frag.Bills {
			rec.Bills = append(rec.Bills, sanitizeBill(b))
		}
		for _, act := range frag.Activities {
			rec.Activities = append(rec.Activities, sanitizeActivity(act))
		}
		for _, p := range frag.Promises {
			rec.Promises = append(rec.Promises, sanitizePromise(p))
		}
		rec.Controversies = append(rec.Controversies, frag.Controversies...)

		if votes == nil && frag.VotingRecord != nil {
			votes = frag.VotingRecord
		}
	}

	if votes != nil {
		rec.VotingRecord.Alignment = votes.Alignment
		rec.VotingRecord.KeyVotes = append(rec.VotingRecord.KeyVotes, votes.KeyVotes...)
	}

	return rec
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

func sanitizeBill(b model.Bill) model.Bill {
	if !b.Status.Valid() {
		b.Status, _ = model.ParseBillStatus(string(b.Status))
	}
	return b
}

func sanitizeActivity(a model.Activity) model.Activity {
	if !a.Impact.Valid() {
		a.Impact, _ = model.ParseActivityImpact(string(a.Impact))
	}
	return a
}

func sanitizePromise(p model.Promise) model.Promise {
	if !p.Status.Valid() {
		p.Status, _ = model.ParsePromiseStatus(string(p.Status))
	}
	if p.FulfillmentPercentage != nil {
		v := model.ClampPercentage(*p.FulfillmentPercentage)
		p.FulfillmentPercentage = &v
	}
	return p
}
