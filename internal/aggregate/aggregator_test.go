package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/polscope/internal/fallback"
	"github.com/ppiankov/polscope/internal/model"
	"github.com/ppiankov/polscope/internal/sources"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClient returns a canned fragment after an optional delay
type fakeClient struct {
	kind  model.SourceKind
	frag  model.SourceFragment
	delay time.Duration
	panic bool
}

func (f *fakeClient) Kind() model.SourceKind { return f.kind }

func (f *fakeClient) Fetch(ctx context.Context, name string, budget time.Duration) model.SourceFragment {
	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return model.Unavailable(f.kind, ctx.Err().Error())
		}
	}
	return f.frag
}

func liveLegislative() *fakeClient {
	return &fakeClient{kind: model.SourceLegislative, frag: model.SourceFragment{
		Kind:       model.SourceLegislative,
		Provenance: model.ProvenanceLive,
		Party:      "Legislative Party",
		Bills: []model.Bill{
			{Title: "Live Bill", Year: "2021", Status: model.BillPassed, Description: "live"},
		},
	}}
}

func liveEncyclopedia() *fakeClient {
	return &fakeClient{kind: model.SourceEncyclopedia, frag: model.SourceFragment{
		Kind:       model.SourceEncyclopedia,
		Provenance: model.ProvenanceLive,
		Biography:  "Live biography.",
		Party:      "Encyclopedia Party",
		Position:   "Senator",
	}}
}

func liveNews() *fakeClient {
	return &fakeClient{kind: model.SourceNews, frag: model.SourceFragment{
		Kind:       model.SourceNews,
		Provenance: model.ProvenanceLive,
		Activities: []model.Activity{
			{Activity: "Live headline", Category: "Campaign", Impact: model.ImpactNeutral},
		},
	}}
}

func failing(kind model.SourceKind) *fakeClient {
	return &fakeClient{kind: kind, frag: model.Unavailable(kind, "unexpected status: 503")}
}

func newTestAggregator(t *testing.T, clients ...sources.Client) *Aggregator {
	t.Helper()
	catalog, err := fallback.Default()
	if err != nil {
		t.Fatal(err)
	}
	return New(clients, catalog, time.Second, zaptest.NewLogger(t))
}

func query(t *testing.T, name string) model.PoliticianQuery {
	t.Helper()
	q, err := model.NewQuery(name)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestAggregate_AllLive(t *testing.T) {
	agg := newTestAggregator(t, liveLegislative(), liveEncyclopedia(), liveNews())
	rec := agg.Aggregate(context.Background(), query(t, "Joe Biden"))

	want := []model.SourceKind{model.SourceLegislative, model.SourceEncyclopedia, model.SourceNews}
	if diff := cmp.Diff(want, rec.DataSources); diff != "" {
		t.Errorf("data_sources mismatch (-want +got):\n%s", diff)
	}
	if rec.Party != "Encyclopedia Party" {
		t.Errorf("encyclopedia party should win, got %q", rec.Party)
	}
	if rec.Biography != "Live biography." {
		t.Errorf("unexpected biography: %q", rec.Biography)
	}
	if len(rec.Bills) != 1 || rec.Bills[0].Title != "Live Bill" {
		t.Errorf("expected only live bills, got %+v", rec.Bills)
	}
	if len(rec.Activities) != 1 || rec.Activities[0].Activity != "Live headline" {
		t.Errorf("expected only live activities, got %+v", rec.Activities)
	}
	if len(rec.Promises) == 0 {
		t.Error("expected profile promises")
	}
}

func TestAggregate_OneSourceFails(t *testing.T) {
	agg := newTestAggregator(t, liveLegislative(), liveEncyclopedia(), failing(model.SourceNews))
	rec := agg.Aggregate(context.Background(), query(t, "Joe Biden"))

	want := []model.SourceKind{model.SourceLegislative, model.SourceEncyclopedia}
	if diff := cmp.Diff(want, rec.DataSources); diff != "" {
		t.Errorf("data_sources mismatch (-want +got):\n%s", diff)
	}

	catalog, _ := fallback.Default()
	wantActivities := catalog.Lookup("Joe Biden", model.SourceNews).Activities
	if diff := cmp.Diff(wantActivities, rec.Activities); diff != "" {
		t.Errorf("activities should come from the catalog (-want +got):\n%s", diff)
	}
	if len(rec.Bills) != 1 || rec.Bills[0].Title != "Live Bill" {
		t.Errorf("live bills must survive a news failure, got %+v", rec.Bills)
	}
	if rec.Biography != "Live biography." {
		t.Errorf("live biography must survive a news failure, got %q", rec.Biography)
	}
}

func TestAggregate_EncyclopediaFailsLiveIdentityWins(t *testing.T) {
	tests := []struct {
		name     string
		wantPos  string
		wantTerm string
	}{
		// Curated: catalog still fills identity the live fragments lack
		{name: "Joe Biden", wantPos: "President of the United States", wantTerm: "2021-2025"},
		// Uncurated: the placeholder must not shadow the live party
		{name: "Zzzz Nonexistent Person", wantPos: "Political figure", wantTerm: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(t, liveLegislative(), failing(model.SourceEncyclopedia), liveNews())
			rec := agg.Aggregate(context.Background(), query(t, tt.name))

			want := []model.SourceKind{model.SourceLegislative, model.SourceNews}
			if diff := cmp.Diff(want, rec.DataSources); diff != "" {
				t.Errorf("data_sources mismatch (-want +got):\n%s", diff)
			}
			if rec.Party != "Legislative Party" {
				t.Errorf("live legislative party should beat the catalog, got %q", rec.Party)
			}
			if rec.Biography == "" {
				t.Error("expected catalog biography in place of the failed encyclopedia")
			}
			if tt.wantPos != "" && rec.Position != tt.wantPos {
				t.Errorf("position = %q, want %q", rec.Position, tt.wantPos)
			}
			if tt.wantTerm != "" && rec.TermPeriod != tt.wantTerm {
				t.Errorf("term_period = %q, want %q", rec.TermPeriod, tt.wantTerm)
			}
		})
	}
}

func TestAggregate_AllFail(t *testing.T) {
	agg := newTestAggregator(t,
		failing(model.SourceLegislative),
		failing(model.SourceEncyclopedia),
		failing(model.SourceNews),
	)
	rec := agg.Aggregate(context.Background(), query(t, "Zzzz Nonexistent Person"))

	if rec.DataSources == nil || len(rec.DataSources) != 0 {
		t.Errorf("expected empty non-nil data_sources, got %#v", rec.DataSources)
	}
	if rec.Name != "Zzzz Nonexistent Person" {
		t.Errorf("unexpected name %q", rec.Name)
	}
	if len(rec.Bills) == 0 || len(rec.Promises) == 0 || len(rec.Activities) == 0 {
		t.Errorf("expected placeholder lists, got bills=%d promises=%d activities=%d",
			len(rec.Bills), len(rec.Promises), len(rec.Activities))
	}
	assertValidEnums(t, rec)
}

func TestAggregate_NoClients(t *testing.T) {
	agg := newTestAggregator(t)
	rec := agg.Aggregate(context.Background(), query(t, "Kamala Harris"))

	if len(rec.DataSources) != 0 {
		t.Errorf("expected no live sources, got %v", rec.DataSources)
	}
	if rec.Party != "Democratic Party" {
		t.Errorf("expected catalog party, got %q", rec.Party)
	}
}

func TestAggregate_ConcurrentNotSequential(t *testing.T) {
	delay := 150 * time.Millisecond
	leg, enc, news := liveLegislative(), liveEncyclopedia(), liveNews()
	leg.delay, enc.delay, news.delay = delay, delay, delay

	agg := newTestAggregator(t, leg, enc, news)

	start := time.Now()
	rec := agg.Aggregate(context.Background(), query(t, "Joe Biden"))
	elapsed := time.Since(start)

	if len(rec.DataSources) != 3 {
		t.Fatalf("expected all sources live, got %v", rec.DataSources)
	}
	if elapsed >= 2*delay {
		t.Errorf("aggregate took %v, expected close to %v", elapsed, delay)
	}
}

func TestAggregate_SlowSourceDoesNotBlockOthers(t *testing.T) {
	slow := liveNews()
	slow.delay = time.Minute

	catalog, _ := fallback.Default()
	agg := New([]sources.Client{liveLegislative(), liveEncyclopedia(), slow}, catalog, time.Second, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	rec := agg.Aggregate(ctx, query(t, "Joe Biden"))
	want := []model.SourceKind{model.SourceLegislative, model.SourceEncyclopedia}
	if diff := cmp.Diff(want, rec.DataSources); diff != "" {
		t.Errorf("data_sources mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_RecoversPanic(t *testing.T) {
	bad := &fakeClient{kind: model.SourceEncyclopedia, panic: true}
	agg := newTestAggregator(t, liveLegislative(), bad, liveNews())

	rec := agg.Aggregate(context.Background(), query(t, "Joe Biden"))

	want := []model.SourceKind{model.SourceLegislative, model.SourceNews}
	if diff := cmp.Diff(want, rec.DataSources); diff != "" {
		t.Errorf("data_sources mismatch (-want +got):\n%s", diff)
	}
	if rec.Biography == "" {
		t.Error("expected catalog biography after panic")
	}
}

func TestAggregate_LiveKindWithoutFields(t *testing.T) {
	// Claims to be live but carries no bills: must not be listed.
	empty := &fakeClient{kind: model.SourceLegislative, frag: model.SourceFragment{
		Kind:       model.SourceLegislative,
		Provenance: model.ProvenanceLive,
	}}
	agg := newTestAggregator(t, empty)
	rec := agg.Aggregate(context.Background(), query(t, "Joe Biden"))

	if len(rec.DataSources) != 0 {
		t.Errorf("expected no live sources, got %v", rec.DataSources)
	}
	if len(rec.Bills) == 0 {
		t.Error("expected catalog bills")
	}
}

func TestMerge_Precedence(t *testing.T) {
	pct := 150
	resolved := map[model.SourceKind]model.SourceFragment{
		model.SourceLegislative: {
			Party:      "L",
			Position:   "L-pos",
			TermPeriod: "2001-2005",
			Bills:      []model.Bill{{Title: "dup", Year: "2001", Status: "Enacted"}},
		},
		model.SourceEncyclopedia: {
			Position: "E-pos",
			Bills:    []model.Bill{{Title: "dup", Year: "2001", Status: model.BillPassed}},
		},
		model.SourceNews: {
			Party:      "N",
			Activities: []model.Activity{{Activity: "a", Category: "c", Impact: "weird"}},
		},
		model.SourceProfile: {
			Party:        "P",
			TermPeriod:   "1999-2000",
			Promises:     []model.Promise{{Promise: "p", Status: "Partially Fulfilled", FulfillmentPercentage: &pct}},
			VotingRecord: &model.VotingRecord{Alignment: "moderate", KeyVotes: []model.KeyVote{{Issue: "i", Position: "For"}}},
		},
	}

	rec := Merge("Test Person", resolved)

	if rec.Party != "L" || rec.Position != "E-pos" || rec.TermPeriod != "2001-2005" {
		t.Errorf("identity precedence wrong: party=%q position=%q term=%q", rec.Party, rec.Position, rec.TermPeriod)
	}

	wantBills := []model.Bill{
		{Title: "dup", Year: "2001", Status: model.BillPassed},
		{Title: "dup", Year: "2001", Status: model.BillSigned},
	}
	if diff := cmp.Diff(wantBills, rec.Bills); diff != "" {
		t.Errorf("bills should concatenate without dedupe (-want +got):\n%s", diff)
	}
	if rec.Activities[0].Impact != model.ImpactNeutral {
		t.Errorf("unknown impact should sanitize to neutral, got %s", rec.Activities[0].Impact)
	}
	if rec.Promises[0].Status != model.PromisePartiallyFulfilled {
		t.Errorf("expected partially_fulfilled, got %s", rec.Promises[0].Status)
	}
	if *rec.Promises[0].FulfillmentPercentage != 100 {
		t.Errorf("expected clamped percentage, got %d", *rec.Promises[0].FulfillmentPercentage)
	}
	if pct != 150 {
		t.Error("merge must not write through fragment pointers")
	}
	if rec.VotingRecord.Alignment != "moderate" || len(rec.VotingRecord.KeyVotes) != 1 {
		t.Errorf("unexpected voting record: %+v", rec.VotingRecord)
	}
}

func TestMerge_LiveIdentityBeatsFallback(t *testing.T) {
	fallbackEnc := model.SourceFragment{
		Kind:       model.SourceEncyclopedia,
		Provenance: model.ProvenanceFallback,
		Biography:  "catalog bio",
		Party:      "Catalog Party",
		Position:   "Catalog Position",
		TermPeriod: "1990-1994",
	}
	profile := model.SourceFragment{
		Kind:       model.SourceProfile,
		Provenance: model.ProvenanceFallback,
		Party:      "Unknown",
		Position:   "Political figure",
		TermPeriod: "Unknown",
	}

	tests := []struct {
		name   string
		frags  []model.SourceFragment
		wantID [4]string // party, position, term, biography
	}{
		{
			name: "legislative live party",
			frags: []model.SourceFragment{
				fallbackEnc,
				{
					Kind:       model.SourceLegislative,
					Provenance: model.ProvenanceLive,
					Party:      "Legislative Party",
					Bills:      []model.Bill{{Title: "b", Status: model.BillPassed}},
				},
				profile,
			},
			wantID: [4]string{"Legislative Party", "Catalog Position", "1990-1994", "catalog bio"},
		},
		{
			name: "news live position and term",
			frags: []model.SourceFragment{
				fallbackEnc,
				{
					Kind:       model.SourceNews,
					Provenance: model.ProvenanceLive,
					Position:   "News Position",
					TermPeriod: "2020-2024",
					Activities: []model.Activity{{Activity: "a", Impact: model.ImpactNeutral}},
				},
				profile,
			},
			wantID: [4]string{"Catalog Party", "News Position", "2020-2024", "catalog bio"},
		},
		{
			name: "live legislative beats live news",
			frags: []model.SourceFragment{
				fallbackEnc,
				{
					Kind:       model.SourceLegislative,
					Provenance: model.ProvenanceLive,
					Party:      "Legislative Party",
				},
				{
					Kind:       model.SourceNews,
					Provenance: model.ProvenanceLive,
					Party:      "News Party",
				},
				profile,
			},
			wantID: [4]string{"Legislative Party", "Catalog Position", "1990-1994", "catalog bio"},
		},
		{
			name: "only fallback falls through to profile",
			frags: []model.SourceFragment{
				{Kind: model.SourceEncyclopedia, Provenance: model.ProvenanceFallback, Biography: "catalog bio"},
				profile,
			},
			wantID: [4]string{"Unknown", "Political figure", "Unknown", "catalog bio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := make(map[model.SourceKind]model.SourceFragment, len(tt.frags))
			for _, f := range tt.frags {
				resolved[f.Kind] = f
			}
			rec := Merge("Test Person", resolved)
			got := [4]string{rec.Party, rec.Position, rec.TermPeriod, rec.Biography}
			if diff := cmp.Diff(tt.wantID, got); diff != "" {
				t.Errorf("identity mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_EmptyListsAreNonNil(t *testing.T) {
	rec := Merge("Nobody", nil)
	if rec.Bills == nil || rec.Activities == nil || rec.Promises == nil ||
		rec.Controversies == nil || rec.VotingRecord.KeyVotes == nil || rec.DataSources == nil {
		t.Errorf("expected non-nil slices: %+v", rec)
	}
}

func assertValidEnums(t *testing.T, rec *model.PoliticianRecord) {
	t.Helper()
	for _, b := range rec.Bills {
		if !b.Status.Valid() {
			t.Errorf("invalid bill status %q", b.Status)
		}
	}
	for _, a := range rec.Activities {
		if !a.Impact.Valid() {
			t.Errorf("invalid activity impact %q", a.Impact)
		}
	}
	for _, p := range rec.Promises {
		if !p.Status.Valid() {
			t.Errorf("invalid promise status %q", p.Status)
		}
	}
}
