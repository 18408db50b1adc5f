package model

// SourceKind identifies the upstream a fragment describes
type SourceKind string

const (
	SourceLegislative  SourceKind = "legislative"
	SourceEncyclopedia SourceKind = "encyclopedia"
	SourceNews         SourceKind = "news"

	// SourceProfile is catalog-only: promises, controversies, voting record and
	// identity defaults that no live upstream is authoritative for.
	SourceProfile SourceKind = "profile"
)

// LiveSources lists the live upstreams in data_sources order
var LiveSources = []SourceKind{SourceLegislative, SourceEncyclopedia, SourceNews}

// Provenance records whether a fragment came from a live call or the catalog
type Provenance string

const (
	ProvenanceLive     Provenance = "live"
	ProvenanceFallback Provenance = "fallback"
)

// SourceFragment is the partial, source-tagged output of one source.
// Fragments are treated as immutable once returned.
type SourceFragment struct {
	Kind       SourceKind
	Provenance Provenance
	Reason     string // why live data was unusable; empty for live fragments

	Party      string
	Position   string
	TermPeriod string
	Biography  string

	Bills         []Bill
	Activities    []Activity
	Promises      []Promise
	Controversies []Controversy
	VotingRecord  *VotingRecord
}

// Unavailable builds an empty fragment carrying the reason the source failed
func Unavailable(kind SourceKind, reason string) SourceFragment {
	return SourceFragment{
		Kind:       kind,
		Provenance: ProvenanceFallback,
		Reason:     reason,
	}
}

// Usable reports whether the fragment carries the fields its source is required to supply
func (f SourceFragment) Usable() bool {
	if f.Provenance != ProvenanceLive {
		return false
	}
	switch f.Kind {
	case SourceLegislative:
		return len(f.Bills) > 0
	case SourceEncyclopedia:
		return f.Biography != ""
	case SourceNews:
		return len(f.Activities) > 0
	}
	return false
}

// Clone returns a deep copy so callers can never alias shared data
func (f SourceFragment) Clone() SourceFragment {
	out := f
	out.Bills = append([]Bill(nil), f.Bills...)
	out.Activities = append([]Activity(nil), f.Activities...)
	out.Controversies = append([]Controversy(nil), f.Controversies...)
	if f.Promises != nil {
		out.Promises = make([]Promise, len(f.Promises))
		for i, p := range f.Promises {
			if p.FulfillmentPercentage != nil {
				v := *p.FulfillmentPercentage
				p.FulfillmentPercentage = &v
			}
			out.Promises[i] = p
		}
	}
	if f.VotingRecord != nil {
		vr := *f.VotingRecord
		vr.KeyVotes = append([]KeyVote(nil), f.VotingRecord.KeyVotes...)
		out.VotingRecord = &vr
	}
	return out
}
