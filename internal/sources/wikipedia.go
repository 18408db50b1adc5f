package sources

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/polscope/internal/model"
)

// wikiSummary is the REST v1 page summary payload
type wikiSummary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
}

var (
	partyPattern = regexp.MustCompile(`[Mm]ember of the ([A-Z][A-Za-z-]*(?: [A-Z][A-Za-z-]*)*) Party`)
	sincePattern = regexp.MustCompile(`\s*\(?\bsince (\d{4})\)?\s*$`)
	rangePattern = regexp.MustCompile(`\s*\(?\bfrom (\d{4}) (?:to|until) (\d{4})\)?\s*$`)
	spanPattern  = regexp.MustCompile(`\s*\(?(\d{4})\s*[-–]\s*(\d{4}|present)\)?\s*$`)
)

// EncyclopediaClient reads biography and identity from the Wikipedia REST API
type EncyclopediaClient struct {
	transport *Transport
	baseURL   string
}

// NewEncyclopediaClient creates a Wikipedia summary client
func NewEncyclopediaClient(t *Transport, cfg model.EncyclopediaConfig) *EncyclopediaClient {
	return &EncyclopediaClient{
		transport: t,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// Kind returns the encyclopedia source kind
func (c *EncyclopediaClient) Kind() model.SourceKind {
	return model.SourceEncyclopedia
}

// Fetch reads the page summary for name
func (c *EncyclopediaClient) Fetch(ctx context.Context, name string, budget time.Duration) model.SourceFragment {
	ctx, cancel := withBudget(ctx, budget)
	defer cancel()

	title := strings.ReplaceAll(name, " ", "_")
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(title)

	var page wikiSummary
	if err := c.transport.GetJSON(ctx, endpoint, nil, &page); err != nil {
		return model.Unavailable(model.SourceEncyclopedia, failureReason(ctx, err))
	}

	if page.Type == "disambiguation" {
		return model.Unavailable(model.SourceEncyclopedia, "ambiguous title")
	}

	extract := model.NormalizeName(page.Extract)
	if extract == "" {
		return model.Unavailable(model.SourceEncyclopedia, ReasonNoResults)
	}

	position, term := splitTerm(model.NormalizeName(page.Description))

	return model.SourceFragment{
		Kind:       model.SourceEncyclopedia,
		Provenance: model.ProvenanceLive,
		Biography:  extract,
		Party:      extractParty(extract),
		Position:   position,
		TermPeriod: term,
	}
}

// splitTerm separates "President of the United States since 2021" into
// ("President of the United States", "2021-present").
func splitTerm(desc string) (position, term string) {
	if m := sincePattern.FindStringSubmatchIndex(desc); m != nil {
		return strings.TrimSpace(desc[:m[0]]), desc[m[2]:m[3]] + "-present"
	}
	if m := rangePattern.FindStringSubmatchIndex(desc); m != nil {
		return strings.TrimSpace(desc[:m[0]]), desc[m[2]:m[3]] + "-" + desc[m[4]:m[5]]
	}
	if m := spanPattern.FindStringSubmatchIndex(desc); m != nil {
		return strings.TrimSpace(desc[:m[0]]), desc[m[2]:m[3]] + "-" + desc[m[4]:m[5]]
	}
	return desc, ""
}

func extractParty(text string) string {
	m := partyPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1] + " Party"
}
