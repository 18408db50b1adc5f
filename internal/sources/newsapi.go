package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/polscope/internal/model"
)

type newsResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []newsArticle `json:"articles"`
}

type newsArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// removedMarker is what NewsAPI puts in place of withdrawn articles
const removedMarker = "[Removed]"

// NewsClient reads recent coverage from NewsAPI
type NewsClient struct {
	transport *Transport
	baseURL   string
	apiKey    string
	pageSize  int
}

// NewNewsClient creates a NewsAPI client
func NewNewsClient(t *Transport, cfg model.NewsConfig) *NewsClient {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 5
	}
	return &NewsClient{
		transport: t,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		pageSize:  pageSize,
	}
}

// Kind returns the news source kind
func (c *NewsClient) Kind() model.SourceKind {
	return model.SourceNews
}

// Fetch searches recent articles mentioning name
func (c *NewsClient) Fetch(ctx context.Context, name string, budget time.Duration) model.SourceFragment {
	if !model.CredentialSet(c.apiKey) {
		return model.Unavailable(model.SourceNews, ReasonNoCredential)
	}

	ctx, cancel := withBudget(ctx, budget)
	defer cancel()

	q := url.Values{}
	q.Set("q", `"`+name+`"`)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("language", "en")
	endpoint := c.baseURL + "/everything?" + q.Encode()

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var resp newsResponse
	if err := c.transport.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return model.Unavailable(model.SourceNews, failureReason(ctx, err))
	}
	if resp.Status == "error" {
		reason := "upstream error"
		if resp.Message != "" {
			reason += ": " + truncate(resp.Message, 200)
		}
		return model.Unavailable(model.SourceNews, reason)
	}

	frag := model.SourceFragment{
		Kind:       model.SourceNews,
		Provenance: model.ProvenanceLive,
	}

	for _, a := range resp.Articles {
		title := model.NormalizeName(a.Title)
		if title == "" || title == removedMarker {
			continue
		}

		desc := StripHTML(a.Description)
		details := desc
		if a.Source.Name != "" {
			details = strings.TrimSpace(desc + " (" + a.Source.Name + ")")
		}

		frag.Activities = append(frag.Activities, model.Activity{
			Activity: title,
			Category: classifyCategory(title + " " + desc),
			Date:     monthOf(a.PublishedAt),
			Impact:   classifyImpact(title + " " + desc),
			Details:  details,
		})
	}

	if len(frag.Activities) == 0 {
		return model.Unavailable(model.SourceNews, ReasonNoResults)
	}
	return frag
}

// monthOf reduces an RFC 3339 timestamp to YYYY-MM
func monthOf(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format("2006-01")
	}
	if len(ts) >= 7 && ts[4] == '-' {
		return ts[:7]
	}
	return ""
}
