package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/polscope/internal/model"
)

// congressBillsResponse is the subset of the Congress.gov v3 bill list we read
type congressBillsResponse struct {
	Bills []congressBill `json:"bills"`
}

type congressBill struct {
	Congress       int    `json:"congress"`
	Type           string `json:"type"`
	Number         string `json:"number"`
	Title          string `json:"title"`
	IntroducedDate string `json:"introducedDate"`
	LatestAction   struct {
		ActionDate string `json:"actionDate"`
		Text       string `json:"text"`
	} `json:"latestAction"`
	PolicyArea *struct {
		Name string `json:"name"`
	} `json:"policyArea"`
	Sponsors []congressMember `json:"sponsors"`
}

type congressMember struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Party     string `json:"party"`
}

func (m congressMember) name() string {
	if m.FullName != "" {
		return m.FullName
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// LegislativeClient reads sponsored legislation from Congress.gov
type LegislativeClient struct {
	transport *Transport
	baseURL   string
	apiKey    string
	limit     int
}

// NewLegislativeClient creates a Congress.gov client
func NewLegislativeClient(t *Transport, cfg model.LegislativeConfig) *LegislativeClient {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 20
	}
	return &LegislativeClient{
		transport: t,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		limit:     limit,
	}
}

// Kind returns the legislative source kind
func (c *LegislativeClient) Kind() model.SourceKind {
	return model.SourceLegislative
}

// Fetch lists bills matching name. Failures are reported in the fragment reason.
func (c *LegislativeClient) Fetch(ctx context.Context, name string, budget time.Duration) model.SourceFragment {
	if !model.CredentialSet(c.apiKey) {
		return model.Unavailable(model.SourceLegislative, ReasonNoCredential)
	}

	ctx, cancel := withBudget(ctx, budget)
	defer cancel()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("query", name)
	endpoint := c.baseURL + "/bill?" + q.Encode()

	header := http.Header{}
	header.Set("X-Api-Key", c.apiKey)

	var resp congressBillsResponse
	if err := c.transport.GetJSON(ctx, endpoint, header, &resp); err != nil {
		return model.Unavailable(model.SourceLegislative, failureReason(ctx, err))
	}

	frag := model.SourceFragment{
		Kind:       model.SourceLegislative,
		Provenance: model.ProvenanceLive,
	}

	for _, b := range resp.Bills {
		title := model.NormalizeName(b.Title)
		if title == "" {
			continue
		}

		bill := model.Bill{
			Title:       title,
			BillNumber:  formatBillNumber(b.Type, b.Number),
			Year:        yearOf(b.IntroducedDate, b.LatestAction.ActionDate),
			Status:      classifyBillStatus(b.LatestAction.Text),
			Description: model.NormalizeName(b.LatestAction.Text),
		}
		if bill.Year == "" {
			bill.Year = "Unknown"
		}
		if b.PolicyArea != nil {
			bill.ImpactArea = b.PolicyArea.Name
		}
		for _, s := range b.Sponsors {
			if nameMatches(name, s.name()) {
				bill.Role = "Sponsor"
				if frag.Party == "" {
					frag.Party = partyName(s.Party)
				}
				break
			}
		}

		frag.Bills = append(frag.Bills, bill)
	}

	if len(frag.Bills) == 0 {
		return model.Unavailable(model.SourceLegislative, ReasonNoResults)
	}
	return frag
}

var billTypePrefixes = map[string]string{
	"HR":      "H.R.",
	"S":       "S.",
	"HRES":    "H.Res.",
	"SRES":    "S.Res.",
	"HJRES":   "H.J.Res.",
	"SJRES":   "S.J.Res.",
	"HCONRES": "H.Con.Res.",
	"SCONRES": "S.Con.Res.",
}

// formatBillNumber renders type HR, number 1319 as "H.R. 1319"
func formatBillNumber(billType, number string) string {
	number = strings.TrimSpace(number)
	if number == "" {
		return ""
	}
	t := strings.ToUpper(strings.TrimSpace(billType))
	if prefix, ok := billTypePrefixes[t]; ok {
		return prefix + " " + number
	}
	if t == "" {
		return number
	}
	return t + " " + number
}

// classifyBillStatus maps a latestAction text onto the status enum
func classifyBillStatus(action string) model.BillStatus {
	lower := strings.ToLower(action)
	switch {
	case lower == "":
		return model.BillIntroduced
	case strings.Contains(lower, "became public law"), strings.Contains(lower, "signed by president"):
		return model.BillSigned
	case strings.Contains(lower, "vetoed"):
		return model.BillVetoed
	case strings.Contains(lower, "failed"), strings.Contains(lower, "not agreed to"):
		return model.BillFailed
	case strings.Contains(lower, "passed"), strings.Contains(lower, "agreed to"):
		return model.BillPassed
	case strings.Contains(lower, "referred"), strings.Contains(lower, "committee"):
		return model.BillInCommittee
	}
	status, _ := model.ParseBillStatus(action)
	return status
}

// yearOf returns the YYYY prefix of the first date that has one
func yearOf(dates ...string) string {
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if len(d) >= 4 {
			if _, err := strconv.Atoi(d[:4]); err == nil {
				return d[:4]
			}
		}
	}
	return ""
}

func partyName(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "D":
		return "Democratic Party"
	case "R":
		return "Republican Party"
	case "I", "ID":
		return "Independent"
	case "L":
		return "Libertarian Party"
	case "":
		return ""
	}
	return code
}

// Fragment reasons shared by the clients
const (
	ReasonNoCredential = "api key not configured"
	ReasonNoResults    = "no usable results"
)

// failureReason flattens a fetch error into a fragment reason
func failureReason(ctx context.Context, err error) string {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Sprintf("timeout: %v", err)
	}
	return err.Error()
}
