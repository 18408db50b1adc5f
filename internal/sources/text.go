package sources

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/polscope/internal/model"
)

// StripHTML returns the text content of an HTML snippet with whitespace collapsed.
// Script and style bodies are dropped.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return model.NormalizeName(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var buf strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return model.NormalizeName(buf.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			buf.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				buf.Write(z.Text())
			}
		case html.SelfClosingTagToken:
			buf.WriteByte(' ')
		}
	}
}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Executive Action", []string{"executive order", "signs order", "pardon", "veto"}},
	{"Legislation", []string{"bill", "legislation", "act ", "senate votes", "house votes", "into law"}},
	{"Diplomacy", []string{"summit", "foreign", "ambassador", "treaty", "visit to", "talks with", "nato", "g7", "g20"}},
	{"Campaign", []string{"campaign", "rally", "election", "poll", "primary", "voters", "endorse"}},
	{"Policy Initiative", []string{"plan", "policy", "initiative", "program", "proposal"}},
}

var controversialKeywords = []string{
	"scandal", "indict", "controvers", "lawsuit", "criticiz", "criticis", "probe",
	"investigation", "backlash", "accused", "impeach", "resign",
}

var positiveKeywords = []string{
	"praised", "wins", "won", "celebrat", "launches", "signs", "passes", "record high",
	"breakthrough", "agreement", "deal reached",
}

// classifyCategory picks an activity category from headline keywords
func classifyCategory(text string) string {
	lower := strings.ToLower(text)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return "Public Statement"
}

// classifyImpact maps headline keywords onto the impact enum. Controversy wins over praise.
func classifyImpact(text string) model.ActivityImpact {
	lower := strings.ToLower(text)
	for _, kw := range controversialKeywords {
		if strings.Contains(lower, kw) {
			return model.ImpactControversial
		}
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			return model.ImpactPositive
		}
	}
	return model.ImpactNeutral
}

// nameMatches reports whether candidate ("Sen. Biden, Joseph R. [D-DE]") refers to
// the queried name: the surname must appear and some token must share the first
// name's initial, so "Joe Biden" matches "Joseph R. Biden".
func nameMatches(query, candidate string) bool {
	qTokens := nameTokens(query)
	if len(qTokens) == 0 {
		return false
	}
	cTokens := nameTokens(candidate)

	surname := qTokens[len(qTokens)-1]
	found := false
	for _, tok := range cTokens {
		if tok == surname {
			found = true
			break
		}
	}
	if !found || len(qTokens) == 1 {
		return found
	}

	initial := qTokens[0][:1]
	for _, tok := range cTokens {
		if tok != surname && strings.HasPrefix(tok, initial) {
			return true
		}
	}
	return false
}

func nameTokens(s string) []string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '[', ']', '(', ')', '"':
			return ' '
		}
		return r
	}, s)
	return strings.Fields(s)
}
