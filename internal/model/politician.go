package model

import "strings"

// BillStatus is the legislative state of a bill
type BillStatus string

const (
	BillIntroduced  BillStatus = "Introduced"
	BillPassed      BillStatus = "Passed"
	BillSigned      BillStatus = "Signed into Law"
	BillFailed      BillStatus = "Failed"
	BillVetoed      BillStatus = "Vetoed"
	BillInCommittee BillStatus = "In Committee"
)

// Valid reports whether s is one of the enumerated bill statuses
func (s BillStatus) Valid() bool {
	switch s {
	case BillIntroduced, BillPassed, BillSigned, BillFailed, BillVetoed, BillInCommittee:
		return true
	}
	return false
}

// ParseBillStatus maps an upstream spelling onto a BillStatus.
// Unknown values map to BillIntroduced; ok is false in that case.
func ParseBillStatus(raw string) (BillStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "introduced":
		return BillIntroduced, true
	case "passed", "passed house", "passed senate":
		return BillPassed, true
	case "signed into law", "signed", "enacted", "became law", "law":
		return BillSigned, true
	case "failed", "defeated", "rejected":
		return BillFailed, true
	case "vetoed", "veto":
		return BillVetoed, true
	case "in committee", "committee", "referred", "under review":
		return BillInCommittee, true
	}
	return BillIntroduced, false
}

// ActivityImpact classifies how an activity was received
type ActivityImpact string

const (
	ImpactPositive      ActivityImpact = "positive"
	ImpactNeutral       ActivityImpact = "neutral"
	ImpactControversial ActivityImpact = "controversial"
)

// Valid reports whether i is one of the enumerated impacts
func (i ActivityImpact) Valid() bool {
	switch i {
	case ImpactPositive, ImpactNeutral, ImpactControversial:
		return true
	}
	return false
}

// ParseActivityImpact maps free text onto an ActivityImpact, defaulting to neutral
func ParseActivityImpact(raw string) (ActivityImpact, bool) {
	i := ActivityImpact(strings.ToLower(strings.TrimSpace(raw)))
	if i.Valid() {
		return i, true
	}
	return ImpactNeutral, false
}

// PromiseStatus is the fulfillment state of a campaign or term promise
type PromiseStatus string

const (
	PromiseFulfilled          PromiseStatus = "fulfilled"
	PromisePartiallyFulfilled PromiseStatus = "partially_fulfilled"
	PromiseInProgress         PromiseStatus = "in_progress"
	PromiseNotFulfilled       PromiseStatus = "not_fulfilled"
	PromiseBroken             PromiseStatus = "broken"
)

// Valid reports whether s is one of the five enumerated promise statuses
func (s PromiseStatus) Valid() bool {
	switch s {
	case PromiseFulfilled, PromisePartiallyFulfilled, PromiseInProgress, PromiseNotFulfilled, PromiseBroken:
		return true
	}
	return false
}

// ParsePromiseStatus accepts "partially fulfilled", "Partially-Fulfilled" and similar spellings.
// Unknown values map to in_progress.
func ParsePromiseStatus(raw string) (PromiseStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	s := PromiseStatus(norm)
	if s.Valid() {
		return s, true
	}
	return PromiseInProgress, false
}

// Bill is a piece of legislation associated with the politician
type Bill struct {
	Title       string     `json:"title" yaml:"title" validate:"required"`
	BillNumber  string     `json:"bill_number,omitempty" yaml:"bill_number,omitempty"`
	Year        string     `json:"year" yaml:"year" validate:"required"`
	Status      BillStatus `json:"status" yaml:"status" validate:"oneof='Introduced' 'Passed' 'Signed into Law' 'Failed' 'Vetoed' 'In Committee'"`
	Description string     `json:"description" yaml:"description"`
	Role        string     `json:"role,omitempty" yaml:"role,omitempty"`
	ImpactArea  string     `json:"impact_area,omitempty" yaml:"impact_area,omitempty"`
}

// Activity is a recent public action
type Activity struct {
	Activity string         `json:"activity" yaml:"activity" validate:"required"`
	Category string         `json:"category" yaml:"category" validate:"required"`
	Date     string         `json:"date,omitempty" yaml:"date,omitempty"`
	Impact   ActivityImpact `json:"impact" yaml:"impact" validate:"oneof=positive neutral controversial"`
	Details  string         `json:"details,omitempty" yaml:"details,omitempty"`
}

// Promise is a commitment and its observed outcome
type Promise struct {
	Promise               string        `json:"promise" yaml:"promise" validate:"required"`
	Status                PromiseStatus `json:"status" yaml:"status" validate:"oneof=fulfilled partially_fulfilled in_progress not_fulfilled broken"`
	Evidence              string        `json:"evidence" yaml:"evidence"`
	Impact                string        `json:"impact" yaml:"impact"`
	FulfillmentPercentage *int          `json:"fulfillment_percentage,omitempty" yaml:"fulfillment_percentage,omitempty" validate:"omitempty,min=0,max=100"`
	MadeDuring            string        `json:"made_during,omitempty" yaml:"made_during,omitempty"`
	Timeline              string        `json:"timeline,omitempty" yaml:"timeline,omitempty"`
}

// KeyVote is a single notable vote or position
type KeyVote struct {
	Issue    string `json:"issue" yaml:"issue" validate:"required"`
	Position string `json:"position" yaml:"position" validate:"required"`
	Year     string `json:"year" yaml:"year"`
}

// VotingRecord summarizes alignment and notable votes
type VotingRecord struct {
	Alignment string    `json:"alignment" yaml:"alignment"`
	KeyVotes  []KeyVote `json:"key_votes" yaml:"key_votes" validate:"dive"`
}

// Controversy is a public dispute involving the politician
type Controversy struct {
	Year       string `json:"year" yaml:"year"`
	Issue      string `json:"issue" yaml:"issue" validate:"required"`
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// PoliticianRecord is the merged entity produced by aggregation
type PoliticianRecord struct {
	Name          string        `json:"politician"`
	Party         string        `json:"party,omitempty"`
	Position      string        `json:"position,omitempty"`
	TermPeriod    string        `json:"term_period,omitempty"`
	Biography     string        `json:"biography,omitempty"`
	Activities    []Activity    `json:"activities"`
	Promises      []Promise     `json:"promises"`
	Bills         []Bill        `json:"bills"`
	VotingRecord  VotingRecord  `json:"voting_record_summary"`
	Controversies []Controversy `json:"controversies"`
	DataSources   []SourceKind  `json:"data_sources"`
}

// ClampPercentage bounds a fulfillment percentage to [0,100]
func ClampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
