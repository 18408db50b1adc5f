package model

import (
	"errors"
	"strings"
)

// ErrEmptyName is returned when a query normalizes to the empty string
var ErrEmptyName = errors.New("politician name is required")

// PoliticianQuery is a normalized politician name
type PoliticianQuery struct {
	Name string
}

// NormalizeName trims and collapses whitespace runs, preserving case
func NormalizeName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// NewQuery normalizes raw and rejects blank input
func NewQuery(raw string) (PoliticianQuery, error) {
	name := NormalizeName(raw)
	if name == "" {
		return PoliticianQuery{}, ErrEmptyName
	}
	return PoliticianQuery{Name: name}, nil
}

// Key is the case-insensitive lookup key for the query
func (q PoliticianQuery) Key() string {
	return strings.ToLower(q.Name)
}
