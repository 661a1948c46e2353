// Package listing filters and orders complaint lists that have already been
// fetched. Every function is pure: inputs are never modified and results
// are freshly allocated slices.
package listing

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

// All is the wildcard value accepted for Status, Category and Type.
const All = "all"

// Criteria are ANDed together. Empty or "all" fields do not constrain.
type Criteria struct {
	Status   string
	Category string
	Type     string
	Search   string
}

type SortKey string

const (
	SortNewest SortKey = "newest"
	SortOldest SortKey = "oldest"
	SortTitle  SortKey = "title"
	SortStatus SortKey = "status"
)

var SortKeys = []SortKey{SortNewest, SortOldest, SortTitle, SortStatus}

// ParseSortKey accepts the key names case-insensitively. Empty means newest.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortNewest, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func unconstrained(v string) bool {
	return v == "" || v == All
}

// Match reports whether c satisfies every predicate in cr.
func (cr Criteria) Match(c models.Complaint) bool {
	if !unconstrained(cr.Status) && c.Status != cr.Status {
		return false
	}
	if !unconstrained(cr.Category) && c.Category != cr.Category {
		return false
	}
	if !unconstrained(cr.Type) && c.ComplaintType != cr.Type {
		return false
	}
	return matchesSearch(c, cr.Search)
}

// matchesSearch is a case-insensitive substring match over title, problem,
// student id and the owner's name and email.
func matchesSearch(c models.Complaint, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	fields := []string{c.Title, c.Problem, c.StudentID}
	if c.User != nil {
		fields = append(fields, c.User.Name, c.User.Email)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func Filter(items []models.Complaint, cr Criteria) []models.Complaint {
	out := make([]models.Complaint, 0, len(items))
	for _, c := range items {
		if cr.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Sort returns a stably ordered copy of items. Unknown keys keep the input
// order.
func Sort(items []models.Complaint, key SortKey) []models.Complaint {
	out := slices.Clone(items)
	if out == nil {
		out = []models.Complaint{}
	}

	var cmp func(a, b models.Complaint) int
	switch key {
	case SortNewest:
		cmp = func(a, b models.Complaint) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case SortOldest:
		cmp = func(a, b models.Complaint) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortTitle:
		// Collators keep scratch buffers, so each call gets its own.
		col := collate.New(language.Und)
		cmp = func(a, b models.Complaint) int { return col.CompareString(a.Title, b.Title) }
	case SortStatus:
		col := collate.New(language.Und)
		cmp = func(a, b models.Complaint) int { return col.CompareString(a.Status, b.Status) }
	default:
		return out
	}

	slices.SortStableFunc(out, cmp)
	return out
}

// Apply filters then sorts.
func Apply(items []models.Complaint, cr Criteria, key SortKey) []models.Complaint {
	return Sort(Filter(items, cr), key)
}

// CountByStatus tallies items per status. Every known status is present,
// zero when unused.
func CountByStatus(items []models.Complaint) map[string]int {
	counts := make(map[string]int, len(models.Statuses))
	for _, s := range models.Statuses {
		counts[s] = 0
	}
	for _, c := range items {
		counts[c.Status]++
	}
	return counts
}
