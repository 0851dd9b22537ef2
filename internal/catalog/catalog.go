// Package catalog implements the project catalog query engine.
//
// A Filter is one set of criteria usable in both query locations: Predicate
// renders it as parameterized SQL conditions for the repository, Match applies
// the same semantics to an in-memory project. The two must stay in agreement.
package catalog

import (
	"sort"
	"strings"

	"github.com/demowall/backend/internal/models"
)

// Filter is a set of catalog filter criteria. Zero values mean "no constraint",
// so an empty Status leaves publication state unconstrained (admin callers only).
type Filter struct {
	Category string
	Tool     string
	Year     int
	Search   string
	Status   models.ProjectStatus
}

// OrderBy is the catalog result ordering rendered to SQL: most recent first,
// ties broken by insertion order (lower ID first). Must stay in agreement
// with Sort.
const OrderBy = "ORDER BY p.created_at DESC, p.id ASC"

// Predicate renders the filter as SQL conditions with placeholder arguments.
// The returned string is empty when no constraint applies. The free-text search
// term is intentionally excluded: it is evaluated in memory via MatchSearch.
//
// The tool criterion is a substring match against the unsplit tools column
// (LIKE %tool%), not a membership test against the split tag list. Matching
// "Figma" therefore also matches "FigmaX"; this looseness is kept for
// compatibility with existing clients.
func (f Filter) Predicate() (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.Category != "" {
		conds = append(conds, "p.category = ?")
		args = append(args, f.Category)
	}
	if f.Tool != "" {
		conds = append(conds, "p.tools LIKE ?")
		args = append(args, "%"+f.Tool+"%")
	}
	if f.Year != 0 {
		conds = append(conds, "p.year = ?")
		args = append(args, f.Year)
	}

	return strings.Join(conds, " AND "), args
}

// Match reports whether a project satisfies every criterion, including the
// free-text search. It mirrors Predicate exactly for the structured fields.
func (f Filter) Match(p *models.Project) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Tool != "" && !strings.Contains(p.Tools, f.Tool) {
		return false
	}
	if f.Year != 0 && p.Year != f.Year {
		return false
	}
	return f.MatchSearch(p)
}

// MatchSearch reports whether a project matches the free-text search term:
// a case-insensitive substring test against the concatenation of title,
// description, the split tool labels joined by space, and category.
// An empty term matches everything.
func (f Filter) MatchSearch(p *models.Project) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}

	haystack := strings.ToLower(strings.Join([]string{
		p.Title,
		p.Description,
		strings.Join(p.ToolList(), " "),
		p.Category,
	}, " "))

	return strings.Contains(haystack, term)
}

// Sort orders projects most recent first, ties broken by insertion order
// (lower ID first). This is the same rule OrderBy renders to SQL; Sort runs
// after the in-memory pass so the ordering is defined here authoritatively.
func Sort(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}
