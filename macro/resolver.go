package macro

import (
	"context"
	"fmt"
	"strings"
)

// Source is the candidate lookup the resolver disambiguates over. It is the
// narrow view of the food content store this package needs.
type Source interface {
	// FindByName returns every record whose name contains the query,
	// case-insensitively. The resolver applies the exact-then-partial policy
	// on top.
	FindByName(ctx context.Context, query string) ([]*Record, error)
}

// NotFoundError reports a food reference that matched no record, or matched
// only a malformed one.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no food record matches %q", e.Query)
}

// AmbiguousError reports a food reference that matched more than one record
// at the same precedence.
type AmbiguousError struct {
	Query      string
	Candidates int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("food reference %q is ambiguous (%d candidates)", e.Query, e.Candidates)
}

// Resolver maps a food name query to exactly one canonical record.
//
// Matching policy, in order: an exact case-insensitive name match wins if
// unique; otherwise a case-insensitive substring match wins if unique. Zero
// candidates yield NotFoundError, several yield AmbiguousError. Resolution
// failures are ordinary values so a single bad reference never aborts the
// aggregation of a whole ledger.
type Resolver struct {
	source Source
}

// NewResolver creates a resolver over the given candidate source.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve finds the canonical record for a food name query.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &NotFoundError{Query: query}
	}

	candidates, err := r.source.FindByName(ctx, query)
	if err != nil {
		return nil, err
	}

	var exact, partial []*Record
	for _, rec := range candidates {
		if strings.EqualFold(rec.Name, query) {
			exact = append(exact, rec)
		} else if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(query)) {
			partial = append(partial, rec)
		}
	}

	switch {
	case len(exact) == 1:
		return checkRecord(exact[0], query)
	case len(exact) > 1:
		return nil, &AmbiguousError{Query: query, Candidates: len(exact)}
	case len(partial) == 1:
		return checkRecord(partial[0], query)
	case len(partial) > 1:
		return nil, &AmbiguousError{Query: query, Candidates: len(partial)}
	default:
		return nil, &NotFoundError{Query: query}
	}
}

// checkRecord downgrades a malformed record to a resolution failure.
func checkRecord(rec *Record, query string) (*Record, error) {
	if !rec.Valid() {
		return nil, &NotFoundError{Query: query}
	}
	return rec, nil
}
