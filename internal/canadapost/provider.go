// Package canadapost talks to the Canada Post AddressComplete Find service.
package canadapost

import (
	"context"

	"github.com/dukerupert/addresscomplete/internal/address"
)

// Lookup defaults, matching what the AddressComplete widget sends.
const (
	DefaultCountry   = "CAN"
	DefaultLanguage  = "en"
	DefaultSearchFor = "Everything"
)

// Provider finds address suggestions for a partial search term.
// Implementations: Client (HTTP), MockProvider (tests).
type Provider interface {
	Find(ctx context.Context, params FindParams) ([]address.RawSuggestion, error)
}

// FindParams contains the parameters of one Find call.
type FindParams struct {
	SearchTerm string
	Country    string
	Language   string
	SearchFor  string
	LastID     Continuation
}

// Continuation is the optional LastId token used to drill into a container
// result (e.g. a building with many units). The zero value means "none".
type Continuation struct {
	ID    string
	Valid bool
}

// ContinueFrom returns a present continuation token.
func ContinueFrom(id string) Continuation {
	return Continuation{ID: id, Valid: true}
}

// DefaultFindParams returns the parameters used for a plain search.
func DefaultFindParams(term string) FindParams {
	return FindParams{
		SearchTerm: term,
		Country:    DefaultCountry,
		Language:   DefaultLanguage,
		SearchFor:  DefaultSearchFor,
	}
}

// ParamsFor returns a params builder for a fixed country and language.
// Empty values keep the defaults.
func ParamsFor(country, language string) func(term string) FindParams {
	return func(term string) FindParams {
		p := DefaultFindParams(term)
		if country != "" {
			p.Country = country
		}
		if language != "" {
			p.Language = language
		}
		return p
	}
}

// Result is the outcome of a Find call as a single value. Exactly one of
// Items and Err is meaningful.
type Result struct {
	Items []address.RawSuggestion
	Err   error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Addresses parses the items, or returns an empty list for a failed call.
func (r Result) Addresses() []address.Address {
	if r.Err != nil {
		return []address.Address{}
	}
	return address.ParseAll(r.Items)
}

// Lookup runs p.Find and folds the outcome into a Result.
func Lookup(ctx context.Context, p Provider, params FindParams) Result {
	items, err := p.Find(ctx, params)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Items: items}
}
