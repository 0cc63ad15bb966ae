// Package entity implements the pattern → fuzzy → LLM extraction
// cascade of §4.7 and the validation rules of §4.8.
package entity

import "strings"

// Subcategory is one bookable offering under a Service.
type Subcategory struct {
	ID            string
	Name          string
	RateCardID    string
	StartingPrice float64
}

// Service is a top-level catalog category (e.g. "Painting").
type Service struct {
	ID            string
	Name          string
	Synonyms      []string
	Subcategories []Subcategory
}

// Catalog is the in-memory service catalog the fuzzy resolver searches.
// A real deployment loads this from the collaborator catalog service;
// this is the seed set used for resolution and tests.
type Catalog struct {
	Services []Service
}

// DefaultCatalog seeds the handful of services the spec's scenarios
// reference directly (painting, cleaning, plumbing, AC service,
// packers and movers).
func DefaultCatalog() *Catalog {
	return &Catalog{Services: []Service{
		{
			ID: "cat-painting", Name: "Painting", Synonyms: []string{"paint", "painter"},
			Subcategories: []Subcategory{
				{ID: "sub-interior-paint", Name: "Interior Painting", RateCardID: "rc-int-paint", StartingPrice: 1499},
				{ID: "sub-exterior-paint", Name: "Exterior Painting", RateCardID: "rc-ext-paint", StartingPrice: 2499},
				{ID: "sub-waterproofing", Name: "Waterproofing", RateCardID: "rc-waterproof", StartingPrice: 1999},
			},
		},
		{
			ID: "cat-cleaning", Name: "Home Cleaning", Synonyms: []string{"house cleaning", "cleaning", "deep clean"},
			Subcategories: []Subcategory{
				{ID: "sub-full-home-clean", Name: "Full Home Cleaning", RateCardID: "rc-full-clean", StartingPrice: 999},
			},
		},
		{
			ID: "cat-plumbing", Name: "Plumbing", Synonyms: []string{"plumber", "pipe repair"},
			Subcategories: []Subcategory{
				{ID: "sub-plumbing-general", Name: "General Plumbing", RateCardID: "rc-plumb-general", StartingPrice: 299},
			},
		},
		{
			ID: "cat-ac-service", Name: "AC Service", Synonyms: []string{"ac repair", "air conditioner service"},
			Subcategories: []Subcategory{
				{ID: "sub-ac-general", Name: "AC General Service", RateCardID: "rc-ac-general", StartingPrice: 499},
			},
		},
		{
			ID: "cat-packers-movers", Name: "Packers and Movers", Synonyms: []string{"packers", "movers", "pakkers", "relocation"},
			Subcategories: []Subcategory{
				{ID: "sub-local-shift", Name: "Local Shifting", RateCardID: "rc-local-shift", StartingPrice: 3499},
				{ID: "sub-intercity-shift", Name: "Intercity Shifting", RateCardID: "rc-intercity-shift", StartingPrice: 6999},
			},
		},
	}}
}

// FindExact looks up a service by exact (case-insensitive) name or
// synonym match.
func (c *Catalog) FindExact(name string) (Service, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, s := range c.Services {
		if strings.ToLower(s.Name) == lower {
			return s, true
		}
		for _, syn := range s.Synonyms {
			if strings.ToLower(syn) == lower {
				return s, true
			}
		}
	}
	return Service{}, false
}

// FindSubcategory resolves a subcategory within category by numeric
// index (1-based, as shown in the question generator's list) or by
// name match, per §4.8's SERVICE_SUBCATEGORY rule.
func (c *Catalog) FindSubcategory(category Service, value string) (Subcategory, bool) {
	value = strings.TrimSpace(value)
	if idx, ok := parseIndex(value); ok {
		if idx >= 1 && idx <= len(category.Subcategories) {
			return category.Subcategories[idx-1], true
		}
		return Subcategory{}, false
	}
	lower := strings.ToLower(value)
	for _, sub := range category.Subcategories {
		if strings.ToLower(sub.Name) == lower || strings.Contains(strings.ToLower(sub.Name), lower) {
			return sub, true
		}
	}
	return Subcategory{}, false
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
