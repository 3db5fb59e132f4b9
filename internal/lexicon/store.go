// Package lexicon holds the per-industry, per-language emergency phrase
// tables the classifier scores against. The store is read-only after
// construction so classifiers can share it across requests.
package lexicon

import (
	"sort"
	"strings"
)

// Entry is one weighted emergency phrase.
type Entry struct {
	Phrase string
	Weight float64
}

// CulturalMarker is a phrasing idiom that signals urgency indirectly in a
// given language. Matching one multiplies the accumulated weight.
type CulturalMarker struct {
	Phrase string
	Factor float64
}

// Store indexes lexicon entries by industry and language.
type Store struct {
	entries        map[string]map[string][]Entry
	industryBoosts map[string]map[string]float64
	cultural       map[string][]CulturalMarker
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		entries:        make(map[string]map[string][]Entry),
		industryBoosts: make(map[string]map[string]float64),
		cultural:       make(map[string][]CulturalMarker),
	}
}

// AddEntry registers a phrase. Called during construction only; the phrase
// is matched case-insensitively later, so it is normalized here.
func (s *Store) AddEntry(industry, language, phrase string, weight float64) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	language = strings.ToLower(strings.TrimSpace(language))
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if industry == "" || language == "" || phrase == "" || weight <= 0 {
		return
	}
	byLang, ok := s.entries[industry]
	if !ok {
		byLang = make(map[string][]Entry)
		s.entries[industry] = byLang
	}
	for i, existing := range byLang[language] {
		if existing.Phrase == phrase {
			byLang[language][i].Weight = weight
			return
		}
	}
	byLang[language] = append(byLang[language], Entry{Phrase: phrase, Weight: weight})
}

// AddIndustryBoost registers a multiplier applied when phrase matches for
// the given industry.
func (s *Store) AddIndustryBoost(industry, phrase string, factor float64) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if industry == "" || phrase == "" || factor <= 0 {
		return
	}
	boosts, ok := s.industryBoosts[industry]
	if !ok {
		boosts = make(map[string]float64)
		s.industryBoosts[industry] = boosts
	}
	boosts[phrase] = factor
}

// AddCulturalMarker registers an indirect-urgency idiom for a language.
func (s *Store) AddCulturalMarker(language, phrase string, factor float64) {
	language = strings.ToLower(strings.TrimSpace(language))
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if language == "" || phrase == "" || factor <= 0 {
		return
	}
	s.cultural[language] = append(s.cultural[language], CulturalMarker{Phrase: phrase, Factor: factor})
}

// Entries returns the phrase table for an industry and language, merged with
// the generic table. Unknown industries fall back to generic alone; the
// second return reports whether the industry has a dedicated table.
func (s *Store) Entries(industry, language string) ([]Entry, bool) {
	industry = strings.ToLower(strings.TrimSpace(industry))
	language = strings.ToLower(strings.TrimSpace(language))

	known := false
	var merged []Entry
	seen := make(map[string]bool)
	if byLang, ok := s.entries[industry]; ok && industry != "generic" {
		known = true
		for _, entry := range byLang[language] {
			merged = append(merged, entry)
			seen[entry.Phrase] = true
		}
	}
	if byLang, ok := s.entries["generic"]; ok {
		for _, entry := range byLang[language] {
			if !seen[entry.Phrase] {
				merged = append(merged, entry)
			}
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Phrase < merged[j].Phrase })
	return merged, known
}

// IndustryBoost returns the multiplier for a phrase under an industry, or 1.
func (s *Store) IndustryBoost(industry, phrase string) float64 {
	boosts, ok := s.industryBoosts[strings.ToLower(industry)]
	if !ok {
		return 1
	}
	factor, ok := boosts[strings.ToLower(phrase)]
	if !ok {
		return 1
	}
	return factor
}

// CulturalMarkers returns the idiom list for a language.
func (s *Store) CulturalMarkers(language string) []CulturalMarker {
	return s.cultural[strings.ToLower(language)]
}

// Languages lists every language with at least one entry.
func (s *Store) Languages() []string {
	set := make(map[string]bool)
	for _, byLang := range s.entries {
		for lang := range byLang {
			set[lang] = true
		}
	}
	langs := make([]string, 0, len(set))
	for lang := range set {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// HasLanguage reports whether the store carries any entries for a language.
func (s *Store) HasLanguage(language string) bool {
	language = strings.ToLower(strings.TrimSpace(language))
	for _, byLang := range s.entries {
		if len(byLang[language]) > 0 {
			return true
		}
	}
	return false
}
