package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesMergesIndustryWithGeneric(t *testing.T) {
	s := NewStore()
	s.AddEntry("generic", "en", "emergency", 0.9)
	s.AddEntry("hvac", "en", "no heat", 0.8)

	entries, known := s.Entries("hvac", "en")
	require.True(t, known)
	require.Len(t, entries, 2)

	phrases := []string{entries[0].Phrase, entries[1].Phrase}
	assert.Contains(t, phrases, "emergency")
	assert.Contains(t, phrases, "no heat")
}

func TestEntriesUnknownIndustryFallsBackToGeneric(t *testing.T) {
	s := NewStore()
	s.AddEntry("generic", "en", "emergency", 0.9)
	s.AddEntry("hvac", "en", "no heat", 0.8)

	entries, known := s.Entries("landscaping", "en")
	assert.False(t, known)
	require.Len(t, entries, 1)
	assert.Equal(t, "emergency", entries[0].Phrase)
}

func TestIndustryEntryShadowsGenericDuplicate(t *testing.T) {
	s := NewStore()
	s.AddEntry("generic", "en", "no heat", 0.4)
	s.AddEntry("property_management", "en", "no heat", 0.6)

	entries, known := s.Entries("property_management", "en")
	require.True(t, known)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.6, entries[0].Weight)
}

func TestAddEntryOverwritesWeight(t *testing.T) {
	s := NewStore()
	s.AddEntry("hvac", "en", "no heat", 0.5)
	s.AddEntry("hvac", "en", "No Heat", 0.8)

	entries, _ := s.Entries("hvac", "en")
	require.Len(t, entries, 1)
	assert.Equal(t, 0.8, entries[0].Weight)
}

func TestIndustryBoostDefaultsToOne(t *testing.T) {
	s := NewStore()
	s.AddIndustryBoost("hvac", "gas smell", 1.5)

	assert.Equal(t, 1.5, s.IndustryBoost("hvac", "gas smell"))
	assert.Equal(t, 1.0, s.IndustryBoost("hvac", "no heat"))
	assert.Equal(t, 1.0, s.IndustryBoost("plumbing", "gas smell"))
}

func TestLanguages(t *testing.T) {
	s := NewStore()
	s.AddEntry("generic", "en", "emergency", 0.9)
	s.AddEntry("generic", "es", "emergencia", 0.9)

	assert.Equal(t, []string{"en", "es"}, s.Languages())
	assert.True(t, s.HasLanguage("en"))
	assert.False(t, s.HasLanguage("fr"))
}

func TestDefaultStoreCoversShippedIndustries(t *testing.T) {
	s := Default()
	for _, industry := range []string{"hvac", "plumbing", "electrical", "property_management"} {
		for _, lang := range []string{"en", "es"} {
			entries, known := s.Entries(industry, lang)
			assert.True(t, known, industry)
			assert.NotEmpty(t, entries, industry+"/"+lang)
		}
	}
}
