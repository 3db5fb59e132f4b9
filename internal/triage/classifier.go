// Package triage scores call transcripts for urgency against the lexicon
// store and decides whether a call needs immediate attention.
package triage

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/domain"
	"github.com/spec-kit/call-triage-service/internal/lexicon"
)

// repetition bonus per extra turn a phrase appears in, and its cap.
const (
	repetitionStep = 0.25
	repetitionCap  = 0.5
)

// Classifier scores transcripts. It holds no per-call state and is safe for
// concurrent use.
type Classifier struct {
	store            *lexicon.Store
	defaultThreshold float64
	logger           *zap.Logger
	now              func() time.Time
}

// NewClassifier builds a classifier over an injected read-only store.
func NewClassifier(store *lexicon.Store, defaultThreshold float64, logger *zap.Logger) *Classifier {
	if defaultThreshold <= 0 || defaultThreshold > 1 {
		defaultThreshold = 0.7
	}
	return &Classifier{
		store:            store,
		defaultThreshold: defaultThreshold,
		logger:           logger,
		now:              time.Now,
	}
}

// Score classifies one call. It never fails: an empty transcript yields a
// zero result, and the returned score is always within [0.0, 1.0].
func (c *Classifier) Score(callCtx domain.CallContext) domain.TriageResult {
	result := domain.TriageResult{
		ID:        uuid.NewString(),
		TenantID:  callCtx.TenantID,
		CallID:    callCtx.CallID,
		Language:  c.workingLanguage(callCtx),
		CreatedAt: c.now(),
	}

	turns := normalizedTurns(callCtx.Transcript)
	if len(turns) == 0 {
		return result
	}

	entries, industryKnown := c.store.Entries(callCtx.Industry, result.Language)
	industry := callCtx.Industry
	if !industryKnown {
		industry = domain.IndustryGeneric
	}

	var raw float64
	for _, entry := range entries {
		matchedTurns := 0
		for _, turn := range turns {
			if strings.Contains(turn, entry.Phrase) {
				matchedTurns++
			}
		}
		if matchedTurns == 0 {
			continue
		}
		result.Matches = append(result.Matches, domain.KeywordHit{
			Phrase: entry.Phrase,
			Weight: entry.Weight,
			Turns:  matchedTurns,
		})
		raw += entry.Weight
	}

	if raw == 0 {
		return result
	}

	// Modifier order is fixed: industry, then cultural, then repetition.
	for _, hit := range result.Matches {
		boost := c.store.IndustryBoost(industry, hit.Phrase)
		if boost != 1 {
			raw += hit.Weight * (boost - 1)
			result.Modifiers = append(result.Modifiers, domain.ModifierApplication{
				Kind:   domain.ModifierIndustry,
				Detail: hit.Phrase,
				Factor: boost,
			})
		}
	}

	full := strings.Join(turns, " ")
	for _, marker := range c.store.CulturalMarkers(result.Language) {
		if strings.Contains(full, marker.Phrase) {
			raw *= marker.Factor
			result.Modifiers = append(result.Modifiers, domain.ModifierApplication{
				Kind:   domain.ModifierCultural,
				Detail: marker.Phrase,
				Factor: marker.Factor,
			})
		}
	}

	for _, hit := range result.Matches {
		if hit.Turns <= 1 {
			continue
		}
		bonus := repetitionStep * float64(hit.Turns-1)
		if bonus > repetitionCap {
			bonus = repetitionCap
		}
		raw += hit.Weight * bonus
		result.Modifiers = append(result.Modifiers, domain.ModifierApplication{
			Kind:   domain.ModifierRepetition,
			Detail: hit.Phrase,
			Factor: 1 + bonus,
		})
	}

	// Asymptotic saturation: monotonic in the accumulated weight and never
	// reaches 1.0, so there is no cliff at any particular match count.
	result.Score = 1 - math.Exp(-raw)

	threshold := callCtx.Threshold
	if threshold <= 0 {
		threshold = c.defaultThreshold
	}
	result.RequiresImmediateAttention = result.Score >= threshold

	if c.logger != nil {
		c.logger.Debug("transcript scored",
			zap.String("tenant_id", callCtx.TenantID),
			zap.String("call_id", callCtx.CallID),
			zap.String("language", result.Language),
			zap.Float64("score", result.Score),
			zap.Int("matches", len(result.Matches)),
			zap.Bool("urgent", result.RequiresImmediateAttention),
		)
	}
	return result
}

// workingLanguage prefers the explicit hint, then the language whose lexicon
// overlaps the transcript with the highest total weight. Ties, including the
// no-match case, break toward the tenant's primary language.
func (c *Classifier) workingLanguage(callCtx domain.CallContext) string {
	primary := strings.ToLower(callCtx.PrimaryLanguage)
	if primary == "" {
		primary = "en"
	}

	if hint := strings.ToLower(strings.TrimSpace(callCtx.LanguageHint)); hint != "" && c.store.HasLanguage(hint) {
		return hint
	}

	turns := normalizedTurns(callCtx.Transcript)
	if len(turns) == 0 {
		return primary
	}

	candidates := callCtx.Languages
	if len(candidates) == 0 {
		candidates = c.store.Languages()
	}

	// The primary language sets the baseline; another language must beat it
	// strictly, so exact ties stay with the primary.
	best := primary
	bestWeight := c.overlapWeight(callCtx.Industry, primary, turns)
	for _, lang := range candidates {
		lang = strings.ToLower(lang)
		if lang == primary {
			continue
		}
		if total := c.overlapWeight(callCtx.Industry, lang, turns); total > bestWeight {
			bestWeight = total
			best = lang
		}
	}
	return best
}

func (c *Classifier) overlapWeight(industry, language string, turns []string) float64 {
	entries, _ := c.store.Entries(industry, language)
	total := 0.0
	for _, entry := range entries {
		for _, turn := range turns {
			if strings.Contains(turn, entry.Phrase) {
				total += entry.Weight
			}
		}
	}
	return total
}

func normalizedTurns(transcript []domain.TranscriptTurn) []string {
	var turns []string
	for _, turn := range transcript {
		text := strings.ToLower(strings.TrimSpace(turn.Text))
		if text == "" {
			continue
		}
		turns = append(turns, text)
	}
	return turns
}
