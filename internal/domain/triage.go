package domain

import "time"

// ModifierKind identifies a scoring adjustment applied after the base scan.
type ModifierKind string

const (
	ModifierIndustry   ModifierKind = "industry"
	ModifierCultural   ModifierKind = "cultural"
	ModifierRepetition ModifierKind = "repetition"
)

// KeywordHit is one matched lexicon phrase with its contribution, retained
// for audit.
type KeywordHit struct {
	Phrase string  `json:"phrase"`
	Weight float64 `json:"weight"`
	Turns  int     `json:"turns"`
}

// ModifierApplication records a modifier that fired and its factor.
type ModifierApplication struct {
	Kind   ModifierKind `json:"kind"`
	Detail string       `json:"detail,omitempty"`
	Factor float64      `json:"factor"`
}

// TriageResult is the immutable outcome of scoring one call. Score is always
// within [0.0, 1.0].
type TriageResult struct {
	ID                         string
	TenantID                   string
	CallID                     string
	Score                      float64
	Language                   string
	Matches                    []KeywordHit
	Modifiers                  []ModifierApplication
	RequiresImmediateAttention bool
	CreatedAt                  time.Time
}
