package domain

import (
	"github.com/google/uuid"
)

// CardContent is the immutable content of a flashcard as authored by the
// content-owning collaborator. The scheduler only reads its ID, its deck
// membership, and the optional difficulty hint; it never mutates content
// and never validates it, since the authoring service owns those rules.
type CardContent struct {
	ID         uuid.UUID `json:"id"`
	DeckID     uuid.UUID `json:"deck_id"`
	Tags       []string  `json:"tags,omitempty"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Difficulty string    `json:"difficulty,omitempty"` // authoring hint, e.g. "easy", "hard"
}
