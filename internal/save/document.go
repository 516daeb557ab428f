// Package save converts a session to and from its JSON save document.
package save

import "github.com/peterkuimelis/greenhouse/internal/game"

// Version is written into every document.
const Version = 1

// Document is the save file's wire shape.
type Document struct {
	Version      int                    `json:"version"`
	TurnData     TurnData               `json:"turnData"`
	ScoreData    ScoreData              `json:"scoreData"`
	DeckData     DeckData               `json:"deckData"`
	Plants       []PlantEntry           `json:"plants"`
	RetainedCard *RetainedEntry         `json:"retainedCard,omitempty"`
	EfficacyData *game.EfficacySnapshot `json:"efficacyData,omitempty"`
}

type TurnData struct {
	Round       int    `json:"round"`
	TurnInRound int    `json:"turnInRound"`
	Phase       string `json:"phase"`
}

type ScoreData struct {
	Money int `json:"money"`
	Score int `json:"score"`
}

type DeckData struct {
	ActionDeck     []CardEntry    `json:"actionDeck"`
	DiscardPile    []CardEntry    `json:"discardPile"`
	ActionHand     []CardEntry    `json:"actionHand"`
	PlayerStickers []StickerEntry `json:"playerStickers"`
}

// CardEntry stores a card as its type plus the scalars that may differ from the prototype.
type CardEntry struct {
	CardTypeIdentifier string         `json:"cardTypeIdentifier"`
	Value              *int           `json:"value,omitempty"`
	Stickers           []StickerEntry `json:"stickers"`
}

type StickerEntry struct {
	StickerTypeIdentifier string `json:"stickerTypeIdentifier"`
	Name                  string `json:"name"`
	Value                 *int   `json:"value,omitempty"`
}

// PlantEntry stores one plant's history. Afflictions and treatments are identifiers.
type PlantEntry struct {
	PlantCard          CardEntry `json:"plantCard"`
	LocationIndex      int       `json:"locationIndex"`
	CurrentAfflictions []string  `json:"currentAfflictions"`
	PriorAfflictions   []string  `json:"priorAfflictions"`
	CurrentTreatments  []string  `json:"currentTreatments"`
	UsedTreatments     []string  `json:"usedTreatments"`
	MoldIntensity      float64   `json:"moldIntensity"`
}

type RetainedEntry struct {
	Card           CardEntry `json:"card"`
	HasPaidForCard bool      `json:"hasPaidForCard"`
	IsCardLocked   bool      `json:"isCardLocked"`
}
