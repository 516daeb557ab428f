package save

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterkuimelis/greenhouse/internal/game"
)

// DefaultMaxBytes caps a save document.
const DefaultMaxBytes = 1 << 20

var (
	ErrEmptyPayload    = errors.New("save payload is empty")
	ErrPayloadTooLarge = errors.New("save payload exceeds size limit")
	ErrMalformed       = errors.New("save payload is malformed")
)

// Codec writes and reads save documents for a session.
type Codec struct {
	MaxBytes int
	// PersistDiscoveries includes efficacy relations and discoveries in saves. When off,
	// loading clears them.
	PersistDiscoveries bool
}

func NewCodec(maxBytes int, persistDiscoveries bool) *Codec {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Codec{MaxBytes: maxBytes, PersistDiscoveries: persistDiscoveries}
}

// Save serializes the session.
func (c *Codec) Save(s *game.Session) ([]byte, error) {
	doc := Encode(s.Capture(c.PersistDiscoveries))
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	if len(data) > c.MaxBytes {
		return nil, fmt.Errorf("encode save: %d bytes: %w", len(data), ErrPayloadTooLarge)
	}
	return data, nil
}

// Load replaces the session's state with the one in blob. Recoverable problems are
// fixed up and logged as warnings; anything else leaves the session untouched.
func (c *Codec) Load(ctx context.Context, s *game.Session, blob []byte) error {
	doc, err := c.Decode(blob)
	if err != nil {
		s.Journal.Warn("load rejected: %v", err)
		return err
	}
	st, err := Build(doc, s.Catalog, s.Rules, s.Journal)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if !c.PersistDiscoveries {
		st.Efficacy = nil
	}
	if err := s.Restore(ctx, st); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

// Decode checks the payload bounds and parses the document.
func (c *Codec) Decode(blob []byte) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(blob)) == 0 {
		return doc, ErrEmptyPayload
	}
	if len(blob) > c.MaxBytes {
		return doc, fmt.Errorf("%d bytes (limit %d): %w", len(blob), c.MaxBytes, ErrPayloadTooLarge)
	}
	if err := json.Unmarshal(blob, &doc); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

// Encode flattens a captured state into a document.
func Encode(st game.State) Document {
	doc := Document{
		Version: Version,
		TurnData: TurnData{
			Round:       st.Round,
			TurnInRound: st.Turn,
			Phase:       st.Phase.Key(),
		},
		ScoreData: ScoreData{Money: st.Money, Score: st.Score},
		DeckData: DeckData{
			ActionDeck:     encodeCards(st.Deck),
			DiscardPile:    encodeCards(st.Discard),
			ActionHand:     encodeCards(st.Hand),
			PlayerStickers: encodeStickers(st.Stickers),
		},
		Plants:       []PlantEntry{},
		EfficacyData: st.Efficacy,
	}
	for _, p := range st.Plants {
		entry := PlantEntry{
			PlantCard:          encodeCard(p.Card),
			LocationIndex:      p.Location,
			CurrentAfflictions: []string{},
			PriorAfflictions:   append([]string{}, p.Prior...),
			CurrentTreatments:  append([]string{}, p.CurrentTreatments...),
			UsedTreatments:     append([]string{}, p.UsedTreatments...),
			MoldIntensity:      p.MoldIntensity,
		}
		for _, a := range p.Current {
			entry.CurrentAfflictions = append(entry.CurrentAfflictions, a.Identifier())
		}
		doc.Plants = append(doc.Plants, entry)
	}
	if st.Retained != nil && st.Retained.Card != nil {
		doc.RetainedCard = &RetainedEntry{
			Card:           encodeCard(st.Retained.Card),
			HasPaidForCard: st.Retained.Paid,
			IsCardLocked:   st.Retained.Locked,
		}
	}
	return doc
}

func encodeCards(cards []*game.Card) []CardEntry {
	out := make([]CardEntry, 0, len(cards))
	for _, card := range cards {
		out = append(out, encodeCard(card))
	}
	return out
}

func encodeCard(card *game.Card) CardEntry {
	entry := CardEntry{
		CardTypeIdentifier: card.TypeID,
		Stickers:           encodeStickers(card.Stickers),
	}
	if card.Value != nil {
		entry.Value = game.IntPtr(*card.Value)
	}
	return entry
}

func encodeStickers(stickers []*game.Sticker) []StickerEntry {
	out := make([]StickerEntry, 0, len(stickers))
	for _, s := range stickers {
		entry := StickerEntry{StickerTypeIdentifier: s.TypeID, Name: s.Name}
		if s.Value != nil {
			entry.Value = game.IntPtr(*s.Value)
		}
		out = append(out, entry)
	}
	return out
}
