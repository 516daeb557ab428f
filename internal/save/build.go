package save

import (
	"fmt"
	"math"

	"github.com/peterkuimelis/greenhouse/internal/game"
)

// Build turns a parsed document into a state the session can restore.
//
// Out-of-range counters are clamped and an unknown phase falls back to PlacePlants, each
// with a warning. A card, sticker, affliction or treatment whose identifier is not in the
// catalog fails the whole build.
func Build(doc Document, c *game.Catalog, rules game.Rules, journal *game.Journal) (game.State, error) {
	if doc.Version > Version {
		journal.Warn("save version %d is newer than %d", doc.Version, Version)
	}

	st := game.State{
		Round: clampCounter(journal, "round", doc.TurnData.Round, 1, math.MaxInt32),
		Turn:  clampCounter(journal, "turnInRound", doc.TurnData.TurnInRound, 1, max(rules.TurnsPerRound, 1)),
		Money: clampCounter(journal, "money", doc.ScoreData.Money, 0, math.MaxInt32),
		Score: clampCounter(journal, "score", doc.ScoreData.Score, 0, math.MaxInt32),
	}
	phase, ok := game.ParsePhase(doc.TurnData.Phase)
	if !ok {
		journal.Warn("unknown phase %q, using %s", doc.TurnData.Phase, game.PhasePlacePlants)
		phase = game.PhasePlacePlants
	}
	st.Phase = phase

	var err error
	if st.Deck, err = buildCards(c, "actionDeck", doc.DeckData.ActionDeck); err != nil {
		return game.State{}, err
	}
	if st.Discard, err = buildCards(c, "discardPile", doc.DeckData.DiscardPile); err != nil {
		return game.State{}, err
	}
	if st.Hand, err = buildCards(c, "actionHand", doc.DeckData.ActionHand); err != nil {
		return game.State{}, err
	}
	if st.Stickers, err = buildStickers(c, doc.DeckData.PlayerStickers); err != nil {
		return game.State{}, fmt.Errorf("playerStickers: %w", err)
	}

	seen := make(map[int]bool)
	for i, entry := range doc.Plants {
		ps, err := buildPlant(c, rules, journal, entry)
		if err != nil {
			return game.State{}, fmt.Errorf("plants[%d]: %w", i, err)
		}
		if seen[ps.Location] {
			return game.State{}, fmt.Errorf("plants[%d]: location %d used twice: %w", i, ps.Location, ErrMalformed)
		}
		seen[ps.Location] = true
		st.Plants = append(st.Plants, ps)
	}

	if r := doc.RetainedCard; r != nil {
		card, err := buildCard(c, r.Card)
		if err != nil {
			return game.State{}, fmt.Errorf("retainedCard: %w", err)
		}
		st.Retained = &game.RetainedCard{Card: card, Paid: r.HasPaidForCard, Locked: r.IsCardLocked}
	}
	st.Efficacy = doc.EfficacyData
	return st, nil
}

func buildPlant(c *game.Catalog, rules game.Rules, journal *game.Journal, entry PlantEntry) (game.PlantState, error) {
	card, err := buildCard(c, entry.PlantCard)
	if err != nil {
		return game.PlantState{}, err
	}
	if card.Kind != game.CardPlant {
		return game.PlantState{}, fmt.Errorf("%s is not a plant: %w", card.TypeID, ErrMalformed)
	}
	if entry.LocationIndex < 0 || entry.LocationIndex >= rules.PlantSlots {
		return game.PlantState{}, fmt.Errorf("location %d outside 0..%d: %w",
			entry.LocationIndex, rules.PlantSlots-1, ErrMalformed)
	}
	ps := game.PlantState{
		Card:              card,
		Location:          entry.LocationIndex,
		Prior:             entry.PriorAfflictions,
		CurrentTreatments: entry.CurrentTreatments,
		UsedTreatments:    entry.UsedTreatments,
		MoldIntensity:     entry.MoldIntensity,
	}
	if math.IsNaN(ps.MoldIntensity) || ps.MoldIntensity < 0 || ps.MoldIntensity > 1 {
		journal.Warn("mold intensity %g at location %d out of range", ps.MoldIntensity, ps.Location)
		ps.MoldIntensity = 0
	}
	for _, id := range entry.CurrentAfflictions {
		a, err := c.Affliction(id)
		if err != nil {
			return game.PlantState{}, err
		}
		ps.Current = append(ps.Current, a)
	}
	for _, id := range entry.PriorAfflictions {
		if _, err := c.Affliction(id); err != nil {
			return game.PlantState{}, err
		}
	}
	for _, id := range append(append([]string{}, entry.CurrentTreatments...), entry.UsedTreatments...) {
		if !c.HasTreatment(id) {
			return game.PlantState{}, fmt.Errorf("treatment %q: %w", id, game.ErrUnknownType)
		}
	}
	return ps, nil
}

func buildCards(c *game.Catalog, field string, entries []CardEntry) ([]*game.Card, error) {
	cards := make([]*game.Card, 0, len(entries))
	for i, entry := range entries {
		card, err := buildCard(c, entry)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func buildCard(c *game.Catalog, entry CardEntry) (*game.Card, error) {
	card, err := c.NewCard(entry.CardTypeIdentifier)
	if err != nil {
		return nil, err
	}
	if entry.Value != nil {
		card.Value = game.IntPtr(*entry.Value)
	}
	stickers, err := buildStickers(c, entry.Stickers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.CardTypeIdentifier, err)
	}
	card.Stickers = stickers
	return card, nil
}

func buildStickers(c *game.Catalog, entries []StickerEntry) ([]*game.Sticker, error) {
	var stickers []*game.Sticker
	for _, entry := range entries {
		s, err := c.NewSticker(entry.StickerTypeIdentifier)
		if err != nil {
			return nil, err
		}
		if entry.Name != "" {
			s.Name = entry.Name
		}
		if entry.Value != nil {
			s.Value = game.IntPtr(*entry.Value)
		}
		stickers = append(stickers, s)
	}
	return stickers, nil
}

func clampCounter(journal *game.Journal, field string, v, lo, hi int) int {
	if v < lo {
		journal.Warn("%s %d below %d, clamped", field, v, lo)
		return lo
	}
	if v > hi {
		journal.Warn("%s %d above %d, clamped", field, v, hi)
		return hi
	}
	return v
}
