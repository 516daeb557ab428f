package game

import (
	"context"
	"fmt"
	"slices"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// State is a detached description of everything a save file records.
type State struct {
	Round    int
	Turn     int
	Phase    Phase
	Money    int
	Score    int
	Deck     []*Card
	Hand     []*Card
	Discard  []*Card
	Stickers []*Sticker
	Plants   []PlantState
	Retained *RetainedCard
	Efficacy *EfficacySnapshot // nil when relations are not persisted
}

// PlantState is one plant's history.
type PlantState struct {
	Card              *Card
	Location          int
	Current           []*Affliction
	Prior             []string
	CurrentTreatments []string
	UsedTreatments    []string
	MoldIntensity     float64
}

// Capture describes the session as it stands. Cards held in placement slots are reported
// as hand cards; a card is only ever placed while an action is resolving.
func (s *Session) Capture(withEfficacy bool) State {
	st := State{
		Round:    s.Round(),
		Turn:     s.Turn(),
		Phase:    s.Phase(),
		Money:    s.Money,
		Score:    s.Score,
		Deck:     slices.Clone(s.Deck.Deck),
		Hand:     append(slices.Clone(s.Deck.Hand), s.Deck.Placed()...),
		Discard:  slices.Clone(s.Deck.Discard),
		Stickers: slices.Clone(s.Stickers),
	}
	for _, p := range s.Plants {
		st.Plants = append(st.Plants, PlantState{
			Card:              p.Card,
			Location:          p.Loc,
			Current:           p.Afflictions(),
			Prior:             slices.Clone(p.Prior),
			CurrentTreatments: slices.Clone(p.CurrentTreatments),
			UsedTreatments:    slices.Clone(p.UsedTreatments),
			MoldIntensity:     p.MoldIntensity,
		})
	}
	if s.Retained != nil {
		r := *s.Retained
		st.Retained = &r
	}
	if withEfficacy {
		snap := s.Efficacy.Snapshot()
		st.Efficacy = &snap
	}
	return st
}

// Restore replaces the session's state with st.
//
// Plants are rebuilt first, one per driver step, with effects suppressed for the whole
// replay. Nothing is committed to the session until every plant has been rebuilt, so a
// failure leaves the session as it was.
func (s *Session) Restore(ctx context.Context, st State) error {
	if s.Guard.Busy() {
		return fmt.Errorf("restore: %w", ErrBusy)
	}
	for _, ps := range st.Plants {
		if ps.Card == nil {
			return fmt.Errorf("restore plant at %d: missing card", ps.Location)
		}
	}

	var plants []*Plant
	err := s.SuppressEffects(func() error {
		seq := EachStep(len(st.Plants), func(_ context.Context, i int) error {
			p, err := s.replayPlant(st.Plants[i])
			if err != nil {
				return err
			}
			plants = append(plants, p)
			return nil
		})
		return s.Driver.Run(ctx, seq)
	})
	if err != nil {
		return fmt.Errorf("restore plants: %w", err)
	}

	s.Deck.Reset(st.Deck, st.Hand, st.Discard)
	for i := range s.Deck.Slots {
		s.Deck.Slots[i] = nil
	}
	s.Afflictions.DiscardHand()
	s.Plants = plants
	s.Money = st.Money
	s.Score = st.Score
	s.Stickers = st.Stickers
	s.Retained = st.Retained
	if st.Efficacy != nil {
		s.Efficacy.Restore(*st.Efficacy)
	} else {
		s.Efficacy.ClearDiscoveries()
	}
	s.Sequencer.Restore(st.Round, st.Turn, st.Phase)
	s.Journal.Log(log.NewRestoreEvent(fmt.Sprintf("round %d turn %d, %d cards, %d plants",
		st.Round, st.Turn, len(st.Deck)+len(st.Hand)+len(st.Discard), len(plants))))
	return nil
}

// replayPlant rebuilds a plant by re-applying its history. Must run while suppressed.
func (s *Session) replayPlant(ps PlantState) (*Plant, error) {
	p := NewPlant(ps.Card, ps.Location)
	if err := s.spawn(p); err != nil {
		return nil, err
	}
	for _, aff := range ps.Current {
		p.AddAffliction(aff, ps.MoldIntensity)
	}
	p.MoldIntensity = ps.MoldIntensity
	for _, id := range ps.CurrentTreatments {
		t, err := s.Catalog.Treatment(id)
		if err != nil {
			return nil, fmt.Errorf("plant at %d: %w", ps.Location, err)
		}
		s.treat(p, t, 0)
	}
	p.Prior = slices.Clone(ps.Prior)
	p.UsedTreatments = slices.Clone(ps.UsedTreatments)
	return p, nil
}
