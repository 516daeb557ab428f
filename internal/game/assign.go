package game

import (
	"math/rand"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Assignment records one affliction card applied (or not) to a host.
type Assignment struct {
	Card      *Card
	Location  int
	Intensity float64
}

// AssignmentResult is what an Assign call changed.
type AssignmentResult struct {
	Assigned []Assignment
	Skipped  []Assignment
}

// AfflictionEngine draws affliction cards and hands them out to plants.
type AfflictionEngine struct {
	*Stack
	Band       IntensityBand // fallback band for continuous afflictions
	DrawMin    int
	DrawMaxExc int

	rng     *rand.Rand
	journal *Journal
}

// NewAfflictionEngine creates an engine over stack. Draw counts fall in [min, maxExclusive-1].
func NewAfflictionEngine(stack *Stack, min, maxExclusive int, band IntensityBand, rng *rand.Rand, journal *Journal) *AfflictionEngine {
	return &AfflictionEngine{
		Stack:      stack,
		Band:       band,
		DrawMin:    min,
		DrawMaxExc: maxExclusive,
		rng:        rng,
		journal:    journal,
	}
}

// DrawAfflictions draws a round-weighted number of affliction cards into the hand.
func (e *AfflictionEngine) DrawAfflictions(round int) []*Card {
	n := RoundWeightedRandom(e.rng, e.DrawMin, e.DrawMaxExc, round)
	return e.Draw(n)
}

// DrawFixed draws specific affliction card types, in order. A type with no card left in the
// deck or discard pile is cloned from the catalog and joins the stack.
func (e *AfflictionEngine) DrawFixed(c *Catalog, typeIDs []string) ([]*Card, error) {
	var drawn []*Card
	for _, id := range typeIDs {
		if card, ok := e.DrawType(id); ok {
			drawn = append(drawn, card)
			continue
		}
		card, err := c.NewCard(id)
		if err != nil {
			return drawn, err
		}
		e.Hand = append(e.Hand, card)
		e.journal.Log(log.NewDrawEvent(e.Name, card.Name))
		drawn = append(drawn, card)
	}
	return drawn, nil
}

// Assign hands the drawn affliction cards out to distinct random targets. A target that
// already carries the card's affliction is skipped without retry. Every hand card ends up on
// the discard pile afterwards.
func (e *AfflictionEngine) Assign(targets []AfflictionHost) AssignmentResult {
	var result AssignmentResult
	pool := append([]AfflictionHost(nil), targets...)
	numToApply := min(len(e.Hand), len(pool))

	for i := 0; i < numToApply; i++ {
		card := e.Hand[i]
		pick := e.rng.Intn(len(pool))
		target := pool[pick]
		pool = append(pool[:pick], pool[pick+1:]...)

		aff := card.Affliction
		if aff == nil {
			e.journal.Warn("affliction card %s has no affliction", card.Name)
			continue
		}
		if target.HasAffliction(aff) {
			result.Skipped = append(result.Skipped, Assignment{Card: card, Location: target.Location()})
			e.journal.Log(log.NewAfflictionSkippedEvent(aff.Name, target.Location()))
			continue
		}
		intensity := aff.RollIntensity(e.rng, e.Band)
		target.AddAffliction(aff, intensity)
		target.Refresh()
		result.Assigned = append(result.Assigned, Assignment{Card: card, Location: target.Location(), Intensity: intensity})
		e.journal.Log(log.NewAfflictionAssignedEvent(aff.Name, target.Location(), intensity))
	}

	e.DiscardHand()
	return result
}
