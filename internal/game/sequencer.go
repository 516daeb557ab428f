package game

import (
	"context"
	"fmt"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Scorer computes a round's score from the plants still in play.
type Scorer interface {
	Score(plants []*Plant) int
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(plants []*Plant) int

func (f ScorerFunc) Score(plants []*Plant) int {
	return f(plants)
}

// HealthyPlantScorer scores the value of every plant that ends the round unafflicted.
var HealthyPlantScorer = ScorerFunc(func(plants []*Plant) int {
	total := 0
	for _, p := range plants {
		if p.Healthy() {
			total += p.Card.EffectiveValue()
		}
	}
	return total
})

// TutorialTurn fixes the cards drawn on one turn.
type TutorialTurn struct {
	Afflictions []string `yaml:"afflictions"` // affliction card type IDs
	Actions     []string `yaml:"actions"`     // action card type IDs
}

// TutorialScript replaces the weighted-random draws with hand-authored ones. Turns are
// indexed from the first turn of the session; once they run out play continues normally.
type TutorialScript struct {
	Plants []string       `yaml:"plants"` // plant card type IDs for the first round
	Turns  []TutorialTurn `yaml:"turns"`
}

// Sequencer drives the round/turn state machine and calls the engines on every transition.
type Sequencer struct {
	TurnsPerRound int
	Tutorial      *TutorialScript

	round     int
	turn      int
	turnIndex int // turns played this session, for the tutorial
	phase     Phase
	done      map[Phase]bool
	lastScore int

	s *Session
}

func newSequencer(s *Session, turnsPerRound int, tutorial *TutorialScript) *Sequencer {
	return &Sequencer{
		TurnsPerRound: max(turnsPerRound, 1),
		Tutorial:      tutorial,
		phase:         PhaseInit,
		done:          make(map[Phase]bool),
		s:             s,
	}
}

func (q *Sequencer) Round() int   { return q.round }
func (q *Sequencer) Turn() int    { return q.turn }
func (q *Sequencer) Phase() Phase { return q.phase }

// LastScore is the score of the most recently finished round.
func (q *Sequencer) LastScore() int { return q.lastScore }

// PhaseComplete reports whether p has already run in the current round.
func (q *Sequencer) PhaseComplete(p Phase) bool {
	return q.done[p]
}

// Next returns the phase the sequencer will enter on the next Advance.
func (q *Sequencer) Next() Phase {
	switch q.phase {
	case PhaseInit:
		return PhasePlacePlants
	case PhasePlacePlants:
		return PhaseDrawAfflictions
	case PhaseDrawAfflictions:
		return PhaseDrawActionHand
	case PhaseDrawActionHand:
		return PhasePlayerTurn
	case PhasePlayerTurn:
		return PhaseEndTurn
	case PhaseEndTurn:
		if q.turn < q.TurnsPerRound {
			return PhasePlayerTurn
		}
		return PhaseEndRound
	case PhaseEndRound:
		return PhaseShop
	default:
		return PhasePlacePlants
	}
}

// Advance moves to the next phase and runs its entry work. A failure is returned with the
// transition attached and the counters left where they were.
func (q *Sequencer) Advance(ctx context.Context) (Phase, error) {
	from := q.phase
	to := q.Next()
	if q.s.Guard.Busy() {
		return from, fmt.Errorf("advance %s -> %s: %w", from, to, ErrBusy)
	}

	round, turn, turnIndex := q.round, q.turn, q.turnIndex
	q.setPosition(to)
	if err := q.enter(ctx, from, to); err != nil {
		q.round, q.turn, q.turnIndex = round, turn, turnIndex
		q.phase = from
		q.syncJournal()
		return from, fmt.Errorf("advance %s -> %s: %w", from, to, err)
	}
	q.done[to] = true
	return to, nil
}

// AdvanceTo advances until the sequencer is in phase p.
func (q *Sequencer) AdvanceTo(ctx context.Context, p Phase) error {
	for i := 0; q.phase != p; i++ {
		if i > len(Phases)*(q.TurnsPerRound+1) {
			return fmt.Errorf("advance to %s: %w", p, ErrInvalidTransition)
		}
		if _, err := q.Advance(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (q *Sequencer) setPosition(to Phase) {
	switch {
	case to == PhasePlacePlants:
		q.round++
		q.turn = 1
		clear(q.done)
	case to == PhasePlayerTurn && q.phase == PhaseEndTurn:
		q.turn++
	}
	q.phase = to
	q.syncJournal()
}

func (q *Sequencer) syncJournal() {
	q.s.Journal.Round = q.round
	q.s.Journal.Turn = q.turn
	q.s.Journal.Phase = q.phase
}

func (q *Sequencer) enter(ctx context.Context, from, to Phase) error {
	s := q.s
	s.Journal.Log(log.NewPhaseChangeEvent(to.String()))

	switch to {
	case PhasePlacePlants:
		s.Journal.Log(log.NewRoundEvent(q.round))
		s.Journal.Log(log.NewTurnEvent(q.round, q.turn))
		if err := s.placePlants(ctx, q.tutorialPlants()); err != nil {
			return err
		}
		return q.drawAfflictions()

	case PhaseDrawAfflictions:
		s.Afflictions.Assign(s.hosts())
		return nil

	case PhaseDrawActionHand:
		return q.drawActionHand()

	case PhasePlayerTurn:
		if from != PhaseEndTurn {
			return nil
		}
		s.Journal.Log(log.NewTurnEvent(q.round, q.turn))
		if err := q.drawAfflictions(); err != nil {
			return err
		}
		s.Afflictions.Assign(s.hosts())
		return q.drawActionHand()

	case PhaseEndTurn:
		s.Deck.DiscardHand()
		for _, p := range s.Plants {
			p.EndTurn()
		}
		q.turnIndex++
		return nil

	case PhaseEndRound:
		s.Deck.DiscardHand()
		q.lastScore = s.Scorer.Score(s.Plants)
		s.Score += q.lastScore
		s.Journal.Log(log.NewRoundScoredEvent(q.round, q.lastScore, s.Score))
		return nil

	case PhaseShop:
		s.Money += q.lastScore + s.Rules.ShopIncome
		return nil
	}
	return fmt.Errorf("enter %s: %w", to, ErrInvalidTransition)
}

func (q *Sequencer) tutorialTurn() (TutorialTurn, bool) {
	if q.Tutorial == nil || q.turnIndex >= len(q.Tutorial.Turns) {
		return TutorialTurn{}, false
	}
	return q.Tutorial.Turns[q.turnIndex], true
}

func (q *Sequencer) tutorialPlants() []string {
	if q.Tutorial == nil || q.round != 1 {
		return nil
	}
	return q.Tutorial.Plants
}

func (q *Sequencer) drawAfflictions() error {
	s := q.s
	if tt, ok := q.tutorialTurn(); ok {
		_, err := s.Afflictions.DrawFixed(s.Catalog, tt.Afflictions)
		return err
	}
	s.Afflictions.DrawAfflictions(q.round)
	return nil
}

func (q *Sequencer) drawActionHand() error {
	s := q.s
	s.returnRetained()
	if tt, ok := q.tutorialTurn(); ok {
		for _, id := range tt.Actions {
			if _, found := s.Deck.DrawType(id); found {
				continue
			}
			card, err := s.Catalog.NewCard(id)
			if err != nil {
				return err
			}
			s.Deck.Hand = append(s.Deck.Hand, card)
		}
		s.Deck.TrimHand()
		return nil
	}
	_, err := s.Deck.DrawHand()
	return err
}

// Restore puts the sequencer at a saved position. Every phase before p in the round counts
// as complete.
func (q *Sequencer) Restore(round, turn int, p Phase) {
	q.round = round
	q.turn = turn
	q.phase = p
	clear(q.done)
	for _, ph := range Phases {
		if ph == PhaseInit {
			continue
		}
		if ph > p {
			break
		}
		q.done[ph] = true
	}
	q.syncJournal()
}
