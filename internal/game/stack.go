package game

import (
	"fmt"
	"math/rand"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Stack owns a deck, a hand and a discard pile as three disjoint ordered sequences.
// The front of the deck (index 0) is drawn first. Cards only ever move between the
// sequences; nothing is duplicated.
type Stack struct {
	Name    string
	Deck    []*Card
	Hand    []*Card
	Discard []*Card

	rng     *rand.Rand
	journal *Journal
}

// NewStack creates an empty stack. name appears in event details ("action", "affliction").
func NewStack(name string, rng *rand.Rand, journal *Journal) *Stack {
	return &Stack{Name: name, rng: rng, journal: journal}
}

// Reset replaces all three sequences.
func (s *Stack) Reset(deck, hand, discard []*Card) {
	s.Deck = deck
	s.Hand = hand
	s.Discard = discard
}

// Shuffle randomizes the deck order.
func (s *Stack) Shuffle() {
	Shuffle(s.rng, s.Deck)
	s.journal.Log(log.NewShuffleEvent(s.Name, len(s.Deck)))
}

// Recycle moves the discard pile into the (empty) deck and shuffles it.
func (s *Stack) Recycle() {
	n := len(s.Discard)
	s.Deck = append(s.Deck, s.Discard...)
	s.Discard = nil
	s.journal.Log(log.NewRecycleEvent(s.Name, n))
	s.Shuffle()
}

// Draw moves up to n cards from the front of the deck into the hand, recycling the
// discard pile when the deck runs out. Drawing fewer than n is not an error; it is
// logged as a warning. Returns the drawn cards.
func (s *Stack) Draw(n int) []*Card {
	var drawn []*Card
	for len(drawn) < n {
		if len(s.Deck) == 0 {
			if len(s.Discard) == 0 {
				break
			}
			s.Recycle()
		}
		card := s.Deck[0]
		s.Deck = s.Deck[1:]
		s.Hand = append(s.Hand, card)
		drawn = append(drawn, card)
		s.journal.Log(log.NewDrawEvent(s.Name, card.Name))
	}
	if len(drawn) < n {
		s.journal.Log(log.NewInsufficientSupplyEvent(s.Name, n, len(drawn)))
	}
	return drawn
}

// DrawType moves the first card of the given type from the deck (or, failing that,
// the discard pile) into the hand. ok is false when neither holds one.
func (s *Stack) DrawType(typeID string) (*Card, bool) {
	if i := indexOfType(s.Deck, typeID); i >= 0 {
		card := s.Deck[i]
		s.Deck = removeAt(s.Deck, i)
		s.Hand = append(s.Hand, card)
		s.journal.Log(log.NewDrawEvent(s.Name, card.Name))
		return card, true
	}
	if i := indexOfType(s.Discard, typeID); i >= 0 {
		card := s.Discard[i]
		s.Discard = removeAt(s.Discard, i)
		s.Hand = append(s.Hand, card)
		s.journal.Log(log.NewDrawEvent(s.Name, card.Name))
		return card, true
	}
	return nil, false
}

// DiscardCard removes card from the hand. With toPile it goes to the discard pile;
// otherwise it leaves the stack for good.
func (s *Stack) DiscardCard(card *Card, toPile bool) error {
	i := indexOf(s.Hand, card)
	if i < 0 {
		return fmt.Errorf("discard %s: %w", card, ErrNotInHand)
	}
	s.Hand = removeAt(s.Hand, i)
	if toPile {
		s.Discard = append(s.Discard, card)
	}
	s.journal.Log(log.NewDiscardEvent(card.Name, toPile))
	return nil
}

// DiscardHand moves the whole hand onto the discard pile.
func (s *Stack) DiscardHand() {
	for len(s.Hand) > 0 {
		_ = s.DiscardCard(s.Hand[0], true)
	}
}

// TakeFromHand removes card from the hand without placing it anywhere; the caller
// becomes its owner.
func (s *Stack) TakeFromHand(card *Card) error {
	i := indexOf(s.Hand, card)
	if i < 0 {
		return fmt.Errorf("take %s: %w", card, ErrNotInHand)
	}
	s.Hand = removeAt(s.Hand, i)
	return nil
}

// Supply is the number of cards still drawable (deck plus discard pile).
func (s *Stack) Supply() int {
	return len(s.Deck) + len(s.Discard)
}

// Count is the number of cards held across all three sequences.
func (s *Stack) Count() int {
	return len(s.Deck) + len(s.Hand) + len(s.Discard)
}

// InHand reports whether card is in the hand.
func (s *Stack) InHand(card *Card) bool {
	return indexOf(s.Hand, card) >= 0
}

// Contains reports whether card is held anywhere in the stack.
func (s *Stack) Contains(card *Card) bool {
	return indexOf(s.Deck, card) >= 0 || indexOf(s.Hand, card) >= 0 || indexOf(s.Discard, card) >= 0
}

// Cards returns every card in the stack (deck, hand, discard order).
func (s *Stack) Cards() []*Card {
	out := make([]*Card, 0, s.Count())
	out = append(out, s.Deck...)
	out = append(out, s.Hand...)
	out = append(out, s.Discard...)
	return out
}

func indexOf(cards []*Card, card *Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}
	return -1
}

func indexOfType(cards []*Card, typeID string) int {
	for i, c := range cards {
		if c.TypeID == typeID {
			return i
		}
	}
	return -1
}

func removeAt(cards []*Card, i int) []*Card {
	out := make([]*Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}
