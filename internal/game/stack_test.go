package game

import (
	"testing"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// TestShuffleIsPermutation: shuffling never adds, drops or duplicates a card.
func TestShuffleIsPermutation(t *testing.T) {
	c := builtinCatalog(t)
	for seed := int64(1); seed <= 50; seed++ {
		deck := makeCards(t, c, "soapy_water_card", "neem_oil_card", "neem_oil_card", "fungicide_card", "ladybugs_card", "panacea_card")
		before := make(map[*Card]int)
		for _, card := range deck {
			before[card]++
		}

		Shuffle(testRand(seed), deck)

		if len(deck) != len(before) {
			t.Fatalf("seed %d: shuffled length %d, want %d", seed, len(deck), len(before))
		}
		for _, card := range deck {
			before[card]--
		}
		for card, n := range before {
			if n != 0 {
				t.Fatalf("seed %d: card #%d count off by %d after shuffle", seed, card.ID, n)
			}
		}
	}
}

// TestDrawRecyclesDiscard: with an empty deck and N cards in discard, drawing k ≤ N moves
// exactly k cards into the hand and nothing is lost.
func TestDrawRecyclesDiscard(t *testing.T) {
	c := builtinCatalog(t)
	for k := 0; k <= 4; k++ {
		s, logger := newTestStack(t, 7)
		discard := makeCards(t, c, "soapy_water_card", "neem_oil_card", "fungicide_card", "ladybugs_card")
		s.Reset(nil, nil, discard)

		drawn := s.Draw(k)

		if len(drawn) != k || len(s.Hand) != k {
			t.Fatalf("k=%d: drew %d, hand %d", k, len(drawn), len(s.Hand))
		}
		if s.Count() != 4 {
			t.Fatalf("k=%d: stack holds %d cards, want 4", k, s.Count())
		}
		if k > 0 && len(s.Discard) != 0 {
			t.Errorf("k=%d: discard should have been recycled, has %d", k, len(s.Discard))
		}
		if k > 0 && len(logger.EventsOfType(log.EventRecycle)) != 1 {
			t.Errorf("k=%d: expected one recycle event", k)
		}
		if len(logger.Warnings()) != 0 {
			t.Errorf("k=%d: unexpected warnings:\n%s", k, log.FormatAll(logger.Warnings()))
		}
	}
}

// TestDrawShortSupplyWarns: drawing more than deck+discard hold stops short with a warning.
func TestDrawShortSupplyWarns(t *testing.T) {
	c := builtinCatalog(t)
	s, logger := newTestStack(t, 1)
	s.Reset(makeCards(t, c, "soapy_water_card"), nil, makeCards(t, c, "neem_oil_card"))

	drawn := s.Draw(5)

	if len(drawn) != 2 {
		t.Fatalf("drew %d, want 2", len(drawn))
	}
	warnings := logger.EventsOfType(log.EventInsufficientSupply)
	if len(warnings) != 1 {
		t.Fatalf("expected one insufficient supply warning, got %d", len(warnings))
	}
	if warnings[0].Level != log.LevelWarn {
		t.Errorf("insufficient supply should be a warning")
	}
}

// TestDrawFromFront: the deck is drawn from index 0.
func TestDrawFromFront(t *testing.T) {
	c := builtinCatalog(t)
	s, _ := newTestStack(t, 1)
	deck := makeCards(t, c, "soapy_water_card", "neem_oil_card", "fungicide_card")
	s.Reset(deck, nil, nil)

	drawn := s.Draw(2)

	if drawn[0] != deck[0] || drawn[1] != deck[1] {
		t.Errorf("expected the first two deck cards, got %v", drawn)
	}
	if len(s.Deck) != 1 || s.Deck[0].TypeID != "fungicide_card" {
		t.Errorf("expected fungicide left on the deck, got %v", s.Deck)
	}
}

// TestWeightedDeckDrawnFully: deck [A,A,B] shuffled and drawn fully yields 2×A and 1×B.
func TestWeightedDeckDrawnFully(t *testing.T) {
	c := NewCatalog()
	if err := c.RegisterCard(&Card{TypeID: "a", Kind: CardAction, Name: "A", Weight: 2}); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterCard(&Card{TypeID: "b", Kind: CardAction, Name: "B", Weight: 1}); err != nil {
		t.Fatal(err)
	}
	c.Freeze()

	for seed := int64(1); seed <= 20; seed++ {
		deck, err := c.StarterDeck(CardAction)
		if err != nil {
			t.Fatal(err)
		}
		s, _ := newTestStack(t, seed)
		s.Reset(deck, nil, nil)
		s.Shuffle()
		s.Draw(len(deck))

		counts := typeCounts(s.Hand)
		if len(s.Hand) != 3 || counts["a"] != 2 || counts["b"] != 1 {
			t.Fatalf("seed %d: hand %v, want 2×A 1×B", seed, counts)
		}
	}
}

// TestDiscardMovesNotCopies: discarding moves the card; discarding a card not in hand fails.
func TestDiscardMovesNotCopies(t *testing.T) {
	c := builtinCatalog(t)
	s, _ := newTestStack(t, 1)
	hand := makeCards(t, c, "soapy_water_card", "neem_oil_card")
	s.Reset(nil, hand, nil)
	card := hand[0]

	if err := s.DiscardCard(card, true); err != nil {
		t.Fatal(err)
	}
	if s.InHand(card) || len(s.Discard) != 1 || s.Discard[0] != card {
		t.Errorf("card should be in discard only")
	}
	if err := s.DiscardCard(card, true); err == nil {
		t.Error("discarding a card twice should fail")
	}

	if err := s.DiscardCard(hand[1], false); err != nil {
		t.Fatal(err)
	}
	if s.Contains(hand[1]) {
		t.Error("permanently discarded card should leave the stack")
	}
}

// TestDrawType: a specific card type is pulled from the deck first, then the discard pile.
func TestDrawType(t *testing.T) {
	c := builtinCatalog(t)
	s, _ := newTestStack(t, 1)
	s.Reset(makeCards(t, c, "soapy_water_card"), nil, makeCards(t, c, "neem_oil_card"))

	if _, ok := s.DrawType("neem_oil_card"); !ok {
		t.Fatal("neem oil should be found in the discard pile")
	}
	if _, ok := s.DrawType("panacea_card"); ok {
		t.Fatal("panacea is nowhere in the stack")
	}
	if len(s.Hand) != 1 || len(s.Discard) != 0 || len(s.Deck) != 1 {
		t.Errorf("unexpected sizes: deck %d hand %d discard %d", len(s.Deck), len(s.Hand), len(s.Discard))
	}
}
