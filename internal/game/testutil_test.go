package game

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script of plays.
// Used in tests to deterministically drive the game.
type ScriptedController struct {
	t         *testing.T
	name      string
	plays     []ScriptedPlay
	pos       int
	purchases []string
	buyPos    int
}

type ScriptedPlay struct {
	// Match by card type; the first hand card of this type is played
	TypeID   string
	Location int
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddPlay(typeID string, location int) *ScriptedController {
	sc.plays = append(sc.plays, ScriptedPlay{TypeID: typeID, Location: location})
	return sc
}

func (sc *ScriptedController) AddPurchase(typeID string) *ScriptedController {
	sc.purchases = append(sc.purchases, typeID)
	return sc
}

func (sc *ScriptedController) ChoosePlay(ctx context.Context, s *Session) (Play, bool, error) {
	if sc.pos >= len(sc.plays) {
		return Play{}, false, nil
	}
	// Only consume a scripted play when its card is in hand; otherwise end the turn
	// and try again next turn.
	scripted := sc.plays[sc.pos]
	for _, card := range s.Deck.Hand {
		if card.TypeID == scripted.TypeID {
			sc.pos++
			return Play{Card: card, Location: scripted.Location}, true, nil
		}
	}
	return Play{}, false, nil
}

func (sc *ScriptedController) ChoosePurchase(ctx context.Context, s *Session) (string, bool, error) {
	if sc.buyPos >= len(sc.purchases) {
		return "", false, nil
	}
	id := sc.purchases[sc.buyPos]
	sc.buyPos++
	return id, true, nil
}

// --- Fixtures ---

func testRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func builtinCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewBuiltinCatalog()
	if err != nil {
		t.Fatalf("builtin catalog: %v", err)
	}
	return c
}

// makeCards clones count cards of each type, in argument order.
func makeCards(t *testing.T, c *Catalog, typeIDs ...string) []*Card {
	t.Helper()
	var cards []*Card
	for _, id := range typeIDs {
		card, err := c.NewCard(id)
		if err != nil {
			t.Fatalf("new card %q: %v", id, err)
		}
		cards = append(cards, card)
	}
	return cards
}

func newTestStack(t *testing.T, seed int64) (*Stack, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	return NewStack("action", testRand(seed), NewJournal(logger)), logger
}

// newTestSession creates a deterministic session on the builtin catalog.
func newTestSession(t *testing.T, cfg SessionConfig) (*Session, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	if cfg.Catalog == nil {
		cfg.Catalog = builtinCatalog(t)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	cfg.Logger = logger
	s, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, logger
}

func advanceTo(t *testing.T, s *Session, p Phase) {
	t.Helper()
	if err := s.Sequencer.AdvanceTo(context.Background(), p); err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(s.Logger.Events()))
		t.Fatalf("advance to %s: %v", p, err)
	}
}

// checkOwnership fails when a card sits in more than one container or the total exceeds
// the number of instances ever created.
func checkOwnership(t *testing.T, s *Session) {
	t.Helper()
	seen := make(map[*Card]string)
	add := func(where string, cards []*Card) {
		for _, c := range cards {
			if prev, ok := seen[c]; ok {
				t.Fatalf("card %s (#%d) is in both %s and %s", c, c.ID, prev, where)
			}
			seen[c] = where
		}
	}
	add("deck", s.Deck.Deck)
	add("hand", s.Deck.Hand)
	add("discard", s.Deck.Discard)
	add("slots", s.Deck.Placed())
	if s.Retained != nil {
		add("retained", []*Card{s.Retained.Card})
	}
	if len(seen) > s.Catalog.Created() {
		t.Fatalf("%d cards held but only %d ever created", len(seen), s.Catalog.Created())
	}
}

func typeCounts(cards []*Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range cards {
		counts[c.TypeID]++
	}
	return counts
}

// fakeHost is an AfflictionHost that records refreshes.
type fakeHost struct {
	Plant
	refreshes int
}

func newFakeHost(loc int, afflictions ...*Affliction) *fakeHost {
	h := &fakeHost{Plant: Plant{Loc: loc}}
	h.Current = append(h.Current, afflictions...)
	return h
}

func (h *fakeHost) Refresh() { h.refreshes++ }

func (h *fakeHost) String() string { return fmt.Sprintf("host@%d", h.Loc) }
