package game

import (
	"fmt"
	"os"
	"strconv"

	"github.com/peterkuimelis/greenhouse/internal/log"
	"gopkg.in/yaml.v3"
)

// DeckEngine owns the action card economy: the action stack (deck, hand, discard) and the
// placement slots a card sits in while it is being applied to a plant.
type DeckEngine struct {
	*Stack
	Slots    []*Card // placed cards by slot index, nil when empty
	HandSize int     // cards drawn per turn

	guard   *BusyGuard
	journal *Journal
}

// NewDeckEngine creates an engine over stack with the given per-turn draw count and slot count.
func NewDeckEngine(stack *Stack, handSize, slots int, guard *BusyGuard, journal *Journal) *DeckEngine {
	if guard == nil {
		guard = &BusyGuard{}
	}
	return &DeckEngine{
		Stack:    stack,
		Slots:    make([]*Card, slots),
		HandSize: handSize,
		guard:    guard,
		journal:  journal,
	}
}

// Init replaces every container with a fresh deck and optionally shuffles it.
func (d *DeckEngine) Init(cards []*Card, shuffle bool) {
	d.Reset(cards, nil, nil)
	for i := range d.Slots {
		d.Slots[i] = nil
	}
	if shuffle {
		d.Shuffle()
	}
}

// DrawHand draws the per-turn count into the hand, then trims any overflow.
// Returns ErrBusy (after logging a refusal) while a sequence owns the table.
func (d *DeckEngine) DrawHand() ([]*Card, error) {
	if d.guard.Busy() {
		d.journal.Log(log.NewRedrawRefusedEvent("a sequence is still running"))
		return nil, fmt.Errorf("draw hand: %w", ErrBusy)
	}
	drawn := d.Draw(d.HandSize)
	d.TrimHand()
	return drawn, nil
}

// Redraw discards the hand and draws a new one. It is refused (no-op, warning) while cards
// are placed, while busy, or when there is nothing left to draw. ok reports whether it ran.
func (d *DeckEngine) Redraw() (ok bool) {
	switch {
	case d.SlotsOccupied():
		d.journal.Log(log.NewRedrawRefusedEvent("cards are still placed"))
		return false
	case d.guard.Busy():
		d.journal.Log(log.NewRedrawRefusedEvent("a sequence is still running"))
		return false
	case d.Supply()+len(d.Hand) == 0:
		d.journal.Log(log.NewRedrawRefusedEvent("deck and discard pile are empty"))
		return false
	}
	d.DiscardHand()
	d.Draw(d.HandSize)
	d.TrimHand()
	return true
}

// TrimHand discards cards from the end of the hand until it fits the per-turn count.
func (d *DeckEngine) TrimHand() {
	for len(d.Hand) > d.HandSize {
		card := d.Hand[len(d.Hand)-1]
		_ = d.DiscardCard(card, true)
		d.journal.Log(log.NewHandTrimmedEvent(card.Name, d.HandSize))
	}
}

// Place moves card from the hand into slot.
func (d *DeckEngine) Place(card *Card, slot int) error {
	if slot < 0 || slot >= len(d.Slots) {
		return fmt.Errorf("place %s: slot %d out of range", card, slot)
	}
	if d.Slots[slot] != nil {
		return fmt.Errorf("place %s in slot %d: %w", card, slot, ErrSlotsFull)
	}
	if err := d.TakeFromHand(card); err != nil {
		return fmt.Errorf("place: %w", err)
	}
	d.Slots[slot] = card
	d.journal.Log(log.NewPlaceEvent(card.Name, slot))
	return nil
}

// FreeSlot returns the first empty slot index, or -1.
func (d *DeckEngine) FreeSlot() int {
	for i, c := range d.Slots {
		if c == nil {
			return i
		}
	}
	return -1
}

// Unplace returns the card in slot to the hand.
func (d *DeckEngine) Unplace(slot int) error {
	card, err := d.TakePlaced(slot)
	if err != nil {
		return err
	}
	d.Hand = append(d.Hand, card)
	return nil
}

// TakePlaced removes and returns the card in slot; the caller becomes its owner.
func (d *DeckEngine) TakePlaced(slot int) (*Card, error) {
	if slot < 0 || slot >= len(d.Slots) || d.Slots[slot] == nil {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrNotPlaced)
	}
	card := d.Slots[slot]
	d.Slots[slot] = nil
	return card, nil
}

// ResolvePlaced finishes a placed card: to the discard pile, or gone for good.
func (d *DeckEngine) ResolvePlaced(slot int, toPile bool) error {
	card, err := d.TakePlaced(slot)
	if err != nil {
		return err
	}
	if toPile {
		d.Discard = append(d.Discard, card)
	}
	d.journal.Log(log.NewDiscardEvent(card.Name, toPile))
	return nil
}

// SlotsOccupied reports whether any card is placed.
func (d *DeckEngine) SlotsOccupied() bool {
	return d.FreeSlotCount() < len(d.Slots)
}

// FreeSlotCount is the number of empty slots.
func (d *DeckEngine) FreeSlotCount() int {
	n := 0
	for _, c := range d.Slots {
		if c == nil {
			n++
		}
	}
	return n
}

// Placed returns the placed cards in slot order, skipping empty slots.
func (d *DeckEngine) Placed() []*Card {
	var out []*Card
	for _, c := range d.Slots {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// AddToDiscard gives the engine ownership of a new card (shop purchase, sticker copy).
func (d *DeckEngine) AddToDiscard(card *Card) {
	d.Discard = append(d.Discard, card)
}

// InstanceCount is the number of cards held across deck, hand, discard and slots.
func (d *DeckEngine) InstanceCount() int {
	return d.Count() + len(d.Placed())
}

// --- Deck files ---

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card type and its count in a deck.
type CardEntry struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// ReadDeckFile parses a YAML deck file without resolving card types.
func ReadDeckFile(path string) (DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DeckFile{}, err
	}
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

// Build clones every card of the deck from the catalog.
func (e DeckEntry) Build(c *Catalog) ([]*Card, error) {
	var cards []*Card
	for _, entry := range e.Cards {
		for i := 0; i < entry.Count; i++ {
			card, err := c.NewCard(entry.Type)
			if err != nil {
				return nil, fmt.Errorf("deck %q: %w", e.Name, err)
			}
			cards = append(cards, card)
		}
	}
	return cards, nil
}

// DeckByName returns the named deck from the deck file.
func DeckByName(path, name string, c *Catalog) ([]*Card, error) {
	df, err := ReadDeckFile(path)
	if err != nil {
		return nil, err
	}
	for _, deck := range df.Decks {
		if deck.Name == name {
			return deck.Build(c)
		}
	}
	return nil, fmt.Errorf("deck %q not found (have %d decks)", name, len(df.Decks))
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck file.
func DeckByNumber(path string, n int, c *Catalog) (string, []*Card, error) {
	df, err := ReadDeckFile(path)
	if err != nil {
		return "", nil, err
	}
	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	deck := df.Decks[n-1]
	cards, err := deck.Build(c)
	if err != nil {
		return "", nil, err
	}
	return deck.Name, cards, nil
}

// SelectDeck resolves ref against the deck file: a positive number picks the Nth deck,
// anything else is a deck name.
func SelectDeck(path, ref string, c *Catalog) (string, []*Card, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		return DeckByNumber(path, n, c)
	}
	cards, err := DeckByName(path, ref, c)
	return ref, cards, err
}
