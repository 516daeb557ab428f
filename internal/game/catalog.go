package game

import (
	"fmt"
	"strings"
)

// Catalog holds every prototype: built-in and mod-registered cards, stickers,
// afflictions and treatments.
//
// Lifecycle: NewCatalog → Register* (built-ins, then mods) → Freeze → NewCard/NewSticker.
// Registration after Freeze fails, and instances are only handed out after Freeze, so
// every deck is built from the complete set of prototypes.
type Catalog struct {
	cards       *registry[*Card]
	stickers    *registry[*Sticker]
	afflictions *registry[*Affliction]
	treatments  *registry[*Treatment]

	frozen  bool
	nextID  int
	created int
}

// NewCatalog returns an empty, unfrozen catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		cards:       newRegistry[*Card]("card"),
		stickers:    newRegistry[*Sticker]("sticker"),
		afflictions: newRegistry[*Affliction]("affliction"),
		treatments:  newRegistry[*Treatment]("treatment"),
	}
}

// Freeze ends registration. It is safe to call more than once.
func (c *Catalog) Freeze() {
	c.frozen = true
}

// Frozen reports whether registration has ended.
func (c *Catalog) Frozen() bool {
	return c.frozen
}

// RegisterTreatment registers an immutable treatment definition.
func (c *Catalog) RegisterTreatment(t *Treatment) error {
	if c.frozen {
		return fmt.Errorf("register treatment %q: %w", t.ID, ErrCatalogFrozen)
	}
	return c.treatments.register(t.ID, func() *Treatment { return t })
}

// RegisterAffliction registers an immutable affliction definition.
func (c *Catalog) RegisterAffliction(a *Affliction) error {
	if c.frozen {
		return fmt.Errorf("register affliction %q: %w", a.ID, ErrCatalogFrozen)
	}
	return c.afflictions.register(a.ID, func() *Affliction { return a })
}

// RegisterCard registers a card prototype under its TypeID. The prototype is kept
// private; instances are copies.
func (c *Catalog) RegisterCard(proto *Card) error {
	if err := c.checkCard(proto, false); err != nil {
		return err
	}
	tmpl := proto.copyWithID(0)
	return c.cards.register(proto.TypeID, func() *Card { return tmpl.copyWithID(0) })
}

// RegisterTreatmentCard registers proto together with the new treatment it carries. Both
// are checked before either is registered, so a failure leaves the catalog unchanged.
func (c *Catalog) RegisterTreatmentCard(proto *Card) error {
	if proto.Treatment == nil {
		return fmt.Errorf("register card %q: no treatment", proto.TypeID)
	}
	if err := c.checkCard(proto, true); err != nil {
		return err
	}
	id := proto.Treatment.ID
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("register card %q: empty treatment identifier", proto.TypeID)
	}
	if c.treatments.has(id) {
		return fmt.Errorf("register card %q: treatment %q: %w", proto.TypeID, id, ErrDuplicateType)
	}
	if err := c.RegisterTreatment(proto.Treatment); err != nil {
		return err
	}
	return c.RegisterCard(proto)
}

// checkCard reports why proto cannot be registered. With newTreatment set the card's
// treatment is about to be registered alongside it and need not exist yet.
func (c *Catalog) checkCard(proto *Card, newTreatment bool) error {
	if c.frozen {
		return fmt.Errorf("register card %q: %w", proto.TypeID, ErrCatalogFrozen)
	}
	id := strings.TrimSpace(proto.TypeID)
	if id == "" {
		return fmt.Errorf("register card: empty type identifier")
	}
	if c.cards.has(id) {
		return fmt.Errorf("register card %q: %w", id, ErrDuplicateType)
	}
	if proto.Kind == CardAffliction && proto.Affliction == nil {
		return fmt.Errorf("register card %q: affliction card without affliction", proto.TypeID)
	}
	if proto.Treatment != nil && !newTreatment && !c.treatments.has(proto.Treatment.ID) {
		return fmt.Errorf("register card %q: treatment %q: %w", proto.TypeID, proto.Treatment.ID, ErrUnknownType)
	}
	if proto.Affliction != nil && !c.afflictions.has(proto.Affliction.ID) {
		return fmt.Errorf("register card %q: affliction %q: %w", proto.TypeID, proto.Affliction.ID, ErrUnknownType)
	}
	return nil
}

// RegisterSticker registers a sticker prototype under its TypeID.
func (c *Catalog) RegisterSticker(proto *Sticker) error {
	if c.frozen {
		return fmt.Errorf("register sticker %q: %w", proto.TypeID, ErrCatalogFrozen)
	}
	tmpl := proto.Clone()
	return c.stickers.register(proto.TypeID, tmpl.Clone)
}

// NewCard creates a fresh instance of the card registered under typeID.
func (c *Catalog) NewCard(typeID string) (*Card, error) {
	if !c.frozen {
		return nil, fmt.Errorf("new card %q: %w", typeID, ErrCatalogNotFrozen)
	}
	card, err := c.cards.lookup(typeID)
	if err != nil {
		return nil, err
	}
	return c.issue(card), nil
}

// CopyCard clones an existing instance (stickers included) into a new instance.
func (c *Catalog) CopyCard(src *Card) *Card {
	return c.issue(src.copyWithID(0))
}

func (c *Catalog) issue(card *Card) *Card {
	c.nextID++
	c.created++
	card.ID = c.nextID
	return card
}

// NewSticker creates a fresh sticker instance.
func (c *Catalog) NewSticker(typeID string) (*Sticker, error) {
	if !c.frozen {
		return nil, fmt.Errorf("new sticker %q: %w", typeID, ErrCatalogNotFrozen)
	}
	return c.stickers.lookup(typeID)
}

// Affliction returns the affliction definition registered under id.
func (c *Catalog) Affliction(id string) (*Affliction, error) {
	return c.afflictions.lookup(id)
}

// Treatment returns the treatment definition registered under id.
func (c *Catalog) Treatment(id string) (*Treatment, error) {
	return c.treatments.lookup(id)
}

// HasTreatment reports whether id is registered.
func (c *Catalog) HasTreatment(id string) bool {
	return c.treatments.has(id)
}

// HasCard reports whether typeID is registered.
func (c *Catalog) HasCard(typeID string) bool {
	return c.cards.has(typeID)
}

// Prototype returns a detached copy of the prototype for display.
func (c *Catalog) Prototype(typeID string) (*Card, error) {
	return c.cards.lookup(typeID)
}

// CardTypes lists registered card type IDs of the given kind, in registration order.
func (c *Catalog) CardTypes(kind CardKind) []string {
	var ids []string
	for _, id := range c.cards.ids() {
		card, _ := c.cards.lookup(id)
		if card.Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// StickerTypes lists registered sticker type IDs.
func (c *Catalog) StickerTypes() []string {
	return c.stickers.ids()
}

// Afflictions returns every registered affliction in registration order.
func (c *Catalog) Afflictions() []*Affliction {
	var out []*Affliction
	for _, id := range c.afflictions.ids() {
		a, _ := c.afflictions.lookup(id)
		out = append(out, a)
	}
	return out
}

// Treatments returns every registered treatment in registration order.
func (c *Catalog) Treatments() []*Treatment {
	var out []*Treatment
	for _, id := range c.treatments.ids() {
		t, _ := c.treatments.lookup(id)
		out = append(out, t)
	}
	return out
}

// Created reports how many card instances this catalog has ever issued.
func (c *Catalog) Created() int {
	return c.created
}

// StarterDeck builds one instance per Weight of every card of the given kind.
func (c *Catalog) StarterDeck(kind CardKind) ([]*Card, error) {
	var deck []*Card
	for _, id := range c.CardTypes(kind) {
		proto, _ := c.cards.lookup(id)
		copies := proto.Weight
		if copies <= 0 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			card, err := c.NewCard(id)
			if err != nil {
				return nil, fmt.Errorf("starter deck: %w", err)
			}
			deck = append(deck, card)
		}
	}
	return deck, nil
}
