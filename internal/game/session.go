package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Rules are the tunable numbers of a session.
type Rules struct {
	HandSize                   int
	TurnsPerRound              int
	PlantSlots                 int
	AfflictionDrawMin          int
	AfflictionDrawMaxExclusive int
	MoldIntensity              IntensityBand
	DiscoveryMode              bool
	StartingMoney              int
	ShopIncome                 int
	PriceFactor                int // shop price per point of card value
	RetainPrice                int
	Watchdog                   time.Duration
}

// DefaultRules returns the standard game settings.
func DefaultRules() Rules {
	return Rules{
		HandSize:                   5,
		TurnsPerRound:              3,
		PlantSlots:                 4,
		AfflictionDrawMin:          1,
		AfflictionDrawMaxExclusive: 4,
		MoldIntensity:              IntensityBand{Min: 0.2, Max: 0.8},
		DiscoveryMode:              true,
		StartingMoney:              5,
		ShopIncome:                 3,
		PriceFactor:                2,
		RetainPrice:                2,
		Watchdog:                   5 * time.Second,
	}
}

// SessionConfig holds configuration for creating a new session.
type SessionConfig struct {
	Catalog        *Catalog // must be frozen
	Rules          Rules
	Logger         log.EventLogger
	Seed           int64    // RNG seed (0 for random)
	ActionDeck     []*Card  // nil builds the catalog's starter deck
	AfflictionDeck []*Card  // nil builds the catalog's starter deck
	PlantTypes     []string // nil uses every plant card in the catalog
	Scorer         Scorer
	Spawner        Spawner
	Tutorial       *TutorialScript
	NoShuffle      bool // skip deck shuffles (for deterministic tests)
}

// Session is one game in progress: every engine plus the player's table.
type Session struct {
	ID      string
	Seed    int64
	Catalog *Catalog
	Rules   Rules
	Logger  log.EventLogger
	Journal *Journal

	Guard       *BusyGuard
	Driver      *Driver
	Deck        *DeckEngine
	Afflictions *AfflictionEngine
	Efficacy    *EfficacyEngine
	Sequencer   *Sequencer

	Plants   []*Plant
	Money    int
	Score    int
	Stickers []*Sticker // sticker inventory, not yet applied
	Retained *RetainedCard

	Scorer  Scorer
	Spawner Spawner

	plantTypes []string
	rng        *rand.Rand
	suppressed bool
}

// NewSession creates a session from cfg. The catalog must already be frozen.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Catalog == nil || !cfg.Catalog.Frozen() {
		return nil, fmt.Errorf("new session: %w", ErrCatalogNotFrozen)
	}
	seed := cfg.Seed
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
		seed = s
	}
	rng := rand.New(rand.NewSource(seed))
	rules := cfg.Rules
	if rules.HandSize == 0 {
		rules = DefaultRules()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	journal := NewJournal(logger)
	guard := &BusyGuard{}

	s := &Session{
		ID:         uuid.NewString(),
		Seed:       seed,
		Catalog:    cfg.Catalog,
		Rules:      rules,
		Logger:     logger,
		Journal:    journal,
		Guard:      guard,
		Driver:     NewDriver(guard, rules.Watchdog, journal),
		Efficacy:   NewEfficacyEngine(rules.DiscoveryMode, rng, journal),
		Money:      rules.StartingMoney,
		Scorer:     cfg.Scorer,
		Spawner:    cfg.Spawner,
		plantTypes: cfg.PlantTypes,
		rng:        rng,
	}
	if s.Scorer == nil {
		s.Scorer = HealthyPlantScorer
	}
	if len(s.plantTypes) == 0 {
		s.plantTypes = cfg.Catalog.CardTypes(CardPlant)
	}

	actions := cfg.ActionDeck
	if actions == nil {
		deck, err := cfg.Catalog.StarterDeck(CardAction)
		if err != nil {
			return nil, err
		}
		actions = deck
	}
	afflictions := cfg.AfflictionDeck
	if afflictions == nil {
		deck, err := cfg.Catalog.StarterDeck(CardAffliction)
		if err != nil {
			return nil, err
		}
		afflictions = deck
	}

	s.Deck = NewDeckEngine(NewStack("action", rng, journal), rules.HandSize, rules.PlantSlots, guard, journal)
	s.Deck.Init(actions, !cfg.NoShuffle)

	affStack := NewStack("affliction", rng, journal)
	affStack.Reset(afflictions, nil, nil)
	if !cfg.NoShuffle {
		affStack.Shuffle()
	}
	s.Afflictions = NewAfflictionEngine(affStack, rules.AfflictionDrawMin, rules.AfflictionDrawMaxExclusive, rules.MoldIntensity, rng, journal)
	s.Sequencer = newSequencer(s, rules.TurnsPerRound, cfg.Tutorial)
	return s, nil
}

func (s *Session) Round() int   { return s.Sequencer.Round() }
func (s *Session) Turn() int    { return s.Sequencer.Turn() }
func (s *Session) Phase() Phase { return s.Sequencer.Phase() }

// Rand exposes the session's random source to collaborators that must share it.
func (s *Session) Rand() *rand.Rand { return s.rng }

// Advance moves the sequencer one phase forward.
func (s *Session) Advance(ctx context.Context) (Phase, error) {
	return s.Sequencer.Advance(ctx)
}

// PlantAt returns the plant at loc.
func (s *Session) PlantAt(loc int) (*Plant, error) {
	for _, p := range s.Plants {
		if p.Loc == loc {
			return p, nil
		}
	}
	return nil, fmt.Errorf("location %d: %w", loc, ErrNoPlant)
}

func (s *Session) hosts() []AfflictionHost {
	hosts := make([]AfflictionHost, len(s.Plants))
	for i, p := range s.Plants {
		hosts[i] = p
	}
	return hosts
}

// placePlants clears the table and spawns one plant per slot, one plant per step.
func (s *Session) placePlants(ctx context.Context, typeIDs []string) error {
	if n := len(s.Plants); n > 0 {
		s.Plants = nil
		s.Journal.Log(log.NewPlantsClearedEvent(n))
	}
	var placed []*Plant
	seq := EachStep(s.Rules.PlantSlots, func(_ context.Context, i int) error {
		var typeID string
		switch {
		case i < len(typeIDs):
			typeID = typeIDs[i]
		case len(s.plantTypes) == 0:
			return ErrNoPlantTypes
		default:
			typeID = s.plantTypes[s.rng.Intn(len(s.plantTypes))]
		}
		card, err := s.Catalog.NewCard(typeID)
		if err != nil {
			return err
		}
		p := NewPlant(card, i)
		if err := s.spawn(p); err != nil {
			return err
		}
		placed = append(placed, p)
		s.Journal.Log(log.NewPlantPlacedEvent(card.Name, i))
		return nil
	})
	if err := s.Driver.Run(ctx, seq); err != nil {
		return fmt.Errorf("place plants: %w", err)
	}
	s.Plants = placed
	return nil
}

func (s *Session) spawn(p *Plant) error {
	if s.Spawner == nil {
		return nil
	}
	if err := s.Spawner.Spawn(p); err != nil {
		return fmt.Errorf("spawn %s at %d: %w", p.Card, p.Loc, err)
	}
	return nil
}

// --- Effect suppression ---

// SuppressEffects runs fn with on-apply side effects switched off. The flag covers all of
// fn and is lowered afterwards, even on failure.
func (s *Session) SuppressEffects(fn func() error) error {
	s.suppressed = true
	defer func() { s.suppressed = false }()
	return fn()
}

// Suppressed reports whether on-apply side effects are currently off.
func (s *Session) Suppressed() bool {
	return s.suppressed
}

// --- Player actions ---

// TreatmentRoll is the outcome of a treatment against one affliction.
type TreatmentRoll struct {
	Affliction string
	Efficacy   int
	Cured      bool
}

// PlayResult is what a played card changed.
type PlayResult struct {
	Card     *Card
	Location int
	Rolls    []TreatmentRoll
}

// PlayCard plays a treatment card from the hand onto the plant at loc. The card passes
// through a placement slot and ends on the discard pile.
func (s *Session) PlayCard(card *Card, loc int) (PlayResult, error) {
	if s.Phase() != PhasePlayerTurn {
		return PlayResult{}, fmt.Errorf("play %s during %s: %w", card, s.Phase(), ErrNotPlayable)
	}
	if card == nil || card.Treatment == nil {
		return PlayResult{}, fmt.Errorf("play %s: no treatment: %w", card, ErrNotPlayable)
	}
	plant, err := s.PlantAt(loc)
	if err != nil {
		return PlayResult{}, fmt.Errorf("play %s: %w", card, err)
	}
	slot := s.Deck.FreeSlot()
	if slot < 0 {
		return PlayResult{}, fmt.Errorf("play %s: %w", card, ErrSlotsFull)
	}
	if err := s.Deck.Place(card, slot); err != nil {
		return PlayResult{}, fmt.Errorf("play: %w", err)
	}

	result := PlayResult{Card: card, Location: loc}
	result.Rolls = s.treat(plant, card.Treatment, card.EffectiveValue())
	if err := s.Deck.ResolvePlaced(slot, true); err != nil {
		return result, fmt.Errorf("play %s: %w", card, err)
	}
	return result, nil
}

// MoldCurePerValue is how much intensity a successful treatment removes from a continuous
// affliction per point of the played card's value.
const MoldCurePerValue = 0.1

// treat applies t, played from a card worth value, to p. While effects are suppressed only
// the history is recorded.
func (s *Session) treat(p *Plant, t *Treatment, value int) []TreatmentRoll {
	p.RecordTreatment(t.ID)
	if s.suppressed {
		return nil
	}
	s.Journal.Log(log.NewTreatmentAppliedEvent(t.Name, p.Loc))

	var rolls []TreatmentRoll
	for _, aff := range p.Afflictions() {
		if !aff.TreatableBy(t) {
			continue
		}
		eff := s.Efficacy.Efficacy(aff, t, true)
		roll := TreatmentRoll{Affliction: aff.ID, Efficacy: eff}
		if s.rng.Intn(100) < eff {
			if aff.Continuous {
				p.MoldIntensity = max(0, p.MoldIntensity-MoldCurePerValue*float64(value))
				roll.Cured = p.MoldIntensity <= 1e-9
			} else {
				roll.Cured = true
			}
			if roll.Cured {
				p.Cure(aff)
				s.Journal.Log(log.NewCuredEvent(aff.Name, p.Loc, eff))
			}
		}
		rolls = append(rolls, roll)
	}
	p.Refresh()
	return rolls
}

// PreviewLine is the display efficacy against one affliction.
type PreviewLine struct {
	Affliction string
	Display    string
}

// Preview describes what playing a card would do, without doing it.
type Preview struct {
	Average int
	Display string
	Lines   []PreviewLine
}

// PreviewCard reports a card's expected efficacy on the plant at loc. Nothing is mutated.
func (s *Session) PreviewCard(card *Card, loc int) (Preview, error) {
	if card == nil || card.Treatment == nil {
		return Preview{}, fmt.Errorf("preview %s: %w", card, ErrNotPlayable)
	}
	plant, err := s.PlantAt(loc)
	if err != nil {
		return Preview{}, fmt.Errorf("preview %s: %w", card, err)
	}
	t := card.Treatment
	pv := Preview{Average: s.Efficacy.AverageEfficacy(t, plant)}
	allKnown := true
	for _, aff := range plant.Afflictions() {
		eff, ok := s.Efficacy.Peek(aff, t)
		if !ok {
			continue
		}
		if !s.Efficacy.IsDiscovered(t, aff) {
			allKnown = false
		}
		pv.Lines = append(pv.Lines, PreviewLine{Affliction: aff.ID, Display: s.Efficacy.DisplayEfficacy(t, aff, eff)})
	}
	pv.Display = "?"
	if allKnown {
		pv.Display = fmt.Sprintf("%d%%", pv.Average)
	}
	return pv, nil
}

// Price is the shop price of a card type.
func (s *Session) Price(typeID string) (int, error) {
	proto, err := s.Catalog.Prototype(typeID)
	if err != nil {
		return 0, err
	}
	return max(1, proto.BaseValue()*s.Rules.PriceFactor), nil
}

// BuyCard buys a new instance of typeID in the shop. It joins the discard pile.
func (s *Session) BuyCard(typeID string) (*Card, error) {
	if s.Phase() != PhaseShop {
		return nil, fmt.Errorf("buy %q during %s: %w", typeID, s.Phase(), ErrNotPlayable)
	}
	price, err := s.Price(typeID)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	if s.Money < price {
		return nil, fmt.Errorf("buy %q for %d with %d: %w", typeID, price, s.Money, ErrInsufficientFunds)
	}
	card, err := s.Catalog.NewCard(typeID)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}
	s.Money -= price
	s.Deck.AddToDiscard(card)
	s.Journal.Log(log.NewPurchaseEvent(card.Name, price, s.Money))
	return card, nil
}

// AddSticker puts a new sticker of typeID into the inventory.
func (s *Session) AddSticker(typeID string) (*Sticker, error) {
	st, err := s.Catalog.NewSticker(typeID)
	if err != nil {
		return nil, fmt.Errorf("add sticker: %w", err)
	}
	s.Stickers = append(s.Stickers, st)
	return st, nil
}

// ApplySticker moves the inventory sticker at index onto card, which must be owned by
// the player.
func (s *Session) ApplySticker(index int, card *Card) error {
	if index < 0 || index >= len(s.Stickers) {
		return fmt.Errorf("apply sticker %d: no such sticker", index)
	}
	if !s.Owns(card) {
		return fmt.Errorf("apply sticker to %s: %w", card, ErrNotInHand)
	}
	st := s.Stickers[index]
	s.Stickers = append(s.Stickers[:index:index], s.Stickers[index+1:]...)
	card.Stickers = append(card.Stickers, st)
	s.Journal.Log(log.NewStickerAppliedEvent(st.Name, card.Name))
	return nil
}

// DuplicateCard clones an owned card, stickers included, into the discard pile.
func (s *Session) DuplicateCard(card *Card) (*Card, error) {
	if !s.Owns(card) {
		return nil, fmt.Errorf("duplicate %s: %w", card, ErrNotInHand)
	}
	cp := s.Catalog.CopyCard(card)
	s.Deck.AddToDiscard(cp)
	return cp, nil
}

// --- Retained card ---

// RetainCard sets a hand card aside in the retained slot.
func (s *Session) RetainCard(card *Card) error {
	if s.Retained != nil {
		return fmt.Errorf("retain %s: %w", card, ErrRetainedSlotInUse)
	}
	if err := s.Deck.TakeFromHand(card); err != nil {
		return fmt.Errorf("retain: %w", err)
	}
	s.Retained = &RetainedCard{Card: card}
	s.Journal.Log(log.NewRetainEvent(card.Name, true))
	return nil
}

// PayRetained pays to keep the retained card; a paid card returns to the hand at the next draw.
func (s *Session) PayRetained() error {
	if s.Retained == nil {
		return ErrRetainedSlotEmpty
	}
	if s.Retained.Paid {
		return nil
	}
	if s.Money < s.Rules.RetainPrice {
		return fmt.Errorf("pay for retained card: %w", ErrInsufficientFunds)
	}
	s.Money -= s.Rules.RetainPrice
	s.Retained.Paid = true
	return nil
}

// LockRetained pins the retained card in its slot until unlocked.
func (s *Session) LockRetained(locked bool) error {
	if s.Retained == nil {
		return ErrRetainedSlotEmpty
	}
	s.Retained.Locked = locked
	return nil
}

// ReleaseRetained returns the retained card to the hand.
func (s *Session) ReleaseRetained() error {
	if s.Retained == nil {
		return ErrRetainedSlotEmpty
	}
	if s.Retained.Locked {
		return fmt.Errorf("release %s: %w", s.Retained.Card, ErrRetainedCardLocked)
	}
	card := s.Retained.Card
	s.Retained = nil
	s.Deck.Hand = append(s.Deck.Hand, card)
	s.Journal.Log(log.NewRetainEvent(card.Name, false))
	return nil
}

// returnRetained moves a paid, unlocked retained card back into the hand.
func (s *Session) returnRetained() {
	if s.Retained == nil || !s.Retained.Paid || s.Retained.Locked {
		return
	}
	_ = s.ReleaseRetained()
}

// --- Ownership ---

// OwnedCards lists every action card instance the player holds, in every container.
func (s *Session) OwnedCards() []*Card {
	cards := s.Deck.Cards()
	cards = append(cards, s.Deck.Placed()...)
	if s.Retained != nil {
		cards = append(cards, s.Retained.Card)
	}
	return cards
}

// Owns reports whether card is one of the player's action cards.
func (s *Session) Owns(card *Card) bool {
	for _, c := range s.OwnedCards() {
		if c == card {
			return true
		}
	}
	return false
}

// FindCard returns the owned card with instance id.
func (s *Session) FindCard(id int) (*Card, bool) {
	for _, c := range s.OwnedCards() {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
