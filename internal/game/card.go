package game

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// IntPtr returns a pointer to v, for the optional integer fields.
func IntPtr(v int) *int {
	return &v
}

// --- Treatments ---

// Treatment is an immutable definition shared by every card that carries it.
type Treatment struct {
	ID              string
	Name            string
	InfectCureValue int
	EggCureValue    int
	Efficacy        *int // nil means 100
	Synthetic       bool

	// Overrides is an affliction-specific effectiveness table (affliction ID → starting
	// efficacy). An entry makes the pair treatable even if the affliction does not list
	// this treatment as a vulnerability.
	Overrides map[string]int
}

func (t *Treatment) String() string {
	if t == nil {
		return "(none)"
	}
	return t.Name
}

// BaseEfficacy is the efficacy a new relation with the given affliction starts at, in
// [1, 100]. A treatable pair never starts below the decay floor.
func (t *Treatment) BaseEfficacy(afflictionID string) int {
	if v, ok := t.Overrides[afflictionID]; ok {
		return clampInt(v, 1, 100)
	}
	if t.Efficacy == nil {
		return 100
	}
	return clampInt(*t.Efficacy, 1, 100)
}

// --- Afflictions ---

// IntensityBand bounds the severity rolled for continuous afflictions.
type IntensityBand struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Validate checks that the band lies inside [0, 1] with Min <= Max.
func (b IntensityBand) Validate() error {
	if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Min < 0 || b.Max > 1 || b.Max < b.Min {
		return fmt.Errorf("intensity band %g..%g: need 0 <= min <= max <= 1", b.Min, b.Max)
	}
	return nil
}

// Roll returns a uniform value in [Min, Max], clamped to [0, 1].
func (b IntensityBand) Roll(rng *rand.Rand) float64 {
	v := b.Min
	if b.Max > b.Min {
		v += rng.Float64() * (b.Max - b.Min)
	}
	return min(max(v, 0), 1)
}

// Affliction is an immutable definition. Per-plant state (intensity) lives on the plant.
type Affliction struct {
	ID          string
	Name        string
	Description string
	Color       Color
	Kind        AfflictionKind
	Shader      string   // opaque visual reference
	Vulnerable  []string // treatment IDs, in definition order
	Continuous  bool     // carries a spreading intensity
	Band        *IntensityBand
}

func (a *Affliction) String() string {
	if a == nil {
		return "(none)"
	}
	return a.Name
}

// Identifier is the stable key used for relations, save files and visual lookup.
func (a *Affliction) Identifier() string {
	return a.ID
}

// VulnerableTreatments returns a copy of the treatment IDs this affliction yields to.
func (a *Affliction) VulnerableTreatments() []string {
	return slices.Clone(a.Vulnerable)
}

// TreatableBy reports whether t has any effect on this affliction.
func (a *Affliction) TreatableBy(t *Treatment) bool {
	if a == nil || t == nil {
		return false
	}
	if _, ok := t.Overrides[a.ID]; ok {
		return true
	}
	return slices.Contains(a.Vulnerable, t.ID)
}

// RollIntensity rolls a severity for a continuous affliction. The affliction's own band
// wins over the configured fallback. Non-continuous afflictions always return 0.
func (a *Affliction) RollIntensity(rng *rand.Rand, fallback IntensityBand) float64 {
	if !a.Continuous {
		return 0
	}
	band := fallback
	if a.Band != nil {
		band = *a.Band
	}
	return band.Roll(rng)
}

// --- Stickers ---

// Sticker modifies the value of the one card it is stuck to.
type Sticker struct {
	TypeID      string
	Name        string
	Description string
	Effect      StickerEffect
	Value       *int
}

// Apply folds this sticker into a card value.
func (s *Sticker) Apply(v int) int {
	switch s.Effect {
	case StickerMultiply:
		if s.Value == nil {
			return v
		}
		return v * *s.Value
	default:
		if s.Value == nil {
			return v
		}
		return v + *s.Value
	}
}

// Clone returns an independent copy.
func (s *Sticker) Clone() *Sticker {
	c := *s
	if s.Value != nil {
		c.Value = IntPtr(*s.Value)
	}
	return &c
}

// --- Cards ---

// Card is either a prototype (ID 0, owned by the catalog) or an instance.
type Card struct {
	ID          int // 0 for prototypes
	TypeID      string
	Kind        CardKind
	Name        string
	Description string
	Value       *int
	Weight      int    // copies in a starter deck
	Prefab      string // opaque visual reference
	Material    string // opaque visual reference
	Treatment   *Treatment
	Affliction  *Affliction
	Stickers    []*Sticker
}

func (c *Card) String() string {
	if c == nil {
		return "(empty)"
	}
	return c.Name
}

// IsPrototype reports whether this card is a catalog template.
func (c *Card) IsPrototype() bool {
	return c.ID == 0
}

// BaseValue returns the printed value, 0 when unset.
func (c *Card) BaseValue() int {
	if c.Value == nil {
		return 0
	}
	return *c.Value
}

// EffectiveValue returns the value after applying every sticker in order.
func (c *Card) EffectiveValue() int {
	v := c.BaseValue()
	for _, s := range c.Stickers {
		v = s.Apply(v)
	}
	return v
}

// DisplayString returns a human-readable description for the event log.
func (c *Card) DisplayString() string {
	if c == nil {
		return "(empty)"
	}
	if len(c.Stickers) == 0 {
		return fmt.Sprintf("%s [%d]", c.Name, c.EffectiveValue())
	}
	return fmt.Sprintf("%s [%d, %d stickers]", c.Name, c.EffectiveValue(), len(c.Stickers))
}

// copyWithID deep-copies the mutable parts of a card. Treatment and affliction
// definitions are immutable and shared.
func (c *Card) copyWithID(id int) *Card {
	cp := *c
	cp.ID = id
	if c.Value != nil {
		cp.Value = IntPtr(*c.Value)
	}
	cp.Stickers = nil
	for _, s := range c.Stickers {
		cp.Stickers = append(cp.Stickers, s.Clone())
	}
	return &cp
}

// RetainedCard is the single card kept aside between rounds.
type RetainedCard struct {
	Card   *Card
	Paid   bool
	Locked bool
}
