package game

import (
	"slices"
)

// AfflictionHost is anything afflictions can be assigned to. Plants are the only hosts
// in play; tests use the same interface.
type AfflictionHost interface {
	Location() int
	Afflictions() []*Affliction
	HasAffliction(a *Affliction) bool
	AddAffliction(a *Affliction, intensity float64)
	Refresh()
}

// Spawner is the visual side of plant placement. Spawn is called once per plant while the
// placement sequence runs.
type Spawner interface {
	Spawn(p *Plant) error
}

// Plant is a plant card in play at a location, with its affliction and treatment history.
type Plant struct {
	Card              *Card
	Loc               int
	Current           []*Affliction
	Prior             []string // affliction IDs cured or carried earlier
	CurrentTreatments []string // treatment IDs applied this turn
	UsedTreatments    []string // every treatment ID ever applied
	MoldIntensity     float64

	// OnRefresh is called after the afflictions change. nil is fine.
	OnRefresh func(*Plant)
}

// NewPlant puts card into play at loc.
func NewPlant(card *Card, loc int) *Plant {
	return &Plant{Card: card, Loc: loc}
}

func (p *Plant) Location() int {
	return p.Loc
}

// Afflictions returns a copy of the current afflictions.
func (p *Plant) Afflictions() []*Affliction {
	return slices.Clone(p.Current)
}

func (p *Plant) HasAffliction(a *Affliction) bool {
	return p.indexOf(a.ID) >= 0
}

// AddAffliction attaches a. Continuous afflictions carry their intensity on the plant.
func (p *Plant) AddAffliction(a *Affliction, intensity float64) {
	p.Current = append(p.Current, a)
	if a.Continuous && intensity > p.MoldIntensity {
		p.MoldIntensity = intensity
	}
}

func (p *Plant) Refresh() {
	if p.OnRefresh != nil {
		p.OnRefresh(p)
	}
}

// Cure removes a from the current afflictions and records it as prior.
func (p *Plant) Cure(a *Affliction) bool {
	i := p.indexOf(a.ID)
	if i < 0 {
		return false
	}
	p.Current = slices.Delete(p.Current, i, i+1)
	p.Prior = append(p.Prior, a.ID)
	if a.Continuous {
		p.MoldIntensity = 0
	}
	return true
}

// RecordTreatment notes that treatment id was applied to this plant.
func (p *Plant) RecordTreatment(id string) {
	p.CurrentTreatments = append(p.CurrentTreatments, id)
	if !slices.Contains(p.UsedTreatments, id) {
		p.UsedTreatments = append(p.UsedTreatments, id)
	}
}

// EndTurn forgets the treatments applied this turn.
func (p *Plant) EndTurn() {
	p.CurrentTreatments = nil
}

// Healthy reports whether the plant carries no afflictions.
func (p *Plant) Healthy() bool {
	return len(p.Current) == 0
}

func (p *Plant) indexOf(id string) int {
	for i, a := range p.Current {
		if a.ID == id {
			return i
		}
	}
	return -1
}
