package game

import (
	"cmp"
	"math/rand"
	"slices"
	"strconv"

	"github.com/peterkuimelis/greenhouse/internal/log"
)

// Relation is the mutable efficacy record for one (affliction, treatment) pair.
type Relation struct {
	Efficacy     int
	Interactions int
}

type relationKey struct {
	affliction string
	treatment  string
}

type discoveryKey struct {
	treatment  string
	affliction string
}

// EfficacyEngine tracks how well each treatment works on each affliction. Relations are
// created on first use and wear down with repeated use.
type EfficacyEngine struct {
	// DiscoveryMode hides efficacy numbers until a pair has been tried.
	DiscoveryMode bool

	relations  map[relationKey]*Relation
	discovered map[discoveryKey]bool
	rng        *rand.Rand
	journal    *Journal
}

// NewEfficacyEngine creates an engine with no relations.
func NewEfficacyEngine(discoveryMode bool, rng *rand.Rand, journal *Journal) *EfficacyEngine {
	return &EfficacyEngine{
		DiscoveryMode: discoveryMode,
		relations:     make(map[relationKey]*Relation),
		discovered:    make(map[discoveryKey]bool),
		rng:           rng,
		journal:       journal,
	}
}

// Efficacy returns the efficacy (0–100) of t against aff.
//
// The first pairing of a treatable combination creates the relation at the treatment's base
// efficacy and marks it discovered. Later calls with count set record an interaction and may
// decay the efficacy; calls without count only read it. Untreatable pairs return 0 and never
// create a relation.
func (e *EfficacyEngine) Efficacy(aff *Affliction, t *Treatment, count bool) int {
	if aff == nil || t == nil {
		e.journal.Warn("efficacy query with missing affliction (%v) or treatment (%v)", aff, t)
		return 0
	}
	key := relationKey{aff.ID, t.ID}
	rel, ok := e.relations[key]
	if !ok {
		if !aff.TreatableBy(t) {
			return 0
		}
		rel = &Relation{Efficacy: t.BaseEfficacy(aff.ID), Interactions: 1}
		e.relations[key] = rel
		e.markDiscovered(aff, t, rel.Efficacy)
		return rel.Efficacy
	}
	if !count {
		return rel.Efficacy
	}
	e.markDiscovered(aff, t, rel.Efficacy)
	rel.Interactions++
	e.touch(aff, t, rel)
	return rel.Efficacy
}

// decayChance is the probability that one more use wears a relation down.
func decayChance(interactions int) float64 {
	switch {
	case interactions > 15:
		return 0.3
	case interactions > 10:
		return 0.5
	case interactions > 5:
		return 0.8
	default:
		return 0
	}
}

func (e *EfficacyEngine) touch(aff *Affliction, t *Treatment, rel *Relation) {
	chance := decayChance(rel.Interactions)
	if chance == 0 || e.rng.Float64() >= chance {
		return
	}
	old := rel.Efficacy
	rel.Efficacy = max(1, rel.Efficacy-10)
	if rel.Efficacy != old {
		e.journal.Log(log.NewResistanceEvent(aff.Name, t.Name, old, rel.Efficacy))
	}
}

func (e *EfficacyEngine) markDiscovered(aff *Affliction, t *Treatment, efficacy int) {
	key := discoveryKey{t.ID, aff.ID}
	if e.discovered[key] {
		return
	}
	e.discovered[key] = true
	e.journal.Log(log.NewDiscoveredEvent(t.Name, aff.Name, efficacy))
}

// Peek returns the efficacy a pairing has or would start at, without creating or touching
// anything. ok is false for untreatable pairs.
func (e *EfficacyEngine) Peek(aff *Affliction, t *Treatment) (efficacy int, ok bool) {
	if aff == nil || t == nil || !aff.TreatableBy(t) {
		return 0, false
	}
	if rel, found := e.relations[relationKey{aff.ID, t.ID}]; found {
		return rel.Efficacy, true
	}
	return t.BaseEfficacy(aff.ID), true
}

// Relation returns a copy of the stored relation.
func (e *EfficacyEngine) Relation(aff *Affliction, t *Treatment) (Relation, bool) {
	if aff == nil || t == nil {
		return Relation{}, false
	}
	rel, ok := e.relations[relationKey{aff.ID, t.ID}]
	if !ok {
		return Relation{}, false
	}
	return *rel, true
}

// AverageEfficacy averages the efficacy of t over the host's afflictions it can treat.
// Untreatable afflictions are left out rather than counted as 0. Nothing is mutated.
func (e *EfficacyEngine) AverageEfficacy(t *Treatment, host AfflictionHost) int {
	if t == nil || host == nil {
		e.journal.Warn("average efficacy query with missing treatment or host")
		return 0
	}
	sum, n := 0, 0
	for _, aff := range host.Afflictions() {
		if eff, ok := e.Peek(aff, t); ok {
			sum += eff
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// IsDiscovered reports whether the efficacy of t on aff may be shown.
func (e *EfficacyEngine) IsDiscovered(t *Treatment, aff *Affliction) bool {
	if !e.DiscoveryMode {
		return true
	}
	if t == nil || aff == nil {
		return false
	}
	return e.discovered[discoveryKey{t.ID, aff.ID}]
}

// DisplayEfficacy renders an efficacy for the player, "?" while undiscovered.
func (e *EfficacyEngine) DisplayEfficacy(t *Treatment, aff *Affliction, efficacy int) string {
	if !e.IsDiscovered(t, aff) {
		return "?"
	}
	return strconv.Itoa(efficacy) + "%"
}

// ClearDiscoveries drops every relation and discovery.
func (e *EfficacyEngine) ClearDiscoveries() {
	clear(e.relations)
	clear(e.discovered)
}

// RelationEntry is one relation in a snapshot.
type RelationEntry struct {
	Affliction   string `json:"affliction"`
	Treatment    string `json:"treatment"`
	Efficacy     int    `json:"efficacy"`
	Interactions int    `json:"interactionCount"`
}

// DiscoveryEntry is one discovered pair in a snapshot.
type DiscoveryEntry struct {
	Treatment  string `json:"treatment"`
	Affliction string `json:"affliction"`
}

// EfficacySnapshot is the persistable form of the engine's state.
type EfficacySnapshot struct {
	Relations  []RelationEntry  `json:"relations"`
	Discovered []DiscoveryEntry `json:"discovered"`
}

// Snapshot returns the relations and discoveries in a stable order.
func (e *EfficacyEngine) Snapshot() EfficacySnapshot {
	var snap EfficacySnapshot
	for k, rel := range e.relations {
		snap.Relations = append(snap.Relations, RelationEntry{
			Affliction:   k.affliction,
			Treatment:    k.treatment,
			Efficacy:     rel.Efficacy,
			Interactions: rel.Interactions,
		})
	}
	for k := range e.discovered {
		snap.Discovered = append(snap.Discovered, DiscoveryEntry{Treatment: k.treatment, Affliction: k.affliction})
	}
	slices.SortFunc(snap.Relations, func(a, b RelationEntry) int {
		return cmp.Or(cmp.Compare(a.Affliction, b.Affliction), cmp.Compare(a.Treatment, b.Treatment))
	})
	slices.SortFunc(snap.Discovered, func(a, b DiscoveryEntry) int {
		return cmp.Or(cmp.Compare(a.Treatment, b.Treatment), cmp.Compare(a.Affliction, b.Affliction))
	})
	return snap
}

// Restore replaces all relations and discoveries with snap. Efficacies are clamped to 1–100.
func (e *EfficacyEngine) Restore(snap EfficacySnapshot) {
	e.ClearDiscoveries()
	for _, r := range snap.Relations {
		e.relations[relationKey{r.Affliction, r.Treatment}] = &Relation{
			Efficacy:     clampInt(r.Efficacy, 1, 100),
			Interactions: max(r.Interactions, 1),
		}
	}
	for _, d := range snap.Discovered {
		e.discovered[discoveryKey{d.Treatment, d.Affliction}] = true
	}
}
