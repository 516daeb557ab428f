package game

import (
	"errors"
	"testing"
)

// TestCatalogLifecycle: registration only before Freeze, instances only after.
func TestCatalogLifecycle(t *testing.T) {
	c := NewCatalog()
	if err := RegisterBuiltins(c); err != nil {
		t.Fatal(err)
	}
	if _, err := c.NewCard("soapy_water_card"); !errors.Is(err, ErrCatalogNotFrozen) {
		t.Errorf("NewCard before Freeze: got %v", err)
	}

	c.Freeze()

	err := c.RegisterCard(&Card{TypeID: "late", Kind: CardAction, Name: "Late"})
	if !errors.Is(err, ErrCatalogFrozen) {
		t.Errorf("register after Freeze: got %v", err)
	}
	if _, err := c.NewCard("soapy_water_card"); err != nil {
		t.Errorf("NewCard after Freeze: %v", err)
	}
}

// TestCatalogRejectsDuplicatesAndUnknown: duplicates and unknown identifiers are errors.
func TestCatalogRejectsDuplicatesAndUnknown(t *testing.T) {
	c := NewCatalog()
	if err := RegisterBuiltins(c); err != nil {
		t.Fatal(err)
	}
	if err := c.RegisterTreatment(SoapyWater()); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("duplicate treatment: got %v", err)
	}
	orphan := &Card{TypeID: "orphan", Kind: CardAction, Name: "Orphan", Treatment: &Treatment{ID: "unregistered"}}
	if err := c.RegisterCard(orphan); !errors.Is(err, ErrUnknownType) {
		t.Errorf("card with unknown treatment: got %v", err)
	}
	c.Freeze()
	if _, err := c.NewCard("missing"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown card: got %v", err)
	}
	if _, err := c.NewSticker("missing"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown sticker: got %v", err)
	}
}

// TestRegisterTreatmentCardIsAtomic: when the card cannot be registered, its new treatment
// is not registered either.
func TestRegisterTreatmentCardIsAtomic(t *testing.T) {
	c := NewCatalog()
	if err := RegisterBuiltins(c); err != nil {
		t.Fatal(err)
	}
	clash := &Card{TypeID: "soapy_water_card", Kind: CardAction, Name: "Clash", Treatment: &Treatment{ID: "clash"}}
	if err := c.RegisterTreatmentCard(clash); !errors.Is(err, ErrDuplicateType) {
		t.Errorf("duplicate card: got %v", err)
	}
	if c.HasTreatment("clash") {
		t.Error("treatment of a rejected card was registered")
	}

	broken := &Card{TypeID: "broken_card", Kind: CardAffliction, Name: "Broken", Treatment: &Treatment{ID: "broken"}}
	if err := c.RegisterTreatmentCard(broken); err == nil {
		t.Error("affliction card without affliction should be rejected")
	}
	if c.HasTreatment("broken") || c.HasCard("broken_card") {
		t.Error("rejected registration left a trace")
	}

	tonic := &Card{TypeID: "tonic_card", Kind: CardAction, Name: "Tonic", Treatment: &Treatment{ID: "tonic", Name: "Tonic"}}
	if err := c.RegisterTreatmentCard(tonic); err != nil {
		t.Fatal(err)
	}
	if !c.HasTreatment("tonic") || !c.HasCard("tonic_card") {
		t.Error("tonic should be registered with its treatment")
	}
}

// TestCatalogClonesAreIndependent: instances never share mutable state with each other or
// with the prototype, and every clone bumps the created count.
func TestCatalogClonesAreIndependent(t *testing.T) {
	c := builtinCatalog(t)
	a, _ := c.NewCard("neem_oil_card")
	b, _ := c.NewCard("neem_oil_card")

	if a == b || a.ID == b.ID || a.ID == 0 {
		t.Fatalf("instances should be distinct with IDs, got #%d and #%d", a.ID, b.ID)
	}
	*a.Value = 99
	if b.BaseValue() == 99 {
		t.Error("value shared between instances")
	}
	proto, _ := c.Prototype("neem_oil_card")
	if proto.BaseValue() == 99 || !proto.IsPrototype() {
		t.Error("prototype was mutated through an instance")
	}

	st, _ := c.NewSticker("plus_one")
	a.Stickers = append(a.Stickers, st)
	before := c.Created()
	cp := c.CopyCard(a)
	if c.Created() != before+1 {
		t.Errorf("copy should create one instance")
	}
	*cp.Stickers[0].Value = 5
	if *a.Stickers[0].Value != 1 {
		t.Error("sticker shared between copy and original")
	}
	if cp.Treatment != a.Treatment {
		t.Error("treatment definitions should be shared")
	}
}

// TestStickerEffects: stickers fold over the base value in order.
func TestStickerEffects(t *testing.T) {
	c := builtinCatalog(t)
	card, _ := c.NewCard("ladybugs_card") // value 3
	plus, _ := c.NewSticker("plus_two")
	double, _ := c.NewSticker("double")
	card.Stickers = []*Sticker{plus, double}

	if got := card.EffectiveValue(); got != 10 {
		t.Errorf("(3+2)*2 = %d, want 10", got)
	}
	card.Stickers = []*Sticker{double, plus}
	if got := card.EffectiveValue(); got != 8 {
		t.Errorf("3*2+2 = %d, want 8", got)
	}
}

// TestStarterDeckWeights: a starter deck holds Weight copies of every card of the kind.
func TestStarterDeckWeights(t *testing.T) {
	c := builtinCatalog(t)
	deck, err := c.StarterDeck(CardAffliction)
	if err != nil {
		t.Fatal(err)
	}
	counts := typeCounts(deck)
	want := map[string]int{
		"aphids_card": 3, "mealybugs_card": 2, "thrips_card": 2,
		"spider_mites_card": 2, "mildew_card": 2, "mold_card": 1,
	}
	for id, n := range want {
		if counts[id] != n {
			t.Errorf("%s: %d copies, want %d", id, counts[id], n)
		}
	}
}

// TestParseColor: colors round-trip through hex.
func TestParseColor(t *testing.T) {
	col, err := ParseColor("#7cb342")
	if err != nil {
		t.Fatal(err)
	}
	if col != (Color{R: 0x7c, G: 0xb3, B: 0x42}) || col.Hex() != "#7cb342" {
		t.Errorf("got %+v (%s)", col, col.Hex())
	}
	if _, err := ParseColor("green"); err == nil {
		t.Error("expected an error for a non-hex color")
	}
}
