package game

import "fmt"

// Built-in treatment identifiers.
const (
	TreatmentSoapyWater       = "soapy_water"
	TreatmentNeemOil          = "neem_oil"
	TreatmentHorticulturalOil = "horticultural_oil"
	TreatmentFungicide        = "fungicide"
	TreatmentLadybugs         = "ladybugs"
	TreatmentSpinosad         = "spinosad"
	TreatmentSystemic         = "systemic_insecticide"
	TreatmentPanacea          = "panacea"
)

// Built-in affliction identifiers.
const (
	AfflictionAphids      = "aphids"
	AfflictionMealybugs   = "mealybugs"
	AfflictionThrips      = "thrips"
	AfflictionSpiderMites = "spider_mites"
	AfflictionMildew      = "mildew"
	AfflictionMold        = "mold"
)

// --- Treatments ---

func SoapyWater() *Treatment {
	return &Treatment{ID: TreatmentSoapyWater, Name: "Soapy Water", InfectCureValue: 1, Efficacy: IntPtr(70)}
}

func NeemOil() *Treatment {
	return &Treatment{ID: TreatmentNeemOil, Name: "Neem Oil", InfectCureValue: 1, EggCureValue: 1, Efficacy: IntPtr(85)}
}

func HorticulturalOil() *Treatment {
	return &Treatment{ID: TreatmentHorticulturalOil, Name: "Horticultural Oil", InfectCureValue: 2, EggCureValue: 1, Efficacy: IntPtr(90)}
}

func Fungicide() *Treatment {
	return &Treatment{ID: TreatmentFungicide, Name: "Fungicide", InfectCureValue: 1}
}

func Ladybugs() *Treatment {
	return &Treatment{ID: TreatmentLadybugs, Name: "Ladybugs", InfectCureValue: 2, Efficacy: IntPtr(80)}
}

func Spinosad() *Treatment {
	return &Treatment{ID: TreatmentSpinosad, Name: "Spinosad", InfectCureValue: 2, EggCureValue: 2, Efficacy: IntPtr(95)}
}

func SystemicInsecticide() *Treatment {
	return &Treatment{ID: TreatmentSystemic, Name: "Systemic Insecticide", InfectCureValue: 3, EggCureValue: 3, Synthetic: true}
}

// Panacea treats everything at full strength.
func Panacea() *Treatment {
	return &Treatment{ID: TreatmentPanacea, Name: "Panacea", InfectCureValue: 3, EggCureValue: 3, Synthetic: true}
}

// --- Afflictions ---

func Aphids() *Affliction {
	return &Affliction{
		ID:          AfflictionAphids,
		Name:        "Aphids",
		Description: "Sap-sucking insects clustered on new growth.",
		Color:       Color{R: 0x7c, G: 0xb3, B: 0x42},
		Kind:        AfflictionPest,
		Vulnerable: []string{
			TreatmentSoapyWater, TreatmentNeemOil, TreatmentHorticulturalOil,
			TreatmentLadybugs, TreatmentSystemic, TreatmentPanacea,
		},
	}
}

func Mealybugs() *Affliction {
	return &Affliction{
		ID:          AfflictionMealybugs,
		Name:        "Mealybugs",
		Description: "Cottony white masses in leaf joints.",
		Color:       Color{R: 0xf5, G: 0xf5, B: 0xf0},
		Kind:        AfflictionPest,
		Vulnerable: []string{
			TreatmentNeemOil, TreatmentHorticulturalOil, TreatmentLadybugs,
			TreatmentSystemic, TreatmentPanacea,
		},
	}
}

func Thrips() *Affliction {
	return &Affliction{
		ID:          AfflictionThrips,
		Name:        "Thrips",
		Description: "Tiny slender insects leaving silvery scars.",
		Color:       Color{R: 0xe0, G: 0xc0, B: 0x30},
		Kind:        AfflictionPest,
		Vulnerable:  []string{TreatmentSpinosad, TreatmentNeemOil, TreatmentSystemic, TreatmentPanacea},
	}
}

func SpiderMites() *Affliction {
	return &Affliction{
		ID:          AfflictionSpiderMites,
		Name:        "Spider Mites",
		Description: "Fine webbing and stippled leaves.",
		Color:       Color{R: 0xc6, G: 0x28, B: 0x28},
		Kind:        AfflictionPest,
		Vulnerable: []string{
			TreatmentHorticulturalOil, TreatmentSoapyWater, TreatmentSpinosad, TreatmentPanacea,
		},
	}
}

func Mildew() *Affliction {
	return &Affliction{
		ID:          AfflictionMildew,
		Name:        "Powdery Mildew",
		Description: "White powdery coating on leaves.",
		Color:       Color{R: 0xbd, G: 0xbd, B: 0xbd},
		Kind:        AfflictionFungal,
		Vulnerable:  []string{TreatmentFungicide, TreatmentNeemOil, TreatmentPanacea},
	}
}

// Mold spreads over time; its severity is rolled at assignment.
func Mold() *Affliction {
	return &Affliction{
		ID:          AfflictionMold,
		Name:        "Mold",
		Description: "Fuzzy grey mold spreading across the soil.",
		Color:       Color{R: 0x60, G: 0x7d, B: 0x8b},
		Kind:        AfflictionFungal,
		Vulnerable:  []string{TreatmentFungicide, TreatmentPanacea},
		Continuous:  true,
	}
}

// --- Card tables ---

type treatmentCardDef struct {
	typeID    string
	treatment func() *Treatment
	desc      string
	value     int
	weight    int
}

var treatmentCards = []treatmentCardDef{
	{"soapy_water_card", SoapyWater, "Rinse soft-bodied pests away.", 1, 3},
	{"neem_oil_card", NeemOil, "Broad botanical oil.", 2, 2},
	{"horticultural_oil_card", HorticulturalOil, "Smothers pests and eggs.", 2, 2},
	{"fungicide_card", Fungicide, "Stops fungal growth.", 2, 2},
	{"ladybugs_card", Ladybugs, "Release a swarm of predators.", 3, 2},
	{"spinosad_card", Spinosad, "Targets chewing and rasping insects.", 3, 1},
	{"systemic_card", SystemicInsecticide, "Absorbed through the roots.", 4, 1},
	{"panacea_card", Panacea, "Cures anything, once.", 5, 1},
}

type plantCardDef struct {
	typeID string
	name   string
	value  int
}

var plantCards = []plantCardDef{
	{"coleus", "Coleus", 2},
	{"chrysanthemum", "Chrysanthemum", 3},
	{"pepper", "Pepper", 3},
	{"cactus", "Cactus", 1},
	{"fern", "Fern", 2},
}

var afflictionCards = []struct {
	affliction func() *Affliction
	weight     int
}{
	{Aphids, 3},
	{Mealybugs, 2},
	{Thrips, 2},
	{SpiderMites, 2},
	{Mildew, 2},
	{Mold, 1},
}

// Built-in sticker prototypes.
func BuiltinStickers() []*Sticker {
	return []*Sticker{
		{TypeID: "plus_one", Name: "+1", Description: "Adds 1 to the card's value.", Effect: StickerAdd, Value: IntPtr(1)},
		{TypeID: "plus_two", Name: "+2", Description: "Adds 2 to the card's value.", Effect: StickerAdd, Value: IntPtr(2)},
		{TypeID: "double", Name: "x2", Description: "Doubles the card's value.", Effect: StickerMultiply, Value: IntPtr(2)},
	}
}

// AfflictionCardTypeID is the card type that draws the given affliction.
func AfflictionCardTypeID(afflictionID string) string {
	return afflictionID + "_card"
}

// RegisterBuiltins installs every built-in prototype. Call before loading mods.
func RegisterBuiltins(c *Catalog) error {
	var treatments []*Treatment
	for _, def := range treatmentCards {
		t := def.treatment()
		if err := c.RegisterTreatment(t); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
		treatments = append(treatments, t)
	}
	for i, def := range treatmentCards {
		card := &Card{
			TypeID:      def.typeID,
			Kind:        CardAction,
			Name:        treatments[i].Name,
			Description: def.desc,
			Value:       IntPtr(def.value),
			Weight:      def.weight,
			Treatment:   treatments[i],
		}
		if err := c.RegisterCard(card); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
	}

	for _, def := range afflictionCards {
		a := def.affliction()
		if err := c.RegisterAffliction(a); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
		card := &Card{
			TypeID:      AfflictionCardTypeID(a.ID),
			Kind:        CardAffliction,
			Name:        a.Name,
			Description: a.Description,
			Weight:      def.weight,
			Affliction:  a,
		}
		if err := c.RegisterCard(card); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
	}

	for _, def := range plantCards {
		card := &Card{
			TypeID: def.typeID,
			Kind:   CardPlant,
			Name:   def.name,
			Value:  IntPtr(def.value),
			Weight: 1,
		}
		if err := c.RegisterCard(card); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
	}

	for _, s := range BuiltinStickers() {
		if err := c.RegisterSticker(s); err != nil {
			return fmt.Errorf("builtins: %w", err)
		}
	}
	return nil
}

// NewBuiltinCatalog returns a frozen catalog holding only the built-in prototypes.
func NewBuiltinCatalog() (*Catalog, error) {
	c := NewCatalog()
	if err := RegisterBuiltins(c); err != nil {
		return nil, err
	}
	c.Freeze()
	return c, nil
}
