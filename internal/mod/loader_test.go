package mod

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unfrozenCatalog(t *testing.T) *game.Catalog {
	t.Helper()
	c := game.NewCatalog()
	require.NoError(t, game.RegisterBuiltins(c))
	return c
}

var modFS = fstest.MapFS{
	"pack/copper_spray.card.json": {Data: []byte(`{
		"name": "Copper Spray",
		"description": "Old-fashioned fungicide.",
		"value": 3,
		"weight": 2,
		"effectiveness": {"mildew": 90, "blight": 75},
		"infectCureValue": 2
	}`)},
	"pack/extra_soap.card.json": {Data: []byte(`{
		"id": "extra_soap_card",
		"name": "Extra Soap",
		"value": 1,
		"treatment": "soapy_water"
	}`)},
	"pack/typo.card.json": {Data: []byte(`{"name": "Typo", "valeu": 3}`)},
	"pack/blight.affliction.json": {Data: []byte(`{
		"name": "Blight",
		"description": "Brown lesions on every leaf.",
		"color": "#8b5a2b",
		"vulnerableTreatments": ["copper_spray", "panacea"],
		"fungal": true,
		"intensity": {"min": 0.3, "max": 0.6}
	}`)},
	"pack/ghost.affliction.json": {Data: []byte(`{
		"name": "Ghost",
		"color": "#ffffff",
		"vulnerableTreatments": ["exorcism"]
	}`)},
	"pack/shiny.stickers.yaml": {Data: []byte(`
stickers:
  - id: plus_three
    name: "+3"
    effect: add
    value: 3
  - id: triple
    name: "x3"
    effect: multiply
    value: 3
  - id: broken
    name: "?"
    effect: explode
`)},
	"pack/readme.txt": {Data: []byte("not a mod")},
}

func TestLoadFS(t *testing.T) {
	c := unfrozenCatalog(t)
	logger := log.NewMemoryLogger()

	report, err := NewLoader(c, logger).LoadFS(modFS)
	require.NoError(t, err)

	skipped := map[string]bool{}
	for _, s := range report.Skipped {
		skipped[s.File] = true
	}
	assert.Equal(t, map[string]bool{
		"pack/typo.card.json":        true,
		"pack/ghost.affliction.json": true,
		"pack/shiny.stickers.yaml":   true,
	}, skipped)
	assert.Len(t, logger.EventsOfType(log.EventModSkipped), 3)

	c.Freeze()

	spray, err := c.NewCard("copper_spray_card")
	require.NoError(t, err)
	assert.Equal(t, 3, spray.BaseValue())
	require.NotNil(t, spray.Treatment)
	assert.Equal(t, "copper_spray", spray.Treatment.ID)
	assert.Equal(t, 75, spray.Treatment.BaseEfficacy("blight"))

	soap, err := c.NewCard("extra_soap_card")
	require.NoError(t, err)
	assert.Equal(t, game.TreatmentSoapyWater, soap.Treatment.ID)

	blight, err := c.Affliction("blight")
	require.NoError(t, err)
	assert.Equal(t, game.AfflictionFungal, blight.Kind)
	assert.True(t, blight.Continuous)
	assert.Equal(t, "#8b5a2b", blight.Color.Hex())
	copper, err := c.Treatment("copper_spray")
	require.NoError(t, err)
	assert.True(t, blight.TreatableBy(copper))
	assert.True(t, c.HasCard(game.AfflictionCardTypeID("blight")))

	_, err = c.Affliction("ghost")
	require.ErrorIs(t, err, game.ErrUnknownType)

	_, err = c.NewSticker("plus_three")
	require.NoError(t, err)
	triple, err := c.NewSticker("triple")
	require.NoError(t, err)
	assert.Equal(t, 12, triple.Apply(4))
	_, err = c.NewSticker("broken")
	require.ErrorIs(t, err, game.ErrUnknownType)
}

func TestModCardsJoinStarterDeck(t *testing.T) {
	c := unfrozenCatalog(t)
	before, err := func() (int, error) {
		base := unfrozenCatalog(t)
		base.Freeze()
		deck, err := base.StarterDeck(game.CardAction)
		return len(deck), err
	}()
	require.NoError(t, err)

	_, err = NewLoader(c, nil).LoadFS(modFS)
	require.NoError(t, err)
	c.Freeze()

	deck, err := c.StarterDeck(game.CardAction)
	require.NoError(t, err)
	// copper spray weighs 2, extra soap defaults to 1
	assert.Len(t, deck, before+3)
}

func TestLoadRejectsFrozenCatalog(t *testing.T) {
	c := unfrozenCatalog(t)
	c.Freeze()
	_, err := NewLoader(c, nil).LoadFS(modFS)
	require.ErrorIs(t, err, game.ErrCatalogFrozen)
}

func TestDuplicateDefinitionsAreSkipped(t *testing.T) {
	c := unfrozenCatalog(t)
	fsys := fstest.MapFS{
		"a.card.json":          {Data: []byte(`{"id": "fungicide_card", "name": "Fake", "treatment": "fungicide"}`)},
		"mold.affliction.json": {Data: []byte(`{"name": "Mold again", "color": "#000000"}`)},
		"extra.stickers.yaml":  {Data: []byte("stickers:\n  - id: double\n    name: x2\n")},
		"oops.affliction.json": {Data: []byte(`{"name": "Oops", "color": "teal"}`)},
	}

	report, err := NewLoader(c, nil).LoadFS(fsys)
	require.NoError(t, err)
	assert.Empty(t, report.Loaded)
	assert.Len(t, report.Skipped, 4)
	for _, s := range report.Skipped {
		assert.Error(t, s.Err, s.File)
	}
}

func TestRejectedCardLeavesNoTreatment(t *testing.T) {
	c := unfrozenCatalog(t)
	fsys := fstest.MapFS{
		"sulfur.card.json": {Data: []byte(`{"name": "Sulfur", "value": -2, "effectiveness": {"mildew": 60}}`)},
		"lime.card.json":   {Data: []byte(`{"name": "Lime", "weight": -1, "effectiveness": {"mildew": 40}}`)},
	}

	report, err := NewLoader(c, nil).LoadFS(fsys)
	require.NoError(t, err)
	assert.Empty(t, report.Loaded)
	assert.Len(t, report.Skipped, 2)
	for _, id := range []string{"sulfur", "lime"} {
		assert.False(t, c.HasTreatment(id), id)
		assert.False(t, c.HasCard(id+"_card"), id)
	}
}

func TestIntensityBandAboveOneIsSkipped(t *testing.T) {
	c := unfrozenCatalog(t)
	fsys := fstest.MapFS{
		"rot.affliction.json": {Data: []byte(`{
			"name": "Rot",
			"color": "#553311",
			"vulnerableTreatments": ["fungicide"],
			"intensity": {"min": 0.5, "max": 1.5}
		}`)},
	}

	report, err := NewLoader(c, nil).LoadFS(fsys)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Err.Error(), "intensity band")
	assert.False(t, c.HasCard(game.AfflictionCardTypeID("rot")))
}

func TestLoadDir(t *testing.T) {
	c := unfrozenCatalog(t)
	loader := NewLoader(c, nil)

	report, err := loader.LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, report.Loaded)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "Rose Oil.card.json"),
		[]byte(`{"name": "Rose Oil", "value": 2, "efficacy": 60}`), 0o644))

	report, err = loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, report.Loaded, 2)
	assert.Equal(t, "rose_oil", report.Loaded[0].ID)
	assert.Equal(t, "rose_oil_card", report.Loaded[1].ID)
}

func TestBuildCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "copper.card.json"),
		[]byte(`{"name": "Copper", "value": 2, "efficacy": 50}`), 0o644))

	c, report, err := BuildCatalog(dir, log.NewMemoryLogger())
	require.NoError(t, err)
	assert.True(t, c.Frozen())
	assert.Len(t, report.Loaded, 2)
	assert.True(t, c.HasCard("copper_card"))
	assert.True(t, c.HasCard("soapy_water_card"))
}
