package save

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *game.Catalog {
	t.Helper()
	c, err := game.NewBuiltinCatalog()
	require.NoError(t, err)
	return c
}

func newSession(t *testing.T, c *game.Catalog, seed int64, deck []*game.Card) (*game.Session, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	s, err := game.NewSession(game.SessionConfig{
		Catalog:    c,
		Logger:     logger,
		Seed:       seed,
		ActionDeck: deck,
		NoShuffle:  true,
	})
	require.NoError(t, err)
	return s, logger
}

func cards(t *testing.T, c *game.Catalog, typeIDs ...string) []*game.Card {
	t.Helper()
	out := make([]*game.Card, 0, len(typeIDs))
	for _, id := range typeIDs {
		card, err := c.NewCard(id)
		require.NoError(t, err)
		out = append(out, card)
	}
	return out
}

func typeIDs(cards []*game.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.TypeID
	}
	return ids
}

// midTurnSession plays into round 1 and leaves stickers, a retained card and a treatment
// history behind.
func midTurnSession(t *testing.T, c *game.Catalog) *game.Session {
	t.Helper()
	ctx := context.Background()
	s, _ := newSession(t, c, 42, nil)
	require.NoError(t, s.Sequencer.AdvanceTo(ctx, game.PhasePlayerTurn))
	require.GreaterOrEqual(t, len(s.Deck.Hand), 3)

	_, err := s.AddSticker("plus_one")
	require.NoError(t, err)
	_, err = s.AddSticker("double")
	require.NoError(t, err)
	require.NoError(t, s.ApplySticker(0, s.Deck.Hand[0]))

	require.NoError(t, s.RetainCard(s.Deck.Hand[1]))
	require.NoError(t, s.LockRetained(true))

	_, err = s.PlayCard(s.Deck.Hand[0], 0)
	require.NoError(t, err)

	aphids, err := c.Affliction(game.AfflictionAphids)
	require.NoError(t, err)
	soap, err := c.Treatment(game.TreatmentSoapyWater)
	require.NoError(t, err)
	s.Efficacy.Efficacy(aphids, soap, true)
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	codec := NewCodec(0, false)

	src := midTurnSession(t, c)
	blob, err := codec.Save(src)
	require.NoError(t, err)

	dst, logger := newSession(t, c, 7, nil)
	require.NoError(t, codec.Load(ctx, dst, blob))

	again, err := codec.Save(dst)
	require.NoError(t, err)
	assert.JSONEq(t, string(blob), string(again))

	assert.Equal(t, src.Round(), dst.Round())
	assert.Equal(t, src.Turn(), dst.Turn())
	assert.Equal(t, game.PhasePlayerTurn, dst.Phase())
	assert.Equal(t, typeIDs(src.Deck.Hand), typeIDs(dst.Deck.Hand))
	require.Len(t, dst.Plants, len(src.Plants))
	for i := range src.Plants {
		assert.Equal(t, src.Plants[i].Loc, dst.Plants[i].Loc)
		assert.Equal(t, src.Plants[i].CurrentTreatments, dst.Plants[i].CurrentTreatments)
	}
	require.NotNil(t, dst.Retained)
	assert.True(t, dst.Retained.Locked)
	assert.Len(t, logger.EventsOfType(log.EventRestore), 1)
}

func TestMoldIntensitySurvivesRoundTrip(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	codec := NewCodec(0, false)

	rules := game.DefaultRules()
	rules.MoldIntensity = game.IntensityBand{Min: 1.2, Max: 1.5}
	src, err := game.NewSession(game.SessionConfig{Catalog: c, Rules: rules, Seed: 3, NoShuffle: true})
	require.NoError(t, err)
	require.NoError(t, src.Sequencer.AdvanceTo(ctx, game.PhasePlayerTurn))

	mold, err := c.Affliction(game.AfflictionMold)
	require.NoError(t, err)
	plant := src.Plants[0]
	if !plant.HasAffliction(mold) {
		plant.AddAffliction(mold, mold.RollIntensity(src.Rand(), rules.MoldIntensity))
	}
	require.Positive(t, plant.MoldIntensity)
	require.LessOrEqual(t, plant.MoldIntensity, 1.0)

	blob, err := codec.Save(src)
	require.NoError(t, err)
	dst, logger := newSession(t, c, 9, nil)
	require.NoError(t, codec.Load(ctx, dst, blob))

	assert.Equal(t, plant.MoldIntensity, dst.Plants[0].MoldIntensity)
	assert.Empty(t, logger.Warnings())
}

func TestSaveDiscardLoad(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	codec := NewCodec(0, false)

	deck := cards(t, c, "soapy_water_card", "neem_oil_card", "fungicide_card", "ladybugs_card", "panacea_card")
	src, _ := newSession(t, c, 42, deck)
	src.Deck.Draw(2)
	src.Deck.DiscardHand()
	discarded := typeIDs(src.Deck.Discard)
	require.Len(t, discarded, 2)

	blob, err := codec.Save(src)
	require.NoError(t, err)

	dst, _ := newSession(t, c, 9, nil)
	require.NoError(t, codec.Load(ctx, dst, blob))

	assert.Equal(t, 5, len(dst.Deck.Deck)+len(dst.Deck.Discard))
	assert.Empty(t, dst.Deck.Hand)
	assert.Equal(t, discarded, typeIDs(dst.Deck.Discard))
}

func TestEncodeCardOverrides(t *testing.T) {
	c := newCatalog(t)
	card, err := c.NewCard("neem_oil_card")
	require.NoError(t, err)
	card.Value = game.IntPtr(9)
	sticker, err := c.NewSticker("plus_two")
	require.NoError(t, err)
	sticker.Name = "Lucky"
	card.Stickers = append(card.Stickers, sticker)

	entry := encodeCard(card)
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"cardTypeIdentifier": "neem_oil_card",
		"value": 9,
		"stickers": [{"stickerTypeIdentifier": "plus_two", "name": "Lucky", "value": 2}]
	}`, string(data))

	rebuilt, err := buildCard(c, entry)
	require.NoError(t, err)
	assert.Equal(t, 11, rebuilt.EffectiveValue())
	assert.Equal(t, "Lucky", rebuilt.Stickers[0].Name)
	assert.NotEqual(t, card.ID, rebuilt.ID)
}

func TestDecodeRejectsBadPayloads(t *testing.T) {
	codec := NewCodec(64, false)

	_, err := codec.Decode(nil)
	require.ErrorIs(t, err, ErrEmptyPayload)
	_, err = codec.Decode([]byte("   \n"))
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = codec.Decode([]byte(`{"version":1,"pad":"` + strings.Repeat("x", 100) + `"}`))
	require.ErrorIs(t, err, ErrPayloadTooLarge)

	_, err = codec.Decode([]byte(`{"version":`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestBuildClampsAndDefaults(t *testing.T) {
	c := newCatalog(t)
	logger := log.NewMemoryLogger()
	journal := game.NewJournal(logger)

	doc := Document{
		Version:   Version,
		TurnData:  TurnData{Round: -3, TurnInRound: 99, Phase: "harvest"},
		ScoreData: ScoreData{Money: -5, Score: 12},
		Plants: []PlantEntry{{
			PlantCard:          CardEntry{CardTypeIdentifier: "fern"},
			LocationIndex:      1,
			CurrentAfflictions: []string{game.AfflictionMold},
			MoldIntensity:      4.5,
		}},
	}

	st, err := Build(doc, c, game.DefaultRules(), journal)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Round)
	assert.Equal(t, game.DefaultRules().TurnsPerRound, st.Turn)
	assert.Equal(t, game.PhasePlacePlants, st.Phase)
	assert.Equal(t, 0, st.Money)
	assert.Equal(t, 12, st.Score)
	require.Len(t, st.Plants, 1)
	assert.Zero(t, st.Plants[0].MoldIntensity)
	assert.Len(t, logger.Warnings(), 5)
}

func TestBuildUnknownIdentifiers(t *testing.T) {
	c := newCatalog(t)
	rules := game.DefaultRules()

	cases := map[string]Document{
		"card": {
			TurnData: TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"},
			DeckData: DeckData{ActionDeck: []CardEntry{{CardTypeIdentifier: "weed_whacker_card"}}},
		},
		"sticker": {
			TurnData: TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"},
			DeckData: DeckData{PlayerStickers: []StickerEntry{{StickerTypeIdentifier: "glitter"}}},
		},
		"affliction": {
			TurnData: TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"},
			Plants: []PlantEntry{{
				PlantCard:          CardEntry{CardTypeIdentifier: "fern"},
				CurrentAfflictions: []string{"blight"},
			}},
		},
		"treatment": {
			TurnData: TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"},
			Plants: []PlantEntry{{
				PlantCard:      CardEntry{CardTypeIdentifier: "fern"},
				UsedTreatments: []string{"prayer"},
			}},
		},
		"retained": {
			TurnData:     TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"},
			RetainedCard: &RetainedEntry{Card: CardEntry{CardTypeIdentifier: "nope"}},
		},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Build(doc, c, rules, nil)
			require.ErrorIs(t, err, game.ErrUnknownType)
		})
	}
}

func TestBuildRejectsBadPlants(t *testing.T) {
	c := newCatalog(t)
	rules := game.DefaultRules()
	base := TurnData{Round: 1, TurnInRound: 1, Phase: "player_turn"}

	_, err := Build(Document{TurnData: base, Plants: []PlantEntry{
		{PlantCard: CardEntry{CardTypeIdentifier: "fern"}, LocationIndex: rules.PlantSlots},
	}}, c, rules, nil)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Build(Document{TurnData: base, Plants: []PlantEntry{
		{PlantCard: CardEntry{CardTypeIdentifier: "fern"}, LocationIndex: 0},
		{PlantCard: CardEntry{CardTypeIdentifier: "cactus"}, LocationIndex: 0},
	}}, c, rules, nil)
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Build(Document{TurnData: base, Plants: []PlantEntry{
		{PlantCard: CardEntry{CardTypeIdentifier: "soapy_water_card"}},
	}}, c, rules, nil)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLoadFailureLeavesSessionUntouched(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	codec := NewCodec(0, false)

	src := midTurnSession(t, c)
	blob, err := codec.Save(src)
	require.NoError(t, err)
	broken := strings.Replace(string(blob), `"fern"`, `"triffid"`, 1)
	broken = strings.Replace(broken, `"coleus"`, `"triffid"`, 1)
	broken = strings.Replace(broken, `"soapy_water_card"`, `"triffid"`, 1)
	require.NotEqual(t, string(blob), broken)

	dst, _ := newSession(t, c, 7, nil)
	before, err := codec.Save(dst)
	require.NoError(t, err)

	require.Error(t, codec.Load(ctx, dst, []byte(broken)))
	after, err := codec.Save(dst)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	require.ErrorIs(t, codec.Load(ctx, dst, nil), ErrEmptyPayload)
}

func TestPersistDiscoveries(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	src := midTurnSession(t, c)
	want := src.Efficacy.Snapshot()
	require.NotEmpty(t, want.Discovered)

	persisting := NewCodec(0, true)
	blob, err := persisting.Save(src)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"efficacyData"`)

	dst, _ := newSession(t, c, 7, nil)
	require.NoError(t, persisting.Load(ctx, dst, blob))
	assert.Equal(t, want, dst.Efficacy.Snapshot())

	// a plain codec drops them on load even when the document has them
	plain := NewCodec(0, false)
	require.NoError(t, plain.Load(ctx, dst, blob))
	assert.Empty(t, dst.Efficacy.Snapshot().Discovered)

	blob, err = plain.Save(src)
	require.NoError(t, err)
	assert.NotContains(t, string(blob), `"efficacyData"`)
}

func TestSaveRejectsOversizedState(t *testing.T) {
	c := newCatalog(t)
	s, _ := newSession(t, c, 42, nil)
	_, err := NewCodec(32, false).Save(s)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}
