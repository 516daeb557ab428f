package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/greenhouse/internal/config"
	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"github.com/peterkuimelis/greenhouse/internal/save"
	"github.com/peterkuimelis/greenhouse/internal/storage"
)

// eventTap records every event and remembers which ones have not been reported yet.
type eventTap struct {
	*log.MemoryLogger
	reported int
}

func newEventTap() *eventTap {
	return &eventTap{MemoryLogger: log.NewMemoryLogger()}
}

// drain returns the events logged since the last drain.
func (t *eventTap) drain() []EventView {
	all := t.Events()
	views := make([]EventView, 0, len(all)-t.reported)
	for _, e := range all[t.reported:] {
		views = append(views, buildEventView(e))
	}
	t.reported = len(all)
	return views
}

// GameSession holds the one game an MCP process serves. Tool calls are serialized
// through mu.
type GameSession struct {
	cfg      config.Config
	catalog  *game.Catalog
	store    *storage.Store
	codec    *save.Codec
	tutorial *game.TutorialScript

	mu      sync.Mutex
	session *game.Session
	tap     *eventTap
}

// NewGameSession prepares a server for catalog. store may be nil, which disables the
// save tools; tutorial may be nil.
func NewGameSession(cfg config.Config, catalog *game.Catalog, store *storage.Store, tutorial *game.TutorialScript) *GameSession {
	return &GameSession{
		cfg:      cfg,
		catalog:  catalog,
		store:    store,
		codec:    save.NewCodec(cfg.Save.MaxBytes, cfg.PersistDiscoveries),
		tutorial: tutorial,
	}
}

// StartOptions choose how a new game is dealt.
type StartOptions struct {
	Seed     int64
	Deck     string // deck name or 1-based number in the decks file; "" for the starter deck
	Tutorial bool
}

// start replaces any running game with a new one.
func (g *GameSession) start(opts StartOptions) error {
	seed := opts.Seed
	if seed == 0 {
		seed = g.cfg.Seed
	}
	sc := game.SessionConfig{
		Catalog: g.catalog,
		Rules:   g.cfg.Rules(),
		Seed:    seed,
	}
	if opts.Deck != "" {
		_, cards, err := game.SelectDeck(g.cfg.DecksFile, opts.Deck, g.catalog)
		if err != nil {
			return fmt.Errorf("load deck %q: %w", opts.Deck, err)
		}
		sc.ActionDeck = cards
	}
	if opts.Tutorial {
		if g.tutorial == nil {
			return fmt.Errorf("no tutorial script configured")
		}
		sc.Tutorial = g.tutorial
	}

	tap := newEventTap()
	sc.Logger = tap
	sess, err := game.NewSession(sc)
	if err != nil {
		return err
	}
	g.session = sess
	g.tap = tap
	return nil
}

// respond builds the envelope for the current session with every unreported event.
func (g *GameSession) respond(result any) *ToolResponse {
	resp := &ToolResponse{Events: []EventView{}, Result: result}
	if g.session != nil {
		resp.Events = g.tap.drain()
		resp.State = BuildStateView(g.session)
	}
	return resp
}

// findHandCard resolves a card instance id to a card in the hand.
func (g *GameSession) findHandCard(id int) (*game.Card, error) {
	for _, c := range g.session.Deck.Hand {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("card %d: %w", id, game.ErrNotInHand)
}

func (g *GameSession) saveSlot(ctx context.Context, name string) (storage.Slot, error) {
	blob, err := g.codec.Save(g.session)
	if err != nil {
		return storage.Slot{}, err
	}
	return g.store.Put(ctx, storage.Slot{
		Name:      name,
		SessionID: g.session.ID,
		Round:     g.session.Round(),
		Turn:      g.session.Turn(),
		Phase:     g.session.Phase().Key(),
		Payload:   blob,
	})
}

func (g *GameSession) loadSlot(ctx context.Context, name string) (storage.Slot, error) {
	var slot storage.Slot
	var err error
	if name == "" {
		slot, err = g.store.Latest(ctx)
	} else {
		slot, err = g.store.Get(ctx, name)
	}
	if err != nil {
		return slot, err
	}
	return slot, g.codec.Load(ctx, g.session, slot.Payload)
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
