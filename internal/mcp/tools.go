package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/greenhouse/internal/game"
)

// RegisterTools adds all game tools to the MCP server.
func (g *GameSession) RegisterTools(s *server.MCPServer) {
	s.AddTool(startSessionTool(), g.handleStartSession)
	s.AddTool(getStateTool(), g.handleGetState)
	s.AddTool(advanceTool(), g.handleAdvance)
	s.AddTool(playCardTool(), g.handlePlayCard)
	s.AddTool(previewCardTool(), g.handlePreviewCard)
	s.AddTool(redrawTool(), g.handleRedraw)
	s.AddTool(buyCardTool(), g.handleBuyCard)
	s.AddTool(applyStickerTool(), g.handleApplySticker)
	s.AddTool(retainCardTool(), g.handleRetainCard)
	s.AddTool(autoPlayTool(), g.handleAutoPlay)
	if g.store != nil {
		s.AddTool(saveGameTool(), g.handleSaveGame)
		s.AddTool(loadGameTool(), g.handleLoadGame)
		s.AddTool(listSavesTool(), g.handleListSaves)
		s.AddTool(deleteSaveTool(), g.handleDeleteSave)
	}
}

// --- Tool definitions ---

func startSessionTool() mcp.Tool {
	return mcp.NewTool("start_session",
		mcp.WithDescription("Start a new greenhouse game, replacing any game in progress. "+
			"The game begins in the init phase; call advance to place plants and deal."),
		mcp.WithNumber("seed", mcp.Description("Random seed. 0 or omitted uses the configured seed, or a random one.")),
		mcp.WithString("deck", mcp.Description("Action deck from the decks file, by name or 1-based number. Omit for the starter deck.")),
		mcp.WithBoolean("tutorial", mcp.Description("Play the scripted tutorial instead of random draws.")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current game state and any events since the last call. Read-only."),
	)
}

func advanceTool() mcp.Tool {
	return mcp.NewTool("advance",
		mcp.WithDescription("Advance the turn sequencer. With no target, moves one phase forward. "+
			"Phases: place_plants, draw_afflictions, draw_action_hand, player_turn, end_turn, end_round, shop."),
		mcp.WithString("to", mcp.Description("Phase to advance to, e.g. 'player_turn' or 'shop'.")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Play a treatment card from the hand onto a plant. Only during player_turn."),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Card id from the hand")),
		mcp.WithNumber("location", mcp.Required(), mcp.Description("Plant location index")),
	)
}

func previewCardTool() mcp.Tool {
	return mcp.NewTool("preview_card",
		mcp.WithDescription("Show the expected efficacy of a hand card on a plant without playing it. "+
			"Undiscovered combinations show as '?'."),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Card id from the hand")),
		mcp.WithNumber("location", mcp.Required(), mcp.Description("Plant location index")),
	)
}

func redrawTool() mcp.Tool {
	return mcp.NewTool("redraw",
		mcp.WithDescription("Discard the hand and draw a fresh one. Refused while a card is placed or nothing is left to draw."),
	)
}

func buyCardTool() mcp.Tool {
	return mcp.NewTool("buy_card",
		mcp.WithDescription("Buy a card in the shop. It joins the discard pile."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Card type from the shop list, e.g. 'neem_oil_card'")),
	)
}

func applyStickerTool() mcp.Tool {
	return mcp.NewTool("apply_sticker",
		mcp.WithDescription("Stick an inventory sticker onto an owned card."),
		mcp.WithNumber("sticker", mcp.Required(), mcp.Description("0-based index into the sticker inventory")),
		mcp.WithNumber("card_id", mcp.Required(), mcp.Description("Id of an owned card")),
	)
}

func retainCardTool() mcp.Tool {
	return mcp.NewTool("retain_card",
		mcp.WithDescription("Manage the retained card slot."),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("retain", "pay", "lock", "unlock", "release"),
			mcp.Description("retain a hand card, pay to keep it, lock or unlock it, or release it to the hand")),
		mcp.WithNumber("card_id", mcp.Description("Hand card id, for 'retain'")),
	)
}

func autoPlayTool() mcp.Tool {
	return mcp.NewTool("auto_play",
		mcp.WithDescription("Let the built-in greedy player finish rounds, stopping in the shop of the last one."),
		mcp.WithNumber("rounds", mcp.Required(), mcp.Description("Play until the shop of this round")),
	)
}

func saveGameTool() mcp.Tool {
	return mcp.NewTool("save_game",
		mcp.WithDescription("Save the game under a slot name, replacing any save with that name."),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name")),
	)
}

func loadGameTool() mcp.Tool {
	return mcp.NewTool("load_game",
		mcp.WithDescription("Load a saved game. Omit the slot to load the most recent save."),
		mcp.WithString("slot", mcp.Description("Slot name")),
	)
}

func listSavesTool() mcp.Tool {
	return mcp.NewTool("list_saves",
		mcp.WithDescription("List saved games, newest first."),
	)
}

func deleteSaveTool() mcp.Tool {
	return mcp.NewTool("delete_save",
		mcp.WithDescription("Delete a saved game."),
		mcp.WithString("slot", mcp.Required(), mcp.Description("Slot name")),
	)
}

// --- Tool handlers ---

var errNoGame = errors.New("no game is running, use start_session first")

func (g *GameSession) handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	opts := StartOptions{
		Seed:     int64(request.GetInt("seed", 0)),
		Deck:     request.GetString("deck", ""),
		Tutorial: request.GetBool("tutorial", false),
	}
	if err := g.start(opts); err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	return g.result(nil)
}

func (g *GameSession) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}
	return g.result(nil)
}

func (g *GameSession) handleAdvance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	target := request.GetString("to", "")
	if target == "" {
		if _, err := g.session.Advance(ctx); err != nil {
			return g.failure(err)
		}
		return g.result(nil)
	}
	phase, ok := game.ParsePhase(target)
	if !ok || phase == game.PhaseInit {
		return mcp.NewToolResultErrorf("Unknown phase %q.", target), nil
	}
	if err := g.session.Sequencer.AdvanceTo(ctx, phase); err != nil {
		return g.failure(err)
	}
	return g.result(nil)
}

// PlayView reports a played card.
type PlayView struct {
	Card  CardView   `json:"card"`
	Rolls []RollView `json:"rolls"`
}

type RollView struct {
	Affliction string `json:"affliction"`
	Efficacy   string `json:"efficacy"`
	Cured      bool   `json:"cured"`
}

func (g *GameSession) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	card, err := g.findHandCard(request.GetInt("card_id", -1))
	if err != nil {
		return g.failure(err)
	}
	res, err := g.session.PlayCard(card, request.GetInt("location", -1))
	if err != nil {
		return g.failure(err)
	}
	view := PlayView{Card: buildCardView(card), Rolls: []RollView{}}
	for _, r := range res.Rolls {
		aff, _ := g.catalog.Affliction(r.Affliction)
		view.Rolls = append(view.Rolls, RollView{
			Affliction: r.Affliction,
			Efficacy:   g.session.Efficacy.DisplayEfficacy(card.Treatment, aff, r.Efficacy),
			Cured:      r.Cured,
		})
	}
	return g.result(view)
}

func (g *GameSession) handlePreviewCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	card, err := g.findHandCard(request.GetInt("card_id", -1))
	if err != nil {
		return g.failure(err)
	}
	pv, err := g.session.PreviewCard(card, request.GetInt("location", -1))
	if err != nil {
		return g.failure(err)
	}
	return g.result(pv)
}

func (g *GameSession) handleRedraw(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}
	return g.result(map[string]bool{"redrawn": g.session.Deck.Redraw()})
}

func (g *GameSession) handleBuyCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	card, err := g.session.BuyCard(request.GetString("type", ""))
	if err != nil {
		return g.failure(err)
	}
	return g.result(buildCardView(card))
}

func (g *GameSession) handleApplySticker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	card, ok := g.session.FindCard(request.GetInt("card_id", -1))
	if !ok {
		return mcp.NewToolResultError("No such card."), nil
	}
	if err := g.session.ApplySticker(request.GetInt("sticker", -1), card); err != nil {
		return g.failure(err)
	}
	return g.result(buildCardView(card))
}

func (g *GameSession) handleRetainCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	var err error
	switch action := request.GetString("action", ""); action {
	case "retain":
		var card *game.Card
		if card, err = g.findHandCard(request.GetInt("card_id", -1)); err == nil {
			err = g.session.RetainCard(card)
		}
	case "pay":
		err = g.session.PayRetained()
	case "lock":
		err = g.session.LockRetained(true)
	case "unlock":
		err = g.session.LockRetained(false)
	case "release":
		err = g.session.ReleaseRetained()
	default:
		return mcp.NewToolResultErrorf("Unknown action %q.", action), nil
	}
	if err != nil {
		return g.failure(err)
	}
	return g.result(nil)
}

func (g *GameSession) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	rounds := request.GetInt("rounds", 0)
	if rounds < g.session.Round() || rounds < 1 {
		return mcp.NewToolResultErrorf("rounds must be at least the current round (%d).", max(g.session.Round(), 1)), nil
	}
	if err := g.session.PlayRounds(ctx, game.GreedyController{}, rounds); err != nil {
		return g.failure(err)
	}
	return g.result(nil)
}

func (g *GameSession) handleSaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return mcp.NewToolResultError(errNoGame.Error()), nil
	}

	slot, err := g.saveSlot(ctx, request.GetString("slot", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Save failed: %v", err), nil
	}
	return g.result(buildSlotView(slot))
}

func (g *GameSession) handleLoadGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		if err := g.start(StartOptions{}); err != nil {
			return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
		}
	}

	slot, err := g.loadSlot(ctx, request.GetString("slot", ""))
	if err != nil {
		return g.failure(fmt.Errorf("load failed: %w", err))
	}
	return g.result(buildSlotView(slot))
}

func (g *GameSession) handleListSaves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	slots, err := g.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("List failed: %v", err), nil
	}
	views := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		views = append(views, buildSlotView(s))
	}
	return g.result(views)
}

func (g *GameSession) handleDeleteSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Delete(ctx, request.GetString("slot", "")); err != nil {
		return mcp.NewToolResultErrorf("Delete failed: %v", err), nil
	}
	return g.result(nil)
}

func (g *GameSession) result(v any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(respondJSON(g.respond(v))), nil
}

// failure reports a refused action. Events logged on the way (warnings included) are
// left for the next response.
func (g *GameSession) failure(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
