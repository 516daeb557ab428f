package mcp

import (
	"time"

	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"github.com/peterkuimelis/greenhouse/internal/storage"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events []EventView `json:"events"`
	State  *StateView  `json:"state,omitempty"`
	Result any         `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Round   int    `json:"round"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Level   string `json:"level"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Target  int    `json:"target"`
	Details string `json:"details"`
}

// CardView describes one card instance. ID is what play_card and friends take.
type CardView struct {
	ID        int      `json:"id"`
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Value     int      `json:"value"`
	Treatment string   `json:"treatment,omitempty"`
	Stickers  []string `json:"stickers,omitempty"`
}

// AfflictionView is one affliction on a plant.
type AfflictionView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity,omitempty"`
}

// PlantView is one plant on the table.
type PlantView struct {
	Location    int              `json:"location"`
	Name        string           `json:"name"`
	Healthy     bool             `json:"healthy"`
	Afflictions []AfflictionView `json:"afflictions"`
	Treated     []string         `json:"treated_this_turn,omitempty"`
}

// ShopItemView is a card type on sale.
type ShopItemView struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// RetainedView is the card held in the retained slot.
type RetainedView struct {
	Card   CardView `json:"card"`
	Paid   bool     `json:"paid"`
	Locked bool     `json:"locked"`
}

// StateView is the session as the player sees it.
type StateView struct {
	SessionID    string         `json:"session_id"`
	Round        int            `json:"round"`
	Turn         int            `json:"turn"`
	Phase        string         `json:"phase"`
	Next         string         `json:"next_phase"`
	Money        int            `json:"money"`
	Score        int            `json:"score"`
	DeckCount    int            `json:"deck_count"`
	DiscardCount int            `json:"discard_count"`
	Hand         []CardView     `json:"hand"`
	Plants       []PlantView    `json:"plants"`
	Stickers     []string       `json:"stickers,omitempty"`
	Retained     *RetainedView  `json:"retained,omitempty"`
	Shop         []ShopItemView `json:"shop,omitempty"`
}

// SlotView is a stored save without its payload.
type SlotView struct {
	Name      string    `json:"name"`
	Round     int       `json:"round"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	SessionID string    `json:"session_id"`
	SavedAt   time.Time `json:"saved_at"`
}

func buildEventView(e log.GameEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Round:   e.Round,
		Turn:    e.Turn,
		Phase:   e.Phase,
		Level:   e.Level.String(),
		Type:    e.Type.String(),
		Card:    e.Card,
		Target:  e.Target,
		Details: e.Details,
	}
}

func buildCardView(c *game.Card) CardView {
	v := CardView{ID: c.ID, Type: c.TypeID, Name: c.Name, Value: c.EffectiveValue()}
	if c.Treatment != nil {
		v.Treatment = c.Treatment.ID
	}
	for _, s := range c.Stickers {
		v.Stickers = append(v.Stickers, s.Name)
	}
	return v
}

// BuildStateView renders the session for a tool response.
func BuildStateView(s *game.Session) *StateView {
	v := &StateView{
		SessionID:    s.ID,
		Round:        s.Round(),
		Turn:         s.Turn(),
		Phase:        s.Phase().Key(),
		Next:         s.Sequencer.Next().Key(),
		Money:        s.Money,
		Score:        s.Score,
		DeckCount:    len(s.Deck.Deck),
		DiscardCount: len(s.Deck.Discard),
		Hand:         []CardView{},
		Plants:       []PlantView{},
	}
	for _, c := range s.Deck.Hand {
		v.Hand = append(v.Hand, buildCardView(c))
	}
	for _, p := range s.Plants {
		pv := PlantView{
			Location:    p.Loc,
			Name:        p.Card.Name,
			Healthy:     p.Healthy(),
			Afflictions: []AfflictionView{},
			Treated:     p.CurrentTreatments,
		}
		for _, a := range p.Afflictions() {
			av := AfflictionView{ID: a.ID, Name: a.Name, Color: a.Color.Hex()}
			if a.Continuous {
				av.Intensity = p.MoldIntensity
			}
			pv.Afflictions = append(pv.Afflictions, av)
		}
		v.Plants = append(v.Plants, pv)
	}
	for _, st := range s.Stickers {
		v.Stickers = append(v.Stickers, st.Name)
	}
	if r := s.Retained; r != nil {
		v.Retained = &RetainedView{Card: buildCardView(r.Card), Paid: r.Paid, Locked: r.Locked}
	}
	if s.Phase() == game.PhaseShop {
		for _, id := range s.Catalog.CardTypes(game.CardAction) {
			proto, err := s.Catalog.Prototype(id)
			if err != nil {
				continue
			}
			price, _ := s.Price(id)
			v.Shop = append(v.Shop, ShopItemView{Type: id, Name: proto.Name, Price: price})
		}
	}
	return v
}

func buildSlotView(slot storage.Slot) SlotView {
	return SlotView{
		Name:      slot.Name,
		Round:     slot.Round,
		Turn:      slot.Turn,
		Phase:     slot.Phase,
		SessionID: slot.SessionID,
		SavedAt:   slot.CreatedAt,
	}
}
