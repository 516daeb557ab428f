package game

import (
	"context"
	"fmt"
)

// Play is a card the player wants to put on the plant at Location.
type Play struct {
	Card     *Card
	Location int
}

// PlayerController makes the player's decisions when a session is driven automatically.
type PlayerController interface {
	// ChoosePlay picks the next card to play this turn. ok=false ends the turn.
	ChoosePlay(ctx context.Context, s *Session) (play Play, ok bool, err error)

	// ChoosePurchase picks a card type to buy in the shop. ok=false leaves the shop.
	ChoosePurchase(ctx context.Context, s *Session) (typeID string, ok bool, err error)
}

// PlayRounds drives the session through rounds full rounds, asking ctrl for every
// decision. It stops in the shop of the last round.
func (s *Session) PlayRounds(ctx context.Context, ctrl PlayerController, rounds int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch s.Phase() {
		case PhasePlayerTurn:
			if err := s.playTurn(ctx, ctrl); err != nil {
				return err
			}
		case PhaseShop:
			if err := s.shop(ctx, ctrl); err != nil {
				return err
			}
			if s.Round() >= rounds {
				return nil
			}
		}
		if _, err := s.Advance(ctx); err != nil {
			return err
		}
	}
}

func (s *Session) playTurn(ctx context.Context, ctrl PlayerController) error {
	for range s.Rules.HandSize + 1 {
		play, ok, err := ctrl.ChoosePlay(ctx, s)
		if err != nil {
			return fmt.Errorf("choose play: %w", err)
		}
		if !ok {
			return nil
		}
		if _, err := s.PlayCard(play.Card, play.Location); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) shop(ctx context.Context, ctrl PlayerController) error {
	for {
		typeID, ok, err := ctrl.ChoosePurchase(ctx, s)
		if err != nil {
			return fmt.Errorf("choose purchase: %w", err)
		}
		if !ok {
			return nil
		}
		if _, err := s.BuyCard(typeID); err != nil {
			return err
		}
	}
}

// GreedyController plays the hand card with the best expected efficacy on any afflicted
// plant and buys the most valuable action card it can afford.
type GreedyController struct{}

func (GreedyController) ChoosePlay(_ context.Context, s *Session) (Play, bool, error) {
	best, bestEff := Play{}, 0
	for _, card := range s.Deck.Hand {
		if card.Treatment == nil {
			continue
		}
		for _, p := range s.Plants {
			if eff := s.Efficacy.AverageEfficacy(card.Treatment, p); eff > bestEff {
				best, bestEff = Play{Card: card, Location: p.Loc}, eff
			}
		}
	}
	return best, bestEff > 0, nil
}

func (GreedyController) ChoosePurchase(_ context.Context, s *Session) (string, bool, error) {
	choice, bestValue := "", -1
	for _, id := range s.Catalog.CardTypes(CardAction) {
		price, err := s.Price(id)
		if err != nil {
			return "", false, err
		}
		proto, _ := s.Catalog.Prototype(id)
		if price <= s.Money && proto.BaseValue() > bestValue {
			choice, bestValue = id, proto.BaseValue()
		}
	}
	return choice, choice != "", nil
}
