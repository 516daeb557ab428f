package game

import (
	"fmt"
	"strconv"
	"strings"
)

// --- Enums ---

type Phase int

const (
	PhaseInit Phase = iota
	PhasePlacePlants
	PhaseDrawAfflictions
	PhaseDrawActionHand
	PhasePlayerTurn
	PhaseEndTurn
	PhaseEndRound
	PhaseShop
)

// Phases lists every defined phase in sequence order.
var Phases = []Phase{
	PhaseInit,
	PhasePlacePlants,
	PhaseDrawAfflictions,
	PhaseDrawActionHand,
	PhasePlayerTurn,
	PhaseEndTurn,
	PhaseEndRound,
	PhaseShop,
}

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "Init"
	case PhasePlacePlants:
		return "Place Plants"
	case PhaseDrawAfflictions:
		return "Draw Afflictions"
	case PhaseDrawActionHand:
		return "Draw Action Hand"
	case PhasePlayerTurn:
		return "Player Turn"
	case PhaseEndTurn:
		return "End Turn"
	case PhaseEndRound:
		return "End Round"
	case PhaseShop:
		return "Shop"
	default:
		return "Unknown"
	}
}

// Key is the stable identifier used in save files.
func (p Phase) Key() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhasePlacePlants:
		return "place_plants"
	case PhaseDrawAfflictions:
		return "draw_afflictions"
	case PhaseDrawActionHand:
		return "draw_action_hand"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseEndTurn:
		return "end_turn"
	case PhaseEndRound:
		return "end_round"
	case PhaseShop:
		return "shop"
	default:
		return ""
	}
}

// ParsePhase resolves a phase key. ok is false for anything outside Phases.
func ParsePhase(key string) (Phase, bool) {
	for _, p := range Phases {
		if p.Key() == key {
			return p, true
		}
	}
	return PhaseInit, false
}

type CardKind int

const (
	CardAction CardKind = iota
	CardPlant
	CardAffliction
)

func (k CardKind) String() string {
	switch k {
	case CardAction:
		return "Action"
	case CardPlant:
		return "Plant"
	case CardAffliction:
		return "Affliction"
	default:
		return "Unknown"
	}
}

type AfflictionKind int

const (
	AfflictionPest AfflictionKind = iota
	AfflictionFungal
	AfflictionCustom
)

func (k AfflictionKind) String() string {
	switch k {
	case AfflictionPest:
		return "Pest"
	case AfflictionFungal:
		return "Fungal"
	default:
		return "Custom"
	}
}

type StickerEffect int

const (
	StickerAdd StickerEffect = iota
	StickerMultiply
)

func (e StickerEffect) String() string {
	if e == StickerMultiply {
		return "multiply"
	}
	return "add"
}

// ParseStickerEffect accepts "add" or "multiply".
func ParseStickerEffect(s string) (StickerEffect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "add":
		return StickerAdd, nil
	case "multiply", "mul":
		return StickerMultiply, nil
	default:
		return StickerAdd, fmt.Errorf("unknown sticker effect %q", s)
	}
}

// Color is display-only but still part of an affliction's identity.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses #rrggbb (the leading # is optional).
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}
