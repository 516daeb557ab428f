package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Warnings returns every event logged at LevelWarn.
func (l *MemoryLogger) Warnings() []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Level == LevelWarn {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// Drain returns the buffered events and clears the buffer. Sequence numbers keep counting.
func (l *MemoryLogger) Drain() []GameEvent {
	events := l.events
	l.events = nil
	return events
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// Discard is an EventLogger that drops everything.
type Discard struct{}

func (Discard) Log(GameEvent)       {}
func (Discard) Events() []GameEvent { return nil }

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 16 chars for alignment
	for len(phase) < 16 {
		phase += " "
	}
	marker := ""
	if e.Level == LevelWarn {
		marker = "WARN "
	}
	return fmt.Sprintf("R%-2d T%-2d %s| %s%s", e.Round, e.Turn, phase, marker, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---
// Round, Turn and Phase are stamped by the emitter.

func NewPhaseChangeEvent(phase string) GameEvent {
	return GameEvent{Type: EventPhaseChange, Target: -1, Details: fmt.Sprintf("Phase → %s", phase)}
}

func NewRoundEvent(round int) GameEvent {
	return GameEvent{Type: EventNewRound, Target: -1, Details: fmt.Sprintf("=== Round %d ===", round)}
}

func NewTurnEvent(round, turn int) GameEvent {
	return GameEvent{Type: EventNewTurn, Target: -1, Details: fmt.Sprintf("--- Round %d, turn %d ---", round, turn)}
}

func NewShuffleEvent(pile string, size int) GameEvent {
	return GameEvent{Type: EventShuffle, Target: -1, Details: fmt.Sprintf("%s shuffled (%d cards)", pile, size)}
}

func NewRecycleEvent(pile string, size int) GameEvent {
	return GameEvent{Type: EventRecycle, Target: -1, Details: fmt.Sprintf("%s discard pile (%d cards) recycled into the deck", pile, size)}
}

func NewDrawEvent(pile, cardName string) GameEvent {
	return GameEvent{Type: EventDraw, Card: cardName, Target: -1, Details: fmt.Sprintf("draws %s from %s deck", cardName, pile)}
}

func NewInsufficientSupplyEvent(pile string, wanted, drawn int) GameEvent {
	return GameEvent{
		Type:    EventInsufficientSupply,
		Level:   LevelWarn,
		Target:  -1,
		Details: fmt.Sprintf("%s supply exhausted: wanted %d cards, drew %d", pile, wanted, drawn),
	}
}

func NewDiscardEvent(cardName string, toPile bool) GameEvent {
	where := "discard pile"
	if !toPile {
		where = "nowhere (removed)"
	}
	return GameEvent{Type: EventDiscard, Card: cardName, Target: -1, Details: fmt.Sprintf("%s discarded to %s", cardName, where)}
}

func NewHandTrimmedEvent(cardName string, limit int) GameEvent {
	return GameEvent{
		Type:    EventHandTrimmed,
		Level:   LevelWarn,
		Card:    cardName,
		Target:  -1,
		Details: fmt.Sprintf("hand over limit %d, trimmed %s", limit, cardName),
	}
}

func NewPlaceEvent(cardName string, slot int) GameEvent {
	return GameEvent{Type: EventPlace, Card: cardName, Target: -1, Details: fmt.Sprintf("%s placed in slot %d", cardName, slot+1)}
}

func NewRedrawRefusedEvent(reason string) GameEvent {
	return GameEvent{Type: EventRedrawRefused, Level: LevelWarn, Target: -1, Details: fmt.Sprintf("redraw refused: %s", reason)}
}

func NewPlantPlacedEvent(plantName string, location int) GameEvent {
	return GameEvent{Type: EventPlantPlaced, Card: plantName, Target: location, Details: fmt.Sprintf("%s planted at location %d", plantName, location)}
}

func NewPlantsClearedEvent(count int) GameEvent {
	return GameEvent{Type: EventPlantsCleared, Target: -1, Details: fmt.Sprintf("%d plants cleared", count)}
}

func NewAfflictionAssignedEvent(affliction string, location int, intensity float64) GameEvent {
	details := fmt.Sprintf("%s afflicts plant %d", affliction, location)
	if intensity > 0 {
		details = fmt.Sprintf("%s afflicts plant %d (intensity %.2f)", affliction, location, intensity)
	}
	return GameEvent{Type: EventAfflictionAssigned, Card: affliction, Target: location, Details: details}
}

func NewAfflictionSkippedEvent(affliction string, location int) GameEvent {
	return GameEvent{
		Type:    EventAfflictionSkipped,
		Card:    affliction,
		Target:  location,
		Details: fmt.Sprintf("plant %d already has %s, assignment skipped", location, affliction),
	}
}

func NewTreatmentAppliedEvent(treatment string, location int) GameEvent {
	return GameEvent{Type: EventTreatmentApplied, Card: treatment, Target: location, Details: fmt.Sprintf("%s applied to plant %d", treatment, location)}
}

func NewCuredEvent(affliction string, location int, efficacy int) GameEvent {
	return GameEvent{
		Type:    EventCured,
		Card:    affliction,
		Target:  location,
		Details: fmt.Sprintf("%s cured on plant %d (efficacy %d%%)", affliction, location, efficacy),
	}
}

func NewDiscoveredEvent(treatment, affliction string, efficacy int) GameEvent {
	return GameEvent{
		Type:    EventDiscovered,
		Card:    treatment,
		Target:  -1,
		Details: fmt.Sprintf("discovered %s vs %s: %d%%", treatment, affliction, efficacy),
	}
}

func NewResistanceEvent(affliction, treatment string, oldEff, newEff int) GameEvent {
	return GameEvent{
		Type:    EventResistance,
		Card:    affliction,
		Target:  -1,
		Details: fmt.Sprintf("%s resists %s: %d%% → %d%%", affliction, treatment, oldEff, newEff),
	}
}

func NewRoundScoredEvent(round, score, total int) GameEvent {
	return GameEvent{Type: EventRoundScored, Target: -1, Details: fmt.Sprintf("round %d scored %d (total %d)", round, score, total)}
}

func NewPurchaseEvent(cardName string, price, money int) GameEvent {
	return GameEvent{Type: EventPurchase, Card: cardName, Target: -1, Details: fmt.Sprintf("bought %s for %d (money left %d)", cardName, price, money)}
}

func NewStickerAppliedEvent(sticker, cardName string) GameEvent {
	return GameEvent{Type: EventStickerApplied, Card: cardName, Target: -1, Details: fmt.Sprintf("%s stuck on %s", sticker, cardName)}
}

func NewRetainEvent(cardName string, retained bool) GameEvent {
	verb := "released"
	if retained {
		verb = "retained"
	}
	return GameEvent{Type: EventRetain, Card: cardName, Target: -1, Details: fmt.Sprintf("%s %s", cardName, verb)}
}

func NewRestoreEvent(details string) GameEvent {
	return GameEvent{Type: EventRestore, Target: -1, Details: details}
}

func NewModLoadedEvent(file, name string) GameEvent {
	return GameEvent{Type: EventModLoaded, Card: name, Target: -1, Details: fmt.Sprintf("mod %s registered %s", file, name)}
}

func NewModSkippedEvent(file string, err error) GameEvent {
	return GameEvent{Type: EventModSkipped, Level: LevelWarn, Target: -1, Details: fmt.Sprintf("mod %s skipped: %v", file, err)}
}

func NewWatchdogEvent(steps int) GameEvent {
	return GameEvent{
		Type:    EventWatchdog,
		Level:   LevelWarn,
		Target:  -1,
		Details: fmt.Sprintf("sequence did not finish after %d steps, busy flag force-cleared", steps),
	}
}

// NewWarningEvent wraps a free-form recoverable problem.
func NewWarningEvent(format string, args ...any) GameEvent {
	return GameEvent{Type: EventWarning, Level: LevelWarn, Target: -1, Details: fmt.Sprintf(format, args...)}
}
