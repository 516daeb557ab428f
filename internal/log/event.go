package log

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewRound
	EventNewTurn
	EventShuffle
	EventRecycle
	EventDraw
	EventInsufficientSupply
	EventDiscard
	EventHandTrimmed
	EventPlace
	EventRedrawRefused
	EventPlantPlaced
	EventPlantsCleared
	EventAfflictionAssigned
	EventAfflictionSkipped
	EventTreatmentApplied
	EventCured
	EventDiscovered
	EventResistance
	EventRoundScored
	EventPurchase
	EventStickerApplied
	EventRetain
	EventRestore
	EventModLoaded
	EventModSkipped
	EventWatchdog
	EventWarning
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewRound:
		return "NewRound"
	case EventNewTurn:
		return "NewTurn"
	case EventShuffle:
		return "Shuffle"
	case EventRecycle:
		return "Recycle"
	case EventDraw:
		return "Draw"
	case EventInsufficientSupply:
		return "InsufficientSupply"
	case EventDiscard:
		return "Discard"
	case EventHandTrimmed:
		return "HandTrimmed"
	case EventPlace:
		return "Place"
	case EventRedrawRefused:
		return "RedrawRefused"
	case EventPlantPlaced:
		return "PlantPlaced"
	case EventPlantsCleared:
		return "PlantsCleared"
	case EventAfflictionAssigned:
		return "AfflictionAssigned"
	case EventAfflictionSkipped:
		return "AfflictionSkipped"
	case EventTreatmentApplied:
		return "TreatmentApplied"
	case EventCured:
		return "Cured"
	case EventDiscovered:
		return "Discovered"
	case EventResistance:
		return "Resistance"
	case EventRoundScored:
		return "RoundScored"
	case EventPurchase:
		return "Purchase"
	case EventStickerApplied:
		return "StickerApplied"
	case EventRetain:
		return "Retain"
	case EventRestore:
		return "Restore"
	case EventModLoaded:
		return "ModLoaded"
	case EventModSkipped:
		return "ModSkipped"
	case EventWatchdog:
		return "Watchdog"
	case EventWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Level separates routine events from recoverable problems.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

func (l Level) String() string {
	if l == LevelWarn {
		return "WARN"
	}
	return "INFO"
}

// GameEvent represents a single observable event in a session.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Round   int       // 1-based round
	Turn    int       // 1-based turn within the round
	Phase   string    // sequencer phase name
	Level   Level     // info or warning
	Type    EventType // event type
	Card    string    // card or affliction name (if applicable)
	Target  int       // plant location index, -1 when not applicable
	Details string    // human-readable detail string
}
