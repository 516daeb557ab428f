package game

import "github.com/peterkuimelis/greenhouse/internal/log"

// Journal stamps events with the sequencer's position before forwarding them.
// A nil Journal, or one without a Logger, drops everything.
type Journal struct {
	Logger log.EventLogger
	Round  int
	Turn   int
	Phase  Phase
}

// NewJournal wraps logger. A nil logger gets an in-memory one.
func NewJournal(logger log.EventLogger) *Journal {
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	return &Journal{Logger: logger}
}

func (j *Journal) Log(event log.GameEvent) {
	if j == nil || j.Logger == nil {
		return
	}
	event.Round = j.Round
	event.Turn = j.Turn
	event.Phase = j.Phase.String()
	j.Logger.Log(event)
}

// Warn logs a free-form warning.
func (j *Journal) Warn(format string, args ...any) {
	j.Log(log.NewWarningEvent(format, args...))
}
