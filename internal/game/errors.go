package game

import "errors"

var (
	// ErrUnknownType is returned when a type identifier has no registered factory.
	ErrUnknownType = errors.New("unknown type identifier")
	// ErrDuplicateType is returned when a type identifier is registered twice.
	ErrDuplicateType = errors.New("type identifier already registered")
	// ErrCatalogFrozen is returned when registering into a frozen catalog.
	ErrCatalogFrozen = errors.New("catalog is frozen")
	// ErrCatalogNotFrozen is returned when instances are requested before Freeze.
	ErrCatalogNotFrozen = errors.New("catalog is not frozen")

	ErrNotInHand          = errors.New("card is not in hand")
	ErrNotPlaced          = errors.New("card is not placed")
	ErrSlotsFull          = errors.New("no free placement slot")
	ErrBusy               = errors.New("operation in progress")
	ErrWatchdog           = errors.New("sequence watchdog expired")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrNoPlant            = errors.New("no plant at location")
	ErrNoPlantTypes       = errors.New("no plant card types to place")
	ErrNotPlayable        = errors.New("card cannot be played")
	ErrInsufficientFunds  = errors.New("not enough money")
	ErrRetainedSlotInUse  = errors.New("retained card slot is occupied")
	ErrRetainedSlotEmpty  = errors.New("retained card slot is empty")
	ErrRetainedCardLocked = errors.New("retained card is locked")
)
