package game

import "errors"

// Validation errors returned by engine operations. State is unchanged when
// any of these is returned.
var (
	ErrNotYourTurn       = errors.New("game: not your turn")
	ErrPlayerNotFound    = errors.New("game: player not found")
	ErrPlayerFolded      = errors.New("game: player has folded")
	ErrInvalidAction     = errors.New("game: invalid action")
	ErrInvalidAmount     = errors.New("game: invalid amount")
	ErrNotEnoughPlayers  = errors.New("game: not enough players")
	ErrHandInProgress    = errors.New("game: hand in progress")
	ErrNoHandInProgress  = errors.New("game: no hand in progress")
	ErrSeatTaken         = errors.New("game: seat is taken")
	ErrSeatOutOfRange    = errors.New("game: seat out of range")
	ErrAlreadySeated     = errors.New("game: player already seated")
	ErrStraddleFailed    = errors.New("game: straddle not available")
	ErrInvalidChoice     = errors.New("game: invalid run-it choice")
	ErrCannotConfirm     = errors.New("game: cannot confirm run-it choice")
	ErrNoRunItPrompt     = errors.New("game: no run-it prompt open")
	ErrHasChips          = errors.New("game: player still has chips")
	ErrSwitchDuringHand  = errors.New("game: cannot switch variant during a hand")
	ErrInvariantViolated = errors.New("game: engine invariant violated")
)
