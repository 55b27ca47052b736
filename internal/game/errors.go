package game

// GameOverError is returned when a guess is submitted after the game reached
// a terminal state. Carries the final state so callers can render it.
type GameOverError struct {
	State State
}

func (e *GameOverError) Error() string {
	return "game is over: " + string(e.State)
}

// GameInProgressError is returned when the secret is requested before the
// game has ended.
type GameInProgressError struct{}

func (e *GameInProgressError) Error() string {
	return "game is still in progress"
}
