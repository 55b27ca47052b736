package code

// ConfigurationError reports rules that cannot produce a valid code.
// Fatal at game construction; never returned mid-game.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid game configuration: " + e.Reason
}

// Reason classifies why a guess was rejected.
type Reason string

const (
	ReasonWrongLength Reason = "wrong_length"
	ReasonBadSymbol   Reason = "symbol_outside_alphabet"
	ReasonDuplicate   Reason = "duplicate_symbol"
)

// InvalidGuessError reports player input that does not parse into a Code.
// Recoverable: the caller re-prompts without any game state change.
type InvalidGuessError struct {
	Reason Reason
}

func (e *InvalidGuessError) Error() string {
	return "invalid guess: " + string(e.Reason)
}
