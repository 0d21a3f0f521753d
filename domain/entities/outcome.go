package entities

// GuessOutcome is the result of settling a guess
type GuessOutcome string

const (
	OutcomeWon               GuessOutcome = "won"
	OutcomeIncorrect         GuessOutcome = "incorrect"
	OutcomeTooLate           GuessOutcome = "too_late"
	OutcomeExhausted         GuessOutcome = "exhausted"
	OutcomeAlreadyGuessed    GuessOutcome = "already_guessed"
	OutcomeInsufficientFunds GuessOutcome = "insufficient_funds"
	OutcomeNotFound          GuessOutcome = "not_found"
	OutcomeNoAttemptsLeft    GuessOutcome = "no_attempts_left"
	OutcomeSelfGuess         GuessOutcome = "self_guess"
)

// ErrorKind classifies why a guess was not a plain success or failure
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindEconomic        ErrorKind = "economic"
	ErrorKindConcurrencyLoss ErrorKind = "concurrency_loss"
	ErrorKindNotFound        ErrorKind = "not_found"
)

// Kind maps an outcome onto the error taxonomy
func (o GuessOutcome) Kind() ErrorKind {
	switch o {
	case OutcomeSelfGuess:
		return ErrorKindValidation
	case OutcomeInsufficientFunds:
		return ErrorKindEconomic
	case OutcomeAlreadyGuessed, OutcomeTooLate, OutcomeNoAttemptsLeft:
		return ErrorKindConcurrencyLoss
	case OutcomeNotFound:
		return ErrorKindNotFound
	default:
		return ErrorKindNone
	}
}

// Accepted reports whether the guess was recorded against the veil
func (o GuessOutcome) Accepted() bool {
	switch o {
	case OutcomeWon, OutcomeIncorrect, OutcomeExhausted, OutcomeTooLate:
		return true
	default:
		return false
	}
}

// ChangesVeil reports whether the public veil message needs a refresh
func (o GuessOutcome) ChangesVeil() bool {
	return o.Accepted()
}
