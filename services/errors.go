package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Schedule validation, in rule-precedence order.
	ErrInvalidRegistrationStart = errors.New("registration must open after the current date")
	ErrInvalidDuration          = errors.New("registration duration is not one of the offered options")
	ErrInvalidStartDate         = errors.New("tournament must start at least one day after registration closes")
	ErrInvalidEndDate           = errors.New("tournament end date is too close to the start date")
	ErrInvalidStartTime         = errors.New("start time is outside the allowed daily window")
	ErrInsufficientJudges       = errors.New("at least three judges must be assigned")
	ErrNoCategory               = errors.New("at least one category must be assigned")
	ErrDuplicateName            = errors.New("tournament name is already in use")

	// Score validation
	ErrScoreOutOfRange  = errors.New("score must be an integer between 0 and 20")
	ErrJudgeNotAssigned = errors.New("judge is not assigned to this tournament")

	// State errors
	ErrTournamentLocked         = errors.New("tournament can only be edited while upcoming")
	ErrInvalidStatusTransition  = errors.New("invalid tournament status transition")
	ErrCancelReasonRequired     = errors.New("cancelling a tournament requires a reason")
	ErrMatchNotOpen             = errors.New("match is not accepting scores")
	ErrMatchNotCompleted        = errors.New("match is not completed yet")
	ErrMatchNotTied             = errors.New("match is not tied")
	ErrBracketAlreadySeeded     = errors.New("bracket has already been seeded")
	ErrBracketNotSeeded         = errors.New("bracket has not been seeded yet")
	ErrRegistrationNotOpen      = errors.New("tournament registration is not open")
	ErrTournamentFull           = errors.New("tournament bracket is full")
	ErrCategoryMismatch         = errors.New("robot category is not admitted to this tournament")
	ErrJudgeRoleRequired        = errors.New("assigned judge pool contains users without the judge role")
	ErrJudgeUnknown             = errors.New("assigned judge does not exist")
	ErrCategoryUnknown          = errors.New("assigned category does not exist")

	// Authorization
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort       = errors.New("password is too short")
)
