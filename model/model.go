package model

import "time"

// Outcome classifies the result of a verification event. Every inbound
// event (button press, DM code) resolves to exactly one Outcome, which the
// transport layer translates into a reply to the user.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeAlreadyVerified
	OutcomeEnrollmentStarted
	OutcomeDMForbidden
	OutcomeNotEnrolled
	OutcomeEnrollmentExpired
	OutcomeTooManyAttempts
	OutcomeInvalidCode
	OutcomeVerified
	OutcomeMemberNotFound
	OutcomeLedgerError
	OutcomeInternalError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyVerified:
		return "already_verified"
	case OutcomeEnrollmentStarted:
		return "enrollment_started"
	case OutcomeDMForbidden:
		return "dm_forbidden"
	case OutcomeNotEnrolled:
		return "not_enrolled"
	case OutcomeEnrollmentExpired:
		return "enrollment_expired"
	case OutcomeTooManyAttempts:
		return "too_many_attempts"
	case OutcomeInvalidCode:
		return "invalid_code"
	case OutcomeVerified:
		return "verified"
	case OutcomeMemberNotFound:
		return "member_not_found"
	case OutcomeLedgerError:
		return "ledger_error"
	case OutcomeInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Pending is an in-flight enrollment: the secret the user was sent, when it
// was minted, and how many wrong codes have been submitted against it.
type Pending struct {
	Secret   string
	IssuedAt time.Time
	Attempts int
}
