package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// DateLayout is the ISO calendar date form used on disk and at the edges.
const DateLayout = "2006-01-02"

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID       int64
		Username string
		Password string // opaque; plain or hashed depending on the auth mode
	}

	// Transaction ids can be handed out again after a restore rewinds the
	// store. Ref never is.
	Transaction struct {
		ID       int64
		Ref      string
		UserID   int64
		Amount   Money
		Category string
		Kind     Kind
		Date     Date
	}

	Budget struct {
		UserID   int64
		Category string
		Limit    Money
	}
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUnknownUser       = errors.New("unknown user")
	ErrNotFound          = errors.New("not found")
	ErrEmptyUsername     = errors.New("empty username")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidLimit      = errors.New("invalid budget limit")
	ErrAmountOverflow    = errors.New("amount total overflows")
	ErrInvalidKind       = errors.New("invalid kind: must be income or expense")
	ErrInvalidDate       = errors.New("invalid date: expected YYYY-MM-DD")
	ErrBackupUnsupported = errors.New("backup not supported by this backend")
)

// ValidationError marks malformed caller input. It unwraps to the sentinel
// describing the problem.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// ParseKind accepts "income" or "expense" in any case, surrounding spaces ignored.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return invalid("kind", ErrInvalidKind)
	}
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, invalid("date", ErrInvalidDate)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return invalid("amount", ErrInvalidAmount)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return invalid("user_id", ErrUnknownUser)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	return t.Date.Validate()
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return invalid("user_id", ErrUnknownUser)
	}
	if strings.TrimSpace(b.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if b.Limit.Cents < 0 || b.Limit.Cents > MaxCents {
		return invalid("limit", ErrInvalidLimit)
	}
	return nil
}

// ValidateUsername rejects blank usernames.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return invalid("username", ErrEmptyUsername)
	}
	return nil
}
