package core

import (
	"errors"
	"strings"
)

// Persisted kind values. The storage format predates this program and keeps
// the Portuguese words.
const (
	Income  Kind = "Entrada"
	Expense Kind = "Saida"
)

type (
	// Kind is the direction of an entry.
	Kind string

	// Entry is one income or expense record. The JSON shape is the one kept
	// in the persisted slot: {"desc":..., "amount":..., "type":...}.
	Entry struct {
		ID          string `json:"-"` // process-local, never persisted
		Description string `json:"desc"`
		Amount      string `json:"amount"` // non-negative, two fraction digits
		Kind        Kind   `json:"type"`
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyAmount      = errors.New("empty amount")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
)

// ParseKind accepts the persisted values and the English labels, case
// insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entrada", "income", "in", "+":
		return Income, nil
	case "saida", "saída", "expense", "out", "-":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

// Label returns the English name of the kind.
func (k Kind) Label() string {
	switch k {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return string(k)
	}
}

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// NewEntry builds an entry from raw user input. The amount is normalized to
// its two-decimal magnitude.
func NewEntry(description, amount string, kind Kind) (Entry, error) {
	if strings.TrimSpace(description) == "" {
		return Entry{}, ErrEmptyDescription
	}
	if !kind.IsValid() {
		return Entry{}, ErrInvalidKind
	}
	normalized, err := NormalizeAmount(amount)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Description: description,
		Amount:      normalized,
		Kind:        kind,
	}, nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(e.Amount) == "" {
		return ErrEmptyAmount
	}
	if !e.Kind.IsValid() {
		return ErrInvalidKind
	}
	return nil
}
