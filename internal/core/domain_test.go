package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Entrada", Income, true},
		{"income", Income, true},
		{" INCOME ", Income, true},
		{"Saida", Expense, true},
		{"saída", Expense, true},
		{"Expense", Expense, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestKindLabel(t *testing.T) {
	if Income.Label() != "Income" || Expense.Label() != "Expense" {
		t.Fatalf("unexpected labels: %q %q", Income.Label(), Expense.Label())
	}
	if Kind("Other").Label() != "Other" {
		t.Fatalf("unknown kind should label as itself")
	}
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("Coffee", "-3.5", Expense)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Amount != "3.50" || e.Kind != Expense || e.Description != "Coffee" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	bads := []struct {
		desc, amount string
		kind         Kind
		want         error
	}{
		{"", "1", Income, ErrEmptyDescription},
		{"  ", "1", Income, ErrEmptyDescription},
		{"a", "", Income, ErrEmptyAmount},
		{"a", "abc", Income, ErrInvalidAmount},
		{"a", "1", Kind(""), ErrInvalidKind},
	}
	for i, tc := range bads {
		if _, err := NewEntry(tc.desc, tc.amount, tc.kind); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{Description: "Salary", Amount: "100.00", Kind: Income}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Entry{
		{Description: "", Amount: "1.00", Kind: Income},
		{Description: "a", Amount: "", Kind: Income},
		{Description: "a", Amount: "1.00", Kind: "x"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEntryJSONShape(t *testing.T) {
	b, err := json.Marshal(Entry{ID: "id-1", Description: "Coffee", Amount: "3.50", Kind: Expense})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"desc":"Coffee","amount":"3.50","type":"Saida"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
