package core

import "github.com/shopspring/decimal"

// NotANumber is reported for a total that includes an unparseable amount.
const NotANumber = "NaN"

// Totals holds the running summaries shown next to the ledger, each already
// formatted with two fraction digits.
type Totals struct {
	Income  string
	Expense string
	Net     string
}

// ZeroTotals is the summary of an empty ledger.
var ZeroTotals = Totals{Income: "0.00", Expense: "0.00", Net: "0.00"}

// sum accumulates amounts and remembers whether any of them was not a number.
type sum struct {
	value decimal.Decimal
	nan   bool
}

func (s *sum) add(amount string) {
	d, ok := parseStoredAmount(amount)
	if !ok {
		s.nan = true
		return
	}
	s.value = s.value.Add(d)
}

func (s sum) format() string {
	if s.nan {
		return NotANumber
	}
	return s.value.StringFixed(2)
}

// ComputeTotals derives income, expense and net from the entries in a single
// pass. The expense total is reported as a magnitude. Net is computed from the
// two-decimal totals, so it always equals Income minus Expense as displayed.
// Entries whose kind is neither Income nor Expense are ignored.
func ComputeTotals(entries []Entry) Totals {
	var income, expense sum
	for _, e := range entries {
		switch e.Kind {
		case Income:
			income.add(e.Amount)
		case Expense:
			expense.add(e.Amount)
		}
	}
	if !expense.nan {
		expense.value = expense.value.Abs()
	}
	income.value = income.value.Round(2)
	expense.value = expense.value.Round(2)

	net := sum{nan: income.nan || expense.nan}
	if !net.nan {
		net.value = income.value.Sub(expense.value)
	}
	return Totals{
		Income:  income.format(),
		Expense: expense.format(),
		Net:     net.format(),
	}
}
