package core

import "testing"

func TestComputeTotalsEmpty(t *testing.T) {
	if got := ComputeTotals(nil); got != ZeroTotals {
		t.Fatalf("nil ledger: got %+v", got)
	}
	if got := ComputeTotals([]Entry{}); got != ZeroTotals {
		t.Fatalf("empty ledger: got %+v", got)
	}
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    Totals
	}{
		{
			name: "mixed",
			entries: []Entry{
				{Description: "Salary", Amount: "100.00", Kind: Income},
				{Description: "Rent", Amount: "30.50", Kind: Expense},
				{Description: "Tip", Amount: "0.25", Kind: Income},
			},
			want: Totals{Income: "100.25", Expense: "30.50", Net: "69.75"},
		},
		{
			name:    "expenses only",
			entries: []Entry{{Description: "Coffee", Amount: "3.50", Kind: Expense}},
			want:    Totals{Income: "0.00", Expense: "3.50", Net: "-3.50"},
		},
		{
			name: "stored negative expense reported as magnitude",
			entries: []Entry{
				{Description: "a", Amount: "-5.00", Kind: Expense},
			},
			want: Totals{Income: "0.00", Expense: "5.00", Net: "-5.00"},
		},
		{
			name: "blank amount counts as zero",
			entries: []Entry{
				{Description: "a", Amount: "", Kind: Income},
				{Description: "b", Amount: "2.00", Kind: Income},
			},
			want: Totals{Income: "2.00", Expense: "0.00", Net: "2.00"},
		},
		{
			name: "unknown kind ignored",
			entries: []Entry{
				{Description: "a", Amount: "9.00", Kind: "Transfer"},
				{Description: "b", Amount: "1.00", Kind: Expense},
			},
			want: Totals{Income: "0.00", Expense: "1.00", Net: "-1.00"},
		},
		{
			name: "malformed income propagates NaN",
			entries: []Entry{
				{Description: "a", Amount: "abc", Kind: Income},
				{Description: "b", Amount: "1.00", Kind: Expense},
			},
			want: Totals{Income: NotANumber, Expense: "1.00", Net: NotANumber},
		},
		{
			name: "malformed expense propagates NaN",
			entries: []Entry{
				{Description: "a", Amount: "4.00", Kind: Income},
				{Description: "b", Amount: "NaN", Kind: Expense},
			},
			want: Totals{Income: "4.00", Expense: NotANumber, Net: NotANumber},
		},
		{
			name: "stored amount beyond float range is not a number",
			entries: []Entry{
				{Description: "a", Amount: "1e5000000", Kind: Income},
				{Description: "b", Amount: "1.00", Kind: Expense},
			},
			want: Totals{Income: NotANumber, Expense: "1.00", Net: NotANumber},
		},
		{
			name: "stored exponent notation",
			entries: []Entry{
				{Description: "a", Amount: "1e2", Kind: Income},
			},
			want: Totals{Income: "100.00", Expense: "0.00", Net: "100.00"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeTotals(tc.entries); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	entries := []Entry{
		{Description: "a", Amount: "0.10", Kind: Income},
		{Description: "b", Amount: "0.20", Kind: Income},
		{Description: "c", Amount: "7.33", Kind: Expense},
		{Description: "d", Amount: "1.01", Kind: Expense},
	}
	want := ComputeTotals(entries)
	if want.Income != "0.30" || want.Expense != "8.34" || want.Net != "-8.04" {
		t.Fatalf("unexpected totals: %+v", want)
	}

	// Every rotation and the reversal yield the same totals.
	for shift := 1; shift < len(entries); shift++ {
		rotated := append(append([]Entry{}, entries[shift:]...), entries[:shift]...)
		if got := ComputeTotals(rotated); got != want {
			t.Fatalf("rotation %d: got %+v, want %+v", shift, got, want)
		}
	}
	reversed := make([]Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	if got := ComputeTotals(reversed); got != want {
		t.Fatalf("reversed: got %+v, want %+v", got, want)
	}
}
