// Package core provides money parsing and handling utilities.
//
// This file contains the amount normalization applied to user input and the
// permissive parsing used when reading amounts back from storage.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts user input into the stored amount representation:
// the absolute value rounded to two fraction digits.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. The sign
// typed by the user is dropped, direction is carried by Kind. Values are read
// with float64 range, so anything that would overflow it is invalid.
//
// Examples:
//
//	NormalizeAmount("12.3")   -> "12.30", nil
//	NormalizeAmount("-12,345") -> "12.35", nil
//	NormalizeAmount("1e400")  -> "", ErrInvalidAmount
//	NormalizeAmount("abc")    -> "", ErrInvalidAmount
func NormalizeAmount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyAmount
	}
	d, ok := parseAmount(strings.ReplaceAll(s, ",", "."))
	if !ok {
		return "", ErrInvalidAmount
	}
	return d.Abs().StringFixed(2), nil
}

// parseStoredAmount reads an amount the way the browser's Number() did: blank
// is zero, anything unparseable or out of float64 range is not a number
// (ok == false).
func parseStoredAmount(s string) (d decimal.Decimal, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	return parseAmount(s)
}

// parseAmount accepts plain decimal notation with an optional exponent. The
// value goes through float64 so the exponent cannot blow up the digit count
// of the result: overflow is rejected, underflow reads as zero.
func parseAmount(s string) (decimal.Decimal, bool) {
	if _, err := decimal.NewFromString(s); err != nil {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}
