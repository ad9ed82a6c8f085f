package core

import (
	"math/big"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want string // big.Rat.RatString form
	}{
		{"", "0"},
		{"   ", "0"},
		{"2", "2"},
		{"+3", "3"},
		{"3/4", "3/4"},
		{"2/4", "1/2"},
		{"1 1/2", "3/2"},
		{" 2  3/4 ", "11/4"},
		{"-1 1/2", "-1/2"}, // whole part is added as is
		{"1 0.5", "3/2"},
		{"0.5", "1/2"},
		{"1.25", "5/4"},
		{".5", "1/2"},
		{"1.", "1"},
		{"-3/4", "-3/4"},
		{"1/0", "0"},
		{"1 1/0", "0"},
		{"abc", "0"},
		{"x 1/2", "0"},
		{"1 2 3", "0"},
		{"1/2/3", "0"},
		{".", "0"},
		{"0x10", "0"},
		{"1e3", "0"},
		{"1.5 1/2", "0"},
	}
	for _, tc := range cases {
		got := ParseQuantity(tc.in)
		if got.RatString() != tc.want {
			t.Fatalf("ParseQuantity(%q) = %s, want %s", tc.in, got.RatString(), tc.want)
		}
	}
}

func TestParseQuantity_ReturnsFreshValue(t *testing.T) {
	a := ParseQuantity("")
	a.SetInt64(5)
	if b := ParseQuantity(""); b.Sign() != 0 {
		t.Fatalf("zero quantity shared between calls: %s", b.RatString())
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		num, den int64
		want     string
	}{
		{3, 1, "3"},
		{0, 1, "0"},
		{3, 2, "1 1/2"},
		{7, 3, "2 1/3"},
		{10, 4, "2 1/2"},
		{3, 4, "3/4"},
		{1, 3, "1/3"},
		{-3, 2, "-3/2"},
	}
	for _, tc := range cases {
		got := FormatQuantity(big.NewRat(tc.num, tc.den))
		if got != tc.want {
			t.Fatalf("FormatQuantity(%d/%d) = %q, want %q", tc.num, tc.den, got, tc.want)
		}
	}
	if got := FormatQuantity(nil); got != "" {
		t.Fatalf("FormatQuantity(nil) = %q, want empty", got)
	}
}

func TestThirdsSumExactly(t *testing.T) {
	total := new(big.Rat)
	for i := 0; i < 3; i++ {
		total.Add(total, ParseQuantity("1/3"))
	}
	if !total.IsInt() || total.Num().Int64() != 1 {
		t.Fatalf("1/3 + 1/3 + 1/3 = %s, want exactly 1", total.RatString())
	}
}
