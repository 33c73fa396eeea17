package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"120", 12000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyCeilDiv(t *testing.T) {
	cases := []struct {
		cents int64
		n     int64
		want  int64
	}{
		{100, 4, 25},
		{101, 4, 26},
		{5000, 3, 1667},
		{1, 2, 1},
	}
	for _, tc := range cases {
		if got := NewMoney(tc.cents).CeilDiv(tc.n); got.Cents != tc.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", tc.cents, tc.n, got.Cents, tc.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{-50, "-0.50"},
		{0, "0.00"},
		{100000, "1000.00"},
	}
	for _, tc := range cases {
		if got := NewMoney(tc.cents).String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyMin(t *testing.T) {
	a, b := NewMoney(50), NewMoney(120)
	if got := a.Min(b); got != a {
		t.Errorf("Min picked %v, want %v", got, a)
	}
	if got := b.Min(a); got != a {
		t.Errorf("Min picked %v, want %v", got, a)
	}
}
