package core

import (
	"testing"
	"time"
)

func TestFrequencyValidate(t *testing.T) {
	for _, f := range []Frequency{Weekly, Fortnightly, Monthly, Quarterly, Annually} {
		if err := f.Validate(); err != nil {
			t.Errorf("%s should be valid: %v", f, err)
		}
	}
	for _, f := range []Frequency{"", "daily", "biweekly", "MONTHLY"} {
		if err := f.Validate(); err == nil {
			t.Errorf("%q should be invalid", f)
		}
	}
}

func TestFrequencyNext(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		freq Frequency
		want time.Time
	}{
		{Weekly, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)},
		{Fortnightly, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)},
		{Monthly, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{Quarterly, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)},
		{Annually, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(string(tc.freq), func(t *testing.T) {
			if got := tc.freq.Next(start); !got.Equal(tc.want) {
				t.Errorf("Next() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEnvelopeValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     Envelope
		wantErr bool
	}{
		{
			name: "target only",
			env:  Envelope{Name: "Car insurance", TargetAmount: NewMoney(100000)},
		},
		{
			name: "bill with frequency",
			env:  Envelope{Name: "Rent", BillAmount: NewMoney(90000), BillFrequency: Monthly},
		},
		{
			name:    "bill without frequency",
			env:     Envelope{Name: "Rent", BillAmount: NewMoney(90000)},
			wantErr: true,
		},
		{
			name:    "empty name",
			env:     Envelope{Name: "  ", TargetAmount: NewMoney(100)},
			wantErr: true,
		},
		{
			name:    "negative target",
			env:     Envelope{Name: "Holiday", TargetAmount: NewMoney(-1)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.env.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIncomeSourceAllocationFor(t *testing.T) {
	src := IncomeSource{
		ID:        1,
		Name:      "Salary",
		Frequency: Fortnightly,
		NextDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Allocations: []Allocation{
			{EnvelopeID: 10, Amount: NewMoney(15000)},
			{EnvelopeID: 11, Amount: NewMoney(0)},
		},
	}
	if amt, ok := src.AllocationFor(10); !ok || amt.Cents != 15000 {
		t.Errorf("AllocationFor(10) = %v, %v", amt, ok)
	}
	if amt, ok := src.AllocationFor(11); !ok || amt.Cents != 0 {
		t.Errorf("AllocationFor(11) = %v, %v", amt, ok)
	}
	if _, ok := src.AllocationFor(99); ok {
		t.Error("AllocationFor(99) should not find an allocation")
	}
}
