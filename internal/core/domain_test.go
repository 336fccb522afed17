package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(-300); err != nil {
		t.Fatalf("expected ok for negative amount, got %v", err)
	}
	if err := ValidateAmount(0); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := ValidateAmount(math.NaN()); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for NaN, got %v", err)
	}
	if err := ValidateAmount(math.Inf(1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for +Inf, got %v", err)
	}
}

func TestValidateCategoryName(t *testing.T) {
	cases := []struct {
		in      string
		trimmed string
		ok      bool
	}{
		{"Food", "Food", true},
		{"  Food  ", "Food", true},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := ValidateCategoryName(tc.in)
		if tc.ok {
			if err != nil || got != tc.trimmed {
				t.Fatalf("%q: got (%q, %v), want (%q, nil)", tc.in, got, err, tc.trimmed)
			}
		} else if !errors.Is(err, ErrEmptyName) {
			t.Fatalf("%q: expected ErrEmptyName, got %v", tc.in, err)
		}
	}
}

func TestNewTransactionParamsValidate(t *testing.T) {
	good := NewTransactionParams{
		Description: "groceries",
		Amount:      -1500,
		Date:        "2024-03-05",
		Currency:    HUF,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// currency may be empty; the store fills in the default
	good.Currency = ""
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok with empty currency, got %v", err)
	}

	cases := []struct {
		name   string
		params NewTransactionParams
		want   error
	}{
		{"empty description", NewTransactionParams{Description: "  ", Amount: 1, Date: "2024-03-05"}, ErrEmptyDescription},
		{"nan amount", NewTransactionParams{Description: "x", Amount: math.NaN(), Date: "2024-03-05"}, ErrInvalidAmount},
		{"bad date", NewTransactionParams{Description: "x", Amount: 1, Date: "2024-03-45"}, ErrInvalidDate},
		{"bad currency", NewTransactionParams{Description: "x", Amount: 1, Date: "2024-03-05", Currency: "huf"}, ErrInvalidCurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.params.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateTransactionParamsValidate(t *testing.T) {
	// all-nil update is valid (no-op patch)
	if err := (UpdateTransactionParams{}).Validate(); err != nil {
		t.Fatalf("expected ok for empty patch, got %v", err)
	}

	desc := ""
	if err := (UpdateTransactionParams{Description: &desc}).Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription")
	}
	bad := math.Inf(-1)
	if err := (UpdateTransactionParams{Amount: &bad}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount")
	}
	date := "2024-13-01"
	if err := (UpdateTransactionParams{Date: &date}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate")
	}
}
