package services

import (
	"errors"
	"math"
	"testing"
)

func TestComputeLineTotals(t *testing.T) {
	e := NewPricingEngine()
	cases := []struct {
		name            string
		line            LineItem
		sub, vat, total float64
	}{
		{"plain", LineItem{Quantity: 2, UnitPrice: 100, DiscountPercent: 0, VATPercent: 21}, 200, 42, 242},
		{"discounted", LineItem{Quantity: 4, UnitPrice: 50, DiscountPercent: 25, VATPercent: 10}, 150, 15, 165},
		{"zero qty", LineItem{Quantity: 0, UnitPrice: 99, VATPercent: 21}, 0, 0, 0},
		{"full discount", LineItem{Quantity: 3, UnitPrice: 10, DiscountPercent: 100, VATPercent: 21}, 0, 0, 0},
		{"no vat", LineItem{Quantity: 1, UnitPrice: 80, DiscountPercent: 50}, 40, 0, 40},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := e.ComputeLineTotals(c.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Subtotal != c.sub || got.VATAmount != c.vat || got.Total != c.total {
				t.Fatalf("got %+v want sub=%v vat=%v total=%v", got, c.sub, c.vat, c.total)
			}
			if got.Subtotal > c.line.Quantity*c.line.UnitPrice {
				t.Fatalf("subtotal %v exceeds undiscounted amount", got.Subtotal)
			}
			if got.VATAmount < 0 {
				t.Fatalf("negative vat amount %v", got.VATAmount)
			}
		})
	}
}

func TestComputeLineTotalsRejectsBadInput(t *testing.T) {
	e := NewPricingEngine()
	bad := []LineItem{
		{Quantity: -1, UnitPrice: 10},
		{Quantity: 1, UnitPrice: -10},
		{Quantity: 1, UnitPrice: 10, DiscountPercent: -5},
		{Quantity: 1, UnitPrice: 10, DiscountPercent: 101},
		{Quantity: 1, UnitPrice: 10, VATPercent: -21},
		{Quantity: math.NaN(), UnitPrice: 10},
		{Quantity: 1, UnitPrice: math.Inf(1)},
	}
	for i, line := range bad {
		if _, err := e.ComputeLineTotals(line); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: want ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestComputeQuoteTotals(t *testing.T) {
	e := NewPricingEngine()
	lines := []LineItem{
		{Quantity: 2, UnitPrice: 100, VATPercent: 21},
		{Quantity: 1, UnitPrice: 50, DiscountPercent: 10, VATPercent: 21},
	}
	// raw subtotal 200 + 45 = 245, raw vat 42 + 9.45
	got, err := e.ComputeQuoteTotals(lines, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subtotal != 245 {
		t.Fatalf("subtotal %v want 245", got.Subtotal)
	}
	if math.Abs(got.VATTotal-51.45) > 1e-9 {
		t.Fatalf("vat total %v want ~51.45", got.VATTotal)
	}
	if got.Total != got.Subtotal+got.VATTotal {
		t.Fatalf("total %v != subtotal+vat", got.Total)
	}
}

func TestComputeQuoteTotalsEmpty(t *testing.T) {
	e := NewPricingEngine()
	got, err := e.ComputeQuoteTotals(nil, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subtotal != 0 || got.VATTotal != 0 || got.Total != 0 {
		t.Fatalf("want all zeros, got %+v", got)
	}
}

// A global VAT rate replaces the summed per-line VAT; it does not add to it.
func TestGlobalVATReplacesLineVAT(t *testing.T) {
	e := NewPricingEngine()
	lines := []LineItem{
		{Quantity: 1, UnitPrice: 60, VATPercent: 21},
		{Quantity: 1, UnitPrice: 40, VATPercent: 21},
	}
	got, err := e.ComputeQuoteTotals(lines, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subtotal != 100 {
		t.Fatalf("subtotal %v want 100", got.Subtotal)
	}
	if got.VATTotal != 10 {
		t.Fatalf("vat total %v want 10 (flat 10%% of subtotal, line VAT discarded)", got.VATTotal)
	}
}

// The global discount reduces the subtotal but deliberately leaves the summed
// per-line VAT untouched when no global VAT is set. This pins the historical
// behavior of issued quotes; do not "fix" without a business decision.
func TestGlobalDiscountDoesNotScaleLineVAT(t *testing.T) {
	e := NewPricingEngine()
	lines := []LineItem{{Quantity: 2, UnitPrice: 100, VATPercent: 21}}
	got, err := e.ComputeQuoteTotals(lines, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Subtotal != 180 {
		t.Fatalf("subtotal %v want 180", got.Subtotal)
	}
	if got.VATTotal != 42 {
		t.Fatalf("vat total %v want 42 (computed on undiscounted lines)", got.VATTotal)
	}
	if got.Total != 222 {
		t.Fatalf("total %v want 222", got.Total)
	}
}

func TestComputeQuoteTotalsIdempotent(t *testing.T) {
	e := NewPricingEngine()
	lines := []LineItem{
		{Quantity: 3.5, UnitPrice: 17.23, DiscountPercent: 7, VATPercent: 21},
		{Quantity: 12, UnitPrice: 1.8, DiscountPercent: 0, VATPercent: 10},
	}
	first, err := e.ComputeQuoteTotals(lines, 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.ComputeQuoteTotals(lines, 5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("recompute differs: %+v vs %+v", first, second)
	}
}

func TestComputeQuoteTotalsRejectsBadOverrides(t *testing.T) {
	e := NewPricingEngine()
	lines := []LineItem{{Quantity: 1, UnitPrice: 10}}
	if _, err := e.ComputeQuoteTotals(lines, -1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative global discount: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.ComputeQuoteTotals(lines, 101, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("global discount > 100: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.ComputeQuoteTotals(lines, 0, -5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative global vat: want ErrInvalidInput, got %v", err)
	}
	if _, err := e.ComputeQuoteTotals([]LineItem{{Quantity: -1}}, 0, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad line: want ErrInvalidInput, got %v", err)
	}
}

func TestNormalizeMargin(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{15, 0.15},
		{0.15, 0.15},
		{1, 1}, // boundary: strictly greater than 1 divides
		{1.5, 0.015},
		{0, 0},
		{100, 1},
	}
	for _, c := range cases {
		if got := NormalizeMargin(c.in); got != c.want {
			t.Fatalf("NormalizeMargin(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseMargin(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"15", 0.15},
		{"0.15", 0.15},
		{"0,15", 0.15},
		{"", 0},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := ParseMargin(c.in); got != c.want {
			t.Fatalf("ParseMargin(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestUnitPriceFor(t *testing.T) {
	if got := UnitPriceFor(100, 0.25, 999, false); got != 125 {
		t.Fatalf("cost+margin: got %v want 125", got)
	}
	if got := UnitPriceFor(100, 0.25, 80, true); got != 80 {
		t.Fatalf("fixed price: got %v want 80", got)
	}
	if got := UnitPriceFor(0, 0.15, 42, false); got != 42 {
		t.Fatalf("no cost falls back to sale price: got %v want 42", got)
	}
	if got := UnitPriceFor(100, 0, 42, false); got != 42 {
		t.Fatalf("no margin falls back to sale price: got %v want 42", got)
	}
}
