package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned by the pricing engine when a numeric input is
// negative, non-finite, or out of its percent range. Callers must correct the
// input and resubmit; there is nothing transient about this failure.
var ErrInvalidInput = errors.New("invalid_input")

// LineItem is one quote row as seen by the pricing engine. Percent fields are
// whole-number percents (21 means 21%).
type LineItem struct {
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64
	VATPercent      float64
}

// LineTotals is the per-line breakdown.
type LineTotals struct {
	Subtotal  float64
	VATAmount float64
	Total     float64
}

// QuoteTotals is the header-level snapshot persisted on a quote.
type QuoteTotals struct {
	Subtotal float64
	VATTotal float64
	Total    float64
}

// PricingEngine converts line items plus header overrides into totals.
// It is stateless; a single value can be shared across goroutines.
type PricingEngine struct{}

func NewPricingEngine() *PricingEngine { return &PricingEngine{} }

// ComputeLineTotals prices a single line. The VAT amount is clamped to >= 0 so
// a degenerate line can never contribute negative tax.
func (e *PricingEngine) ComputeLineTotals(line LineItem) (LineTotals, error) {
	if err := validateLine(line); err != nil {
		return LineTotals{}, err
	}
	return computeLine(line), nil
}

// ComputeQuoteTotals aggregates all lines and applies the header overrides:
// the global discount reduces the summed line subtotals multiplicatively, and
// a global VAT > 0 replaces the summed per-line VAT with a flat rate on the
// discounted subtotal.
//
// When globalVAT is 0 the summed per-line VAT is kept as-is, i.e. it is NOT
// scaled down by the global discount. That matches how issued quotes have
// always been computed; changing it needs a business decision first.
func (e *PricingEngine) ComputeQuoteTotals(lines []LineItem, globalDiscount, globalVAT float64) (QuoteTotals, error) {
	if err := validatePercent("global_discount", globalDiscount); err != nil {
		return QuoteTotals{}, err
	}
	if err := validateNonNegative("global_vat", globalVAT); err != nil {
		return QuoteTotals{}, err
	}
	var rawSubtotal, rawVAT float64
	for i, line := range lines {
		if err := validateLine(line); err != nil {
			return QuoteTotals{}, fmt.Errorf("line %d: %w", i, err)
		}
		lt := computeLine(line)
		rawSubtotal += lt.Subtotal
		rawVAT += lt.VATAmount
	}
	subtotal := rawSubtotal * (1 - globalDiscount/100)
	vatTotal := rawVAT
	if globalVAT > 0 {
		vatTotal = subtotal * (globalVAT / 100)
	}
	return QuoteTotals{Subtotal: subtotal, VATTotal: vatTotal, Total: subtotal + vatTotal}, nil
}

// computeLine is the single source of truth for the per-line formula; every
// caller (live recompute, save path, exports) must go through it.
func computeLine(line LineItem) LineTotals {
	subtotal := line.Quantity * line.UnitPrice * (1 - line.DiscountPercent/100)
	total := subtotal * (1 + line.VATPercent/100)
	return LineTotals{
		Subtotal:  subtotal,
		VATAmount: math.Max(total-subtotal, 0),
		Total:     total,
	}
}

func validateLine(line LineItem) error {
	if err := validateNonNegative("quantity", line.Quantity); err != nil {
		return err
	}
	if err := validateNonNegative("unit_price", line.UnitPrice); err != nil {
		return err
	}
	if err := validatePercent("discount", line.DiscountPercent); err != nil {
		return err
	}
	return validateNonNegative("vat", line.VATPercent)
}

// validateNonNegative rejects negative or non-finite values.
func validateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, field)
	}
	return nil
}

// validatePercent additionally enforces the [0,100] range.
func validatePercent(field string, v float64) error {
	if err := validateNonNegative(field, v); err != nil {
		return err
	}
	if v > 100 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, field)
	}
	return nil
}

// NormalizeMargin maps a raw margin input to a fraction: values strictly
// greater than 1 are read as whole-number percents (15 -> 0.15), anything else
// is already fractional. Applied identically on every ingest path (manual
// edit, CSV/XLSX import, catalog reset) to avoid double-scaling.
func NormalizeMargin(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// ParseMargin reads a margin from free text, tolerating comma decimals.
// Unparseable input yields 0; margin ingestion never fails.
func ParseMargin(s string) float64 {
	return NormalizeMargin(parseFloat(s, 0))
}

// UnitPriceFor derives the default unit price for a quote line seeded from a
// catalog product: fixed-price products keep their sale price, otherwise the
// price is cost plus margin, falling back to the stored sale price when either
// part is missing.
func UnitPriceFor(cost, margin, salePrice float64, fixedPrice bool) float64 {
	if fixedPrice {
		return salePrice
	}
	if cost > 0 && margin > 0 {
		return cost * (1 + margin)
	}
	return salePrice
}

// parseFloat is the permissive numeric reader shared by margin ingestion and
// BOM measurement parsing: trims, accepts comma decimals, returns def on
// anything unparseable.
func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
