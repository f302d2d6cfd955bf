package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ProductCategory{}, &models.Product{}, &models.Client{}, &models.Quote{}, &models.QuoteLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	c := models.Client{Name: "Instalaciones Norte SL", DefaultDiscount: 5}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestQuoteSaveSnapshotsTotals(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db)
	svc := NewQuoteService(db, NewPricingEngine(), "PRES-")

	in := QuoteInput{
		ClientID:       client.ID,
		GlobalDiscount: 10,
		Lines: []QuoteLineInput{
			{Ref: "KEYSTONE", Desc: "Conector", Unit: "ud", Qty: 2, UnitPrice: 100, VAT: 21},
		},
	}
	quote, err := svc.Save(0, in)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if quote.Number != "PRES-0001" {
		t.Fatalf("number %q want PRES-0001", quote.Number)
	}
	if quote.Subtotal != 180 || quote.VATTotal != 42 || quote.Total != 222 {
		t.Fatalf("totals %v/%v/%v want 180/42/222", quote.Subtotal, quote.VATTotal, quote.Total)
	}
	if len(quote.Lines) != 1 {
		t.Fatalf("lines %d want 1", len(quote.Lines))
	}
	l := quote.Lines[0]
	if l.LineSubtotal != 200 || l.LineTotal != 242 {
		t.Fatalf("line snapshot %v/%v want 200/242", l.LineSubtotal, l.LineTotal)
	}
	if l.RefSnapshot != "KEYSTONE" || l.UnitSnapshot != "ud" {
		t.Fatalf("snapshot text fields lost: %+v", l)
	}
	if quote.Status != "draft" || quote.ValidDays != 30 {
		t.Fatalf("defaults not applied: %+v", quote)
	}
}

func TestQuoteSaveUpdateReplacesLines(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db)
	svc := NewQuoteService(db, NewPricingEngine(), "PRES-")

	in := QuoteInput{
		ClientID: client.ID,
		Lines:    []QuoteLineInput{{Ref: "A", Qty: 1, UnitPrice: 10, VAT: 21}},
	}
	quote, err := svc.Save(0, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in.Lines = []QuoteLineInput{
		{Ref: "B", Qty: 3, UnitPrice: 20, VAT: 21},
		{Ref: "C", Qty: 1, UnitPrice: 5, VAT: 10},
	}
	in.Status = "sent"
	updated, err := svc.Save(quote.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != quote.ID || updated.Number != quote.Number {
		t.Fatalf("identity changed on update: %+v", updated)
	}
	if len(updated.Lines) != 2 {
		t.Fatalf("lines %d want 2 (old lines must be replaced)", len(updated.Lines))
	}
	if updated.Status != "sent" {
		t.Fatalf("status %q", updated.Status)
	}
	var count int64
	db.Model(&models.QuoteLine{}).Where("quote_id = ?", quote.ID).Count(&count)
	if count != 2 {
		t.Fatalf("stored lines %d want 2", count)
	}
	if updated.Subtotal != 65 {
		t.Fatalf("subtotal %v want 65", updated.Subtotal)
	}
}

func TestQuoteSaveRejectsEmptyAndInvalid(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db)
	svc := NewQuoteService(db, NewPricingEngine(), "PRES-")

	if _, err := svc.Save(0, QuoteInput{ClientID: client.ID}); !errors.Is(err, ErrEmptyQuote) {
		t.Fatalf("want ErrEmptyQuote, got %v", err)
	}
	in := QuoteInput{
		ClientID: client.ID,
		Lines:    []QuoteLineInput{{Ref: "A", Qty: -1, UnitPrice: 10}},
	}
	if _, err := svc.Save(0, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	// nothing persisted on failure
	var count int64
	db.Model(&models.Quote{}).Count(&count)
	if count != 0 {
		t.Fatalf("quotes persisted on failure: %d", count)
	}
}

func TestQuoteNumbersIncrement(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db)
	svc := NewQuoteService(db, NewPricingEngine(), "PRES-")

	in := QuoteInput{ClientID: client.ID, Lines: []QuoteLineInput{{Ref: "A", Qty: 1, UnitPrice: 1}}}
	first, err := svc.Save(0, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Save(0, in)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Number == second.Number {
		t.Fatalf("duplicate numbers: %s", first.Number)
	}
	if second.Number != fmt.Sprintf("PRES-%04d", first.ID+1) {
		t.Fatalf("second number %q", second.Number)
	}
}

func TestLineFromProduct(t *testing.T) {
	p := models.Product{ID: 7, Ref: "KEYSTONE", ShortDesc: "Conector", Unit: "ud", Cost: 100, Margin: 0.25, SalePrice: 999, VAT: 21}
	line := LineFromProduct(p, 5)
	if line.UnitPrice != 125 {
		t.Fatalf("unit price %v want 125 (cost*1.25)", line.UnitPrice)
	}
	if line.Discount != 5 || line.VAT != 21 || line.Qty != 1 {
		t.Fatalf("defaults wrong: %+v", line)
	}
	p.FixedPrice = true
	if got := LineFromProduct(p, 0).UnitPrice; got != 999 {
		t.Fatalf("fixed price %v want 999", got)
	}
}
