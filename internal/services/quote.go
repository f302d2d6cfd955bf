package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/models"
)

var ErrEmptyQuote = errors.New("quote_needs_at_least_one_line")

// QuoteLineInput is one line as entered in the editor. Snapshot text fields
// travel with the numbers so the stored quote is self-contained.
type QuoteLineInput struct {
	ProductID uint    `json:"product_id"`
	Ref       string  `json:"ref"`
	Desc      string  `json:"desc"`
	Unit      string  `json:"unit"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`
	VAT       float64 `json:"vat"`
}

// QuoteInput is the editor payload for creating or updating a quote.
type QuoteInput struct {
	ClientID       uint             `json:"client_id"`
	Date           string           `json:"date"` // YYYY-MM-DD, empty = today
	ValidDays      int              `json:"valid_days"`
	Status         string           `json:"status"`
	GlobalVAT      float64          `json:"global_vat"`
	GlobalDiscount float64          `json:"global_discount"`
	Notes          string           `json:"notes"`
	Lines          []QuoteLineInput `json:"lines"`
}

// QuoteService persists quotes. All arithmetic goes through the pricing
// engine so the editor preview, the saved snapshot, and any export agree.
type QuoteService struct {
	db        *gorm.DB
	engine    *PricingEngine
	numberPfx string
}

func NewQuoteService(db *gorm.DB, engine *PricingEngine, numberPrefix string) *QuoteService {
	if numberPrefix == "" {
		numberPrefix = "PRES-"
	}
	return &QuoteService{db: db, engine: engine, numberPfx: numberPrefix}
}

// Save creates quoteID==0 or replaces the lines of an existing quote, pricing
// every line through the engine and snapshotting the header totals.
func (s *QuoteService) Save(quoteID uint, in QuoteInput) (*models.Quote, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyQuote
	}
	items := make([]LineItem, len(in.Lines))
	for i, l := range in.Lines {
		items[i] = LineItem{Quantity: l.Qty, UnitPrice: l.UnitPrice, DiscountPercent: l.Discount, VATPercent: l.VAT}
	}
	totals, err := s.engine.ComputeQuoteTotals(items, in.GlobalDiscount, in.GlobalVAT)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if in.Date != "" {
		if d, perr := time.Parse("2006-01-02", in.Date); perr == nil {
			date = d
		}
	}
	status := in.Status
	if status == "" {
		status = "draft"
	}
	validDays := in.ValidDays
	if validDays <= 0 {
		validDays = 30
	}

	var quote models.Quote
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if quoteID != 0 {
			if err := tx.First(&quote, quoteID).Error; err != nil {
				return err
			}
			if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteLine{}).Error; err != nil {
				return err
			}
		} else {
			number, err := s.nextNumber(tx)
			if err != nil {
				return err
			}
			quote = models.Quote{Number: number}
			if err := tx.Create(&quote).Error; err != nil {
				return err
			}
		}

		quote.ClientID = in.ClientID
		quote.Date = date
		quote.ValidDays = validDays
		quote.Status = status
		quote.VATMode = "line"
		quote.GlobalVAT = in.GlobalVAT
		quote.GlobalDiscount = in.GlobalDiscount
		quote.Notes = in.Notes
		quote.Subtotal = totals.Subtotal
		quote.VATTotal = totals.VATTotal
		quote.Total = totals.Total

		lines := make([]models.QuoteLine, len(in.Lines))
		for i, l := range in.Lines {
			lt, lerr := s.engine.ComputeLineTotals(items[i])
			if lerr != nil {
				return lerr
			}
			lines[i] = models.QuoteLine{
				QuoteID:           quote.ID,
				ProductID:         l.ProductID,
				RefSnapshot:       l.Ref,
				DescSnapshot:      l.Desc,
				UnitSnapshot:      l.Unit,
				Qty:               l.Qty,
				UnitPriceSnapshot: l.UnitPrice,
				Discount:          l.Discount,
				VAT:               l.VAT,
				LineSubtotal:      lt.Subtotal,
				LineTotal:         lt.Total,
			}
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		return tx.Save(&quote).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.Preload("Lines").First(&quote, quote.ID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// nextNumber follows the original numbering: prefix + zero-padded next id.
func (s *QuoteService) nextNumber(tx *gorm.DB) (string, error) {
	var last models.Quote
	err := tx.Order("id desc").First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return fmt.Sprintf("%s%04d", s.numberPfx, last.ID+1), nil
}

// LineFromProduct seeds an editor line from a catalog product using the
// margin-to-price rule; the client's default discount is pre-filled.
func LineFromProduct(p models.Product, defaultDiscount float64) QuoteLineInput {
	return QuoteLineInput{
		ProductID: p.ID,
		Ref:       p.Ref,
		Desc:      p.ShortDesc,
		Unit:      p.Unit,
		Qty:       1,
		UnitPrice: UnitPriceFor(p.Cost, p.Margin, p.SalePrice, p.FixedPrice),
		Discount:  defaultDiscount,
		VAT:       p.VAT,
	}
}
