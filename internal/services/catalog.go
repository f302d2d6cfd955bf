package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/models"
)

// Catalog template headers, kept compatible with the spreadsheets the
// business already maintains.
var catalogHeaders = []string{
	"Referencia",
	"Código categoría",
	"Categoría",
	"Nombre",
	"Descripción",
	"Unidad",
	"Precio coste",
	"Beneficio",
	"Precio venta",
	"Precio fijo",
}

// headerSynonyms maps normalized column labels to canonical field keys so
// files exported from older tools still import cleanly.
var headerSynonyms = map[string]string{
	"referencia":        "ref",
	"ref":               "ref",
	"codigo categoria":  "cat_code",
	"código categoría":  "cat_code",
	"categoria":         "cat_name",
	"categoría":         "cat_name",
	"nombre":            "name",
	"descripcion":       "desc",
	"descripción":       "desc",
	"unidad":            "unit",
	"precio coste":      "cost",
	"precio costo":      "cost",
	"coste":             "cost",
	"beneficio":         "margin",
	"margen":            "margin",
	"marxe":             "margin",
	"precio venta":      "sale_price",
	"precio de venta":   "sale_price",
	"pvp":               "sale_price",
	"precio fijo":       "fixed",
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// CatalogService handles catalog import/export and upserts.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{db: db} }

// ImportCSV reads a catalog CSV (header row + data rows) and upserts products
// by ref. Margins pass through NormalizeMargin; sale price is derived from
// cost and margin unless the row says the price is fixed.
func (s *CatalogService) ImportCSV(r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse csv: %w", err)
	}
	return s.importRows(rows)
}

// ImportXLSX reads the first sheet of an xlsx workbook the same way.
func (s *CatalogService) ImportXLSX(r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return ImportResult{}, fmt.Errorf("read sheet: %w", err)
	}
	return s.importRows(rows)
}

func (s *CatalogService) importRows(rows [][]string) (ImportResult, error) {
	var res ImportResult
	if len(rows) < 2 {
		return res, fmt.Errorf("file must contain a header row and at least one data row")
	}
	fields := mapHeaders(rows[0])
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows[1:] {
			get := func(key string) string {
				for i, f := range fields {
					if f == key && i < len(row) {
						return strings.TrimSpace(row[i])
					}
				}
				return ""
			}
			ref := get("ref")
			if ref == "" {
				res.Skipped++
				continue
			}
			cost := parseFloat(get("cost"), 0)
			margin := ParseMargin(get("margin"))
			salePrice := parseFloat(get("sale_price"), 0)
			fixed := strings.EqualFold(get("fixed"), "fixed") || strings.EqualFold(get("fixed"), "si")
			if !fixed && salePrice == 0 {
				salePrice = cost * (1 + margin)
			}
			catID, err := s.categoryID(tx, get("cat_code"), get("cat_name"))
			if err != nil {
				return err
			}

			var existing models.Product
			err = tx.Where("ref = ?", ref).First(&existing).Error
			switch {
			case err == nil:
				existing.CategoryID = catID
				existing.ShortDesc = get("name")
				existing.LongDesc = get("desc")
				existing.Unit = get("unit")
				existing.Cost = cost
				existing.Margin = margin
				existing.SalePrice = salePrice
				existing.FixedPrice = fixed
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				res.Updated++
			case err == gorm.ErrRecordNotFound:
				p := models.Product{
					Ref:        ref,
					CategoryID: catID,
					ShortDesc:  get("name"),
					LongDesc:   get("desc"),
					Unit:       get("unit"),
					Cost:       cost,
					Margin:     margin,
					SalePrice:  salePrice,
					FixedPrice: fixed,
					VAT:        21,
					Active:     true,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
				res.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

// categoryID finds or creates the category for a row. Missing names fall back
// to "Sin categoria"; missing codes are derived from the name.
func (s *CatalogService) categoryID(tx *gorm.DB, code, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Sin categoria"
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = categoryPrefix(name)
	}
	var cat models.ProductCategory
	err := tx.Where("code = ?", code).Or("name = ?", name).First(&cat).Error
	if err == nil {
		return cat.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, err
	}
	cat = models.ProductCategory{Code: code, Name: name}
	if err := tx.Create(&cat).Error; err != nil {
		return 0, err
	}
	return cat.ID, nil
}

func categoryPrefix(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() >= 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "CAT"
	}
	return b.String()
}

// mapHeaders maps each column to a canonical field key ("" when unknown).
func mapHeaders(headers []string) []string {
	fields := make([]string, len(headers))
	for i, h := range headers {
		fields[i] = headerSynonyms[strings.ToLower(strings.TrimSpace(h))]
	}
	return fields
}

// ExportCSV writes the catalog template (headers plus active products) to w.
func (s *CatalogService) ExportCSV(w io.Writer) error {
	rows, err := s.exportRows()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(catalogHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX builds the same template as an xlsx workbook and returns the
// file contents.
func (s *CatalogService) ExportXLSX() ([]byte, error) {
	rows, err := s.exportRows()
	if err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Catalogo"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	writeRow := func(n int, cells []string) error {
		for i, c := range cells {
			cell, err := excelize.CoordinatesToCellName(i+1, n)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeRow(1, catalogHeaders); err != nil {
		return nil, err
	}
	for i, row := range rows {
		if err := writeRow(i+2, row); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *CatalogService) exportRows() ([][]string, error) {
	var products []models.Product
	if err := s.db.Preload("Category").Order("ref").Find(&products).Error; err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		fixed := ""
		if p.FixedPrice {
			fixed = "fixed"
		}
		rows = append(rows, []string{
			p.Ref,
			p.Category.Code,
			p.Category.Name,
			p.ShortDesc,
			p.LongDesc,
			p.Unit,
			formatNum(p.Cost),
			formatNum(p.Margin),
			formatNum(p.SalePrice),
			fixed,
		})
	}
	return rows, nil
}

func formatNum(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
