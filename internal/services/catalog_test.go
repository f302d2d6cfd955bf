package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orzalan/quoting-app/internal/models"
)

const sampleCSV = `Referencia,Código categoría,Categoría,Nombre,Descripción,Unidad,Precio coste,Beneficio,Precio venta,Precio fijo
KEYSTONE,RED,Material de red,Conector keystone,,ud,"1,80",30,,
SWITCH_24,RED,Material de red,Switch 24 puertos,,ud,180,15,,
MO_VISITA,OBRA,Obra,Visita tecnica,,ud,0,0,45,fixed
`

func TestImportCSV(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)

	res, err := svc.ImportCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 3 || res.Updated != 0 {
		t.Fatalf("result %+v want 3 created", res)
	}

	var p models.Product
	if err := db.Where("ref = ?", "KEYSTONE").First(&p).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Cost != 1.8 {
		t.Fatalf("cost %v want 1.8 (comma decimal)", p.Cost)
	}
	if p.Margin != 0.3 {
		t.Fatalf("margin %v want 0.3 (30 normalized)", p.Margin)
	}
	if p.SalePrice != 1.8*1.3 {
		t.Fatalf("sale price %v want derived cost*(1+margin)", p.SalePrice)
	}
	if p.FixedPrice {
		t.Fatalf("unexpected fixed price")
	}

	var fixed models.Product
	if err := db.Where("ref = ?", "MO_VISITA").First(&fixed).Error; err != nil {
		t.Fatalf("load fixed: %v", err)
	}
	if !fixed.FixedPrice || fixed.SalePrice != 45 {
		t.Fatalf("fixed product %+v want fixed price 45", fixed)
	}

	var cat models.ProductCategory
	if err := db.Where("code = ?", "RED").First(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	if cat.Name != "Material de red" {
		t.Fatalf("category name %q", cat.Name)
	}
}

func TestImportCSVUpdatesExisting(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	if _, err := svc.ImportCSV(strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("first import: %v", err)
	}
	updated := strings.Replace(sampleCSV, `"1,80",30`, `2,0.25`, 1)
	res, err := svc.ImportCSV(strings.NewReader(updated))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Updated != 3 || res.Created != 0 {
		t.Fatalf("result %+v want 3 updated", res)
	}
	var p models.Product
	if err := db.Where("ref = ?", "KEYSTONE").First(&p).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Cost != 2 || p.Margin != 0.25 {
		t.Fatalf("not updated: %+v", p)
	}
	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 3 {
		t.Fatalf("product count %d want 3 (no duplicates)", count)
	}
}

func TestImportCSVSkipsRowsWithoutRef(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	csvData := "Referencia,Nombre,Precio coste\n,NoRef,10\nOK_REF,Valid,5\n"
	res, err := svc.ImportCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 1 || res.Skipped != 1 {
		t.Fatalf("result %+v want 1 created 1 skipped", res)
	}
}

func TestImportRejectsHeaderOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	if _, err := svc.ImportCSV(strings.NewReader("Referencia,Nombre\n")); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestExportCSVRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	if _, err := svc.ImportCSV(strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("seed import: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Referencia,") {
		t.Fatalf("missing header row: %q", out[:40])
	}
	if !strings.Contains(out, "KEYSTONE") || !strings.Contains(out, "MO_VISITA") {
		t.Fatalf("exported rows incomplete:\n%s", out)
	}

	// importing our own export must be a no-op update, never a duplicate
	res, err := svc.ImportCSV(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if res.Created != 0 || res.Updated != 3 {
		t.Fatalf("reimport result %+v", res)
	}
}

func TestExportImportXLSXRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCatalogService(db)
	if _, err := svc.ImportCSV(strings.NewReader(sampleCSV)); err != nil {
		t.Fatalf("seed import: %v", err)
	}
	data, err := svc.ExportXLSX()
	if err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
	res, err := svc.ImportXLSX(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("import xlsx: %v", err)
	}
	if res.Created != 0 || res.Updated != 3 {
		t.Fatalf("roundtrip result %+v", res)
	}
	var p models.Product
	if err := db.Where("ref = ?", "KEYSTONE").First(&p).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Margin != 0.3 {
		t.Fatalf("margin %v survived roundtrip wrong", p.Margin)
	}
}
