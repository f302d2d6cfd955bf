package db

import (
	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/models"
)

type seedProduct struct {
	ref    string
	cat    string
	desc   string
	unit   string
	cost   float64
	margin float64
}

// Base network-installation catalog. Every ref the BOM generator can emit is
// present so suggested lines resolve against the catalog. Margins are stored
// as fractions, sale prices are derived as cost*(1+margin) on insert.
var baseCatalog = []seedProduct{
	{"KEYSTONE", "RED", "Conector keystone RJ45 Cat6", "ud", 1.80, 0.30},
	{"ROSETA_DOBLE", "RED", "Roseta de superficie doble", "ud", 2.50, 0.30},
	{"PATCH_PANEL_12", "RED", "Patch panel 12 puertos Cat6", "ud", 22.00, 0.25},
	{"PATCH_PANEL_24", "RED", "Patch panel 24 puertos Cat6", "ud", 32.00, 0.25},
	{"PATCH_PANEL_48", "RED", "Patch panel 48 puertos Cat6", "ud", 58.00, 0.25},
	{"LATIGUILLO_ARMARIO", "RED", "Latiguillo RJ45 0.5m para armario", "ud", 0.90, 0.40},
	{"CABLE_CAT6_305M", "RED", "Bobina cable Cat6 U/UTP 305m", "ud", 78.00, 0.20},
	{"SWITCH_24", "RED", "Switch gestionable 24 puertos", "ud", 180.00, 0.18},
	{"SWITCH_24_POE", "RED", "Switch gestionable 24 puertos PoE", "ud", 320.00, 0.18},
	{"SWITCH_48", "RED", "Switch gestionable 48 puertos", "ud", 340.00, 0.18},
	{"SWITCH_48_POE", "RED", "Switch gestionable 48 puertos PoE", "ud", 560.00, 0.18},
	{"RACK_6U", "RED", "Armario rack mural 6U", "ud", 65.00, 0.22},
	{"RACK_9U", "RED", "Armario rack mural 9U", "ud", 85.00, 0.22},
	{"RACK_12U", "RED", "Armario rack mural 12U", "ud", 110.00, 0.22},
	{"RACK_18U", "RED", "Armario rack 18U", "ud", 175.00, 0.22},
	{"RACK_24U", "RED", "Armario rack 24U", "ud", 230.00, 0.22},
	{"RACK_PDU", "RED", "Regleta PDU rack 6 tomas", "ud", 24.00, 0.25},
	{"RACK_KIT_M6", "RED", "Kit tornilleria M6 rack", "ud", 6.50, 0.35},
	{"RACK_GUIA_PASACABLES", "RED", "Guia pasacables 1U", "ud", 8.50, 0.30},
	{"CANALETA_40X20", "OBRA", "Canaleta PVC 40x20 (m)", "m", 1.60, 0.35},
	{"CANALETA_60X40", "OBRA", "Canaleta PVC 60x40 (m)", "m", 2.90, 0.35},
	{"AP_WIFI", "RED", "Punto de acceso WiFi 6", "ud", 95.00, 0.20},
	{"MO_INSTALACION", "OBRA", "Mano de obra instalacion (h)", "h", 18.00, 0.60},
}

var seedCategories = map[string]string{
	"RED":  "Material de red",
	"OBRA": "Obra y canalizacion",
}

// SeedBaseCatalog inserts the base catalog, skipping refs that already exist.
// Safe to call repeatedly.
func SeedBaseCatalog(db *gorm.DB) {
	catIDs := map[string]uint{}
	for code, name := range seedCategories {
		var existing models.ProductCategory
		err := db.Where("code = ?", code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			existing = models.ProductCategory{Code: code, Name: name}
			db.Create(&existing)
		}
		catIDs[code] = existing.ID
	}
	for _, p := range baseCatalog {
		var existing models.Product
		if err := db.Where("ref = ?", p.ref).First(&existing).Error; err != gorm.ErrRecordNotFound {
			continue
		}
		db.Create(&models.Product{
			Ref:        p.ref,
			CategoryID: catIDs[p.cat],
			ShortDesc:  p.desc,
			Unit:       p.unit,
			Cost:       p.cost,
			Margin:     p.margin,
			SalePrice:  p.cost * (1 + p.margin),
			FixedPrice: false,
			VAT:        21,
			Active:     true,
		})
	}
}
