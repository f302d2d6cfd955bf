package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/httpx"
	"github.com/orzalan/quoting-app/internal/models"
	"github.com/orzalan/quoting-app/internal/services"
	"github.com/orzalan/quoting-app/internal/validation"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

type productReq struct {
	Ref        string  `json:"ref"`
	CategoryID uint    `json:"category_id"`
	ShortDesc  string  `json:"short_desc"`
	LongDesc   string  `json:"long_desc"`
	Unit       string  `json:"unit"`
	Cost       float64 `json:"cost"`
	Margin     float64 `json:"margin"`
	SalePrice  float64 `json:"sale_price"`
	FixedPrice bool    `json:"fixed_price"`
	VAT        float64 `json:"vat"`
	Active     *bool   `json:"active"`
}

func (r productReq) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("ref", r.Ref, v)
	validation.Required("short_desc", r.ShortDesc, v)
	validation.NonNegative("cost", r.Cost, v)
	validation.NonNegative("sale_price", r.SalePrice, v)
	validation.NonNegative("vat", r.VAT, v)
	return v
}

// List: GET /products?q=&limit=&page=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	dbq := h.DB.Model(&models.Product{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := regexp.MustCompile(`[^a-zA-Z0-9 \-_]`).ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(ref) LIKE ? OR lower(short_desc) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var products []models.Product
	if err := dbq.Order("ref").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p := h.apply(models.Product{Active: true}, req)
	if err := h.DB.Create(&p).Error; err != nil {
		if isUniqueViolation(err) {
			httpx.JSONError(w, http.StatusConflict, "ref_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST /products/update?id=...
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var p models.Product
	if err := h.DB.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	var req productReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p = h.apply(p, req)
	if err := h.DB.Save(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete: POST /products/delete?id=... (soft delete)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// apply copies request fields onto a product. Margin input is normalized so a
// user typing 15 and a file carrying 0.15 mean the same thing, and for
// non-fixed prices the sale price is derived rather than trusted.
func (h *ProductHandler) apply(p models.Product, req productReq) models.Product {
	p.Ref = strings.TrimSpace(req.Ref)
	p.CategoryID = req.CategoryID
	p.ShortDesc = req.ShortDesc
	p.LongDesc = req.LongDesc
	p.Unit = req.Unit
	p.Cost = req.Cost
	p.Margin = services.NormalizeMargin(req.Margin)
	p.FixedPrice = req.FixedPrice
	if req.FixedPrice {
		p.SalePrice = req.SalePrice
	} else {
		p.SalePrice = req.Cost * (1 + p.Margin)
	}
	p.VAT = req.VAT
	if req.Active != nil {
		p.Active = *req.Active
	}
	return p
}

func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
