package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/orzalan/quoting-app/internal/httpx"
	"github.com/orzalan/quoting-app/internal/models"
	"github.com/orzalan/quoting-app/internal/services"
)

type QuoteHandler struct {
	DB     *gorm.DB
	Svc    *services.QuoteService
	Engine *services.PricingEngine
}

func NewQuoteHandler(db *gorm.DB, svc *services.QuoteService, engine *services.PricingEngine) *QuoteHandler {
	return &QuoteHandler{DB: db, Svc: svc, Engine: engine}
}

// List: GET /quotes?status=&limit=&page=
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
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
	dbq := h.DB.Model(&models.Quote{})
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var total int64
	dbq.Count(&total)
	var quotes []models.Quote
	if err := dbq.Order("id desc").Limit(limit).Offset(offset).Find(&quotes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotes", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotes, "total": total, "limit": limit, "offset": offset})
}

// Get: GET /quotes/get?id=... with lines
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var quote models.Quote
	if err := h.DB.Preload("Lines").First(&quote, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_quote", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

// Create: POST /quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update: POST /quotes/update?id=...
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *QuoteHandler) save(w http.ResponseWriter, r *http.Request, id uint) {
	var in services.QuoteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.ClientID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_id": "required"})
		return
	}
	var count int64
	h.DB.Model(&models.Client{}).Where("id = ?", in.ClientID).Count(&count)
	if count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_client", nil)
		return
	}
	quote, err := h.Svc.Save(id, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuote):
			httpx.JSONError(w, http.StatusBadRequest, "quote_needs_lines", nil)
		case errors.Is(err, services.ErrInvalidInput):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_quote", nil)
		}
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, quote)
}

// Totals: POST /quotes/totals – stateless recompute preview for the editor.
// Nothing is persisted; the editor calls this on every edit.
func (h *QuoteHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GlobalVAT      float64                   `json:"global_vat"`
		GlobalDiscount float64                   `json:"global_discount"`
		Lines          []services.QuoteLineInput `json:"lines"`
	}
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	items := make([]services.LineItem, len(in.Lines))
	lines := make([]services.LineTotals, len(in.Lines))
	for i, l := range in.Lines {
		items[i] = services.LineItem{Quantity: l.Qty, UnitPrice: l.UnitPrice, DiscountPercent: l.Discount, VATPercent: l.VAT}
		lt, err := h.Engine.ComputeLineTotals(items[i])
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		lines[i] = lt
	}
	totals, err := h.Engine.ComputeQuoteTotals(items, in.GlobalDiscount, in.GlobalVAT)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"subtotal":  totals.Subtotal,
		"vat_total": totals.VATTotal,
		"total":     totals.Total,
		"lines":     lines,
	})
}

// LineDefaults: GET /quotes/line-defaults?product_id=&client_id= – seeds an
// editor line from the catalog using the margin-to-price rule.
func (h *QuoteHandler) LineDefaults(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(r.URL.Query().Get("product_id"))
	if err != nil || pid <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_product_id", nil)
		return
	}
	var product models.Product
	if err := h.DB.First(&product, pid).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	discount := 0.0
	if cid, err := strconv.Atoi(r.URL.Query().Get("client_id")); err == nil && cid > 0 {
		var client models.Client
		if err := h.DB.First(&client, cid).Error; err == nil {
			discount = client.DefaultDiscount
		}
	}
	httpx.JSON(w, http.StatusOK, services.LineFromProduct(product, discount))
}

// SetStatus: POST /quotes/status?id=...&status=...
func (h *QuoteHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	switch status {
	case "draft", "sent", "accepted", "rejected":
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		return
	}
	res := h.DB.Model(&models.Quote{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_status", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": status})
}
