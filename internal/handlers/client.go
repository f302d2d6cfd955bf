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
	"github.com/orzalan/quoting-app/internal/validation"
)

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientReq struct {
	Name            string  `json:"name"`
	TaxID           string  `json:"tax_id"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	ContactPerson   string  `json:"contact_person"`
	DefaultDiscount float64 `json:"default_discount"`
	Notes           string  `json:"notes"`
}

func (r clientReq) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", r.Name, v)
	validation.RangeFloat("default_discount", r.DefaultDiscount, 0, 100, v)
	return v
}

// List: GET /clients?q=&limit=&page=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
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
	dbq := h.DB.Model(&models.Client{})
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		safe := regexp.MustCompile(`[^a-zA-Z0-9 \-_]`).ReplaceAllString(q, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(name) LIKE ? OR lower(tax_id) LIKE ?", like, like)
	}
	var total int64
	dbq.Count(&total)
	var clients []models.Client
	if err := dbq.Order("name").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Client{}
	applyClient(&c, req)
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_client", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

// Update: POST /clients/update?id=...
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var c models.Client
	if err := h.DB.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_client", nil)
		return
	}
	var req clientReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := req.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	applyClient(&c, req)
	if err := h.DB.Save(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_client", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete: POST /clients/delete?id=...
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var count int64
	h.DB.Model(&models.Quote{}).Where("client_id = ?", id).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "client_has_quotes", nil)
		return
	}
	res := h.DB.Delete(&models.Client{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_client", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func applyClient(c *models.Client, req clientReq) {
	c.Name = strings.TrimSpace(req.Name)
	c.TaxID = req.TaxID
	c.Address = req.Address
	c.Phone = req.Phone
	c.Email = req.Email
	c.ContactPerson = req.ContactPerson
	c.DefaultDiscount = req.DefaultDiscount
	c.Notes = req.Notes
}
