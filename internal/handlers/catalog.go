package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/orzalan/quoting-app/internal/httpx"
	"github.com/orzalan/quoting-app/internal/services"
)

type CatalogHandler struct {
	Svc *services.CatalogService
}

func NewCatalogHandler(svc *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Svc: svc}
}

// Import: POST /catalog/import – multipart upload, field "file", .csv or .xlsx.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_multipart", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	var res services.ImportResult
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		res, err = h.Svc.ImportCSV(file)
	case ".xlsx":
		res, err = h.Svc.ImportXLSX(file)
	default:
		httpx.JSONError(w, http.StatusBadRequest, "unsupported_file_type", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "import_failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// ExportCSV: GET /catalog/export.csv
func (h *CatalogHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalogo_template.csv"`)
	if err := h.Svc.ExportCSV(w); err != nil {
		// headers already written; log-and-bail is all that is left
		_ = err
	}
}

// ExportXLSX: GET /catalog/export.xlsx
func (h *CatalogHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.Svc.ExportXLSX()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "export_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalogo_template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
