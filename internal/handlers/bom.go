package handlers

import (
	"net/http"

	"github.com/orzalan/quoting-app/internal/httpx"
	"github.com/orzalan/quoting-app/internal/services"
)

type BomHandler struct {
	Gen *services.BomGenerator
}

func NewBomHandler(gen *services.BomGenerator) *BomHandler { return &BomHandler{Gen: gen} }

// bomReq mirrors the estimation screen: numeric fields arrive as free text
// and parse permissively, so a stray comma or blank never blocks the
// suggestion list.
type bomReq struct {
	RJ45Points       string                    `json:"rj45_points"`
	PortReserve      string                    `json:"port_reserve"`
	CableMPerPoint   *string                   `json:"cable_m_per_point"`
	CableMTotal      *string                   `json:"cable_m_total"`
	CableMargin      string                    `json:"cable_margin"`
	WifiAPs          string                    `json:"wifi_aps"`
	RackUnits        string                    `json:"rack_units"`
	Conduits         []services.ConduitMeasure `json:"conduits"`
}

// Generate: POST /bom – advisory parts list from site measurements.
func (h *BomHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req bomReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	values := map[string]string{
		"rj45_points":  req.RJ45Points,
		"port_reserve": req.PortReserve,
		"cable_margin": req.CableMargin,
		"wifi_aps":     req.WifiAPs,
		"rack_units":   req.RackUnits,
	}
	if req.CableMTotal != nil {
		values["cable_m_total"] = *req.CableMTotal
	}
	if req.CableMPerPoint != nil {
		values["cable_m_per_point"] = *req.CableMPerPoint
	}
	m := services.ParseMeasurements(values, req.Conduits)
	lines := h.Gen.Generate(m)
	if lines == nil {
		lines = []services.BomLine{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": lines})
}
