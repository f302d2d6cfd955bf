package services

import (
	"fmt"
	"math"
	"strings"
)

// Catalog refs emitted by the BOM generator. They exist in the seeded base
// catalog so suggested lines can be turned into quote lines directly.
const (
	refKeystone       = "KEYSTONE"
	refDoubleOutlet   = "ROSETA_DOBLE"
	refRackPatchCord  = "LATIGUILLO_ARMARIO"
	refCableReel      = "CABLE_CAT6_305M"
	refRackPDU        = "RACK_PDU"
	refRackBoltKit    = "RACK_KIT_M6"
	refRackCableGuide = "RACK_GUIA_PASACABLES"
)

// reelMeters is the purchasing unit for cable: one 305 m spool.
const reelMeters = 305

// rackSizes are the available rack tiers in units, smallest first.
var rackSizes = []int{6, 9, 12, 18, 24}

// ConduitMeasure is one conduit type with its measured quantity. Conduits are
// kept as an ordered slice, not a map, so the generated lines come out in the
// order the caller entered them.
type ConduitMeasure struct {
	Type string  `json:"type"`
	Qty  float64 `json:"qty"`
}

// Measurements is the site survey input for BOM generation. PortReserve and
// CableMargin are fractions (0.2 = 20%). CableMetersTotal, when set, wins over
// CableMetersPerPoint; with neither set the cable length is 0.
type Measurements struct {
	RJ45Points          int
	PortReserve         float64
	CableMetersPerPoint *float64
	CableMetersTotal    *float64
	CableMargin         float64
	WifiAccessPoints    int
	EstimatedRackUnits  int
	Conduits            []ConduitMeasure
}

// BomLine is one suggested part. Reason is advisory display text only;
// nothing computes from it.
type BomLine struct {
	Ref    string `json:"ref"`
	Qty    int    `json:"qty"`
	Reason string `json:"reason"`
}

// BomGenerator derives a suggested parts list from measurements. Purely
// advisory: it never fails, and bad input degrades to empty output rather
// than blocking the user.
type BomGenerator struct{}

func NewBomGenerator() *BomGenerator { return &BomGenerator{} }

// Generate appends suggestions in a fixed order: points material, patch
// panel, patch cords, cable reels, switch, rack with accessories, conduits.
func (g *BomGenerator) Generate(m Measurements) []BomLine {
	var lines []BomLine

	points := m.RJ45Points
	if points < 0 {
		points = 0
	}
	ports := int(math.Ceil(float64(points) * (1 + m.PortReserve)))

	if points > 0 {
		lines = append(lines, BomLine{Ref: refKeystone, Qty: points, Reason: "Uno por punto RJ45"})
		lines = append(lines, BomLine{Ref: refDoubleOutlet, Qty: ceilDiv(points, 2), Reason: "Dobles, 2 tomas"})
	}

	if ports > 0 {
		panel := choosePatchPanel(ports)
		lines = append(lines, BomLine{
			Ref:    fmt.Sprintf("PATCH_PANEL_%d", panel),
			Qty:    1,
			Reason: fmt.Sprintf("Para %d puertos con reserva", ports),
		})
		lines = append(lines, BomLine{Ref: refRackPatchCord, Qty: ports, Reason: "Uno por puerto en rack"})
	}

	if meters := cableMeters(m); meters > 0 {
		withMargin := int(math.Ceil(meters * (1 + m.CableMargin)))
		reels := ceilDiv(withMargin, reelMeters)
		lines = append(lines, BomLine{
			Ref:    refCableReel,
			Qty:    reels,
			Reason: fmt.Sprintf("%d m con margen en bobinas de 305m", withMargin),
		})
	}

	if ports > 0 {
		switchPorts := 24
		if ports > 24 {
			switchPorts = 48
		}
		ref := fmt.Sprintf("SWITCH_%d", switchPorts)
		reason := fmt.Sprintf("%d puertos con reserva", ports)
		if m.WifiAccessPoints > 0 {
			ref += "_POE"
			reason += " y WiFi APs"
		}
		lines = append(lines, BomLine{Ref: ref, Qty: 1, Reason: reason})
	}

	if m.EstimatedRackUnits > 0 {
		target := int(math.Ceil(float64(m.EstimatedRackUnits) * 1.2))
		lines = append(lines, BomLine{
			Ref:    fmt.Sprintf("RACK_%dU", chooseRackUnits(target)),
			Qty:    1,
			Reason: fmt.Sprintf("%dU + margen", m.EstimatedRackUnits),
		})
		for _, ref := range []string{refRackPDU, refRackBoltKit, refRackCableGuide} {
			lines = append(lines, BomLine{Ref: ref, Qty: 1, Reason: "Accesorio minimo"})
		}
	}

	for _, c := range m.Conduits {
		if c.Qty > 0 {
			lines = append(lines, BomLine{
				Ref:    strings.ToUpper("CANALETA_" + c.Type),
				Qty:    int(math.Ceil(c.Qty)),
				Reason: "Canaleta por tipo",
			})
		}
	}

	return lines
}

// cableMeters resolves the total cable length: an explicit total wins over
// meters-per-point, and with neither supplied the length is 0.
func cableMeters(m Measurements) float64 {
	if m.CableMetersTotal != nil {
		return *m.CableMetersTotal
	}
	if m.CableMetersPerPoint != nil {
		return *m.CableMetersPerPoint * float64(m.RJ45Points)
	}
	return 0
}

// choosePatchPanel picks the smallest standard panel that fits the port count.
func choosePatchPanel(ports int) int {
	switch {
	case ports <= 12:
		return 12
	case ports <= 24:
		return 24
	default:
		return 48
	}
}

// chooseRackUnits picks the smallest rack tier >= target, capping at the
// largest available size.
func chooseRackUnits(target int) int {
	for _, u := range rackSizes {
		if target <= u {
			return u
		}
	}
	return rackSizes[len(rackSizes)-1]
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// ParseMeasurements reads measurements from loosely typed form values.
// Parsing is deliberately permissive: any missing or malformed number becomes
// 0, because the BOM is a suggestion and must never block on bad input.
// Recognized keys: rj45_points, port_reserve, cable_m_per_point,
// cable_m_total, cable_margin, wifi_aps, rack_units.
func ParseMeasurements(values map[string]string, conduits []ConduitMeasure) Measurements {
	m := Measurements{
		RJ45Points:         parseInt(values["rj45_points"]),
		PortReserve:        parseFloat(values["port_reserve"], 0),
		CableMargin:        parseFloat(values["cable_margin"], 0),
		WifiAccessPoints:   parseInt(values["wifi_aps"]),
		EstimatedRackUnits: parseInt(values["rack_units"]),
	}
	if s, ok := values["cable_m_total"]; ok {
		v := parseFloat(s, 0)
		m.CableMetersTotal = &v
	} else if s, ok := values["cable_m_per_point"]; ok {
		v := parseFloat(s, 0)
		m.CableMetersPerPoint = &v
	}
	for _, c := range conduits {
		if c.Qty < 0 {
			c.Qty = 0
		}
		m.Conduits = append(m.Conduits, c)
	}
	return m
}

func parseInt(s string) int {
	v := int(parseFloat(s, 0))
	if v < 0 {
		return 0
	}
	return v
}
