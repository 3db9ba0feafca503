package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths and the mm → drawing unit scale factors.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as mm
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitMil              // thousandths of an inch
)

// Conversion constants.
const (
	PtToMm  = 25.4 / 72
	MmToPt  = 1.0 / PtToMm
	MilToMm = 0.0254
	MmToMil = 1.0 / MilToMm
)

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts the length to millimeters. Unit-less values are taken as mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	case UnitMil:
		return l.Value * MilToMm
	default:
		return l.Value
	}
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mil", UnitMil}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength parses strings like "297mm", "11in" or "420" (mm).
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无效长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ScaleFor returns the number of internal drawing units per millimeter for a
// named unit system: "mm" (1), "mil" (1 IU = 1 mil), "nm" (1 IU = 1 nm) or "pt".
func ScaleFor(name string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mm":
		return 1, nil
	case "mil", "mils":
		return MmToMil, nil
	case "nm":
		return 1e6, nil
	case "pt":
		return MmToPt, nil
	}
	return 0, fmt.Errorf("未知的绘图单位 %q", name)
}
