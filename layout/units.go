package layout

import (
	"strconv"
	"strings"

	"github.com/ByLCY/duizhao/errs"
)

// This file defines unit-safe types and helpers for lengths and line spacing.
// All layout arithmetic happens in points; other units only appear in manuscripts.

// Unit represents the unit of a length value as written in a manuscript.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, read as points for lengths
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

// ptPer is the size of one unit in points.
var ptPer = map[Unit]float64{
	UnitNone: 1,
	UnitPT:   1,
	UnitMM:   MmToPt,
	UnitCM:   10 * MmToPt,
	UnitIN:   72,
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// To converts this length to the target unit.
func (l Length) To(target Unit) float64 {
	from, ok := ptPer[l.Unit]
	if !ok {
		return l.Value
	}
	to, ok := ptPer[target]
	if !ok || to == 0 {
		return l.Value
	}
	return l.Value * from / to
}

func (l Length) ToPT() float64 { return l.To(UnitPT) }

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength parses "12pt", "20mm", "1.5cm", "1in" or a bare number (points).
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, errs.Configf("units", "长度为空")
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
		return Length{}, errs.Configf("units", "无法解析长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height values.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (1.4, 1.4x) or an absolute length (18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "1.4", "1.4x" as factors and values with a length unit as absolute.
func ParseLineHeight(value string) (LineHeightSpec, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeightSpec{}, errs.Configf("units", "无法解析行高 %q", value)
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, nil
}

// Resolve computes the absolute line height in the target unit for the given font size.
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.4
	}
}

// Multiplier expresses the line height as a factor of fontSize (in points).
func (s LineHeightSpec) Multiplier(fontSize float64) float64 {
	if s.Kind == LineHeightFactor {
		return s.Factor
	}
	if fontSize <= 0 {
		return 0
	}
	return s.Resolve(Length{Value: fontSize, Unit: UnitPT}, UnitPT) / fontSize
}
