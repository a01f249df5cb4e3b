package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a picked RGBA value. The hex and rgb forms are derived on demand so
// a Color can never carry strings that disagree with its channels.
type Color struct {
	R, G, B, A uint8
}

// NewColor builds a Color from its channels.
func NewColor(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ToHex formats the channels as a lowercase "#rrggbb" string.
func ToHex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Hex returns the lowercase "#rrggbb" form.
func (c Color) Hex() string {
	return ToHex(c.R, c.G, c.B)
}

// RGB returns the "rgb(r, g, b)" form.
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// HSL returns the "hsl(h, s%, l%)" form, rounded to whole units.
func (c Color) HSL() string {
	h, s, l := c.colorful().Hsl()
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", h, s*100, l*100)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Lighter scales r, g and b by 1.2, rounding and clamping to 255.
func Lighter(c Color) Color {
	return Color{R: lighten(c.R), G: lighten(c.G), B: lighten(c.B), A: c.A}
}

// Darker scales r, g and b by 0.8, rounding and clamping to 0.
func Darker(c Color) Color {
	return Color{R: darken(c.R), G: darken(c.G), B: darken(c.B), A: c.A}
}

// round(v*1.2) in integer arithmetic: 1.2v never lands on a .5 tie.
func lighten(v uint8) uint8 {
	n := (12*int(v) + 5) / 10
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// round(v*0.8); never below zero, so only the upper clamp matters for lighten.
func darken(v uint8) uint8 {
	return uint8((8*int(v) + 5) / 10)
}

// ParseHex parses "#rrggbb" or "#rgb" into r, g, b.
func ParseHex(s string) (r, g, b uint8, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	col, err := colorful.Hex(s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b = col.RGB255()
	return r, g, b, nil
}

// ParseRGB parses "rgb(r, g, b)"; whitespace around the components is ignored.
func ParseRGB(s string) (r, g, b uint8, err error) {
	body := strings.TrimSpace(s)
	if !strings.HasPrefix(body, "rgb(") || !strings.HasSuffix(body, ")") {
		return 0, 0, 0, fmt.Errorf("invalid rgb color %q: expected rgb(r, g, b)", s)
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "rgb("), ")")

	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid rgb color %q: expected 3 components, got %d", s, len(parts))
	}

	var vals [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid rgb component %q in %q: %w", p, s, err)
		}
		vals[i] = uint8(v)
	}
	return vals[0], vals[1], vals[2], nil
}

// ParseColor accepts either a hex or an rgb() string and returns an opaque Color.
func ParseColor(s string) (Color, error) {
	parse := ParseHex
	if strings.HasPrefix(strings.TrimSpace(s), "rgb(") {
		parse = ParseRGB
	}
	r, g, b, err := parse(s)
	if err != nil {
		return Color{}, err
	}
	return NewColor(r, g, b, 255), nil
}

type colorJSON struct {
	R   uint8  `json:"r"`
	G   uint8  `json:"g"`
	B   uint8  `json:"b"`
	A   uint8  `json:"a"`
	Hex string `json:"hex,omitempty"`
	RGB string `json:"rgb,omitempty"`
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(colorJSON{R: c.R, G: c.G, B: c.B, A: c.A, Hex: c.Hex(), RGB: c.RGB()})
}

// UnmarshalJSON reads the channels only; hex and rgb are recomputed.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw colorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = NewColor(raw.R, raw.G, raw.B, raw.A)
	return nil
}
