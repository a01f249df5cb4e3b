package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToHex(t *testing.T) {
	if got := ToHex(0, 0, 0); got != "#000000" {
		t.Errorf("expected #000000, got %s", got)
	}
	if got := ToHex(255, 10, 171); got != "#ff0aab" {
		t.Errorf("expected #ff0aab, got %s", got)
	}
}

func TestHexAndRGBRoundTrip(t *testing.T) {
	for r := 0; r <= 255; r++ {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 17 {
				c := NewColor(uint8(r), uint8(g), uint8(b), 255)

				hr, hg, hb, err := ParseHex(c.Hex())
				if err != nil {
					t.Fatalf("ParseHex(%s): %v", c.Hex(), err)
				}
				if hr != c.R || hg != c.G || hb != c.B {
					t.Fatalf("hex round trip of %v gave (%d, %d, %d)", c.RGB(), hr, hg, hb)
				}

				rr, rg, rb, err := ParseRGB(c.RGB())
				if err != nil {
					t.Fatalf("ParseRGB(%s): %v", c.RGB(), err)
				}
				if rr != c.R || rg != c.G || rb != c.B {
					t.Fatalf("rgb round trip of %v gave (%d, %d, %d)", c.RGB(), rr, rg, rb)
				}
			}
		}
	}
}

func TestParseRGBInvalid(t *testing.T) {
	for _, s := range []string{"", "rgb(1,2)", "rgb(1,2,3,4)", "rgb(256,0,0)", "rgb(-1,0,0)", "rgba(1,2,3)", "1,2,3"} {
		if _, _, _, err := ParseRGB(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("rgb(1, 2, 3)")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c != NewColor(1, 2, 3, 255) {
		t.Errorf("expected rgb(1, 2, 3) opaque, got %v alpha %d", c.RGB(), c.A)
	}

	c, err = ParseColor("336699")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c.Hex() != "#336699" {
		t.Errorf("expected #336699, got %s", c.Hex())
	}

	if _, err := ParseColor("#12345"); err == nil {
		t.Error("expected error for 5-digit hex")
	}
}

func TestLighterDarkerRounding(t *testing.T) {
	c := NewColor(100, 128, 250, 77)

	l := Lighter(c)
	if l != NewColor(120, 154, 255, 77) {
		t.Errorf("expected lighter rgb(120, 154, 255) alpha 77, got %s alpha %d", l.RGB(), l.A)
	}

	d := Darker(c)
	if d != NewColor(80, 102, 200, 77) {
		t.Errorf("expected darker rgb(80, 102, 200) alpha 77, got %s alpha %d", d.RGB(), d.A)
	}

	// 3*1.2 = 3.6 rounds up, 3*0.8 = 2.4 rounds down.
	if got := Lighter(NewColor(3, 3, 3, 255)); got.R != 4 {
		t.Errorf("expected 4, got %d", got.R)
	}
	if got := Darker(NewColor(3, 3, 3, 255)); got.R != 2 {
		t.Errorf("expected 2, got %d", got.R)
	}
}

// iterate applies f until the value stops changing and returns the fixed point.
func iterate(t *testing.T, c Color, f func(Color) Color) Color {
	t.Helper()
	for i := 0; i < 100; i++ {
		next := f(c)
		if next == c {
			return c
		}
		c = next
	}
	t.Fatalf("no fixed point reached from %s", c.RGB())
	return c
}

func TestLighterConvergesAndStaysClamped(t *testing.T) {
	for v := 0; v <= 255; v++ {
		c := NewColor(uint8(v), uint8(v), uint8(v), 42)
		fixed := iterate(t, c, Lighter)

		want := uint8(255)
		if v < 3 {
			// round(1.2v) == v for 0, 1 and 2
			want = uint8(v)
		}
		if fixed.R != want || fixed.G != want || fixed.B != want {
			t.Errorf("lighter from %d: expected %d, got %s", v, want, fixed.RGB())
		}
		if fixed.A != 42 {
			t.Errorf("lighter from %d: alpha changed to %d", v, fixed.A)
		}
		if Lighter(fixed) != fixed {
			t.Errorf("lighter from %d: not idempotent at %s", v, fixed.RGB())
		}
	}
}

func TestDarkerConvergesAndStaysClamped(t *testing.T) {
	for v := 0; v <= 255; v++ {
		c := NewColor(uint8(v), uint8(v), uint8(v), 42)
		fixed := iterate(t, c, Darker)

		if fixed.R > 2 {
			t.Errorf("darker from %d: expected at most 2, got %s", v, fixed.RGB())
		}
		if fixed.A != 42 {
			t.Errorf("darker from %d: alpha changed to %d", v, fixed.A)
		}
		if Darker(fixed) != fixed {
			t.Errorf("darker from %d: not idempotent at %s", v, fixed.RGB())
		}
	}
}

func TestColorStrings(t *testing.T) {
	c := NewColor(255, 0, 0, 255)
	if c.RGB() != "rgb(255, 0, 0)" {
		t.Errorf("expected rgb(255, 0, 0), got %s", c.RGB())
	}
	if c.HSL() != "hsl(0, 100%, 50%)" {
		t.Errorf("expected hsl(0, 100%%, 50%%), got %s", c.HSL())
	}
	if c.String() != "#ff0000" {
		t.Errorf("expected #ff0000, got %s", c.String())
	}
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(NewColor(0, 0, 255, 255))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"hex":"#0000ff"`) || !strings.Contains(s, `"rgb":"rgb(0, 0, 255)"`) {
		t.Errorf("expected derived fields in %s", s)
	}

	// Stale derived strings are ignored in favour of the channels.
	var c Color
	if err := json.Unmarshal([]byte(`{"r":1,"g":2,"b":3,"a":4,"hex":"#ffffff"}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Hex() != "#010203" || c.A != 4 {
		t.Errorf("expected #010203 alpha 4, got %s alpha %d", c.Hex(), c.A)
	}
}
