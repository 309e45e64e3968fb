package domain

import (
	"fmt"
	"math"
)

// QuantizeScale maps a continuous domain onto a discrete list of colors by
// splitting [Min, Max] into len(Colors) equal-width buckets.
type QuantizeScale struct {
	Min    float64
	Max    float64
	Colors []string
}

// Color returns the color of the bucket holding v. Values outside the domain
// clamp to the first or last bucket.
func (s QuantizeScale) Color(v float64) string {
	n := len(s.Colors)
	if n == 0 {
		return ""
	}
	if s.Max <= s.Min {
		return s.Colors[0]
	}
	i := int(math.Floor(float64(n) * (v - s.Min) / (s.Max - s.Min)))
	return s.Colors[max(0, min(n-1, i))]
}

// Variant bundles the visual semantics of one source type.
type Variant struct {
	Type  SourceType
	Scale QuantizeScale
	label func(value int, locale string) string
}

// Label renders the tooltip text for value on day d.
func (v Variant) Label(d Date, value int, locale string) string {
	return FormatDate(d, DateNumeric, locale) + ": " + v.label(value, locale)
}

// Palette resolves source types to variants. Unknown types get the fallback.
type Palette struct {
	variants map[SourceType]Variant
	fallback Variant
}

// NewPalette returns the palette with the advisory, radiation and binary
// variants registered.
func NewPalette() *Palette {
	p := &Palette{
		variants: make(map[SourceType]Variant),
		fallback: binaryVariant(),
	}
	p.Register(advisoryVariant())
	p.Register(radiationVariant())
	return p
}

// Register adds or replaces the variant for v.Type.
func (p *Palette) Register(v Variant) {
	if v.label == nil {
		v.label = plainLabel
	}
	p.variants[v.Type] = v
}

// NewVariant builds a variant with a custom label function. A nil label
// renders the bare value.
func NewVariant(t SourceType, scale QuantizeScale, label func(value int, locale string) string) Variant {
	if label == nil {
		label = plainLabel
	}
	return Variant{Type: t, Scale: scale, label: label}
}

// For returns the variant of t, or the binary fallback for unknown types.
func (p *Palette) For(t SourceType) Variant {
	if v, ok := p.variants[t]; ok {
		return v
	}
	return p.fallback
}

// ColorFor returns the display color of value for a source type.
func (p *Palette) ColorFor(t SourceType, value int) string {
	return p.For(t).Scale.Color(float64(value))
}

// LabelFor returns the tooltip text of value on day d for a source type.
func (p *Palette) LabelFor(t SourceType, d Date, value int, locale string) string {
	return p.For(t).Label(d, value, locale)
}

func advisoryVariant() Variant {
	return Variant{
		Type: TypeAdvisory,
		Scale: QuantizeScale{
			Min:    0,
			Max:    3,
			Colors: []string{"#FFFFFF", "#FFCDD2", "#E57373", "#F44336"},
		},
		label: func(value int, locale string) string {
			if locale == LocaleEnglish {
				return fmt.Sprintf("advisory level %d", value)
			}
			return fmt.Sprintf("НМУ %d степени опасности", value)
		},
	}
}

// radiationVariant spreads 101 buckets over [0, 100] so each integer reading
// lands in its own bucket: 0 is white, up to 20 green, up to 50 yellow, red
// above that.
func radiationVariant() Variant {
	colors := make([]string, 101)
	for i := range colors {
		switch {
		case i == 0:
			colors[i] = "#FFFFFF"
		case i <= 20:
			colors[i] = "#00FF00"
		case i <= 50:
			colors[i] = "#FFFF00"
		default:
			colors[i] = "#FF0000"
		}
	}
	return Variant{
		Type:  TypeRadiation,
		Scale: QuantizeScale{Min: 0, Max: 100, Colors: colors},
		label: func(value int, locale string) string {
			if locale == LocaleEnglish {
				return fmt.Sprintf("background radiation %d µR/h", value)
			}
			return fmt.Sprintf("Фоновая радиация %d мк/Рч", value)
		},
	}
}

func binaryVariant() Variant {
	return Variant{
		Type:  TypeDefault,
		Scale: QuantizeScale{Min: 0, Max: 1, Colors: []string{"#FFFFFF", "#000000"}},
		label: plainLabel,
	}
}

func plainLabel(value int, _ string) string {
	return fmt.Sprintf("%d", value)
}
