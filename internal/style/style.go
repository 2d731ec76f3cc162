// Package style holds the visual configuration of the transformer. Every
// style is a plain value; partial overrides are merged over defaults with
// the Merge functions and the result replaces the previous style wholesale.
package style

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorTheme supplies the default colors handles and the wireframe derive
// from.
type ColorTheme struct {
	Primary    string `json:"primary" toml:"primary"`
	Secondary  string `json:"secondary" toml:"secondary"`
	Background string `json:"background" toml:"background"`
	Accent     string `json:"accent" toml:"accent"`
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() ColorTheme {
	return ColorTheme{
		Primary:    "#1e88e5",
		Secondary:  "#333333",
		Background: "#ffffff",
		Accent:     "#ff9800",
	}
}

// HandleStyle is the look of one handle. Radius is the single size
// parameter: pill length, glow halo and rotator icon all scale with it.
type HandleStyle struct {
	Radius        float64 `json:"radius" toml:"radius"`
	Fill          string  `json:"fill" toml:"fill"`
	Stroke        string  `json:"stroke" toml:"stroke"`
	StrokeWidth   float64 `json:"strokeWidth" toml:"stroke_width"`
	Alpha         float64 `json:"alpha" toml:"alpha"`
	Arrow         string  `json:"arrow" toml:"arrow"`
	GlowColor     string  `json:"glowColor" toml:"glow_color"`
	GlowIntensity float64 `json:"glowIntensity" toml:"glow_intensity"`
	// PillAspect is the edge pill's length over its thickness.
	PillAspect float64 `json:"pillAspect" toml:"pill_aspect"`
	// IconScale sizes the rotator icon relative to the handle diameter.
	IconScale float64 `json:"iconScale" toml:"icon_scale"`
}

// DefaultHandleStyle derives the handle style from theme.
func DefaultHandleStyle(theme ColorTheme) HandleStyle {
	return HandleStyle{
		Radius:        6,
		Fill:          theme.Background,
		Stroke:        theme.Primary,
		StrokeWidth:   1.5,
		Alpha:         1,
		Arrow:         theme.Secondary,
		GlowColor:     Lighten(theme.Primary, 0.4),
		GlowIntensity: 0,
		PillAspect:    2.5,
		IconScale:     1.6,
	}
}

// HandleOverride is a partial HandleStyle. Nil fields keep the default.
type HandleOverride struct {
	Radius        *float64 `json:"radius,omitempty" toml:"radius"`
	Fill          *string  `json:"fill,omitempty" toml:"fill"`
	Stroke        *string  `json:"stroke,omitempty" toml:"stroke"`
	StrokeWidth   *float64 `json:"strokeWidth,omitempty" toml:"stroke_width"`
	Alpha         *float64 `json:"alpha,omitempty" toml:"alpha"`
	Arrow         *string  `json:"arrow,omitempty" toml:"arrow"`
	GlowColor     *string  `json:"glowColor,omitempty" toml:"glow_color"`
	GlowIntensity *float64 `json:"glowIntensity,omitempty" toml:"glow_intensity"`
	PillAspect    *float64 `json:"pillAspect,omitempty" toml:"pill_aspect"`
	IconScale     *float64 `json:"iconScale,omitempty" toml:"icon_scale"`
}

// MergeHandle applies o over d.
func MergeHandle(d HandleStyle, o HandleOverride) HandleStyle {
	set(&d.Radius, o.Radius)
	set(&d.Fill, o.Fill)
	set(&d.Stroke, o.Stroke)
	set(&d.StrokeWidth, o.StrokeWidth)
	set(&d.Alpha, o.Alpha)
	set(&d.Arrow, o.Arrow)
	set(&d.GlowColor, o.GlowColor)
	set(&d.GlowIntensity, o.GlowIntensity)
	set(&d.PillAspect, o.PillAspect)
	set(&d.IconScale, o.IconScale)
	return d
}

// Validate reports invalid colors or sizes.
func (s HandleStyle) Validate() error {
	var errs []error
	if s.Radius <= 0 {
		errs = append(errs, fmt.Errorf("radius must be positive, got %v", s.Radius))
	}
	errs = append(errs, checkColor("fill", s.Fill), checkColor("stroke", s.Stroke), checkColor("arrow", s.Arrow), checkColor("glowColor", s.GlowColor))
	return errors.Join(errs...)
}

// WireframeStyle is the look of the bounding outline.
type WireframeStyle struct {
	Color     string  `json:"color" toml:"color"`
	Thickness float64 `json:"thickness" toml:"thickness"`
	Alpha     float64 `json:"alpha" toml:"alpha"`
}

// DefaultWireframeStyle derives the wireframe style from theme.
func DefaultWireframeStyle(theme ColorTheme) WireframeStyle {
	return WireframeStyle{Color: theme.Primary, Thickness: 1.5, Alpha: 1}
}

// WireframeOverride is a partial WireframeStyle.
type WireframeOverride struct {
	Color     *string  `json:"color,omitempty" toml:"color"`
	Thickness *float64 `json:"thickness,omitempty" toml:"thickness"`
	Alpha     *float64 `json:"alpha,omitempty" toml:"alpha"`
}

// MergeWireframe applies o over d.
func MergeWireframe(d WireframeStyle, o WireframeOverride) WireframeStyle {
	set(&d.Color, o.Color)
	set(&d.Thickness, o.Thickness)
	set(&d.Alpha, o.Alpha)
	return d
}

// Validate reports an invalid color.
func (s WireframeStyle) Validate() error {
	return checkColor("color", s.Color)
}

// LineKind is the stroke pattern of the rotator anchor.
type LineKind string

const (
	LineSolid  LineKind = "solid"
	LineDashed LineKind = "dashed"
	LineDotted LineKind = "dotted"
)

// RotatorAnchorConfig configures the connector between the wireframe and
// the rotator handle.
type RotatorAnchorConfig struct {
	Enabled   bool     `json:"enabled" toml:"enabled"`
	Line      LineKind `json:"line" toml:"line"`
	Color     string   `json:"color" toml:"color"`
	Thickness float64  `json:"thickness" toml:"thickness"`
	Alpha     float64  `json:"alpha" toml:"alpha"`
	// StartPosition moves the start of the line from the top edge (0)
	// toward the rotator (1).
	StartPosition float64 `json:"startPosition" toml:"start_position"`
}

// DefaultRotatorAnchor derives the anchor configuration from theme.
func DefaultRotatorAnchor(theme ColorTheme) RotatorAnchorConfig {
	return RotatorAnchorConfig{
		Enabled:   true,
		Line:      LineSolid,
		Color:     theme.Primary,
		Thickness: 1,
		Alpha:     1,
	}
}

// RotatorAnchorOverride is a partial RotatorAnchorConfig.
type RotatorAnchorOverride struct {
	Enabled       *bool     `json:"enabled,omitempty" toml:"enabled"`
	Line          *LineKind `json:"line,omitempty" toml:"line"`
	Color         *string   `json:"color,omitempty" toml:"color"`
	Thickness     *float64  `json:"thickness,omitempty" toml:"thickness"`
	Alpha         *float64  `json:"alpha,omitempty" toml:"alpha"`
	StartPosition *float64  `json:"startPosition,omitempty" toml:"start_position"`
}

// MergeRotatorAnchor applies o over d. StartPosition is clamped to [0, 1].
func MergeRotatorAnchor(d RotatorAnchorConfig, o RotatorAnchorOverride) RotatorAnchorConfig {
	set(&d.Enabled, o.Enabled)
	set(&d.Line, o.Line)
	set(&d.Color, o.Color)
	set(&d.Thickness, o.Thickness)
	set(&d.Alpha, o.Alpha)
	set(&d.StartPosition, o.StartPosition)
	d.StartPosition = min(max(d.StartPosition, 0), 1)
	return d
}

// Dash returns the dash pattern for the configured line kind.
func (c RotatorAnchorConfig) Dash() []float64 {
	switch c.Line {
	case LineDashed:
		return []float64{6 * c.Thickness, 4 * c.Thickness}
	case LineDotted:
		return []float64{c.Thickness, 3 * c.Thickness}
	}
	return nil
}

// Validate reports an invalid color or line kind.
func (c RotatorAnchorConfig) Validate() error {
	var errs []error
	switch c.Line {
	case LineSolid, LineDashed, LineDotted:
	default:
		errs = append(errs, fmt.Errorf("unknown line kind %q", c.Line))
	}
	errs = append(errs, checkColor("color", c.Color))
	return errors.Join(errs...)
}

// ThemeOverride is a partial ColorTheme.
type ThemeOverride struct {
	Primary    *string `json:"primary,omitempty" toml:"primary"`
	Secondary  *string `json:"secondary,omitempty" toml:"secondary"`
	Background *string `json:"background,omitempty" toml:"background"`
	Accent     *string `json:"accent,omitempty" toml:"accent"`
}

// MergeTheme applies o over d.
func MergeTheme(d ColorTheme, o ThemeOverride) ColorTheme {
	set(&d.Primary, o.Primary)
	set(&d.Secondary, o.Secondary)
	set(&d.Background, o.Background)
	set(&d.Accent, o.Accent)
	return d
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Ptr returns a pointer to v, for building overrides.
func Ptr[T any](v T) *T { return &v }

// NormalizeColor parses a hex color and returns it as lowercase "#rrggbb".
func NormalizeColor(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("parse color %q: %w", s, err)
	}
	return c.Clamped().Hex(), nil
}

// Lighten blends a hex color toward white by t in Lab space. Invalid input
// is returned unchanged.
func Lighten(hex string, t float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, t).Clamped().Hex()
}

func checkColor(field, s string) error {
	if _, err := colorful.Hex(s); err != nil {
		return fmt.Errorf("%s: invalid color %q", field, s)
	}
	return nil
}
