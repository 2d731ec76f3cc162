package transformer

import (
	"slices"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/wireframe"
)

const (
	DefaultRotatorOffset = 28.0
	DefaultSkewOffset    = 20.0
)

// Options is the configuration surface of a Transformer. Angles are in
// radians. A Transformer holds a copy; change it with SetOptions or Update.
type Options struct {
	// BoxScalingEnabled routes drags near the wireframe edges to scaling.
	BoxScalingEnabled bool `json:"boxScalingEnabled" toml:"box_scaling_enabled"`
	// BoxRotationEnabled routes drags just outside the corners to rotation.
	BoxRotationEnabled bool `json:"boxRotationEnabled" toml:"box_rotation_enabled"`

	CenteredScaling bool `json:"centeredScaling" toml:"centered_scaling"`

	RotateEnabled    bool `json:"rotateEnabled" toml:"rotate_enabled"`
	ScaleEnabled     bool `json:"scaleEnabled" toml:"scale_enabled"`
	SkewEnabled      bool `json:"skewEnabled" toml:"skew_enabled"`
	TranslateEnabled bool `json:"translateEnabled" toml:"translate_enabled"`

	LockAspectRatio bool `json:"lockAspectRatio" toml:"lock_aspect_ratio"`
	// AllowFlip lets a scale drag past the anchor mirror the group.
	AllowFlip bool    `json:"allowFlip" toml:"allow_flip"`
	MinSize   float64 `json:"minSize" toml:"min_size"`

	RotationSnaps         []float64 `json:"rotationSnaps" toml:"rotation_snaps"`
	RotationSnapTolerance float64   `json:"rotationSnapTolerance" toml:"rotation_snap_tolerance"`
	SkewSnaps             []float64 `json:"skewSnaps" toml:"skew_snaps"`
	SkewSnapTolerance     float64   `json:"skewSnapTolerance" toml:"skew_snap_tolerance"`

	// TransientGroupTilt resets the box to axis-aligned after a rotation
	// commit. A single-member group then takes the member's own rotation.
	TransientGroupTilt bool `json:"transientGroupTilt" toml:"transient_group_tilt"`

	RotatorOffset     float64 `json:"rotatorOffset" toml:"rotator_offset"`
	SkewOffset        float64 `json:"skewOffset" toml:"skew_offset"`
	EdgeTolerance     float64 `json:"edgeTolerance" toml:"edge_tolerance"`
	RotationTolerance float64 `json:"rotationTolerance" toml:"rotation_tolerance"`

	HandleStyle    style.HandleOverride        `json:"handleStyle" toml:"handle_style"`
	WireframeStyle style.WireframeOverride     `json:"wireframeStyle" toml:"wireframe_style"`
	ColorTheme     style.ThemeOverride         `json:"colorTheme" toml:"color_theme"`
	RotatorAnchor  style.RotatorAnchorOverride `json:"rotatorAnchor" toml:"rotator_anchor"`
}

// DefaultOptions enables scaling, rotation and translation with flipping
// allowed.
func DefaultOptions() Options {
	return Options{
		RotateEnabled:     true,
		ScaleEnabled:      true,
		TranslateEnabled:  true,
		AllowFlip:         true,
		MinSize:           geometry.DefaultMinSize,
		RotatorOffset:     DefaultRotatorOffset,
		SkewOffset:        DefaultSkewOffset,
		EdgeTolerance:     wireframe.DefaultEdgeTolerance,
		RotationTolerance: wireframe.DefaultRotationTolerance,
	}
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	o.RotationSnaps = slices.Clone(o.RotationSnaps)
	o.SkewSnaps = slices.Clone(o.SkewSnaps)
	return o
}

// Theme returns the effective color theme.
func (o Options) Theme() style.ColorTheme {
	return style.MergeTheme(style.DefaultTheme(), o.ColorTheme)
}

// Constraints returns the drag constraints the options describe.
func (o Options) Constraints() geometry.Constraints {
	return geometry.Constraints{
		CenteredScaling:       o.CenteredScaling,
		LockAspectRatio:       o.LockAspectRatio,
		AllowFlip:             o.AllowFlip,
		MinSize:               o.MinSize,
		RotationSnaps:         o.RotationSnaps,
		RotationSnapTolerance: o.RotationSnapTolerance,
		SkewSnaps:             o.SkewSnaps,
		SkewSnapTolerance:     o.SkewSnapTolerance,
		Offsets:               o.Offsets(),
	}
}

// Offsets returns the distances of the outside handles.
func (o Options) Offsets() geometry.Offsets {
	return geometry.Offsets{Rotator: o.RotatorOffset, Skew: o.SkewOffset}
}

// HandleEnabled reports whether h is shown and draggable.
func (o Options) HandleEnabled(h geometry.Handle) bool {
	switch h.Kind() {
	case geometry.KindCorner, geometry.KindEdge:
		return o.ScaleEnabled
	case geometry.KindRotator:
		return o.RotateEnabled
	case geometry.KindSkew:
		return o.SkewEnabled
	}
	return false
}

// Routing returns the wireframe drag routing.
func (o Options) Routing() wireframe.Routing {
	return wireframe.Routing{
		BoxScaling:        o.BoxScalingEnabled && o.ScaleEnabled,
		BoxRotation:       o.BoxRotationEnabled && o.RotateEnabled,
		Translate:         o.TranslateEnabled,
		EdgeTolerance:     o.EdgeTolerance,
		RotationTolerance: o.RotationTolerance,
	}
}
