package document

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/typeid"
)

// sceneFile is the TOML layout of a scene. Angles are in degrees.
type sceneFile struct {
	ID         string       `toml:"id"`
	Name       string       `toml:"name"`
	Width      int          `toml:"width"`
	Height     int          `toml:"height"`
	Background string       `toml:"background"`
	Objects    []objectFile `toml:"object"`
}

type objectFile struct {
	ID     string     `toml:"id"`
	Name   string     `toml:"name"`
	Type   ObjectType `toml:"type"`
	Hidden bool       `toml:"hidden"`
	Locked bool       `toml:"locked"`

	X        float64  `toml:"x"`
	Y        float64  `toml:"y"`
	ScaleX   *float64 `toml:"scale_x"`
	ScaleY   *float64 `toml:"scale_y"`
	Rotation float64  `toml:"rotation"`
	SkewX    float64  `toml:"skew_x"`
	SkewY    float64  `toml:"skew_y"`
	PivotX   float64  `toml:"pivot_x"`
	PivotY   float64  `toml:"pivot_y"`

	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	RX     float64 `toml:"rx"`
	RY     float64 `toml:"ry"`
	// Path uses SVG-like syntax limited to absolute M, L, Q, C and Z.
	Path string `toml:"path"`

	Fill        string   `toml:"fill"`
	Stroke      string   `toml:"stroke"`
	StrokeWidth float64  `toml:"stroke_width"`
	Opacity     *float64 `toml:"opacity"`
}

// LoadSceneTOML reads a scene from a TOML file.
func LoadSceneTOML(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()
	return DecodeSceneTOML(f)
}

// DecodeSceneTOML parses a scene. Unknown keys are rejected, missing ids
// are generated and the result is validated.
func DecodeSceneTOML(r io.Reader) (*Scene, error) {
	var sf sceneFile
	md, err := toml.NewDecoder(r).Decode(&sf)
	if err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode scene: unknown key %q", undecoded[0].String())
	}

	s := &Scene{
		ID:         sf.ID,
		Name:       sf.Name,
		Width:      sf.Width,
		Height:     sf.Height,
		Background: sf.Background,
		Objects:    make([]*Object, 0, len(sf.Objects)),
	}
	if s.ID == "" {
		s.ID = typeid.NewSceneID()
	}
	if s.Width == 0 || s.Height == 0 {
		s.Width, s.Height = 1280, 720
	}

	for i, of := range sf.Objects {
		o, err := of.object()
		if err != nil {
			return nil, fmt.Errorf("decode object %d: %w", i, err)
		}
		s.Objects = append(s.Objects, o)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate scene: %w", err)
	}
	return s, nil
}

func (of objectFile) object() (*Object, error) {
	o := &Object{
		ID:      of.ID,
		Name:    of.Name,
		Type:    of.Type,
		Visible: !of.Hidden,
		Locked:  of.Locked,
		Transform: geometry.Transform{
			X:        of.X,
			Y:        of.Y,
			ScaleX:   orDefault(of.ScaleX, 1),
			ScaleY:   orDefault(of.ScaleY, 1),
			Rotation: geometry.Radians(of.Rotation),
			SkewX:    geometry.Radians(of.SkewX),
			SkewY:    geometry.Radians(of.SkewY),
			PivotX:   of.PivotX,
			PivotY:   of.PivotY,
		},
		Style: Style{
			Fill:        of.Fill,
			Stroke:      of.Stroke,
			StrokeWidth: of.StrokeWidth,
			Opacity:     orDefault(of.Opacity, 1),
		},
		Width:  of.Width,
		Height: of.Height,
		RX:     of.RX,
		RY:     of.RY,
	}
	if o.ID == "" {
		o.ID = typeid.NewObjectID()
	}
	if of.Path != "" {
		cmds, err := ParsePath(of.Path)
		if err != nil {
			return nil, err
		}
		o.Commands = cmds
	}
	return o, nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// ParsePath parses a whitespace or comma separated path such as
// "M 0 150 L 100 0 L 200 150 Z".
func ParsePath(src string) ([]surface.PathCommand, error) {
	fields := strings.Fields(strings.ReplaceAll(src, ",", " "))
	arity := map[string]int{"M": 2, "L": 2, "Q": 4, "C": 6, "Z": 0}

	var out []surface.PathCommand
	for i := 0; i < len(fields); {
		op := strings.ToUpper(fields[i])
		n, ok := arity[op]
		if !ok {
			return nil, fmt.Errorf("parse path: unknown command %q", fields[i])
		}
		if i+n >= len(fields) {
			return nil, fmt.Errorf("parse path: %s needs %d numbers", op, n)
		}
		cmd := surface.PathCommand{op}
		for j := 1; j <= n; j++ {
			v, err := strconv.ParseFloat(fields[i+j], 64)
			if err != nil {
				return nil, fmt.Errorf("parse path: %w", err)
			}
			cmd = append(cmd, v)
		}
		out = append(out, cmd)
		i += n + 1
	}
	return out, nil
}
