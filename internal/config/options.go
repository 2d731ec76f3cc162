package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/inamate/transformer/internal/geometry"
	"github.com/inamate/transformer/internal/nested"
	"github.com/inamate/transformer/internal/style"
	"github.com/inamate/transformer/internal/transformer"
)

// Options is the content of an options file. Angles in the file are in
// degrees; the decoded values are radians.
type Options struct {
	Transformer transformer.Options `toml:"transformer"`
	Nested      NestedOptions       `toml:"nested"`
}

type NestedOptions struct {
	Enabled bool `toml:"enabled"`
	nested.Options
}

// DefaultOptions is used when no options file is configured.
func DefaultOptions() Options {
	return Options{
		Transformer: transformer.DefaultOptions(),
		Nested:      NestedOptions{Options: nested.DefaultOptions()},
	}
}

// LoadOptions reads an options file. Keys that are absent keep their
// defaults.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("open options: %w", err)
	}
	defer f.Close()
	return DecodeOptions(f)
}

func DecodeOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.NewDecoder(r).Decode(&opts)
	if err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("decode options: unknown key %q", undecoded[0].String())
	}

	t := &opts.Transformer
	t.RotationSnaps = geometry.RadiansAll(t.RotationSnaps)
	t.RotationSnapTolerance = geometry.Radians(t.RotationSnapTolerance)
	t.SkewSnaps = geometry.RadiansAll(t.SkewSnaps)
	t.SkewSnapTolerance = geometry.Radians(t.SkewSnapTolerance)

	if err := validate(opts); err != nil {
		return Options{}, fmt.Errorf("validate options: %w", err)
	}
	return opts, nil
}

func validate(o Options) error {
	t := o.Transformer
	theme := t.Theme()
	var errs []error
	for _, c := range []string{theme.Primary, theme.Secondary, theme.Background, theme.Accent} {
		if _, err := style.NormalizeColor(c); err != nil {
			errs = append(errs, fmt.Errorf("color_theme: %w", err))
		}
	}
	errs = append(errs,
		style.MergeHandle(style.DefaultHandleStyle(theme), t.HandleStyle).Validate(),
		style.MergeWireframe(style.DefaultWireframeStyle(theme), t.WireframeStyle).Validate(),
		style.MergeRotatorAnchor(style.DefaultRotatorAnchor(theme), t.RotatorAnchor).Validate(),
	)
	if t.MinSize < 0 {
		errs = append(errs, fmt.Errorf("min_size must not be negative, got %v", t.MinSize))
	}
	for _, c := range []string{o.Nested.FocusedBorderColor, o.Nested.BorderColor} {
		if _, err := style.NormalizeColor(c); err != nil {
			errs = append(errs, fmt.Errorf("nested: %w", err))
		}
	}
	return errors.Join(errs...)
}
