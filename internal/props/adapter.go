// Package props translates a declarative property bag into setter calls on
// a transformer and its optional nested-selection controller. Only the
// properties whose values changed since the previous bag are applied.
package props

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"

	"github.com/inamate/transformer/internal/nested"
	"github.com/inamate/transformer/internal/transformer"
)

// NestedSelectionEnabled creates or destroys the nested controller.
const NestedSelectionEnabled = "nestedSelectionEnabled"

type options struct {
	tf     transformer.Options
	nested nested.Options
}

type field struct {
	nested bool
	ptr    func(o *options) any
}

func tf(ptr func(o *transformer.Options) any) field {
	return field{ptr: func(o *options) any { return ptr(&o.tf) }}
}

func ns(ptr func(o *nested.Options) any) field {
	return field{nested: true, ptr: func(o *options) any { return ptr(&o.nested) }}
}

var fields = map[string]field{
	"boxScalingEnabled":     tf(func(o *transformer.Options) any { return &o.BoxScalingEnabled }),
	"boxRotationEnabled":    tf(func(o *transformer.Options) any { return &o.BoxRotationEnabled }),
	"centeredScaling":       tf(func(o *transformer.Options) any { return &o.CenteredScaling }),
	"rotateEnabled":         tf(func(o *transformer.Options) any { return &o.RotateEnabled }),
	"scaleEnabled":          tf(func(o *transformer.Options) any { return &o.ScaleEnabled }),
	"skewEnabled":           tf(func(o *transformer.Options) any { return &o.SkewEnabled }),
	"translateEnabled":      tf(func(o *transformer.Options) any { return &o.TranslateEnabled }),
	"lockAspectRatio":       tf(func(o *transformer.Options) any { return &o.LockAspectRatio }),
	"allowFlip":             tf(func(o *transformer.Options) any { return &o.AllowFlip }),
	"minSize":               tf(func(o *transformer.Options) any { return &o.MinSize }),
	"rotationSnaps":         tf(func(o *transformer.Options) any { return &o.RotationSnaps }),
	"rotationSnapTolerance": tf(func(o *transformer.Options) any { return &o.RotationSnapTolerance }),
	"skewSnaps":             tf(func(o *transformer.Options) any { return &o.SkewSnaps }),
	"skewSnapTolerance":     tf(func(o *transformer.Options) any { return &o.SkewSnapTolerance }),
	"transientGroupTilt":    tf(func(o *transformer.Options) any { return &o.TransientGroupTilt }),
	"rotatorOffset":         tf(func(o *transformer.Options) any { return &o.RotatorOffset }),
	"skewOffset":            tf(func(o *transformer.Options) any { return &o.SkewOffset }),
	"edgeTolerance":         tf(func(o *transformer.Options) any { return &o.EdgeTolerance }),
	"rotationTolerance":     tf(func(o *transformer.Options) any { return &o.RotationTolerance }),
	"handleStyle":           tf(func(o *transformer.Options) any { return &o.HandleStyle }),
	"wireframeStyle":        tf(func(o *transformer.Options) any { return &o.WireframeStyle }),
	"colorTheme":            tf(func(o *transformer.Options) any { return &o.ColorTheme }),
	"rotatorAnchor":         tf(func(o *transformer.Options) any { return &o.RotatorAnchor }),

	"focusedElementIndex":    ns(func(o *nested.Options) any { return &o.FocusedIndex }),
	"focusedBorderColor":     ns(func(o *nested.Options) any { return &o.FocusedBorderColor }),
	"focusedBorderThickness": ns(func(o *nested.Options) any { return &o.FocusedBorderThickness }),
	"focusedBorderAlpha":     ns(func(o *nested.Options) any { return &o.FocusedBorderAlpha }),
	"borderColor":            ns(func(o *nested.Options) any { return &o.BorderColor }),
	"borderThickness":        ns(func(o *nested.Options) any { return &o.BorderThickness }),
	"borderAlpha":            ns(func(o *nested.Options) any { return &o.BorderAlpha }),
	"showAllBorders":         ns(func(o *nested.Options) any { return &o.ShowAllBorders }),
}

// Known returns the recognized property names, sorted.
func Known() []string {
	return slices.Sorted(maps.Keys(fields))
}

// Adapter keeps the previous bag and the nested controller it manages.
type Adapter struct {
	tf       *transformer.Transformer
	callback nested.Callbacks
	logger   *slog.Logger

	defaults   options
	prev       map[string]any
	nestedOpts nested.Options
	nested     *nested.Controller
	nestedOn   bool
}

// Config constructs an Adapter.
type Config struct {
	Transformer *transformer.Transformer
	// Nested is the base nested-selection styling. Zero means
	// nested.DefaultOptions.
	Nested    nested.Options
	Callbacks nested.Callbacks
	Logger    *slog.Logger
}

// New creates an adapter. The transformer's current options become the
// defaults that removed properties fall back to.
func New(cfg Config) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	nestedOpts := cfg.Nested
	if nestedOpts == (nested.Options{}) {
		nestedOpts = nested.DefaultOptions()
	}
	return &Adapter{
		tf:         cfg.Transformer,
		callback:   cfg.Callbacks,
		logger:     logger,
		defaults:   options{tf: cfg.Transformer.Options(), nested: nestedOpts},
		prev:       map[string]any{},
		nestedOpts: nestedOpts,
	}
}

// Nested returns the nested controller, or nil when disabled.
func (a *Adapter) Nested() *nested.Controller { return a.nested }

// Apply diffs bag against the previous one and calls the setters for the
// changed properties. Removed properties fall back to their defaults.
// Unknown or malformed properties are reported together without blocking
// the valid ones.
func (a *Adapter) Apply(bag map[string]any) error {
	cur := options{tf: a.tf.Options(), nested: a.nestedOpts}

	var errs []error
	var tfChanged, nestedChanged bool

	for _, key := range slices.Sorted(maps.Keys(a.prev)) {
		if _, still := bag[key]; still {
			continue
		}
		f, ok := fields[key]
		if !ok {
			continue
		}
		reset(f.ptr(&cur), f.ptr(&a.defaults))
		tfChanged = tfChanged || !f.nested
		nestedChanged = nestedChanged || f.nested
	}

	next := make(map[string]any, len(bag))
	enableNested := a.nestedOn
	if _, ok := bag[NestedSelectionEnabled]; !ok {
		enableNested = false
	}
	for _, key := range slices.Sorted(maps.Keys(bag)) {
		v := bag[key]
		if old, ok := a.prev[key]; ok && reflect.DeepEqual(old, v) {
			next[key] = v
			continue
		}
		if key == NestedSelectionEnabled {
			on, ok := v.(bool)
			if !ok {
				errs = append(errs, fmt.Errorf("property %q: want bool, got %T", key, v))
				continue
			}
			enableNested = on
			next[key] = v
			continue
		}
		f, ok := fields[key]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown property %q", key))
			continue
		}
		if err := decode(f.ptr(&cur), v); err != nil {
			errs = append(errs, fmt.Errorf("property %q: %w", key, err))
			continue
		}
		next[key] = v
		tfChanged = tfChanged || !f.nested
		nestedChanged = nestedChanged || f.nested
	}
	a.prev = next
	a.nestedOpts = cur.nested

	if tfChanged {
		a.tf.SetOptions(cur.tf)
	}
	if enableNested != a.nestedOn {
		a.setNested(enableNested, cur.nested)
	} else if nestedChanged && a.nested != nil {
		a.nested.SetOptions(cur.nested)
	}

	if len(errs) > 0 {
		a.logger.Debug("properties rejected", "count", len(errs))
	}
	return errors.Join(errs...)
}

func (a *Adapter) setNested(on bool, opts nested.Options) {
	a.nestedOn = on
	if !on {
		if a.nested != nil {
			a.nested.Destroy()
			a.nested = nil
		}
		return
	}
	if a.nested == nil {
		a.nested = nested.New(nested.Config{
			Transformer: a.tf,
			Options:     opts,
			Logger:      a.logger,
			Callbacks:   a.callback,
		})
	}
}

// decode replaces the value behind ptr with v, converting through JSON so
// bags decoded from JSON and bags built in Go are treated alike.
func decode(ptr any, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fresh := reflect.New(reflect.TypeOf(ptr).Elem())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	reflect.ValueOf(ptr).Elem().Set(fresh.Elem())
	return nil
}

func reset(dst, def any) {
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(def).Elem())
}
