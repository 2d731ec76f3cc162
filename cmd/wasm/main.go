//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/nested"
	"github.com/inamate/transformer/internal/pointer"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
	"github.com/inamate/transformer/internal/transformer"
)

var eng *engine.Engine

// events holds notifications raised since the last drainEvents call.
var events []map[string]any

func main() {
	eng = newEngine(config.DefaultOptions())

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("loadScene", js.FuncOf(loadScene))
	api.Set("loadSceneTOML", js.FuncOf(loadSceneTOML))
	api.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	api.Set("loadOptions", js.FuncOf(loadOptions))
	api.Set("setProps", js.FuncOf(setProps))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("pointer", js.FuncOf(pointerEvent))
	api.Set("focusNext", js.FuncOf(focusNext))

	// --- Queries (frontend ← backend) ---
	api.Set("render", js.FuncOf(render))
	api.Set("cursor", js.FuncOf(cursor))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getOptions", js.FuncOf(getOptions))
	api.Set("getBox", js.FuncOf(getBox))
	api.Set("getTexture", js.FuncOf(getTexture))
	api.Set("drainEvents", js.FuncOf(drainEvents))

	js.Global().Set("transformerEngine", api)
	js.Global().Set("transformerWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func newEngine(opts config.Options) *engine.Engine {
	e := engine.New(engine.Config{
		Options:   opts,
		Textures:  texture.Default(),
		Callbacks: nestedCallbacks(),
	})
	for _, et := range []transformer.EventType{
		transformer.EventInteractionStart,
		transformer.EventTransformChange,
		transformer.EventTransformCommit,
		transformer.EventGroupChange,
	} {
		e.Transformer().On(et, func(ev transformer.Event) {
			events = append(events, map[string]any{
				"type":      string(ev.Type),
				"handle":    ev.Handle.String(),
				"translate": ev.Translate,
				"members":   len(ev.Members),
			})
		})
	}
	return e
}

func nestedCallbacks() nested.Callbacks {
	return nested.Callbacks{
		OnFocusChange: func(index int, m transformer.Member) {
			ev := map[string]any{"type": "elementfocused", "index": index}
			if obj, ok := m.(*document.Object); ok {
				ev["objectId"] = obj.ID
			}
			events = append(events, ev)
		},
	}
}

func replaceEngine(opts config.Options) {
	scene := eng.Scene()
	eng.Destroy()
	eng = newEngine(opts)
	eng.LoadScene(scene)
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true})
}

func errorValue(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

func toJSON(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorValue(err.Error())
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("missing scene JSON")
	}
	var scene document.Scene
	if err := json.Unmarshal([]byte(args[0].String()), &scene); err != nil {
		return result(err)
	}
	return result(eng.LoadScene(&scene))
}

func loadSceneTOML(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("missing scene TOML")
	}
	scene, err := document.DecodeSceneTOML(strings.NewReader(args[0].String()))
	if err != nil {
		return result(err)
	}
	return result(eng.LoadScene(scene))
}

func loadSampleScene(this js.Value, args []js.Value) any {
	return result(eng.LoadScene(document.NewSampleScene()))
}

// loadOptions rebuilds the engine from an options TOML document, keeping
// the scene.
func loadOptions(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("missing options TOML")
	}
	opts, err := config.DecodeOptions(strings.NewReader(args[0].String()))
	if err != nil {
		return result(err)
	}
	replaceEngine(opts)
	return result(nil)
}

func setProps(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("missing props JSON")
	}
	var bag map[string]any
	if err := json.Unmarshal([]byte(args[0].String()), &bag); err != nil {
		return result(err)
	}
	return result(eng.ApplyProps(bag))
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return result(eng.Select())
	}
	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	return result(eng.Select(ids...))
}

// pointerEvent takes (kind, x, y) and reports whether the transformer
// consumed the event.
func pointerEvent(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("expected kind, x, y")
	}
	t, ok := pointer.ParseType(args[0].String())
	if !ok {
		return errorValue("unknown pointer kind " + args[0].String())
	}
	stopped := eng.Dispatch(t, mgl64.Vec2{args[1].Float(), args[2].Float()})
	return js.ValueOf(stopped)
}

func focusNext(this js.Value, args []js.Value) any {
	if nc := eng.Nested(); nc != nil {
		nc.FocusNext()
	}
	return nil
}

// --- Query Handlers ---

// render returns the draw commands as JSON, or null when nothing changed
// since the last call. Passing true forces a full list.
func render(this js.Value, args []js.Value) any {
	changed := eng.Render()
	force := len(args) > 0 && args[0].Truthy()
	if !changed && !force {
		return js.Null()
	}
	out, err := surface.CommandsToJSON(eng.Commands())
	if err != nil {
		return errorValue(err.Error())
	}
	return js.ValueOf(out)
}

func cursor(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.Cursor(mgl64.Vec2{args[0].Float(), args[1].Float()}))
}

func getScene(this js.Value, args []js.Value) any {
	return toJSON(eng.Scene())
}

func getSelection(this js.Value, args []js.Value) any {
	return toJSON(eng.Selection())
}

func getOptions(this js.Value, args []js.Value) any {
	return toJSON(eng.Options())
}

func getBox(this js.Value, args []js.Value) any {
	box, ok := eng.Transformer().Box()
	if !ok {
		return js.Null()
	}
	return toJSON(map[string]any{
		"corners":  box.Corners(),
		"rotation": box.Rotation,
		"width":    box.Width(),
		"height":   box.Height(),
	})
}

// getTexture returns the PNG bytes of a sprite texture as a Uint8Array.
func getTexture(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.Null()
	}
	tex, ok := texture.Default().ByID(args[0].String())
	if !ok {
		return js.Null()
	}
	data, err := tex.PNG()
	if err != nil {
		return errorValue(err.Error())
	}
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

func drainEvents(this js.Value, args []js.Value) any {
	if events == nil {
		return js.ValueOf("[]")
	}
	out := toJSON(events)
	events = nil
	return out
}
