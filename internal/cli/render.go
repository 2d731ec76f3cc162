package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inamate/transformer/internal/config"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/surface"
	"github.com/inamate/transformer/internal/texture"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	scene   string   // scene TOML; empty renders the sample scene
	output  string   // PNG output path
	options string   // options TOML
	props   string   // property bag as JSON, applied after options
	selects []string // object ids selected before the drags
	drags   []string // target:x0,y0:x1,y1
	width   int      // overrides the scene width
	height  int      // overrides the scene height
	json    bool     // write draw commands as JSON instead of PNG
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Replay drags on a scene and render it to PNG",
		Example: `  transformerctl render --scene scene.toml --select obj_1 --drag bottomRight::450,400 --out out.png
  transformerctl render --drag pointer:250,250:250,250 --drag translate:300,275:340,300 --out moved.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.scene, "scene", "", "scene TOML file (defaults to the sample scene)")
	cmd.Flags().StringVarP(&opts.output, "out", "o", "", "output file")
	cmd.Flags().StringVar(&opts.options, "options", "", "transformer options TOML file")
	cmd.Flags().StringVar(&opts.props, "props", "", "property bag as JSON")
	cmd.Flags().StringSliceVar(&opts.selects, "select", nil, "object ids to select before dragging")
	cmd.Flags().StringArrayVar(&opts.drags, "drag", nil, "drag to replay as target:x0,y0:x1,y1 (repeatable)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output width (defaults to the scene width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "output height (defaults to the scene height)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "write draw commands as JSON")
	cmd.MarkFlagRequired("out")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, opts renderOpts) error {
	drags := make([]drag, len(opts.drags))
	for i, s := range opts.drags {
		d, err := parseDrag(s)
		if err != nil {
			return err
		}
		drags[i] = d
	}

	scene := document.NewSampleScene()
	if opts.scene != "" {
		var err error
		if scene, err = document.LoadSceneTOML(opts.scene); err != nil {
			return err
		}
	}

	tfOpts := config.DefaultOptions()
	if opts.options != "" {
		var err error
		if tfOpts, err = config.LoadOptions(opts.options); err != nil {
			return err
		}
	}

	textures := texture.Default()
	e := engine.New(engine.Config{
		Scene:    scene,
		Options:  tfOpts,
		Textures: textures,
		Logger:   c.slogger(),
	})
	defer e.Destroy()

	if opts.props != "" {
		var bag map[string]any
		if err := json.Unmarshal([]byte(opts.props), &bag); err != nil {
			return fmt.Errorf("parse props: %w", err)
		}
		if err := e.ApplyProps(bag); err != nil {
			return err
		}
	}
	if len(opts.selects) > 0 {
		if err := e.Select(opts.selects...); err != nil {
			return err
		}
	}

	for _, d := range drags {
		if err := d.replay(e); err != nil {
			return err
		}
		c.Logger.Debug("drag replayed", "target", d.target, "selection", e.Selection())
	}

	commands := e.Frame()
	if err := writeOutput(opts, scene, commands, textures); err != nil {
		return err
	}
	c.Logger.Info("rendered", "out", opts.output, "commands", len(commands), "selection", e.Selection())
	return nil
}

func writeOutput(opts renderOpts, scene *document.Scene, commands []surface.DrawCommand, textures *texture.Cache) error {
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(commands); err != nil {
			return fmt.Errorf("write commands: %w", err)
		}
	} else {
		raster := surface.Raster{
			Width:      scene.Width,
			Height:     scene.Height,
			Background: scene.Background,
			Textures:   textures,
		}
		if opts.width > 0 {
			raster.Width = opts.width
		}
		if opts.height > 0 {
			raster.Height = opts.height
		}
		if err := raster.WritePNG(w, commands); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}
