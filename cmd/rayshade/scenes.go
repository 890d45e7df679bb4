package main

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"rayshade/internal/mathutil"
	"rayshade/internal/scene"
	"rayshade/internal/texture"
)

// List the built-in scenes.
func listScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Description"})
	for _, name := range scene.Names() {
		table.Append([]string{name, scene.Describe(name)})
	}
	table.Render()
	fmt.Print(buf.String())
	return nil
}

// Print the cube map face, face coordinates and color along a direction.
func sampleCubeMap(ctx *cli.Context) error {
	setupLogging(ctx)

	dir := ctx.String("dir")
	if dir == "" {
		return fail(errors.New("missing --dir"))
	}
	if ctx.NArg() != 3 {
		return fail(errors.New("expected a direction as three numbers"))
	}
	var d mathutil.Vec3
	for k := 0; k < 3; k++ {
		v, err := strconv.ParseFloat(ctx.Args().Get(k), 64)
		if err != nil {
			return fail(fmt.Errorf("direction component %d: %w", k, err))
		}
		d[k] = v
	}

	cm, err := texture.LoadCubeMap(dir, texture.NewCache())
	if err != nil {
		return fail(err)
	}
	face, u, v, ok := texture.Project(d)
	if !ok {
		return fail(errors.New("direction must not be zero"))
	}
	c := cm.Sample(d)
	fmt.Printf("face %s  uv (%.4f, %.4f)  rgb (%.4f, %.4f, %.4f)\n", face, u, v, c[0], c[1], c[2])
	if cm.FaceMap(face) == nil {
		fmt.Println("face image missing; sampled black")
	}
	return nil
}
