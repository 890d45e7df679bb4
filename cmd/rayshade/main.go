package main

import (
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "rayshade"
	app.Usage = "render scenes with a recursive Whitted ray tracer"
	app.Version = "0.3.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a built-in scene or a glTF model",
			Description: `
Render a single frame. The argument is either the name of a built-in scene
(see the scenes command) or the path to a .gltf/.glb file. Settings come from
an optional JSON config file; flags override it.

The output format follows the file extension (.webp, .png or .bmp). A JSON
manifest describing the render is written next to the image.`,
			ArgsUsage: "[scene | model.glb]",
			Flags:     renderFlags,
			Action:    renderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: listScenes,
		},
		{
			Name:      "sample",
			Usage:     "print the cube map color seen along a direction",
			ArgsUsage: "x y z",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "dir, d",
					Usage: "directory holding the cube map face images",
				},
			},
			Action: sampleCubeMap,
		},
	}

	app.Run(os.Args)
}
