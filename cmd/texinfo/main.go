package main

import (
	"fmt"
	"os"
	"strconv"

	"rayshade/internal/texture"
)

type sample struct {
	u, v float64
}

func parseSamples(args []string) ([]sample, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("expected u v pairs, got %d values", len(args))
	}
	out := make([]sample, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		u, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("u %q: %w", args[i], err)
		}
		v, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("v %q: %w", args[i+1], err)
		}
		out = append(out, sample{u, v})
	}
	return out, nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: texinfo <image> [u v]...")
		os.Exit(2)
	}

	samples, err := parseSamples(os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(2)
	}

	path := os.Args[1]
	m, err := texture.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK  %s  %dx%d  (%d bytes RGB)\n", path, m.Width, m.Height, len(m.Data))

	if len(samples) == 0 {
		samples = []sample{{0, 0}, {0.5, 0.5}, {1, 1}}
	}
	for _, s := range samples {
		c := m.Sample(s.u, s.v)
		fmt.Printf("  (%.3f, %.3f) -> (%.4f, %.4f, %.4f)\n", s.u, s.v, c[0], c[1], c[2])
	}
}
