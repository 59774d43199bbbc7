// Command superpose-bounds reads a feed-forward network and input
// domains from YAML and prints sound output bounds.
//
// Usage:
//
//	superpose-bounds -network net.yaml -domains dom.yaml [-sub 64] [-shadow] [-steps n] [-dump]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/speakeasy-api/superpose"
	"github.com/speakeasy-api/superpose/enclosure"
	"github.com/speakeasy-api/superpose/nnet"
)

type domainsFile struct {
	Domains [][2]float64 `yaml:"domains"`
}

func main() {
	var (
		networkPath = flag.String("network", "", "network YAML file")
		domainsPath = flag.String("domains", "", "input domains YAML file")
		sub         = flag.Int("sub", 64, "breakpoint budget per estimator")
		shadow      = flag.Bool("shadow", false, "track shadow estimators through relu layers")
		steps       = flag.Int("steps", 0, "also print a step matrix with this many cells per variable")
		grid        = flag.Int("grid", 0, "also print sampled enclosures on an n-per-input grid")
		dump        = flag.Bool("dump", false, "dump output estimators as YAML")
		logLevel    = flag.String("log", "", "log level (debug, info, warn, error)")
	)
	flag.Parse()
	if *networkPath == "" || *domainsPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*networkPath, *domainsPath, *sub, *shadow, *steps, *grid, *dump, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, colorize("error: ")+err.Error())
		os.Exit(1)
	}
}

func run(networkPath, domainsPath string, sub int, shadow bool, steps, grid int, dump bool, logLevel string) error {
	nf, err := os.Open(networkPath)
	if err != nil {
		return err
	}
	defer nf.Close()
	net, err := nnet.Load(nf)
	if err != nil {
		return err
	}

	domains, err := loadDomains(domainsPath)
	if err != nil {
		return err
	}

	opts := enclosure.DefaultOptions()
	opts.Subdivisions = sub
	opts.MaxBreakpoints = sub
	opts.UseShadow = shadow
	opts.LogLevel = logLevel
	opts.LogOutput = os.Stderr

	outs, _, err := net.Enclose(domains, opts)
	if err != nil {
		return err
	}
	for i, v := range outs {
		b, err := v.Bound()
		if err != nil {
			return err
		}
		fmt.Printf("output[%d] in [% .9g, % .9g]\n", i, b.Lo, b.Hi)
		if steps > 0 {
			m, err := v.Steps(steps)
			if err != nil {
				return err
			}
			printSteps(i, m)
		}
		if grid > 1 {
			if err := printGrid(i, v, domains, grid); err != nil {
				return err
			}
		}
		if dump {
			if err := v.DumpYAML(os.Stdout); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadDomains(path string) ([]superpose.Interval, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var df domainsFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&df); err != nil {
		return nil, fmt.Errorf("decoding domains: %w", err)
	}
	domains := make([]superpose.Interval, len(df.Domains))
	for i, d := range df.Domains {
		domains[i] = superpose.Span(d[0], d[1])
	}
	return domains, nil
}

func printSteps(out int, m enclosure.StepMatrix) {
	for j, dep := range m.Deps {
		fmt.Printf("output[%d] steps over x%d:", out, dep)
		for _, c := range m.Cells[j] {
			fmt.Printf(" [% .4g,% .4g]", c.Lo, c.Hi)
		}
		fmt.Println()
	}
}

// printGrid evaluates the output on a cartesian grid of n points per
// input and prints one enclosure per grid point.
func printGrid(out int, v *enclosure.Var, domains []superpose.Interval, n int) error {
	point := make([]float64, len(domains))
	total := 1
	for range domains {
		total *= n
	}
	for idx := 0; idx < total; idx++ {
		rem := idx
		for d, dom := range domains {
			point[d] = dom.Lo + dom.Width()*float64(rem%n)/float64(n-1)
			rem /= n
		}
		e, err := v.Eval(point)
		if err != nil {
			return err
		}
		fmt.Printf("output[%d] at %v: %v\n", out, point, e)
	}
	return nil
}

func colorize(s string) string {
	if os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stderr.Fd()) {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}
