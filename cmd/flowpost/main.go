// Command flowpost exports simulation fields as Esri ASCII grids, renders
// discharge hydrographs and inspects the snapshot catalog.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hydrotools/flowpost/internal/monitoring"
	"github.com/hydrotools/flowpost/internal/version"
)

func main() {
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	monitoring.LogTo(os.Stderr, "flowpost: ")
	log.SetFlags(0)
	log.SetPrefix("flowpost: ")

	if err := run(flag.Args(), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// run dispatches a subcommand. Output meant for the user goes to stdout;
// diagnostics go through monitoring.Logf.
func run(args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage(stdout)
		return fmt.Errorf("missing command")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "raster":
		return runRaster(rest, stdout)
	case "info":
		return runInfo(rest, stdout)
	case "hydrograph":
		return runHydrograph(rest, stdout)
	case "catalog":
		return runCatalog(rest, stdout)
	case "simulate":
		return runSimulate(rest, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `flowpost - post-processing for overland flow simulations

Usage: flowpost <command> [options]

Commands:
  raster      Export a whitespace separated node field as an ASCII grid
  info        Print the header and value range of an ASCII grid
  hydrograph  Render a discharge record as png, svg, pdf or html
  catalog     List the snapshots recorded in a catalog database
  simulate    Run a synthetic flood through the snapshot writer
  version     Show flowpost version
  help        Show this help message

Examples:
  flowpost raster -field depth.txt -rows 2 -cols 3 -dx 10 -o depth.asc
  flowpost info output/depth_3600.0.asc
  flowpost hydrograph -in output0_link_surface_water__discharge.txt -o q.html
  flowpost catalog -db output/catalog.db -run 6f1c...
  flowpost simulate -config run.json -duration 7200 -dt 30`)
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
