// dwarfgraph parses the DWARF debug information in one or more object
// files (or core dumps) and merges it into a single cross-file type and
// symbol graph: structures, typedefs, pointers, arrays, enums,
// functions, and variables, deduplicated by name across compile units
// and across files.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/coredump-labs/dwarfgraph/pkg/diecursor"
	"github.com/coredump-labs/dwarfgraph/pkg/diecursor/stddwarf"
	"github.com/coredump-labs/dwarfgraph/pkg/dwarfscan"
	"github.com/coredump-labs/dwarfgraph/pkg/typegraph"
)

func main() {
	var (
		jsonOutput  = flag.Bool("json", false, "Output results as JSON instead of a colored summary")
		prettyPrint = flag.Bool("pretty", false, "Pretty-print JSON output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug + per-DIE dump)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress output")
		configPath  = flag.StringP("config", "c", "", "Path to dwarfgraph.yaml (default: ./dwarfgraph.yaml if present)")
		metricsAddr = flag.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
		dumpDIE     = flag.Bool("dump-die", false, "Dump every visited DIE's tag, offset, and name before parsing")

		showFunctions = flag.Bool("functions", false, "List all merged functions")
		showVariables = flag.Bool("variables", false, "List all merged variables")
		showTypes     = flag.Bool("types", false, "List all merged named types")
		showAll       = flag.Bool("all", false, "Show functions, variables, and types")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <object-file>...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ./a.out\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --all --json --pretty a.o b.o c.o\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --metrics-addr :9090 core.1234 vmlinux\n", os.Args[0])
	}

	flag.Parse()

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}
	logger := newLogger(globals)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fatalf("%v", err)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		paths = cfg.Inputs
	}
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	addr := *metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	metrics := serveMetrics(addr, logger)

	if *dumpDIE || globals.Verbose >= 2 {
		for _, path := range paths {
			if err := dumpDIEs(path); err != nil {
				logger.Warn("dump-die failed", "path", path, "err", err)
			}
		}
	}

	mgr := typegraph.NewManager(metrics)
	bar := newFileProgressBar(globals, len(paths))

	results := dwarfscan.ParseAll(mgr, paths, func(path string) (diecursor.Source, error) {
		return stddwarf.Open(path)
	}, func(r dwarfscan.Result) {
		_ = bar.Add(1)
		if r.Err != nil {
			logger.Error("parse failed", "path", r.Path, "err", r.Err)
		} else {
			logger.Debug("parsed", "path", r.Path, "dies_visited", r.DIEsVisited, "dies_skipped", r.DIEsSkipped)
		}
	})
	_ = bar.Finish()

	if *jsonOutput {
		printJSON(mgr, results, *showFunctions || *showAll, *showVariables || *showAll, *showTypes || *showAll, *prettyPrint)
		return
	}
	printSummary(globals, mgr, results)
}

func dumpDIEs(path string) error {
	src, err := stddwarf.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	cu, err := src.FirstCU()
	if err != nil {
		return err
	}
	for cu != nil {
		if err := dumpDIE(cu, 0); err != nil {
			return err
		}
		next, err := src.NextCU(cu)
		if err != nil {
			return err
		}
		cu = next
	}
	return nil
}

// dumpDIE prints one DIE and recurses pre-order, indenting by depth.
// This is the supplemented debug mode: useful for seeing exactly what
// a tag-dispatch table skips without instrumenting the parser itself.
func dumpDIE(cur diecursor.Cursor, depth int) error {
	name, _ := cur.Name()
	fmt.Fprintf(os.Stderr, "%*s[0x%x] tag=0x%x name=%q\n", depth*2, "", cur.Offset(), cur.Tag(), name)

	child, err := cur.FirstChild()
	if err != nil {
		return err
	}
	if child != nil {
		if err := dumpDIE(child, depth+1); err != nil {
			return err
		}
	}
	sib, err := cur.Sibling()
	if err != nil {
		return err
	}
	if sib != nil {
		if err := dumpDIE(sib, depth); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(globals GlobalFlags, mgr *typegraph.Manager, results []dwarfscan.Result) {
	sc := newSummaryColors(globals)

	var totalVisited, totalSkipped, failures int
	for _, r := range results {
		totalVisited += r.DIEsVisited
		totalSkipped += r.DIEsSkipped
		if r.Err != nil {
			failures++
		}
	}

	counts := map[typegraph.Kind]int{}
	for _, e := range mgr.All() {
		counts[e.Kind()]++
	}

	fmt.Printf("%s %d file(s), %d DIE(s) visited, %d skipped\n",
		sc.dim.Sprint("scanned"), len(results), totalVisited, totalSkipped)
	if failures > 0 {
		sc.bad.Printf("%d file(s) failed to parse\n", failures)
	}
	for _, k := range []typegraph.Kind{
		typegraph.KindStruct, typegraph.KindUnion, typegraph.KindEnum,
		typegraph.KindBaseType, typegraph.KindTypedef, typegraph.KindConstType,
		typegraph.KindPointer, typegraph.KindArray, typegraph.KindFunction, typegraph.KindVariable,
	} {
		if counts[k] == 0 {
			continue
		}
		fmt.Printf("  %s %d\n", sc.ok.Sprint(k.String()+":"), counts[k])
	}
}

// resultView is dwarfscan.Result with its error rendered as a string,
// since error values don't marshal to anything useful on their own.
type resultView struct {
	Path        string `json:"path"`
	FileID      uint32 `json:"file_id"`
	DIEsVisited int    `json:"dies_visited"`
	DIEsSkipped int    `json:"dies_skipped"`
	Err         string `json:"error,omitempty"`
}

func printJSON(mgr *typegraph.Manager, results []dwarfscan.Result, functions, variables, types, pretty bool) {
	fileViews := make([]resultView, len(results))
	for i, r := range results {
		rv := resultView{Path: r.Path, FileID: uint32(r.FileID), DIEsVisited: r.DIEsVisited, DIEsSkipped: r.DIEsSkipped}
		if r.Err != nil {
			rv.Err = r.Err.Error()
		}
		fileViews[i] = rv
	}
	out := map[string]interface{}{"files": fileViews}

	if functions || variables || types {
		var fns []FunctionView
		var vars []VariableView
		var tys []TypeView
		for _, e := range mgr.All() {
			switch v := e.(type) {
			case *typegraph.Function:
				if functions {
					fns = append(fns, newFunctionView(v))
				}
			case *typegraph.Variable:
				if variables {
					vars = append(vars, newVariableView(v))
				}
			default:
				if types {
					switch e.Kind() {
					case typegraph.KindStruct, typegraph.KindUnion, typegraph.KindEnum,
						typegraph.KindBaseType, typegraph.KindTypedef, typegraph.KindConstType,
						typegraph.KindPointer, typegraph.KindArray:
						tys = append(tys, newTypeView(e))
					}
				}
			}
		}
		if functions {
			out["functions"] = fns
		}
		if variables {
			out["variables"] = vars
		}
		if types {
			out["types"] = tys
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fatalf("encode JSON: %v", err)
	}
}
