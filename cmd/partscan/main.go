package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sghaida/compbridge/catalog"
)

// errProblems is returned in strict mode when the report is not OK.
var errProblems = errors.New("partscan: catalog has unsatisfied or ambiguous imports")

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("partscan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	path := fs.String("catalog", "", "path to the catalog descriptor (.yaml, .yml or .json)")
	format := fs.String("format", "text", "output format: text or json")
	strict := fs.Bool("strict", false, "fail when imports are unsatisfied or ambiguous")
	verbose := fs.Bool("v", false, "log progress to stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return fmt.Errorf("missing -catalog")
	}
	if *format != "text" && *format != "json" {
		return fmt.Errorf("unknown -format %q", *format)
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	desc, err := catalog.LoadFile(*path)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"catalog": *path, "parts": len(desc.Parts)}).Debug("partscan: descriptor loaded")

	cat, err := catalog.Build(desc, nil)
	if err != nil {
		return err
	}
	report := catalog.Analyze(cat)
	log.WithFields(logrus.Fields{
		"unsatisfied": len(report.Unsatisfied),
		"ambiguous":   len(report.Ambiguous),
	}).Debug("partscan: catalog analyzed")

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	default:
		writeText(stdout, report)
	}

	if *strict && !report.OK() {
		return errProblems
	}
	return nil
}

func writeText(w io.Writer, r catalog.Report) {
	for _, p := range r.Parts {
		fmt.Fprintf(w, "part %s\n", p.Name)
		for _, e := range p.Exports {
			fmt.Fprintf(w, "  export %s\n", e)
		}
		for _, imp := range p.Imports {
			flags := ""
			if imp.Prerequisite {
				flags += " prerequisite"
			}
			if !imp.Supported {
				flags += " unsupported"
			}
			fmt.Fprintf(w, "  %s -> %d match(es)%s\n", imp.Import, imp.Matches, flags)
		}
	}
	for _, f := range r.Unsatisfied {
		fmt.Fprintf(w, "unsatisfied: part %s %s\n", f.Part, f.Import)
	}
	for _, f := range r.Ambiguous {
		fmt.Fprintf(w, "ambiguous: part %s %s\n", f.Part, f.Import)
	}
	if r.OK() {
		fmt.Fprintln(w, "ok")
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
