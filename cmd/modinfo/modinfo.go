// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Command modinfo dumps header metadata from a PE binary, either parsed from
// a file on disk or, on Windows, walked in place inside a module loaded into
// this process.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	bpe "github.com/Binject/debug/pe"
)

var dumpHeaders bool
var dumpSections bool
var dumpImports bool
var dumpTLS bool
var useModule bool

func init() {
	flag.Usage = usage
	flag.BoolVar(&dumpHeaders, "headers", false, "dump essential headers")
	flag.BoolVar(&dumpSections, "sections", false, "dump section headers")
	flag.BoolVar(&dumpImports, "imports", false, "dump imported symbols")
	flag.BoolVar(&dumpTLS, "tls", false, "dump TLS callbacks (module mode only)")
	flag.BoolVar(&useModule, "module", false, "load the named module into this process and walk it in memory (Windows only)")
	flag.Parse()
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintln(flag.CommandLine.Output(), "  <filePath>\n\tpath to PE file, or module name with -module")
}

func usageln(args ...any) {
	fmt.Fprintln(flag.CommandLine.Output(), args...)
	usage()
	os.Exit(2)
}

func main() {
	name := flag.Arg(0)
	if name == "" {
		usageln("No file path or module name provided")
	}

	if useModule {
		if err := runDumpModule(name); err != nil {
			log.Fatalf("error walking module %q: %v\n", name, err)
		}
		return
	}

	pef, err := bpe.Open(name)
	if err != nil {
		log.Fatalf("error opening %q: %v\n", name, err)
	}
	defer pef.Close()

	if dumpHeaders {
		fmt.Printf("FileHeader:\n\n%#v\n\n", pef.FileHeader)
		fmt.Printf("OptionalHeader:\n\n%#v\n\n", pef.OptionalHeader)
	}
	if dumpSections {
		fmt.Printf("%d sections:\n\n", len(pef.Sections))
		for i, sec := range pef.Sections {
			fmt.Printf("Index %2d: %s\n%#v\n\n", i, sec.Name, sec.SectionHeader)
		}
	}
	if dumpImports {
		syms, err := pef.ImportedSymbols()
		if err != nil {
			log.Fatalf("error reading imports of %q: %v\n", name, err)
		}
		fmt.Printf("%d imported symbols:\n\n", len(syms))
		for _, sym := range syms {
			fmt.Println(sym)
		}
	}
	if dumpTLS {
		fmt.Println("TLS callbacks can only be enumerated from a loaded module; re-run with -module on Windows")
	}
}
