// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package main

import (
	"fmt"

	"github.com/TheBlaster041/iw8-mod/nt"
)

func runDumpModule(name string) error {
	m := nt.LoadByName(name)
	if !m.IsValid() {
		return fmt.Errorf("module could not be loaded")
	}

	fmt.Printf("%s @ %#x (%s)\n\n", m.Name(), m.Base(), m.Path())

	if dumpHeaders {
		fmt.Printf("FileHeader:\n\n%#v\n\n", *m.FileHeader())
		fmt.Printf("Entry point: %#x (RVA %#x)\n", m.EntryPoint(), m.EntryPointRVA())
		fmt.Printf("Backing file byte sum: %#x\n\n", m.Checksum())
	}
	if dumpSections {
		sections := m.Sections()
		fmt.Printf("%d sections:\n\n", len(sections))
		for i, sec := range sections {
			fmt.Printf("Index %2d: %s\n%#v\n\n", i, sec.NameString(), sec.SectionHeader32)
		}
	}
	if dumpImports {
		fmt.Println("imported symbols are only dumped in file mode; re-run without -module")
	}
	if dumpTLS {
		cbs := m.TLSCallbacks()
		fmt.Printf("%d TLS callbacks:\n\n", len(cbs))
		for i, cb := range cbs {
			fmt.Printf("%2d: %#x\n", i, cb)
		}
	}

	return nil
}
