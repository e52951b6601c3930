// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package nt provides introspection and in-place patching of PE modules
// mapped into the current process's address space.
//
// A Module is a non-owning reference to an image the OS loader has already
// mapped; the package walks the image's header chain, section table, import
// address table and TLS directory directly in memory, recomputing every
// derived pointer per call. Header layout must match the on-disk format
// bit for bit, so the structures below mirror the Windows SDK exactly.
package nt

import (
	dpe "debug/pe"
	"log"
	"unsafe"

	"golang.org/x/exp/constraints"
)

const (
	// IMAGE_DOS_SIGNATURE is the 'MZ' magic beginning every PE image.
	IMAGE_DOS_SIGNATURE = 0x5A4D
	// IMAGE_NT_SIGNATURE is the 'PE\0\0' magic beginning IMAGE_NT_HEADERS.
	IMAGE_NT_SIGNATURE = 0x00004550

	maxNumSections = 96 // per PE spec
)

// IMAGE_DOS_HEADER is the fixed header at the very start of a mapped image.
// Only E_magic and E_lfanew matter to this package; the remaining fields are
// carried so the layout matches the Windows SDK.
type IMAGE_DOS_HEADER struct {
	E_magic    uint16
	E_cblp     uint16
	E_cp       uint16
	E_crlc     uint16
	E_cparhdr  uint16
	E_minalloc uint16
	E_maxalloc uint16
	E_ss       uint16
	E_sp       uint16
	E_csum     uint16
	E_ip       uint16
	E_cs       uint16
	E_lfarlc   uint16
	E_ovno     uint16
	E_res      [4]uint16
	E_oemid    uint16
	E_oeminfo  uint16
	E_res2     [10]uint16
	E_lfanew   int32
}

// IMAGE_NT_HEADERS is the variable-offset header located at
// base + IMAGE_DOS_HEADER.E_lfanew. OptionalHeader's layout depends on
// GOARCH; see the per-architecture files in this package.
type IMAGE_NT_HEADERS struct {
	Signature      uint32
	FileHeader     dpe.FileHeader
	OptionalHeader OptionalHeader
}

// IMAGE_TLS_DIRECTORY locates a module's thread-local storage template and
// its null-terminated callback-pointer array. The address fields are
// pointer-sized, which matches both the 32- and 64-bit SDK layouts.
type IMAGE_TLS_DIRECTORY struct {
	StartAddressOfRawData uintptr
	EndAddressOfRawData   uintptr
	AddressOfIndex        uintptr
	AddressOfCallBacks    uintptr
	SizeOfZeroFill        uint32
	Characteristics       uint32
}

// SectionHeader describes one declared section of the image.
type SectionHeader struct {
	dpe.SectionHeader32
}

// NameString returns the section's name as a Go string.
func (s *SectionHeader) NameString() string {
	for i, c := range s.Name {
		if c == 0 {
			return string(s.Name[:i])
		}
	}

	return string(s.Name[:])
}

// Module is a non-owning reference to a PE module mapped into the current
// process. The zero Module is invalid; two Modules are equal exactly when
// their base addresses are equal. The underlying mapping stays alive through
// the OS loader's reference count, independent of any Module value, so every
// derived pointer becomes invalid if the module is unloaded while still
// referenced.
//
// Operations on a Module never fail by panicking: accessors on an invalid
// Module return nil, zero or empty results.
type Module struct {
	base uintptr
}

// FromBaseAddress wraps a raw base address (an HMODULE, on Windows) without
// validating it. The caller is expected to check IsValid before walking
// headers.
func FromBaseAddress(base uintptr) Module {
	return Module{base: base}
}

// Base returns the start of the mapped image, or 0 for an invalid Module.
func (m Module) Base() uintptr {
	return m.base
}

// IsValid reports whether m references a mapped image beginning with the
// 'MZ' signature. All header-chain accessors check this before
// dereferencing anything.
func (m Module) IsValid() bool {
	return m.base != 0 && m.DOSHeader().E_magic == IMAGE_DOS_SIGNATURE
}

// DOSHeader reinterprets the base address as the fixed DOS header. It is
// defined whenever the base address is non-zero, but its content is only
// meaningful when IsValid holds.
func (m Module) DOSHeader() *IMAGE_DOS_HEADER {
	if m.base == 0 {
		return nil
	}
	return (*IMAGE_DOS_HEADER)(unsafe.Pointer(m.base))
}

// NTHeaders returns the NT headers at base + E_lfanew, or nil if m is
// invalid.
func (m Module) NTHeaders() *IMAGE_NT_HEADERS {
	if !m.IsValid() {
		return nil
	}
	return (*IMAGE_NT_HEADERS)(unsafe.Pointer(addOffset(m.base, m.DOSHeader().E_lfanew)))
}

// FileHeader returns the COFF file header, or nil if m is invalid.
func (m Module) FileHeader() *dpe.FileHeader {
	nt := m.NTHeaders()
	if nt == nil {
		return nil
	}
	return &nt.FileHeader
}

// OptionalHeader returns the optional header embedded in the NT headers, or
// nil if m is invalid.
func (m Module) OptionalHeader() *OptionalHeader {
	nt := m.NTHeaders()
	if nt == nil {
		return nil
	}
	return &nt.OptionalHeader
}

// EntryPointRVA returns the image-relative offset of the entry point, or 0
// if m is invalid.
func (m Module) EntryPointRVA() uint32 {
	oh := m.OptionalHeader()
	if oh == nil {
		return 0
	}
	return oh.AddressOfEntryPoint
}

// EntryPoint returns the absolute address of the entry point, or 0 if m is
// invalid.
func (m Module) EntryPoint() uintptr {
	if !m.IsValid() {
		return 0
	}
	return m.base + uintptr(m.EntryPointRVA())
}

// dataDirectory returns the optional header's directory slice clamped to
// NumberOfRvaAndSizes.
func (m Module) dataDirectory() []dpe.DataDirectory {
	oh := m.OptionalHeader()
	if oh == nil {
		return nil
	}
	cnt := oh.NumberOfRvaAndSizes
	if maxCnt := uint32(len(oh.DataDirectory)); cnt > maxCnt {
		cnt = maxCnt
	}
	return oh.DataDirectory[:cnt]
}

// DataDirectory returns the directory descriptor at idx, which must be one
// of the IMAGE_DIRECTORY_ENTRY_* constants from debug/pe. ok is false if m
// is invalid or the image declares fewer than idx+1 directories.
func (m Module) DataDirectory(idx int) (dde dpe.DataDirectory, ok bool) {
	dd := m.dataDirectory()
	if idx < 0 || idx >= len(dd) {
		return dde, false
	}
	return dd[idx], true
}

// Sections enumerates the section table in on-disk declaration order. The
// table begins immediately after the optional header, whose extent is taken
// from the declared SizeOfOptionalHeader rather than assumed. A nil
// descriptor slot mid-walk is a structural anomaly: it is logged and
// skipped, never fatal. Each call performs a fresh walk.
func (m Module) Sections() []*SectionHeader {
	nt := m.NTHeaders()
	if nt == nil {
		return nil
	}

	numSections := nt.FileHeader.NumberOfSections
	if numSections > maxNumSections {
		numSections = maxNumSections
	}

	addr := uintptr(unsafe.Pointer(&nt.OptionalHeader)) + uintptr(nt.FileHeader.SizeOfOptionalHeader)
	sections := make([]*SectionHeader, 0, numSections)
	for i := uint16(0); i < numSections; i++ {
		sec := (*SectionHeader)(unsafe.Pointer(addr))
		if sec == nil {
			log.Printf("nt: section table slot %d of %d is nil, skipping", i, numSections)
		} else {
			sections = append(sections, sec)
		}
		addr += unsafe.Sizeof(SectionHeader{})
	}

	return sections
}

// TLSCallbacks enumerates the module's TLS initialization callbacks in
// declaration order. A TLS directory virtual address of 0 is a valid state
// meaning "no callbacks" and yields an empty result, as does an invalid m.
// Each call performs a fresh walk of the null-terminated callback array.
func (m Module) TLSCallbacks() []uintptr {
	dde, ok := m.DataDirectory(dpe.IMAGE_DIRECTORY_ENTRY_TLS)
	if !ok || dde.VirtualAddress == 0 {
		return nil
	}

	dir := (*IMAGE_TLS_DIRECTORY)(unsafe.Pointer(m.base + uintptr(dde.VirtualAddress)))
	if dir.AddressOfCallBacks == 0 {
		return nil
	}

	var callbacks []uintptr
	for slot := dir.AddressOfCallBacks; ; slot += unsafe.Sizeof(uintptr(0)) {
		cb := *(*uintptr)(unsafe.Pointer(slot))
		if cb == 0 {
			break
		}
		callbacks = append(callbacks, cb)
	}

	return callbacks
}

func addOffset[O constraints.Integer](base uintptr, off O) uintptr {
	if off >= 0 {
		return base + uintptr(off)
	}

	negation := uintptr(-off)
	if negation >= base {
		return 0
	}
	return base - negation
}
