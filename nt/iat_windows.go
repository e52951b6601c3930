// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package nt

import (
	dpe "debug/pe"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// IMAGE_IMPORT_DESCRIPTOR describes the imports from one module referenced
// by an image. The descriptor array is terminated by a zero-valued entry.
type IMAGE_IMPORT_DESCRIPTOR struct {
	OriginalFirstThunk uint32
	TimeDateStamp      uint32
	ForwarderChain     uint32
	Name               uint32
	FirstThunk         uint32
}

// FindImportSlot locates the live function-pointer slot inside m's import
// address table through which m calls procName exported by moduleName.
// moduleName is resolved without loading; an import's module is expected to
// be mapped already.
//
// The original and live thunk arrays advance in lock-step until the original
// array's zero sentinel. A slot matches either because the loader already
// bound it to the resolved target address, or because the original thunk is
// an ordinal import whose ordinal resolves to the same target (an
// ordinal-alias match). The first match in descriptor-then-thunk declaration
// order wins; if the same target is imported twice under different bindings,
// no attempt is made to pick a "best" slot.
//
// It returns nil if m is invalid, moduleName is not mapped, procName is not
// exported by it, or no slot matches.
func (m Module) FindImportSlot(moduleName, procName string) *uintptr {
	if !m.IsValid() {
		return nil
	}

	target := FromName(moduleName)
	if !target.IsValid() {
		return nil
	}

	targetProc := target.Proc(procName)
	if targetProc == 0 {
		return nil
	}

	dde, ok := m.DataDirectory(dpe.IMAGE_DIRECTORY_ENTRY_IMPORT)
	if !ok || dde.VirtualAddress == 0 {
		return nil
	}

	desc := (*IMAGE_IMPORT_DESCRIPTOR)(unsafe.Pointer(m.base + uintptr(dde.VirtualAddress)))
	for ; desc.Name != 0; desc = (*IMAGE_IMPORT_DESCRIPTOR)(unsafe.Pointer(uintptr(unsafe.Pointer(desc)) + unsafe.Sizeof(*desc))) {
		name := windows.BytePtrToString((*byte)(unsafe.Pointer(m.base + uintptr(desc.Name))))
		if !strings.EqualFold(name, moduleName) {
			continue
		}

		orig := m.base + uintptr(desc.OriginalFirstThunk)
		live := m.base + uintptr(desc.FirstThunk)
		for {
			origThunk := *(*uintptr)(unsafe.Pointer(orig))
			if origThunk == 0 {
				break
			}

			liveSlot := (*uintptr)(unsafe.Pointer(live))
			if *liveSlot == targetProc {
				return liveSlot
			}
			if origThunk&ordinalFlag != 0 {
				if target.ProcByOrdinal(uint16(origThunk)) == targetProc {
					return liveSlot
				}
			}

			orig += unsafe.Sizeof(uintptr(0))
			live += unsafe.Sizeof(uintptr(0))
		}
	}

	return nil
}

// PatchImport rewrites the import slot through which m calls procName from
// moduleName, redirecting it to replacement. The slot's page is made
// writable for the store and its previous protection restored afterwards.
// It returns the slot's previous value, or 0 if no matching slot was found
// or the slot could not be made writable.
func (m Module) PatchImport(moduleName, procName string, replacement uintptr) uintptr {
	slot := m.FindImportSlot(moduleName, procName)
	if slot == nil {
		return 0
	}

	addr := uintptr(unsafe.Pointer(slot))
	var oldProtect uint32
	if err := windows.VirtualProtect(addr, unsafe.Sizeof(uintptr(0)), windows.PAGE_READWRITE, &oldProtect); err != nil {
		return 0
	}

	prev := *slot
	*slot = replacement
	windows.VirtualProtect(addr, unsafe.Sizeof(uintptr(0)), oldProtect, &oldProtect)
	return prev
}
