// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package nt

import (
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

// LoadByName asks the loader to map name, or to return an existing mapping
// of it, incrementing the module's reference count. Failure is reported
// through the returned Module's validity, never as an error; callers must
// check IsValid before walking headers.
func LoadByName(name string) Module {
	h, err := windows.LoadLibrary(name)
	if err != nil {
		return Module{}
	}
	return Module{base: uintptr(h)}
}

// LoadByPath is LoadByName for a filesystem path.
func LoadByPath(path string) Module {
	return LoadByName(filepath.FromSlash(path))
}

// FindByAddress returns the already-mapped module containing addr, without
// increasing the loader's reference count. The reference is observational
// only. It returns an invalid Module if no mapped module contains addr.
func FindByAddress(addr uintptr) Module {
	const flags = windows.GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS |
		windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT

	var h windows.Handle
	if err := windows.GetModuleHandleEx(flags, (*uint16)(unsafe.Pointer(addr)), &h); err != nil {
		return Module{}
	}
	return Module{base: uintptr(h)}
}

// Current returns the running process's own main module. The result is
// stable for the lifetime of the process.
func Current() Module {
	h, err := getModuleHandle(nil)
	if err != nil {
		return Module{}
	}
	return Module{base: uintptr(h)}
}

// FromName finds an already-mapped module by name without loading it and
// without touching its reference count. It returns an invalid Module if no
// module of that name is mapped.
func FromName(name string) Module {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return Module{}
	}
	h, err := getModuleHandle(name16)
	if err != nil {
		return Module{}
	}
	return Module{base: uintptr(h)}
}

// Handle returns m's base address as an HMODULE.
func (m Module) Handle() windows.Handle {
	return windows.Handle(m.base)
}

// Path returns the loader-reported full path of the module, or "" if m is
// invalid.
func (m Module) Path() string {
	if !m.IsValid() {
		return ""
	}

	var buf [windows.MAX_PATH]uint16
	n, err := windows.GetModuleFileName(m.Handle(), &buf[0], uint32(len(buf)))
	if err != nil {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// Name returns the final path component of Path, or "" if m is invalid.
func (m Module) Name() string {
	path := m.Path()
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// Folder returns the parent directory of Path, or "" if m is invalid.
func (m Module) Folder() string {
	path := m.Path()
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// Proc resolves the address of the symbol name exported by m, or 0 if m is
// invalid or the symbol is not exported.
func (m Module) Proc(name string) uintptr {
	if !m.IsValid() {
		return 0
	}
	addr, err := windows.GetProcAddress(m.Handle(), name)
	if err != nil {
		return 0
	}
	return addr
}

// ProcByOrdinal resolves the address of the export with the given ordinal,
// or 0 if m is invalid or the ordinal is not exported.
func (m Module) ProcByOrdinal(ordinal uint16) uintptr {
	if !m.IsValid() {
		return 0
	}
	addr, err := windows.GetProcAddressByOrdinal(m.Handle(), uintptr(ordinal))
	if err != nil {
		return 0
	}
	return addr
}

// Checksum sums every byte of the module's backing file into a wrapping
// 32-bit accumulator. It returns 0 if m is invalid or the file cannot be
// opened.
func (m Module) Checksum() uint32 {
	if !m.IsValid() {
		return 0
	}
	return fileByteSum(m.Path())
}

// MakeWritableExecutable changes the protection of the module's entire
// image-size byte range to read-write-execute. It is a no-op on an invalid
// module. The change is irreversible through this API; restoring protection
// is the caller's responsibility.
func (m Module) MakeWritableExecutable() {
	if !m.IsValid() {
		return
	}

	var oldProtect uint32
	windows.VirtualProtect(m.base, uintptr(m.OptionalHeader().SizeOfImage), windows.PAGE_EXECUTE_READWRITE, &oldProtect)
}

// Unload drops the loader's reference to the module and permanently
// invalidates m. The mapping itself disappears only when the loader's
// reference count reaches zero; either way m must not be dereferenced
// afterwards.
func (m *Module) Unload() {
	if !m.IsValid() {
		return
	}
	windows.FreeLibrary(m.Handle())
	m.base = 0
}
