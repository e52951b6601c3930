// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package nt

import (
	dpe "debug/pe"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// The Go runtime links against kernel32.dll through the import table, so the
// test binary's own image always carries kernel32 IAT entries to inspect.

func TestFindImportSlotByName(t *testing.T) {
	m := Current()

	slot := m.FindImportSlot("kernel32.dll", "WriteFile")
	require.NotNil(t, slot)
	require.Equal(t, FromName("kernel32.dll").Proc("WriteFile"), *slot)
}

func TestFindImportSlotMisses(t *testing.T) {
	m := Current()
	require.Nil(t, m.FindImportSlot("kernel32.dll", "Iw8ModNoSuchExport"))
	require.Nil(t, m.FindImportSlot("iw8-mod-test-not-mapped.dll", "WriteFile"))

	var invalid Module
	require.Nil(t, invalid.FindImportSlot("kernel32.dll", "WriteFile"))
}

func TestPatchImport(t *testing.T) {
	m := Current()

	// RaiseFailFastException is only called on fatal runtime failure, so
	// nothing races with the diverted slot while this test runs.
	const proc = "RaiseFailFastException"
	slot := m.FindImportSlot("kernel32.dll", proc)
	require.NotNil(t, slot)
	want := *slot

	dummy := want + 0x40
	require.Equal(t, want, m.PatchImport("kernel32.dll", proc, dummy))
	require.Equal(t, dummy, *slot)

	// With the slot diverted, neither the direct nor the ordinal-alias
	// match can identify it any more.
	require.Nil(t, m.FindImportSlot("kernel32.dll", proc))

	// Restore through a direct store after making the image writable.
	m.MakeWritableExecutable()
	*slot = want
	require.Equal(t, slot, m.FindImportSlot("kernel32.dll", proc))
}

func TestPatchImportMisses(t *testing.T) {
	m := Current()
	require.Zero(t, m.PatchImport("kernel32.dll", "Iw8ModNoSuchExport", 0x1000))
}

const (
	testImportDescOffset = 0x700
	testImportNameOffset = 0x780
	testOrigThunkOffset  = 0x7c0
	testLiveThunkOffset  = 0x800
)

// newTestImportImage extends the synthetic image with an import directory
// binding a single thunk of moduleName with the given original-thunk value.
// The live slot is seeded with a value that cannot equal any real export
// address, so only an ordinal lookup can identify it.
func newTestImportImage(t *testing.T, moduleName string, origThunk uintptr) *testImage {
	t.Helper()
	ti := newTestImage(t, 1, nil)

	name := unsafe.Slice((*byte)(ti.at(testImportNameOffset)), len(moduleName)+1)
	copy(name, moduleName)

	desc := (*IMAGE_IMPORT_DESCRIPTOR)(ti.at(testImportDescOffset))
	desc.OriginalFirstThunk = testOrigThunkOffset
	desc.Name = testImportNameOffset
	desc.FirstThunk = testLiveThunkOffset

	*(*uintptr)(ti.at(testOrigThunkOffset)) = origThunk
	*(*uintptr)(ti.at(testLiveThunkOffset)) = 1

	ti.module().OptionalHeader().DataDirectory[dpe.IMAGE_DIRECTORY_ENTRY_IMPORT] = dpe.DataDirectory{
		VirtualAddress: testImportDescOffset,
		Size:           uint32(2 * unsafe.Sizeof(IMAGE_IMPORT_DESCRIPTOR{})),
	}

	return ti
}

// exportOrdinal discovers the ordinal of one of m's named exports. Ordinals
// are not stable across Windows builds, so they cannot be hardcoded.
func exportOrdinal(t *testing.T, m Module, proc string) uint16 {
	t.Helper()
	want := m.Proc(proc)
	require.NotZero(t, want)

	for ord := 1; ord <= 0xFFFF; ord++ {
		if m.ProcByOrdinal(uint16(ord)) == want {
			return uint16(ord)
		}
	}

	t.Fatalf("no ordinal of %s resolves to %s", m.Name(), proc)
	return 0
}

func TestFindImportSlotOrdinalAlias(t *testing.T) {
	k32 := FromName("kernel32.dll")
	require.True(t, k32.IsValid())

	const proc = "WriteFile"
	ordinal := exportOrdinal(t, k32, proc)

	ti := newTestImportImage(t, "kernel32.dll", ordinalFlag|uintptr(ordinal))
	m := ti.module()

	// The live slot holds a diverted value, so only the ordinal binding in
	// the original thunk can identify it.
	slot := m.FindImportSlot("kernel32.dll", proc)
	require.NotNil(t, slot)
	require.Equal(t, (*uintptr)(ti.at(testLiveThunkOffset)), slot)
	require.NotEqual(t, k32.Proc(proc), *slot)
	runtime.KeepAlive(ti.raw)
}

func TestFindImportSlotOrdinalAliasMiss(t *testing.T) {
	k32 := FromName("kernel32.dll")
	require.True(t, k32.IsValid())

	// An ordinal binding that resolves to a different export must not match.
	ordinal := exportOrdinal(t, k32, "CloseHandle")

	ti := newTestImportImage(t, "kernel32.dll", ordinalFlag|uintptr(ordinal))
	require.Nil(t, ti.module().FindImportSlot("kernel32.dll", "WriteFile"))
	runtime.KeepAlive(ti.raw)
}
