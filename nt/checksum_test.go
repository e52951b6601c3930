// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package nt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileByteSum(t *testing.T) {
	path := writeTestFile(t, "a.bin", []byte{1, 2, 3, 0xFF})
	require.Equal(t, uint32(0x105), fileByteSum(path))
}

func TestFileByteSumEqualInputs(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7)
	}

	p1 := writeTestFile(t, "one.bin", data)
	p2 := writeTestFile(t, "two.bin", data)
	require.Equal(t, fileByteSum(p1), fileByteSum(p2))

	// A single flipped byte must be detected; the sum is not collision
	// proof, but a one-byte delta always changes it.
	data[100]++
	p3 := writeTestFile(t, "three.bin", data)
	require.NotEqual(t, fileByteSum(p1), fileByteSum(p3))
}

func TestFileByteSumMissingFile(t *testing.T) {
	require.Zero(t, fileByteSum(filepath.Join(t.TempDir(), "missing.bin")))
}
