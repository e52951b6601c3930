// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package nt

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// fileByteSum sums every byte of the file at path, as an unsigned 8-bit
// value, into a wrapping 32-bit accumulator. It returns 0 if the file cannot
// be opened or mapped.
//
// This is a cheap tamper/identity heuristic, not a hash. Existing
// deployments reproduce the same naive sum, so the algorithm must not be
// changed.
func fileByteSum(path string) uint32 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return 0
	}
	defer data.Unmap()

	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}
