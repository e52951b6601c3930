// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package nt

import (
	dpe "debug/pe"
)

// OptionalHeader is the optional-header layout for this architecture.
type OptionalHeader dpe.OptionalHeader64

const (
	optionalHeaderMagic = 0x020B

	// ordinalFlag is set in an original thunk whose import is bound by
	// ordinal instead of by name.
	ordinalFlag uintptr = 1 << 63
)
