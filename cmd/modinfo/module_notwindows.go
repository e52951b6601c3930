// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build !windows

package main

import "errors"

func runDumpModule(name string) error {
	return errors.New("loaded-module mode requires Windows")
}
