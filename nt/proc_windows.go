// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package nt

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	// SE_SHUTDOWN_PRIVILEGE, required before NtRaiseHardError may shut the
	// system down.
	seShutdownPrivilege = 19
	// OptionShutdownSystem from the HARDERROR_RESPONSE_OPTION enumeration.
	responseOptionShutdownSystem = 6
)

// RaiseHardError raises a fatal OS-level hard error carrying the given
// NTSTATUS code, after enabling the shutdown privilege for the current
// process. On most systems this brings up the bugcheck-style fatal error
// screen; it does not return control to a healthy process.
func RaiseHardError(code uint32) {
	var wasEnabled bool
	rtlAdjustPrivilege(seShutdownPrivilege, true, false, &wasEnabled)

	var response uint32
	ntRaiseHardError(windows.NTStatus(code), 0, 0, nil, responseOptionShutdownSystem, &response)
}

// RelaunchSelf spawns a fresh instance of the current process image, reusing
// the current command line and working directory, and closes the returned
// handles. Whether to terminate the running instance afterwards is the
// caller's decision.
func RelaunchSelf() error {
	path16, err := windows.UTF16PtrFromString(Current().Path())
	if err != nil {
		return err
	}

	cwd, err := windows.Getwd()
	if err != nil {
		return err
	}
	cwd16, err := windows.UTF16PtrFromString(cwd)
	if err != nil {
		return err
	}

	var si windows.StartupInfo
	si.Cb = uint32(unsafe.Sizeof(si))
	var pi windows.ProcessInformation

	if err := windows.CreateProcess(path16, windows.GetCommandLine(), nil, nil, false, 0, nil, cwd16, &si, &pi); err != nil {
		return err
	}

	windows.CloseHandle(pi.Thread)
	windows.CloseHandle(pi.Process)
	return nil
}

// Terminate forcibly ends the current process with the given exit code. It
// does not return.
func Terminate(code uint32) {
	windows.TerminateProcess(windows.CurrentProcess(), code)
}
