// Copyright (c) The iw8-mod AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package nt

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go mksyscall_windows.go
//go:generate go run golang.org/x/tools/cmd/goimports -w zsyscall_windows.go

//sys getModuleHandle(moduleName *uint16) (handle windows.Handle, err error) = kernel32.GetModuleHandleW
//sys rtlAdjustPrivilege(privilege uint32, enable bool, currentThread bool, wasEnabled *bool) (ntstatus error) = ntdll.RtlAdjustPrivilege
//sys ntRaiseHardError(status windows.NTStatus, numParams uint32, unicodeStringParamMask uint32, params *uintptr, validResponseOption uint32, response *uint32) (ntstatus error) = ntdll.NtRaiseHardError
