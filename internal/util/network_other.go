//go:build !linux && !darwin
// +build !linux,!darwin

package util

import "syscall"

// detectPlatformNetwork is a stub for platforms jbodctl doesn't probe
// for network-mounted volumes on; every volume is treated as local.
func detectPlatformNetwork(path string, stat *syscall.Statfs_t) (*NetworkInfo, error) {
	return &NetworkInfo{
		IsNetwork: false,
		Protocol:  "",
		MountPath: "",
	}, nil
}
