package util

import (
	"fmt"
	"path/filepath"
	"syscall"
)

// NetworkInfo describes whether a JBOD volume's backing mount is local
// disk or network-attached storage.
type NetworkInfo struct {
	IsNetwork bool   // Whether the volume is network-mounted
	Protocol  string // Protocol (smb, nfs, cifs, glusterfs, etc.) or empty if local
	MountPath string // Mount point of the volume
}

// DetectNetworkFilesystem checks whether a volume path is backed by a
// network-mounted filesystem (NFS, SMB/CIFS, GlusterFS, ...) rather
// than local disk, on both Linux and macOS.
func DetectNetworkFilesystem(volumePath string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(volumePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for volume %s: %w", volumePath, err)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(absPath, &stat); err != nil {
		return nil, fmt.Errorf("failed to stat volume %s: %w", absPath, err)
	}

	return detectPlatformNetwork(absPath, &stat)
}

// IsNetworkPath reports whether a volume path sits on network storage.
// probe.go uses this to flag a volume as remote in its free-space scan.
func IsNetworkPath(volumePath string) bool {
	info, err := DetectNetworkFilesystem(volumePath)
	if err != nil {
		return false
	}
	return info.IsNetwork
}
