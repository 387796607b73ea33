// Package probe measures free and total capacity for each configured
// volume root via statfs, resolving to the nearest existing ancestor
// directory when a volume root has not been created yet.
package probe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/util"
	"golang.org/x/sys/unix"
)

// Probe statfs's volumePath (or its nearest existing ancestor) and
// returns the VolumeState the planner's WorldView is built from.
func Probe(volumePath string) (model.VolumeState, error) {
	target, err := resolveExistingAncestor(volumePath)
	if err != nil {
		return model.VolumeState{}, fmt.Errorf("failed to resolve %s: %w", volumePath, err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return model.VolumeState{}, fmt.Errorf("statfs %s: %w", target, err)
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)

	if util.IsNetworkPath(target) {
		util.InfoLog("Volume %s resolves to a network filesystem (%s)", volumePath, target)
	}

	return model.VolumeState{
		Path:       volumePath,
		TotalBytes: total,
		FreeBytes:  free,
	}, nil
}

// ProbeAll probes every volume root in order, collecting per-volume
// errors rather than aborting on the first failure so one missing or
// unmounted volume does not block probing the rest.
func ProbeAll(volumePaths []string) ([]model.VolumeState, []error) {
	volumes := make([]model.VolumeState, 0, len(volumePaths))
	var errs []error

	for _, path := range volumePaths {
		v, err := Probe(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		volumes = append(volumes, v)
	}
	return volumes, errs
}

// resolveExistingAncestor walks up from path until it finds a
// directory that exists, so a volume root that has not been created
// yet can still be probed against the filesystem that would host it.
func resolveExistingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	current := abs
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor found for %s", abs)
		}
		current = parent
	}
}
