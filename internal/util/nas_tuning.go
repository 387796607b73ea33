package util

import (
	"fmt"
)

// NASConfig holds the copy-tuning knobs jbodctl applies when a move's
// source or destination volume turns out to be network-mounted rather
// than a local disk in the JBOD.
type NASConfig struct {
	Concurrency   int
	BufferSize    int
	RetryAttempts int
	TimeoutSec    int
	IsNASMode     bool
	DetectedInfo  *NetworkInfo
}

// AutoTuneForPath inspects a move's source and destination volume paths
// and returns copy settings tuned for whichever one turns out to be
// network storage. If nasMode is non-nil it overrides auto-detection,
// letting the apply verb's --nas-mode flag force the decision instead.
func AutoTuneForPath(sourceVolume, destVolume string, nasMode *bool, baseConcurrency int) (*NASConfig, error) {
	cfg := &NASConfig{
		Concurrency:   baseConcurrency,
		BufferSize:    128 * 1024, // Default 128KB
		RetryAttempts: 0,
		TimeoutSec:    10,
		IsNASMode:     false,
	}

	// Operator forced NAS mode on or off via --nas-mode; skip detection.
	if nasMode != nil {
		cfg.IsNASMode = *nasMode
		if cfg.IsNASMode {
			applyNASOptimizations(cfg)
			InfoLog("NAS mode: explicitly enabled via --nas-mode")
		} else {
			InfoLog("NAS mode: explicitly disabled via --nas-mode")
		}
		return cfg, nil
	}

	// Auto-detect network filesystems on either side of the move.
	var isNetwork bool
	var detectedInfo *NetworkInfo

	if sourceVolume != "" {
		srcInfo, err := DetectNetworkFilesystem(sourceVolume)
		if err != nil {
			WarnLog("Failed to detect filesystem for source volume (%s): %v", sourceVolume, err)
		} else if srcInfo.IsNetwork {
			isNetwork = true
			detectedInfo = srcInfo
			InfoLog("Network filesystem detected: source volume is on %s (%s)",
				srcInfo.Protocol, srcInfo.MountPath)
		}
	}

	if !isNetwork && destVolume != "" {
		destInfo, err := DetectNetworkFilesystem(destVolume)
		if err != nil {
			WarnLog("Failed to detect filesystem for destination volume (%s): %v", destVolume, err)
		} else if destInfo.IsNetwork {
			isNetwork = true
			detectedInfo = destInfo
			InfoLog("Network filesystem detected: destination volume is on %s (%s)",
				destInfo.Protocol, destInfo.MountPath)
		}
	}

	if isNetwork {
		cfg.IsNASMode = true
		cfg.DetectedInfo = detectedInfo
		applyNASOptimizations(cfg)

		InfoLog("")
		InfoLog("=== NAS Optimization Enabled ===")
		InfoLog("Detected %s mount at: %s", detectedInfo.Protocol, detectedInfo.MountPath)
		InfoLog("Auto-tuned move settings:")
		InfoLog("  Concurrency: %d → %d workers", baseConcurrency, cfg.Concurrency)
		InfoLog("  Buffer size: 128KB → %dKB", cfg.BufferSize/1024)
		InfoLog("  Retry attempts: 0 → %d", cfg.RetryAttempts)
		InfoLog("  Timeout: %ds per operation", cfg.TimeoutSec)
		InfoLog("")
		InfoLog("TIP: pass --nas-mode=false to disable auto-tuning")
		InfoLog("")
	} else {
		InfoLog("Local volumes detected - using standard move settings")
	}

	return cfg, nil
}

// applyNASOptimizations applies NAS-specific tuning to a move's copy
// settings, favoring fewer concurrent connections and bigger, retried
// reads over the raw worker count a local-disk JBOD move would use.
func applyNASOptimizations(cfg *NASConfig) {
	if cfg.Concurrency > 4 {
		cfg.Concurrency = 4
	} else if cfg.Concurrency == 0 {
		cfg.Concurrency = 2 // Minimum for NAS
	}

	cfg.BufferSize = 256 * 1024 // 256KB for network
	cfg.RetryAttempts = 3
	cfg.TimeoutSec = 30
}

// FormatNASSettings returns a human-readable summary of the settings a
// move will run with, for the apply verb's --nas-mode log line.
func FormatNASSettings(cfg *NASConfig) string {
	if !cfg.IsNASMode {
		return "NAS mode: disabled (local volumes)"
	}

	protocol := "unknown"
	mountPath := "unknown"
	if cfg.DetectedInfo != nil {
		protocol = cfg.DetectedInfo.Protocol
		mountPath = cfg.DetectedInfo.MountPath
	}

	return fmt.Sprintf(`NAS mode: enabled
  Protocol: %s
  Mount: %s
  Concurrency: %d workers
  Buffer: %dKB
  Retries: %d
  Timeout: %ds`,
		protocol, mountPath,
		cfg.Concurrency, cfg.BufferSize/1024,
		cfg.RetryAttempts, cfg.TimeoutSec)
}
