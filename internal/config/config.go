// Package config loads the jbodctl plan-options file. Two on-disk
// formats are accepted: a commented JSON/JSONC document (parsed with
// tailscale/hujson the way calvinalkan-agent-sandbox parses its sandbox
// presets) or a plain YAML document (parsed with gopkg.in/yaml.v3, the
// format nekwebdev-confb uses for its own config file), chosen by the
// options file's extension. Both describe the filter, folder-grouping,
// and packing tunables the planner.Options struct needs. An optional
// Watch helper, ported from the teacher's viper-driven reload pattern,
// lets the web verb re-plan on save.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jbodctl/jbodctl/internal/pack"
	"github.com/jbodctl/jbodctl/internal/planner"
	"github.com/jbodctl/jbodctl/internal/size"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// PlanOptions is the on-disk shape of a plan-options file, in either
// .hujson or .yaml/.yml form. Sizes are accepted as human strings
// ("1GiB", "512MB") the way internal/size parses them, and translated
// to planner.Options by ToPlannerOptions.
type PlanOptions struct {
	MinSize         string   `json:"min_size,omitempty" yaml:"min_size,omitempty"`
	PathPrefixes    []string `json:"path_prefixes,omitempty" yaml:"path_prefixes,omitempty"`
	IncludePatterns []string `json:"include_patterns,omitempty" yaml:"include_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty"`

	MinSplitSize    string  `json:"min_split_size,omitempty" yaml:"min_split_size,omitempty"`
	FolderThreshold float64 `json:"folder_threshold,omitempty" yaml:"folder_threshold,omitempty"`

	MinFreeReserve string   `json:"min_free_reserve,omitempty" yaml:"min_free_reserve,omitempty"`
	Policy         string   `json:"policy,omitempty" yaml:"policy,omitempty"` // "best-fit" | "first-fit"
	KMax           int      `json:"k_max,omitempty" yaml:"k_max,omitempty"`
	SourceVolumes  []string `json:"source_volumes,omitempty" yaml:"source_volumes,omitempty"`
	MinSpace       string   `json:"min_space,omitempty" yaml:"min_space,omitempty"`
}

// Load reads and parses a plan-options file at path. A .yaml or .yml
// extension is decoded as YAML; anything else is treated as .hujson and
// standardized to plain JSON before decoding.
func Load(path string) (PlanOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanOptions{}, fmt.Errorf("reading plan options %s: %w", path, err)
	}

	var opts PlanOptions
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return PlanOptions{}, fmt.Errorf("decoding plan options %s: %w", path, err)
		}
	default:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return PlanOptions{}, fmt.Errorf("parsing plan options %s: %w", path, err)
		}
		if err := json.Unmarshal(standardized, &opts); err != nil {
			return PlanOptions{}, fmt.Errorf("decoding plan options %s: %w", path, err)
		}
	}
	return opts, nil
}

// ToPlannerOptions translates the on-disk options into a planner.Options,
// applying planner.DefaultOptions() for any field left at its zero value.
func (o PlanOptions) ToPlannerOptions() (planner.Options, error) {
	opts := planner.DefaultOptions()

	if o.MinSize != "" {
		n, err := size.ParseBytes(o.MinSize)
		if err != nil {
			return planner.Options{}, fmt.Errorf("min_size: %w", err)
		}
		opts.Filter.MinSizeBytes = n
	}
	opts.Filter.PathPrefixes = o.PathPrefixes
	opts.Filter.IncludePatterns = o.IncludePatterns
	opts.Filter.ExcludePatterns = o.ExcludePatterns

	if o.MinSplitSize != "" {
		n, err := size.ParseBytes(o.MinSplitSize)
		if err != nil {
			return planner.Options{}, fmt.Errorf("min_split_size: %w", err)
		}
		opts.Group.MinSplitSizeBytes = n
	}
	if o.FolderThreshold != 0 {
		opts.Group.FolderThreshold = o.FolderThreshold
	}

	if o.MinFreeReserve != "" {
		n, err := size.ParseBytes(o.MinFreeReserve)
		if err != nil {
			return planner.Options{}, fmt.Errorf("min_free_reserve: %w", err)
		}
		opts.Pack.MinFreeReserveBytes = n
	}
	switch o.Policy {
	case "":
		// keep default
	case string(pack.BestFit):
		opts.Pack.Policy = pack.BestFit
	case string(pack.FirstFit):
		opts.Pack.Policy = pack.FirstFit
	default:
		return planner.Options{}, fmt.Errorf("policy: unrecognized value %q", o.Policy)
	}
	if o.KMax != 0 {
		opts.Pack.KMax = o.KMax
	}
	opts.Pack.SourceVolumes = o.SourceVolumes
	if o.MinSpace != "" {
		n, err := size.ParseBytes(o.MinSpace)
		if err != nil {
			return planner.Options{}, fmt.Errorf("min_space: %w", err)
		}
		opts.Pack.MinSpaceBytes = n
	}

	return opts, nil
}
