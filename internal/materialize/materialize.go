// Package materialize converts the packer's accumulated FileMove list
// into a finalized Plan with derived summary statistics, and derives
// the per-target batches of pending moves in placement order.
package materialize

import "github.com/jbodctl/jbodctl/internal/model"

// Materialize computes the Plan's Summary over the pending moves. Moves
// are returned in their original overall order, not grouped; the
// per-target batches are derived with ByTarget.
func Materialize(moves []model.FileMove) model.Plan {
	summary := model.Summary{
		MovesByVolume: make(map[string]int),
		BytesByVolume: make(map[string]int64),
	}
	for _, m := range moves {
		if m.Status != model.StatusPending {
			continue
		}
		summary.TotalFiles++
		summary.TotalBytes += m.File.SizeBytes
		summary.MovesByVolume[m.TargetVolume]++
		summary.BytesByVolume[m.TargetVolume] += m.File.SizeBytes
	}
	return model.Plan{Moves: moves, Summary: summary}
}

// ByTarget groups a Plan's pending moves into per-destination batches,
// each listing its members' RelativePath in placement order. Target
// volumes are returned in first-placement order, matching the order the
// packer committed them.
func ByTarget(plan model.Plan) (targets []string, batches map[string][]model.FileMove) {
	batches = make(map[string][]model.FileMove)
	for _, m := range plan.Moves {
		if m.Status != model.StatusPending {
			continue
		}
		if _, ok := batches[m.TargetVolume]; !ok {
			targets = append(targets, m.TargetVolume)
		}
		batches[m.TargetVolume] = append(batches[m.TargetVolume], m)
	}
	return targets, batches
}
