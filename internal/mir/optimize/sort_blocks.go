package optimize

import "github.com/vellum-lang/vellum/internal/mir"

// SortBlocks reorders fn's blocks for readability: a deterministic
// depth-first walk from the entry block, visiting successors in their
// terminator's natural order (spec §4.7). That successor order is the
// only tie-break; no separate counter is kept. Blocks not reachable from
// the entry follow, each walked in turn in index order.
func SortBlocks(fn *mir.Function) {
	order := make([]int, 0, len(fn.Blocks))
	visited := make([]bool, len(fn.Blocks))
	var walk func(i int)
	walk = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		order = append(order, i)
		for _, s := range mir.Successors(fn.Blocks[i].Terminator) {
			walk(s)
		}
	}
	walk(0)
	for i := range fn.Blocks {
		if !visited[i] {
			walk(i)
		}
	}

	remap := make(map[int]int, len(order))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
	}
	newBlocks := make([]*mir.BasicBlock, len(order))
	for newIdx, oldIdx := range order {
		newBlocks[newIdx] = fn.Blocks[oldIdx]
	}
	for _, bb := range newBlocks {
		rewriteTargets(bb.Terminator, func(t int) int { return remap[t] })
	}
	fn.Blocks = newBlocks
}
