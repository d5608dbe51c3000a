package mir

// Dominators computes each block's immediate dominator by index, entry
// (block 0) excepted, whose slot holds -1. Unreachable blocks also hold -1.
func Dominators(fn *Function) []int {
	n := len(fn.Blocks)
	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	if n == 0 {
		return idom
	}

	preds := predecessors(fn)
	order, postIndex := reversePostorder(fn)

	idom[0] = 0 // self-dominator sentinel so intersect always terminates at entry
	changed := true
	for changed {
		changed = false
		for _, b := range order {
			if b == 0 {
				continue
			}
			newIdom := -1
			for _, p := range preds[b] {
				if idom[p] == -1 {
					continue // predecessor not yet processed this round
				}
				if newIdom == -1 {
					newIdom = p
					continue
				}
				newIdom = intersect(p, newIdom, idom, postIndex)
			}
			if newIdom != -1 && newIdom != idom[b] {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	idom[0] = -1 // restore "entry has no dominator" for callers
	return idom
}

func intersect(a, b int, idom, postIndex []int) int {
	for a != b {
		for postIndex[a] > postIndex[b] {
			a = idom[a]
			if a == -1 {
				return b
			}
		}
		for postIndex[b] > postIndex[a] {
			b = idom[b]
			if b == -1 {
				return a
			}
		}
	}
	return a
}

// DominanceFrontier returns, for each block, the set of blocks where its
// dominance ends: join points reachable from it along some path without it
// dominating them. Used by lifetime inference to find the merge blocks
// where two borrow paths' constraints must both hold (spec §4.5).
func DominanceFrontier(fn *Function) map[int][]int {
	idom := Dominators(fn)
	preds := predecessors(fn)
	frontier := make(map[int][]int, len(fn.Blocks))

	for b, ps := range preds {
		if len(ps) < 2 {
			continue
		}
		for _, p := range ps {
			runner := p
			for runner != idom[b] && runner != -1 {
				frontier[runner] = append(frontier[runner], b)
				runner = idom[runner]
			}
		}
	}
	return frontier
}

// DominancePreorder returns every reachable block index in dominator-tree
// preorder (entry first, then each block's dominance-tree children): a
// traversal order in which a block's dominator is always visited before it.
func DominancePreorder(fn *Function) []int {
	idom := Dominators(fn)
	children := make(map[int][]int, len(fn.Blocks))
	for b, d := range idom {
		if d >= 0 {
			children[d] = append(children[d], b)
		}
	}

	var order []int
	var walk func(b int)
	walk = func(b int) {
		order = append(order, b)
		for _, c := range children[b] {
			walk(c)
		}
	}
	if len(fn.Blocks) > 0 {
		walk(0)
	}
	return order
}

func predecessors(fn *Function) map[int][]int {
	preds := make(map[int][]int, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		for _, s := range Successors(bb.Terminator) {
			preds[s] = append(preds[s], i)
		}
	}
	return preds
}

// reversePostorder walks fn's CFG depth-first from entry and returns block
// indices in reverse postorder, plus a lookup from block index to its
// position in that order (lower means "visited earlier", the ordering
// Dominators' fixed point needs to converge in one pass over well-formed
// reducible CFGs).
func reversePostorder(fn *Function) ([]int, []int) {
	n := len(fn.Blocks)
	visited := make([]bool, n)
	var post []int
	var walk func(b int)
	walk = func(b int) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range Successors(fn.Blocks[b].Terminator) {
			walk(s)
		}
		post = append(post, b)
	}
	if n > 0 {
		walk(0)
	}

	order := make([]int, len(post))
	postIndex := make([]int, n)
	for i := range postIndex {
		postIndex[i] = -1
	}
	for i, b := range post {
		rpoIndex := len(post) - 1 - i
		order[rpoIndex] = b
		postIndex[b] = rpoIndex
	}
	return order, postIndex
}
