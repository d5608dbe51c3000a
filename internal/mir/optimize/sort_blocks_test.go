package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-lang/vellum/internal/mir"
	"github.com/vellum-lang/vellum/internal/mir/optimize"
)

// Blocks are allocated entry(0) -> far(1) -> near(2), but the entry only
// reaches near directly; SortBlocks should place near right after entry
// in DFS order and rewrite the Goto that used to point at index 2.
func TestSortBlocksOrdersByReachabilityFromEntry(t *testing.T) {
	fn := mir.NewFunction(path("reorder"), nil, u32())
	fn.NewBlock() // 0: entry
	fn.NewBlock() // 1: far, reached only from near
	fn.NewBlock() // 2: near, reached directly from entry

	fn.Terminate(0, &mir.Goto{Target: 2})
	fn.Terminate(2, &mir.Goto{Target: 1})
	fn.Terminate(1, &mir.Return{})

	optimize.SortBlocks(fn)

	require.Len(t, fn.Blocks, 3)
	g0, ok := fn.Blocks[0].Terminator.(*mir.Goto)
	require.True(t, ok)
	assert.Equal(t, 1, g0.Target, "near block should now sit at index 1, right after entry")
}
