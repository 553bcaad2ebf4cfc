package uniswapv2

import (
	"testing"

	"github.com/holiman/uint256"
)

func BenchmarkGetAmountOut_NoAlloc(b *testing.B) {
	rIn := uint256.NewInt(13_451_234_567_890)
	rOut := uint256.NewInt(98_765_432_109_876)
	in := uint256.NewInt(1_000_000)
	dst := new(uint256.Int)
	t1 := new(uint256.Int)
	t2 := new(uint256.Int)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetAmountOut(dst, t1, t2, in, rIn, rOut)
	}
}

func BenchmarkGetAmountIn_NoAlloc(b *testing.B) {
	rIn := uint256.NewInt(13_451_234_567_890)
	rOut := uint256.NewInt(98_765_432_109_876)
	out := uint256.NewInt(1_000_000)
	dst := new(uint256.Int)
	t1 := new(uint256.Int)
	t2 := new(uint256.Int)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GetAmountIn(dst, t1, t2, out, rIn, rOut)
	}
}
