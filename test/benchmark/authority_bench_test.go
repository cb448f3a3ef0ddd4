package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/linkrank/internal/authority"
)

func BenchmarkBuildGraph(b *testing.B) {
	c := syntheticCollection(2000, 10, 0)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		authority.BuildGraph(c)
	}
}

func BenchmarkSolverCompute(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			g := authority.BuildGraph(syntheticCollection(n, 8, 0))
			s, err := authority.NewSolver(authority.Params{Damping: 0.85, Threshold: 0.00001, MaxIterations: 1000})
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Compute(context.Background(), g); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
