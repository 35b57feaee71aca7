package budget

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkEstimate(b *testing.B) {
	for _, n := range []int{64, 1024, 16384, 65536} {
		s := strings.Repeat("sedan ", n/6)
		b.Run(fmt.Sprintf("chars=%d", len(s)), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Estimate(s)
			}
		})
	}
}

func BenchmarkRemainingContext(b *testing.B) {
	cases := []struct {
		name   string
		model  string
		prompt int
		out    int
	}{
		{"gpt-4o 128k, mid prompt", "gpt-4o", 20_000, 1_500},
		{"unknown model default 8k", "mystery-model", 4_000, 1_000},
	}
	for _, cs := range cases {
		b.Run(cs.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = RemainingContext(cs.model, cs.out, cs.prompt)
			}
		})
	}
}
