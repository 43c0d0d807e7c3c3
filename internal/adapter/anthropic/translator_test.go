package anthropic

import (
	"math"
	"testing"
)

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		inputTokens  int
		outputTokens int
		want         float64
	}{
		{"zero", 0, 0, 0},
		{"input only", 1_000_000, 0, 3.0},
		{"output only", 0, 1_000_000, 15.0},
		{"typical document", 12_000, 4_000, 0.096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := estimateCost(tt.inputTokens, tt.outputTokens)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("estimateCost(%d, %d) = %v, want %v", tt.inputTokens, tt.outputTokens, got, tt.want)
			}
		})
	}
}
