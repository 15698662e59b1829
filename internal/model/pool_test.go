package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		starting  ResourceAmount
		extracted ResourceAmount
		floor     ResourceAmount
		want      ResourceAmount
	}{
		{name: "partial extraction", starting: 1000, extracted: 15, want: 985},
		{name: "exact depletion", starting: 130, extracted: 130, want: 0},
		{name: "over extraction clamps", starting: 130, extracted: 500, want: 0},
		{name: "nothing taken", starting: 50, extracted: 0, want: 50},
		{name: "custom floor", starting: 100, extracted: 95, floor: 10, want: 10},
		{name: "huge extraction clamps", starting: 1000, extracted: math.MaxInt64, want: 0},
		{name: "huge extraction above floor", starting: 1000, extracted: math.MaxInt64, floor: 10, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deplete(tt.starting, tt.extracted, tt.floor))
		})
	}
}

func TestExtracted(t *testing.T) {
	t.Parallel()

	moves := []*Move{{Amount: 5}, {Amount: 125}, {Amount: 0}}
	assert.Equal(t, ResourceAmount(130), Extracted(moves))
	assert.Equal(t, ResourceAmount(0), Extracted(nil))
}

func TestExtractedSaturates(t *testing.T) {
	t.Parallel()

	moves := []*Move{{Amount: math.MaxInt64}, {Amount: math.MaxInt64}}
	assert.Equal(t, ResourceAmount(math.MaxInt64), Extracted(moves))

	moves = []*Move{{Amount: 1}, {Amount: math.MaxInt64}}
	assert.Equal(t, ResourceAmount(math.MaxInt64), Extracted(moves))
}

func TestIsDepleted(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDepleted(0, 0))
	assert.True(t, IsDepleted(10, 10))
	assert.False(t, IsDepleted(1, 0))
}
