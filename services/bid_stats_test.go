package services

import (
	"testing"

	"github.com/paintlink/paintlink-api/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeBidStatsEmpty(t *testing.T) {
	stats := ComputeBidStats(nil)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.Min)
	assert.Equal(t, 0.0, stats.Max)
	assert.Equal(t, 0.0, stats.Mean)

	stats = ComputeBidStats([]models.Bid{})
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.Mean)
}

func TestComputeBidStatsSingle(t *testing.T) {
	stats := ComputeBidStats([]models.Bid{{BidAmount: 500}})
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 500.0, stats.Min)
	assert.Equal(t, 500.0, stats.Max)
	assert.Equal(t, 500.0, stats.Mean)
}

func TestComputeBidStats(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    BidStats
	}{
		{
			name:    "two bids",
			amounts: []float64{500, 650},
			want:    BidStats{Count: 2, Min: 500, Max: 650, Mean: 575},
		},
		{
			name:    "unordered amounts",
			amounts: []float64{900, 100, 500},
			want:    BidStats{Count: 3, Min: 100, Max: 900, Mean: 500},
		},
		{
			name:    "zero quote",
			amounts: []float64{0, 300},
			want:    BidStats{Count: 2, Min: 0, Max: 300, Mean: 150},
		},
		{
			name:    "identical amounts",
			amounts: []float64{250, 250, 250, 250},
			want:    BidStats{Count: 4, Min: 250, Max: 250, Mean: 250},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bids := make([]models.Bid, len(tt.amounts))
			for i, amount := range tt.amounts {
				bids[i] = models.Bid{BidAmount: amount}
			}
			assert.Equal(t, tt.want, ComputeBidStats(bids))
		})
	}
}

func TestComputeBidStatsIsPure(t *testing.T) {
	bids := []models.Bid{{BidAmount: 500}, {BidAmount: 650}}

	first := ComputeBidStats(bids)
	second := ComputeBidStats(bids)
	assert.Equal(t, first, second, "Stats must be deterministic")

	// Input is not mutated
	assert.Equal(t, 500.0, bids[0].BidAmount)
	assert.Equal(t, 650.0, bids[1].BidAmount)
}
