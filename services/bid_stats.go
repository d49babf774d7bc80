package services

import (
	"github.com/paintlink/paintlink-api/models"
)

// BidStats holds aggregate statistics over a lead's bid set. Used for
// display and decision support only, never for control flow.
type BidStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// ComputeBidStats computes count, min, max and mean over the given bids.
// On empty input every field is zero; it never divides by zero.
func ComputeBidStats(bids []models.Bid) BidStats {
	if len(bids) == 0 {
		return BidStats{}
	}

	stats := BidStats{
		Count: len(bids),
		Min:   bids[0].BidAmount,
		Max:   bids[0].BidAmount,
	}

	sum := 0.0
	for _, bid := range bids {
		if bid.BidAmount < stats.Min {
			stats.Min = bid.BidAmount
		}
		if bid.BidAmount > stats.Max {
			stats.Max = bid.BidAmount
		}
		sum += bid.BidAmount
	}
	stats.Mean = sum / float64(stats.Count)

	return stats
}
