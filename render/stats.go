package render

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// PixelStats summarizes the finite sample values of a grid. NaN and
// infinite samples are excluded before any statistic is computed.
type PixelStats struct {
	Samples int
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	StdDev  float64
}

// ComputeStats computes summary statistics over the grid's finite
// samples.
func ComputeStats(grid PixelGrid) (PixelStats, error) {
	if err := grid.validate(); err != nil {
		return PixelStats{}, err
	}

	finite := finiteSamples(grid.Data)
	if len(finite) == 0 {
		return PixelStats{}, fmt.Errorf("Grid has no finite samples")
	}

	data := stats.Float64Data(finite)
	out := PixelStats{Samples: len(finite)}

	var err error
	if out.Min, err = data.Min(); err != nil {
		return PixelStats{}, err
	}
	if out.Max, err = data.Max(); err != nil {
		return PixelStats{}, err
	}
	if out.Mean, err = data.Mean(); err != nil {
		return PixelStats{}, err
	}
	if out.Median, err = data.Median(); err != nil {
		return PixelStats{}, err
	}
	if out.StdDev, err = data.StandardDeviation(); err != nil {
		return PixelStats{}, err
	}

	return out, nil
}

// AutoWindow derives a display window from the 5th and 95th sample
// percentiles, useful when the header carries no window of its own.
// Returns nil when the spread is zero (a flat image windows to itself).
func AutoWindow(grid PixelGrid) (*Window, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}

	finite := finiteSamples(grid.Data)
	if len(finite) == 0 {
		return nil, nil
	}

	data := stats.Float64Data(finite)

	// Percentile needs enough mass in each tail; tiny grids window to
	// their full range instead.
	if len(finite) < 21 {
		lo, err := data.Min()
		if err != nil {
			return nil, err
		}
		hi, err := data.Max()
		if err != nil {
			return nil, err
		}
		if hi == lo {
			return nil, nil
		}

		return &Window{Center: (lo + hi) / 2, Width: hi - lo}, nil
	}

	lo, err := data.Percentile(5)
	if err != nil {
		return nil, err
	}
	hi, err := data.Percentile(95)
	if err != nil {
		return nil, err
	}

	if hi == lo {
		return nil, nil
	}

	return &Window{Center: (lo + hi) / 2, Width: hi - lo}, nil
}

func finiteSamples(data []float64) []float64 {
	finite := make([]float64, 0, len(data))
	for _, v := range data {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}

	return finite
}
