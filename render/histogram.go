package render

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Histogram buckets the grid's finite samples into evenly sized bins
// spanning [Lo, Hi]. A flat image collapses into a single bin.
type Histogram struct {
	Lo      float64
	Hi      float64
	Counts  []int
	Samples int
}

// ComputeHistogram bins the finite samples of the grid.
func ComputeHistogram(grid PixelGrid, bins int) (Histogram, error) {
	if err := grid.validate(); err != nil {
		return Histogram{}, err
	}
	if bins < 1 {
		return Histogram{}, fmt.Errorf("Histogram requires at least 1 bin, got %d", bins)
	}

	lo, hi, ok := finiteRange(grid.Data)
	if !ok {
		return Histogram{}, fmt.Errorf("Grid has no finite samples")
	}

	out := Histogram{Lo: lo, Hi: hi, Counts: make([]int, bins)}

	if hi == lo {
		for _, v := range grid.Data {
			if isFinite(v) {
				out.Counts[0]++
				out.Samples++
			}
		}
		return out, nil
	}

	width := (hi - lo) / float64(bins)
	for _, v := range grid.Data {
		if !isFinite(v) {
			continue
		}
		bin := int((v - lo) / width)
		if bin >= bins {
			bin = bins - 1
		}
		out.Counts[bin]++
		out.Samples++
	}

	return out, nil
}

// PlotHistogram renders the binned counts as a PNG for display beside
// the image.
func PlotHistogram(hist Histogram, widthPx, heightPx int) ([]byte, error) {
	if len(hist.Counts) == 0 {
		return nil, fmt.Errorf("Histogram has no bins to plot")
	}

	yValues := make([]float64, len(hist.Counts))
	for i, c := range hist.Counts {
		yValues[i] = float64(c)
	}

	graph := chart.Chart{
		Width:  widthPx,
		Height: heightPx,
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
		},
		YAxis: chart.YAxis{
			Style: chart.Hidden(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: binSeq(len(hist.Counts)),
				YValues: yValues,
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func binSeq(n int) []float64 {
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = float64(i)
	}

	return seq
}
