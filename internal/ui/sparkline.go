package ui

import "slices"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the newest width samples of data as block characters,
// scaled to the largest sample shown. Short input is left-padded with the
// lowest block, so the result is always width runes.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	samples := sparkWindow(data, width)
	peak := slices.Max(samples)

	out := make([]rune, width)
	for i, v := range samples {
		out[i] = sparkBlock(v, peak)
	}
	return string(out)
}

// sparkWindow returns exactly width samples: the tail of data, zero-padded
// on the left.
func sparkWindow(data []float64, width int) []float64 {
	samples := make([]float64, width)
	if len(data) >= width {
		copy(samples, data[len(data)-width:])
		return samples
	}
	copy(samples[width-len(data):], data)
	return samples
}

func sparkBlock(v, peak float64) rune {
	if peak <= 0 || v <= 0 {
		return sparkBlocks[0]
	}
	top := len(sparkBlocks) - 1
	return sparkBlocks[min(int(v/peak*float64(top)), top)]
}
