package market

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/beanmarket/internal/catalog"
)

// HarvestField tracks a smooth per-region harvest outlook index in [0, 1],
// sampled from layered simplex noise so neighboring days stay correlated.
// It is advisory data for consumers; the price process does not read it.
type HarvestField struct {
	noise opensimplex.Noise
	day   int
}

// NewHarvestField creates a harvest outlook field from a seed.
func NewHarvestField(seed int64) *HarvestField {
	return &HarvestField{noise: opensimplex.NewNormalized(seed)}
}

// Advance moves the field forward one simulated day.
func (h *HarvestField) Advance() {
	h.day++
}

// Day returns the current day offset (used to restore a resumed run).
func (h *HarvestField) Day() int { return h.day }

// SetDay restores the day offset.
func (h *HarvestField) SetDay(d int) { h.day = d }

// Outlook samples the current index for every catalogue region. Each region
// reads its own row of the noise field.
func (h *HarvestField) Outlook() map[string]float64 {
	out := make(map[string]float64, len(catalog.Regions))
	for i, region := range catalog.Regions {
		x := float64(h.day)
		y := float64(i) * 7.3 // Separate rows so regions decorrelate
		out[region.Name] = octaveNoise(h.noise, x, y, 3, 0.02, 0.5)
	}
	return out
}

// octaveNoise layers multiple noise frequencies for a natural-looking curve.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
