package extractor

import "math"

// bvecEpsilon guards the b-vector normalization against division by a
// near-zero norm (the b0 volumes record null gradient vectors).
const bvecEpsilon = 1e-8

// DiffusionInfo carries the diffusion weighting of a DWI scan: effective
// b-values and unit-normalized gradient vectors. Both stay nil for
// non-diffusion scans.
type DiffusionInfo struct {
	BVals []float64
	BVecs [][]float64
	Warns []string
}

// NewDiffusion reads PVM_DwEffBval and PVM_DwGradVec from the method table.
// Gradient vectors are L2-normalized; zero-norm vectors (b0 frames) pass
// through unscaled.
func NewDiffusion(p Pars) *DiffusionInfo {
	info := &DiffusionInfo{}
	if p.Method == nil {
		warn(&info.Warns, "diffusion", "method not provided, diffusion info unavailable")
		return info
	}
	info.BVals = toFloats(p.Method.Get("PVM_DwEffBval"))
	vecs := floatRows(p.Method.Get("PVM_DwGradVec"), 3)
	for _, v := range vecs {
		norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		out := append([]float64(nil), v...)
		if norm > bvecEpsilon {
			for i := range out {
				out[i] /= norm
			}
		}
		info.BVecs = append(info.BVecs, out)
	}
	if len(info.BVals) > 0 && len(info.BVecs) > 0 && len(info.BVals) != len(info.BVecs) {
		warn(&info.Warns, "diffusion", "%d b-values for %d gradient vectors",
			len(info.BVals), len(info.BVecs))
	}
	return info
}
