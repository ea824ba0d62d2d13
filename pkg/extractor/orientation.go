package extractor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// PackOrientation is the resolved spatial frame of one slice pack.
type PackOrientation struct {
	// Matrix is the 3x3 gradient orientation of the pack.
	Matrix *mat.Dense

	// Desc maps each matrix column to the physical axis holding its largest
	// absolute component: 0 sagittal, 1 coronal, 2 axial.
	Desc [3]int

	// Origin is the estimated volume origin coordinate of the pack.
	Origin []float64

	// Positions holds every slice position belonging to the pack.
	Positions [][]float64
}

// OrientationInfo carries the per-pack orientation frames plus the subject
// placement metadata the affine engine needs to rotate image space into a
// canonical subject space.
type OrientationInfo struct {
	SubjectType     string
	SubjectPosition string
	GradientOrient  *mat.Dense
	Packs           []PackOrientation
	Warns           []string
}

// NewOrientation resolves one orientation frame per slice pack from
// VisuCoreOrientation and VisuCorePosition. When the orientation entry
// count does not match the pack count the entries are grouped consecutively
// by the per-pack slice counts, and every entry within a group must agree;
// disagreement, like any other cardinality the decode tables do not cover,
// returns ErrUnsupported rather than a guessed geometry.
func NewOrientation(p Pars, sp *SlicePackInfo) (*OrientationInfo, error) {
	info := &OrientationInfo{}
	if p.VisuPars == nil {
		return nil, fmt.Errorf("%w: orientation requires visu_pars", ErrUnsupported)
	}
	if s, ok := toString(p.VisuPars.Get("VisuSubjectType")); ok {
		info.SubjectType = s
	}
	if s, ok := toString(p.VisuPars.Get("VisuSubjectPosition")); ok {
		info.SubjectPosition = s
	}
	info.GradientOrient = gradientOrient(p)
	if info.GradientOrient == nil {
		warn(&info.Warns, "orientation", "no gradient orientation recorded, using legacy origin estimation")
	}

	orients := floatRows(p.VisuPars.Get("VisuCoreOrientation"), 9)
	positions := floatRows(p.VisuPars.Get("VisuCorePosition"), 3)
	if len(orients) == 0 || len(positions) == 0 {
		return nil, fmt.Errorf("%w: orientation or position missing or malformed in visu_pars", ErrUnsupported)
	}

	numPacks := sp.NumSlicePacks
	switch {
	case len(orients) == numPacks:
		if len(positions) < numPacks {
			return nil, fmt.Errorf("%w: %d positions cannot cover %d slice packs",
				ErrUnsupported, len(positions), numPacks)
		}
		for i := 0; i < numPacks; i++ {
			pack, err := newPack(orients[i], positions[i:i+1], sp, i, info)
			if err != nil {
				return nil, err
			}
			info.Packs = append(info.Packs, *pack)
		}

	case numPacks == 1:
		// Single pack, one entry per slice: every entry must agree.
		for _, o := range orients[1:] {
			if !floats.Equal(o, orients[0]) {
				return nil, fmt.Errorf("%w: single slice pack with disagreeing orientation entries", ErrUnsupported)
			}
		}
		pack, err := newPack(orients[0], positions, sp, 0, info)
		if err != nil {
			return nil, err
		}
		info.Packs = append(info.Packs, *pack)

	default:
		// Multiple packs, multiple slices per pack: collapse consecutive
		// same-valued groups to one representative entry per pack.
		offset := 0
		for i := 0; i < numPacks; i++ {
			count := 1
			if i < len(sp.NumSlicesEachPack) {
				count = sp.NumSlicesEachPack[i]
			}
			if offset+count > len(orients) || offset+count > len(positions) {
				return nil, fmt.Errorf("%w: %d orientation and %d position entries cannot cover %d slice packs",
					ErrUnsupported, len(orients), len(positions), numPacks)
			}
			for _, o := range orients[offset+1 : offset+count] {
				if !floats.Equal(o, orients[offset]) {
					return nil, fmt.Errorf("%w: slice pack %d holds disagreeing orientation entries",
						ErrUnsupported, i)
				}
			}
			pack, err := newPack(orients[offset], positions[offset:offset+count], sp, i, info)
			if err != nil {
				return nil, err
			}
			info.Packs = append(info.Packs, *pack)
			offset += count
		}
	}
	return info, nil
}

// newPack builds one pack frame: the 3x3 matrix, its axis description, and
// the origin estimate (span-based for normal slice order, one distance step
// along the pack axis for reversed order).
func newPack(orient []float64, positions [][]float64, sp *SlicePackInfo, packID int, info *OrientationInfo) (*PackOrientation, error) {
	m := mat.NewDense(3, 3, append([]float64(nil), orient...))
	pack := &PackOrientation{Matrix: m, Positions: positions}
	for j := 0; j < 3; j++ {
		maxRow, maxAbs := 0, 0.0
		for i := 0; i < 3; i++ {
			if a := math.Abs(m.At(i, j)); a > maxAbs {
				maxRow, maxAbs = i, a
			}
		}
		pack.Desc[j] = maxRow
	}

	if sp.ReverseSliceOrder {
		distance := 0.0
		if packID < len(sp.SliceDistancesEachPack) {
			distance = sp.SliceDistancesEachPack[packID]
		}
		pack.Origin = reversedOrigin(m, positions[0], distance)
	} else {
		pack.Origin = estimateOrigin(positions, info.GradientOrient)
	}
	return pack, nil
}

// reversedOrigin moves the origin one slice-distance step along the pack's
// own third axis: rotate into pack-local coordinates, add the distance,
// rotate back.
func reversedOrigin(m *mat.Dense, origin []float64, distance float64) []float64 {
	local := mat.NewVecDense(3, nil)
	local.MulVec(m.T(), mat.NewVecDense(3, append([]float64(nil), origin...)))
	local.SetVec(2, local.AtVec(2)+distance)
	out := mat.NewVecDense(3, nil)
	out.MulVec(m, local)
	return []float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// estimateOrigin picks the slice position that anchors the volume. The axis
// with the widest positional span is the slice axis; whether its lowest or
// highest position is the origin follows a discrete table over the Euler
// angles of the rounded gradient orientation. The table reproduces behavior
// validated on a limited set of acquisitions; see orientation tests for the
// pinned branches.
func estimateOrigin(positions [][]float64, gradient *mat.Dense) []float64 {
	if len(positions) == 1 {
		return positions[0]
	}

	axis, span := 0, -1.0
	for j := 0; j < 3; j++ {
		col := column(positions, j)
		if s := floats.Max(col) - floats.Min(col); s > span {
			axis, span = j, s
		}
	}
	col := column(positions, axis)

	pickMin := true
	if gradient != nil {
		rx, _, rz := eulerDegrees(snapAxes(gradient))
		switch axis {
		case 0:
			pickMin = !(rz == 90 || rz == -90)
		case 1:
			pickMin = rx != -90
		case 2:
			pickMin = !(rx == 90 || rz == 180)
		}
	} else {
		// No gradient data (legacy acquisitions): fixed per-axis choice.
		pickMin = axis != 1
	}

	idx := floats.MinIdx(col)
	if !pickMin {
		idx = floats.MaxIdx(col)
	}
	return positions[idx]
}

// snapAxes reduces the gradient orientation to its dominant axes: per
// column, keep only the largest-magnitude component, rounded to the nearest
// integer. The result is the idealized rotation the Euler branching keys on.
func snapAxes(gradient *mat.Dense) *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		maxRow, maxAbs := 0, 0.0
		for i := 0; i < 3; i++ {
			if a := math.Abs(gradient.At(i, j)); a > maxAbs {
				maxRow, maxAbs = i, a
			}
		}
		out.Set(maxRow, j, math.Round(gradient.At(maxRow, j)))
	}
	return out
}

// eulerDegrees decomposes a rotation matrix under the Z·Y·X convention and
// returns integer-rounded degrees. The branch tables compare these with
// exact equality on purpose: the inputs are snapped to axis-aligned
// rotations first.
func eulerDegrees(m *mat.Dense) (rx, ry, rz int) {
	sy := -m.At(2, 0)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	x := math.Atan2(m.At(2, 1), m.At(2, 2))
	y := math.Asin(sy)
	z := math.Atan2(m.At(1, 0), m.At(0, 0))
	deg := func(r float64) int { return int(math.Round(r * 180 / math.Pi)) }
	return deg(x), deg(y), deg(z)
}

// gradientOrient reads the first gradient matrix from acqp, when recorded.
func gradientOrient(p Pars) *mat.Dense {
	fs := toFloats(get(p.Acqp, "ACQ_grad_matrix"))
	if len(fs) < 9 {
		return nil
	}
	return mat.NewDense(3, 3, fs[:9])
}

// floatRows coerces a nested array value into rows of the given width. A
// single flat list of exactly width elements becomes one row.
func floatRows(v any, width int) [][]float64 {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	flat := toFloats(v)
	if _, nested := list[0].([]any); !nested {
		if len(flat) == width {
			return [][]float64{flat}
		}
		return nil
	}
	var out [][]float64
	for _, e := range list {
		row := toFloats(e)
		if len(row) != width {
			return nil
		}
		out = append(out, row)
	}
	return out
}

func column(rows [][]float64, j int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[j]
	}
	return out
}
