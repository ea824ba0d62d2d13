package extractor

import (
	"fmt"
	"strings"
)

// SlicePackInfo describes how the scan's slices are grouped: a scan holds
// one or more independently oriented packs of parallel slices (tri-plane
// localizers are the common many-pack case). NumSlicesEachPack and
// SliceDistancesEachPack run parallel over the packs.
type SlicePackInfo struct {
	NumSlicePacks          int
	NumSlicesEachPack      []int
	SliceDistancesEachPack []float64
	ReverseSliceOrder      bool
	Warns                  []string
}

// NewSlicePack decodes the slice-pack layout from visu_pars. The decode
// strategy is selected once from the visu schema version: the legacy path
// keys on phase-encoding-direction cardinality and the FG_SLICE frame-group
// axis, the modern path on the explicit slice-pack definition fields. A
// computed distance of zero falls back to the global frame thickness.
func NewSlicePack(p Pars, fg *FrameGroupInfo) (*SlicePackInfo, error) {
	info := &SlicePackInfo{NumSlicePacks: 1, NumSlicesEachPack: []int{1}}
	if p.VisuPars == nil {
		warn(&info.Warns, "slicepack", "visu_pars not provided, assuming a single slice")
		info.SliceDistancesEachPack = []float64{1}
		return info, nil
	}

	if order, ok := toString(p.VisuPars.Get("VisuCoreDiskSliceOrder")); ok {
		info.ReverseSliceOrder = strings.Contains(order, "reverse")
	}

	var err error
	switch schemaOf(p.VisuPars, &info.Warns, "slicepack") {
	case SchemaLegacy:
		err = info.decodeLegacy(p, fg)
	case SchemaModern:
		err = info.decodeModern(p)
	}
	if err != nil {
		return nil, err
	}

	// Zero distances break affine scaling; the frame thickness is the
	// documented fallback.
	thickness := frameThickness(p)
	for i, d := range info.SliceDistancesEachPack {
		if d == 0 {
			info.SliceDistancesEachPack[i] = thickness
		}
	}
	return info, nil
}

// decodeLegacy handles visu version 1. The pack count is the cardinality of
// the phase-encoding direction list (a scalar or an all-equal list means one
// pack) and the slices per pack come from the FG_SLICE frame-group axis.
func (info *SlicePackInfo) decodeLegacy(p Pars, fg *FrameGroupInfo) error {
	if fg != nil && fg.Exists {
		switch v := p.VisuPars.Get("VisuAcqImagePhaseEncDir").(type) {
		case nil:
			warn(&info.Warns, "slicepack", "no phase encoding direction recorded, assuming one slice pack")
		case string:
			info.NumSlicePacks = 1
		case []any:
			dirs := toStrings(v)
			if len(dirs) == 0 {
				return fmt.Errorf("%w: unrecognized phase encoding directions %v", ErrUnsupported, v)
			}
			if allEqual(dirs) {
				info.NumSlicePacks = 1
			} else {
				info.NumSlicePacks = len(dirs)
			}
		default:
			return fmt.Errorf("%w: unrecognized phase encoding value %v", ErrUnsupported, v)
		}
	}

	info.NumSlicesEachPack = legacySlicesPerPack(fg, info.NumSlicePacks)
	info.SliceDistancesEachPack = make([]float64, info.NumSlicePacks)
	thickness := frameThickness(p)
	for i := range info.SliceDistancesEachPack {
		info.SliceDistancesEachPack[i] = thickness
	}
	return nil
}

// legacySlicesPerPack divides the FG_SLICE axis evenly over the packs. A
// scan without a slice frame group is a single-slice acquisition.
func legacySlicesPerPack(fg *FrameGroupInfo, numPacks int) []int {
	slices := 1
	if fg != nil && fg.Exists {
		for i, id := range fg.ID {
			if strings.Contains(id, "FG_SLICE") {
				slices = fg.Shape[i]
				break
			}
		}
	}
	if numPacks > 0 && slices%numPacks == 0 {
		slices /= numPacks
	}
	out := make([]int, numPacks)
	for i := range out {
		out[i] = slices
	}
	return out
}

// decodeModern handles visu versions 3 and later, which declare the packs
// explicitly: VisuCoreSlicePacksDef carries the pack count,
// VisuCoreSlicePacksSlices the per-pack slice counts and
// VisuCoreSlicePacksSliceDist the per-pack slice distances.
func (info *SlicePackInfo) decodeModern(p Pars) error {
	defRows := pairRows(p.VisuPars.Get("VisuCoreSlicePacksDef"))
	if len(defRows) > 0 {
		if n, ok := secondInt(defRows[0]); ok && n > 0 {
			info.NumSlicePacks = n
		}
	}

	var counts []int
	for _, row := range pairRows(p.VisuPars.Get("VisuCoreSlicePacksSlices")) {
		if n, ok := secondInt(row); ok {
			counts = append(counts, n)
		}
	}
	if len(counts) > 0 {
		info.NumSlicesEachPack = counts
	}
	if len(info.NumSlicesEachPack) != info.NumSlicePacks {
		// Keep the declared pack count authoritative; replicate or trim.
		counts := make([]int, info.NumSlicePacks)
		for i := range counts {
			if i < len(info.NumSlicesEachPack) {
				counts[i] = info.NumSlicesEachPack[i]
			} else {
				counts[i] = 1
			}
		}
		warn(&info.Warns, "slicepack", "%d slice counts declared for %d packs",
			len(info.NumSlicesEachPack), info.NumSlicePacks)
		info.NumSlicesEachPack = counts
	}

	dists := toFloats(p.VisuPars.Get("VisuCoreSlicePacksSliceDist"))
	info.SliceDistancesEachPack = make([]float64, info.NumSlicePacks)
	for i := range info.SliceDistancesEachPack {
		if i < len(dists) {
			info.SliceDistancesEachPack[i] = dists[i]
		} else if len(dists) > 0 {
			info.SliceDistancesEachPack[i] = dists[len(dists)-1]
		}
	}
	return nil
}

// frameThickness reads the global frame thickness, the fallback slice
// distance. Zero when unavailable; callers treat that as dimensionless.
func frameThickness(p Pars) float64 {
	v := get(p.VisuPars, "VisuCoreFrameThickness")
	if f, ok := toFloat(v); ok {
		return f
	}
	if fs := toFloats(v); len(fs) > 0 {
		return fs[0]
	}
	return 0
}

func allEqual(ss []string) bool {
	for _, s := range ss[1:] {
		if s != ss[0] {
			return false
		}
	}
	return true
}

// pairRows extracts the (tag, value) rows of a slice-pack field, whether
// the grammar decoded it as a plain nested array or as a complex array
// (whose level_1 groups carry the rows).
func pairRows(v any) [][]any {
	if m, ok := v.(map[string][]any); ok {
		var out [][]any
		for _, group := range m["level_1"] {
			if row, ok := group.([]any); ok {
				out = append(out, row)
			}
		}
		return out
	}
	return rows(v)
}

// secondInt reads the value element of a (tag, value) row; short rows fall
// back to their last element.
func secondInt(row []any) (int, bool) {
	if len(row) >= 2 {
		return toInt(row[1])
	}
	if len(row) == 1 {
		return toInt(row[0])
	}
	return 0, false
}
