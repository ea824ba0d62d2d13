package extractor

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func singleSlicePack(slices int, distance float64) *SlicePackInfo {
	return &SlicePackInfo{
		NumSlicePacks:          1,
		NumSlicesEachPack:      []int{slices},
		SliceDistancesEachPack: []float64{distance},
	}
}

// TestOrientationIdentity checks the axis description of an axis-aligned
// orientation matrix: each column maps to its own physical axis.
func TestOrientationIdentity(t *testing.T) {
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuSubjectType=Biped
##$VisuSubjectPosition=Head_Supine
##$VisuCoreOrientation=( 1, 9 )
1 0 0 0 1 0 0 0 1
##$VisuCorePosition=( 1, 3 )
-12.8 -9.6 0
##END=
`)
	or, err := NewOrientation(p, singleSlicePack(1, 2))
	if err != nil {
		t.Fatalf("NewOrientation failed: %v", err)
	}
	if len(or.Packs) != 1 {
		t.Fatalf("Expected one pack, got %d", len(or.Packs))
	}
	pack := or.Packs[0]
	if pack.Desc != [3]int{0, 1, 2} {
		t.Errorf("Expected axis description [0 1 2], got %v", pack.Desc)
	}
	if !reflect.DeepEqual(pack.Origin, []float64{-12.8, -9.6, 0}) {
		t.Errorf("Expected the single position as origin, got %v", pack.Origin)
	}
	if or.SubjectType != "Biped" || or.SubjectPosition != "Head_Supine" {
		t.Errorf("Unexpected subject metadata %q %q", or.SubjectType, or.SubjectPosition)
	}
}

// TestOrientationSinglePackAgreement collapses per-slice orientation entries
// of a single pack and estimates the origin over the slice positions.
func TestOrientationSinglePackAgreement(t *testing.T) {
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 3, 9 )
1 1 1 0 0 0 0 0 0 0 0 0 1 1 1 0 0 0 0 0 0 0 0 0 1 1 1
##$VisuCorePosition=( 3, 3 )
0 0 0 0 0 0 0 2 4
##END=
`)
	or, err := NewOrientation(p, singleSlicePack(3, 2))
	if err != nil {
		t.Fatalf("NewOrientation failed: %v", err)
	}
	pack := or.Packs[0]
	if len(pack.Positions) != 3 {
		t.Fatalf("Expected 3 slice positions, got %d", len(pack.Positions))
	}
	// No gradient matrix recorded: the slice axis picks its minimum.
	if !reflect.DeepEqual(pack.Origin, []float64{0, 0, 0}) {
		t.Errorf("Expected origin [0 0 0], got %v", pack.Origin)
	}
}

// TestOrientationDisagreement rejects a single pack whose per-slice entries
// do not agree.
func TestOrientationDisagreement(t *testing.T) {
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 2, 9 )
1 -1 0 0 0 0 0 0 1 -1 0 0 0 0 0 0 1 1
##$VisuCorePosition=( 2, 3 )
0 0 0 0 0 2
##END=
`)
	if _, err := NewOrientation(p, singleSlicePack(2, 2)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

// TestOrientationGroupedPacks resolves two packs from consecutive agreeing
// entry groups.
func TestOrientationGroupedPacks(t *testing.T) {
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 4, 9 )
1 1 -1 -1 0 0 0 0 0 0 0 0 0 0 0 0 1 1 -1 -1 0 0 0 0 0 0 0 0 0 0 0 0 1 1 1 1
##$VisuCorePosition=( 4, 3 )
0 0 5 5 0 0 0 0 0 2 0 2
##END=
`)
	sp := &SlicePackInfo{
		NumSlicePacks:          2,
		NumSlicesEachPack:      []int{2, 2},
		SliceDistancesEachPack: []float64{2, 2},
	}
	or, err := NewOrientation(p, sp)
	if err != nil {
		t.Fatalf("NewOrientation failed: %v", err)
	}
	if len(or.Packs) != 2 {
		t.Fatalf("Expected 2 packs, got %d", len(or.Packs))
	}
	if !reflect.DeepEqual(or.Packs[0].Origin, []float64{0, 0, 0}) {
		t.Errorf("Expected first pack origin [0 0 0], got %v", or.Packs[0].Origin)
	}
	if !reflect.DeepEqual(or.Packs[1].Origin, []float64{5, 0, 0}) {
		t.Errorf("Expected second pack origin [5 0 0], got %v", or.Packs[1].Origin)
	}
	if or.Packs[1].Matrix.At(0, 0) != -1 {
		t.Errorf("Second pack did not keep its own matrix: %v", mat.Formatted(or.Packs[1].Matrix))
	}
}

// TestOrientationPositionShortfall rejects metadata whose position rows
// cannot cover the declared packs or slices, in both cardinality branches.
func TestOrientationPositionShortfall(t *testing.T) {
	// One orientation entry per pack, but a single position row.
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 3, 9 )
1 1 1 0 0 0 0 0 0 0 0 0 1 1 1 0 0 0 0 0 0 0 0 0 1 1 1
##$VisuCorePosition=( 1, 3 )
0 0 0
##END=
`)
	sp := &SlicePackInfo{
		NumSlicePacks:          3,
		NumSlicesEachPack:      []int{1, 1, 1},
		SliceDistancesEachPack: []float64{2, 2, 2},
	}
	if _, err := NewOrientation(p, sp); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for too few positions, got %v", err)
	}

	// Grouped entries: the second pack's slice range runs past the rows.
	p = visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 4, 9 )
1 1 1 1 0 0 0 0 0 0 0 0 0 0 0 0 1 1 1 1 0 0 0 0 0 0 0 0 0 0 0 0 1 1 1 1
##$VisuCorePosition=( 2, 3 )
0 0 0 0 0 2
##END=
`)
	sp = &SlicePackInfo{
		NumSlicePacks:          2,
		NumSlicesEachPack:      []int{2, 2},
		SliceDistancesEachPack: []float64{2, 2},
	}
	if _, err := NewOrientation(p, sp); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported for a grouped position shortfall, got %v", err)
	}
}

// TestOrientationMalformedWidth rejects position rows of the wrong width
// with an error that names the malformation, not a missing key.
func TestOrientationMalformedWidth(t *testing.T) {
	p := visuPars(t, `
##TITLE=Parameter List
##$VisuVersion=3
##$VisuCoreOrientation=( 1, 9 )
1 0 0 0 1 0 0 0 1
##$VisuCorePosition=( 2 )
1 2
##END=
`)
	_, err := NewOrientation(p, singleSlicePack(1, 2))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Expected ErrUnsupported, got %v", err)
	}
	if !strings.Contains(err.Error(), "malformed") {
		t.Errorf("Expected the error to mention malformed input, got %q", err)
	}
}

// TestReversedOrigin moves the origin one slice-distance step along the
// pack's third axis when the disk slice order is reversed.
func TestReversedOrigin(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	got := reversedOrigin(m, []float64{0, 0, 5}, 2)
	if !reflect.DeepEqual(got, []float64{0, 0, 7}) {
		t.Errorf("Expected [0 0 7], got %v", got)
	}
}

// TestEstimateOriginBranches pins the discrete Euler-angle decision table:
// which end of the slice axis anchors the volume for the axis-aligned
// rotations the table covers.
func TestEstimateOriginBranches(t *testing.T) {
	identity := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	rotZ90 := mat.NewDense(3, 3, []float64{0, -1, 0, 1, 0, 0, 0, 0, 1})
	rotZ180 := mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -1, 0, 0, 0, 1})
	rotXNeg90 := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 0, 1, 0, -1, 0})

	zSpan := [][]float64{{0, 0, 0}, {0, 0, 2}, {0, 0, 4}}
	xSpan := [][]float64{{0, 0, 0}, {2, 0, 0}, {4, 0, 0}}
	ySpan := [][]float64{{0, 0, 0}, {0, 2, 0}, {0, 4, 0}}

	cases := []struct {
		name      string
		positions [][]float64
		gradient  *mat.Dense
		want      []float64
	}{
		{"axial identity picks min", zSpan, identity, []float64{0, 0, 0}},
		{"axial z180 picks max", zSpan, rotZ180, []float64{0, 0, 4}},
		{"sagittal z90 picks max", xSpan, rotZ90, []float64{4, 0, 0}},
		{"sagittal identity picks min", xSpan, identity, []float64{0, 0, 0}},
		{"coronal x-90 picks max", ySpan, rotXNeg90, []float64{0, 4, 0}},
		{"coronal identity picks min", ySpan, identity, []float64{0, 0, 0}},
		{"legacy z axis picks min", zSpan, nil, []float64{0, 0, 0}},
		{"legacy y axis picks max", ySpan, nil, []float64{0, 4, 0}},
		{"legacy x axis picks min", xSpan, nil, []float64{0, 0, 0}},
	}
	for _, c := range cases {
		if got := estimateOrigin(c.positions, c.gradient); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

// TestSnapAxes keeps only the dominant rounded component per column.
func TestSnapAxes(t *testing.T) {
	g := mat.NewDense(3, 3, []float64{
		0.99, -0.1, 0,
		0.1, 0.99, 0,
		0, 0, 1,
	})
	snapped := snapAxes(g)
	want := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if !mat.Equal(snapped, want) {
		t.Errorf("Expected identity after snapping, got %v", mat.Formatted(snapped))
	}
}

// TestGradientOrient reads the first 3x3 block of ACQ_grad_matrix.
func TestGradientOrient(t *testing.T) {
	p := Pars{Acqp: mustParams(t, "acqp", `
##TITLE=Parameter List
##$ACQ_grad_matrix=( 1, 3, 3 )
1 0 0 0 1 0 0 0 1
##END=
`)}
	g := gradientOrient(p)
	if g == nil {
		t.Fatal("Expected a gradient matrix")
	}
	if g.At(0, 0) != 1 || g.At(1, 1) != 1 || g.At(2, 2) != 1 {
		t.Errorf("Unexpected gradient matrix %v", mat.Formatted(g))
	}
}
