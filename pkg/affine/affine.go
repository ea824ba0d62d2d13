// Package affine derives 4x4 spatial transforms from decoded scan geometry.
// One transform is produced per slice pack; the transform carries the voxel
// resolution scaling, the gradient orientation, the estimated volume origin
// and, after Resolve, the subject-pose and subject-type rotations that move
// image space into a canonical subject space.
package affine

import (
	"fmt"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"brkraw/pkg/extractor"
)

// sliceOrient maps an orientation-description axis index to its physical
// slice orientation label.
var sliceOrient = map[int]string{
	0: "sagittal",
	1: "coronal",
	2: "axial",
}

// Result is the computed transform set for one reconstruction: one 4x4
// matrix per slice pack plus the subject metadata the computation resolved.
type Result struct {
	Affines         []*mat.Dense
	SubjectType     string
	SubjectPosition string
	Warns           []string
}

// Compute builds the image-space affine for every slice pack. For 2-D
// acquisitions the in-plane resolution pairs with each pack's slice
// distance; 3-D acquisitions use the declared resolution directly; any
// other dimensionality is unsupported.
func Compute(img *extractor.ImageInfo, sp *extractor.SlicePackInfo, or *extractor.OrientationInfo) (*Result, error) {
	res := &Result{
		SubjectType:     or.SubjectType,
		SubjectPosition: or.SubjectPosition,
	}
	for i, pack := range or.Packs {
		resol, err := packResolution(img, sp, i)
		if err != nil {
			return nil, err
		}
		if !hasSliceAxis(pack) {
			msg := fmt.Sprintf("pack %d maps no orientation axis to the slice direction, assuming axial", i)
			res.Warns = append(res.Warns, msg)
			log.WithField("pack", i).Warn(msg)
		}
		res.Affines = append(res.Affines, packAffine(pack, resol))
	}
	return res, nil
}

// hasSliceAxis reports whether any orientation column maps to the physical
// slice axis. A degenerate matrix may map none; orientLabel then falls back
// to axial.
func hasSliceAxis(pack extractor.PackOrientation) bool {
	for j := 0; j < 3; j++ {
		if pack.Desc[j] == 2 {
			return true
		}
	}
	return false
}

// packResolution resolves the three-axis voxel size of one pack.
func packResolution(img *extractor.ImageInfo, sp *extractor.SlicePackInfo, packID int) ([]float64, error) {
	switch img.Dim {
	case 2:
		if len(img.Resolution) < 2 {
			return nil, fmt.Errorf("%w: 2-D scan without in-plane resolution", extractor.ErrUnsupported)
		}
		distance := 0.0
		if packID < len(sp.SliceDistancesEachPack) {
			distance = sp.SliceDistancesEachPack[packID]
		}
		return []float64{img.Resolution[0], img.Resolution[1], distance}, nil
	case 3:
		if len(img.Resolution) < 3 {
			return nil, fmt.Errorf("%w: 3-D scan without a 3-axis resolution", extractor.ErrUnsupported)
		}
		return img.Resolution[:3], nil
	}
	return nil, fmt.Errorf("%w: %d-dimensional acquisition", extractor.ErrUnsupported, img.Dim)
}

// packAffine composes orientationT · diag(resolution) with the pack origin
// into a homogeneous transform. Coronal slice orientation negates the
// through-slice resolution component first; that orientation is stored
// under a left-handed convention.
func packAffine(pack extractor.PackOrientation, resol []float64) *mat.Dense {
	r := append([]float64(nil), resol...)
	if orientLabel(pack) == "coronal" {
		r[2] = -r[2]
	}
	diag := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		diag.Set(i, i, r[i])
	}
	var linear mat.Dense
	linear.Mul(pack.Matrix.T(), diag)

	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, linear.At(i, j))
		}
		out.Set(i, 3, pack.Origin[i])
	}
	out.Set(3, 3, 1)
	return out
}

// orientLabel identifies the pack's slice orientation: the orientation axis
// mapping to the third output axis, read through the physical axis table.
func orientLabel(pack extractor.PackOrientation) string {
	for j := 0; j < 3; j++ {
		if pack.Desc[j] == 2 {
			return sliceOrient[j]
		}
	}
	return sliceOrient[2]
}

// Resolve applies the subject corrections to every affine in the result.
// The optional overrides replace the metadata-recorded subject type and
// position; empty strings keep the recorded values. An empty resolved
// position applies no pose rotation at all.
func Resolve(res *Result, subjType, subjPosition string) ([]*mat.Dense, error) {
	if subjType == "" {
		subjType = res.SubjectType
	}
	if subjPosition == "" {
		subjPosition = res.SubjectPosition
	}
	out := make([]*mat.Dense, len(res.Affines))
	for i, a := range res.Affines {
		corrected, err := correct(a, subjType, subjPosition)
		if err != nil {
			return nil, err
		}
		out[i] = corrected
	}
	return out, nil
}

// correct applies the pose rotation table and the non-biped reorientation
// to one affine.
func correct(a *mat.Dense, subjType, subjPosition string) (*mat.Dense, error) {
	out := mat.DenseCopyOf(a)
	if subjPosition != "" {
		part, side, ok := strings.Cut(subjPosition, "_")
		if !ok {
			return nil, fmt.Errorf("%w: subject position %q", extractor.ErrUnsupported, subjPosition)
		}
		switch part {
		case "Head":
			switch side {
			case "Supine":
				out = rotate(out, 0, 0, math.Pi)
			case "Prone":
				// Canonical placement, nothing to correct.
			case "Left":
				out = rotate(out, 0, 0, math.Pi/2)
			case "Right":
				out = rotate(out, 0, 0, -math.Pi/2)
			default:
				return nil, fmt.Errorf("%w: subject position %q", extractor.ErrUnsupported, subjPosition)
			}
		case "Foot", "Tail":
			switch side {
			case "Supine":
				out = rotate(out, math.Pi, 0, 0)
			case "Prone":
				out = rotate(out, 0, math.Pi, 0)
			case "Left":
				out = rotate(out, 0, math.Pi, 0)
				out = rotate(out, 0, 0, -math.Pi/2)
			case "Right":
				out = rotate(out, 0, math.Pi, 0)
				out = rotate(out, 0, 0, math.Pi/2)
			default:
				return nil, fmt.Errorf("%w: subject position %q", extractor.ErrUnsupported, subjPosition)
			}
		default:
			return nil, fmt.Errorf("%w: subject position %q", extractor.ErrUnsupported, subjPosition)
		}
	}
	if subjType != "" && subjType != "Biped" {
		// Quadruped and phantom frames reorient into the biped convention.
		out = rotate(out, -math.Pi/2, 0, 0)
		out = rotate(out, 0, math.Pi, 0)
	}
	return out, nil
}

// rotate applies Rz·Ry·Rx to the whole homogeneous transform, rotating the
// translation together with the linear part.
func rotate(a *mat.Dense, rx, ry, rz float64) *mat.Dense {
	var r mat.Dense
	r.Mul(rotZ(rz), rotY(ry))
	r.Mul(mat.DenseCopyOf(&r), rotX(rx))

	r4 := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r4.Set(i, j, r.At(i, j))
		}
	}
	r4.Set(3, 3, 1)

	out := mat.NewDense(4, 4, nil)
	out.Mul(r4, a)
	return out
}

func rotX(rad float64) *mat.Dense {
	c, s := math.Cos(rad), math.Sin(rad)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

func rotY(rad float64) *mat.Dense {
	c, s := math.Cos(rad), math.Sin(rad)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

func rotZ(rad float64) *mat.Dense {
	c, s := math.Cos(rad), math.Sin(rad)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}
