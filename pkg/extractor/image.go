package extractor

import "brkraw/internal/models"

// ImageInfo is the spatial geometry block: dimensionality, matrix size,
// field of view and the voxel resolution derived from them. Resolution and
// FOV stay nil when VisuCoreExtent is missing; Dim and Shape are still
// populated so callers can at least size the data.
type ImageInfo struct {
	Dim        int
	DimDesc    []string
	Shape      []int
	FOV        []float64
	Resolution []float64
	Unit       string
	Warns      []string
}

// NewImage reads the spatial geometry from visu_pars. The frame-group block
// is consulted so that scans declaring their third axis as a frame group
// rather than a spatial dimension are flagged, not misread.
func NewImage(p Pars, fg *FrameGroupInfo) *ImageInfo {
	info := &ImageInfo{}
	if p.VisuPars == nil {
		warn(&info.Warns, "image", "visu_pars not provided, image geometry unavailable")
		return info
	}

	if dim, ok := toInt(p.VisuPars.Get("VisuCoreDim")); ok {
		info.Dim = dim
		if dim > 3 {
			warn(&info.Warns, "image", "unexpected core dimensionality %d (above 3)", dim)
		}
	}

	info.DimDesc = toStrings(p.VisuPars.Get("VisuCoreDimDesc"))
	for _, desc := range info.DimDesc {
		if desc != "spatial" {
			warn(&info.Warns, "image", "non-spatial dimension description %q", desc)
		}
	}

	info.Shape = toInts(p.VisuPars.Get("VisuCoreSize"))
	if fg != nil && !fg.Exists {
		if n, ok := toInt(p.VisuPars.Get("VisuCoreFrameCount")); ok && n > 1 {
			warn(&info.Warns, "image", "%d frames declared without a frame group descriptor", n)
		}
	}
	if s, ok := toString(p.VisuPars.Get("VisuCoreUnits")); ok {
		info.Unit = s
	} else if us := toStrings(p.VisuPars.Get("VisuCoreUnits")); len(us) > 0 {
		info.Unit = us[0]
	}

	fov := toFloats(p.VisuPars.Get("VisuCoreExtent"))
	if len(fov) == 0 {
		warn(&info.Warns, "image", "VisuCoreExtent missing, field of view and resolution unavailable")
		return info
	}
	info.FOV = fov
	if len(fov) == len(info.Shape) {
		info.Resolution = make([]float64, len(fov))
		for i := range fov {
			if info.Shape[i] != 0 {
				info.Resolution[i] = fov[i] / float64(info.Shape[i])
			}
		}
	} else {
		warn(&info.Warns, "image", "extent has %d entries for %d axes, resolution unavailable",
			len(fov), len(info.Shape))
	}
	return info
}

// Geometry packages the spatial block into the shared volume model. For 2-D
// scans the given slice distance fills the third voxel axis.
func (info *ImageInfo) Geometry(sliceDistance float64) models.Geometry {
	g := models.Geometry{
		Shape: append([]int(nil), info.Shape...),
		Unit:  info.Unit,
	}
	r := info.Resolution
	if len(r) > 0 {
		g.VoxelSize.X = r[0]
	}
	if len(r) > 1 {
		g.VoxelSize.Y = r[1]
	}
	if len(r) > 2 {
		g.VoxelSize.Z = r[2]
	} else {
		g.VoxelSize.Z = sliceDistance
	}
	return g
}
