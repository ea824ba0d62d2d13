package extractor

import (
	"fmt"

	"brkraw/internal/models"
)

// Fixed code tables. These are part of the on-disk contract: the scanner
// writes exactly these identifiers.
var wordTypes = map[string]models.DType{
	"_32BIT_SGN_INT":  models.Int32,
	"_16BIT_SGN_INT":  models.Int16,
	"_8BIT_UNSGN_INT": models.UInt8,
	"_32BIT_FLOAT":    models.Float32,
}

var byteOrders = map[string]string{
	"littleEndian": "<",
	"bigEndian":    ">",
}

// DataArrayInfo resolves everything the binary decoder needs for a 2dseq
// image array: element type, byte order, the full target shape and the
// slope/offset scale pair (exposed, never applied).
type DataArrayInfo struct {
	DType     models.DType
	ByteOrder string

	// Shape is the spatial matrix size; FrameGroupShape appends the extra
	// dimensions when a frame group exists.
	Shape           []int
	FrameGroupShape []int

	// AxisLabels names the axes of Shape ++ FrameGroupShape.
	AxisLabels []string

	// Slope and Offset are scalars when the recorded per-frame lists are
	// uniform; non-uniform lists are kept as-is (an untested condition).
	Slope  any
	Offset any

	Warns []string
}

// NewDataArray resolves the 2dseq element encoding from visu_pars through
// the fixed word-type and byte-order tables. Unknown codes are a hard
// failure: decoding bytes under a guessed element type produces garbage.
func NewDataArray(p Pars, img *ImageInfo, fg *FrameGroupInfo) (*DataArrayInfo, error) {
	info := &DataArrayInfo{}
	if p.VisuPars == nil {
		return nil, fmt.Errorf("%w: data array requires visu_pars", ErrUnsupported)
	}

	word, _ := toString(p.VisuPars.Get("VisuCoreWordType"))
	dtype, ok := wordTypes[word]
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized word type %q", ErrUnsupported, word)
	}
	info.DType = dtype

	order, _ := toString(p.VisuPars.Get("VisuCoreByteOrder"))
	code, ok := byteOrders[order]
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized byte order %q", ErrUnsupported, order)
	}
	info.ByteOrder = code

	if img != nil {
		info.Shape = append([]int(nil), img.Shape...)
		for range img.Shape {
			info.AxisLabels = append(info.AxisLabels, "spatial")
		}
	}
	if fg != nil && fg.Exists {
		info.FrameGroupShape = append([]int(nil), fg.Shape...)
		info.AxisLabels = append(info.AxisLabels, fg.ID...)
	}

	info.Slope = collapseScale(p.VisuPars.Get("VisuCoreDataSlope"), &info.Warns, "slope")
	info.Offset = collapseScale(p.VisuPars.Get("VisuCoreDataOffs"), &info.Warns, "offset")
	return info, nil
}

// collapseScale reduces a uniform per-frame scale list to its scalar value.
// Non-uniform lists pass through with a warning; nothing downstream of this
// code has been exercised against them.
func collapseScale(v any, warns *[]string, name string) any {
	if v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	fs := toFloats(v)
	if len(fs) == 0 {
		return v
	}
	if uniformFloats(fs) {
		return fs[0]
	}
	warn(warns, "dataarray", "non-uniform %s list kept as-is, an untested condition", name)
	return v
}
