// Package dataset decodes the raw binary arrays of a ParaVision dataset:
// the reconstructed 2dseq image stream and the acquisition-domain fid
// stream. The decoder reads a whole seekable stream, reinterprets the bytes
// under the element type the metadata resolved, and records the
// column-major shape of the result. Slope/offset rescaling is exposed, not
// applied: some consumers want raw integer codes, others physical floats.
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"brkraw/internal/models"
	"brkraw/pkg/extractor"
)

// DecodedArray is a dense numeric array read from a binary stream. Data is
// flat; Shape lists the dimensions under column-major (first index fastest)
// element ordering, spatial axes first, frame-group axes appended.
type DecodedArray struct {
	Data       []float64
	Shape      []int
	AxisLabels []string
	DType      models.DType

	// Slope and Offset are the recorded scale pair, not yet applied to
	// Data. Scalars in the uniform case; the original per-frame lists
	// otherwise.
	Slope  any
	Offset any
}

// Decode reads a 2dseq stream under the given data-array block. The stream
// is rewound first, so a handle may be decoded more than once; closing it
// stays the caller's responsibility.
func Decode(info *extractor.DataArrayInfo, r io.ReadSeeker) (*DecodedArray, error) {
	data, err := readAll(r, info.DType, info.ByteOrder)
	if err != nil {
		return nil, err
	}

	shape := append([]int(nil), info.Shape...)
	shape = append(shape, info.FrameGroupShape...)
	if n := numElements(shape); n != len(data) {
		return nil, fmt.Errorf("dataset: stream holds %d elements, shape %v wants %d",
			len(data), shape, n)
	}

	return &DecodedArray{
		Data:       data,
		Shape:      shape,
		AxisLabels: append([]string(nil), info.AxisLabels...),
		DType:      info.DType,
		Slope:      info.Slope,
		Offset:     info.Offset,
	}, nil
}

// DecodeFID reads a raw fid stream under the given fid block. No shape is
// imposed; fid layout depends on the acquisition ordering, which is the
// reconstruction collaborator's concern.
func DecodeFID(info *extractor.FIDInfo, r io.ReadSeeker) (*DecodedArray, error) {
	data, err := readAll(r, info.DType, info.ByteOrder)
	if err != nil {
		return nil, err
	}
	return &DecodedArray{
		Data:  data,
		Shape: []int{len(data)},
		DType: info.DType,
	}, nil
}

// readAll rewinds the stream, reads it fully and converts every element to
// float64 (exact for all four supported element types).
func readAll(r io.ReadSeeker, dtype models.DType, order string) ([]float64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("dataset: rewinding stream: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: reading stream: %w", err)
	}

	size := dtype.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: element type %q", extractor.ErrUnsupported, dtype)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("dataset: %d bytes do not align to %d-byte %s elements",
			len(raw), size, dtype)
	}

	var bo binary.ByteOrder = binary.LittleEndian
	if order == ">" {
		bo = binary.BigEndian
	}

	n := len(raw) / size
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := raw[i*size:]
		switch dtype {
		case models.Int32:
			out[i] = float64(int32(bo.Uint32(chunk)))
		case models.Int16:
			out[i] = float64(int16(bo.Uint16(chunk)))
		case models.UInt8:
			out[i] = float64(chunk[0])
		case models.Float32:
			out[i] = float64(math.Float32frombits(bo.Uint32(chunk)))
		}
	}
	return out, nil
}

// At returns the element at the given multi-index under the array's
// column-major layout.
func (a *DecodedArray) At(index ...int) float64 {
	offset, stride := 0, 1
	for d, i := range index {
		offset += i * stride
		stride *= a.Shape[d]
	}
	return a.Data[offset]
}

func numElements(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
