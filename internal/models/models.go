package models

// DType identifies the element type of a decoded binary array.
type DType string

const (
	Int32   DType = "int32"
	Int16   DType = "int16"
	UInt8   DType = "uint8"
	Float32 DType = "float32"
)

// Size returns the element size in bytes, or 0 for an unknown type.
func (d DType) Size() int {
	switch d {
	case Int32, Float32:
		return 4
	case Int16:
		return 2
	case UInt8:
		return 1
	}
	return 0
}

// Geometry describes the spatial layout of a decoded volume.
type Geometry struct {
	// Shape is the spatial matrix size per axis.
	Shape []int

	// VoxelSize is the physical size of each voxel.
	VoxelSize struct {
		X, Y, Z float64
	}

	// Unit is the spatial unit reported by the scanner, usually mm.
	Unit string
}

// NumVoxels returns the product of the shape, 1 for an empty shape.
func (g Geometry) NumVoxels() int {
	n := 1
	for _, s := range g.Shape {
		n *= s
	}
	return n
}
