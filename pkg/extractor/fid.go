package extractor

import "brkraw/internal/models"

// fidWordTypes maps the acqp raw-data format codes onto element types. The
// scanner never writes unsigned FID samples.
var fidWordTypes = map[string]models.DType{
	"GO_32BIT_SGN_INT": models.Int32,
	"GO_16BIT_SGN_INT": models.Int16,
	"GO_32BIT_FLOAT":   models.Float32,
}

// FIDInfo resolves the element encoding of the raw fid stream.
type FIDInfo struct {
	DType     models.DType
	ByteOrder string
	Warns     []string
}

// NewFID reads GO_raw_data_format and BYTORDA from acqp. Missing or unknown
// codes degrade to the historical default (little-endian int32) with a
// warning; unlike 2dseq decoding, legacy fid files routinely omit these.
func NewFID(p Pars) *FIDInfo {
	info := &FIDInfo{DType: models.Int32, ByteOrder: "<"}
	if p.Acqp == nil {
		warn(&info.Warns, "fid", "acqp not provided, assuming little-endian int32 fid")
		return info
	}
	format, _ := toString(p.Acqp.Get("GO_raw_data_format"))
	if dtype, ok := fidWordTypes[format]; ok {
		info.DType = dtype
	} else if format != "" {
		warn(&info.Warns, "fid", "unrecognized raw data format %q, assuming int32", format)
	}
	if order, _ := toString(p.Acqp.Get("BYTORDA")); order == "big" {
		info.ByteOrder = ">"
	}
	return info
}
