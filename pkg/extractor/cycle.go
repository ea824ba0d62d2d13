package extractor

import "strings"

// CycleInfo describes the temporal axis of a scan: how many non-slice
// frames it acquired and how far apart they are in time.
type CycleInfo struct {
	// NumFrames is the product of every frame-group axis whose id does not
	// name a slice dimension; 1 when no such axis exists.
	NumFrames int

	// TimeStep is the total scan time divided by NumFrames, in the unit the
	// scanner reports (milliseconds).
	TimeStep float64

	Warns []string
}

// NewCycle derives the frame cycle from the frame-group block and the
// recorded scan time. A missing scan time leaves TimeStep at zero with a
// warning.
func NewCycle(p Pars, fg *FrameGroupInfo) *CycleInfo {
	info := &CycleInfo{NumFrames: 1}
	if fg != nil && fg.Exists {
		for i, id := range fg.ID {
			if strings.Contains(strings.ToLower(id), "slice") {
				continue
			}
			info.NumFrames *= fg.Shape[i]
		}
	}

	scanTime, ok := toFloat(get(p.VisuPars, "VisuAcqScanTime"))
	if !ok {
		scanTime, ok = toFloat(get(p.Method, "PVM_ScanTime"))
	}
	if !ok {
		warn(&info.Warns, "cycle", "scan time not recorded, time step unavailable")
		return info
	}
	if info.NumFrames > 0 {
		info.TimeStep = scanTime / float64(info.NumFrames)
	}
	return info
}
