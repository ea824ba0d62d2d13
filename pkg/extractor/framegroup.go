package extractor

// FrameGroupInfo describes the extra dimensions a scan declares beyond its
// spatial axes: repetitions, echoes, diffusion directions and so on. Shape,
// ID, Comment and DependentVals run parallel over the declared groups.
type FrameGroupInfo struct {
	// Exists is false when visu_pars declares no frame-group dimension;
	// every other field is then zero-valued.
	Exists bool

	Type          string
	Shape         []int
	ID            []string
	Comment       []string
	DependentVals [][][]any
	Size          int
	Warns         []string
}

// NewFrameGroup decodes the ordered frame-group descriptor from visu_pars.
// Each descriptor entry carries (groupSize, groupId, comment,
// dependentValsStart, dependentValsCount); the dependent-value ranges index
// into VisuGroupDepVals.
func NewFrameGroup(p Pars) *FrameGroupInfo {
	info := &FrameGroupInfo{}
	if _, ok := toInt(get(p.VisuPars, "VisuFGOrderDescDim")); !ok {
		warn(&info.Warns, "framegroup", "no frame group described in visu_pars")
		return info
	}
	info.Exists = true
	info.Type = "frame_group"
	info.Size = 1

	depVals := rows(get(p.VisuPars, "VisuGroupDepVals"))
	for _, desc := range rows(get(p.VisuPars, "VisuFGOrderDesc")) {
		if len(desc) < 5 {
			warn(&info.Warns, "framegroup", "short frame group descriptor: %v", desc)
			continue
		}
		size, _ := toInt(desc[0])
		id, _ := toString(desc[1])
		comment, _ := toString(desc[2])
		start, _ := toInt(desc[3])
		count, _ := toInt(desc[4])

		info.Shape = append(info.Shape, size)
		info.ID = append(info.ID, id)
		info.Comment = append(info.Comment, comment)
		info.DependentVals = append(info.DependentVals, sliceDepVals(depVals, start, count))
		info.Size *= size
	}
	return info
}

func sliceDepVals(depVals [][]any, start, count int) [][]any {
	if count <= 0 || start < 0 || start+count > len(depVals) {
		return nil
	}
	return depVals[start : start+count]
}
