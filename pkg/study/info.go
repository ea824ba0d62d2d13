package study

import (
	"brkraw/pkg/affine"
	"brkraw/pkg/extractor"
)

// ScanInfo aggregates every extractor's block for one reconstruction, plus
// the computed affine result. Warns merges the per-block warning lists in a
// fixed order; the blocks keep their own copies too.
type ScanInfo struct {
	Protocol   *extractor.ProtocolInfo
	FrameGroup *extractor.FrameGroupInfo
	Image      *extractor.ImageInfo
	SlicePack  *extractor.SlicePackInfo
	Cycle      *extractor.CycleInfo
	Orient     *extractor.OrientationInfo
	DataArray  *extractor.DataArrayInfo
	Diffusion  *extractor.DiffusionInfo
	FID        *extractor.FIDInfo
	Affine     *affine.Result
	Warns      []string
}

// Info runs the full extraction chain for the chosen reconstruction. The
// blocks are recomputed on every call; selecting a different reco never
// mutates previous results. Geometrically unusual but decodable scans
// return a complete info with a non-empty warning list; structurally
// unsupported metadata fails the specific step and propagates.
func (s *Scan) Info(recoID int) (*ScanInfo, error) {
	pars := s.Pars(recoID)

	info := &ScanInfo{}
	info.Protocol = extractor.NewProtocol(pars)
	info.FrameGroup = extractor.NewFrameGroup(pars)
	info.Image = extractor.NewImage(pars, info.FrameGroup)

	var err error
	info.SlicePack, err = extractor.NewSlicePack(pars, info.FrameGroup)
	if err != nil {
		return nil, err
	}
	info.Cycle = extractor.NewCycle(pars, info.FrameGroup)
	info.Orient, err = extractor.NewOrientation(pars, info.SlicePack)
	if err != nil {
		return nil, err
	}
	info.DataArray, err = extractor.NewDataArray(pars, info.Image, info.FrameGroup)
	if err != nil {
		return nil, err
	}
	info.Diffusion = extractor.NewDiffusion(pars)
	info.FID = extractor.NewFID(pars)

	info.Affine, err = affine.Compute(info.Image, info.SlicePack, info.Orient)
	if err != nil {
		return nil, err
	}

	info.Warns = mergeWarns(
		info.Protocol.Warns,
		info.FrameGroup.Warns,
		info.Image.Warns,
		info.SlicePack.Warns,
		info.Cycle.Warns,
		info.Orient.Warns,
		info.DataArray.Warns,
		info.Diffusion.Warns,
		info.FID.Warns,
		info.Affine.Warns,
	)
	return info, nil
}

func mergeWarns(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
