package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"brkraw/pkg/affine"
	"brkraw/pkg/config"
	"brkraw/pkg/dataset"
	"brkraw/pkg/extractor"
	"brkraw/pkg/study"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "ParaVision study directory or zip archive")
	scanID := flag.Int("scan", 0, "Scan ID to inspect (default: list all scans)")
	recoID := flag.Int("reco", 1, "Reconstruction ID within the scan")
	configPath := flag.String("config", "brkraw.yaml", "Path to the YAML configuration file")
	decodeData := flag.Bool("decode", false, "Decode the 2dseq array and print value statistics")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *verbose || cfg.Output.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	s, err := study.Open(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open study: %v", err)
	}

	if *scanID == 0 {
		listScans(s)
		return
	}

	scan := findScan(s, *scanID)
	if scan == nil {
		log.Fatalf("Scan %d not found", *scanID)
	}
	if err := printScan(scan, *recoID, cfg, *decodeData); err != nil {
		log.Fatalf("Failed to inspect scan %d: %v", *scanID, err)
	}
}

func findScan(s *study.Study, id int) *study.Scan {
	for _, scan := range s.Scans {
		if scan.ID == id {
			return scan
		}
	}
	return nil
}

// listScans prints a one-line summary per scan in the study.
func listScans(s *study.Study) {
	fmt.Printf("Found %d scans:\n", len(s.Scans))
	for _, scan := range s.Scans {
		info, err := scan.Info(firstRecoID(scan))
		if err != nil {
			fmt.Printf("  [%3d] (undecodable: %v)\n", scan.ID, err)
			continue
		}
		fmt.Printf("  [%3d] %-24s %v\n", scan.ID, info.Protocol.Protocol, info.Image.Shape)
	}
}

func firstDistance(sp *extractor.SlicePackInfo) float64 {
	if len(sp.SliceDistancesEachPack) > 0 {
		return sp.SliceDistancesEachPack[0]
	}
	return 0
}

func firstRecoID(scan *study.Scan) int {
	if len(scan.Recos) > 0 {
		return scan.Recos[0].ID
	}
	return 1
}

// printScan prints the full decoded view of one reconstruction: protocol,
// geometry, the affine per slice pack, and optionally data statistics.
func printScan(scan *study.Scan, recoID int, cfg *config.Config, decodeData bool) error {
	info, err := scan.Info(recoID)
	if err != nil {
		return err
	}

	fmt.Printf("Scan %d, reco %d\n", scan.ID, recoID)
	fmt.Printf("  Protocol:    %s (%s)\n", info.Protocol.Protocol, info.Protocol.PulseProgram)
	fmt.Printf("  Software:    %s\n", info.Protocol.Software)
	fmt.Printf("  Dim:         %d-D, shape %v\n", info.Image.Dim, info.Image.Shape)
	fmt.Printf("  FOV:         %v %s\n", info.Image.FOV, info.Image.Unit)
	fmt.Printf("  Resolution:  %v\n", info.Image.Resolution)
	geo := info.Image.Geometry(firstDistance(info.SlicePack))
	fmt.Printf("  Voxel:       %g x %g x %g %s, %d voxels per frame\n",
		geo.VoxelSize.X, geo.VoxelSize.Y, geo.VoxelSize.Z, geo.Unit, geo.NumVoxels())
	fmt.Printf("  Slice packs: %d, slices %v, distances %v\n",
		info.SlicePack.NumSlicePacks, info.SlicePack.NumSlicesEachPack,
		info.SlicePack.SliceDistancesEachPack)
	fmt.Printf("  Frames:      %d, time step %.2f ms\n", info.Cycle.NumFrames, info.Cycle.TimeStep)

	resolved, err := affine.Resolve(info.Affine, cfg.Convert.SubjectType, cfg.Convert.SubjectPosition)
	if err != nil {
		return err
	}
	for i, a := range resolved {
		fmt.Printf("  Affine (pack %d):\n%v\n", i,
			mat.Formatted(a, mat.Prefix("    "), mat.Squeeze()))
	}

	if decodeData {
		if err := printDataStats(scan, recoID, info, cfg); err != nil {
			return err
		}
	}

	if cfg.Output.ShowWarns && len(info.Warns) > 0 {
		fmt.Printf("  Warnings:\n")
		for _, w := range info.Warns {
			fmt.Printf("    - %s\n", w)
		}
	}
	return nil
}

func printDataStats(scan *study.Scan, recoID int, info *study.ScanInfo, cfg *config.Config) error {
	stream, err := scan.OpenData(recoID)
	if err != nil {
		return err
	}
	arr, err := dataset.Decode(info.DataArray, stream)
	if err != nil {
		return err
	}
	if len(arr.Data) == 0 {
		fmt.Printf("  Data:        %s %v (empty)\n", arr.DType, arr.Shape)
		return nil
	}

	slope, slopeOK := arr.Slope.(float64)
	offset, offsetOK := arr.Offset.(float64)
	min, max := arr.Data[0], arr.Data[0]
	for _, v := range arr.Data {
		if cfg.Convert.ApplyScale && slopeOK && offsetOK {
			v = v*slope + offset
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	fmt.Printf("  Data:        %s %v, range [%g, %g]\n", arr.DType, arr.Shape, min, max)
	return nil
}
