// Package study is the thin filesystem adapter over a ParaVision study
// tree. It discovers scans and reconstructions, reads their parameter files
// into jcamp tables and hands seekable binary streams to the dataset
// decoder. A study opens from a plain directory or from a zip archive; the
// decoding core never sees the difference.
package study

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"brkraw/pkg/extractor"
	"brkraw/pkg/jcamp"
)

// Study is one opened ParaVision study: its scans sorted by ID.
type Study struct {
	Subject *jcamp.Parameters
	Scans   []*Scan

	fsys fs.FS
}

// Scan is one acquisition within a study: its acqp and method tables plus
// the reconstructions found under pdata.
type Scan struct {
	ID     int
	Acqp   *jcamp.Parameters
	Method *jcamp.Parameters
	Recos  []*Reco

	fsys fs.FS
	dir  string
}

// Reco is one reconstruction of a scan.
type Reco struct {
	ID       int
	VisuPars *jcamp.Parameters
	RecoPars *jcamp.Parameters
}

// Open opens a study from a directory or a zip archive path.
func Open(p string) (*Study, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return Load(os.DirFS(p))
	}
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("study: opening archive: %w", err)
	}
	// The reader stays open for the study's lifetime; parameter files are
	// read eagerly but binary streams open on demand.
	return Load(zr)
}

// Load builds a study from any fs.FS rooted at the study directory, or at
// an archive whose single top-level folder is the study directory.
func Load(fsys fs.FS) (*Study, error) {
	root, err := findRoot(fsys)
	if err != nil {
		return nil, err
	}
	s := &Study{fsys: fsys}
	s.Subject, _ = loadParams(fsys, path.Join(root, "subject"), "subject", 0, 0)

	entries, err := fs.ReadDir(fsys, noDot(root))
	if err != nil {
		return nil, fmt.Errorf("study: reading study dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		scan, err := loadScan(fsys, path.Join(root, e.Name()), id)
		if err != nil {
			log.WithField("scan", id).Warnf("skipping scan: %v", err)
			continue
		}
		s.Scans = append(s.Scans, scan)
	}
	sort.Slice(s.Scans, func(i, j int) bool { return s.Scans[i].ID < s.Scans[j].ID })
	if len(s.Scans) == 0 {
		return nil, fmt.Errorf("study: no scans found")
	}
	return s, nil
}

// findRoot locates the study directory: the FS root itself when it holds
// numbered scan directories, otherwise the single folder wrapping them
// (the usual zip layout).
func findRoot(fsys fs.FS) (string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return "", fmt.Errorf("study: reading root: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Name()); err == nil && e.IsDir() {
			return ".", nil
		}
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) == 1 {
		return dirs[0], nil
	}
	return "", fmt.Errorf("study: no scan directories at the root")
}

func noDot(p string) string {
	if p == "" {
		return "."
	}
	return p
}

func loadScan(fsys fs.FS, dir string, id int) (*Scan, error) {
	scan := &Scan{ID: id, fsys: fsys, dir: dir}
	var err error
	scan.Acqp, err = loadParams(fsys, path.Join(dir, "acqp"), "acqp", id, 0)
	if err != nil {
		return nil, err
	}
	scan.Method, _ = loadParams(fsys, path.Join(dir, "method"), "method", id, 0)

	recoEntries, err := fs.ReadDir(fsys, path.Join(dir, "pdata"))
	if err != nil {
		// A scan without reconstructions still exposes its fid.
		return scan, nil
	}
	for _, e := range recoEntries {
		if !e.IsDir() {
			continue
		}
		recoID, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		reco := &Reco{ID: recoID}
		recoDir := path.Join(dir, "pdata", e.Name())
		reco.VisuPars, _ = loadParams(fsys, path.Join(recoDir, "visu_pars"), "visu_pars", id, recoID)
		reco.RecoPars, _ = loadParams(fsys, path.Join(recoDir, "reco"), "reco", id, recoID)
		if reco.VisuPars != nil || reco.RecoPars != nil {
			scan.Recos = append(scan.Recos, reco)
		}
	}
	sort.Slice(scan.Recos, func(i, j int) bool { return scan.Recos[i].ID < scan.Recos[j].ID })
	return scan, nil
}

// loadParams reads and decodes one parameter file. Files that parse but
// carry no header records are not parameter files and are rejected.
func loadParams(fsys fs.FS, p, name string, scanID, recoID int) (*jcamp.Parameters, error) {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	params, err := jcamp.NewParameters(lines, name, scanID, recoID)
	if err != nil {
		return nil, err
	}
	if !params.IsParameter() {
		return nil, fmt.Errorf("study: %s is not a parameter file", p)
	}
	return params, nil
}

// Reco returns the reconstruction with the given ID, or nil.
func (s *Scan) Reco(id int) *Reco {
	for _, r := range s.Recos {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Pars bundles the scan's tables with the chosen reconstruction's
// visu_pars into the extractor input struct. An unknown reco ID leaves
// VisuPars nil; extractors degrade accordingly.
func (s *Scan) Pars(recoID int) extractor.Pars {
	pars := extractor.Pars{Acqp: s.Acqp, Method: s.Method}
	if r := s.Reco(recoID); r != nil {
		pars.VisuPars = r.VisuPars
	}
	return pars
}

// OpenData opens the reconstruction's 2dseq stream fully into memory and
// returns a seekable reader over it, as the array decoder requires.
func (s *Scan) OpenData(recoID int) (io.ReadSeeker, error) {
	return s.openBinary(path.Join(s.dir, "pdata", strconv.Itoa(recoID), "2dseq"))
}

// OpenFID opens the scan's raw fid stream.
func (s *Scan) OpenFID() (io.ReadSeeker, error) {
	return s.openBinary(path.Join(s.dir, "fid"))
}

func (s *Scan) openBinary(p string) (io.ReadSeeker, error) {
	raw, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}
