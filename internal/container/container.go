// Package container packs and unpacks the zip archive that a .docx
// document is stored in. Packing is deterministic (entries in sorted path
// order) and atomic (written to a temporary path, then renamed into
// place), so a failed pack never leaves a corrupt archive behind.
package container

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docx2md/internal/types"
)

// Unpack extracts every part of the archive at containerPath into destDir,
// preserving the internal directory structure and part bytes.
func Unpack(containerPath, destDir string) error {
	zr, err := zip.OpenReader(containerPath)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to open container", containerPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to create extraction directory", destDir, err)
	}

	for _, f := range zr.File {
		if err := extractPart(f, destDir); err != nil {
			return types.NewAppErrorWithDetails(types.ErrContainer,
				"failed to extract part", f.Name, err)
		}
	}
	return nil
}

func extractPart(f *zip.File, destDir string) error {
	// Reject entries that would escape destDir (zip-slip).
	rel := filepath.FromSlash(f.Name)
	target := filepath.Join(destDir, rel)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fs.ErrInvalid
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Pack archives the contents of sourceDir into containerPath. Entries are
// added in sorted relative-path order so that packing the same tree twice
// produces identical archives, and unpack→pack→unpack round-trips keep
// every part byte-identical.
func Pack(sourceDir, containerPath string) error {
	var parts []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		parts = append(parts, rel)
		return nil
	})
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to walk source directory", sourceDir, err)
	}
	sort.Strings(parts)

	tmp, err := os.CreateTemp(filepath.Dir(containerPath), ".pack-*")
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to create temporary archive", containerPath, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeArchive(tmp, sourceDir, parts); err != nil {
		tmp.Close()
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to write archive", containerPath, err)
	}
	if err := tmp.Close(); err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to close archive", containerPath, err)
	}
	if err := os.Rename(tmpPath, containerPath); err != nil {
		return types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to place archive", containerPath, err)
	}
	return nil
}

func writeArchive(w io.Writer, sourceDir string, parts []string) error {
	zw := zip.NewWriter(w)
	for _, rel := range parts {
		// Archive paths always use forward slashes.
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(filepath.Join(sourceDir, rel))
		if err != nil {
			return err
		}
		_, err = io.Copy(entry, src)
		src.Close()
		if err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadPart returns the bytes of a single named part without unpacking the
// whole archive.
func ReadPart(containerPath, partName string) ([]byte, error) {
	zr, err := zip.OpenReader(containerPath)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrContainer,
			"failed to open container", containerPath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == partName {
			rc, err := f.Open()
			if err != nil {
				return nil, types.NewAppErrorWithDetails(types.ErrContainer,
					"failed to open part", partName, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, types.NewAppErrorWithDetails(types.ErrContainer,
		"part not found", partName, nil)
}
