package suite

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// ArchivePath returns where the archive for dir is placed: next to dir,
// named after its base name. For "." or "/" the current directory name with
// a "_tests" suffix is used.
func ArchivePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) || base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		base = filepath.Base(cwd) + "_tests"
	}
	return filepath.Join(filepath.Dir(abs), base+".zip"), nil
}

// Archive compresses the contents of the writer's directory into a single
// zip file beside it and returns the archive path.
func (w *Writer) Archive() (string, error) {
	target, err := ArchivePath(w.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve archive path: %w", err)
	}
	if err := zipDir(w.dir, target); err != nil {
		return "", fmt.Errorf("failed to create zip file: %w", err)
	}

	size := "unknown size"
	if info, err := os.Stat(target); err == nil {
		size = humanize.Bytes(uint64(info.Size()))
	}
	w.log.Sugar().Infof("Created zip file at '%s' (%s)", target, size)
	return target, nil
}

func zipDir(dir, target string) (err error) {
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(f)
	defer func() {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}()

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
