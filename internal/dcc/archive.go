package dcc

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// init registers klauspost/compress's Deflate implementation as the zip
// package's compressor, wrapping the stdlib archive/zip container with a
// faster Deflate implementation.
func init() {
	zip.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
}

// UploadDir returns $HOME/dcc_uploads, falling back to ./dcc_uploads when
// HOME is unset.
func UploadDir() string {
	return stagingDir("dcc_uploads")
}

// DownloadDir returns $HOME/dcc_downloads with the same fallback.
func DownloadDir() string {
	return stagingDir("dcc_downloads")
}

func stagingDir(name string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", name)
	}
	return filepath.Join(home, name)
}

// CompressToZip deflates inputPath into UploadDir()/<base>.zip, returning
// the archive's path.
func CompressToZip(inputPath string) (string, error) {
	dir := UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(inputPath)
	archivePath := filepath.Join(dir, base+".zip")

	in, err := os.Open(inputPath)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: base, Method: zip.Deflate})
	if err != nil {
		zw.Close()
		return "", err
	}
	if _, err := io.Copy(w, in); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return archivePath, nil
}

// DecompressZip reads the single entry in a zip archive produced by
// CompressToZip and returns its contents.
func DecompressZip(archivePath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if len(r.File) == 0 {
		return nil, nil
	}
	f, err := r.File[0].Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
