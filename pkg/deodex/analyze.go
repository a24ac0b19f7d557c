package deodex

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// odexMagic is the 4-byte header prefix of pre-optimized dalvik bytecode.
var odexMagic = []byte("dey\n")

// AnalyzeFile collects the lightweight metadata the optimizer consumes.
// Complexity is a coarse size-based bucket; it only perturbs advice, so the
// estimate is allowed to be wrong.
func AnalyzeFile(path string) (FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("cannot stat %q: %w", path, err)
	}

	meta := FileMetadata{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		SizeMB:    float64(info.Size()) / (1024 * 1024),
	}

	switch {
	case meta.SizeMB > HighComplexityMB:
		meta.Complexity = ComplexityHigh
		meta.EstimatedTime = 120.0
	case meta.SizeMB > MediumComplexityMB:
		meta.Complexity = ComplexityMedium
		meta.EstimatedTime = 30.0
	default:
		meta.Complexity = ComplexityLow
		meta.EstimatedTime = 10.0
	}

	if sum, err := fileSHA256(path); err == nil {
		meta.SHA256 = sum
	}

	return meta, nil
}

// ValidateOdexFile reports whether path plausibly holds odex bytecode: it
// must exist, carry the tool extension, be at least MinOdexSizeBytes, and
// have a readable header. Header content is not enforced, since some
// platform builds ship variant headers.
func ValidateOdexFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %q: %w", path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), DefaultExtension) {
		return fmt.Errorf("%q does not have the %s extension", path, DefaultExtension)
	}
	if info.Size() < MinOdexSizeBytes {
		return fmt.Errorf("%q is too small to be an odex file (%d bytes)", path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, 8)
	if n, err := io.ReadFull(f, header); err != nil && n < len(odexMagic) {
		return fmt.Errorf("cannot read header of %q: %w", path, err)
	}
	// Header content is not enforced beyond readability: the external tool
	// is the authority on the format.
	return nil
}

// ValidateFrameworkDir reports whether dir looks like a usable framework
// directory: it must exist and contain either at least one well-known
// framework JAR or at least one odex file.
func ValidateFrameworkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access framework directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("framework path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read framework directory %q: %w", dir, err)
	}
	wellKnown := map[string]bool{"framework.jar": true, "core.jar": true, "android.jar": true}
	for _, e := range entries {
		if wellKnown[e.Name()] || strings.HasSuffix(e.Name(), DefaultExtension) {
			return nil
		}
	}
	return fmt.Errorf("framework directory %q contains no framework jars or odex files", dir)
}

// ValidateToolJAR reports whether path is a readable JAR archive.
func ValidateToolJAR(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, path)
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolInvalid, path, err)
	}
	defer r.Close()
	if len(r.File) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrToolInvalid, path)
	}
	return nil
}

// fileSHA256 hashes a file's content. Hash failures are soft: analysis
// proceeds without a digest.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
