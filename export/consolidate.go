package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codec/timeline"
)

// Format selects the exchange file format by extension.
type Format int

const (
	FormatOTIO Format = iota
	FormatFCP7XML
)

// FormatFromExtension picks a Format from a filename's extension, per the
// ".otio" / ".xml" dispatch.
func FormatFromExtension(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".otio":
		return FormatOTIO, nil
	case ".xml":
		return FormatFCP7XML, nil
	default:
		return 0, fmt.Errorf("unsupported export extension %q", filepath.Ext(filename))
	}
}

// ConsolidateAndExport writes tl to outputDir/outputFilename and returns the
// written path; target URLs are then paths to the original source locations
// relative to outputDir. If consolidate is true, it instead creates
// "<name>_<timestamp>/media/" under outputDir, copies every unique source
// file into it, rewrites target URLs to "media/<basename>", and writes the
// file to outputDir/<name>_<timestamp>/outputFilename.
func ConsolidateAndExport(tl *timeline.Timeline, outputDir, outputFilename string, consolidate bool, timestamp string) (string, error) {
	format, err := FormatFromExtension(outputFilename)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(outputDir); err != nil {
		return "", fmt.Errorf("output directory %q does not exist: %w", outputDir, err)
	}

	var resolveURL func(string) string
	var finalPath string

	if consolidate {
		stem := strings.TrimSuffix(outputFilename, filepath.Ext(outputFilename))
		packageDir := filepath.Join(outputDir, fmt.Sprintf("%s_%s", stem, timestamp))
		mediaDir := filepath.Join(packageDir, "media")
		if err := os.MkdirAll(mediaDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create media directory: %w", err)
		}
		copied := map[string]bool{}
		for _, c := range tl.Clips {
			if copied[c.SourcePath] {
				continue
			}
			copied[c.SourcePath] = true
			if err := copyFile(c.SourcePath, filepath.Join(mediaDir, filepath.Base(c.SourcePath))); err != nil {
				return "", fmt.Errorf("failed to consolidate %q: %w", c.SourcePath, err)
			}
		}
		resolveURL = baseNameURL
		finalPath = filepath.Join(packageDir, outputFilename)
	} else {
		resolveURL = func(source string) string {
			rel, err := filepath.Rel(outputDir, source)
			if err != nil {
				return source
			}
			return rel
		}
		finalPath = filepath.Join(outputDir, outputFilename)
	}

	var data []byte
	switch format {
	case FormatOTIO:
		doc := BuildOTIOTimeline(tl, strings.TrimSuffix(outputFilename, filepath.Ext(outputFilename)), resolveURL)
		data, err = WriteOTIO(doc)
		if err != nil {
			return "", err
		}
	case FormatFCP7XML:
		data = BuildFCP7XML(tl, strings.TrimSuffix(outputFilename, filepath.Ext(outputFilename)), resolveURL)
	}

	if err := os.WriteFile(finalPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return finalPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
