// Package suite persists a generated suite to disk: a JSON summary plus one
// numbered input/output file pair per case.
package suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"pkg.jsn.cam/casegen/pkg/casegen"
)

// SummaryFile is the name of the summary document inside the output directory.
const SummaryFile = "test_cases_summary.json"

// InputFile and OutputFile name the per-case files for 1-based index i.
func InputFile(i int) string  { return fmt.Sprintf("input%d.txt", i) }
func OutputFile(i int) string { return fmt.Sprintf("output%d.txt", i) }

// Report summarizes a Write call. Warnings are per-file failures that did
// not stop the remaining files from being written.
type Report struct {
	Dir      string
	Summary  string
	Written  int
	Bytes    uint64
	Warnings []error
}

// Writer writes suites into a directory.
type Writer struct {
	dir string
	log *zap.Logger
}

// NewWriter creates a writer for dir. A nil logger disables logging.
func NewWriter(dir string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{dir: dir, log: log.Named("suite")}
}

// Write creates the directory, the summary and every case file. Only a
// failure to create the directory is returned as an error.
func (w *Writer) Write(s casegen.Suite) (*Report, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	report := &Report{Dir: w.dir}

	summaryPath := filepath.Join(w.dir, SummaryFile)
	if data, err := EncodeSummary(s); err != nil {
		report.Warnings = append(report.Warnings, fmt.Errorf("%w: summary: %v", casegen.ErrPersistence, err))
	} else if err := os.WriteFile(summaryPath, data, 0644); err != nil {
		w.log.Warn("Could not save JSON summary", zap.Error(err))
		report.Warnings = append(report.Warnings, fmt.Errorf("%w: summary: %v", casegen.ErrPersistence, err))
	} else {
		report.Summary = summaryPath
		report.Bytes += uint64(len(data))
		w.log.Info("Saved test case summary", zap.String("path", summaryPath))
	}

	for i, tc := range s {
		n, err := w.writeCase(i+1, tc)
		report.Bytes += n
		if err != nil {
			w.log.Warn("Could not write test file", zap.Int("case", i+1), zap.Error(err))
			report.Warnings = append(report.Warnings, err)
			continue
		}
		report.Written++
	}

	w.log.Info("Created test case files",
		zap.Int("cases", report.Written),
		zap.String("dir", w.dir),
		zap.String("size", humanize.Bytes(report.Bytes)))
	return report, nil
}

func (w *Writer) writeCase(i int, tc casegen.TestCase) (uint64, error) {
	var written uint64
	files := []struct {
		name string
		data string
	}{
		{InputFile(i), tc.Input},
		{OutputFile(i), tc.Output},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(w.dir, f.name), []byte(f.data), 0644); err != nil {
			return written, fmt.Errorf("%w: case %d: %v", casegen.ErrPersistence, i, err)
		}
		written += uint64(len(f.data))
	}
	return written, nil
}

// EncodeSummary renders the suite as a 2-space indented JSON array. HTML
// characters are kept verbatim since inputs are program text.
func EncodeSummary(s casegen.Suite) ([]byte, error) {
	if s == nil {
		s = casegen.Suite{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ReadSummary loads a suite from a summary document.
func ReadSummary(path string) (casegen.Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s casegen.Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return s, nil
}
