package handler

import (
	"errors"
	"os"
)

var errMissingIntent = errors.New("handler: missing required \"intent\" form field")

// stageTempDocx writes an uploaded .docx to a temp file so pkg/pipeline's
// path-based entry points can read it like any other run.
func stageTempDocx(data []byte) (string, error) {
	f, err := os.CreateTemp("", "docxpipeline-upload-*.docx")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// removeTempUpload deletes a temp file staged by stageTempDocx, best
// effort: a leftover temp file is a disk-space nuisance, never a
// correctness issue.
func removeTempUpload(path string) {
	_ = os.Remove(path)
}
