// Package testkit provides synthetic heart disease data for tests and for
// running the dashboard without a data file.
package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"heartdash/internal/frame"
)

// SampleFrame returns the default synthetic panel as a frame
func SampleFrame() *frame.Frame {
	return frame.FromRows(Headers, NewHeartDataGenerator(DefaultHeartConfig()).Rows())
}

// SampleFrameWith returns a synthetic panel for a custom configuration
func SampleFrameWith(config HeartGeneratorConfig) *frame.Frame {
	return frame.FromRows(Headers, NewHeartDataGenerator(config).Rows())
}

// WriteSampleCSV writes the default panel to dir and returns the file path
func WriteSampleCSV(dir string) (string, error) {
	path := filepath.Join(dir, "heart_disease_data.csv")
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(Headers); err != nil {
		return "", err
	}
	if err := w.WriteAll(NewHeartDataGenerator(DefaultHeartConfig()).Rows()); err != nil {
		return "", err
	}
	return path, nil
}
