package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/chrissnell/airquality/pkg/config"
)

func TestSplitCities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single", "city-3", []string{"city-3"}},
		{"whitespace and trailing comma", " city-1 , city-4,", []string{"city-1", "city-4"}},
		{"repeats keep first-seen order", "city-2, city-1,city-2,city-1", []string{"city-2", "city-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitCities(tt.input); !slices.Equal(got, tt.expected) {
				t.Errorf("splitCities(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRunExportWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.csv")

	if err := runExport(&config.ConfigData{}, path); err != nil {
		t.Fatalf("runExport() returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() returned error: %v", err)
	}
	if !strings.HasPrefix(string(data), "Date,City,PM2.5,PM10,NO2,SO2,O3,CO,AQI,Category") {
		t.Errorf("export starts with %q, expected the CSV header", string(data[:min(len(data), 60)]))
	}
	if lines := strings.Count(string(data), "\n"); lines < 366 {
		t.Errorf("export has %d lines, expected at least 366", lines)
	}
}

func TestRunExportBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "readings.csv")
	if err := runExport(&config.ConfigData{}, path); err == nil {
		t.Error("runExport() into a missing directory returned nil error")
	}
}
