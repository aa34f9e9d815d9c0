//go:build ignore

// Run with: go run scripts/generate_sample_catalog.go
package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var header = []string{"sku", "name", "category", "price", "sale_price", "stock_quantity", "status"}

// Two files so that the later one can be seen overriding a SKU on import:
// TOUR-JEJU appears in both and ends up with the tours-2 price.
var catalogs = map[string][][]string{
	"tours-1.csv.gz": {
		{"TOUR-JEJU", "Jeju Island Tour", "tour", "160000", "", "40", "ACTIVE"},
		{"TOUR-SEORAK", "Seoraksan Hiking Day Trip", "tour", "95000", "79000", "25", "ACTIVE"},
		{"TOUR-DMZ", "DMZ Half Day Tour", "tour", "70000", "", "0", "INACTIVE"},
	},
	"tours-2.csv.gz": {
		{"TOUR-JEJU", "Jeju Island Tour", "tour", "150000", "120000", "50", "ACTIVE"},
		{"STAY-BUSAN", "Busan Haeundae Stay, 1 night", "stay", "80000", "", "3", "ACTIVE"},
		{"STAY-GYEONGJU", "Gyeongju Hanok Stay", "stay", "110000", "99000", "12", "ACTIVE"},
		{"PASS-KTX", "KTX 3 Day Pass", "transport", "121000", "", "100", ""},
	},
}

func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	for filename, rows := range catalogs {
		filePath := filepath.Join(dataDir, filename)

		if err := createSeedFile(filePath, rows); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(rows))
	}

	fmt.Println("\nImport with:")
	fmt.Printf("  go run ./cmd/seed %s %s\n",
		filepath.Join(dataDir, "tours-1.csv.gz"), filepath.Join(dataDir, "tours-2.csv.gz"))
}

func createSeedFile(filePath string, rows [][]string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
