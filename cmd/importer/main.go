package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"geo-tracker/internal/config"
	"geo-tracker/internal/locationlog"
	"geo-tracker/internal/models"
	"geo-tracker/internal/repository"
)

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	fmt.Printf("Starting import from file: %s\n", *file)

	f, err := os.Open(*file)
	if err != nil {
		fmt.Printf("Error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := parseCSV(f, time.Now())
	if err != nil {
		fmt.Printf("Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Parsed %d records\n", len(records))

	// Load config
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	writer := locationlog.NewWriter(store, locationlog.Options{
		Path:          cfg.FilePath,
		MessageFormat: cfg.CommitMessage,
	})

	// Append everything in one conditional write
	if err := writer.AppendAll(ctx, records...); err != nil {
		fmt.Printf("Error appending records: %v\n", err)
		if locationlog.KindOf(err) == locationlog.KindConflict {
			fmt.Println("The log changed while importing, run the import again")
		}
		os.Exit(1)
	}

	fmt.Printf("Successfully imported %d records into %s\n", len(records), cfg.FilePath)
}

// parseCSV reads rows of latitude,longitude[,timestamp[,source]] after a header row.
// Rows without a timestamp are stamped with now.
func parseCSV(r io.Reader, now time.Time) ([]models.LocationRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	// Skip header
	_, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	timestamp := now.UTC().Format("2006-01-02T15:04:05.000Z07:00")

	var records []models.LocationRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(row) < 2 {
			return nil, fmt.Errorf("line %d: invalid record length: %d, expected at least 2 columns", line, len(row))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %s", line, row[0])
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %s", line, row[1])
		}

		record := models.LocationRecord{
			Latitude:  lat,
			Longitude: lon,
			Timestamp: timestamp,
			Source:    models.SourceImport,
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			record.Timestamp = strings.TrimSpace(row[2])
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			record.Source = strings.TrimSpace(row[3])
		}

		if err := locationlog.Validate(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return records, nil
}
