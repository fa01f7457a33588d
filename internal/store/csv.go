// Fleetgraph - Vehicle Rental Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetgraph

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fleetgraph/internal/models"
)

// Seed file names inside the data directory.
const (
	CustomersFile     = "customers.csv"
	CarsFile          = "cars.csv"
	TravelHistoryFile = "travel_history.csv"
)

// ImportStats counts what LoadCSV wrote and skipped.
type ImportStats struct {
	Customers int `json:"customers"`
	Cars      int `json:"cars"`
	Rentals   int `json:"rentals"`
	Skipped   int `json:"skipped"`
}

// LoadCSV imports the three seed files from dir into w. Missing files are
// treated as empty. The first row of each file is a header. Rows that cannot
// be parsed are logged and skipped; write errors abort the import.
func LoadCSV(ctx context.Context, dir string, w Writer, logger zerolog.Logger) (ImportStats, error) {
	var stats ImportStats

	err := readCSV(filepath.Join(dir, CustomersFile), func(line int, rec []string) error {
		c, err := parseCustomer(rec)
		if err != nil {
			stats.Skipped++
			logger.Warn().Err(err).Str("file", CustomersFile).Int("line", line).Msg("Skipping malformed row")
			return nil
		}
		if err := w.SaveCustomer(ctx, c); err != nil {
			return err
		}
		stats.Customers++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("import %s: %w", CustomersFile, err)
	}

	err = readCSV(filepath.Join(dir, CarsFile), func(line int, rec []string) error {
		car, err := parseCar(rec)
		if err != nil {
			stats.Skipped++
			logger.Warn().Err(err).Str("file", CarsFile).Int("line", line).Msg("Skipping malformed row")
			return nil
		}
		if err := w.SaveCar(ctx, car); err != nil {
			return err
		}
		stats.Cars++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("import %s: %w", CarsFile, err)
	}

	err = readCSV(filepath.Join(dir, TravelHistoryFile), func(line int, rec []string) error {
		r, err := parseRental(rec)
		if err != nil {
			stats.Skipped++
			logger.Warn().Err(err).Str("file", TravelHistoryFile).Int("line", line).Msg("Skipping malformed row")
			return nil
		}
		if err := w.SaveRental(ctx, r); err != nil {
			return err
		}
		stats.Rentals++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("import %s: %w", TravelHistoryFile, err)
	}

	logger.Info().
		Str("dir", dir).
		Int("customers", stats.Customers).
		Int("cars", stats.Cars).
		Int("rentals", stats.Rentals).
		Int("skipped", stats.Skipped).
		Msg("Seed data imported")
	return stats, nil
}

// readCSV calls fn for every data row of path. line is 1-based and counts
// the header.
func readCSV(path string, fn func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 {
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// parseCustomer reads PhoneNumber,Name[,Password]. The password is ignored.
func parseCustomer(rec []string) (*models.Customer, error) {
	if len(rec) < 2 {
		return nil, fmt.Errorf("expected at least 2 fields, got %d", len(rec))
	}
	phone := strings.TrimSpace(rec[0])
	if phone == "" {
		return nil, errors.New("empty phone number")
	}
	return &models.Customer{Phone: phone, Name: strings.TrimSpace(rec[1])}, nil
}

// parseCar reads CarId,Model,Available[,HourlyRate[,Category]]. A bad rate
// falls back to the default instead of dropping the car.
func parseCar(rec []string) (*models.Car, error) {
	if len(rec) < 3 {
		return nil, fmt.Errorf("expected at least 3 fields, got %d", len(rec))
	}
	id := strings.TrimSpace(rec[0])
	if id == "" {
		return nil, errors.New("empty car id")
	}

	car := models.NewCar(id, strings.TrimSpace(rec[1]))
	car.Available = strings.EqualFold(strings.TrimSpace(rec[2]), "true")

	if len(rec) >= 4 {
		if rate, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64); err == nil && rate >= 0 {
			car.HourlyRate = rate
		}
	}
	if len(rec) >= 5 {
		if category := strings.TrimSpace(rec[4]); category != "" {
			car.Category = category
		}
	}
	return &car, nil
}

// parseRental reads CustomerId,CarId,RentTime,ReturnTime. ReturnTime may be
// "Active" for a car that is still out.
func parseRental(rec []string) (*models.Rental, error) {
	if len(rec) < 4 {
		return nil, fmt.Errorf("expected 4 fields, got %d", len(rec))
	}

	rentTime, err := time.ParseInLocation(models.TimeLayout, strings.TrimSpace(rec[2]), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("rent time: %w", err)
	}

	r := &models.Rental{
		CustomerID: strings.TrimSpace(rec[0]),
		CarID:      strings.TrimSpace(rec[1]),
		RentTime:   rentTime,
	}

	if ret := strings.TrimSpace(rec[3]); ret != models.ActiveMarker {
		returnTime, err := time.ParseInLocation(models.TimeLayout, ret, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("return time: %w", err)
		}
		r.ReturnTime = returnTime
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
