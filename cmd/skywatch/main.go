// Package main queries the OpenSky Network once for a bounding box and prints
// the flights found as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/ravinmor/sky-watcher/internal/config"
	"github.com/ravinmor/sky-watcher/internal/fetcher"
	"github.com/ravinmor/sky-watcher/internal/model"
	"github.com/ravinmor/sky-watcher/pkg/logger"
)

type options struct {
	configPath string
	min        []float64
	max        []float64
	pretty     bool
}

func main() {
	var opts options
	setupCommandLineFlags(&opts)
	pflag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "skywatch: %v\n", err)
		os.Exit(1)
	}
}

func setupCommandLineFlags(opts *options) {
	pflag.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	// Corners of the query region, provided as lat,lon coordinates
	pflag.Float64SliceVarP(&opts.min, "min", "m", nil, "minimum corner of the bounding box as lat,lon")
	pflag.Float64SliceVarP(&opts.max, "max", "M", nil, "maximum corner of the bounding box as lat,lon")

	pflag.BoolVarP(&opts.pretty, "pretty", "p", false, "indent the JSON output")
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	box, err := boundingBox(cfg.Query, opts)
	if err != nil {
		return err
	}

	// diagnostics go to stderr so stdout stays valid JSON
	appLogger := logger.NewWithWriter(cfg.Logging.Level, os.Stderr)

	client := fetcher.NewOpenSkyClient(
		cfg.OpenSky.BaseURL,
		cfg.OpenSky.RequestTimeout,
		appLogger,
		nil,
		fetcher.WithRequestOptions(fetcher.RequestOptions{
			Accept:    "application/json",
			UserAgent: cfg.OpenSky.UserAgent,
		}),
	)

	records, err := client.FetchFlights(ctx, box)
	if err != nil {
		return err
	}

	if sum := summarize(records); sum.flights > 0 {
		appLogger.Info("%d flights in %s (%d positioned), newest contact %s (%s ago)",
			sum.flights, box, sum.positioned,
			sum.newestContact.Format(time.RFC3339), time.Since(sum.newestContact).Round(time.Second))
		if !sum.newestFix.IsZero() {
			appLogger.Debug("Newest position fix %s", sum.newestFix.Format(time.RFC3339))
		}
	}

	enc := json.NewEncoder(out)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(records)
}

// boundingBox starts from the configured box and lets flags override either corner
func boundingBox(q config.QueryConfig, opts options) (model.BoundingBox, error) {
	box := q.BoundingBox()

	if opts.min != nil {
		c, err := coordinate("min", opts.min)
		if err != nil {
			return box, err
		}
		box = box.WithMin(c)
	}

	if opts.max != nil {
		c, err := coordinate("max", opts.max)
		if err != nil {
			return box, err
		}
		box = box.WithMax(c)
	}

	return box, box.Validate()
}

func coordinate(flag string, latLon []float64) (model.Coordinate, error) {
	if len(latLon) != 2 {
		return model.Coordinate{}, fmt.Errorf("--%s expects lat,lon, got %d values", flag, len(latLon))
	}
	return model.Coordinate{Latitude: latLon[0], Longitude: latLon[1]}, nil
}

type summary struct {
	flights       int
	positioned    int
	newestContact time.Time
	newestFix     time.Time
}

func summarize(records []*model.FlightRecord) summary {
	sum := summary{flights: len(records)}
	for _, r := range records {
		if r.HasPosition() {
			sum.positioned++
		}
		if t := r.LastContactTime(); t.After(sum.newestContact) {
			sum.newestContact = t
		}
		if t, ok := r.PositionTime(); ok && t.After(sum.newestFix) {
			sum.newestFix = t
		}
	}
	return sum
}
