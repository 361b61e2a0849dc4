// Command validate downloads the Seoul bike sharing archive and validates
// the raw CSV: schema checks, target skewness and correlation gates.
//
//	validate -url https://.../seoul+bike+sharing+demand.zip -write-to data/raw
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/validation"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

func main() {
	cfg := workflow.DefaultValidateConfig()
	flag.StringVar(&cfg.URL, "url", cfg.URL, "URL of the dataset ZIP archive")
	flag.StringVar(&cfg.WriteTo, "write-to", cfg.WriteTo, "directory the archive is extracted into")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "download timeout")
	flag.Int64Var(&cfg.FeatureLabel.RandomSeed, "seed", cfg.FeatureLabel.RandomSeed, "random seed of the correlation checks")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", false, "human readable log output")
	flag.Parse()

	if err := log.SetupLogger(*logLevel, *logPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := workflow.RunValidate(ctx, cfg); err != nil {
		log.GetLogger().Error("Data validation failed", err, log.PhaseKey, log.PhaseValidation)
		var schemaErr *validation.SchemaErrors
		if bikeErrors.As(err, &schemaErr) {
			for _, v := range schemaErr.Violations() {
				fmt.Fprintln(os.Stderr, v.String())
			}
		}
		stop()
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, "Data validation passed")
}
