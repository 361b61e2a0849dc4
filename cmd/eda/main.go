// Command eda writes the exploratory tables and figures of the training data.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

func main() {
	cfg := workflow.DefaultEDAConfig()
	flag.StringVar(&cfg.TrainingData, "training-data", cfg.TrainingData, "path to the processed training data")
	flag.StringVar(&cfg.PlotTo, "plot-to", cfg.PlotTo, "directory the figures are written to")
	flag.StringVar(&cfg.TableTo, "table-to", cfg.TableTo, "directory the tables are written to")
	flag.IntVar(&cfg.Options.SampleSize, "sample", cfg.Options.SampleSize, "rows to sample before plotting, 0 for all")
	flag.Int64Var(&cfg.Options.Seed, "seed", cfg.Options.Seed, "random seed of the sample")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", false, "human readable log output")
	flag.Parse()

	if err := log.SetupLogger(*logLevel, *logPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := workflow.RunEDA(cfg); err != nil {
		log.GetLogger().Error("EDA failed", err, log.PhaseKey, log.PhaseExploration)
		os.Exit(1)
	}
}
