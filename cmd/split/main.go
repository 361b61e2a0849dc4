// Command split engineers the raw data, writes the train/test split and
// saves the unfitted preprocessor used by the fit command.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

func main() {
	cfg := workflow.DefaultSplitConfig()
	flag.StringVar(&cfg.RawData, "raw-data", cfg.RawData, "path to the raw latin-1 CSV")
	flag.StringVar(&cfg.DataTo, "data-to", cfg.DataTo, "directory for the processed data")
	flag.StringVar(&cfg.PreprocessorTo, "preprocessor-to", cfg.PreprocessorTo, "directory for the preprocessor artifact")
	flag.Float64Var(&cfg.TestSize, "test-size", cfg.TestSize, "fraction of rows held out for testing")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", false, "human readable log output")
	flag.Parse()

	if err := log.SetupLogger(*logLevel, *logPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := workflow.RunSplit(cfg); err != nil {
		log.GetLogger().Error("Split failed", err, log.PhaseKey, log.PhasePreprocessing)
		os.Exit(1)
	}
}
