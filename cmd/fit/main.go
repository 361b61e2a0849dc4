// Command fit tunes the ridge and decision tree pipelines with randomized
// 10-fold search and saves the best of each.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

func main() {
	cfg := workflow.DefaultFitConfig()
	flag.StringVar(&cfg.TrainingData, "training-data", cfg.TrainingData, "path to the processed training data")
	flag.StringVar(&cfg.Preprocessor, "preprocessor", cfg.Preprocessor, "path to the preprocessor artifact")
	flag.StringVar(&cfg.PipelineTo, "pipeline-to", cfg.PipelineTo, "directory the fitted pipelines are written to")
	flag.Int64Var(&cfg.Search.Seed, "seed", cfg.Search.Seed, "random seed of the search")
	flag.IntVar(&cfg.Search.CV, "cv", cfg.Search.CV, "number of cross-validation folds")
	flag.IntVar(&cfg.Search.NIter, "n-iter", cfg.Search.NIter, "number of sampled candidates")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", false, "human readable log output")
	flag.Parse()

	if err := log.SetupLogger(*logLevel, *logPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := workflow.RunFit(cfg); err != nil {
		log.GetLogger().Error("Fit failed", err, log.PhaseKey, log.PhaseTraining)
		os.Exit(1)
	}
}
