// Command evaluate scores the fitted pipelines on the test data and writes
// test_scores.csv and the prediction error plots.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

func main() {
	cfg := workflow.DefaultEvaluateConfig()
	flag.StringVar(&cfg.TestData, "test-data", cfg.TestData, "path to the processed test data")
	flag.StringVar(&cfg.PipelineFromRidge, "pipeline-from-ridge", cfg.PipelineFromRidge, "path to the fitted ridge pipeline")
	flag.StringVar(&cfg.PipelineFromTree, "pipeline-from-tree", cfg.PipelineFromTree, "path to the fitted tree pipeline")
	flag.StringVar(&cfg.ResultsTo, "results-to", cfg.ResultsTo, "directory the scores table is written to")
	flag.StringVar(&cfg.PlotTo, "plot-to", cfg.PlotTo, "directory the plots are written to")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logPretty := flag.Bool("log-pretty", false, "human readable log output")
	flag.Parse()

	if err := log.SetupLogger(*logLevel, *logPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	scores, err := workflow.RunEvaluate(cfg)
	if err != nil {
		log.GetLogger().Error("Evaluation failed", err, log.PhaseKey, log.PhaseEvaluation)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "accuracy_ridge=%.4f accuracy_tree=%.4f\n", scores.Ridge, scores.Tree)
}
