package workflow_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/eda"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/features"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/workflow"
)

const rawHeader = "Date,Rented Bike Count,Hour,Temperature(°C),Humidity(%),Wind speed (m/s),Visibility (10m)," +
	"Dew point temperature(°C),Solar Radiation (MJ/m2),Rainfall(mm),Snowfall (cm),Seasons,Holiday,Functioning Day"

// rawCSV returns n rows shaped like the Seoul file. Counts are log-normal,
// so the target is right skewed, and every feature is drawn independently.
func rawCSV(n int) string {
	rng := rand.New(rand.NewPCG(7, 11))
	var b strings.Builder
	b.WriteString(rawHeader + "\n")
	for i := 0; i < n; i++ {
		day := 1 + rng.IntN(28)
		month := 1 + rng.IntN(12)
		hour := rng.IntN(24)
		count := int(50*math.Exp(rng.NormFloat64())) + 5*hour
		holiday := dataset.HolidayNo
		if rng.IntN(10) == 0 {
			holiday = dataset.HolidayYes
		}
		functioning := dataset.FunctioningYes
		if rng.IntN(20) == 0 {
			functioning = dataset.FunctioningNo
		}
		fmt.Fprintf(&b, "%02d/%02d/2018,%d,%d,%.1f,%d,%.1f,%d,%.1f,%.2f,%.1f,%.1f,%s,%s,%s\n",
			day, month, count, hour,
			rng.Float64()*40-10,
			rng.IntN(101),
			rng.Float64()*5,
			200+rng.IntN(1800),
			rng.Float64()*30-20,
			rng.Float64()*3,
			rng.Float64()*2,
			rng.Float64()*0.5,
			dataset.SeasonOrder[rng.IntN(4)],
			holiday,
			functioning,
		)
	}
	return b.String()
}

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func writeRaw(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "SeoulBikeData.csv")
	require.NoError(t, os.WriteFile(path, latin1(t, rawCSV(n)), 0o644))
	return path
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, workflow.DefaultValidateConfig().Validate())
	assert.NoError(t, workflow.DefaultSplitConfig().Validate())
	assert.NoError(t, workflow.DefaultEDAConfig().Validate())
	assert.NoError(t, workflow.DefaultFitConfig().Validate())
	assert.NoError(t, workflow.DefaultEvaluateConfig().Validate())

	var validationErr *bikeErrors.ValidationError

	split := workflow.DefaultSplitConfig()
	split.TestSize = 1
	assert.True(t, bikeErrors.As(split.Validate(), &validationErr))

	fit := workflow.DefaultFitConfig()
	fit.Search.CV = 1
	assert.True(t, bikeErrors.As(fit.Validate(), &validationErr))

	eval := workflow.DefaultEvaluateConfig()
	eval.PipelineFromTree = ""
	assert.ErrorContains(t, eval.Validate(), "pipeline_from_tree")

	v := workflow.DefaultValidateConfig()
	v.URL = ""
	assert.Error(t, v.Validate())

	assert.Equal(t, int64(123), workflow.DefaultFitConfig().Search.Seed)
}

func TestDistributions(t *testing.T) {
	ridge := workflow.RidgeDistributions()
	alphas := ridge["ridge__alpha"]
	require.Len(t, alphas, 10)
	assert.InDelta(t, 1e-3, alphas[0].(float64), 1e-12)
	assert.InDelta(t, 1e3, alphas[9].(float64), 1e-9)
	assert.InDelta(t, 1e-3*math.Pow(10, 6.0/9.0), alphas[1].(float64), 1e-12)

	trees := workflow.TreeDistributions()
	assert.Equal(t, 45, trees.Size())
	assert.Nil(t, trees["decisiontreeregressor__max_depth"][0], "first depth is unbounded")
}

func TestFitWithOptions(t *testing.T) {
	dir := t.TempDir()
	raw, err := dataset.LoadRawCSV(writeRaw(t, dir, 120))
	require.NoError(t, err)
	train, err := features.CleanAndEngineer(raw)
	require.NoError(t, err)

	pre := preprocessing.NewBikePreprocessor()
	ridge, dtree, err := workflow.FitWithOptions(train, pre, workflow.SearchOptions{NIter: 3, CV: 3, Seed: 123})
	require.NoError(t, err)
	assert.False(t, pre.IsFitted(), "candidates fit clones of the preprocessor")

	assert.Equal(t, "ridge", ridge.EstimatorStep)
	assert.Equal(t, "decisiontreeregressor", dtree.EstimatorStep)
	assert.True(t, ridge.IsFitted())
	assert.True(t, dtree.IsFitted())

	_, _, err = workflow.FitWithOptions(train.Drop(dataset.Target), pre, workflow.SearchOptions{NIter: 3, CV: 3})
	assert.ErrorContains(t, err, "does not exist")

	_, _, err = workflow.FitWithOptions(train, nil, workflow.DefaultSearchOptions(1))
	assert.Error(t, err)
}

func TestStages(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data", "processed")
	models := filepath.Join(dir, "results", "models")
	figures := filepath.Join(dir, "results", "figures")
	tables := filepath.Join(dir, "results", "tables")

	split := workflow.SplitConfig{
		RawData:        writeRaw(t, dir, 150),
		DataTo:         data,
		PreprocessorTo: models,
		TestSize:       0.3,
		Seed:           123,
	}
	require.NoError(t, workflow.RunSplit(split))

	train, err := dataset.LoadCSV(filepath.Join(data, workflow.TrainFile))
	require.NoError(t, err)
	test, err := dataset.LoadCSV(filepath.Join(data, workflow.TestFile))
	require.NoError(t, err)
	clean, err := dataset.LoadCSV(filepath.Join(data, workflow.CleanFile))
	require.NoError(t, err)
	assert.Equal(t, 105, train.Nrow())
	assert.Equal(t, 45, test.Nrow())
	assert.Equal(t, 150, clean.Nrow())
	assert.NotContains(t, train.Names(), dataset.RawDate)

	edaCfg := workflow.EDAConfig{
		TrainingData: filepath.Join(data, workflow.TrainFile),
		PlotTo:       figures,
		TableTo:      tables,
		Options:      eda.DefaultOptions(),
	}
	require.NoError(t, workflow.RunEDA(edaCfg))
	_, err = os.Stat(filepath.Join(figures, eda.CorrelationFile))
	assert.NoError(t, err)

	fit := workflow.FitConfig{
		TrainingData: filepath.Join(data, workflow.TrainFile),
		Preprocessor: filepath.Join(models, workflow.PreprocessorFile),
		PipelineTo:   models,
		Search:       workflow.SearchOptions{NIter: 2, CV: 3, Seed: 123},
	}
	require.NoError(t, workflow.RunFit(fit))

	scores, err := workflow.RunEvaluate(workflow.EvaluateConfig{
		TestData:          filepath.Join(data, workflow.TestFile),
		PipelineFromRidge: filepath.Join(models, workflow.RidgePipelineFile),
		PipelineFromTree:  filepath.Join(models, workflow.TreePipelineFile),
		ResultsTo:         tables,
		PlotTo:            figures,
		Seed:              123,
	})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(scores.Ridge))
	assert.False(t, math.IsNaN(scores.Tree))

	table, err := dataset.LoadCSV(filepath.Join(tables, workflow.ScoresFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"accuracy_ridge", "accuracy_tree"}, table.Names())
	for _, name := range []string{workflow.RidgePlotFile, workflow.TreePlotFile} {
		_, err := os.Stat(filepath.Join(figures, name))
		assert.NoError(t, err, name)
	}
}

func TestRunSplitDeterministic(t *testing.T) {
	dir := t.TempDir()
	raw := writeRaw(t, dir, 40)
	read := func(out string) string {
		cfg := workflow.DefaultSplitConfig()
		cfg.RawData = raw
		cfg.DataTo = filepath.Join(dir, out)
		cfg.PreprocessorTo = filepath.Join(dir, out)
		require.NoError(t, workflow.RunSplit(cfg))
		b, err := os.ReadFile(filepath.Join(dir, out, workflow.TestFile))
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, read("a"), read("b"))
}

func zipOf(t *testing.T, name string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRunValidate(t *testing.T) {
	archive := zipOf(t, "SeoulBikeData.csv", latin1(t, rawCSV(200)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	cfg := workflow.DefaultValidateConfig()
	cfg.URL = srv.URL
	cfg.WriteTo = filepath.Join(t.TempDir(), "raw")
	cfg.Client = srv.Client()

	df, err := workflow.RunValidate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 200, df.Nrow())
	_, err = os.Stat(filepath.Join(cfg.WriteTo, "SeoulBikeData.csv"))
	assert.NoError(t, err)
}

func TestRunValidateRejectsBadArchive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain text"))
	}))
	defer srv.Close()

	cfg := workflow.DefaultValidateConfig()
	cfg.URL = srv.URL
	cfg.WriteTo = t.TempDir()
	cfg.Client = srv.Client()

	_, err := workflow.RunValidate(context.Background(), cfg)
	assert.ErrorContains(t, err, "not a valid ZIP")
}
