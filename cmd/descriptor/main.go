package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/image-descriptor-go/internal/classifier"
	"github.com/anime-shed/image-descriptor-go/internal/config"
	"github.com/anime-shed/image-descriptor-go/internal/dataset"
	"github.com/anime-shed/image-descriptor-go/internal/descriptor"
	"github.com/anime-shed/image-descriptor-go/internal/extractor"
	"github.com/anime-shed/image-descriptor-go/internal/logger"
	"github.com/anime-shed/image-descriptor-go/internal/storage"
)

type options struct {
	dataSet         string
	model           string
	predictedLabels string
	features        string
	train           bool
	predict         bool
	workers         int
	maxPixels       int64
	logLevel        string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.WithError(err).Error("descriptor failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("descriptor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: descriptor -data_set list.txt (-train -model m.json | -predict -model m.json -predicted_labels out.txt) [-features out.csv]")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.dataSet, "data_set", "", "File with dataset: \"filename label\" pairs, paths relative to the file.")
	fs.StringVar(&opts.model, "model", "", "Path to the model file (written by -train, read by -predict).")
	fs.StringVar(&opts.predictedLabels, "predicted_labels", "", "Path to write predicted labels to.")
	fs.StringVar(&opts.features, "features", "", "Optional CSV file to write descriptors to.")
	fs.BoolVar(&opts.train, "train", false, "Train a model on the dataset.")
	fs.BoolVar(&opts.predict, "predict", false, "Predict labels for the dataset.")
	fs.IntVar(&opts.workers, "workers", config.WorkersFromEnv(), "Number of extraction workers (0 means one per CPU). Defaults to $WORKERS.")
	fs.Int64Var(&opts.maxPixels, "max_pixels", 40_000_000, "Largest accepted image in pixels.")
	fs.StringVar(&opts.logLevel, "log_level", "info", "Log level: debug, info, warn or error.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case opts.dataSet == "":
		return nil, usageError(fs, "-data_set is required")
	case opts.train && opts.predict:
		return nil, usageError(fs, "-train and -predict are mutually exclusive")
	case !opts.train && !opts.predict && opts.features == "":
		return nil, usageError(fs, "nothing to do: pass -train, -predict or -features")
	case (opts.train || opts.predict) && opts.model == "":
		return nil, usageError(fs, "-model is required")
	case opts.predict && opts.predictedLabels == "":
		return nil, usageError(fs, "-predicted_labels is required with -predict")
	}
	return opts, nil
}

func usageError(fs *flag.FlagSet, msg string) error {
	fmt.Fprintln(fs.Output(), msg)
	fs.Usage()
	return errors.New(msg)
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	logger.SetLevel(opts.logLevel)

	entries, err := dataset.LoadFileList(opts.dataSet)
	if err != nil {
		return err
	}
	// List entries may point anywhere relative to the list file, so the
	// fetcher is confined to the filesystem root only.
	sources, err := dataset.Abs(entries)
	if err != nil {
		return err
	}
	fetcher, err := storage.NewLocalImageFetcher(filesystemRoot(opts.dataSet))
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"data_set": opts.dataSet,
		"images":   len(entries),
	}).Info("Extracting descriptors")

	x := extractor.New(fetcher, extractor.Options{
		Workers:   opts.workers,
		MaxPixels: opts.maxPixels,
	})
	result, err := x.Extract(ctx, sources)
	if err != nil {
		return fmt.Errorf("extract descriptors: %w", err)
	}

	if opts.features != "" {
		if err := writeFeatures(opts.features, entries, result); err != nil {
			return err
		}
	}

	switch {
	case opts.train:
		return train(opts, result)
	case opts.predict:
		return predict(opts, entries, result)
	}
	return nil
}

func train(opts *options, result *extractor.Result) error {
	features := make([]extractor.Feature, 0, len(result.Features))
	for _, i := range result.Indices() {
		features = append(features, result.Features[i])
	}
	model, err := classifier.NewNearestCentroid().Train(features)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := model.Save(opts.model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"model":   opts.model,
		"samples": len(features),
		"classes": len(model.Classes),
	}).Info("Model trained")
	return nil
}

// predict labels every image that produced a descriptor. Images that failed
// extraction are left out of the predictions file.
func predict(opts *options, entries []dataset.Entry, result *extractor.Result) error {
	model, err := classifier.LoadModel(opts.model)
	if err != nil {
		return err
	}

	indices := result.Indices()
	descriptors := make([]descriptor.Descriptor, len(indices))
	predicted := make([]dataset.Entry, len(indices))
	for k, i := range indices {
		descriptors[k] = result.Features[i].Descriptor
		predicted[k] = entries[i]
	}

	labels, err := classifier.NewNearestCentroid().Predict(model, descriptors)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	if err := dataset.SavePredictions(opts.predictedLabels, predicted, labels); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"predicted_labels": opts.predictedLabels,
		"images":           len(labels),
		"skipped":          len(result.Errors),
	}).Info("Predictions written")
	return nil
}

// writeFeatures writes one CSV row per extracted image: path, label, then the
// descriptor values in single precision.
func writeFeatures(path string, entries []dataset.Entry, result *extractor.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create features file: %w", err)
	}
	w := csv.NewWriter(f)

	row := make([]string, 2+descriptor.Length)
	for _, i := range result.Indices() {
		feat := result.Features[i]
		row = row[:2+len(feat.Descriptor)]
		row[0] = entries[i].Path
		row[1] = strconv.Itoa(feat.Label)
		for j, v := range feat.Descriptor.Float32() {
			row[2+j] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// filesystemRoot returns the root of the volume holding path.
func filesystemRoot(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return filepath.VolumeName(abs) + string(filepath.Separator)
}
