/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"chainguard.dev/textclassify/classify/artifacts"
	"chainguard.dev/textclassify/classify/dataset"
	"chainguard.dev/textclassify/classify/evals"
	"chainguard.dev/textclassify/classify/evals/report"
	"chainguard.dev/textclassify/classify/labels"
	"chainguard.dev/textclassify/classify/tracking"
	"chainguard.dev/textclassify/classify/trainer"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
)

// Metric key prefixes of each phase.
const (
	PrefixTrain   = "train"
	PrefixEval    = "eval"
	PrefixPredict = "predict"
)

// Pipeline wires the arguments of a run to its collaborators.
type Pipeline struct {
	Args     *Arguments
	Backend  trainer.Backend
	Tracking *tracking.Config

	// Metrics is the registry exported to metrics.prom. Optional.
	Metrics *prometheus.Registry
	// MeterProvider receives OpenTelemetry counters; nil uses the global
	// provider.
	MeterProvider metric.MeterProvider
	// Uploader copies the files written to remote storage. Optional.
	Uploader *artifacts.Uploader
}

// Result summarizes a run.
type Result struct {
	// Metrics holds the reported metrics of each phase, keyed by prefix.
	Metrics map[string]trainer.Metrics
	// Files are the paths written on this process.
	Files []string
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	a := p.Args
	if err := a.Validate(); err != nil {
		return nil, err
	}
	log := clog.FromContext(ctx).With("run", a.Training.RunName)
	ctx = clog.WithLogger(ctx, log)

	lastCheckpoint, err := checkOutputDir(ctx, &a.Training)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.Training.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	log.Warnf("Process rank: %d, distributed training: %t, 16-bits training: %t",
		a.Training.LocalRank, a.Training.LocalRank != -1, a.Training.FP16)
	log.Infof("Training/evaluation parameters %+v", a.Training)

	rng := rand.New(rand.NewPCG(uint64(a.Training.Seed), 0))

	raws, err := dataset.LoadSplits(ctx, a.SplitFiles())
	if err != nil {
		return nil, fmt.Errorf("loading splits: %w", err)
	}

	problem := a.Model.ProblemType
	var reg *labels.Registry
	if problem.IsClassification() {
		reg, err = labels.LoadRegistry(a.Data.LabelsFile)
		if err != nil {
			return nil, err
		}
	}
	enc, err := labels.NewEncoder(problem, reg)
	if err != nil {
		return nil, err
	}

	tok, err := p.Backend.Tokenizer(ctx, trainer.TokenizerSpec{
		NameOrPath:   firstNonEmpty(a.Model.TokenizerName, a.Model.ModelNameOrPath),
		Revision:     a.Model.ModelRevision,
		CacheDir:     a.Model.CacheDir,
		DoLowerCase:  a.Model.DoLowerCase,
		UseFast:      a.Model.UseFastTokenizer,
		UseAuthToken: a.Model.UseAuthToken,
	})
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}

	pre := &dataset.Preprocessor{
		Tokenizer:    tok,
		Encoder:      enc,
		Padding:      dataset.PaddingFor(a.Data.PadToMaxLength),
		MaxSeqLength: a.Data.MaxSeqLength,
		Refresh:      a.Data.OverwriteCache,
	}
	if a.Data.CacheDir != "" {
		cache, err := dataset.OpenCache(ctx, a.Data.CacheDir)
		if err != nil {
			return nil, err
		}
		defer cache.Close()
		pre.Cache = cache
		pre.Fingerprint = fingerprint(a, reg)
	}
	caps := map[dataset.Split]*int{
		dataset.Train:      a.Data.MaxTrainSamples,
		dataset.Validation: a.Data.MaxEvalSamples,
		dataset.Test:       a.Data.MaxPredictSamples,
	}
	splits := map[dataset.Split]*dataset.Dataset{}
	for split, raw := range raws {
		ds, err := pre.Process(ctx, raw.Select(caps[split]))
		if err != nil {
			return nil, fmt.Errorf("preprocessing: %w", err)
		}
		splits[split] = ds
	}
	if train := splits[dataset.Train]; train.Len() > 0 {
		i := rng.IntN(train.Len())
		log.Infof("Sample %d of the training set: %+v.", i, train.Examples[i])
	}

	inputDir := a.Training.ReplayDir
	if inputDir == "" {
		inputDir = a.Training.OutputDir
	}
	trackCfg := p.Tracking
	if trackCfg == nil {
		trackCfg = &tracking.Config{Mode: tracking.ModeDisabled, RunGroup: a.Training.RunName}
	}
	opts := trainer.Options{
		Model: trainer.ModelSpec{
			NameOrPath:     a.Model.ModelNameOrPath,
			ConfigName:     firstNonEmpty(a.Model.ConfigName, a.Model.ModelNameOrPath),
			Revision:       a.Model.ModelRevision,
			CacheDir:       a.Model.CacheDir,
			UseAuthToken:   a.Model.UseAuthToken,
			Problem:        problem,
			NumLabels:      1,
			FinetuningTask: "text-classification",
		},
		Args: trainer.Args{
			OutputDir:   a.Training.OutputDir,
			Seed:        a.Training.Seed,
			FP16:        a.Training.FP16,
			LocalRank:   a.Training.LocalRank,
			RunName:     a.Training.RunName,
			ReportTo:    trackCfg.ReportTo(),
			Environment: trackCfg.Environment(),
			InputDir:    inputDir,
		},
		TrainDataset:   splits[dataset.Train],
		EvalDataset:    splits[dataset.Validation],
		Collator:       dataset.SelectCollator(a.Data.PadToMaxLength, a.Training.FP16),
		Tokenizer:      tok,
		ComputeMetrics: evals.ComputeMetrics(problem, a.Model.PredictionThreshold),
	}
	if reg != nil {
		opts.Model.NumLabels = reg.Len()
		opts.Model.ID2Label = reg.ID2Label()
		opts.Model.Label2ID = reg.Label2ID()
	}

	tr, err := p.Backend.NewTrainer(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("creating trainer: %w", err)
	}

	reporter := &tracking.Reporter{
		Dir:           a.Training.OutputDir,
		IsCoordinator: tr.IsWorldProcessZero,
		Telemetry:     tracking.NewTelemetry(p.MeterProvider, trackCfg),
	}
	if p.Metrics != nil {
		reporter.Recorder = evals.NewRecorder(p.Metrics, a.Training.RunName)
		reporter.Gatherer = p.Metrics
	}

	res := &Result{Metrics: map[string]trainer.Metrics{}}
	record := func(prefix string, m trainer.Metrics, n int) error {
		if m == nil {
			m = trainer.Metrics{}
		}
		m[prefix+"_samples"] = float64(n)
		files, err := reporter.Report(ctx, prefix, m, n)
		if err != nil {
			return err
		}
		res.Metrics[prefix] = m
		res.Files = append(res.Files, files...)
		return nil
	}

	if a.Training.DoTrain {
		checkpoint := a.Training.ResumeFromCheckpoint
		if checkpoint == "" {
			checkpoint = lastCheckpoint
		}
		out, err := tr.Train(ctx, checkpoint)
		if err != nil {
			return nil, fmt.Errorf("training: %w", err)
		}
		if err := tr.SaveModel(ctx); err != nil {
			return nil, fmt.Errorf("saving model: %w", err)
		}
		if err := record(PrefixTrain, out.Metrics, splits[dataset.Train].Len()); err != nil {
			return nil, err
		}
		if err := tr.SaveState(ctx); err != nil {
			return nil, fmt.Errorf("saving trainer state: %w", err)
		}
	}

	if a.Training.DoEval {
		log.Info("*** Evaluate ***")
		ds := splits[dataset.Validation]
		m, err := tr.Evaluate(ctx, ds)
		if err != nil {
			if reporter.Recorder != nil {
				reporter.Recorder.Fail(PrefixEval)
			}
			return nil, fmt.Errorf("evaluating: %w", err)
		}
		if err := record(PrefixEval, m, ds.Len()); err != nil {
			return nil, err
		}
	}

	if a.Training.DoPredict {
		log.Info("*** Predict ***")
		ds := splits[dataset.Test]
		out, err := tr.Predict(ctx, ds, PrefixPredict)
		if err != nil {
			if reporter.Recorder != nil {
				reporter.Recorder.Fail(PrefixPredict)
			}
			return nil, fmt.Errorf("predicting: %w", err)
		}
		if err := record(PrefixPredict, out.Metrics, ds.Len()); err != nil {
			return nil, err
		}

		w := &report.Writer{
			Dir:           a.Training.OutputDir,
			Encoder:       enc,
			Threshold:     a.Model.PredictionThreshold,
			IsCoordinator: tr.IsWorldProcessZero,
		}
		if reg != nil {
			w.Names = reg.Names()
		}
		files, err := w.Write(ctx, out)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, files...)
	}

	prom, err := reporter.WritePrometheus(ctx)
	if err != nil {
		return nil, err
	}
	if prom != "" {
		res.Files = append(res.Files, prom)
	}

	if p.Uploader != nil && tr.IsWorldProcessZero() && len(res.Files) > 0 {
		if err := p.Uploader.Upload(ctx, dedupe(res.Files)...); err != nil {
			return nil, fmt.Errorf("uploading artifacts: %w", err)
		}
	}
	return res, nil
}

// fingerprint summarizes every setting that changes preprocessing output.
func fingerprint(a *Arguments, reg *labels.Registry) string {
	m := a.Model
	parts := []string{
		m.ProblemType.String(),
		firstNonEmpty(m.TokenizerName, m.ModelNameOrPath),
		m.ModelRevision,
		strconv.FormatBool(m.DoLowerCase),
		strconv.FormatBool(m.UseFastTokenizer),
		strconv.Itoa(a.Data.MaxSeqLength),
		dataset.PaddingFor(a.Data.PadToMaxLength).String(),
	}
	if reg != nil {
		for _, name := range reg.Names() {
			id, _ := reg.ID(name)
			parts = append(parts, name+"="+strconv.Itoa(id))
		}
	}
	return strings.Join(parts, "\x00")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// dedupe drops repeated paths, keeping first occurrences in order.
func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
