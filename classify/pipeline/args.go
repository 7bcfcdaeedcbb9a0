/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"chainguard.dev/textclassify/classify/dataset"
	"chainguard.dev/textclassify/classify/labels"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ModelArguments select the pretrained model, config and tokenizer.
type ModelArguments struct {
	ModelNameOrPath string `yaml:"model_name_or_path"`
	// Language is the evaluation language, and the training language
	// unless TrainLanguage is set.
	Language            string             `yaml:"language"`
	TrainLanguage       string             `yaml:"train_language"`
	ConfigName          string             `yaml:"config_name"`
	TokenizerName       string             `yaml:"tokenizer_name"`
	CacheDir            string             `yaml:"cache_dir"`
	DoLowerCase         bool               `yaml:"do_lower_case"`
	UseFastTokenizer    bool               `yaml:"use_fast_tokenizer"`
	ModelRevision       string             `yaml:"model_revision"`
	UseAuthToken        bool               `yaml:"use_auth_token"`
	ProblemType         labels.ProblemType `yaml:"problem_type"`
	PredictionThreshold float64            `yaml:"prediction_threshold"`
}

// DataArguments control how the splits are read and preprocessed.
type DataArguments struct {
	MaxSeqLength   int  `yaml:"max_seq_length"`
	OverwriteCache bool `yaml:"overwrite_cache"`
	// CacheDir holds preprocessed splits between runs; empty disables
	// caching.
	CacheDir       string `yaml:"dataset_cache_dir"`
	PadToMaxLength bool   `yaml:"pad_to_max_length"`
	// Sample caps; nil keeps the whole split.
	MaxTrainSamples   *int `yaml:"max_train_samples"`
	MaxEvalSamples    *int `yaml:"max_eval_samples"`
	MaxPredictSamples *int `yaml:"max_predict_samples"`

	TrainFile      string `yaml:"train_file"`
	ValidationFile string `yaml:"validation_file"`
	TestFile       string `yaml:"test_file"`
	LabelsFile     string `yaml:"labels_file"`
}

// TrainingArguments control the run itself.
type TrainingArguments struct {
	OutputDir            string `yaml:"output_dir"`
	OverwriteOutputDir   bool   `yaml:"overwrite_output_dir"`
	DoTrain              bool   `yaml:"do_train"`
	DoEval               bool   `yaml:"do_eval"`
	DoPredict            bool   `yaml:"do_predict"`
	Seed                 int    `yaml:"seed"`
	FP16                 bool   `yaml:"fp16"`
	RunName              string `yaml:"run_name"`
	ResumeFromCheckpoint string `yaml:"resume_from_checkpoint"`
	LocalRank            int    `yaml:"local_rank"`

	Backend   string `yaml:"backend"`
	ReplayDir string `yaml:"replay_dir"`
	UploadTo  string `yaml:"upload_to"`
}

// Arguments are every setting of a run. The YAML form is one flat mapping
// using the snake_case field names.
type Arguments struct {
	Model    ModelArguments    `yaml:",inline"`
	Data     DataArguments     `yaml:",inline"`
	Training TrainingArguments `yaml:",inline"`
}

// DefaultArguments returns the defaults of every setting.
func DefaultArguments() *Arguments {
	return &Arguments{
		Model: ModelArguments{
			UseFastTokenizer: true,
			ModelRevision:    "main",
			ProblemType:      labels.SingleLabel,
		},
		Data: DataArguments{
			MaxSeqLength:   128,
			PadToMaxLength: true,
			TrainFile:      "data/train.csv",
			ValidationFile: "data/val.csv",
			TestFile:       "data/test.csv",
			LabelsFile:     "data/labels.json",
		},
		Training: TrainingArguments{
			Seed:      42,
			LocalRank: -1,
			Backend:   "replay",
		},
	}
}

// AddFlags binds a flag to every field of a, using the current values as
// defaults.
func (a *Arguments) AddFlags(fs *pflag.FlagSet) {
	m := &a.Model
	fs.StringVar(&m.ModelNameOrPath, "model-name-or-path", m.ModelNameOrPath, "Path to pretrained model or model identifier")
	fs.StringVar(&m.Language, "language", m.Language, "Evaluation language; also the train language unless --train-language is set")
	fs.StringVar(&m.TrainLanguage, "train-language", m.TrainLanguage, "Train language if different from the evaluation language")
	fs.StringVar(&m.ConfigName, "config-name", m.ConfigName, "Pretrained config name or path if not the same as the model")
	fs.StringVar(&m.TokenizerName, "tokenizer-name", m.TokenizerName, "Pretrained tokenizer name or path if not the same as the model")
	fs.StringVar(&m.CacheDir, "cache-dir", m.CacheDir, "Where to store downloaded pretrained models")
	fs.BoolVar(&m.DoLowerCase, "do-lower-case", m.DoLowerCase, "Lower-case text in the tokenizer")
	fs.BoolVar(&m.UseFastTokenizer, "use-fast-tokenizer", m.UseFastTokenizer, "Use a fast tokenizer if available")
	fs.StringVar(&m.ModelRevision, "model-revision", m.ModelRevision, "Model version: branch, tag or commit")
	fs.BoolVar(&m.UseAuthToken, "use-auth-token", m.UseAuthToken, "Authenticate to the model hub")
	fs.Var(&m.ProblemType, "problem-type", "One of single_label_classification, multi_label_classification, regression")
	fs.Float64Var(&m.PredictionThreshold, "prediction-threshold", m.PredictionThreshold, "Multi-label scores above this are positive (0 for tanh, 0.5 for sigmoid)")

	d := &a.Data
	fs.IntVar(&d.MaxSeqLength, "max-seq-length", d.MaxSeqLength, "Maximum sequence length after tokenization")
	fs.BoolVar(&d.OverwriteCache, "overwrite-cache", d.OverwriteCache, "Overwrite cached preprocessed datasets")
	fs.StringVar(&d.CacheDir, "dataset-cache-dir", d.CacheDir, "Directory caching preprocessed datasets between runs; empty disables the cache")
	fs.BoolVar(&d.PadToMaxLength, "pad-to-max-length", d.PadToMaxLength, "Pad every sample to --max-seq-length instead of per batch")
	fs.Var(optionalInt{&d.MaxTrainSamples}, "max-train-samples", "Truncate the training split to this many examples")
	fs.Var(optionalInt{&d.MaxEvalSamples}, "max-eval-samples", "Truncate the evaluation split to this many examples")
	fs.Var(optionalInt{&d.MaxPredictSamples}, "max-predict-samples", "Truncate the prediction split to this many examples")
	fs.StringVar(&d.TrainFile, "train-file", d.TrainFile, "Training split CSV")
	fs.StringVar(&d.ValidationFile, "validation-file", d.ValidationFile, "Validation split CSV")
	fs.StringVar(&d.TestFile, "test-file", d.TestFile, "Test split CSV")
	fs.StringVar(&d.LabelsFile, "labels-file", d.LabelsFile, "Label registry JSON")

	t := &a.Training
	fs.StringVar(&t.OutputDir, "output-dir", t.OutputDir, "Where predictions, reports and checkpoints are written")
	fs.BoolVar(&t.OverwriteOutputDir, "overwrite-output-dir", t.OverwriteOutputDir, "Train into a non-empty output directory")
	fs.BoolVar(&t.DoTrain, "do-train", t.DoTrain, "Run training")
	fs.BoolVar(&t.DoEval, "do-eval", t.DoEval, "Run evaluation on the validation split")
	fs.BoolVar(&t.DoPredict, "do-predict", t.DoPredict, "Run prediction on the test split")
	fs.IntVar(&t.Seed, "seed", t.Seed, "Random seed")
	fs.BoolVar(&t.FP16, "fp16", t.FP16, "Use mixed precision")
	fs.StringVar(&t.RunName, "run-name", t.RunName, "Run name for tracking; defaults to the output directory")
	fs.StringVar(&t.ResumeFromCheckpoint, "resume-from-checkpoint", t.ResumeFromCheckpoint, "Checkpoint directory to resume training from")
	fs.IntVar(&t.LocalRank, "local-rank", t.LocalRank, "Process rank in distributed runs, -1 when not distributed")
	fs.StringVar(&t.Backend, "backend", t.Backend, "Trainer backend")
	fs.StringVar(&t.ReplayDir, "replay-dir", t.ReplayDir, "Directory of dumped model outputs for the replay backend; defaults to --output-dir")
	fs.StringVar(&t.UploadTo, "upload-to", t.UploadTo, "gs:// or s3:// URL to copy output artifacts to")
}

// LoadArguments reads a YAML config file on top of the defaults and then
// re-applies every flag explicitly set on fs, so flags take precedence.
func LoadArguments(path string, fs *pflag.FlagSet) (*Arguments, error) {
	a := DefaultArguments()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, a); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	a.AddFlags(overlay)
	var setErr error
	fs.Visit(func(f *pflag.Flag) {
		if overlay.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		if err := overlay.Set(f.Name, f.Value.String()); err != nil {
			setErr = fmt.Errorf("applying --%s: %w", f.Name, err)
		}
	})
	if setErr != nil {
		return nil, setErr
	}
	return a, nil
}

// Validate checks required settings and fills derived defaults.
func (a *Arguments) Validate() error {
	if a.Model.ModelNameOrPath == "" {
		return errors.New("--model-name-or-path is required")
	}
	if a.Training.OutputDir == "" {
		return errors.New("--output-dir is required")
	}
	if a.Data.MaxSeqLength <= 0 {
		return fmt.Errorf("--max-seq-length must be positive, got %d", a.Data.MaxSeqLength)
	}
	for name, n := range map[string]*int{
		"max-train-samples":   a.Data.MaxTrainSamples,
		"max-eval-samples":    a.Data.MaxEvalSamples,
		"max-predict-samples": a.Data.MaxPredictSamples,
	} {
		if n != nil && *n < 0 {
			return fmt.Errorf("--%s must not be negative, got %d", name, *n)
		}
	}
	if a.Model.TrainLanguage == "" {
		a.Model.TrainLanguage = a.Model.Language
	}
	if a.Training.RunName == "" {
		a.Training.RunName = a.Training.OutputDir
	}
	return nil
}

// SplitFiles returns the CSV path of every split the run needs.
func (a *Arguments) SplitFiles() map[dataset.Split]string {
	files := map[dataset.Split]string{}
	if a.Training.DoTrain {
		files[dataset.Train] = a.Data.TrainFile
	}
	if a.Training.DoEval {
		files[dataset.Validation] = a.Data.ValidationFile
	}
	if a.Training.DoPredict {
		files[dataset.Test] = a.Data.TestFile
	}
	return files
}

// optionalInt is a pflag.Value for an int that may be unset.
type optionalInt struct {
	p **int
}

func (o optionalInt) String() string {
	if *o.p == nil {
		return ""
	}
	return strconv.Itoa(**o.p)
}

func (o optionalInt) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*o.p = &v
	return nil
}

func (optionalInt) Type() string {
	return "int"
}
