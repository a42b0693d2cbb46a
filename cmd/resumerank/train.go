package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume/extract"
)

// trainingRecord is one labelled résumé. Text wins over ResumePath when both
// are set.
type trainingRecord struct {
	Text       string  `json:"text"`
	ResumePath string  `json:"resumePath"`
	Score      float64 `json:"score"`
}

func newTrainCmd() *cobra.Command {
	var (
		examplesPath string
		outPath      string
		opts         = resume.DefaultTrainOptions()
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the ml_based résumé model from labelled examples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = cfg.Resume.ModelPath
			}
			examples, err := loadExamples(cmd, examplesPath)
			if err != nil {
				return err
			}
			model, err := resume.Train(examples, opts)
			if err != nil {
				return err
			}
			if err := model.Save(outPath); err != nil {
				return err
			}
			slog.Info("model trained", "examples", len(examples), "out", outPath, "epochs", opts.Epochs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&examplesPath, "examples", "e", "", "JSON array of {text|resumePath, score} (required)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "model output path (defaults to resume.modelPath)")
	cmd.Flags().IntVar(&opts.Epochs, "epochs", opts.Epochs, "gradient descent epochs")
	cmd.Flags().Float64Var(&opts.LearningRate, "lr", opts.LearningRate, "learning rate")
	cmd.Flags().Float64Var(&opts.L2, "l2", opts.L2, "ridge penalty")
	if err := cmd.MarkFlagRequired("examples"); err != nil {
		panic(fmt.Sprintf("failed to mark examples flag as required: %v", err))
	}
	return cmd
}

func loadExamples(cmd *cobra.Command, path string) ([]resume.Example, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading examples %s: %w", path, err)
	}
	var records []trainingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decoding examples %s: %w", path, err)
	}

	extractor := extract.NewFileExtractor()
	examples := make([]resume.Example, 0, len(records))
	for i, rec := range records {
		text := rec.Text
		if text == "" && rec.ResumePath != "" {
			text, err = extractor.Extract(cmd.Context(), rec.ResumePath)
			if err != nil {
				return nil, fmt.Errorf("example %d: %w", i, err)
			}
		}
		if text == "" {
			slog.Warn("skipping example without text", "index", i)
			continue
		}
		examples = append(examples, resume.Example{Text: text, Score: rec.Score})
	}
	return examples, nil
}
