package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/resume/extract"
)

func newRankCmd() *cobra.Command {
	var modelPath string
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Read a ranking request from stdin and write the result to stdout",
		Long: "Reads one JSON document with job_title, job_description, job_requirements, " +
			"resumes and method, and writes either the ranked list or {\"error\": ...}.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if modelPath == "" {
				modelPath = cfg.Resume.ModelPath
			}
			scorer := resume.NewScorer(extract.NewFileExtractor(), resume.Options{
				Model:   loadOptionalModel(modelPath),
				Workers: cfg.Resume.ExtractWorkers,
			})
			return runRank(cmd, scorer)
		},
	}
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "trained model file (defaults to resume.modelPath)")
	return cmd
}

// loadOptionalModel returns nil when no usable model is available, which
// leaves ml_based ranking unavailable without failing rule_based runs.
func loadOptionalModel(path string) *resume.LinearModel {
	if path == "" {
		return nil
	}
	model, err := resume.LoadModel(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("no trained model", "path", path)
		return nil
	case err != nil:
		slog.Warn("ignoring unreadable model", "path", path, "error", err)
		return nil
	}
	return model
}

func runRank(cmd *cobra.Command, scorer *resume.Scorer) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	var (
		outcome resume.Outcome
		rankErr error
		req     resume.Request
	)
	if err := json.Unmarshal(raw, &req); err != nil {
		rankErr = fmt.Errorf("decoding request: %w", err)
	} else {
		outcome, rankErr = scorer.Rank(cmd.Context(), req)
	}
	if rankErr != nil {
		slog.Error("ranking failed", "error", rankErr)
	}

	out, err := json.Marshal(resume.Render(outcome, rankErr))
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
