package resume

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/jobmatch/internal/vectormodel"
)

// LinearModel is a trained résumé scorer: a TF-IDF vectorizer followed by a
// linear regressor over the vector components.
type LinearModel struct {
	vectorizer *vectormodel.Model
	weights    []float64
	intercept  float64
}

type modelFile struct {
	Terms     []string  `json:"terms"`
	IDF       []float64 `json:"idf"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// NewLinearModel pairs a fitted vectorizer with regression weights.
func NewLinearModel(vectorizer *vectormodel.Model, weights []float64, intercept float64) (*LinearModel, error) {
	if !vectorizer.Trained() {
		return nil, fmt.Errorf("linear model: vectorizer is not trained")
	}
	if len(weights) != vectorizer.Dim() {
		return nil, fmt.Errorf("linear model: %d weights for %d terms", len(weights), vectorizer.Dim())
	}
	return &LinearModel{
		vectorizer: vectorizer,
		weights:    append([]float64(nil), weights...),
		intercept:  intercept,
	}, nil
}

// LoadModel reads a model artifact written by Save.
func LoadModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}
	var mf modelFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	vectorizer, err := vectormodel.Restore(mf.Terms, mf.IDF)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return NewLinearModel(vectorizer, mf.Weights, mf.Intercept)
}

// Save writes the model as JSON, replacing path atomically.
func (m *LinearModel) Save(path string) error {
	raw, err := json.MarshalIndent(modelFile{
		Terms:     m.vectorizer.Terms(),
		IDF:       m.vectorizer.IDF(),
		Weights:   m.weights,
		Intercept: m.intercept,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating model dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming model: %w", err)
	}
	return nil
}

// Vectorize projects raw text into the model's TF-IDF space.
func (m *LinearModel) Vectorize(text string) (vectormodel.Vector, error) {
	return m.vectorizer.Transform(textnorm.Clean(text))
}

// Predict scores raw text.
func (m *LinearModel) Predict(text string) (float64, error) {
	v, err := m.Vectorize(text)
	if err != nil {
		return 0, err
	}
	return m.predictVector(v), nil
}

func (m *LinearModel) predictVector(v vectormodel.Vector) float64 {
	y := m.intercept
	for k, idx := range v.Indices {
		y += m.weights[idx] * v.Values[k]
	}
	return y
}

// Example is one labelled training document.
type Example struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type TrainOptions struct {
	Epochs       int
	LearningRate float64
	// L2 is the ridge penalty applied to the weights, not the intercept.
	L2 float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Epochs: 500, LearningRate: 0.5, L2: 0.001}
}

// Train fits a vectorizer on the example texts, then a ridge regressor by
// full-batch gradient descent on mean squared error. Training is
// deterministic for a given input.
func Train(examples []Example, opts TrainOptions) (*LinearModel, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("training: no examples")
	}
	def := DefaultTrainOptions()
	if opts.Epochs <= 0 {
		opts.Epochs = def.Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.L2 < 0 {
		opts.L2 = 0
	}

	texts := make([]string, len(examples))
	var mean float64
	for i, ex := range examples {
		texts[i] = textnorm.Clean(ex.Text)
		mean += ex.Score
	}
	mean /= float64(len(examples))

	vectorizer := vectormodel.Fit(texts)
	if !vectorizer.Trained() {
		return nil, fmt.Errorf("training: examples contain no tokens")
	}
	xs, err := vectorizer.TransformAll(texts)
	if err != nil {
		return nil, fmt.Errorf("training: %w", err)
	}

	m := &LinearModel{
		vectorizer: vectorizer,
		weights:    make([]float64, vectorizer.Dim()),
		intercept:  mean,
	}
	n := float64(len(examples))
	grad := make([]float64, len(m.weights))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = opts.L2 * m.weights[j]
		}
		var gradB float64
		for i, x := range xs {
			residual := m.predictVector(x) - examples[i].Score
			gradB += residual / n
			for k, idx := range x.Indices {
				grad[idx] += residual * x.Values[k] / n
			}
		}
		for j := range m.weights {
			m.weights[j] -= opts.LearningRate * grad[j]
		}
		m.intercept -= opts.LearningRate * gradB
	}
	return m, nil
}
