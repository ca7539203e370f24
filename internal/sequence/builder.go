package sequence

import (
	"FeatureMill/internal/frame"
	applogger "FeatureMill/pkg/logger"
)

// minTailRows is the usable-row margin required beyond one full window.
const minTailRows = 10

// Dataset holds the windowed, scaled output of one build: 3-D inputs
// shaped samples x length x features, label vectors, and the fitted
// scalers needed to invert predictions back to price units.
type Dataset struct {
	XTrain [][][]float64
	XTest  [][][]float64
	YTrain []float64
	YTest  []float64

	FeatureNames  []string
	FeatureScaler *MinMaxScaler
	TargetScaler  *MinMaxScaler
}

// Windows returns the total number of windows across both splits.
func (d *Dataset) Windows() int { return len(d.XTrain) + len(d.XTest) }

// Builder slices a selected feature table into overlapping input/label
// windows with a temporal train/test split.
//
// Both scalers are fitted on the entire table before the split. That is a
// known look-ahead property and kept deliberately; forecast inversion
// depends on the target scaler seeing the global range.
type Builder struct {
	SequenceLength int
	TestSize       float64

	log *applogger.Logger
}

// NewBuilder constructs a builder; non-positive arguments fall back to the
// defaults of L=60 and F=0.2.
func NewBuilder(sequenceLength int, testSize float64) *Builder {
	if sequenceLength <= 0 {
		sequenceLength = 60
	}
	if testSize <= 0 {
		testSize = 0.2
	}
	return &Builder{SequenceLength: sequenceLength, TestSize: testSize}
}

// SetLogger injects a structured logger.
func (b *Builder) SetLogger(l *applogger.Logger) { b.log = l }

// Build normalizes the table and produces ordered overlapping windows:
// input i covers scaled feature rows [i, i+L) and its label is the scaled
// target at row i+L, never inside the window. The first floor((1-F)*total)
// windows train, the remainder test, preserving temporal order.
func (b *Builder) Build(selected *frame.Frame, target string) (*Dataset, error) {
	if !selected.Has(target) {
		return nil, &frame.SchemaError{Missing: []string{target}}
	}

	clean := selected.DropNA()
	need := b.SequenceLength + minTailRows
	if clean.Len() < need {
		return nil, &frame.InsufficientDataError{Need: need, Got: clean.Len()}
	}

	featureNames := make([]string, 0, clean.Width()-1)
	for _, name := range clean.Names() {
		if name != target {
			featureNames = append(featureNames, name)
		}
	}

	cols := make([][]float64, len(featureNames))
	for j, name := range featureNames {
		cols[j], _ = clean.Column(name)
	}
	targetCol, _ := clean.Column(target)

	featureScaler := FitScaler(cols)
	targetScaler := FitScaler([][]float64{targetCol})

	scaledCols, err := featureScaler.TransformColumns(cols)
	if err != nil {
		return nil, err
	}
	scaledTarget := make([]float64, len(targetCol))
	for i, v := range targetCol {
		scaledTarget[i] = targetScaler.TransformValue(0, v)
	}

	n := clean.Len()
	l := b.SequenceLength
	total := n - l
	x := make([][][]float64, 0, total)
	y := make([]float64, 0, total)
	for i := 0; i < total; i++ {
		win := make([][]float64, l)
		for t := 0; t < l; t++ {
			row := make([]float64, len(scaledCols))
			for j := range scaledCols {
				row[j] = scaledCols[j][i+t]
			}
			win[t] = row
		}
		x = append(x, win)
		y = append(y, scaledTarget[i+l])
	}

	split := int(float64(total) * (1 - b.TestSize))
	ds := &Dataset{
		XTrain:        x[:split],
		XTest:         x[split:],
		YTrain:        y[:split],
		YTest:         y[split:],
		FeatureNames:  featureNames,
		FeatureScaler: featureScaler,
		TargetScaler:  targetScaler,
	}

	if b.log != nil {
		b.log.Info("sequence dataset built",
			applogger.Int("rows", n),
			applogger.Int("features", len(featureNames)),
			applogger.Int("train_windows", len(ds.XTrain)),
			applogger.Int("test_windows", len(ds.XTest)),
			applogger.Int("sequence_length", l),
		)
	}
	return ds, nil
}
