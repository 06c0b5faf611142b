package scoring

import (
	"context"
	"runtime"
	"sync"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig describes a single-output regression model exported to ONNX.
type ONNXConfig struct {
	ModelPath string `yaml:"model_path" json:"model_path" validate:"required"`
	// LibraryPath is the onnxruntime shared library. Empty picks the platform default.
	LibraryPath  string `yaml:"library_path" json:"library_path"`
	InputName    string `yaml:"input_name" json:"input_name"`
	OutputName   string `yaml:"output_name" json:"output_name"`
	FeatureCount int    `yaml:"feature_count" json:"feature_count" validate:"gt=0"`
}

var initORT sync.Once

// ONNXProvider runs the trained model on the feature vector of every bar.
type ONNXProvider struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	input        *ort.Tensor[float32]
	output       *ort.Tensor[float32]
	featureCount int
}

func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

// NewONNXProvider loads the model in config.ModelPath.
func NewONNXProvider(config ONNXConfig) (*ONNXProvider, error) {
	if config.FeatureCount <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "feature_count must be positive, got %d", config.FeatureCount)
	}

	if config.InputName == "" {
		config.InputName = "input"
	}

	if config.OutputName == "" {
		config.OutputName = "output"
	}

	libraryPath := config.LibraryPath
	if libraryPath == "" {
		libraryPath = defaultLibraryPath()
	}

	var initErr error

	initORT.Do(func() {
		ort.SetSharedLibraryPath(libraryPath)
		initErr = ort.InitializeEnvironment()
	})

	if initErr != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to initialize onnxruntime", initErr)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(config.FeatureCount)), make([]float32, config.FeatureCount))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create input tensor", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()

		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(config.ModelPath,
		[]string{config.InputName}, []string{config.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()

		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load model %s", config.ModelPath)
	}

	return &ONNXProvider{
		session:      session,
		input:        input,
		output:       output,
		featureCount: config.FeatureCount,
	}, nil
}

// Score implements Provider.
func (p *ONNXProvider) Score(ctx context.Context, _ types.Bar, features []float64) (float64, error) {
	if len(features) != p.featureCount {
		return 0, errors.Newf(errors.ErrCodeScoreUnavailable, "model expects %d features, got %d", p.featureCount, len(features))
	}

	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeScoreUnavailable, "scoring canceled", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.input.GetData()
	for i, f := range features {
		data[i] = float32(f)
	}

	if err := p.session.Run(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeScoreUnavailable, "inference failed", err)
	}

	return float64(p.output.GetData()[0]), nil
}

// Close releases the session and tensors.
func (p *ONNXProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil {
		p.session.Destroy()
	}

	if p.input != nil {
		p.input.Destroy()
	}

	if p.output != nil {
		p.output.Destroy()
	}
}
