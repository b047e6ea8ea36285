package noise

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/core"
)

const (
	DEPOLARIZING = "depolarizing"
	PAULI        = "pauli"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Model samples weight-w Pauli errors over the data qubits of one shot.
type Model interface {
	Name() string
	Sample(r *rand.Rand, dataQubits int) []code.PauliError
}

// Depolarizing applies X, Y or Z with equal probability ErrorRate/3 on each
// data qubit independently.
type Depolarizing struct {
	ErrorRate float64 `json:"error_rate"`
}

func (d *Depolarizing) Name() string {
	return DEPOLARIZING
}

func (d *Depolarizing) Sample(r *rand.Rand, dataQubits int) []code.PauliError {
	var errs []code.PauliError
	for q := 0; q < dataQubits; q++ {
		if r.Float64() >= d.ErrorRate {
			continue
		}
		p := []code.Pauli{code.X, code.Y, code.Z}[r.Intn(3)]
		errs = append(errs, code.PauliError{Qubit: q, Pauli: p})
	}
	return errs
}

// PauliChannel applies X, Y and Z with independent per-Pauli rates.
type PauliChannel struct {
	XRate float64 `json:"x_rate"`
	YRate float64 `json:"y_rate"`
	ZRate float64 `json:"z_rate"`
}

func (p *PauliChannel) Name() string {
	return PAULI
}

func (p *PauliChannel) Sample(r *rand.Rand, dataQubits int) []code.PauliError {
	var errs []code.PauliError
	for q := 0; q < dataQubits; q++ {
		f := r.Float64()
		switch {
		case f < p.XRate:
			errs = append(errs, code.PauliError{Qubit: q, Pauli: code.X})
		case f < p.XRate+p.YRate:
			errs = append(errs, code.PauliError{Qubit: q, Pauli: code.Y})
		case f < p.XRate+p.YRate+p.ZRate:
			errs = append(errs, code.PauliError{Qubit: q, Pauli: code.Z})
		}
	}
	return errs
}

// FromConfig builds the model a round asks for. A nil config or nil model
// means noiseless, returned as a nil Model with no error.
func FromConfig(c *core.NoiseConfig) (Model, error) {
	if c == nil || c.Model == nil {
		return nil, nil
	}
	switch *c.Model {
	case DEPOLARIZING:
		m := &Depolarizing{}
		if len(c.Options) > 0 {
			if err := jsonIter.Unmarshal(c.Options, m); err != nil {
				return nil, fmt.Errorf("failed to unmarshal depolarizing options from %s/reason:%s",
					string(c.Options), err)
			}
		}
		if m.ErrorRate < 0 || m.ErrorRate > 1 {
			return nil, fmt.Errorf("error_rate(%f) must be in [0, 1]", m.ErrorRate)
		}
		return m, nil
	case PAULI:
		m := &PauliChannel{}
		if len(c.Options) > 0 {
			if err := jsonIter.Unmarshal(c.Options, m); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pauli channel options from %s/reason:%s",
					string(c.Options), err)
			}
		}
		total := m.XRate + m.YRate + m.ZRate
		if m.XRate < 0 || m.YRate < 0 || m.ZRate < 0 || total > 1 {
			return nil, fmt.Errorf("pauli rates(%f, %f, %f) must be non-negative and sum to at most 1",
				m.XRate, m.YRate, m.ZRate)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown noise model:%s", *c.Model)
	}
}

// Injector owns the random source. rand.Rand is not safe for concurrent use,
// so sampling is serialized.
type Injector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewInjector(seed int64) *Injector {
	if seed == 0 {
		seed = time.Now().UnixNano()
		zap.L().Debug(fmt.Sprintf("noise injector seeded from clock:%d", seed))
	} else {
		zap.L().Info(fmt.Sprintf("noise injector seeded:%d", seed))
	}
	return &Injector{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (i *Injector) Inject(m Model, dataQubits int) []code.PauliError {
	i.mu.Lock()
	defer i.mu.Unlock()
	return m.Sample(i.rng, dataQubits)
}

// Flip returns true with probability p. Used for readout bit-flips.
func (i *Injector) Flip(p float64) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rng.Float64() < p
}
