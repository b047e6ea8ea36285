package backend

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/core"
	"github.com/qec-dojo/surface17-engine/noise"
)

const DummyBackendName = "DummySurface17"
const DummyProviderName = "DummyProvider"

// DummyBackend measures syndromes classically: it samples errors from the
// round's noise model, folds them through the layout's check supports, and
// optionally flips readout bits. It stands in the QPU slot until a hardware
// gateway exists.
type DummyBackend struct {
	backendSetting *BackendSetting
	layout         *code.Layout
	injector       *noise.Injector

	EnableLatencyInsertion bool
	Latency                int
}

func (b *DummyBackend) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up Dummy backend")
	bs, err := LoadBackendSetting(conf.BackendSettingPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to load a backend setting. Reason:%s", err))
		return err
	}
	b.backendSetting = bs
	if conf.LayoutPath == "" {
		b.layout = code.Surface17()
	} else {
		l, err := code.LoadLayout(conf.LayoutPath)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to load layout from %s/reason:%s",
				conf.LayoutPath, err))
			return err
		}
		b.layout = l
	}
	b.injector = noise.NewInjector(conf.NoiseSeed)
	b.EnableLatencyInsertion = conf.EnableDummyBackendLatency
	b.Latency = conf.DummyBackendLatency
	return nil
}

func (b *DummyBackend) Send(round core.Round) error {
	rd := round.RoundData()
	zap.L().Info("[Dummy] starting stabilizer measurement of Round ID:" + rd.ID)
	if b.EnableLatencyInsertion {
		zap.L().Debug(fmt.Sprintf("[Dummy] waiting %d seconds for measurement", b.Latency))
		<-time.After(time.Duration(b.Latency) * time.Second)
	}
	start := time.Now()

	model, err := noise.FromConfig(rd.Noise)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build noise model for round(%s). Reason:%s",
			rd.ID, err))
		return err
	}

	counts := make(core.Counts)
	var records core.ShotRecords
	for shot := 0; shot < rd.Shots; shot++ {
		var injected []code.PauliError
		if model != nil {
			injected = b.injector.Inject(model, b.layout.DataQubits)
		}
		ideal := code.NewSyndrome(b.layout.NumStabilizers())
		for _, e := range injected {
			ideal.Xor(b.layout.SyndromeOf(e.Qubit, e.Pauli))
		}
		counts[b.measure(ideal)]++
		if b.backendSetting.KeepShotRecords {
			records = append(records, core.ShotRecord{
				Injected: injected,
				Syndrome: ideal.String(),
			})
		}
	}
	rd.Result.Counts = counts
	rd.Result.ShotRecords = records
	rd.Result.ExecutionTime = time.Since(start)
	zap.L().Info(fmt.Sprintf("[Dummy] finished stabilizer measurement of Round ID:%s/shots:%d/distinct syndromes:%d",
		rd.ID, rd.Shots, len(counts)))
	return nil
}

// measure reads the ideal syndrome SyndromeRepeats times, each read with
// independent readout flips, and concatenates the bitstrings. With one repeat
// and no flip rate this is just the ideal bitstring.
func (b *DummyBackend) measure(ideal code.Syndrome) string {
	repeats := b.backendSetting.SyndromeRepeats
	rate := b.backendSetting.ReadoutFlipRate
	if repeats == 1 && rate == 0 {
		return ideal.String()
	}
	var sb strings.Builder
	sb.Grow(len(ideal) * repeats)
	for rep := 0; rep < repeats; rep++ {
		m := ideal.Clone()
		if rate > 0 {
			for i := range m {
				if b.injector.Flip(rate) {
					m.FlipBit(i)
				}
			}
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}

func (b *DummyBackend) GetCodeInfo() *core.CodeInfo {
	return &core.CodeInfo{
		BackendName:    b.backendSetting.BackendName,
		ProviderName:   b.backendSetting.ProviderName,
		CodeName:       b.layout.Name,
		Status:         core.Available,
		Distance:       b.layout.Distance,
		DataQubits:     b.layout.DataQubits,
		Stabilizers:    b.layout.NumStabilizers(),
		MaxShots:       b.backendSetting.MaxShots,
		LayoutSpecJson: b.layout.SpecJson(),
	}
}
