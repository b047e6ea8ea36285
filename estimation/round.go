package estimation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/core"
)

const (
	ESTIMATION_ROUND       = "estimation"
	ESTIMATION_SETTING_KEY = "estimation"

	DEFAULT_MISS_RATE_THRESHOLD = 1.0
)

type EstimationSetting struct {
	MissRateThreshold float64 `toml:"miss_rate_threshold"`
}

func NewEstimationSetting() EstimationSetting {
	return EstimationSetting{
		MissRateThreshold: DEFAULT_MISS_RATE_THRESHOLD,
	}
}

// EstimationRound measures syndromes with per-shot truth records kept, then
// checks every decode decision against the injected errors. A decision counts
// as a hit when the injected errors composed with the returned correction are
// equivalent to identity up to the stabilizer group, so degenerate
// corrections are not penalized.
type EstimationRound struct {
	setting      EstimationSetting
	roundData    *core.RoundData
	roundContext *core.RoundContext

	finished bool
}

func (r *EstimationRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	var setting EstimationSetting
	s, ok := core.GetComponentSetting(ESTIMATION_SETTING_KEY)
	if !ok {
		zap.L().Debug("estimation setting is not found")
		setting = NewEstimationSetting()
	} else {
		// TODO: fix this adhoc
		mapped, ok := s.(map[string]interface{})
		if !ok {
			zap.L().Debug("estimation setting is not set")
			setting = NewEstimationSetting()
		} else {
			setting = NewEstimationSetting()
			if th, ok := mapped["miss_rate_threshold"].(float64); ok {
				setting.MissRateThreshold = th
			}
		}
	}
	return &EstimationRound{
		setting:      setting,
		roundData:    rd,
		roundContext: rc,
		finished:     false,
	}
}

func (r *EstimationRound) PreProcess() {
	if err := r.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a round(%s). Reason:%s",
			r.RoundData().ID, err.Error()))
		core.SetFailureWithError(r, err)
		r.finished = true
		return
	}
	return
}

func (r *EstimationRound) preProcessImpl() (err error) {
	err = nil
	rd := r.RoundData()
	container := core.GetSystemComponents().Container
	err = container.Invoke(
		func(d core.DBManager) error {
			if d.ExistInInnerRoundIDSet(rd.ID) {
				return core.ErrorRoundIDConflict
			}
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to check the existence of a round(%s). Reason:%s",
			rd.ID, err.Error()))
		return
	}
	err = container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(r)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a round(%s). Reason:%s", rd.ID, err.Error()))
		return
	}
	if rd.CircuitQASM == "" {
		err = container.Invoke(
			func(cb core.CircuitBuilder, d core.Decoder) error {
				qasm, buildErr := cb.Build(d.Layout())
				if buildErr != nil {
					return buildErr
				}
				rd.CircuitQASM = qasm
				return nil
			})
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to build a circuit for round(%s). Reason:%s",
				rd.ID, err.Error()))
			return
		}
	}
	_ = container.Invoke(
		func(d core.DBManager) error {
			d.AddToInnerRoundIDSet(rd.ID)
			return nil
		})
	return
}

func (r *EstimationRound) Process() {
	c := core.GetSystemComponents().Container
	err := c.Invoke(
		func(b core.Backend) error {
			return b.Send(r)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to send a round(%s) to backend. Reason:%s",
			r.RoundData().ID, err.Error()))
		r.RoundData().Status = core.FAILED
		r.finished = true
		return
	}
	zap.L().Debug(fmt.Sprintf("finished to process a round(%s)/status:%s",
		r.RoundData().ID, r.RoundData().Status))
}

func (r *EstimationRound) PostProcess() {
	r.finished = true
	rd := r.RoundData()
	missRate, stds, err := estimateMissRate(rd)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to post-process a round(%s). Reason:%s",
			rd.ID, err.Error()))
		core.SetFailureWithError(r, err)
		return
	}
	rd.Result.Estimation = &core.Estimation{
		MissRate: missRate,
		Stds:     stds,
	}
	zap.L().Debug(fmt.Sprintf("miss_rate:%f, stds:%f", missRate, stds))
	if float64(missRate) > r.setting.MissRateThreshold {
		err := fmt.Errorf("miss rate(%f) is over the threshold(%f)",
			missRate, r.setting.MissRateThreshold)
		zap.L().Info(fmt.Sprintf("round(%s) failed estimation. Reason:%s", rd.ID, err.Error()))
		core.SetFailureWithError(r, err)
		return
	}
	rd.Status = core.SUCCEEDED
	rd.Ended = strfmt.DateTime(time.Now())
	return
}

// estimateMissRate replays every truth record through the decoder. A shot is
// a miss when the decision is Unresolved or the correction fails to cancel
// the injected errors modulo the stabilizer group.
func estimateMissRate(rd *core.RoundData) (missRate float32, stds float32, err error) {
	records := rd.Result.ShotRecords
	if len(records) == 0 {
		return 0, 0, fmt.Errorf("no shot records to estimate against")
	}
	miss := 0
	c := core.GetSystemComponents().Container
	err = c.Invoke(
		func(d core.Decoder) error {
			layout := d.Layout()
			for _, rec := range records {
				s, convErr := code.ToSyndrome(rec.Syndrome)
				if convErr != nil {
					return convErr
				}
				decision, decodeErr := d.Decode(s)
				if decodeErr != nil {
					return decodeErr
				}
				if decision.Outcome == code.Unresolved {
					miss++
					continue
				}
				combined := append([]code.PauliError{}, rec.Injected...)
				if decision.Outcome == code.Corrected {
					combined = append(combined, code.PauliError{Qubit: decision.Qubit, Pauli: decision.Pauli})
				}
				if !layout.EquivalentToIdentity(combined) {
					miss++
				}
			}
			return nil
		})
	if err != nil {
		return 0, 0, err
	}
	n := float64(len(records))
	p := float64(miss) / n
	return float32(p), float32(math.Sqrt(p * (1 - p) / n)), nil
}

func (r *EstimationRound) IsFinished() bool {
	return r.finished
}

func (r *EstimationRound) RoundData() *core.RoundData {
	return r.roundData
}

func (r *EstimationRound) RoundType() string {
	return ESTIMATION_ROUND
}

func (r *EstimationRound) RoundContext() *core.RoundContext {
	return r.roundContext
}

func (r *EstimationRound) UpdateRoundData(rd *core.RoundData) {
	r.roundData = rd
}

func (r *EstimationRound) Clone() core.Round {
	cloned := &EstimationRound{
		setting:      r.setting,
		roundData:    r.roundData.Clone(),
		roundContext: r.roundContext,
		finished:     r.finished,
	}
	return cloned
}
