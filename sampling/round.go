package sampling

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
	"github.com/qec-dojo/surface17-engine/readout"
)

const SAMPLING_ROUND = "sampling"

// SamplingRound measures syndromes and tallies the decoder's decisions over
// the counts histogram. When the round asks for it, repeated syndromes are
// collapsed by majority vote before decoding.
type SamplingRound struct {
	roundData    *core.RoundData
	roundContext *core.RoundContext
	readoutInfo  *readout.ReadoutInfo
}

func (r *SamplingRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	return &SamplingRound{
		roundData:    rd,
		roundContext: rc,
	}
}

func (r *SamplingRound) PreProcess() {
	if err := r.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a round(%s). Reason:%s",
			r.RoundData().ID, err.Error()))
		core.SetFailureWithError(r, err)
		return
	}
	r.readoutInfo = readout.NewReadoutInfoFromRoundData(r.RoundData())
	return
}

func (r *SamplingRound) preProcessImpl() (err error) {
	err = nil
	rd := r.RoundData()
	container := core.GetSystemComponents().Container
	// TODO refactor this part
	// make roundID pool in syscomponent
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
	} else {
		zap.L().Debug(fmt.Sprintf("skip building a circuit for round(%s)", rd.ID))
	}
	_ = container.Invoke(
		func(d core.DBManager) error {
			d.AddToInnerRoundIDSet(rd.ID)
			return nil
		})
	return
}

func (r *SamplingRound) Process() {
	c := core.GetSystemComponents().Container
	err := c.Invoke(
		func(b core.Backend) error {
			return b.Send(r)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to send a round(%s) to backend. Reason:%s",
			r.RoundData().ID, err.Error()))
		r.RoundData().Status = core.FAILED
	}
	zap.L().Debug(fmt.Sprintf("finished to process a round(%s)/status:%s",
		r.RoundData().ID, r.RoundData().Status))
}

func (r *SamplingRound) PostProcess() {
	r.readoutInfo.Voted = true
	rd := r.RoundData()
	if r.readoutInfo.NeedMajorityVote {
		zap.L().Debug("start to do majority vote")
		c := core.GetSystemComponents().Container
		err := c.Invoke(
			func(d core.Decoder) error {
				return readout.MajorityVote(rd, d.Layout().NumStabilizers())
			})
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to vote a round(%s). Reason:%s", rd.ID, err.Error()))
			core.SetFailureWithError(r, err)
			return
		}
	} else {
		zap.L().Debug("skip majority vote")
	}
	if err := core.DecodeCounts(rd); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode a round(%s). Reason:%s", rd.ID, err.Error()))
		core.SetFailureWithError(r, err)
		return
	}
	rd.Status = core.SUCCEEDED
	rd.Ended = strfmt.DateTime(time.Now())
	return
}

func (r *SamplingRound) IsFinished() bool {
	zap.L().Debug(fmt.Sprintf("checking if round(%s) is finished", r.RoundData().ID))
	if r.readoutInfo != nil && r.readoutInfo.NeedMajorityVote {
		zap.L().Debug(fmt.Sprintf("round(%s) needs majority vote", r.RoundData().ID))
		return r.readoutInfo.Voted
	}
	return r.RoundData().Status == core.SUCCEEDED || r.RoundData().Status == core.FAILED
}

func (r *SamplingRound) RoundData() *core.RoundData {
	return r.roundData
}

func (r *SamplingRound) RoundType() string {
	return SAMPLING_ROUND
}

func (r *SamplingRound) RoundContext() *core.RoundContext {
	return r.roundContext
}

func (r *SamplingRound) UpdateRoundData(rd *core.RoundData) {
	r.roundData = rd
}

func (r *SamplingRound) Clone() core.Round {
	cloned := &SamplingRound{
		roundData:    r.roundData.Clone(),
		roundContext: r.roundContext,
		readoutInfo:  r.readoutInfo,
	}
	return cloned
}
