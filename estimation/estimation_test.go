//go:build unit
// +build unit

package estimation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/core"
)

func TestPostProcessMissRate(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	core.ResetSetting()

	rm, err := core.NewRoundManager(&EstimationRound{})
	assert.Nil(t, err)
	assert.NotNil(t, rm)

	rd := core.NewRoundData()
	rd.ID = "test_estimation_round"
	rd.Shots = 2
	rd.RoundType = ESTIMATION_ROUND
	rd.Result.ShotRecords = core.ShotRecords{
		{Injected: nil, Syndrome: "00000000"},
		{Injected: []code.PauliError{{Qubit: 4, Pauli: code.X}}, Syndrome: "00001001"},
	}
	rc, err := core.NewRoundContext()
	assert.Nil(t, err)

	round, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)

	er := round.(*EstimationRound)
	assert.False(t, er.IsFinished())
	er.PostProcess()
	assert.True(t, er.IsFinished())
	assert.Equal(t, core.SUCCEEDED, er.RoundData().Status)
	assert.Equal(t, float32(0.5), er.RoundData().Result.Estimation.MissRate)
	assert.InDelta(t, 0.3535534, er.RoundData().Result.Estimation.Stds, 1e-6)
}

func TestPostProcessFailsOverThreshold(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	core.ResetSetting()
	core.RegisterSetting(ESTIMATION_SETTING_KEY,
		map[string]interface{}{"miss_rate_threshold": 0.1})

	rm, err := core.NewRoundManager(&EstimationRound{})
	assert.Nil(t, err)

	rd := core.NewRoundData()
	rd.ID = "test_threshold_round"
	rd.Shots = 1
	rd.RoundType = ESTIMATION_ROUND
	rd.Result.ShotRecords = core.ShotRecords{
		{Injected: []code.PauliError{{Qubit: 4, Pauli: code.X}}, Syndrome: "00001001"},
	}
	rc, err := core.NewRoundContext()
	assert.Nil(t, err)

	round, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)

	er := round.(*EstimationRound)
	assert.Equal(t, 0.1, er.setting.MissRateThreshold)
	er.PostProcess()
	assert.Equal(t, core.FAILED, er.RoundData().Status)
	assert.Equal(t, float32(1.0), er.RoundData().Result.Estimation.MissRate)
}

func TestPostProcessWithoutRecords(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	core.ResetSetting()

	rm, err := core.NewRoundManager(&EstimationRound{})
	assert.Nil(t, err)

	rd := core.NewRoundData()
	rd.ID = "test_no_records_round"
	rd.Shots = 1
	rd.RoundType = ESTIMATION_ROUND
	rc, err := core.NewRoundContext()
	assert.Nil(t, err)

	round, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)

	round.PostProcess()
	assert.Equal(t, core.FAILED, round.RoundData().Status)
	assert.Equal(t, "no shot records to estimate against", round.RoundData().Result.Message)
}
