//go:build unit
// +build unit

package scheduler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/qec-dojo/surface17-engine/core"
)

var rm *core.RoundManager

const FAILED_IN_PRE_PROCESS_ROUND = "FAILED_in_pre_process_round"
const FAILED_IN_PROCESS_ROUND = "FAILED_in_process_round"
const FAILED_IN_POST_PROCESS_ROUND = "FAILED_in_post_process_round"
const SUCCESS_IN_POST_PROCESS_ROUND = "success_in_post_process_round"

func TestMain(m *testing.M) {
	rm, _ = core.NewRoundManager(
		&core.NormalRound{},
		&FAILEDInPreProcessRound{},
		&FAILEDInProcessRound{},
		&FAILEDInPostProcessRound{},
		&successInPostProcessRound{},
	)
	m.Run()
}

func TestHandleRound(t *testing.T) {
	nsc := &NormalScheduler{}
	s := core.SCWithScheduler(nsc)
	defer s.TearDown()
	err := s.StartContainer()
	assert.Nil(t, err)

	tests := []struct {
		name            string
		round           core.Round
		wantStatusSlice []core.Status
	}{
		{
			name:  "handle normal round in ready state",
			round: testRound(t, core.NORMAL_ROUND, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
		{
			name:  "handle normal round in FAILED",
			round: testRound(t, core.NORMAL_ROUND, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name:  "handle FAILED in pre-processing round in ready state",
			round: testRound(t, FAILED_IN_PRE_PROCESS_ROUND, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.FAILED,
			},
		},
		{
			name:  "handle FAILED in pre-processing round in FAILED state",
			round: testRound(t, FAILED_IN_PRE_PROCESS_ROUND, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name:  "handle FAILED process round with pre-processing",
			round: testRound(t, FAILED_IN_PROCESS_ROUND, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name:  "handle FAILED post-process round with FAILED",
			round: testRound(t, FAILED_IN_POST_PROCESS_ROUND, core.FAILED),
			wantStatusSlice: []core.Status{
				core.FAILED,
			},
		},
		{
			name:  "handle FAILED post-process round with pre-processing",
			round: testRound(t, FAILED_IN_POST_PROCESS_ROUND, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.FAILED,
			},
		},
		{
			name:  "handle success post-process round with pre-processing",
			round: testRound(t, SUCCESS_IN_POST_PROCESS_ROUND, core.READY),
			wantStatusSlice: []core.Status{
				core.READY,
				core.RUNNING,
				core.SUCCEEDED,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundID := tt.round.RoundData().ID
			var wg sync.WaitGroup
			wg.Add(1)
			nsc.HandleRoundForTest(tt.round, &wg)
			wg.Wait()
			assert.Equal(
				t,
				tt.wantStatusSlice,
				nsc.statusHistory[roundID],
				fmt.Sprintf(
					"expected status slice:%s\n actual status slice:%s\n",
					printStatusSlice(tt.wantStatusSlice),
					printStatusSlice(nsc.statusHistory[roundID])))
		})
	}
}

func testRound(t *testing.T, roundType string, firstStatus core.Status) core.Round {
	rd := core.NewRoundData()
	rd.ID = uuid.NewString()
	rd.CircuitQASM = "test_qasm"
	rd.Shots = 1000
	rd.Status = firstStatus
	rd.RoundType = roundType
	rc, _ := core.NewRoundContext()
	r, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)
	return r
}

type FAILEDInPreProcessRound struct {
	*core.UnimplementedRound
}

func (r *FAILEDInPreProcessRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	u := &core.UnimplementedRound{}
	return &FAILEDInPreProcessRound{
		UnimplementedRound: u.New(rd, rc).(*core.UnimplementedRound),
	}
}

func (r *FAILEDInPreProcessRound) PreProcess() {
	r.RoundData().Status = core.FAILED
	return
}

func (r *FAILEDInPreProcessRound) RoundType() string {
	return FAILED_IN_PRE_PROCESS_ROUND
}

type FAILEDInProcessRound struct {
	*core.UnimplementedRound
}

func (r *FAILEDInProcessRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	u := &core.UnimplementedRound{}
	return &FAILEDInProcessRound{
		UnimplementedRound: u.New(rd, rc).(*core.UnimplementedRound),
	}
}

func (r *FAILEDInProcessRound) Process() {
	r.RoundData().Status = core.FAILED
	return
}

func (r *FAILEDInProcessRound) RoundType() string {
	return FAILED_IN_PROCESS_ROUND
}

type FAILEDInPostProcessRound struct {
	*core.UnimplementedRound
}

func (r *FAILEDInPostProcessRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	u := &core.UnimplementedRound{}
	return &FAILEDInPostProcessRound{
		UnimplementedRound: u.New(rd, rc).(*core.UnimplementedRound),
	}
}

func (r *FAILEDInPostProcessRound) Process() {
	r.RoundData().Status = core.RUNNING
	return
}

func (r *FAILEDInPostProcessRound) PostProcess() {
	r.RoundData().Status = core.FAILED
	return
}

func (r *FAILEDInPostProcessRound) RoundType() string {
	return FAILED_IN_POST_PROCESS_ROUND
}

type successInPostProcessRound struct {
	*core.UnimplementedRound
}

func (r *successInPostProcessRound) New(rd *core.RoundData, rc *core.RoundContext) core.Round {
	u := &core.UnimplementedRound{}
	return &successInPostProcessRound{
		UnimplementedRound: u.New(rd, rc).(*core.UnimplementedRound),
	}
}

func (r *successInPostProcessRound) Process() {
	r.RoundData().Status = core.RUNNING
	return
}

func (r *successInPostProcessRound) PostProcess() {
	r.RoundData().Status = core.SUCCEEDED
	return
}

func (r *successInPostProcessRound) RoundType() string {
	return SUCCESS_IN_POST_PROCESS_ROUND
}

func printStatusSlice(ss []core.Status) string {
	s := "[\n"
	for _, status := range ss {
		s += fmt.Sprintf("  %v,\n", status)
	}
	return s + "]"
}
