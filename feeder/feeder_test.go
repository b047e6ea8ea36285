//go:build unit
// +build unit

package feeder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/qec-dojo/surface17-engine/core"
)

func TestFeed(t *testing.T) {
	tests := []struct {
		name                    string
		source                  roundSource
		wantCurrentFeederStates []state
	}{
		{
			name:   "normal",
			source: &oneRoundSource{},
			wantCurrentFeederStates: []state{
				FEEDING,
				FEEDING,
				FEEDING,
			},
		},
		{
			name:   "no rounds count",
			source: &zeroRoundsSource{},
			wantCurrentFeederStates: []state{
				FEEDING,
				SUB_IDLE,
				SUB_IDLE,
				IDLE,
			},
		},
		{
			name:   "recover to feeding state",
			source: &recoveringRoundSource{},
			wantCurrentFeederStates: []state{
				FEEDING,
				SUB_IDLE,
				SUB_IDLE,
				IDLE,
				IDLE,
				FEEDING,
			},
		},
	}

	for _, tt := range tests {
		s := core.SCWithDBContainer()
		defer s.TearDown()
		f := &Feeder{
			Count:        1,
			Shots:        1,
			RoundType:    "normal",
			NormalPeriod: 1,
			IdlePeriod:   1,
			MaxRetry:     3,
		}
		err := f.Setup()
		assert.Nil(t, err)
		f.roundSource = tt.source
		t.Run(tt.name, func(t *testing.T) {
			periodicTask := &core.PeriodicTask{
				PeriodicTaskImpl: f,
			}
			for _, want := range tt.wantCurrentFeederStates {
				assert.Equal(t, want, f.state, "want %v, got %v", want, f.state)
				periodicTask.Task()
			}

		})
	}
}

func TestSetParams(t *testing.T) {
	f := &Feeder{}
	err := f.SetParams(map[string]interface{}{
		"count":         3,
		"shots":         500,
		"normal_period": "5s",
	})
	assert.Nil(t, err)
	assert.Equal(t, 3, f.Count)
	assert.Equal(t, 500, f.Shots)
	assert.Equal(t, DEFAULT_ROUND_TYPE, f.RoundType)
	assert.Equal(t, "5s", f.NormalPeriod.String())
	assert.Equal(t, DEFAULT_IDLE_PERIOD, f.IdlePeriod)
	assert.Equal(t, DEFAULT_MAX_RETRY, f.MaxRetry)
}

type zeroRoundsSource struct{}

func (m *zeroRoundsSource) request() ([]core.Round, error) {
	return []core.Round{}, nil
}

type oneRoundSource struct{}

func (m *oneRoundSource) request() ([]core.Round, error) {
	return oneRoundRequestImpl(core.READY)
}

type recoveringRoundSource struct {
	count int
}

func (m *recoveringRoundSource) request() ([]core.Round, error) {
	m.count++
	if m.count >= 5 {
		return oneRoundRequestImpl(core.READY)
	} else {
		return []core.Round{}, nil
	}
}

func oneRoundRequestImpl(st core.Status) ([]core.Round, error) {
	rm, err := core.NewRoundManager(&core.NormalRound{})
	if err != nil {
		return []core.Round{}, err
	}
	rc, err := core.NewRoundContext()
	if err != nil {
		return []core.Round{}, err
	}

	rd := core.NewRoundData()
	rd.ID = uuid.NewString()
	rd.Shots = 1
	rd.Noise = core.DEFAULT_NOISE_CONFIG()
	rd.RoundType = "normal"
	rd.Status = st
	r, err := rm.NewRoundFromRoundDataWithValidation(rd, rc)
	if err != nil {
		return []core.Round{}, err
	}
	return []core.Round{r}, nil
}
