//go:build unit
// +build unit

package core

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoundManager(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	rm, err := NewRoundManager(
		&NormalRound{},
	)
	assert.Nil(t, err)
	assert.NotNil(t, rm)
	as := rm.AcceptableRoundTypes()
	assert.Equal(t, len(as), 1)
	assert.Equal(t, as[0], "normal")

	err = rm.RegisterRound(&NormalRound{})
	assert.EqualError(t, err, "round:normal is already registered")

	as = rm.AcceptableRoundTypes()
	assert.Equal(t, len(as), 1)
	assert.Equal(t, as[0], "normal")

	rc, err := NewRoundContext()
	assert.Nil(t, err)

	round, err := rm.NewRoundFromRoundData(
		&RoundData{ID: "test"},
		rc,
	)

	assert.Nil(t, err)
	assert.Equal(t, round.RoundData().ID, "test")
}

func TestNewRound(t *testing.T) {
	s := SCWithDBContainer()
	defer s.TearDown()

	rm, err := NewRoundManager()
	assert.Nil(t, err)
	assert.NotNil(t, rm)
	rm.RegisterRound(&NormalRound{})

	param := RoundParam{
		RoundID: uuid.NewString(),
		Shots:   -1,
	}
	tests := []struct {
		name          string
		param         *RoundParam
		wantError     string
		wantRoundData *RoundData
	}{
		{
			name: "0 shots",
			param: &RoundParam{
				RoundID: uuid.NewString(),
				Shots:   0,
			},
			wantError: "shots(0) must be greater than 0",
		},
		{
			name:      "negative shots",
			param:     &param,
			wantError: "shots(-1) must be greater than 0",
		},
		{
			name: "over max shots",
			param: &RoundParam{
				RoundID: uuid.NewString(),
				Shots:   MockMaxShots + 1,
			},
			wantError: fmt.Sprintf(
				"shots(%d) is over the limit(%d)",
				MockMaxShots+1, MockMaxShots),
		},
		{
			name: "normal with max shots",
			param: &RoundParam{
				RoundID: uuid.NewString(),
				Shots:   MockMaxShots,
			},
			wantError: "",
			wantRoundData: &RoundData{
				RoundType: NORMAL_ROUND,
				Shots:     MockMaxShots,
			},
		},
		{
			name: "normal with 1 shot",
			param: &RoundParam{
				RoundID: uuid.NewString(),
				Shots:   1,
			},
			wantError: "",
			wantRoundData: &RoundData{
				RoundType: NORMAL_ROUND,
				Shots:     1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := NewRoundContext()
			assert.Nil(t, err)
			round, err := rm.NewRoundWithValidation(tt.param, rc)
			if tt.wantError == "" {
				assert.Nil(t, err)
				tt.wantRoundData.ID = tt.param.RoundID
				tt.wantRoundData.Result = NewResult()
				tt.wantRoundData.Created = round.RoundData().Created // ignore time
				assert.Equal(t, round.RoundData(), tt.wantRoundData)
			} else {
				assert.Equal(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestCloneNormalRound(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	rm, err := NewRoundManager(&NormalRound{})
	assert.Nil(t, err)

	rd := &RoundData{
		ID:          "test",
		CircuitQASM: "test_qasm",
		Shots:       1000,
	}
	rc, err := NewRoundContext()
	assert.Nil(t, err)
	org, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)
	cloned := org.Clone()
	assert.Nil(t, err)
	assert.False(t, cloned == org)
	assert.False(t, cloned.RoundData() == org.RoundData(),
		"cloned.RoundData()=%p, org.RoundData()=%p", cloned.RoundData(), org.RoundData())
	assert.Equal(t, cloned.RoundData().ID, org.RoundData().ID)
	assert.Equal(t, cloned.RoundData().CircuitQASM, org.RoundData().CircuitQASM)
	assert.Equal(t, cloned.RoundData().Shots, org.RoundData().Shots)

	org.RoundData().ID = "test2"
	assert.NotEqual(t, cloned.RoundData().ID, org.RoundData().ID)

	org.RoundData().Status = RUNNING
	cloned.RoundData().Status = SUCCEEDED
	assert.NotEqual(t, cloned.RoundData().Status, org.RoundData().Status)
}

func TestDecodeCounts(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()

	rd := NewRoundData()
	rd.ID = "decode-counts-test"
	rd.Result.Counts = Counts{
		"00000000": 5,
		"00001001": 3,
	}
	err := DecodeCounts(rd)
	assert.Nil(t, err)
	assert.Equal(t, uint32(5), rd.Result.Tally.NoError)
	assert.Equal(t, uint32(3), rd.Result.Tally.Unresolved)
	assert.Equal(t, uint32(0), rd.Result.Tally.Corrected)
	assert.Equal(t, uint32(8), rd.Result.Tally.Total())
}
