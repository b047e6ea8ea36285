package core

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
)

var ErrorRoundIDConflict = errors.New("roundID is already used")
var roundManager *RoundManager

const NORMAL_ROUND = "normal"

// Round is one QEC cycle request: measure the stabilizers of the code some
// number of shots, then decode the observed syndromes.
type Round interface {
	// Round Control
	New(*RoundData, *RoundContext) Round
	PreProcess()
	Process()
	PostProcess()
	IsFinished() bool

	// Data Access
	RoundData() *RoundData // Get mutable RoundData
	RoundType() string
	RoundContext() *RoundContext
	Clone() Round
}

type RoundContext struct {
	*Channels
}

func NewRoundContext() (*RoundContext, error) {
	s := GetSystemComponents()
	if s == nil {
		return nil, fmt.Errorf("system components is not initialized")
	}
	c := s.Channels
	if c == nil {
		return nil, fmt.Errorf("channels is not initialized")
	}
	return &RoundContext{
		Channels: GetSystemComponents().Channels,
	}, nil
}

type RoundParam struct {
	RoundID   string
	Shots     int
	Noise     *NoiseConfig
	RoundType string
}

type NormalRound struct {
	roundData    *RoundData
	roundContext *RoundContext
}

func (r *NormalRound) New(rd *RoundData, rc *RoundContext) Round {
	return &NormalRound{
		roundData:    rd,
		roundContext: rc,
	}
}

func (r *NormalRound) PreProcess() {
	if err := r.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a round(%s). Reason:%s",
			r.RoundData().ID, err.Error()))
		SetFailureWithError(r, err)
		return
	}
	return
}

func (r *NormalRound) preProcessImpl() (err error) {
	err = nil
	rd := r.RoundData()
	container := GetSystemComponents().Container

	if rd.CircuitQASM == "" {
		err = container.Invoke(
			func(cb CircuitBuilder, d Decoder) error {
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
	return
}

func (r *NormalRound) Process() {
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(b Backend) error {
			return b.Send(r)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to send a round(%s) to backend. Reason:%s",
			r.RoundData().ID, err.Error()))
		r.RoundData().Status = FAILED
	}
	zap.L().Debug(fmt.Sprintf("finished to process a round(%s)/status:%s",
		r.RoundData().ID, r.RoundData().Status))
}

func (r *NormalRound) PostProcess() {
	rd := r.RoundData()
	if err := DecodeCounts(rd); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode a round(%s). Reason:%s", rd.ID, err.Error()))
		SetFailureWithError(r, err)
		return
	}
	rd.Status = SUCCEEDED
	rd.Ended = strfmt.DateTime(time.Now())
	return
}

func (r *NormalRound) IsFinished() bool {
	return r.RoundData().Status == SUCCEEDED || r.RoundData().Status == FAILED
}

func (r *NormalRound) RoundData() *RoundData {
	return r.roundData
}

func (r *NormalRound) RoundType() string {
	return NORMAL_ROUND
}

func (r *NormalRound) RoundContext() *RoundContext {
	return r.roundContext
}

func (r *NormalRound) UpdateRoundData(rd *RoundData) {
	r.roundData = rd
}

func (r *NormalRound) Clone() Round {
	cloned := &NormalRound{
		roundData:    r.roundData.Clone(),
		roundContext: r.roundContext,
	}
	return cloned
}

// DecodeCounts runs the container decoder over every syndrome in the counts
// histogram and fills the round's tally.
func DecodeCounts(rd *RoundData) error {
	c := GetSystemComponents().Container
	return c.Invoke(
		func(d Decoder) error {
			tally := NewDecodeTally()
			for bits, n := range rd.Result.Counts {
				s, err := code.ToSyndrome(bits)
				if err != nil {
					return err
				}
				decision, err := d.Decode(s)
				if err != nil {
					return err
				}
				tally.Add(decision, n)
			}
			rd.Result.Tally = tally
			return nil
		})
}

type UnknownRound struct {
	roundData    *RoundData
	roundContext *RoundContext
}

func (r *UnknownRound) New(rd *RoundData, rc *RoundContext) Round {
	return &UnknownRound{
		roundData:    rd,
		roundContext: rc,
	}
}

func (r *UnknownRound) PreProcess() {
	return
}

func (r *UnknownRound) Process() {
	return
}

func (r *UnknownRound) PostProcess() {
	return
}

func (r *UnknownRound) IsFinished() bool {
	return r.RoundData().Status == SUCCEEDED || r.RoundData().Status == FAILED
}

func (r *UnknownRound) RoundData() *RoundData {
	return r.roundData
}

func (r *UnknownRound) RoundType() string {
	// return unknown round type itself
	return r.roundData.RoundType
}

func (r *UnknownRound) RoundContext() *RoundContext {
	return r.roundContext
}

func (r *UnknownRound) Clone() Round {
	cloned := &UnknownRound{
		roundData:    r.roundData.Clone(),
		roundContext: r.roundContext,
	}
	return cloned
}

func GetRound(id string) (round Round) {
	round = nil
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(d DBManager) error {
			var getErr error
			round, getErr = d.Get(id)
			return getErr
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to find a round(%s)", id))
		return nil
	}
	return round
}

func DeleteRound(id string) bool {
	c := GetSystemComponents().Container
	err := c.Invoke(
		func(d DBManager) error {
			return d.Delete(id)
		})
	if err != nil {
		zap.L().Info(fmt.Sprintf("failed to delete a round(%s)", id))
		return false
	}
	return true
}

// factory pattern
type RoundManager struct {
	acceptableRounds []Round //empty rounds
}

func (m *RoundManager) RegisterRound(rounds ...Round) error {
	for _, round := range rounds {
		// check if round is already registered
		for _, t := range m.acceptableRounds {
			if reflect.TypeOf(t) == reflect.TypeOf(round) {
				return fmt.Errorf("round:%s is already registered", round.RoundType())
			}
		}
		zap.L().Debug(fmt.Sprintf("registering round type %s", round.RoundType()))
		m.acceptableRounds = append(m.acceptableRounds, round)
	}
	return nil
}

func (m *RoundManager) AcceptableRoundTypes() []string {
	types := []string{}
	for _, round := range m.acceptableRounds {
		types = append(types, round.RoundType())
	}
	return types
}

func (m *RoundManager) NewRoundWithValidation(param *RoundParam, rc *RoundContext) (Round, error) {
	if param.RoundType == "" { // default round type
		param.RoundType = NORMAL_ROUND
	}
	if err := validateRoundParam(param); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate round param. Reason:%s", err.Error()))
		return nil, err
	}
	return m.NewRound(param, rc)
}

func (m *RoundManager) NewRound(param *RoundParam, rc *RoundContext) (Round, error) {
	rd := NewRoundData()
	rd.ID = param.RoundID
	rd.Shots = param.Shots
	rd.Noise = param.Noise
	rd.RoundType = param.RoundType
	return m.NewRoundFromRoundData(rd, rc)
}

func (m *RoundManager) NewRoundFromRoundDataWithValidation(rd *RoundData, rc *RoundContext) (Round, error) {
	if rd.RoundType == "" { // default round type
		rd.RoundType = NORMAL_ROUND
	}
	p := &RoundParam{
		RoundID:   rd.ID,
		Shots:     rd.Shots,
		Noise:     rd.Noise,
		RoundType: rd.RoundType,
	}
	if err := validateRoundParam(p); err != nil {
		zap.L().Info(fmt.Sprintf("failed to validate round data. Reason:%s", err.Error()))
		return nil, err
	}
	return m.NewRoundFromRoundData(rd, rc)
}

func (m *RoundManager) NewRoundFromRoundData(rd *RoundData, rc *RoundContext) (Round, error) {
	if rd.RoundType == "" { // default round type
		rd.RoundType = NORMAL_ROUND
	}
	zap.L().Debug(fmt.Sprintf("creating a round from round data. Round ID:%s, Round Type:%s",
		rd.ID, rd.RoundType))
	for _, r := range m.acceptableRounds {
		if r.RoundType() == rd.RoundType {
			// create a new round instance
			t := reflect.TypeOf(r)
			newInstance := reflect.New(t).Elem().Interface()
			round := newInstance.(Round).New(rd, rc)
			return round, nil
		}
	}
	return nil, fmt.Errorf("round type %s is not registered", rd.RoundType)
}

func validateRoundParam(p *RoundParam) (err error) {
	err = nil
	if p.RoundID == "" {
		return fmt.Errorf("roundID is empty")
	}
	if p.Shots <= 0 {
		msg := fmt.Sprintf("shots(%d) must be greater than 0", p.Shots)
		zap.L().Info(msg + fmt.Sprintf("/roundID:%s", p.RoundID))
		return fmt.Errorf(msg)
	}
	maxShots := GetSystemComponents().GetCodeInfo().MaxShots
	if p.Shots > maxShots {
		msg := fmt.Sprintf("shots(%d) is over the limit(%d)",
			p.Shots, maxShots)
		zap.L().Info(msg + fmt.Sprintf("/roundID:%s", p.RoundID))
		return fmt.Errorf(msg)
	}
	return
}

func NewRoundManager(rounds ...Round) (*RoundManager, error) {
	rm := &RoundManager{}
	for _, round := range rounds {
		zap.L().Debug(fmt.Sprintf("registering round type %s", round.RoundType()))
		err := rm.RegisterRound(round)
		if err != nil {
			return nil, err
		}
	}
	roundManager = rm
	return rm, nil
}

func GetRoundManager() *RoundManager {
	return roundManager
}

func SetFailureWithError(r Round, err error) (msg string) {
	rd := r.RoundData()
	return SetFailureWithErrorToRoundData(rd, err)
}

func SetFailureWithErrorToRoundData(rd *RoundData, err error) (msg string) {
	msg = err.Error()
	rd.Result.Message = msg
	rd.Status = FAILED
	rd.Ended = strfmt.DateTime(time.Now())
	return msg
}
