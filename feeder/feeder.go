package feeder

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

type state int

const FeederTaskName = "feeder"

const (
	FEEDING state = iota
	SUB_IDLE
	IDLE
)

const (
	DEFAULT_COUNT             = 1
	DEFAULT_SHOTS             = 1000
	DEFAULT_ROUND_TYPE        = "normal"
	DEFAULT_NORMAL_PERIOD     = time.Duration(10) * time.Second
	DEFAULT_IDLE_PERIOD       = time.Duration(30) * time.Second
	DEFAULT_MAX_RETRY         = 3
	DEFAULT_USE_DEFAULT_NOISE = true
)

func (s state) String() string {
	switch s {
	case FEEDING:
		return "FEEDING"
	case SUB_IDLE:
		return "SUB_IDLE"
	case IDLE:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// Feeder is a periodic task that keeps the scheduler queue fed with freshly
// generated rounds while it is under the refill threshold. When the queue
// stays full it backs off to the idle period, mirroring an upstream poller
// that has nothing to fetch.
type Feeder struct {
	Count        int           `toml:"count"`
	Shots        int           `toml:"shots"`
	RoundType    string        `toml:"round_type"`
	NormalPeriod time.Duration `toml:"normal_period"`
	IdlePeriod   time.Duration `toml:"idle_period"`
	MaxRetry     int           `toml:"max_retry"`

	UseDefaultNoise bool `toml:"use_default_noise"`

	roundSource

	currentPeriod time.Duration
	noRoundsCount int
	state         state

	sysCom *core.SystemComponents
}

func (f *Feeder) GetEmptyParams() interface{} {
	return &Feeder{}
}

func (f *Feeder) SetParams(params interface{}) error {
	if params == nil {
		msg := "no params for feeder"
		zap.L().Debug(msg)
		return nil
	}
	fp, ok := params.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for feeder/params: %s", params)
		zap.L().Error(msg.Error())
		return msg
	}
	zap.L().Debug(fmt.Sprintf("Set params for feeder: %v", fp))
	setField[int]("count", &f.Count, fp, DEFAULT_COUNT)
	setField[int]("shots", &f.Shots, fp, DEFAULT_SHOTS)
	setField[string]("round_type", &f.RoundType, fp, DEFAULT_ROUND_TYPE)
	setField[int]("max_retry", &f.MaxRetry, fp, DEFAULT_MAX_RETRY)
	setField[bool]("use_default_noise", &f.UseDefaultNoise, fp, DEFAULT_USE_DEFAULT_NOISE)

	setDurationField("normal_period", &f.NormalPeriod, fp, DEFAULT_NORMAL_PERIOD)
	setDurationField("idle_period", &f.IdlePeriod, fp, DEFAULT_IDLE_PERIOD)

	return nil
}

func setField[T string | int | bool](key string, target *T, fp map[string]interface{}, defaultVal T) {
	if v, ok := fp[key]; ok && !reflect.ValueOf(v).IsZero() {
		*target = v.(T)
		return
	}
	zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
	*target = defaultVal
}

func setDurationField(key string, target *time.Duration, fp map[string]interface{}, defaultVal time.Duration) {
	if v, ok := fp[key]; ok && !reflect.ValueOf(v).IsZero() {
		dur, err := time.ParseDuration(v.(string))
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse duration for %s/reason:%s", key, err))
		}
		*target = dur
		return
	}
	zap.L().Debug(fmt.Sprintf("Set default value for %s: %v", key, defaultVal))
	*target = defaultVal
}

func (f *Feeder) RequirePeriodUpdate() (bool, time.Duration) {
	return true, f.currentPeriod
}

type roundSource interface {
	request() ([]core.Round, error)
}

func (f *Feeder) Setup() error {
	f.roundSource = &localSource{
		count:           f.Count,
		shots:           f.Shots,
		roundType:       f.RoundType,
		useDefaultNoise: f.UseDefaultNoise,
	}
	zap.L().Info(fmt.Sprintf("Feeder source: local/count:%d/shots:%d/round type:%s",
		f.Count, f.Shots, f.RoundType))
	f.currentPeriod = f.NormalPeriod
	f.noRoundsCount = 0
	f.state = FEEDING
	f.sysCom = core.GetSystemComponents()
	return nil
}

func (f *Feeder) Task() {
	zap.L().Debug("Feeder is generating rounds")
	roundsNum, err := f.getRounds()
	if err != nil || roundsNum == 0 {
		if err != nil {
			zap.L().Info(fmt.Sprintf("Failed to get rounds. NoRoundsCount:%d, Reason:%s",
				f.noRoundsCount, err))
		} else {
			zap.L().Info(fmt.Sprintf("Get no rounds. NoRoundsCount:%d", f.noRoundsCount))
		}
		switch f.state {
		case FEEDING:
			f.noRoundsCount = 1
			f.updateState(SUB_IDLE)
			zap.L().Debug(fmt.Sprintf("Transition to sub idle mode. Retry after %s", f.NormalPeriod))
			return
		case SUB_IDLE:
			f.noRoundsCount++
			if f.noRoundsCount < f.MaxRetry {
				zap.L().Debug(fmt.Sprintf("Retry after %s", f.NormalPeriod))
			} else {
				zap.L().Info("Reached max retry. Transition to idle mode")
				f.noRoundsCount = 0
				f.updateState(IDLE)
				f.currentPeriod = f.IdlePeriod
			}
		case IDLE:
			zap.L().Debug(fmt.Sprintf("Already in idle mode. Retry after idle period %s", f.IdlePeriod))
		default:
			zap.L().Error(fmt.Sprintf("Unknown state %d", int(f.state)))
		}
	} else { // got rounds
		switch f.state {
		case FEEDING:
			zap.L().Debug("keep feeding")
		case SUB_IDLE:
			zap.L().Info("Transition to feeding mode from sub_idle state")
			f.updateState(FEEDING)
			f.noRoundsCount = 0
		case IDLE:
			zap.L().Info("Transition to feeding mode from idle state")
			f.currentPeriod = f.NormalPeriod
			f.updateState(FEEDING)
			f.noRoundsCount = 0
		default:
			zap.L().Error(fmt.Sprintf("Unknown state %d", int(f.state)))
		}
	}
}

func (f *Feeder) Cleanup() {
	zap.L().Info("Feeder is cleaning up")
}

func (f *Feeder) request() ([]core.Round, error) {
	return f.roundSource.request()
}

func (f *Feeder) getRounds() (int, error) {
	if err := passFeedingCondition(); err != nil {
		zap.L().Info(fmt.Sprintf("not get rounds. reason:%s", err))
		return 0, err
	}
	rounds, err := f.request()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to get rounds. Reason:%s", err))
		return 0, err
	}
	zap.L().Debug(fmt.Sprintf("get %d rounds", len(rounds)))
	handlingRoundsNum := 0
	for _, round := range rounds {
		rd := round.RoundData()
		zap.L().Debug(fmt.Sprintf("Handling a round. Round ID:%s created:%s", rd.ID, rd.Created))
		f.sysCom.Invoke(
			func(s core.Scheduler) error {
				s.HandleRound(round)
				return nil
			})
		handlingRoundsNum++
	}
	return handlingRoundsNum, nil
}

func (f *Feeder) updateState(newState state) {
	f.state = newState
}

func passFeedingCondition() error {
	s := core.GetSystemComponents()
	if s.IsQueueOverRefillThreshold() {
		msg := fmt.Sprintf("queue size is over refill-threshold. current queue size:%d",
			s.GetCurrentQueueSize())
		return fmt.Errorf(msg)
	}
	zap.L().Debug(fmt.Sprintf("queue is under refill-threshold. current queue size:%d",
		s.GetCurrentQueueSize()))
	ci := s.GetCodeInfo()
	if ci.Status == core.Available {
		zap.L().Debug("backend is available")
	} else {
		msg := fmt.Sprintf("backend is not available. current status:%s", ci.Status)
		return fmt.Errorf(msg)
	}
	return nil
}

// localSource fabricates rounds against the registered round types. It is the
// stand-in for an upstream queue service.
type localSource struct {
	count           int
	shots           int
	roundType       string
	useDefaultNoise bool
}

func (l *localSource) request() ([]core.Round, error) {
	rm := core.GetRoundManager()
	if rm == nil {
		return nil, fmt.Errorf("round manager is not initialized")
	}
	rc, err := core.NewRoundContext()
	if err != nil {
		return nil, err
	}
	rounds := make([]core.Round, 0, l.count)
	for i := 0; i < l.count; i++ {
		rd := core.NewRoundData()
		rd.ID = uuid.NewString()
		rd.Shots = l.shots
		rd.RoundType = l.roundType
		rd.Status = core.READY
		if l.useDefaultNoise {
			rd.Noise = core.DEFAULT_NOISE_CONFIG()
		}
		round, err := rm.NewRoundFromRoundDataWithValidation(rd, rc)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}
