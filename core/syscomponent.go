package core

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/jx"
	"go.uber.org/dig"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
)

var (
	systemComponents       *SystemComponents
	defaultNoiseConfigJson map[string]jx.Raw
)

func init() {
	dnc := DEFAULT_NOISE_CONFIG()
	dncj := make(map[string]jx.Raw)
	dncj["noise_model"] = jx.Raw(*dnc.Model)
	dncj["noise_options"] = jx.Raw(dnc.Options)
	defaultNoiseConfigJson = dncj
}

func DefaultNoiseConfigJson() map[string]jx.Raw {
	return defaultNoiseConfigJson
}

type DBChan chan Round

type Channels struct {
	DBChan
	// when more channel is needed, add here
}

func NewChannels() *Channels {
	return &Channels{
		DBChan: make(DBChan),
	}
}

func (c *Channels) Close() {
	close(c.DBChan)
}

func (c *Channels) Check() error {
	if c.DBChan == nil {
		return fmt.Errorf("DBChan is nil")
	}
	return nil
}

// CodeInfo describes the code instance and backend a round runs against.
type CodeInfo struct {
	BackendName    string        `json:"backend_name"`
	ProviderName   string        `json:"provider_name"`
	CodeName       string        `json:"code_name"`
	Status         BackendStatus `json:"status"`
	Distance       int           `json:"distance"`
	DataQubits     int           `json:"data_qubits"`
	Stabilizers    int           `json:"stabilizers"`
	MaxShots       int           `json:"max_shots"`
	LayoutSpecJson string        `json:"layout_spec"`
}

type BackendStatus int

const (
	Available BackendStatus = iota
	Unavailable
	Calibrating
)

func (bs BackendStatus) String() string {
	switch bs {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case Calibrating:
		return "Calibrating"
	default:
		return "Unknown"
	}
}

// Backend measures syndromes for a round. The dummy backend simulates
// stabilizer measurement classically; a hardware gateway would submit the
// round's circuit instead.
type Backend interface {
	Setup(*Conf) error
	Send(Round) error
	GetCodeInfo() *CodeInfo
}

func DEFAULT_NOISE_CONFIG() *NoiseConfig {
	type DefaultNoiseOptions struct {
		ErrorRate float64 `json:"error_rate"`
	}
	dno := DefaultNoiseOptions{
		ErrorRate: 0.05,
	}
	dnoByte, err := json.Marshal(dno)
	if err != nil {
		panic(err)
	}
	str := "depolarizing"

	return &NoiseConfig{
		Model:      &str,
		Options:    dnoByte,
		UseDefault: true,
	}
}

// Decoder turns measured syndromes into correction decisions. The lookup
// decoder is the only implementation; the interface keeps the container
// wiring uniform with the other components.
type Decoder interface {
	Setup(*Conf) error
	Decode(code.Syndrome) (code.Decision, error)
	Layout() *code.Layout
	TableSize() int
}

// CircuitBuilder emits the syndrome-extraction circuit for a layout.
type CircuitBuilder interface {
	Setup(*Conf) error
	Build(*code.Layout) (string, error)
	TearDown()
}

type Scheduler interface {
	Setup(*Conf) error
	Start() error
	HandleRound(Round)
	// Queue Data Access
	GetCurrentQueueSize() int
	IsOverRefillThreshold() bool
}

type DBManager interface {
	Setup(DBChan, *Conf) error
	Insert(Round) error
	Get(string) (Round, error)
	Update(Round) error
	Delete(string) error

	AddToInnerRoundIDSet(string)
	RemoveFromInnerRoundIDSet(string)
	ExistInInnerRoundIDSet(string) bool
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	dbChan := s.DBChan

	zap.L().Debug("Setting up decoder")
	var err error
	err = s.Invoke(
		func(d Decoder) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up circuit builder")
	err = s.Invoke(
		func(cb CircuitBuilder) error {
			return cb.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up scheduler")
	err = s.Invoke(
		func(s Scheduler) error {
			return s.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up DB")
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(dbChan, conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up backend")
	err = s.Invoke(func(b Backend) error {
		return b.Setup(conf)
	})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	err := multierr.Combine(
		s.Invoke(
			func(cb CircuitBuilder) {
				cb.TearDown()
			}),
	)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to tear down system components/reason:%s", err))
	}
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(s Scheduler) error {
			return s.Start()
		})
}

func (s *SystemComponents) GetCodeInfo() *CodeInfo {
	var codeInfo *CodeInfo
	s.Invoke(
		func(b Backend) error {
			codeInfo = b.GetCodeInfo()
			return nil
		})
	return codeInfo
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) IsQueueOverRefillThreshold() bool {
	var over bool
	s.Invoke(
		func(sc Scheduler) {
			over = sc.IsOverRefillThreshold()
		})
	return over
}
