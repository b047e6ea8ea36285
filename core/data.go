package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
)

type Status int // Status of the round as known to the operator frontend.

// Counts is a syndrome histogram: bitstring (layout ordering) to the number
// of shots that produced it.
type Counts map[string]uint32

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "submitted":
		return SUBMITTED, nil
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

const (
	SUBMITTED Status = iota // In the queue of the operator frontend.
	READY                   // Has never been measured. All rounds start here in edge.
	RUNNING                 // Being measured or decoded.
	SUCCEEDED               // Finished successfully.
	FAILED                  // Finished with failure.
	CANCELLED               // Finished with cancellation.
)

func (s Status) String() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DecodeTally aggregates decode decisions over the shots of one round.
// Corrections is keyed by the canonical correction, e.g. "X4".
type DecodeTally struct {
	NoError     uint32 `json:"no_error"`
	Corrected   uint32 `json:"corrected"`
	Unresolved  uint32 `json:"unresolved"`
	Corrections Counts `json:"corrections"`
}

func NewDecodeTally() *DecodeTally {
	return &DecodeTally{
		Corrections: make(Counts),
	}
}

func (t *DecodeTally) Add(d code.Decision, n uint32) {
	switch d.Outcome {
	case code.NoError:
		t.NoError += n
	case code.Corrected:
		t.Corrected += n
		t.Corrections[code.PauliError{Qubit: d.Qubit, Pauli: d.Pauli}.String()] += n
	case code.Unresolved:
		t.Unresolved += n
	}
}

func (t *DecodeTally) Total() uint32 {
	return t.NoError + t.Corrected + t.Unresolved
}

// ShotRecord is the per-shot ground truth the dummy backend keeps: the
// injected error(s) and the syndrome they produced. Estimation rounds check
// the decoder against it.
type ShotRecord struct {
	Injected []code.PauliError `json:"injected"`
	Syndrome string            `json:"syndrome"`
}

type ShotRecords []ShotRecord

// Estimation reports the decoder miss rate over a round: the fraction of
// shots whose decision was Unresolved or differed from the injected error up
// to code degeneracy.
type Estimation struct {
	MissRate float32 `json:"miss_rate"`
	Stds     float32 `json:"stds"`
}

func cloneCounts(counts Counts) Counts {
	clone := make(Counts)
	for k, v := range counts {
		clone[k] = v
	}
	return clone
}

func cloneDecodeTally(t *DecodeTally) *DecodeTally {
	clone := NewDecodeTally()
	clone.NoError = t.NoError
	clone.Corrected = t.Corrected
	clone.Unresolved = t.Unresolved
	for k, v := range t.Corrections {
		clone.Corrections[k] = v
	}
	return clone
}

func cloneEstimation(estimation *Estimation) *Estimation {
	clone := &Estimation{}
	clone.MissRate = estimation.MissRate
	clone.Stds = estimation.Stds
	return clone
}

type Result struct {
	Counts        Counts        `json:"counts"`
	Tally         *DecodeTally  `json:"tally"`
	ShotRecords   ShotRecords   `json:"shot_records,omitempty"`
	Estimation    *Estimation   `json:"estimation"`
	Message       string        `json:"message"`
	ExecutionTime time.Duration `json:"execution_time"`
}

type RoundData struct {
	ID          string
	Status      Status
	Shots       int
	Noise       *NoiseConfig
	CircuitQASM string
	Result      *Result
	RoundType   string
	Created     strfmt.DateTime
	Ended       strfmt.DateTime
	Info        string
	ReadoutInfo string
}

func (rd *RoundData) Clone() *RoundData {
	c := deepcopy.Copy(rd).(*RoundData)
	c.Created = *rd.Created.DeepCopy()
	c.Ended = *rd.Ended.DeepCopy()
	return c
}

func (rd *RoundData) NeedInjection() bool {
	return rd.Noise != nil && rd.Noise.Model != nil
}

func NewResult() *Result {
	return &Result{
		Counts: make(Counts),
		Tally:  NewDecodeTally(),
	}
}

func NewRoundData() *RoundData {
	return &RoundData{
		Result:  NewResult(),
		Created: strfmt.DateTime(time.Now()),
	}
}

func CloneRoundData(i *RoundData) *RoundData {
	o := NewRoundData()
	o.ID = i.ID
	o.Status = i.Status
	o.Shots = i.Shots
	o.Noise = i.Noise
	o.CircuitQASM = i.CircuitQASM
	o.Result.Counts = cloneCounts(i.Result.Counts)
	o.Result.Tally = cloneDecodeTally(i.Result.Tally)
	o.Result.ShotRecords = append(ShotRecords(nil), i.Result.ShotRecords...)
	o.Result.Message = i.Result.Message
	o.RoundType = i.RoundType
	o.Created = i.Created
	o.Ended = i.Ended
	o.ReadoutInfo = i.ReadoutInfo
	if i.Result.Estimation != nil {
		o.Result.Estimation = cloneEstimation(i.Result.Estimation)
	}
	return o
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

// NoiseConfig selects the synthetic noise model a round is measured under.
// A nil Model means the backend injects nothing.
type NoiseConfig struct {
	Model      *string         `json:"noise_model"` //(=nil) null means noiseless
	Options    json.RawMessage `json:"noise_options"`
	UseDefault bool            `json:"-"`
}

func (c NoiseConfig) NeedInjection() bool {
	return c.Model != nil
}

func UnmarshalToNoiseConfig(noiseInfo string) NoiseConfig {
	var c NoiseConfig
	err := jsonIter.Unmarshal([]byte(noiseInfo), &c)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to unmarshal noise config from :%s/reason:%s",
			noiseInfo, err))
	}
	return c
}
