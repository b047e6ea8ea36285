package core

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/qec-dojo/surface17-engine/code"
)

const MockMaxShots int = 10000
const mockQASM string = "OPENQASM 3; qubit[17] q; bit[8] c;"

type UnimplementedRound struct {
	roundData    *RoundData
	roundContext *RoundContext
}

func (r *UnimplementedRound) New(rd *RoundData, rc *RoundContext) Round {
	return &UnimplementedRound{
		roundData:    rd,
		roundContext: rc,
	}
}

func (r *UnimplementedRound) PreProcess() {
	return
}

func (r *UnimplementedRound) Process() {
	return
}

func (r *UnimplementedRound) PostProcess() {
	return
}

func (r *UnimplementedRound) IsFinished() bool {
	return r.RoundData().Status == SUCCEEDED || r.RoundData().Status == FAILED
}

func (r *UnimplementedRound) RoundData() *RoundData {
	return r.roundData
}

func (r *UnimplementedRound) RoundType() string {
	return r.roundData.RoundType
}

func (r *UnimplementedRound) RoundContext() *RoundContext {
	return r.roundContext
}

func (r *UnimplementedRound) Clone() Round {
	cloned := &UnimplementedRound{
		roundData:    r.roundData.Clone(),
		roundContext: r.roundContext,
	}
	return cloned
}

type UnimplementedBackend struct{}

func (u *UnimplementedBackend) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedBackend) Send(Round) error {
	return nil
}

func (u *UnimplementedBackend) GetCodeInfo() *CodeInfo {
	return &CodeInfo{
		BackendName:  "unimplementedBackend",
		ProviderName: "test",
		CodeName:     "surface-17",
		Status:       Available,
		Distance:     3,
		DataQubits:   9,
		Stabilizers:  8,
		MaxShots:     MockMaxShots,
	}
}

type successBackendForTest struct {
	UnimplementedBackend
}

func (successBackendForTest) Send(r Round) error {
	// TODO: fix this SRP violation
	rd := r.RoundData()
	rd.Result.Counts = Counts{"00000000": uint32(rd.Shots)}
	rd.Status = SUCCEEDED
	return nil
}

// trivialDecoderForTest resolves only the trivial syndrome. Enough for
// exercising the round lifecycle without pulling in the lookup table.
type trivialDecoderForTest struct {
	layout *code.Layout
}

func (d *trivialDecoderForTest) Setup(*Conf) error {
	d.layout = code.Surface17()
	return nil
}

func (d *trivialDecoderForTest) Decode(s code.Syndrome) (code.Decision, error) {
	if len(s) != len(d.layout.Stabilizers) {
		return code.Decision{}, fmt.Errorf("got %d bits, want %d",
			len(s), len(d.layout.Stabilizers))
	}
	if s.IsZero() {
		return code.Decision{Outcome: code.NoError}, nil
	}
	return code.Decision{Outcome: code.Unresolved}, nil
}

func (d *trivialDecoderForTest) Layout() *code.Layout {
	return d.layout
}

func (d *trivialDecoderForTest) TableSize() int {
	return 0
}

type successCircuitBuilderForTest struct{}

func (successCircuitBuilderForTest) Setup(*Conf) error { return nil }
func (successCircuitBuilderForTest) Build(*code.Layout) (string, error) {
	return mockQASM, nil
}
func (successCircuitBuilderForTest) TearDown() {}

type unimplementedDB struct {
	innerRoundIDSet map[string]struct{}
}

func (u *unimplementedDB) Setup(DBChan, *Conf) error {
	u.innerRoundIDSet = make(map[string]struct{})
	return nil
}
func (u *unimplementedDB) Insert(Round) error { return nil }
func (u *unimplementedDB) Get(roundID string) (Round, error) {
	return &NormalRound{}, nil
}
func (u *unimplementedDB) Update(Round) error    { return nil }
func (u *unimplementedDB) Delete(string) error   { return nil }
func (u *unimplementedDB) AddToInnerRoundIDSet(roundID string) {
	u.innerRoundIDSet[roundID] = struct{}{}
}
func (u *unimplementedDB) RemoveFromInnerRoundIDSet(roundID string) {
	delete(u.innerRoundIDSet, roundID)
}
func (u *unimplementedDB) ExistInInnerRoundIDSet(roundID string) bool {
	_, ok := u.innerRoundIDSet[roundID]
	return ok
}

type successDBForTest struct {
	unimplementedDB
}

func (successDBForTest) Get(roundID string) (Round, error) {
	return &NormalRound{
		roundData: &RoundData{
			ID:     roundID,
			Status: RUNNING,
		},
	}, nil
}

type notFindDBForTest struct {
	unimplementedDB
}

func (notFindDBForTest) Get(roundID string) (Round, error) {
	return &NormalRound{}, fmt.Errorf("failed to find %s", roundID)
}

type unimplementedScheduler struct{}

func (u *unimplementedScheduler) Setup(*Conf) error           { return nil }
func (u *unimplementedScheduler) Start() error                { return nil }
func (u *unimplementedScheduler) HandleRound(_ Round)         { return }
func (u *unimplementedScheduler) GetCurrentQueueSize() int    { return 0 }
func (u *unimplementedScheduler) IsOverRefillThreshold() bool { return false }

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() Backend { return &successBackendForTest{} })
	c.Provide(func() Decoder { return &trivialDecoderForTest{} })
	c.Provide(func() CircuitBuilder { return &successCircuitBuilderForTest{} })
	c.Provide(func() DBManager {
		db := &successDBForTest{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithDBContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() Backend { return &successBackendForTest{} })
	c.Provide(func() Decoder { return &trivialDecoderForTest{} })
	c.Provide(func() CircuitBuilder { return &successCircuitBuilderForTest{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithScheduler(sc Scheduler) *SystemComponents {
	c := dig.New()
	c.Provide(func() Backend { return &successBackendForTest{} })
	c.Provide(func() Decoder { return &trivialDecoderForTest{} })
	c.Provide(func() CircuitBuilder { return &successCircuitBuilderForTest{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Scheduler { return sc })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000})
	return s
}
