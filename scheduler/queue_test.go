//go:build unit
// +build unit

package scheduler

import (
	"github.com/stretchr/testify/assert"

	"github.com/qec-dojo/surface17-engine/core"

	"testing"
)

type TestFIFO struct {
	conqFIFO
	queuedChan chan struct{}
}

func newTestFIFO(queuedChan chan struct{}) *TestFIFO {
	return &TestFIFO{
		conqFIFO:   *newConqFIFO(),
		queuedChan: queuedChan,
	}
}

func (t *TestFIFO) Enqueue(ris *roundInScheduler) error {
	err := t.FIFO.Enqueue(ris)
	t.queuedChan <- struct{}{}
	return err
}

func setUpTestNormalQueue(queuedChan chan struct{}) *NormalQueue {
	n := &NormalQueue{}
	conf := &core.Conf{QueueMaxSize: 1000}
	n.Setup(conf)
	n.fifo = newTestFIFO(queuedChan)
	return n
}

func tearDownTestNormalQueue(n *NormalQueue) {
	close(n.fifo.(*TestFIFO).queuedChan)
	n.TearDown()
}

func TestPutNormalQueue(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan)
	defer tearDownTestNormalQueue(n)

	n.queueChan <- newRoundInScheduler(t, "test1")
	<-queuedChan
	assert.Equal(t, 1, n.fifo.GetLen())
	ris, err := n.Dequeue(false)
	assert.Nil(t, err)
	assert.Equal(t, ris.round.RoundData().ID, "test1")
}

func TestNormalQueueDelete(t *testing.T) {
	s := core.SCWithUnimplementedContainer()
	defer s.TearDown()
	queuedChan := make(chan struct{})
	n := setUpTestNormalQueue(queuedChan)
	defer tearDownTestNormalQueue(n)

	n.queueChan <- newRoundInScheduler(t, "test1")
	<-queuedChan
	assert.Equal(t, n.fifo.GetLen(), 1)
	n.queueChan <- newRoundInScheduler(t, "test2")
	<-queuedChan
	assert.Equal(t, n.fifo.GetLen(), 2)
	n.queueChan <- newRoundInScheduler(t, "test3")
	<-queuedChan
	assert.Equal(t, n.fifo.GetLen(), 3)
	n.queueChan <- newRoundInScheduler(t, "test4")
	<-queuedChan
	assert.Equal(t, n.fifo.GetLen(), 4)

	n.Delete("test3")

	assert.Equal(t, n.fifo.GetLen(), 3)

	var ris *roundInScheduler
	var err error

	ris, err = n.Dequeue(false)
	assert.Nil(t, err)
	assert.Equal(t, ris.round.RoundData().ID, "test1")

	ris, err = n.Dequeue(false)
	assert.Nil(t, err)
	assert.Equal(t, ris.round.RoundData().ID, "test2")

	ris, err = n.Dequeue(false)
	assert.Nil(t, err)
	assert.Equal(t, ris.round.RoundData().ID, "test4")

	ris, err = n.Dequeue(false)
	assert.EqualError(t, err, "empty queue")
	assert.Nil(t, ris)
}

func newRoundInScheduler(t *testing.T, id string) *roundInScheduler {
	rm, err := core.NewRoundManager(&core.NormalRound{})
	assert.Nil(t, err)
	rc, err := core.NewRoundContext()
	assert.Nil(t, err)
	rd := core.NewRoundData()
	rd.ID = id
	round, err := rm.NewRoundFromRoundData(rd, rc)
	assert.Nil(t, err)
	return &roundInScheduler{
		round: round,
	}
}
