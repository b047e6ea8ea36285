package scheduler

import (
	"fmt"

	conq "github.com/enriquebris/goconcurrentqueue"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

type queueChan chan *roundInScheduler

type fifo interface {
	Enqueue(*roundInScheduler) error
	Dequeue() (*roundInScheduler, error)
	DequeueOrWaitForNextElement() (*roundInScheduler, error)
	Get(index int) (*roundInScheduler, error)
	GetLen() int
	Remove(index int) error
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(ris *roundInScheduler) error {
	return c.FIFO.Enqueue(ris)
}

func (c *conqFIFO) Dequeue() (*roundInScheduler, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*roundInScheduler), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*roundInScheduler, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*roundInScheduler), nil
}

func (c *conqFIFO) Get(index int) (*roundInScheduler, error) {
	tmp, err := c.FIFO.Get(index)
	if err != nil {
		return nil, err
	}
	return tmp.(*roundInScheduler), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

func (c *conqFIFO) Remove(index int) error {
	return c.FIFO.Remove(index)
}

type NormalQueue struct {
	fifo            fifo
	maxSize         int
	refillThreshold int
	queueChan       queueChan
	cancelChan      chan struct{}
}

func (n *NormalQueue) Setup(conf *core.Conf) error {
	n.refillThreshold = conf.QueueRefillThreshold
	n.maxSize = conf.QueueMaxSize
	n.fifo = newConqFIFO()
	n.queueChan = make(queueChan)
	n.cancelChan = make(chan struct{})
	go func() {
		defer close(n.cancelChan)
		for {
			var ris *roundInScheduler
			select {
			case <-n.cancelChan:
				return
			case ris = <-n.queueChan:
			}
			rd := ris.round.RoundData()
			if n.maxSize <= n.fifo.GetLen() {
				zap.L().Info(fmt.Sprintf("Failed to put %s. Normal Queue is full.", rd.ID))
				continue
			}
			zap.L().Debug(fmt.Sprintf("Putting %s to normalQueue", rd.ID))
			err := n.fifo.Enqueue(ris)
			if err != nil {
				zap.L().Error(
					fmt.Sprintf("Failed to put %s to normalQueue. Reason:%s", rd.ID, err))
			}
		}
	}()
	return nil
}

func (n *NormalQueue) TearDown() {
	n.cancelChan <- struct{}{}
}

// wait until the next element gets enqueued
func (n *NormalQueue) Dequeue(wait bool) (ris *roundInScheduler, err error) {
	ris = nil
	err = nil
	if wait {
		ris, err = n.fifo.DequeueOrWaitForNextElement()
	} else {
		ris, err = n.fifo.Dequeue()
	}
	if err != nil {
		zap.L().Debug("no round in NormalQueue.", zap.Error(err))
		return
	}
	zap.L().Debug(fmt.Sprintf("Dequeued round:%s", ris.round.RoundData().ID))
	return
}

func (n *NormalQueue) Delete(roundID string) error {
	zap.L().Debug(fmt.Sprintf("deleting %s from normalQueue", roundID))
	var idx int
	var err error

	idx, err = n.getIdx(roundID)
	if err != nil {
		zap.L().Info(fmt.Sprintf("Failed to Delete %s. Reason:%s", roundID, err))
		return err
	}
	err = n.fifo.Remove(idx)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to remove idx:%d. Reason:%s", idx, err))
		return err
	}
	return nil
}

func (n *NormalQueue) IsOverRefillThreshold() bool {
	return n.refillThreshold <= n.fifo.GetLen()
}

func (n *NormalQueue) GetCurrentSize() int {
	return n.fifo.GetLen()
}

func (n *NormalQueue) getIdx(roundID string) (int, error) {
	for i := 0; i < n.fifo.GetLen(); i++ {
		ris, err := n.fifo.Get(i)
		if err == nil {
			if ris.round.RoundData().ID == roundID {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("No entry")
}
