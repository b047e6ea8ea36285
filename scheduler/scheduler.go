package scheduler

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

type statusHistory map[string][]core.Status

type NormalScheduler struct {
	queue         *NormalQueue
	statusHistory statusHistory
	// TODO: lock
}

type roundInScheduler struct {
	round    core.Round
	finished *sync.WaitGroup
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	n.queue = &NormalQueue{}
	n.queue.Setup(conf)
	n.statusHistory = make(statusHistory)
	return nil
}

// TODO: use rungroup
func (n *NormalScheduler) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the queue...")
			ris, err := n.queue.Dequeue(true)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to get round from queue. Reason:%s", err))
				continue
			}
			rid := ris.round.RoundData().ID
			zap.L().Debug(fmt.Sprintf("processing round:%s", rid))
			// TODO: not update status in scheduler
			st := core.RUNNING
			n.statusHistory[rid] = append(n.statusHistory[rid], st)
			ris.round.RoundData().Status = st
			ris.round.RoundContext().DBChan <- ris.round.Clone()
			ris.round.Process()
			zap.L().Debug(fmt.Sprintf("finished to process round(%s), status:%s", rid, ris.round.RoundData().Status))
			ris.finished.Done()
		}
	}()
	return nil
}

func (n *NormalScheduler) HandleRound(r core.Round) {
	zap.L().Debug(fmt.Sprintf("starting to handle round(%s) in %s", r.RoundData().ID, r.RoundData().Status))
	go func() {
		defer func() {
			zap.L().Debug(fmt.Sprintf("status history round(%s): %v", r.RoundData().ID, n.statusHistory[r.RoundData().ID]))
			delete(n.statusHistory, r.RoundData().ID)
		}()
		n.handleImpl(r)
	}()
}

func (n *NormalScheduler) HandleRoundForTest(r core.Round, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		n.handleImpl(r)
	}()
}

func (n *NormalScheduler) handleImpl(r core.Round) {
	for {
		rid := r.RoundData().ID
		st := r.RoundData().Status // must be ready
		n.statusHistory[rid] = append(n.statusHistory[rid], st)
		zap.L().Debug(fmt.Sprintf("handling round(%s) in %s starting", rid, st))
		if r.RoundData().Status != core.READY {
			zap.L().Error(
				fmt.Sprintf("finished to handle round(%s) with unexpected status:%s", rid, r.RoundData().Status.String()))
			// not write to DB
			return
		}
		zap.L().Debug(fmt.Sprintf("handling round(%s). start pre-processing", rid))
		r.PreProcess()
		r.RoundContext().DBChan <- r.Clone()
		if r.IsFinished() {
			zap.L().Debug(fmt.Sprintf("finished to handle round(%s) after pre-processing", rid))
			n.statusHistory[rid] = append(n.statusHistory[rid], r.RoundData().Status)
			return
		}
		var wg sync.WaitGroup
		wg.Add(1)
		ris := &roundInScheduler{
			round:    r,
			finished: &wg,
		}
		n.queue.queueChan <- ris
		wg.Wait() // wait for processing
		zap.L().Debug(fmt.Sprintf("Processed Round Status: %s", r.RoundData().Status))
		if r.IsFinished() {
			zap.L().Debug(fmt.Sprintf("finished to handle round(%s) after processing with status:%s",
				rid, r.RoundData().Status.String()))
			n.statusHistory[rid] = append(n.statusHistory[rid], r.RoundData().Status)
			r.RoundContext().DBChan <- r.Clone()
			return
		}
		zap.L().Debug(fmt.Sprintf("handling round(%s). start post-processing", rid))
		r.PostProcess()
		if r.IsFinished() {
			zap.L().Debug(fmt.Sprintf("finished to handle round(%s) after post-processing with status:%s",
				rid, r.RoundData().Status.String()))
			n.statusHistory[rid] = append(n.statusHistory[rid], r.RoundData().Status)
			r.RoundContext().DBChan <- r.Clone()
			return
		}
		zap.L().Debug(fmt.Sprintf("one more loop for round(%s)", rid))
	}
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.fifo.GetLen()
}

func (n *NormalScheduler) IsOverRefillThreshold() bool {
	return n.queue.refillThreshold <= n.queue.fifo.GetLen()
}
