package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type MemoryDB struct {
	dbMap           map[string]Round
	dbChan          <-chan Round
	innerRoundIDSet map[string]struct{}
	mu              sync.RWMutex
}

func (d *MemoryDB) Setup(dbc DBChan, c *Conf) error {
	d.dbMap = make(map[string]Round)
	d.innerRoundIDSet = make(map[string]struct{})
	d.dbChan = dbc
	go func() {
		for {
			round := <-d.dbChan
			if round == nil { //when dbChan is closed
				return
			}
			zap.L().Debug(fmt.Sprintf("[MemoryDB] Received %s", round.RoundData().ID))
			if err := d.Update(round); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a round(%s). Reason:%s",
					round.RoundData().ID, err.Error()))
			}
		}
	}()
	return nil
}

func (d *MemoryDB) Insert(r Round) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[r.RoundData().ID] = r
	return nil
}

func (d *MemoryDB) Get(roundID string) (Round, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if val, ok := d.dbMap[roundID]; ok {
		return val, nil
	}
	err := fmt.Errorf("not found %s", roundID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return &NormalRound{}, err
}

func (d *MemoryDB) Update(r Round) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dbMap[r.RoundData().ID] = r
	return nil
}

func (d *MemoryDB) Delete(roundID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[roundID]; ok {
		delete(d.dbMap, roundID)
		zap.L().Info(fmt.Sprintf("[MemoryDB] deleted %s from DB", roundID))
		return nil
	}
	err := fmt.Errorf("failed to find %s", roundID)
	zap.L().Info("[MemoryDB]", zap.Field(zap.Error(err)))
	return err
}

func (d *MemoryDB) AddToInnerRoundIDSet(roundID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.innerRoundIDSet[roundID] = struct{}{}
}

func (d *MemoryDB) RemoveFromInnerRoundIDSet(roundID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.innerRoundIDSet, roundID)
}

func (d *MemoryDB) ExistInInnerRoundIDSet(roundID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.innerRoundIDSet[roundID]
	return ok
}
