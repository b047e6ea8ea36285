package db

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// roundRecord is the persisted shape of one round. The Round interface itself
// is not serialized; records are rehydrated through the round manager.
type roundRecord struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Shots       int               `json:"shots"`
	RoundType   string            `json:"round_type"`
	Noise       *core.NoiseConfig `json:"noise,omitempty"`
	CircuitQASM string            `json:"circuit_qasm,omitempty"`
	Result      *core.Result      `json:"result"`
	Created     strfmt.DateTime   `json:"created"`
	Ended       strfmt.DateTime   `json:"ended"`
	ReadoutInfo string            `json:"readout_info,omitempty"`
}

func toRoundRecord(rd *core.RoundData) *roundRecord {
	return &roundRecord{
		ID:          rd.ID,
		Status:      rd.Status.String(),
		Shots:       rd.Shots,
		RoundType:   rd.RoundType,
		Noise:       rd.Noise,
		CircuitQASM: rd.CircuitQASM,
		Result:      rd.Result,
		Created:     rd.Created,
		Ended:       rd.Ended,
		ReadoutInfo: rd.ReadoutInfo,
	}
}

func (r *roundRecord) toRoundData() (*core.RoundData, error) {
	st, err := core.ToStatus(r.Status)
	if err != nil {
		return nil, err
	}
	rd := core.NewRoundData()
	rd.ID = r.ID
	rd.Status = st
	rd.Shots = r.Shots
	rd.RoundType = r.RoundType
	rd.Noise = r.Noise
	rd.CircuitQASM = r.CircuitQASM
	if r.Result != nil {
		rd.Result = r.Result
	}
	rd.Created = r.Created
	rd.Ended = r.Ended
	rd.ReadoutInfo = r.ReadoutInfo
	return rd, nil
}

// FileDB keeps rounds in memory and appends every insert and update to a
// JSONL file, one record per line. On setup the file is replayed so finished
// rounds survive restarts; the last record per round ID wins.
type FileDB struct {
	path            string
	file            *os.File
	dbMap           map[string]core.Round
	dbChan          <-chan core.Round
	innerRoundIDSet map[string]struct{}
	mu              sync.Mutex
}

func (d *FileDB) Setup(dbc core.DBChan, c *core.Conf) error {
	zap.L().Debug("Setting up File DB")
	d.path = c.RoundDBPath
	d.dbMap = make(map[string]core.Round)
	d.innerRoundIDSet = make(map[string]struct{})
	d.dbChan = dbc

	if dir := filepath.Dir(d.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			zap.L().Error(fmt.Sprintf("failed to make the round DB dir %s/reason:%s", dir, err))
			return err
		}
	}
	if err := d.replay(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to replay the round DB %s/reason:%s", d.path, err))
		return err
	}
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to open the round DB %s/reason:%s", d.path, err))
		return err
	}
	d.file = f

	go func() {
		for {
			round := <-d.dbChan
			if round == nil { //when dbChan is closed
				d.close()
				return
			}
			zap.L().Debug(fmt.Sprintf("[FileDB] Received %s", round.RoundData().ID))
			if err := d.Update(round); err != nil {
				zap.L().Error(fmt.Sprintf("failed to update a round(%s). Reason:%s",
					round.RoundData().ID, err.Error()))
			}
		}
	}()
	return nil
}

// replay loads previous records from disk. Rounds are rehydrated through the
// round manager when it is registered; otherwise replay only restores the ID
// set so finished round IDs stay reserved.
func (d *FileDB) replay() error {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Debug(fmt.Sprintf("round DB %s does not exist yet", d.path))
			return nil
		}
		return err
	}
	defer f.Close()

	rm := core.GetRoundManager()
	loaded, restored := 0, 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec roundRecord
		if err := jsonIter.Unmarshal(line, &rec); err != nil {
			zap.L().Warn(fmt.Sprintf("skipping a broken record in %s/reason:%s", d.path, err))
			continue
		}
		loaded++
		d.innerRoundIDSet[rec.ID] = struct{}{}
		if rec.Status == core.CANCELLED.String() {
			delete(d.dbMap, rec.ID)
			continue
		}
		if rm == nil {
			continue
		}
		rd, err := rec.toRoundData()
		if err != nil {
			zap.L().Warn(fmt.Sprintf("skipping a record with status %s/reason:%s", rec.Status, err))
			continue
		}
		rc, err := core.NewRoundContext()
		if err != nil {
			return err
		}
		round, err := rm.NewRoundFromRoundData(rd, rc)
		if err != nil {
			zap.L().Warn(fmt.Sprintf("failed to rehydrate a round(%s)/reason:%s", rec.ID, err))
			continue
		}
		d.dbMap[rec.ID] = round
		restored++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	zap.L().Info(fmt.Sprintf("replayed the round DB %s/records:%d/restored rounds:%d",
		d.path, loaded, restored))
	return nil
}

func (d *FileDB) append(rd *core.RoundData) error {
	if d.file == nil {
		return fmt.Errorf("round DB file is not open")
	}
	b, err := jsonIter.Marshal(toRoundRecord(rd))
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := d.file.Write(b); err != nil {
		return err
	}
	return nil
}

func (d *FileDB) Insert(r core.Round) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rd := r.RoundData()
	d.dbMap[rd.ID] = r
	if err := d.append(rd); err != nil {
		zap.L().Error(fmt.Sprintf("failed to append a round(%s). Reason:%s", rd.ID, err.Error()))
		return err
	}
	return nil
}

func (d *FileDB) Get(roundID string) (core.Round, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if val, ok := d.dbMap[roundID]; ok {
		return val, nil
	}
	err := fmt.Errorf("not found %s", roundID)
	zap.L().Info("[FileDB]", zap.Field(zap.Error(err)))
	return &core.NormalRound{}, err
}

func (d *FileDB) Update(r core.Round) error {
	return d.Insert(r)
}

func (d *FileDB) Delete(roundID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.dbMap[roundID]; !ok {
		err := fmt.Errorf("failed to find %s", roundID)
		zap.L().Info("[FileDB]", zap.Field(zap.Error(err)))
		return err
	}
	delete(d.dbMap, roundID)
	// tombstone record so the deletion survives replay of the in-memory map
	rd := core.NewRoundData()
	rd.ID = roundID
	rd.Status = core.CANCELLED
	rd.Ended = strfmt.DateTime(time.Now())
	if err := d.append(rd); err != nil {
		zap.L().Error(fmt.Sprintf("failed to append a tombstone for %s. Reason:%s",
			roundID, err.Error()))
		return err
	}
	zap.L().Info(fmt.Sprintf("[FileDB] deleted %s from DB", roundID))
	return nil
}

func (d *FileDB) AddToInnerRoundIDSet(roundID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.innerRoundIDSet[roundID] = struct{}{}
}

func (d *FileDB) RemoveFromInnerRoundIDSet(roundID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.innerRoundIDSet, roundID)
}

func (d *FileDB) ExistInInnerRoundIDSet(roundID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.innerRoundIDSet[roundID]
	return ok
}

func (d *FileDB) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return
	}
	if err := d.file.Close(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to close the round DB %s/reason:%s", d.path, err))
	}
	d.file = nil
}
