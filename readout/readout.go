package readout

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

type PropertyRaw json.RawMessage

const MajorityVoteMethod = "majority_vote"

// ReadoutInfo is parsed from the round's ReadoutInfo JSON. A round asks for
// repeated-syndrome majority voting with {"readout": "majority_vote"}.
type ReadoutInfo struct {
	NeedMajorityVote bool
	Voted            bool

	PropertyRaw PropertyRaw
}

func NewReadoutInfoFromRoundData(rd *core.RoundData) *ReadoutInfo {
	r := ReadoutInfo{
		Voted: false,
	}
	r.NeedMajorityVote = false
	inputBytes := []byte(rd.ReadoutInfo)

	if len(inputBytes) > 0 && json.Valid(inputBytes) {
		r.PropertyRaw = PropertyRaw(inputBytes)
		var props map[string]string
		if err := json.Unmarshal(r.PropertyRaw, &props); err != nil {
			zap.L().Warn(fmt.Sprintf("failed to unmarshal PropertyRaw into map for RoundID:%s, assuming no vote: %s", rd.ID, err))
		} else {
			readoutValue, ok := props["readout"]
			if ok && readoutValue == MajorityVoteMethod {
				zap.L().Debug(fmt.Sprintf("RoundID:%s needs majority vote based on PropertyRaw.readout", rd.ID))
				r.NeedMajorityVote = true
			} else {
				zap.L().Debug(fmt.Sprintf("RoundID:%s does not need majority vote (value: %s, found: %t)", rd.ID, readoutValue, ok))
			}
		}
	} else if len(inputBytes) == 0 {
		zap.L().Debug(fmt.Sprintf("RoundID:%s ReadoutInfo string is empty, assuming no vote", rd.ID))
	} else {
		zap.L().Warn(fmt.Sprintf("RoundID:%s ReadoutInfo string is not valid JSON, assuming no vote: %s", rd.ID, rd.ReadoutInfo))
	}
	zap.L().Debug(fmt.Sprintf("set ReadoutInfo PropertyRaw: %s, NeedMajorityVote: %t", string(r.PropertyRaw), r.NeedMajorityVote))
	return &r
}

// MajorityVote collapses repeated-syndrome count keys to single-syndrome keys
// by per-bit strict majority. A key holds R consecutive measurements of the
// same syndrome; bit i of the voted key is 1 when more than half of the R
// reads saw 1. Ties go to 0. Keys already of stabilizer length pass through.
func MajorityVote(rd *core.RoundData, stabilizers int) error {
	keyLen, err := countsKeyLength(rd.Result.Counts)
	if err != nil {
		return err
	}
	if keyLen == stabilizers {
		zap.L().Debug(fmt.Sprintf("RoundID:%s counts are single syndromes, nothing to vote", rd.ID))
		return nil
	}
	if keyLen%stabilizers != 0 {
		return fmt.Errorf("counts key length %d is not a multiple of stabilizer count %d",
			keyLen, stabilizers)
	}
	repeats := keyLen / stabilizers
	voted := make(core.Counts)
	for bits, n := range rd.Result.Counts {
		voted[voteKey(bits, stabilizers, repeats)] += n
	}
	zap.L().Debug(fmt.Sprintf("RoundID:%s majority vote collapsed %d keys to %d (repeats:%d)",
		rd.ID, len(rd.Result.Counts), len(voted), repeats))
	rd.Result.Counts = voted
	return nil
}

func voteKey(bits string, stabilizers, repeats int) string {
	out := make([]byte, stabilizers)
	for i := 0; i < stabilizers; i++ {
		ones := 0
		for rep := 0; rep < repeats; rep++ {
			if bits[rep*stabilizers+i] == '1' {
				ones++
			}
		}
		if ones*2 > repeats {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

func countsKeyLength(counts core.Counts) (int, error) {
	if len(counts) == 0 {
		return 0, fmt.Errorf("counts is empty")
	}
	candidateLen := 0
	for k := range counts {
		if candidateLen == 0 {
			candidateLen = len(k)
		} else {
			if candidateLen != len(k) {
				return 0, fmt.Errorf("different length of keys in counts")
			}
		}
	}
	return candidateLen, nil
}
