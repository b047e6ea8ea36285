package backend

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/common"
)

type BackendSetting struct {
	BackendName     string  `toml:"backend_name"`
	ProviderName    string  `toml:"provider_name"`
	MaxShots        int     `toml:"max_shots"`
	SyndromeRepeats int     `toml:"syndrome_repeats"`
	ReadoutFlipRate float64 `toml:"readout_flip_rate"`
	KeepShotRecords bool    `toml:"keep_shot_records"`
}

func LoadBackendSetting(path string) (*BackendSetting, error) {
	blob, assetErr := common.ReadFile(path)
	bs := NewBackendSetting()
	if assetErr != nil {
		zap.L().Info(fmt.Sprintf("Failed to read file:%s Reason:%s", path, assetErr))
		return bs, nil
	}
	if _, err := toml.Decode(blob, bs); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode blob:%s", blob))
		return &BackendSetting{}, err
	}
	if err := bs.validate(); err != nil {
		return &BackendSetting{}, err
	}
	return bs, nil
}

func NewBackendSetting() *BackendSetting {
	return &BackendSetting{
		BackendName:     DummyBackendName,
		ProviderName:    DummyProviderName,
		MaxShots:        10000,
		SyndromeRepeats: 1,
		ReadoutFlipRate: 0,
		KeepShotRecords: true,
	}
}

func (bs *BackendSetting) validate() error {
	if bs.MaxShots <= 0 {
		return fmt.Errorf("max_shots(%d) must be greater than 0", bs.MaxShots)
	}
	if bs.SyndromeRepeats <= 0 {
		return fmt.Errorf("syndrome_repeats(%d) must be greater than 0", bs.SyndromeRepeats)
	}
	if bs.ReadoutFlipRate < 0 || bs.ReadoutFlipRate > 1 {
		return fmt.Errorf("readout_flip_rate(%f) must be in [0, 1]", bs.ReadoutFlipRate)
	}
	return nil
}
