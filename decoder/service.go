package decoder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
	"github.com/qec-dojo/surface17-engine/common"
	"github.com/qec-dojo/surface17-engine/core"
)

// Service wraps a LookupDecoder behind the container interface. The layout is
// fixed at Setup, either the built-in Surface-17 or a TOML file.
type Service struct {
	lookup *LookupDecoder
}

func (s *Service) Setup(conf *core.Conf) error {
	var layout *code.Layout
	if conf.LayoutPath == "" {
		layout = code.Surface17()
		zap.L().Info("using built-in Surface-17 layout")
	} else {
		l, err := code.LoadLayout(conf.LayoutPath)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to load layout from %s/reason:%s",
				conf.LayoutPath, err))
			return err
		}
		layout = l
	}
	lookup, err := New(layout)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build lookup decoder/reason:%s", err))
		return err
	}
	s.lookup = lookup
	zap.L().Info(fmt.Sprintf("decoder is ready/layout:%s/table size:%d/degeneracies:%d",
		layout.Name, lookup.TableSize(), len(lookup.Degeneracies())))
	zap.L().Debug(fmt.Sprintf("layout spec:%s", common.PlainJsonString(layout.SpecJson())))
	return nil
}

func (s *Service) Decode(sy code.Syndrome) (code.Decision, error) {
	return s.lookup.Decode(sy)
}

func (s *Service) Layout() *code.Layout {
	return s.lookup.Layout()
}

func (s *Service) TableSize() int {
	return s.lookup.TableSize()
}
