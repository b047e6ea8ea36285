package log

import (
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/core"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Edge version:" + core.Version)
}
