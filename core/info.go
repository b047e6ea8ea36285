package core

type NonSecretConf struct {
	DevMode                   bool
	DisableStdoutLog          bool
	EnableFileLog             bool
	LogDir                    string
	LogLevel                  string
	LogRotationMaxDays        int
	LayoutPath                string
	BackendSettingPath        string
	QueueMaxSize              int
	QueueRefillThreshold      int
	RoundDBPath               string
	EnableDummyBackendLatency bool
	DummyBackendLatency       int
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:                   c.DevMode,
		DisableStdoutLog:          c.DisableStdoutLog,
		EnableFileLog:             c.EnableFileLog,
		LogDir:                    c.LogDir,
		LogLevel:                  c.LogLevel,
		LogRotationMaxDays:        c.LogRotationMaxDays,
		LayoutPath:                c.LayoutPath,
		BackendSettingPath:        c.BackendSettingPath,
		QueueMaxSize:              c.QueueMaxSize,
		QueueRefillThreshold:      c.QueueRefillThreshold,
		RoundDBPath:               c.RoundDBPath,
		EnableDummyBackendLatency: c.EnableDummyBackendLatency,
		DummyBackendLatency:       c.DummyBackendLatency,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
