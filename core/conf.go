package core

type Conf struct {
	Version                   string `long:"version" description:"version of edge decoder" env:"S17_EDGE_VERSION"`
	DevMode                   bool   `long:"dev-mode" description:"run in dev mode" env:"S17_EDGE_DEV_MODE"`
	DisableStdoutLog          bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"S17_EDGE_DISABLE_STDOUT_LOG"`
	EnableFileLog             bool   `long:"enable-file-log" description:"enable log in file" env:"S17_EDGE_ENABLE_FILE_LOG"`
	LogDir                    string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"S17_EDGE_LOG_DIR"`
	LogLevel                  string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"S17_EDGE_LOG_LEVEL"`
	LogRotationMaxDays        int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"S17_EDGE_LOG_ROTATION_MAX_DAYS"`
	LayoutPath                string `long:"layout-path" description:"stabilizer layout file path, empty means built-in Surface-17" env:"S17_EDGE_LAYOUT_PATH"`
	BackendSettingPath        string `long:"backend-setting-path" description:"backend setting file path" default:"./backend_setting.toml" env:"S17_EDGE_BACKEND_SETTING_PATH"`
	QueueMaxSize              int    `long:"queue-max-size" description:"queue max size" default:"100" env:"S17_EDGE_QUEUE_MAX_SIZE"`
	QueueRefillThreshold      int    `long:"queue-refill-threshold" description:"queue refill threshold" default:"10" env:"S17_EDGE_QUEUE_REFILL_THRESHOLD"`
	NoiseSeed                 int64  `long:"noise-seed" description:"seed for the synthetic noise source, 0 means time-based" env:"S17_EDGE_NOISE_SEED"`
	RoundDBPath               string `long:"round-db-path" description:"round record file for the file DB" default:"./shares/rounds.jsonl" env:"S17_EDGE_ROUND_DB_PATH"`
	SettingPath               string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"S17_EDGE_SETTING_PATH"`
	EnableDummyBackendLatency bool   `long:"enable-dummy-backend-latency" description:"insert artificial latency in the dummy backend" env:"S17_EDGE_ENABLE_DUMMY_BACKEND_LATENCY"`
	DummyBackendLatency       int    `long:"dummy-backend-latency" description:"artificial dummy backend latency in seconds" default:"10" env:"S17_EDGE_DUMMY_BACKEND_LATENCY"`
}
