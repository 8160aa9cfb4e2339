package config

const (
	defaultConfigRoot     = "~/.shellbeats"
	defaultLogDir         = "~/.shellbeats/logs"
	defaultDownloadPath   = "~/Music/shellbeats"
	defaultMpvBinary      = "mpv"
	defaultIPCSocket      = "/tmp/shellbeats_mpv.sock"
	defaultYtdlpBinary    = "yt-dlp"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultPollIntervalMS = 500
	defaultQueueCapacity  = 1000
	defaultSearchLimit    = 50
	defaultRetentionDays  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ConfigRoot:   defaultConfigRoot,
			LogDir:       defaultLogDir,
			DownloadPath: defaultDownloadPath,
		},
		Player: Player{
			Binary:    defaultMpvBinary,
			IPCSocket: defaultIPCSocket,
		},
		Ytdlp: Ytdlp{
			Binary:     defaultYtdlpBinary,
			AutoUpdate: true,
		},
		Downloads: Downloads{
			PollIntervalMS: defaultPollIntervalMS,
			QueueCapacity:  defaultQueueCapacity,
			SearchLimit:    defaultSearchLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}
