package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlayer()
	c.normalizeYtdlp()
	c.normalizeDownloads()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ConfigRoot) == "" {
		c.Paths.ConfigRoot = defaultConfigRoot
	}
	if c.Paths.ConfigRoot, err = expandPath(c.Paths.ConfigRoot); err != nil {
		return fmt.Errorf("paths.config_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.ConfigRoot, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadPath) == "" {
		c.Paths.DownloadPath = defaultDownloadPath
	}
	if c.Paths.DownloadPath, err = expandPath(c.Paths.DownloadPath); err != nil {
		return fmt.Errorf("paths.download_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlayer() {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaultMpvBinary
	}
	c.Player.IPCSocket = strings.TrimSpace(c.Player.IPCSocket)
	if c.Player.IPCSocket == "" {
		c.Player.IPCSocket = defaultIPCSocket
	}
}

func (c *Config) normalizeYtdlp() {
	c.Ytdlp.Binary = strings.TrimSpace(c.Ytdlp.Binary)
	if c.Ytdlp.Binary == "" {
		c.Ytdlp.Binary = defaultYtdlpBinary
	}
}

func (c *Config) normalizeDownloads() {
	if c.Downloads.PollIntervalMS == 0 {
		c.Downloads.PollIntervalMS = defaultPollIntervalMS
	}
	if c.Downloads.QueueCapacity == 0 {
		c.Downloads.QueueCapacity = defaultQueueCapacity
	}
	if c.Downloads.SearchLimit == 0 {
		c.Downloads.SearchLimit = defaultSearchLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
