package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	LogLevel        string          `json:"log_level"`
	Audio           AudioConfig     `json:"audio"`
	Tools           ToolsConfig     `json:"tools"`
	Recording       RecordingConfig `json:"recording"`
	Datagen         DatagenConfig   `json:"datagen"`
	CopyToClipboard bool            `json:"copy_to_clipboard"`
}

type AudioConfig struct {
	DeviceID string `json:"device_id"`
}

// ToolsConfig locates the external preprocessing and recognition tools.
// Relative paths are resolved against InstallDir.
type ToolsConfig struct {
	InstallDir     string `json:"install_dir"`
	SoxPath        string `json:"sox_path"`
	WhisperPath    string `json:"whisper_path"`
	Model          string `json:"model"` // "base.en", "small", etc.
	ModelPath      string `json:"model_path"`
	AutoFetchModel bool   `json:"auto_fetch_model"`
	TimeoutSeconds int    `json:"timeout_seconds"` // 0 = no bound on tool runtime
}

type RecordingConfig struct {
	Dir string `json:"dir"`
}

type DatagenConfig struct {
	Model string `json:"model"`
	Count int    `json:"count"`
	Dir   string `json:"dir"`
}

// Environment overrides for tool locations, applied after the config file.
const (
	EnvSoxPath     = "WHISPER_SCRIBE_SOX"
	EnvWhisperPath = "WHISPER_SCRIBE_WHISPER_CLI"
	EnvModelPath   = "WHISPER_SCRIBE_MODEL"
)

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			DeviceID: "",
		},
		Tools: ToolsConfig{
			InstallDir:     filepath.Join(dataPath(), "tools"),
			SoxPath:        filepath.Join("sox", exeName("sox")),
			WhisperPath:    filepath.Join("whisper.cpp", exeName("whisper-cli")),
			Model:          "small",
			ModelPath:      filepath.Join("models", "ggml-small.bin"),
			AutoFetchModel: false,
			TimeoutSeconds: 0,
		},
		Recording: RecordingConfig{
			Dir: filepath.Join(dataPath(), "recordings"),
		},
		Datagen: DatagenConfig{
			Model: "gpt-3.5-turbo",
			Count: 50,
			Dir:   filepath.Join(dataPath(), "data"),
		},
		CopyToClipboard: true,
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.resolveToolPaths()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSoxPath); v != "" {
		c.Tools.SoxPath = v
	}
	if v := os.Getenv(EnvWhisperPath); v != "" {
		c.Tools.WhisperPath = v
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		c.Tools.ModelPath = v
	}
}

func (c *Config) resolveToolPaths() {
	c.Tools.SoxPath = resolveAgainst(c.Tools.InstallDir, c.Tools.SoxPath)
	c.Tools.WhisperPath = resolveAgainst(c.Tools.InstallDir, c.Tools.WhisperPath)
	c.Tools.ModelPath = resolveAgainst(c.Tools.InstallDir, c.Tools.ModelPath)
}

func resolveAgainst(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "whisper-scribe", "config.json")
}

// dataPath returns the platform-specific data directory path
func dataPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "whisper-scribe")
}
