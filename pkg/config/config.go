// Package config 读写 screenmatch 配置文件（JSON 或 YAML）
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// BackendNative 纯 Go 匹配引擎
	BackendNative = "native"
	// BackendOpenCV OpenCV 匹配引擎
	BackendOpenCV = "opencv"

	// DeviceADB 通过 adb 操作 Android 设备
	DeviceADB = "adb"
	// DeviceDesktop 操作本地显示器
	DeviceDesktop = "desktop"
)

// DeviceConfig 设备配置
type DeviceConfig struct {
	Kind    string `json:"kind" yaml:"kind"`
	AdbPath string `json:"adb_path" yaml:"adb_path"`
	Serial  string `json:"serial" yaml:"serial"`
	// Display 显示器序号，-1 表示主显示器
	Display int `json:"display" yaml:"display"`
	// ScaleFactor 截图坐标 / 输入坐标
	ScaleFactor float64 `json:"scale_factor" yaml:"scale_factor"`
}

// MatchConfig 匹配配置
type MatchConfig struct {
	SizeThreshold int     `json:"size_threshold" yaml:"size_threshold"`
	Workers       int     `json:"workers" yaml:"workers"`
	Threshold     float64 `json:"threshold" yaml:"threshold"`
}

// WaitConfig 轮询配置
type WaitConfig struct {
	IntervalMs int64 `json:"interval_ms" yaml:"interval_ms"`
	// TimeoutMs 0 表示不限时
	TimeoutMs int64 `json:"timeout_ms" yaml:"timeout_ms"`
}

// Config screenmatch 配置
type Config struct {
	Backend  string       `json:"backend" yaml:"backend"`
	Device   DeviceConfig `json:"device" yaml:"device"`
	Match    MatchConfig  `json:"match" yaml:"match"`
	Wait     WaitConfig   `json:"wait" yaml:"wait"`
	Listen   string       `json:"listen" yaml:"listen"`
	LogLevel string       `json:"log_level" yaml:"log_level"`
	LogFile  string       `json:"log_file" yaml:"log_file"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendNative,
		Device: DeviceConfig{
			Kind:        DeviceADB,
			AdbPath:     "adb",
			Display:     -1,
			ScaleFactor: 1,
		},
		Match: MatchConfig{
			SizeThreshold: 500,
			Workers:       0,
			Threshold:     0.8,
		},
		Wait: WaitConfig{
			IntervalMs: 200,
			TimeoutMs:  10000,
		},
		Listen:   "localhost:50051",
		LogLevel: "INFO",
	}
}

// Validate 将数值修正到安全范围，枚举值无效时返回错误
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendNative
	}
	if c.Backend != BackendNative && c.Backend != BackendOpenCV {
		return fmt.Errorf("未知的匹配引擎: %q (可选 native, opencv)", c.Backend)
	}

	c.Device.Kind = strings.ToLower(strings.TrimSpace(c.Device.Kind))
	if c.Device.Kind == "" {
		c.Device.Kind = DeviceADB
	}
	if c.Device.Kind != DeviceADB && c.Device.Kind != DeviceDesktop {
		return fmt.Errorf("未知的设备类型: %q (可选 adb, desktop)", c.Device.Kind)
	}
	if c.Device.AdbPath == "" {
		c.Device.AdbPath = "adb"
	}
	if c.Device.ScaleFactor <= 0 {
		c.Device.ScaleFactor = 1
	}
	if c.Device.Display < -1 {
		c.Device.Display = -1
	}

	if c.Match.SizeThreshold <= 0 {
		c.Match.SizeThreshold = 500
	}
	if c.Match.Workers < 0 {
		c.Match.Workers = 0
	}
	if c.Match.Threshold < -1 || c.Match.Threshold > 1 {
		c.Match.Threshold = 0.8
	}

	if c.Wait.IntervalMs <= 0 {
		c.Wait.IntervalMs = 200
	}
	if c.Wait.TimeoutMs < 0 {
		c.Wait.TimeoutMs = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	return nil
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 使用 ~/.screenmatch/config.json
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".screenmatch"))
}

// NewManagerWithDir 使用指定目录下的 config.json
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithFile 使用指定文件，扩展名为 .yaml/.yml 时按 YAML 读写
func NewManagerWithFile(path string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(path),
		configFile: path,
	}
}

func (m *Manager) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(m.configFile))
	return ext == ".yaml" || ext == ".yml"
}

// Load 加载配置，文件不存在时返回默认配置
// 文件中缺失的字段保留默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg := DefaultConfig()
	data, err := os.ReadFile(m.configFile)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	if m.isYAML() {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("配置无效: %w", err)
	}
	return cfg, nil
}

// Save 保存配置
func (m *Manager) Save(cfg *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if m.isYAML() {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Clear 删除配置文件
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}
