package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendNative {
		t.Errorf("默认 Backend 应为 native, 实际为 %s", cfg.Backend)
	}
	if cfg.Match.SizeThreshold != 500 {
		t.Errorf("默认 SizeThreshold 应为 500, 实际为 %d", cfg.Match.SizeThreshold)
	}
	if cfg.Wait.IntervalMs != 200 {
		t.Errorf("默认 IntervalMs 应为 200, 实际为 %d", cfg.Wait.IntervalMs)
	}
	if cfg.Device.Display != -1 || cfg.Device.ScaleFactor != 1 {
		t.Errorf("默认设备配置错误: %+v", cfg.Device)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}

	t.Logf("默认配置: %+v", cfg)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Backend: " OpenCV ",
		Device:  DeviceConfig{Kind: "Desktop", ScaleFactor: -2, Display: -7},
		Match:   MatchConfig{SizeThreshold: -1, Workers: -3, Threshold: 1.5},
		Wait:    WaitConfig{IntervalMs: 0, TimeoutMs: -5},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate 失败: %v", err)
	}

	if cfg.Backend != BackendOpenCV || cfg.Device.Kind != DeviceDesktop {
		t.Errorf("枚举值未规范化: %s %s", cfg.Backend, cfg.Device.Kind)
	}
	if cfg.Device.ScaleFactor != 1 || cfg.Device.Display != -1 || cfg.Device.AdbPath != "adb" {
		t.Errorf("设备配置未修正: %+v", cfg.Device)
	}
	if cfg.Match.SizeThreshold != 500 || cfg.Match.Workers != 0 || cfg.Match.Threshold != 0.8 {
		t.Errorf("匹配配置未修正: %+v", cfg.Match)
	}
	if cfg.Wait.IntervalMs != 200 || cfg.Wait.TimeoutMs != 0 {
		t.Errorf("等待配置未修正: %+v", cfg.Wait)
	}

	if err := (&Config{Backend: "cuda"}).Validate(); err == nil {
		t.Error("未知 Backend 应返回错误")
	}
	if err := (&Config{Device: DeviceConfig{Kind: "serial"}}).Validate(); err == nil {
		t.Error("未知设备类型应返回错误")
	}

	// 阈值 -1 合法
	cfg = DefaultConfig()
	cfg.Match.Threshold = -1
	cfg.Validate()
	if cfg.Match.Threshold != -1 {
		t.Errorf("阈值 -1 不应被修正, 实际 %f", cfg.Match.Threshold)
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			manager := NewManagerWithFile(filepath.Join(t.TempDir(), "nested", name))

			if manager.Exists() {
				t.Error("初始时配置文件不应存在")
			}

			cfg := DefaultConfig()
			cfg.Backend = BackendOpenCV
			cfg.Device.Kind = DeviceDesktop
			cfg.Device.Serial = "emulator-5554"
			cfg.Device.ScaleFactor = 1.25
			cfg.Match.Threshold = 0.92
			cfg.Wait.TimeoutMs = 3000

			if err := manager.Save(cfg); err != nil {
				t.Fatalf("保存配置失败: %v", err)
			}
			if !manager.Exists() {
				t.Error("保存后配置文件应存在")
			}

			loaded, err := manager.Load()
			if err != nil {
				t.Fatalf("加载配置失败: %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("配置不匹配:\n期望 %+v\n实际 %+v", cfg, loaded)
			}
		})
	}
}

func TestManagerLoadPartialYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screenmatch.yaml")
	data := strings.Join([]string{
		"backend: opencv",
		"device:",
		"  kind: adb",
		"  serial: R58M",
		"match:",
		"  threshold: 0.95",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	cfg, err := NewManagerWithFile(path).Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Backend != BackendOpenCV || cfg.Device.Serial != "R58M" || cfg.Match.Threshold != 0.95 {
		t.Errorf("YAML 字段未读取: %+v", cfg)
	}
	// 缺失字段保留默认值
	if cfg.Match.SizeThreshold != 500 || cfg.Wait.IntervalMs != 200 || cfg.Device.AdbPath != "adb" {
		t.Errorf("缺失字段应为默认值: %+v", cfg)
	}
}

func TestManagerClear(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if err := manager.Save(DefaultConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}

	// 清除不存在的文件不应报错
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	cfg, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("应返回默认配置: %+v", cfg)
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	configFile := filepath.Join(tempDir, "config.json")
	if err := os.WriteFile(configFile, []byte("not valid json"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	cfg, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置文件应返回错误")
	}
	if cfg == nil || cfg.Backend != BackendNative {
		t.Errorf("出错时应返回默认配置: %+v", cfg)
	}
	t.Logf("损坏文件错误: %v", err)
}

func TestManagerPaths(t *testing.T) {
	manager := NewManagerWithDir("/tmp/sm")
	if manager.GetConfigDir() != "/tmp/sm" {
		t.Errorf("GetConfigDir() = %s", manager.GetConfigDir())
	}
	if manager.GetConfigFile() != filepath.Join("/tmp/sm", "config.json") {
		t.Errorf("GetConfigFile() = %s", manager.GetConfigFile())
	}
	if !strings.HasSuffix(NewManager().GetConfigFile(), filepath.Join(".screenmatch", "config.json")) {
		t.Errorf("NewManager() 路径 = %s", NewManager().GetConfigFile())
	}
}
