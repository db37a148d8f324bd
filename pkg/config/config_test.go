package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/Seann-Moser/pantilt/pkg/pantilt"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pantilt.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_MatchesPreset(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.InitConfig(); got != pantilt.DefaultInitConfig {
		t.Errorf("InitConfig = %+v, want %+v", got, pantilt.DefaultInitConfig)
	}
	if cfg.Home.Pan != 90 || cfg.Home.Tilt != 0 {
		t.Errorf("home = %+v, want pan 90 tilt 0", cfg.Home)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
backend: pca9685
timer: 2
horizontal:
  channel: 4
  gpio: 18
vertical:
  channel: 5
  gpio: 19
pca9685:
  bus: I2C1
  oe_line: 22
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendPCA9685 || cfg.Timer != 2 {
		t.Errorf("backend/timer = %s/%d", cfg.Backend, cfg.Timer)
	}
	if cfg.FrequencyHz != 50 {
		t.Errorf("frequency default = %d, want 50", cfg.FrequencyHz)
	}
	if cfg.Horizontal != (AxisConfig{Channel: 4, GPIO: 18}) || cfg.Vertical != (AxisConfig{Channel: 5, GPIO: 19}) {
		t.Errorf("axes = %+v %+v", cfg.Horizontal, cfg.Vertical)
	}
	if cfg.PCA9685.Address != 0x40 || cfg.PCA9685.OEChip != "gpiochip0" || cfg.PCA9685.OELine != 22 {
		t.Errorf("pca9685 = %+v", cfg.PCA9685)
	}
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", *cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("Load missing file = %v, want not-exist error", err)
	}
}

func TestValidate_RPiNeedsHardwarePWMPins(t *testing.T) {
	cfg := Default()
	cfg.Backend = BackendRPi
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "gpio 17") {
		t.Fatalf("rpio with default wiring = %v, want gpio 17 rejected", err)
	}
	cfg.Horizontal.GPIO, cfg.Vertical.GPIO = 18, 19
	if err := cfg.Validate(); err != nil {
		t.Errorf("rpio on 18/19: %v", err)
	}
	for gpio, want := range map[int]bool{12: true, 13: true, 18: true, 19: true, 16: false, 17: false} {
		if HardwarePWMPin(gpio) != want {
			t.Errorf("HardwarePWMPin(%d) = %v", gpio, !want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"backend":        "backend: serial\n",
		"timer":          "timer: 4\n",
		"frequency":      "frequency_hz: -5\n",
		"frequency zero": "frequency_hz: 0\n",
		"rpio pins":      "backend: rpio\n",
		"rpio vertical":  "backend: rpio\nhorizontal: {gpio: 18}\n",
		"address zero":   "pca9685: {address: 0}\n",
		"oe chip blank":  "pca9685: {oe_chip: \"\", oe_line: 4}\n",
		"channel range":  "horizontal: {channel: 8}\n",
		"same channel":   "horizontal: {channel: 1}\nvertical: {channel: 1}\n",
		"home pan":       "home: {pan: 181}\n",
		"home tilt":      "home: {tilt: -1}\n",
		"yaml":           "timer: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(content)); err == nil {
				t.Errorf("expected error for %q", strings.TrimSpace(content))
			}
		})
	}
}
