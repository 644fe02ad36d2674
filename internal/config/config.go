package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-acme/lego/platform/config/env"
	"github.com/goccy/go-yaml"
)

type Paths struct {
	FlashDir        string `yaml:"flash_dir"`
	RoomsFile       string `yaml:"rooms_file"`
	CommandsFile    string `yaml:"commands_file"`
	CredentialsFile string `yaml:"credentials_file"`
	StateFile       string `yaml:"state_file"`
	StateBackend    string `yaml:"state_backend"`
	MaxSourceBytes  int    `yaml:"max_source_bytes"`
}

type Timing struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	FadeDuration     time.Duration `yaml:"fade_duration"`
	HoldThreshold    time.Duration `yaml:"hold_threshold"`
	MultiClickWindow time.Duration `yaml:"multi_click_window"`
}

type Dispatch struct {
	Placeholder  string        `yaml:"placeholder"`
	MaxURLLength int           `yaml:"max_url_length"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	Selection    string        `yaml:"selection"`
	Expression   string        `yaml:"expression"`
}

type Buttons struct {
	Chip      string        `yaml:"chip"`
	Button1   int           `yaml:"button1"`
	Button2   int           `yaml:"button2"`
	ActiveLow bool          `yaml:"active_low"`
	Debounce  time.Duration `yaml:"debounce"`
}

type Display struct {
	Framebuffer string `yaml:"framebuffer"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
}

type Network struct {
	Interface      string        `yaml:"interface"`
	Managed        bool          `yaml:"managed"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type MQTT struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
}

type Config struct {
	Paths     Paths    `yaml:"paths"`
	Timing    Timing   `yaml:"timing"`
	Dispatch  Dispatch `yaml:"dispatch"`
	Buttons   Buttons  `yaml:"buttons"`
	Display   Display  `yaml:"display"`
	Backlight string   `yaml:"backlight"`
	Network   Network  `yaml:"network"`
	SleepMode string   `yaml:"sleep_mode"`
	MQTT      MQTT     `yaml:"mqtt"`
	PanelAddr string   `yaml:"panel_addr"`

	// SleepWakeup is the power/wakeup sysfs attribute of the device behind
	// button 1, enabled before a suspend.
	SleepWakeup string `yaml:"sleep_wakeup"`
}

func Default() *Config {
	return &Config{
		Paths: Paths{
			FlashDir:        "/var/lib/speaker-remote",
			RoomsFile:       "speakers.csv",
			CommandsFile:    "commands.txt",
			CredentialsFile: "wifi.txt",
			StateFile:       "state.bin",
			StateBackend:    "file",
			MaxSourceBytes:  64 << 10,
		},
		Timing: Timing{
			PollInterval:     10 * time.Millisecond,
			IdleTimeout:      10 * time.Second,
			FadeDuration:     2 * time.Second,
			HoldThreshold:    500 * time.Millisecond,
			MultiClickWindow: 250 * time.Millisecond,
		},
		Dispatch: Dispatch{
			Placeholder:  "%s",
			MaxURLLength: 512,
			HTTPTimeout:  5 * time.Second,
			Selection:    "auto",
		},
		Buttons: Buttons{
			Chip:      "gpiochip0",
			Button1:   35,
			Button2:   0,
			ActiveLow: true,
			Debounce:  10 * time.Millisecond,
		},
		Display: Display{
			Framebuffer: "/dev/fb1",
			Width:       135,
			Height:      240,
		},
		Backlight: "/sys/class/backlight/backlight",
		Network: Network{
			Interface:      "wlan0",
			Managed:        true,
			ConnectTimeout: 15 * time.Second,
		},
		SleepMode: "restart",
		MQTT: MQTT{
			TopicPrefix: "speaker-remote",
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults. Environment variables are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Paths.FlashDir = env.GetOrDefaultString("REMOTE_FLASH_DIR", c.Paths.FlashDir)
	c.Paths.StateBackend = env.GetOrDefaultString("REMOTE_STATE_BACKEND", c.Paths.StateBackend)
	c.Timing.IdleTimeout = env.GetOrDefaultSecond("REMOTE_IDLE_TIMEOUT_SEC", c.Timing.IdleTimeout)
	c.Timing.FadeDuration = env.GetOrDefaultSecond("REMOTE_FADE_SEC", c.Timing.FadeDuration)
	c.Dispatch.HTTPTimeout = env.GetOrDefaultSecond("REMOTE_HTTP_TIMEOUT_SEC", c.Dispatch.HTTPTimeout)
	c.Dispatch.Selection = env.GetOrDefaultString("REMOTE_SELECTION", c.Dispatch.Selection)
	c.Dispatch.MaxURLLength = env.GetOrDefaultInt("REMOTE_MAX_URL_LENGTH", c.Dispatch.MaxURLLength)
	c.Buttons.Chip = env.GetOrDefaultString("REMOTE_GPIO_CHIP", c.Buttons.Chip)
	c.Buttons.ActiveLow = env.GetOrDefaultBool("REMOTE_GPIO_ACTIVE_LOW", c.Buttons.ActiveLow)
	c.Display.Framebuffer = env.GetOrDefaultString("REMOTE_FRAMEBUFFER", c.Display.Framebuffer)
	c.Backlight = env.GetOrDefaultString("REMOTE_BACKLIGHT", c.Backlight)
	c.Network.Interface = env.GetOrDefaultString("REMOTE_WIFI_IFACE", c.Network.Interface)
	c.Network.Managed = env.GetOrDefaultBool("REMOTE_WIFI_MANAGED", c.Network.Managed)
	c.SleepMode = env.GetOrDefaultString("REMOTE_SLEEP_MODE", c.SleepMode)
	c.SleepWakeup = env.GetOrDefaultString("REMOTE_SLEEP_WAKEUP", c.SleepWakeup)
	c.MQTT.Broker = env.GetOrDefaultString("REMOTE_MQTT_BROKER", c.MQTT.Broker)
	c.PanelAddr = env.GetOrDefaultString("REMOTE_PANEL_ADDR", c.PanelAddr)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Paths.FlashDir == "" {
		errs = append(errs, errors.New("paths.flash_dir is required"))
	}
	switch c.Paths.StateBackend {
	case "file", "badger":
	default:
		errs = append(errs, fmt.Errorf("paths.state_backend %q must be file or badger", c.Paths.StateBackend))
	}
	if c.Timing.PollInterval <= 0 {
		errs = append(errs, errors.New("timing.poll_interval must be positive"))
	}
	if c.Timing.IdleTimeout <= 0 {
		errs = append(errs, errors.New("timing.idle_timeout must be positive"))
	}
	if c.Timing.FadeDuration < 0 {
		errs = append(errs, errors.New("timing.fade_duration must not be negative"))
	}
	if c.Dispatch.Placeholder == "" {
		errs = append(errs, errors.New("dispatch.placeholder is required"))
	}
	if c.Dispatch.MaxURLLength <= 0 {
		errs = append(errs, errors.New("dispatch.max_url_length must be positive"))
	}
	switch c.Dispatch.Selection {
	case "auto", "pair", "clicks":
	case "expression":
		if c.Dispatch.Expression == "" {
			errs = append(errs, errors.New("dispatch.expression is required for the expression selection"))
		}
	default:
		errs = append(errs, fmt.Errorf("dispatch.selection %q is not supported", c.Dispatch.Selection))
	}
	switch c.SleepMode {
	case "restart", "suspend":
	default:
		errs = append(errs, fmt.Errorf("sleep_mode %q must be restart or suspend", c.SleepMode))
	}
	return errors.Join(errs...)
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
