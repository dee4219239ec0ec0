// Package config provides the options of a LIN node.
//
// Values are taken from the defaults, then the YAML profile, then the
// environment, then the command line flags explicitly set.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/serial"
)

// Config provides the options of a node.
type Config struct {
	NodeID string `yaml:"node-id"`
	// BoardID is ignored when AddressPins are set.
	BoardID     int    `yaml:"board-id"`
	AddressPins string `yaml:"address-pins"`

	LIN         serial.Config     `yaml:"lin"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Light       LightConfig       `yaml:"light"`
	Lamp        LampConfig        `yaml:"lamp"`

	// MQTTURL enables telemetry, e.g. mqtt://host:port/topic-prefix
	MQTTURL      string        `yaml:"mqtt"`
	LoopInterval time.Duration `yaml:"loop-interval"`
}

// TemperatureConfig configures the DS18B20 on a One-Wire UART.
type TemperatureConfig struct {
	Device         string        `yaml:"device"`
	ConversionTime time.Duration `yaml:"conversion-time"`
	Interval       time.Duration `yaml:"interval"`
}

// LightConfig configures the light sensor ADC.
type LightConfig struct {
	// ADC is the IIO device directory.
	ADC      string        `yaml:"adc"`
	Channel  int           `yaml:"channel"`
	Interval time.Duration `yaml:"interval"`
}

// LampConfig lists the LED class devices of the lights.
// Lights without a device are only logged.
type LampConfig struct {
	Color      []string `yaml:"color"`
	Indicators []string `yaml:"indicators"`
}

var defaultConfig = Config{
	LIN: serial.Config{
		Device:   "/dev/ttyS1",
		BaudRate: 19200,
	},
	Temperature: TemperatureConfig{
		ConversionTime: time.Second,
	},
	Light: LightConfig{
		Interval: 100 * time.Millisecond,
	},
	LoopInterval: 50 * time.Millisecond,
}

var (
	flagConfig = defaultConfig
	configFile string
)

func init() {
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		id, _ = os.Hostname()
	}
	defaultConfig.NodeID = id
	flagConfig.NodeID = id
}

// SetupFlags sets up command line flags.
func SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&configFile, "config", os.Getenv("LINNODE_CONFIG"), "YAML profile")
	flagConfig.bind(fs)
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.NodeID, "id", c.NodeID, "Node ID")
	fs.IntVar(&c.BoardID, "board", c.BoardID, "Board ID")
	fs.StringVar(&c.AddressPins, "pins", c.AddressPins, "Address pin levels p2p1p0, e.g. 101")
	fs.StringVar(&c.LIN.Device, "lin", c.LIN.Device, "LIN serial device")
	fs.IntVar(&c.LIN.BaudRate, "lin-baud", c.LIN.BaudRate, "LIN baud rate")
	fs.StringVar(&c.Temperature.Device, "onewire", c.Temperature.Device, "One-Wire serial device")
	fs.DurationVar(&c.Temperature.Interval, "temp-interval", c.Temperature.Interval, "Pause between temperature readings")
	fs.StringVar(&c.Light.ADC, "adc", c.Light.ADC, "Light sensor IIO device directory")
	fs.IntVar(&c.Light.Channel, "adc-channel", c.Light.Channel, "Light sensor ADC channel")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load builds the config after flags in fs are parsed.
func Load(fs *flag.FlagSet) (*Config, error) {
	conf := NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	override := flag.NewFlagSet("override", flag.ContinueOnError)
	conf.bind(override)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if override.Lookup(f.Name) != nil && err == nil {
			err = override.Set(f.Name, f.Value.String())
		}
	})
	if err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// LoadFile merges a YAML profile into the config.
func (c *Config) LoadFile(fn string) error {
	content, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("parse config %s: %w", fn, err)
	}
	return nil
}

// ApplyEnv merges environment variables into the config.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LINNODE_ID":       &c.NodeID,
		"LINNODE_PINS":     &c.AddressPins,
		"LINNODE_LIN":      &c.LIN.Device,
		"LINNODE_ONEWIRE":  &c.Temperature.Device,
		"LINNODE_ADC":      &c.Light.ADC,
		"LINNODE_MQTT_URL": &c.MQTTURL,
	}
	for name, p := range strs {
		if val, ok := lookup(name); ok {
			*p = val
		}
	}
	ints := map[string]*int{
		"LINNODE_BOARD":    &c.BoardID,
		"LINNODE_LIN_BAUD": &c.LIN.BaudRate,
	}
	for name, p := range ints {
		if val, ok := lookup(name); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*p = n
		}
	}
	return nil
}

// MaxBoardID is the highest board id whose frames fit in the frame id range.
const MaxBoardID = (int(lin.MaxFrameID)+1)/board.FramesPerBoard - 1

// Validate checks the config and resolves the board id from the address pins.
func (c *Config) Validate() error {
	if c.AddressPins != "" {
		id, err := board.ParsePins(c.AddressPins)
		if err != nil {
			return err
		}
		c.BoardID = int(id)
	}
	if c.BoardID < 0 || c.BoardID > MaxBoardID {
		return fmt.Errorf("board id %d out of range 0-%d", c.BoardID, MaxBoardID)
	}
	if c.LIN.Device == "" {
		return fmt.Errorf("LIN device required")
	}
	if c.LIN.ReadTimeout != 0 {
		return fmt.Errorf("LIN read timeout unsupported, the bus may idle indefinitely")
	}
	if c.Temperature.Device != "" && c.Temperature.ConversionTime < 750*time.Millisecond {
		return fmt.Errorf("temperature conversion time %v too short", c.Temperature.ConversionTime)
	}
	if len(c.Lamp.Color) > 3 || len(c.Lamp.Indicators) > 4 {
		return fmt.Errorf("too many lamp devices")
	}
	if c.NodeID == "" {
		return fmt.Errorf("node id required")
	}
	return nil
}
