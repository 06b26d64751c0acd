// Package modemconfig loads modem pipeline parameters from a YAML file
// (gopkg.in/yaml.v3) and a CLI flag set (github.com/spf13/pflag), applied
// here to modem tuning parameters.
package modemconfig

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the modem pipeline's tunable parameters: DDS tone/baud and
// sample rate, HDLC flag counts, gain, FX.25 mode and tag selection, KISS
// port, serial device settings, and log file. Silence padding is not
// configured here.
type Config struct {
	MarkFreq   float64 `yaml:"mark_freq"`
	SpaceFreq  float64 `yaml:"space_freq"`
	Baud       float64 `yaml:"baud"`
	SampleRate float64 `yaml:"sample_rate"`

	TxDelayFlags int     `yaml:"tx_delay_flags"`
	TxTailFlags  int     `yaml:"tx_tail_flags"`
	Gain         float64 `yaml:"gain"`

	FX25Enabled bool `yaml:"fx25_enabled"`
	FX25Tag     int  `yaml:"fx25_tag"` // 0 = automatic

	KissPort int `yaml:"kiss_port"`

	SerialDevice string `yaml:"serial_device"`
	SerialBaud   int    `yaml:"serial_baud"`

	LogFile string `yaml:"log_file"`
}

// Default mirrors commonly used APRS 1200-baud AFSK parameters.
func Default() Config {
	return Config{
		MarkFreq:     1200,
		SpaceFreq:    2200,
		Baud:         1200,
		SampleRate:   44100,
		TxDelayFlags: 30,
		TxTailFlags:  3,
		Gain:         1.0,
		KissPort:     0,
		SerialBaud:   9600,
	}
}

// LoadFile reads and unmarshals a YAML config file over Default, so an
// incomplete file still yields usable values for any field it omits.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BindFlags registers pflag command-line overrides for the common fields
// a modemctl-style CLI exposes, using pflag's VarP style. Call fs.Parse
// afterward to apply them.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Float64VarP(&cfg.MarkFreq, "mark-freq", "m", cfg.MarkFreq, "Mark tone frequency, Hz")
	fs.Float64VarP(&cfg.SpaceFreq, "space-freq", "s", cfg.SpaceFreq, "Space tone frequency, Hz")
	fs.Float64VarP(&cfg.Baud, "baud", "b", cfg.Baud, "Baud rate, bits/sec")
	fs.Float64VarP(&cfg.SampleRate, "sample-rate", "r", cfg.SampleRate, "Audio sample rate, Hz")
	fs.IntVar(&cfg.TxDelayFlags, "tx-delay-flags", cfg.TxDelayFlags, "Leading HDLC flag count")
	fs.IntVar(&cfg.TxTailFlags, "tx-tail-flags", cfg.TxTailFlags, "Trailing HDLC flag count")
	fs.Float64VarP(&cfg.Gain, "gain", "g", cfg.Gain, "Output gain, 0..1")
	fs.BoolVar(&cfg.FX25Enabled, "fx25", cfg.FX25Enabled, "Wrap transmitted frames in FX.25 FEC")
	fs.IntVar(&cfg.FX25Tag, "fx25-tag", cfg.FX25Tag, "FX.25 correlation tag (0 = automatic)")
	fs.StringVarP(&cfg.SerialDevice, "serial-device", "d", cfg.SerialDevice, "Serial PTT/KISS device path")
	fs.IntVar(&cfg.SerialBaud, "serial-baud", cfg.SerialBaud, "Serial port speed")
	fs.StringVarP(&cfg.LogFile, "log-file", "l", cfg.LogFile, "Log file path (empty = stderr)")
}
