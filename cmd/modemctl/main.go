// Command modemctl is the reference wiring program for the AX.25/FX.25
// APRS modem core: it loads a modem profile, binds a KISS-over-TCP
// transport (the profile's serial settings are not used here), a KISS
// formatter, the DDS AFSK modem driver, and a logging +
// metrics observer pair, then runs the transmit/receive coordinator until
// interrupted. It is deliberately thin — every decision it makes is
// ordinary composition of the capability interfaces; the pipeline core
// has no dependency on this file.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/n0call/aprsmodem/internal/afsk"
	"github.com/n0call/aprsmodem/internal/audiofile"
	"github.com/n0call/aprsmodem/internal/bitstream"
	"github.com/n0call/aprsmodem/internal/capability"
	"github.com/n0call/aprsmodem/internal/coordinator"
	"github.com/n0call/aprsmodem/internal/discovery"
	"github.com/n0call/aprsmodem/internal/kiss"
	"github.com/n0call/aprsmodem/internal/metrics"
	"github.com/n0call/aprsmodem/internal/modem"
	"github.com/n0call/aprsmodem/internal/modemconfig"
	"github.com/n0call/aprsmodem/internal/nettransport"
	"github.com/n0call/aprsmodem/internal/obslog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "modemctl:", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, listenAddr, wavOut, metricsAddr string
	var announce bool

	fs := pflag.NewFlagSet("modemctl", pflag.ExitOnError)
	fs.StringVarP(&configPath, "config", "c", "", "YAML modem profile (optional)")
	fs.StringVarP(&listenAddr, "listen", "L", "127.0.0.1:8001", "KISS-over-TCP listen address")
	fs.StringVarP(&wavOut, "wav-out", "w", "", "render transmitted audio to this WAV file instead of discarding it")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "Prometheus /metrics listen address (empty = disabled)")
	fs.BoolVar(&announce, "announce", false, "advertise the KISS-TCP endpoint via mDNS/DNS-SD")

	cfg := modemconfig.Default()
	modemconfig.BindFlags(fs, &cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if configPath != "" {
		loaded, err := modemconfig.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		// Re-parse so command-line flags override file values.
		if err := fs.Parse(os.Args[1:]); err != nil {
			return err
		}
	}

	logger := obslog.New(obslog.Config{FilePath: cfg.LogFile})
	defer logger.Close()

	var observer capability.Observer = logger
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		mObs := metrics.New(reg)
		observer = capability.MultiObserver{logger, mObs}
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				logger.OnFault("metrics-http", err)
			}
		}()
	}

	sink, closeSink, err := openSink(wavOut, cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("open audio sink: %w", err)
	}
	defer closeSink()

	mod := afsk.NewModulator(cfg.MarkFreq, cfg.SpaceFreq, cfg.Baud, cfg.SampleRate)
	var converter bitstream.Converter = bitstream.AX25Converter{}
	if cfg.FX25Enabled {
		converter = bitstream.FX25Converter{TagNum: cfg.FX25Tag}
	}

	driver := modem.New(modem.Config{
		TxDelayFlags: cfg.TxDelayFlags,
		TxTailFlags:  cfg.TxTailFlags,
		Gain:         cfg.Gain,
	})
	driver.Initialize(sink, mod, converter, nil, observer)

	transport := nettransport.New(listenAddr)
	formatter := kiss.NewAX25Formatter(cfg.KissPort)

	c := coordinator.New(transport, formatter, driver, observer)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start coordinator: %w", err)
	}
	defer c.Stop()

	if announce {
		port := listenPort(listenAddr)
		adv, err := discovery.Announce("", port)
		if err != nil {
			logger.OnFault("discovery", err)
		} else {
			defer adv.Stop()
		}
	}

	logger.Info("modemctl running", "listen", listenAddr)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

// openSink returns an audiofile.WAVSink writing to path if path is
// non-empty, or a discarding sink otherwise; either way the caller gets a
// close func to defer.
func openSink(path string, sampleRate float64) (capability.AudioSink, func(), error) {
	if path == "" {
		return discardSink{sampleRate: sampleRate}, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	sink := audiofile.New(f, int(sampleRate), 1)
	return sink, func() { _ = sink.Close() }, nil
}

// discardSink is the modemctl default audio sink when no --wav-out path
// is given: transmitted audio is generated and discarded, useful for
// exercising the coordinator/KISS path without wiring real audio I/O.
type discardSink struct{ sampleRate float64 }

func (discardSink) Write(samples []float64) (int, error)   { return len(samples), nil }
func (discardSink) WaitWriteCompleted(time.Duration) error { return nil }
func (d discardSink) SampleRate() float64                  { return d.sampleRate }
func (discardSink) Channels() int                          { return 1 }

func listenPort(addr string) int {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			var port int
			fmt.Sscanf(addr[i+1:], "%d", &port)
			return port
		}
	}
	return 0
}
