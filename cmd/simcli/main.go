// Command simcli is a coordinator-side demonstration harness: it spins up
// a small mesh of simcore.Node instances running firmware.CommandNode,
// steps them together in lockstep, and broadcasts any radio frame a node
// transmits to every other node in the mesh. It exists to exercise the
// harness end to end from the Go-native API (the C-ABI binaries under
// cmd/companion, cmd/repeater and cmd/roomserver exercise the same code
// paths from the cgo boundary instead).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	simcore "github.com/signalsfoundry/mcsim"
	"github.com/signalsfoundry/mcsim/codec/identity"
	"github.com/signalsfoundry/mcsim/firmware"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "simcli",
		Short: "Drive a simulated mesh of firmware nodes",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); flags override its values")
	root.AddCommand(newRunCmd())
	return root
}

// runOptions is the viper-bound configuration for one simcli run. Each
// field's config-file YAML key is its flag name: the lowercased field name
// for single-word fields, the mapstructure tag for the others.
type runOptions struct {
	Nodes       int
	Steps       int
	StepMillis  uint64  `mapstructure:"step-millis"`
	MetricsAddr string  `mapstructure:"metrics-addr"`
	LogLevel    string  `mapstructure:"log-level"`
	LoraFreq    float32 `mapstructure:"lora-freq"`
	LoraBw      float32 `mapstructure:"lora-bw"`
	LoraSF      float32 `mapstructure:"lora-sf"`
	LoraCR      float32 `mapstructure:"lora-cr"`
	LoraTxPower float32 `mapstructure:"lora-tx-power"`
	RNGSeedBase uint32  `mapstructure:"rng-seed-base"`
}

func newRunCmd() *cobra.Command {
	opts := runOptions{
		Nodes:       3,
		Steps:       100,
		StepMillis:  10,
		MetricsAddr: "",
		LogLevel:    "info",
		LoraFreq:    915.0,
		LoraBw:      125.0,
		LoraSF:      7.0,
		LoraCR:      5.0,
		LoraTxPower: 14.0,
		RNGSeedBase: 1,
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scripted broadcast mesh scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := v.Unmarshal(&opts); err != nil {
				return errors.Wrap(err, "simcli: decode config")
			}
			return runScenario(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&opts.Nodes, "nodes", opts.Nodes, "number of simulated nodes")
	fs.IntVar(&opts.Steps, "steps", opts.Steps, "number of coordinator steps to run")
	fs.Uint64Var(&opts.StepMillis, "step-millis", opts.StepMillis, "virtual milliseconds advanced per step")
	fs.StringVar(&opts.MetricsAddr, "metrics-addr", opts.MetricsAddr, "address to serve /metrics on, empty disables")
	fs.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "zap log level: debug, info, warn, error")
	fs.Float32Var(&opts.LoraFreq, "lora-freq", opts.LoraFreq, "LoRa center frequency (MHz)")
	fs.Float32Var(&opts.LoraBw, "lora-bw", opts.LoraBw, "LoRa bandwidth (kHz)")
	fs.Float32Var(&opts.LoraSF, "lora-sf", opts.LoraSF, "LoRa spreading factor")
	fs.Float32Var(&opts.LoraCR, "lora-cr", opts.LoraCR, "LoRa coding rate denominator")
	fs.Float32Var(&opts.LoraTxPower, "lora-tx-power", opts.LoraTxPower, "LoRa TX power (dBm)")
	fs.Uint32Var(&opts.RNGSeedBase, "rng-seed-base", opts.RNGSeedBase, "first node's RNG seed; each subsequent node gets +1")

	_ = viper.BindPFlags(fs)
	return cmd
}

func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "simcli: read config file")
		}
	}
	v.SetEnvPrefix("SIMCLI")
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "simcli: bind flags")
	}
	return v, nil
}

func runScenario(ctx context.Context, opts runOptions) error {
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	runID := uuid.New()
	sugar := logger.Sugar().With("run_id", runID.String())

	registry := prometheus.NewRegistry()
	metrics := simcore.NewMetrics(registry)
	if opts.MetricsAddr != "" {
		srv := startMetricsServer(opts.MetricsAddr, registry, sugar)
		defer srv.Close()
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	nodes := make([]*simcore.Node, opts.Nodes)
	live := make([]bool, opts.Nodes)
	for i := range nodes {
		cfg, err := buildNodeConfig(opts, i)
		if err != nil {
			return errors.Wrap(err, "simcli: build node config")
		}
		nodes[i] = simcore.CreateWithOptions(fmt.Sprintf("node-%d", i), cfg, func(*simcore.Context) simcore.Firmware {
			return &firmware.CommandNode{}
		}, metrics, sugar)
		live[i] = true
	}
	defer func() {
		for _, n := range nodes {
			n.Destroy()
		}
	}()

	millis := uint64(0)
	var rtcSecs uint32
	for step := 0; step < opts.Steps; step++ {
		select {
		case <-ctx.Done():
			sugar.Infow("run interrupted", "step", step)
			return nil
		default:
		}

		millis += opts.StepMillis
		rtcSecs = uint32(millis / 1000)

		results := make([]simcore.StepResult, opts.Nodes)
		for i, n := range nodes {
			if !live[i] {
				continue
			}
			result, err := n.Step(ctx, millis, rtcSecs)
			if err != nil {
				sugar.Warnw("step failed", "node", i, "error", err)
				continue
			}
			results[i] = result
		}

		broadcastFrames(nodes, live, results, sugar)

		for i, result := range results {
			if !live[i] {
				continue
			}
			switch result.Reason {
			case simcore.YieldReboot:
				cfg, err := buildNodeConfig(opts, i)
				if err != nil {
					sugar.Warnw("rebuild config for reboot failed", "node", i, "error", err)
					continue
				}
				if err := nodes[i].Reboot(cfg); err != nil {
					sugar.Warnw("reboot failed", "node", i, "error", err)
				}
			case simcore.YieldPowerOff:
				live[i] = false
				sugar.Infow("node powered off", "node", i, "step", step)
			}
		}
	}

	sugar.Infow("run complete", "steps", opts.Steps, "nodes", opts.Nodes)
	return nil
}

// broadcastFrames delivers every node's pending TX frame from this step to
// every other still-live node, then acknowledges the sender's TX. This is
// the coordinator's medium model: simcli treats the mesh as a single
// broadcast domain, matching the "simulating real radio PHY" non-goal --
// there is no path loss, collision, or distance modeling here.
func broadcastFrames(nodes []*simcore.Node, live []bool, results []simcore.StepResult, log *zap.SugaredLogger) {
	for i, result := range results {
		if !live[i] || result.Reason != simcore.YieldTXStarted || result.TXFrame == nil {
			continue
		}
		for j, n := range nodes {
			if j == i || !live[j] {
				continue
			}
			n.InjectRadioRX(result.TXFrame.Bytes, -60, 8)
		}
		nodes[i].NotifyTXComplete()
		log.Debugw("broadcast frame", "from", i, "bytes", len(result.TXFrame.Bytes))
	}
}

func buildNodeConfig(opts runOptions, index int) (*simcore.Config, error) {
	kp, err := identity.Generate()
	if err != nil {
		return nil, err
	}
	cfg := &simcore.Config{
		LoraFreq:             opts.LoraFreq,
		LoraBw:               opts.LoraBw,
		LoraSF:               opts.LoraSF,
		LoraCR:               opts.LoraCR,
		LoraTxPower:          opts.LoraTxPower,
		RNGSeed:              opts.RNGSeedBase + uint32(index),
		SpinDetectionThreshold: 1000,
		LogSpinDetection:     true,
		LogLoopIterations:    false,
		IdleLoopsBeforeYield: 2,
	}
	copy(cfg.PrivateKey[:], kp.Private)
	copy(cfg.PublicKey[:], kp.Public)
	cfg.SetNodeName(fmt.Sprintf("node-%d", index))
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zl zap.AtomicLevel
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrap(err, "simcli: parse log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zl
	cfg.EncoderConfig.TimeKey = "ts"
	return cfg.Build()
}

func startMetricsServer(addr string, reg *prometheus.Registry, log *zap.SugaredLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warnw("metrics server stopped", "error", err)
		}
	}()
	log.Infow("serving metrics", "addr", addr)
	return srv
}
