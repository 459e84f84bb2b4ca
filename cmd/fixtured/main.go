package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/danmuck/fixturectl/internal/config"
	"github.com/danmuck/fixturectl/internal/dispatch"
	"github.com/danmuck/fixturectl/internal/fixture"
	"github.com/danmuck/fixturectl/internal/observability"
	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "fixtured.toml", "path to agent config")
	flag.Parse()

	logger := observability.InitLogger("fixtured")

	cfg, err := loadAgentConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixtured: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("agent stopped")
		os.Exit(1)
	}
}

func run(cfg config.AgentConfig, logger zerolog.Logger) error {
	image, err := loadImage(cfg.ImagePath)
	if err != nil {
		return err
	}
	tester := fixture.NewTester(cfg.Version, image, logger)

	if cfg.Diagnostics.Addr != "" {
		go serveDiagnostics(cfg.Diagnostics, logger)
	}

	if cfg.Device != "" {
		return serveSerial(cfg, tester, logger)
	}
	return serveTCP(cfg, tester, logger)
}

func serveSerial(cfg config.AgentConfig, tester *fixture.Tester, logger zerolog.Logger) error {
	port, err := serial.Open(cfg.Device, &serial.Mode{BaudRate: cfg.Baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	defer port.Close()

	logger.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("serving fixture")
	stream := packet.NewStream(port)
	d := dispatch.New(stream, fixture.Commands(tester, portRate{port}), logger)
	return d.Run(context.Background())
}

// portRate applies negotiated baud changes to the open serial port.
type portRate struct {
	port serial.Port
}

func (r portRate) SetRate(baud int) error {
	return r.port.SetMode(&serial.Mode{BaudRate: baud})
}

func serveTCP(cfg config.AgentConfig, tester *fixture.Tester, logger zerolog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}
	defer ln.Close()

	logger.Info().Str("listen", ln.Addr().String()).Msg("serving fixture")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		logger.Info().Str("peer", conn.RemoteAddr().String()).Msg("host connected")

		// TCP transports have no line rate, so baud requests report an error.
		d := dispatch.New(packet.NewStream(conn), fixture.Commands(tester, nil), logger)
		if err := d.Run(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("session ended")
		}
		conn.Close()
	}
}

func loadImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return data, nil
}
