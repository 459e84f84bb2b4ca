package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/danmuck/fixturectl/internal/client"
	"github.com/danmuck/fixturectl/internal/config"
	"github.com/danmuck/fixturectl/internal/observability"
	"github.com/danmuck/fixturectl/internal/packet"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

var (
	cfgFile     string
	baudRate    int
	connectBaud int

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fixturectl",
	Short: "Control a test fixture over its framed serial link",
	Long: `fixturectl talks to a fixture agent over a serial device or a
TCP endpoint (tcp:host:port). Connections start at the fixture's boot
baud rate and renegotiate to the working rate before running commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = observability.InitLogger("fixturectl")

		if cfgFile == "" {
			return nil
		}
		cfg, err := config.LoadToolConfig(cfgFile)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("baud") {
			baudRate = cfg.Baud
		}
		if !cmd.Flags().Changed("connect-baud") {
			connectBaud = cfg.ConnectBaud
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 115200, "working baud rate")
	rootCmd.PersistentFlags().IntVar(&connectBaud, "connect-baud", 9600, "baud rate the fixture boots at")
}

// connection pairs the raw transport with a rate setter where the
// transport has one.
type connection struct {
	rw      io.ReadWriteCloser
	setRate func(baud int) error
}

func open(target string) (*connection, error) {
	if addr, ok := strings.CutPrefix(target, "tcp:"); ok {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return &connection{rw: conn}, nil
	}

	port, err := serial.Open(target, &serial.Mode{BaudRate: connectBaud})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target, err)
	}
	return &connection{
		rw: port,
		setRate: func(baud int) error {
			return port.SetMode(&serial.Mode{BaudRate: baud})
		},
	}, nil
}

// connect opens the target, resynchronizes the fixture's framing, and
// renegotiates the serial rate when the transport supports it.
func connect(target string) (*client.Client, *connection, error) {
	conn, err := open(target)
	if err != nil {
		return nil, nil, err
	}

	c := client.New(packet.NewStream(conn.rw), logger)
	if err := c.Reset(); err != nil {
		conn.rw.Close()
		return nil, nil, fmt.Errorf("fixture not responding: %w", err)
	}

	if conn.setRate != nil && baudRate != connectBaud {
		if err := c.Baud(baudRate); err != nil {
			conn.rw.Close()
			return nil, nil, fmt.Errorf("baud switch refused: %w", err)
		}
		if err := conn.setRate(baudRate); err != nil {
			conn.rw.Close()
			return nil, nil, fmt.Errorf("set local baud: %w", err)
		}
		// Let the fixture's UART settle at the new rate.
		time.Sleep(100 * time.Millisecond)
	}
	return c, conn, nil
}
