package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version <target>",
	Short: "Report the fixture firmware version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, conn, err := connect(args[0])
		if err != nil {
			return err
		}
		defer conn.rw.Close()

		v, err := c.Version()
		if err != nil {
			return fmt.Errorf("version failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "fixture version %d\n", v)
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <target> <out>",
	Short: "Dump the staged firmware image to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args[0], args[1], false)
	},
}

var dumpAllCmd = &cobra.Command{
	Use:   "dump-all <target> <out>",
	Short: "Dump the entire flash contents to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd, args[0], args[1], true)
	},
}

func runDump(cmd *cobra.Command, target, out string, all bool) error {
	c, conn, err := connect(target)
	if err != nil {
		return err
	}
	defer conn.rw.Close()

	progress := newProgressBar(cmd.OutOrStdout(), "reading")
	var image []byte
	if all {
		image, err = c.DumpAll(progress.update)
	} else {
		image, err = c.Dump(progress.update)
	}
	progress.done()
	if err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}

	if err := os.WriteFile(out, image, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(image), out)
	return nil
}

var updateCmd = &cobra.Command{
	Use:   "update <target> <image>",
	Short: "Stage a firmware image on the fixture",
	Long: `Stage a firmware image in the fixture's flash. The staged image
only becomes active after a reload.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}

		c, conn, err := connect(args[0])
		if err != nil {
			return err
		}
		defer conn.rw.Close()

		progress := newProgressBar(cmd.OutOrStdout(), "writing")
		err = c.Update(image, progress.update)
		progress.done()
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "staged %d bytes\n", len(image))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload <target>",
	Short: "Activate the staged firmware image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, conn, err := connect(args[0])
		if err != nil {
			return err
		}
		defer conn.rw.Close()

		if err := c.Reload(); err != nil {
			return fmt.Errorf("reload failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "fixture reloaded")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <target>",
	Short: "Show the fixture's link error counters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, conn, err := connect(args[0])
		if err != nil {
			return err
		}
		defer conn.rw.Close()

		stats, err := c.Stats()
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "encoding errors:  %d\n", stats.EncodingErrors)
		fmt.Fprintf(cmd.OutOrStdout(), "unknown commands: %d\n", stats.UnknownCommands)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(dumpAllCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(statsCmd)
}
