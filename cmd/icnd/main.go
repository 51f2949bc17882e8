package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fahertym/intercooperative-network/launch"
)

var version = "v0.1.0"

var (
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	root := &cobra.Command{
		Use:   "icnd",
		Short: "InterCooperative Network node",
	}

	root.AddCommand(runCommand(), initCommand(), versionCommand())

	pflag.CommandLine.AddFlagSet(root.PersistentFlags())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <design.yml>",
		Short: "run the node from a design file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			design, err := launch.LoadDesign(args[0])
			if err != nil {
				return err
			}

			if len(flagLogLevel) > 0 {
				design.Logging.Level = flagLogLevel
			}
			if len(flagLogFormat) > 0 {
				design.Logging.Format = flagLogFormat
			}

			log := launch.SetupLogging(design.Logging)

			no, err := launch.NewNode(design)
			if err != nil {
				return err
			}
			_ = no.SetLogger(log)

			if err := no.Start(); err != nil {
				return err
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			return no.Stop()
		},
	}

	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	cmd.Flags().StringVar(&flagLogFormat, "log-format", "", "log format: json, terminal")

	return cmd
}

func initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init <design.yml>",
		Short: "write a default node design",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := launch.DefaultDesign().Marshal()
			if err != nil {
				return err
			}

			return os.WriteFile(args[0], b, 0o600)
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	}
}
