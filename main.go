package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dpquoc/zerolaunch/lib/config"
	"github.com/dpquoc/zerolaunch/lib/launch"
	"github.com/dpquoc/zerolaunch/lib/util/logger"
	"github.com/dpquoc/zerolaunch/lib/util/signals"
	"github.com/spf13/cobra"
)

var log = logger.GetLogger()

var rootCmd = &cobra.Command{
	Use:   "zerolaunch",
	Short: "Author, validate and launch distributed-training configurations",
	Long: `zerolaunch manages the launch configuration documents consumed by a
DeepSpeed/Accelerate-style distributed training runtime: it writes the
canonical ZeRO stage-3 documents, validates them before a job burns
scheduler time, and launches the local worker processes with the
distributed environment the runtime expects.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a launch configuration document",
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, _ := cmd.Flags().GetString("preset")
		out, _ := cmd.Flags().GetString("output")
		cfg, err := config.FromPreset(preset)
		if err != nil {
			return err
		}
		if out == "-" {
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		}
		if err := config.WriteFile(out, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%s)\n", out, preset)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Parse and validate a launch configuration document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		for _, w := range cfg.Warnings() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		fmt.Printf("%s: valid\n", args[0])
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file values over defaults)",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.InitConfig()
		cfg, err := config.FromViper()
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env <config.yaml>",
	Short: "Print the environment rendered for one local worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		plan, err := launch.NewPlan(cfg)
		if err != nil {
			return err
		}
		localRank, _ := cmd.Flags().GetInt("local-rank")
		if localRank < 0 || localRank >= len(plan.Local) {
			return fmt.Errorf("local-rank %d is outside this machine's %d processes",
				localRank, len(plan.Local))
		}
		for k, v := range launch.EnvOverrides(cfg, plan, plan.Local[localRank]) {
			fmt.Printf("%s=%s\n", k, v)
		}
		return nil
	},
}

var launchCmd = &cobra.Command{
	Use:   "launch <config.yaml> -- <command> [args...]",
	Short: "Run the training command across this machine's worker processes",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadFile(args[0])
		if err != nil {
			return err
		}
		maxRestarts, _ := cmd.Flags().GetInt("max-restarts")
		l, err := launch.New(cfg, args[1:], launch.WithMaxRestarts(maxRestarts))
		if err != nil {
			return err
		}
		go signals.Handle()
		defer signals.StopHandle()
		log.WithField("job_id", l.JobID()).Debug("starting training job")
		if err := l.Run(context.Background()); err != nil {
			return err
		}
		fmt.Printf("job %s finished: %d processes on %d machine(s), command %q\n",
			l.JobID(), l.Plan().WorldSize, l.Plan().NumMachines, strings.Join(args[1:], " "))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "",
		"config file (default $HOME/.zerolaunch/config.yaml)")

	initCmd.Flags().String("preset", string(config.PresetZero3BF16),
		"preset to start from: "+strings.Join(config.PresetNames(), ", "))
	initCmd.Flags().StringP("output", "o", "-", "output path, or - for stdout")

	showCmd.Flags().Bool("json", false, "print as JSON")

	envCmd.Flags().Int("local-rank", 0, "local worker to render the environment for")

	launchCmd.Flags().Int("max-restarts", 0, "restarts allowed per failed worker")

	rootCmd.AddCommand(initCmd, validateCmd, showCmd, envCmd, launchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
