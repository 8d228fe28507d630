package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chaz8081/gostt-batch/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and download whisper model weights",
}

var modelsDevice string

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show catalog models and which weights are present",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		device := deviceOrDefault(cmd)
		entries, err := models.NewStore(cfg.ModelsDir).List(device)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tPRECISION\tSIZE\tPRESENT\tFILE")
		for _, e := range entries {
			present := "-"
			if e.Present {
				present = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t~%d MB\t%s\t%s\n", e.Spec.Name, e.Spec.Precision, e.Spec.SizeMB, present, e.Spec.FileName())
		}
		return tw.Flush()
	},
}

var modelsDownloadCmd = &cobra.Command{
	Use:   "download <model>",
	Short: "Download weights for a model size",
	Long: `Downloads ggml weights from HuggingFace into models_dir. CPU gets quantized
weights, cuda and metal get float16 weights.

Examples:
  gostt-batch models download large-v2
  gostt-batch models download medium --device cuda`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := models.Resolve(args[0], deviceOrDefault(cmd))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := models.NewStore(cfg.ModelsDir)
		store.Progress = cmd.ErrOrStderr()
		path, err := store.Download(ctx, spec)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd, modelsDownloadCmd)
	modelsCmd.PersistentFlags().StringVar(&modelsDevice, "device", "", "device the weights are for: cpu, cuda, metal (default from config)")
}

func deviceOrDefault(cmd *cobra.Command) string {
	if cmd.Flags().Changed("device") {
		return modelsDevice
	}
	return cfg.Device
}
