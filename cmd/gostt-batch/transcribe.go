package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/gostt-batch/internal/config"
	"github.com/chaz8081/gostt-batch/internal/media"
	"github.com/chaz8081/gostt-batch/internal/models"
	"github.com/chaz8081/gostt-batch/internal/pipeline"
	"github.com/chaz8081/gostt-batch/internal/transcribe"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Resample an audio file and write its transcript",
	Long: `Resamples the file to 16 kHz mono with ffmpeg, transcribes it with whisper and
writes the joined segment text to transcriptions/<label>_<d>_<m>_<y>.txt.

Examples:
  gostt-batch transcribe ./lss13.aac --label lss
  gostt-batch transcribe ./extragal29.aac --label extragalactica --device cuda --model medium`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

var (
	trLabel      string
	trDevice     string
	trModel      string
	trLanguage   string
	trTask       string
	trBeamSize   int
	trBestOf     int
	trThreads    uint
	trFFmpeg     string
	trNoDownload bool
)

func init() {
	rootCmd.AddCommand(transcribeCmd)
	f := transcribeCmd.Flags()
	f.StringVarP(&trLabel, "label", "l", "", "prefix for output file names (required)")
	f.StringVar(&trDevice, "device", "", "inference device: cpu, cuda, metal (default from config)")
	f.StringVarP(&trModel, "model", "m", "", "whisper model size, e.g. large-v2 (default from config)")
	f.StringVar(&trLanguage, "language", "", "spoken language code (default from config)")
	f.StringVar(&trTask, "task", "", "transcribe or translate (default from config)")
	f.IntVar(&trBeamSize, "beam-size", 0, "beam search width (default from config)")
	f.IntVar(&trBestOf, "best-of", 0, "candidates when sampling (default from config)")
	f.UintVar(&trThreads, "threads", 0, "inference threads, 0 picks one per CPU on cpu")
	f.StringVar(&trFFmpeg, "ffmpeg", "", "ffmpeg binary (default from config)")
	f.BoolVar(&trNoDownload, "no-download", false, "fail instead of downloading missing model weights")
	_ = transcribeCmd.MarkFlagRequired("label")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	applyTranscribeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := models.NewStore(cfg.ModelsDir)
	store.Progress = cmd.ErrOrStderr()

	runner := pipeline.NewRunner(media.NewFFmpeg(cfg.FFmpeg), pipeline.WhisperLoader(store, cfg.Download))
	runner.Options = transcribe.Options{
		Language: cfg.Transcribe.Language,
		Task:     transcribe.Task(cfg.Transcribe.Task),
		BeamSize: cfg.Transcribe.BeamSize,
		BestOf:   cfg.Transcribe.BestOf,
		Threads:  cfg.Transcribe.Threads,
	}
	runner.RecordsDir = cfg.Output.RecordsDir
	runner.TranscriptionsDir = cfg.Output.TranscriptionsDir
	runner.Progress = cmd.ErrOrStderr()

	start := time.Now()
	res, err := runner.Run(ctx, pipeline.Job{
		Source: args[0],
		Label:  trLabel,
		Device: cfg.Device,
		Model:  cfg.Model,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", res.TranscriptPath)
	fmt.Fprintf(cmd.ErrOrStderr(), "Transcribed %s of audio in %s (%d segments)\n",
		res.Duration.Round(time.Second), time.Since(start).Round(time.Second), res.Segments)
	return nil
}

// applyTranscribeFlags overrides config values with flags set on cmd.
func applyTranscribeFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("device") {
		c.Device = trDevice
	}
	if f.Changed("model") {
		c.Model = trModel
	}
	if f.Changed("language") {
		c.Transcribe.Language = trLanguage
	}
	if f.Changed("task") {
		c.Transcribe.Task = trTask
	}
	if f.Changed("beam-size") {
		c.Transcribe.BeamSize = trBeamSize
	}
	if f.Changed("best-of") {
		c.Transcribe.BestOf = trBestOf
	}
	if f.Changed("threads") {
		c.Transcribe.Threads = trThreads
	}
	if f.Changed("ffmpeg") {
		c.FFmpeg = trFFmpeg
	}
	if trNoDownload {
		c.Download = false
	}
}
