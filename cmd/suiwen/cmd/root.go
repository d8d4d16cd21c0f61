// Package cmd contains all CLI commands for suiwen.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/suiwen/internal/config"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/logger"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/f3rmion/suiwen/internal/speech"
	"github.com/f3rmion/suiwen/internal/tui"
	"github.com/f3rmion/suiwen/internal/tui/bigchar"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "suiwen",
	Short: "随文识字 - learn Chinese characters while reading",
	Long: `suiwen marks the characters of a text that are in its dictionary and
lets you study them in place: pinyin, meaning, stroke order, examples and
spoken pronunciation.

Mastered characters and the vocabulary notebook are kept per session and
can be exported as learning data or as an Anki deck.

Running 'suiwen' without arguments launches the interactive TUI.`,
	RunE:         runTUI,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default is $HOME/.config/suiwen)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.Flags().String("restore", "", "learning data file to restore on start")
}

// initConfig resolves the config directory.
func initConfig() {
	if cfgDir != "" {
		viper.Set("config_dir", cfgDir)
		return
	}

	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
		os.Exit(1)
	}
	viper.Set("config_dir", dir)
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadConfig reads config.yaml from the config directory. --verbose forces
// debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigDir(), "")
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// setup loads the config, starts logging in format to output and loads the
// dictionary.
func setup(format, output string) (*config.Config, *dict.Dictionary, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if format == "" {
		format = cfg.Log.Format
	}
	if err := logger.Init(cfg.Log.Level, format, output); err != nil {
		return nil, nil, err
	}

	d, err := dict.Load(cfg.Dictionary.Extra...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading dictionary: %w", err)
	}
	logger.L().Debug("dictionary loaded",
		zap.Int("entries", d.Size()),
		zap.Strings("extra", cfg.Dictionary.Extra))
	for _, w := range d.Warnings() {
		logger.L().Warn("unexpected dictionary reading",
			zap.String("source", w.Source),
			zap.String("char", w.Character),
			zap.String("detail", w.Message))
	}

	return cfg, d, nil
}

// newPlayer returns a speech player for the configured TTS command. Without
// one, speech is silently disabled.
func newPlayer(cfg *config.Config, log *zap.Logger) *speech.Player {
	synth, err := speech.NewSynthesizer(cfg.Speech.Command, cfg.Speech.Voice, cfg.Speech.WPM)
	if err != nil {
		log.Warn("speech disabled", zap.Error(err))
	}
	return speech.NewPlayer(synth, speech.WithLogger(log.Named("speech")))
}

// runTUI launches the terminal reader.
func runTUI(cmd *cobra.Command, args []string) error {
	dir := getConfigDir()
	if err := config.EnsureConfigDir(dir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	cfg, d, err := setup("console", config.LogFile(dir))
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.L()

	var sopts []session.Option
	if cfg.Reader.DefaultText != "" {
		sopts = append(sopts, session.WithText(cfg.Reader.DefaultText))
	}
	sess := session.New(d, sopts...)

	if path, _ := cmd.Flags().GetString("restore"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening learning data: %w", err)
		}
		snap, err := fileio.ReadSnapshot(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sess.Restore(snap)
		log.Info("learning data restored", zap.String("path", path), zap.Int("vocab", len(snap.Vocab)))
	}

	var fonts []string
	if cfg.Reader.Font != "" {
		fonts = append(fonts, cfg.Reader.Font)
	}
	renderer, err := bigchar.New(fonts...)
	if err != nil {
		log.Info("big glyph rendering disabled", zap.Error(err))
		renderer = nil
	}

	player := newPlayer(cfg, log)
	defer player.Stop()

	p := tea.NewProgram(
		tui.NewApp(tui.Options{
			Dict:     d,
			Config:   cfg,
			Player:   player,
			Session:  sess,
			Renderer: renderer,
			Log:      log.Named("tui"),
		}),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
