package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/logger"
	"github.com/f3rmion/suiwen/internal/pinyin"
	"github.com/f3rmion/suiwen/internal/speech"
	"github.com/f3rmion/suiwen/internal/stroke"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <characters>",
	Short: "Look up characters in the dictionary",
	Long: `Look up Chinese characters and display their:
  - Pinyin and meaning
  - Level and difficulty
  - Radical, structure and stroke order
  - Example words and sentence

Characters outside the dictionary show their pinyin readings only.

Example:
  suiwen lookup 学
  suiwen lookup 京剧 --strokes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Bool("strokes", false, "animate the stroke order")
	lookupCmd.Flags().Bool("speak", false, "read each character aloud")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, d, err := setup("", "")
	if err != nil {
		return err
	}

	animate, _ := cmd.Flags().GetBool("strokes")
	speak, _ := cmd.Flags().GetBool("speak")

	var player *speech.Player
	if speak {
		player = newPlayer(cfg, logger.Named("lookup"))
	}
	presenter := detail.NewPresenter(d, player, stroke.Animator{})
	style := stroke.DefaultStyle()
	style.DelayBetweenStrokes = cfg.Stroke.Delay
	presenter.SetStyle(style)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	parser := pinyin.NewParser()
	input := strings.Join(args, "")

	fmt.Fprintf(out, "Looking up: %s\n\n", input)

	for _, r := range input {
		char := string(r)
		if !d.HasRune(r) {
			printReadings(out, char, parser)
			continue
		}

		printEntry(out, d.Lookup(char))
		if speak {
			presenter.SpeakOnce(char)
			player.Wait()
		}
		if animate {
			if err := animateStrokes(ctx, out, presenter, char); err != nil {
				return err
			}
		}
		fmt.Fprintln(out)
	}

	return nil
}

func printReadings(w io.Writer, char string, parser *pinyin.Parser) {
	fmt.Fprintf(w, "Character: %s (not in dictionary)\n", char)
	if readings := parser.Readings(char); len(readings) > 0 {
		fmt.Fprintf(w, "  Pinyin: %s\n", strings.Join(readings, ", "))
	} else {
		fmt.Fprintf(w, "  Pinyin: (not found)\n")
	}
	fmt.Fprintln(w)
}

func printEntry(w io.Writer, e *hanzi.DictionaryEntry) {
	fmt.Fprintf(w, "Character: %s\n", e.Character)
	fmt.Fprintf(w, "  Pinyin:     %s\n", e.Pinyin)
	fmt.Fprintf(w, "  Meaning:    %s\n", e.Meaning)
	fmt.Fprintf(w, "  Level:      %s\n", e.Level.Label())
	fmt.Fprintf(w, "  Difficulty: %s\n", e.Difficulty.Label())
	if e.Radical != "" {
		fmt.Fprintf(w, "  Radical:    %s\n", e.Radical)
	}
	if e.Structure != "" {
		fmt.Fprintf(w, "  Structure:  %s\n", e.Structure)
	}
	fmt.Fprintf(w, "  Strokes:    %d (%s)\n", len(e.Strokes), strings.Join(e.Strokes, " "))
	if len(e.Examples) > 0 {
		fmt.Fprintf(w, "  Examples:   %s\n", strings.Join(e.Examples, "、"))
	}
	if e.Sentence != "" {
		fmt.Fprintf(w, "  Sentence:   %s\n", e.Sentence)
	}
}

// animateStrokes draws the stroke order one stroke at a time.
func animateStrokes(ctx context.Context, w io.Writer, p *detail.Presenter, char string) error {
	fmt.Fprint(w, "  Writing:   ")
	err := p.AnimateStrokes(ctx, char,
		func(i int, name string) {
			fmt.Fprintf(w, " %d.%s", i+1, name)
		},
		func() {
			fmt.Fprintln(w, " ✓")
		})
	if err != nil {
		fmt.Fprintln(w)
		return fmt.Errorf("animating %s: %w", char, err)
	}
	return nil
}
