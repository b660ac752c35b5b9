package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/qa"
	"github.com/ziadkadry99/docqa/internal/session"
)

var shellCmd = &cobra.Command{
	Use:   "shell [files...]",
	Short: "Index documents and ask questions interactively",
	Long: `Loads and indexes the given files (globs such as docs/**/*.pdf are expanded),
then prompts for questions until you type exit or quit, or press Ctrl-D.
Each answer is followed by the passages it was based on.

With --watch the index is rebuilt whenever one of the files changes; a
failed rebuild keeps the previous index.`,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().String("index", "", "use a saved index directory instead of files")
	shellCmd.Flags().Bool("watch", false, "rebuild the index when input files change")
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	indexDir, _ := cmd.Flags().GetString("index")
	watch, _ := cmd.Flags().GetBool("watch")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	p, err := newPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess, paths, err := p.openSession(ctx, indexDir, args, os.Stderr)
	if err != nil {
		return err
	}

	if watch {
		if len(paths) == 0 {
			return fmt.Errorf("--watch needs input files")
		}
		go func() {
			err := sess.Watch(ctx, paths, session.DefaultDebounce, logger, func(summary *session.Summary, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "\nRebuild failed, still using the previous index: %v\n", err)
					return
				}
				fmt.Fprintf(os.Stderr, "\nIndex rebuilt: %d segment(s)\n", summary.Segments)
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Watch stopped: %v\n", err)
			}
		}()
	}

	fmt.Println("Ask a question about your documents. Type exit or quit to leave.")
	for {
		prompt := promptui.Prompt{Label: "Question"}
		question, err := prompt.Run()
		if errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading question: %w", err)
		}

		question = strings.TrimSpace(question)
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		res, err := sess.Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printResult(os.Stdout, res)
	}
}

// printResult writes the answer followed by each source passage.
func printResult(w io.Writer, res *qa.Result) {
	fmt.Fprintf(w, "\n%s\n", res.Answer)
	if len(res.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, m := range res.Sources {
		fmt.Fprintf(w, "\n%s\n", qa.SourceLabel(i+1, m.Segment))
		fmt.Fprintf(w, "%s\n", qa.Preview(m.Segment.Text, qa.PreviewLength))
	}
	fmt.Fprintln(w)
}
