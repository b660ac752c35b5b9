package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docqa/internal/qa"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question about documents",
	Long: `Indexes the files given with -f (or loads a saved index with --index)
and answers a single question.`,
	Example: `  docqa ask -f report.pdf -f notes.txt "What was decided?"
  docqa ask --index ./report.idx --json "Who signed the contract?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArrayP("file", "f", nil, "document to index (repeatable, globs allowed)")
	askCmd.Flags().String("index", "", "use a saved index directory instead of files")
	askCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	files, _ := cmd.Flags().GetStringArray("file")
	indexDir, _ := cmd.Flags().GetString("index")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if indexDir != "" && len(files) > 0 {
		return fmt.Errorf("use either --file or --index, not both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	sess, _, err := p.openSession(ctx, indexDir, files, os.Stderr)
	if err != nil {
		return err
	}

	res, err := sess.Ask(ctx, question)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printResultJSON(os.Stdout, res)
	}
	printResult(os.Stdout, res)
	return nil
}

type sourceJSON struct {
	Rank    int     `json:"rank"`
	Score   float32 `json:"score"`
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Preview string  `json:"preview"`
}

type resultJSON struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Sources  []sourceJSON `json:"sources"`
}

func printResultJSON(w io.Writer, res *qa.Result) error {
	out := resultJSON{
		Question: res.Question,
		Answer:   res.Answer,
		Sources:  make([]sourceJSON, 0, len(res.Sources)),
	}
	for i, m := range res.Sources {
		out.Sources = append(out.Sources, sourceJSON{
			Rank:    i + 1,
			Score:   m.Score,
			Source:  m.Segment.Metadata.Source,
			Page:    m.Segment.Metadata.Page,
			Preview: qa.Preview(m.Segment.Text, qa.PreviewLength),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
