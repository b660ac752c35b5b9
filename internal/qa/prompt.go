package qa

import (
	"strings"

	"github.com/ziadkadry99/docqa/internal/index"
)

const (
	contextPlaceholder  = "{context}"
	questionPlaceholder = "{question}"

	// contextDelimiter separates retrieved segments inside {context}.
	contextDelimiter = "\n\n"
)

// DefaultPromptTemplate asks the model to answer from the supplied context and
// to say so when it has to guess.
const DefaultPromptTemplate = `You are a helpful AI assistant who answers questions based on the provided context.
Your task is to provide accurate answers to the user's questions.
If the answer is not present in the context, you can take a guess based on the context and provide a reasonable answer.
Don't forget to mention that you are guessing.
Use the following pieces of context to answer the question.
{context}
Question: {question}
Answer:`

// ValidateTemplate reports whether tmpl carries both placeholders.
func ValidateTemplate(tmpl string) bool {
	return strings.Contains(tmpl, contextPlaceholder) && strings.Contains(tmpl, questionPlaceholder)
}

// RenderPrompt substitutes the retrieved segment texts, in retrieval order,
// and the literal question into tmpl. Placeholders are replaced in a single
// pass, so braces inside documents or the question are left alone.
func RenderPrompt(tmpl, question string, matches []index.Match) string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Segment.Text
	}
	r := strings.NewReplacer(
		contextPlaceholder, strings.Join(texts, contextDelimiter),
		questionPlaceholder, question,
	)
	return r.Replace(tmpl)
}
