package prompt

import (
	"fmt"
	"strings"
)

// QuestionBuilder assembles the prompt for answering a user question
// against code snippets retrieved from the index.
type QuestionBuilder struct {
	question string
	context  []string
}

// NewQuestionBuilder creates a prompt builder for a single question.
func NewQuestionBuilder(question string, context []string) *QuestionBuilder {
	return &QuestionBuilder{
		question: question,
		context:  context,
	}
}

// Build creates the final prompt string.
func (b *QuestionBuilder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuestion(&prompt)

	return prompt.String()
}

func (b *QuestionBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	if len(b.context) == 0 {
		return
	}

	prompt.WriteString("<reference_material>\n")
	for i, chunk := range b.context {
		prompt.WriteString(fmt.Sprintf("--- snippet %d ---\n", i+1))
		prompt.WriteString(chunk)
		if !strings.HasSuffix(chunk, "\n") {
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *QuestionBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a C code analysis assistant helping the user understand the code they uploaded.\n")
	prompt.WriteString("Answer the user's question based on the reference snippets.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *QuestionBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the snippets provided\n")
	prompt.WriteString("2. Reference function and variable names exactly as they appear in the code\n")
	prompt.WriteString("3. If the snippets do not contain what is being asked, say so honestly\n")
	prompt.WriteString("4. Match the language the user asked in\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *QuestionBuilder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now answer the question based on the reference material:")
}

// SummaryBuilder assembles the prompt that condenses the findings of a
// research pipeline into a final answer.
type SummaryBuilder struct {
	question string
	sections []Section
}

// Section is one named piece of pipeline output to summarize.
type Section struct {
	Name    string
	Content string
}

// NewSummaryBuilder creates a prompt builder for a pipeline summary.
func NewSummaryBuilder(question string, sections []Section) *SummaryBuilder {
	return &SummaryBuilder{
		question: question,
		sections: sections,
	}
}

// Build creates the final prompt string.
func (b *SummaryBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<findings>\n")
	for _, s := range b.sections {
		prompt.WriteString(fmt.Sprintf("[%s]\n", s.Name))
		prompt.WriteString(s.Content)
		if !strings.HasSuffix(s.Content, "\n") {
			prompt.WriteString("\n")
		}
	}
	prompt.WriteString("</findings>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Summarize the findings above into a single concise answer to the user's question.\n")
	prompt.WriteString("Keep only the facts supported by the findings.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Write the summary now:")

	return prompt.String()
}
