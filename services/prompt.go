package services

import (
	"fmt"
	"strings"
	"text/template"

	"coursefaq/models"
)

const promptTemplate = `You're a course teaching assistant.
Answer the user QUESTION based on CONTEXT - the documents retrieved from our FAQ database.
Don't use other information outside of the provided CONTEXT.

QUESTION: {{.Question}}

CONTEXT:

{{.Context}}`

var promptTmpl = template.Must(template.New("prompt").Parse(promptTemplate))

// PromptData 是提示词模板的参数
type PromptData struct {
	Question string
	Context  string
}

// BuildContext 将检索结果逐条渲染为三行文本块，块之间空一行
func BuildContext(records []models.FAQRecord) string {
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Section: %s\nQuestion: %s\nAnswer: %s", rec.Section, rec.Question, rec.Text)
	}
	return sb.String()
}

// BuildPrompt embeds the question and the context block into the fixed
// instruction template. Nothing is truncated.
func BuildPrompt(question, context string) string {
	var sb strings.Builder
	// the template is fixed and only references string fields, so Execute
	// can only fail on a programming error
	if err := promptTmpl.Execute(&sb, PromptData{Question: question, Context: context}); err != nil {
		panic(err)
	}
	return sb.String()
}
