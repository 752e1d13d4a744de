package chain

import (
    "strings"
    "text/template"
)

// Each stage prompt embeds a machine-readable description of the JSON
// object the model must return, and nothing else.

const refineFormatInstructions = `{
  "refined_question": "the question rewritten to be precise and self-contained (string)",
  "additional_context": "background the answerer should keep in mind (string)",
  "suggested_subquestions": ["smaller questions whose answers build up to the main one (array of strings)"]
}`

const qaFormatInstructions = `{
  "answer": "the answer to the question (string)",
  "confidence": 0.0,
  "supporting_points": ["key points supporting the answer (array of strings)"],
  "sub_question": "the sub-question you chose to address (string)",
  "sub_answer": "the answer to that sub-question (string)"
}`

var refinementRequired = []string{"refined_question", "additional_context", "suggested_subquestions"}
var qaRequired = []string{"answer", "confidence", "supporting_points", "sub_question", "sub_answer"}

var refineTmpl = template.Must(template.New("refine").Parse(`You refine questions before they are answered.

Question:
{{.Question}}

Rewrite the question so it is precise and answerable, add any context worth keeping, and propose sub-questions.

Return a single JSON object directly. Do not add any comments, explanations, leading words, or Markdown code blocks (like ` + "```json" + `).
Return strictly in the following format:
{{.FormatInstructions}}
`))

var qaTmpl = template.Must(template.New("qa").Parse(`Please answer the question below. Address the sub-question as part of your reasoning.

Question:
{{.Question}}

Sub-question:
{{.SubQuestion}}

Return a single JSON object directly. Do not add any comments, explanations, leading words, or Markdown code blocks (like ` + "```json" + `).
Return strictly in the following format:
{{.FormatInstructions}}
`))

func renderRefinePrompt(question string) (string, error) {
    var b strings.Builder
    err := refineTmpl.Execute(&b, map[string]string{
        "Question":           question,
        "FormatInstructions": refineFormatInstructions,
    })
    return b.String(), err
}

func renderQAPrompt(question, subQuestion string) (string, error) {
    var b strings.Builder
    err := qaTmpl.Execute(&b, map[string]string{
        "Question":           question,
        "SubQuestion":        subQuestion,
        "FormatInstructions": qaFormatInstructions,
    })
    return b.String(), err
}
