/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package chain

import (
    "context"
    "strings"

    "github.com/rs/zerolog"
)

// Completer is the one capability the chain needs from an LLM backend.
type Completer interface {
    Complete(ctx context.Context, prompt string) (string, error)
}

// RefinementOutput is the structured-output contract of the first stage.
type RefinementOutput struct {
    RefinedQuestion       string   `json:"refined_question"`
    AdditionalContext     string   `json:"additional_context"`
    SuggestedSubquestions []string `json:"suggested_subquestions"`
}

// QAOutput is the structured-output contract of the second stage.
type QAOutput struct {
    Answer           string   `json:"answer"`
    Confidence       float64  `json:"confidence"`
    SupportingPoints []string `json:"supporting_points"`
    SubQuestion      string   `json:"sub_question"`
    SubAnswer        string   `json:"sub_answer"`
}

// Chain is the fixed two-stage pipeline: question refinement feeding
// structured QA. The shape is linear with no branching, so the stages are
// composed by plain function calls rather than a runnable abstraction.
type Chain struct {
    llm Completer
    log zerolog.Logger
}

func New(llm Completer, log zerolog.Logger) *Chain {
    return &Chain{llm: llm, log: log}
}

// Refine runs the first stage only.
func (c *Chain) Refine(ctx context.Context, question string) (RefinementOutput, error) {
    prompt, err := renderRefinePrompt(question)
    if err != nil { return RefinementOutput{}, err }
    raw, err := c.llm.Complete(ctx, prompt)
    if err != nil { return RefinementOutput{}, err }
    var out RefinementOutput
    if err := parseStrict(raw, refinementRequired, &out); err != nil {
        return RefinementOutput{}, err
    }
    return out, nil
}

// Answer runs both stages. The boundary between them renames fields:
// refined_question becomes the stage-2 question, suggested_subquestions
// become its sub_question. A structured-output violation in either stage
// surfaces unchanged; there is no retry or repair.
func (c *Chain) Answer(ctx context.Context, question string) (QAOutput, error) {
    ref, err := c.Refine(ctx, question)
    if err != nil { return QAOutput{}, err }
    c.log.Debug().Str("refined", ref.RefinedQuestion).Int("subquestions", len(ref.SuggestedSubquestions)).Msg("chain stage 1 done")

    prompt, err := renderQAPrompt(ref.RefinedQuestion, strings.Join(ref.SuggestedSubquestions, "; "))
    if err != nil { return QAOutput{}, err }
    raw, err := c.llm.Complete(ctx, prompt)
    if err != nil { return QAOutput{}, err }
    var out QAOutput
    if err := parseStrict(raw, qaRequired, &out); err != nil {
        return QAOutput{}, err
    }
    return out, nil
}
