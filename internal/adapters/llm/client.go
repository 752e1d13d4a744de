package llm

import (
    "context"
    "errors"
    "net/http"
    "strings"

    openai "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/openai/openai-go/v2/shared"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/rs/zerolog"
)

// Client is a synchronous prompt-in/text-out completion client. It talks
// the OpenAI chat API, which Ollama exposes under /v1, so the same client
// serves both a local model and a hosted one.
type Client struct {
    model string
    cli   openai.Client
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    base := strings.TrimRight(cfg.OllamaBaseURL, "/") + "/v1"
    cli := openai.NewClient(
        option.WithBaseURL(base),
        // Ollama ignores the key but the SDK requires one.
        option.WithAPIKey("ollama"),
        option.WithHTTPClient(&http.Client{ Timeout: cfg.OllamaTimeout }),
    )
    return &Client{ model: cfg.OllamaModel, cli: cli, log: log }
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
    c.log.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("llm completion call")
    params := openai.ChatCompletionNewParams{
        Model: shared.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.UserMessage(prompt),
        },
    }
    resp, err := c.cli.Chat.Completions.New(ctx, params)
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("llm: no choices") }
    return resp.Choices[0].Message.Content, nil
}
