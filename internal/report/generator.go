// Package report turns a user's transactions into a natural-language
// financial report, either from a local template or a chat-completion API.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finance_io/pkg/utils"
)

// Generator renders a report for already aggregated data.
type Generator interface {
	Generate(ctx context.Context, data FinancialData) (string, error)
}

var ErrQuotaExceeded = errors.New("monthly report limit reached")

const (
	EngineLocal  = "local"
	EngineRemote = "remote"
)

// NewGeneratorFromEnv picks the engine named by REPORT_ENGINE.
// The remote engine requires AI_API_KEY.
func NewGeneratorFromEnv() (Generator, error) {
	engine := strings.ToLower(utils.GetEnv("REPORT_ENGINE", EngineLocal))
	switch engine {
	case EngineLocal:
		return NewTemplateGenerator(nil), nil
	case EngineRemote:
		return NewChatGeneratorFromEnv()
	}
	return nil, fmt.Errorf("unknown REPORT_ENGINE %q", engine)
}
