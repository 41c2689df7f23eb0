package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatGenerator_Generate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","model":"deepseek-chat",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Relatório gerado"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := NewChatGenerator("secret", srv.URL, "deepseek-chat")
	out, err := g.Generate(context.Background(), sampleData())

	require.NoError(t, err)
	assert.Equal(t, "Relatório gerado", out)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "Receita total: R$ 5000.00")
	assert.Contains(t, got.Messages[1].Content, "Maiores gastos:")
}

func TestChatGenerator_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewChatGenerator("secret", srv.URL, "m").Generate(context.Background(), sampleData())
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestChatGenerator_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewChatGenerator("wrong", srv.URL, "m").Generate(context.Background(), sampleData())
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt(sampleData())
	require.NoError(t, err)

	assert.Contains(t, p, "período (mensal)")
	assert.Contains(t, p, "Despesas totais: R$ 2500.00")
	assert.Contains(t, p, "Saldo: R$ 2500.00")
	assert.Contains(t, p, `"Moradia": "1800"`)
	assert.Contains(t, p, "INSTRUÇÕES:")
}

func TestNewGeneratorFromEnv(t *testing.T) {
	t.Setenv("REPORT_ENGINE", "local")
	g, err := NewGeneratorFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &TemplateGenerator{}, g)

	t.Setenv("REPORT_ENGINE", "remote")
	t.Setenv("AI_API_KEY", "")
	_, err = NewGeneratorFromEnv()
	assert.Error(t, err)

	t.Setenv("AI_API_KEY", "k")
	g, err = NewGeneratorFromEnv()
	require.NoError(t, err)
	assert.IsType(t, &ChatGenerator{}, g)

	t.Setenv("REPORT_ENGINE", "magic")
	_, err = NewGeneratorFromEnv()
	assert.Error(t, err)
}
