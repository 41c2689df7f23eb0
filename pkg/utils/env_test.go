package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FIO_STR", "value")
	t.Setenv("FIO_INT", "7")
	t.Setenv("FIO_BAD_INT", "seven")
	t.Setenv("FIO_DEC", "19.90")
	t.Setenv("FIO_LIST", " https://a.example , ,https://b.example")
	t.Setenv("FIO_BLANK_LIST", " , ")

	assert.Equal(t, "value", GetEnv("FIO_STR", "def"))
	assert.Equal(t, "def", GetEnv("FIO_UNSET", "def"))
	assert.Equal(t, 7, GetEnvInt("FIO_INT", 5))
	assert.Equal(t, 5, GetEnvInt("FIO_BAD_INT", 5))
	assert.True(t, GetEnvDecimal("FIO_DEC", decimal.Zero).Equal(decimal.RequireFromString("19.9")))
	assert.True(t, GetEnvDecimal("FIO_UNSET", decimal.NewFromInt(3)).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetEnvList("FIO_LIST", nil))
	assert.Equal(t, []string{"d"}, GetEnvList("FIO_BLANK_LIST", []string{"d"}))
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 20},
		{"?page=3&limit=10", 3, 10},
		{"?page=0&limit=-1", 1, 20},
		{"?page=x&limit=1000", 1, maxPageSize},
	}
	for _, tt := range tests {
		page, limit := GetPaginationParams(httptest.NewRequest("GET", "/transactions/"+tt.query, nil))
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.limit, limit, tt.query)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel("verbose"))
}
