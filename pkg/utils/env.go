package utils

import (
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func GetEnvDecimal(key string, def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

// GetEnvList splits a comma separated variable, dropping blanks.
func GetEnvList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
