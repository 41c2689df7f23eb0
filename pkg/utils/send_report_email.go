package utils

import (
	"fmt"
	"html"
	"strings"
)

// ReportEmail wraps a plain-text financial report in a minimal HTML body.
func ReportEmail(username, timeframe, report string) (string, string) {
	subject := fmt.Sprintf("📊 Seu relatório financeiro (%s)", timeframe)

	escaped := strings.ReplaceAll(html.EscapeString(strings.TrimSpace(report)), "\n", "<br/>")

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="pt-BR">
	<head>
	<meta charset="UTF-8">
	<title>Relatório financeiro</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 640px; margin: 25px auto; background: #ffffff; border-radius: 12px; overflow: hidden; border-top: 5px solid #22c55e; }
		.content { padding: 20px 18px; font-size: 14px; line-height: 1.6; font-family: Menlo, Consolas, monospace; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="content">
			<p>Olá <b>%s</b>,</p>
			<p>%s</p>
		</div>
	</div>
	</body>
	</html>
	`, html.EscapeString(username), escaped)

	return subject, body
}
