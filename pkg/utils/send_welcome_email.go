package utils

import (
	"fmt"
	"time"
)

func WelcomeEmail(username string) (string, string) {
	subject := fmt.Sprintf("🎉 Bem-vindo ao Finance.io, %s!", username)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="pt-BR">
	<head>
		<meta charset="UTF-8" />
		<meta name="viewport" content="width=device-width, initial-scale=1.0" />
		<title>Bem-vindo ao Finance.io</title>
		<style>
			body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #0b0b0b; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 12px; overflow: hidden; border-top: 5px solid #22c55e; }
			.header { background-color: #111827; color: #ffffff; text-align: center; padding: 24px 20px; }
			.header h1 { margin: 0; font-size: 22px; }
			.content { padding: 28px 24px; color: #333; }
			.message { font-size: 15px; line-height: 1.6; }
			.footer { text-align: center; font-size: 12px; color: #888; padding: 16px; background: #f9fafb; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Olá, %s 👋</h1></div>
			<div class="content">
				<p class="message">Sua conta no <b>Finance.io</b> foi criada com sucesso.</p>
				<ul>
					<li>💰 Registre receitas e despesas em segundos.</li>
					<li>🏷️ Organize tudo com categorias personalizadas.</li>
					<li>📊 Acompanhe sua saúde financeira no dashboard.</li>
					<li>🧠 Gere relatórios inteligentes (5 por mês no plano gratuito).</li>
				</ul>
			</div>
			<div class="footer">&copy; %d Finance.io</div>
		</div>
	</body>
	</html>
	`, username, time.Now().Year())

	return subject, body
}

func SendWelcomeEmail(m Mailer, to, username string) {
	subject, body := WelcomeEmail(username)
	SendAsync(m, to, subject, body)
}
