package utils

import (
	"fmt"
	"time"
)

func ProActivatedEmail(username, provider, amount string, date time.Time) (string, string) {
	subject := "⚡ Seu plano PRO foi ativado!"

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="pt-BR">
	<head>
	<meta charset="UTF-8">
	<title>Plano PRO ativado</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; margin: 0; padding: 0; color: #333; }
		.container { max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; overflow: hidden; border-top: 5px solid #22c55e; }
		.header { background-color: #111827; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 20px 18px; font-size: 14px; line-height: 1.6; }
		.amount-box { background: #f2fdf6; border: 1px solid #bfe7cb; border-radius: 8px; padding: 12px 14px; margin: 16px 0; text-align: center; }
	</style>
	</head>
	<body>
	<div class="container">
		<div class="header"><h1>Pagamento confirmado</h1></div>
		<div class="content">
			<p>Olá <b>%s</b>, seu plano PRO está ativo. Aproveite relatórios ilimitados!</p>
			<div class="amount-box">
				<b>%s</b> via %s<br/>
				<small>%s</small>
			</div>
		</div>
	</div>
	</body>
	</html>
	`, username, amount, provider, date.Format("02/01/2006 15:04"))

	return subject, body
}

func SendProActivatedEmail(m Mailer, to, username, provider, amount string) {
	subject, body := ProActivatedEmail(username, provider, amount, time.Now())
	SendAsync(m, to, subject, body)
}
