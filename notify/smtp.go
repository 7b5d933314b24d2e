package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// SMTPDispatcher sends notification mails over plain SMTP.
type SMTPDispatcher struct {
	Host string
	Port string
	From string
	User string
	Pass string
	Log  zerolog.Logger
}

func (d *SMTPDispatcher) Send(ctx context.Context, ev Event) error {
	if ev.To == "" {
		d.Log.Debug().Str("kind", ev.Kind).Str("ref", ev.Ref).Msg("no recipient, skipping notification")
		return nil
	}

	msg := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", ev.To, ev.Subject, ev.Body)

	var auth smtp.Auth
	if d.User != "" {
		auth = smtp.PlainAuth("", d.User, d.Pass, d.Host)
	}
	addr := d.Host + ":" + d.Port

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, d.From, []string{ev.To}, []byte(msg))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
