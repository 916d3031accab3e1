package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/iosramgio/appkonveksimax-sub003/internal/domain"
)

// Gomail sends customer notifications over SMTP.
type Gomail struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, user, pass, from string) *Gomail {
	return &Gomail{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (m *Gomail) OrderStatusChanged(o *domain.Order) error {
	subject := fmt.Sprintf("Pesanan %s: %s", o.Code, o.Status)
	body := fmt.Sprintf(
		"Halo %s,<br><br>Status pesanan <b>%s</b> sekarang: <b>%s</b>.<br>Total: Rp%d.<br><br>Terima kasih.",
		o.CustomerName, o.Code, o.Status, o.Total,
	)
	return m.send(o.CustomerEmail, subject, body)
}

func (m *Gomail) PaymentVerified(o *domain.Order, p *domain.Payment) error {
	subject := fmt.Sprintf("Pembayaran pesanan %s diterima", o.Code)
	body := fmt.Sprintf(
		"Halo %s,<br><br>Pembayaran sebesar Rp%d untuk pesanan <b>%s</b> sudah kami terima.<br><br>Terima kasih.",
		o.CustomerName, p.Amount, o.Code,
	)
	return m.send(o.CustomerEmail, subject, body)
}

func (m *Gomail) PaymentRejected(o *domain.Order, p *domain.Payment, note string) error {
	subject := fmt.Sprintf("Pembayaran pesanan %s ditolak", o.Code)
	body := fmt.Sprintf(
		"Halo %s,<br><br>Bukti pembayaran sebesar Rp%d untuk pesanan <b>%s</b> tidak dapat kami verifikasi.<br>Alasan: %s<br><br>Silakan unggah ulang bukti pembayaran.",
		o.CustomerName, p.Amount, o.Code, note,
	)
	return m.send(o.CustomerEmail, subject, body)
}

func (m *Gomail) send(to, subject, body string) error {
	if to == "" {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}
