package mailer

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"
)

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), addr)
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func buildMIMEMessage(e Email, msgIDDomain string) (string, error) {
	switch {
	case len(e.To) == 0:
		return "", errors.New("mailer: at least one recipient required")
	case e.From == "":
		return "", errors.New("mailer: from address required")
	case e.Subject == "":
		return "", errors.New("mailer: subject required")
	case e.TextBody == "" && e.HTMLBody == "":
		return "", errors.New("mailer: text or html body required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", randomHex(12), msgIDDomain)
	fmt.Fprintf(&b, "From: %s\r\n", formatAddress(e.FromName, e.From))
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.To, ", "))
	if len(e.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(e.Cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	for k, v := range e.Headers {
		if k != "" && v != "" {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}

	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		boundary := "kds_" + randomHex(16)
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.TextBody)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, e.HTMLBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	case e.HTMLBody != "":
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(e.TextBody)
	}
	return b.String(), nil
}
