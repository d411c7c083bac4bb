package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	html "github.com/gofiber/template/html/v2"

	"kicks/internal/domain"
	"kicks/internal/otp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Notifier renders the store's e-mails and hands them to a Service.
type Notifier struct {
	Mail     Service
	From     string
	FromName string
	// AdminTo receives new-order alerts; empty disables them.
	AdminTo []string

	views *html.Engine
}

func NewNotifier(svc Service, from, fromName string) (*Notifier, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	return &Notifier{Mail: svc, From: from, FromName: fromName, views: engine}, nil
}

func (n *Notifier) render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := n.views.Render(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *Notifier) send(ctx context.Context, to []string, subject, text, tmpl string, data map[string]any) error {
	body, err := n.render(tmpl, data)
	if err != nil {
		return err
	}
	return n.Mail.Send(ctx, Email{
		FromName: n.FromName,
		From:     n.From,
		To:       to,
		Subject:  subject,
		TextBody: text,
		HTMLBody: body,
	})
}

func (n *Notifier) SendOTP(ctx context.Context, name, email, code string, purpose otp.Purpose) error {
	subject, intro := "Verify your e-mail", "Use this code to verify your Kicks Don't Stink account:"
	if purpose == otp.PurposePasswordReset {
		subject, intro = "Reset your password", "Use this code to reset your password:"
	}
	mins := int(otp.TTL.Minutes())
	text := fmt.Sprintf("%s %s\nThis code expires in %d minutes.", intro, code, mins)
	return n.send(ctx, []string{email}, subject, text, "otp", map[string]any{
		"Name":           name,
		"Intro":          intro,
		"Code":           code,
		"ExpiresMinutes": mins,
	})
}

func (n *Notifier) SendOrderConfirmation(ctx context.Context, o *domain.Order) error {
	var text strings.Builder
	fmt.Fprintf(&text, "Order %s received.\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&text, "- %s (%s) x%d @ %s\n", it.ProductName, it.VariantDetails, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&text, "Total: %s\n", o.Pricing.Total.StringFixed(2))
	return n.send(ctx, []string{o.User.Email}, "Order confirmed: "+o.OrderNumber, text.String(),
		"order_confirmation", map[string]any{"Order": o})
}

func (n *Notifier) SendAdminAlert(ctx context.Context, o *domain.Order) error {
	if len(n.AdminTo) == 0 {
		return nil
	}
	text := fmt.Sprintf("New order %s from %s, total %s", o.OrderNumber, o.User.Email, o.Pricing.Total.StringFixed(2))
	return n.send(ctx, n.AdminTo, "New order "+o.OrderNumber, text, "admin_alert", map[string]any{"Order": o})
}
