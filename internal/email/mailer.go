// Package email renders and dispatches the admin notification for new
// leads through the transactional email provider's REST API. Dispatch is
// best-effort by design: the caller logs failures and moves on, because
// the lead row has already been persisted.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// DefaultEndpoint is the provider's message-send endpoint (Resend).
const DefaultEndpoint = "https://api.resend.com/emails"

// LeadMessage holds the fields rendered into the notification email.
type LeadMessage struct {
	LeadName      string
	LeadDocument  string
	LeadPhone     string
	LeadEmail     string
	PropertyID    uint64
	PropertyTitle string
	Message       string
	Resubmission  bool
	ReceivedAt    string
}

// leadTemplate is a compact rendition of the site's notification email:
// the verified-submission banner, the lead's data rows and a WhatsApp
// deep link so the admin can reply in one tap.
var leadTemplate = template.Must(template.New("lead").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family:'Courier New',monospace;background-color:#F2EFE9;padding:20px">
    <div style="max-width:600px;margin:0 auto;background:#fff;border:4px solid #2C2621">
      <div style="background:#2C2621;color:#fff;padding:24px;text-align:center">
        <h1 style="margin:0;font-size:22px;text-transform:uppercase;letter-spacing:2px">Nuevo lead verificado</h1>
      </div>
      <div style="padding:24px">
        {{if .Resubmission}}<p style="background:#fff3cd;border-left:4px solid #ffc107;padding:12px">Este DNI ya había enviado una solicitud; los datos fueron actualizados y el lead volvió a PENDIENTE.</p>{{end}}
        <p style="background:#d4edda;border-left:4px solid #28a745;padding:12px">El usuario proporcionó su DNI y acepta ser verificado antes del contacto.</p>
        <table style="width:100%;border:2px solid #2C2621;padding:12px">
          <tr><td><strong>Nombre</strong></td><td>{{.LeadName}}</td></tr>
          <tr><td><strong>DNI</strong></td><td>{{.LeadDocument}}</td></tr>
          <tr><td><strong>WhatsApp</strong></td><td>{{.LeadPhone}}</td></tr>
          {{if .LeadEmail}}<tr><td><strong>Email</strong></td><td>{{.LeadEmail}}</td></tr>{{end}}
          <tr><td><strong>Propiedad</strong></td><td>{{.PropertyTitle}}</td></tr>
          {{if .Message}}<tr><td><strong>Mensaje</strong></td><td>{{.Message}}</td></tr>{{end}}
        </table>
        <p style="text-align:center;margin:24px 0">
          <a href="{{.WhatsAppURL}}" style="background:#25D366;color:#fff;padding:12px 24px;text-decoration:none;border:2px solid #2C2621;text-transform:uppercase;font-weight:bold">Contactar por WhatsApp</a>
        </p>
      </div>
      <div style="background:#2C2621;color:#fff;padding:14px;text-align:center;font-size:12px">
        Pecho's Inmobiliaria · {{.ReceivedAt}}
      </div>
    </div>
  </body>
</html>`))

// Mailer dispatches notification emails. An empty APIKey disables dispatch
// (the render still runs so template errors show up in development).
type Mailer struct {
	Endpoint string
	APIKey   string
	From     string
	AdminTo  string
	client   *http.Client
}

func NewMailer(apiKey, from, adminTo string) *Mailer {
	return &Mailer{
		Endpoint: DefaultEndpoint,
		APIKey:   apiKey,
		From:     from,
		AdminTo:  adminTo,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// sendReq is the provider's message payload.
type sendReq struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendLeadNotification renders the notification email for msg and posts it
// to the provider. Returns an error on render, transport or non-2xx
// provider responses.
func (m *Mailer) SendLeadNotification(ctx context.Context, msg LeadMessage) error {
	html, err := m.render(msg)
	if err != nil {
		return fmt.Errorf("render lead email: %w", err)
	}
	if m.APIKey == "" {
		log.Printf("email: no API key configured, skipping dispatch for lead of %q", msg.LeadName)
		return nil
	}

	subject := fmt.Sprintf("Nuevo lead: %s interesado en %s", msg.LeadName, msg.PropertyTitle)
	body, err := json.Marshal(sendReq{
		From:    m.From,
		To:      []string{m.AdminTo},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email dispatch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

func (m *Mailer) render(msg LeadMessage) (string, error) {
	greeting := fmt.Sprintf("Hola %s, te contacto desde Pecho's Inmobiliaria sobre tu interés en: %s",
		msg.LeadName, msg.PropertyTitle)
	data := struct {
		LeadMessage
		WhatsAppURL string
	}{
		LeadMessage: msg,
		// Peruvian numbers; wa.me wants country code without "+".
		WhatsAppURL: "https://wa.me/51" + msg.LeadPhone + "?text=" + url.QueryEscape(greeting),
	}
	var buf bytes.Buffer
	if err := leadTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
