// Package sendgrid sends transactional emails based on dynamic templates.
package sendgrid

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Config struct {
	Key      string
	From     string
	FromName string `mapstructure:"from_name"`
	// Templates maps a template alias to the template id of each language
	Templates map[string]map[string]string
}

// Sendgrid sends an email using the template with the given alias
type Sendgrid interface {
	SendEmail(email, language, template string, data map[string]string) error
}

type client struct {
	cfg    Config
	client *sg.Client
}

type noop struct{}

// New returns a sendgrid client or a logging no-op sender when no key is configured
func New(cfg Config) Sendgrid {
	if cfg.Key == "" {
		return noop{}
	}
	return &client{cfg: cfg, client: sg.NewSendClient(cfg.Key)}
}

func (c *client) templateID(template, language string) (string, error) {
	languages, ok := c.cfg.Templates[template]
	if !ok {
		return "", fmt.Errorf("sendgrid: unknown template %s", template)
	}
	if id, ok := languages[language]; ok {
		return id, nil
	}
	if id, ok := languages["en"]; ok {
		return id, nil
	}
	return "", fmt.Errorf("sendgrid: no template %s for language %s", template, language)
}

// SendEmail godoc
func (c *client) SendEmail(email, language, template string, data map[string]string) error {
	templateID, err := c.templateID(template, language)
	if err != nil {
		return err
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(c.cfg.FromName, c.cfg.From))
	m.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", email))
	for key, value := range data {
		p.SetDynamicTemplateData(key, value)
	}
	m.AddPersonalizations(p)

	resp, err := c.client.Send(m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return errors.New("sendgrid: " + resp.Body)
	}
	return nil
}

func (noop) SendEmail(email, language, template string, data map[string]string) error {
	log.Debug().Str("section", "sendgrid").Str("template", template).Str("email", email).Msg("Email sending disabled")
	return nil
}
