// Package composer builds the outbound message texts and the deep-links that
// open them in the messaging client. It performs no I/O.
package composer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gesthub/gesthub/internal/model"
)

// Business is the sender identity printed into outbound messages.
type Business struct {
	Name    string
	Sender  string
	CNPJ    string
	Hours   string
	Address string
}

// Message is a composed text plus the link that opens it pre-filled.
type Message struct {
	Phone string `json:"phone"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

type Composer struct {
	Business    Business
	BaseURL     string
	CountryCode string
}

func New(business Business, baseURL, countryCode string) *Composer {
	return &Composer{
		Business:    business,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		CountryCode: countryCode,
	}
}

// Reminder is the follow-up for an invoice still waiting for pickup. The
// stored phone is used as-is after stripping non-digits; no country code is
// prepended.
func (c *Composer) Reminder(n *model.Nota) Message {
	text := fmt.Sprintf(
		"Olá %s, passando para lembrar que a Nota Fiscal %s da %s está disponível para retirada.",
		n.ContactName, n.InvoiceNumber, n.CompanyName,
	)
	return c.message(Digits(n.ContactPhone), text)
}

// Intake is the first notice sent when a pickup is registered.
func (c *Composer) Intake(f model.PickupForm) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s, tudo bem?\n\n", f.ContactName)
	fmt.Fprintf(&b, "Me chamo %s e falo da %s.\n", c.Business.Sender, c.Business.Name)
	b.WriteString("Estou entrando em contato para avisar que a sua mercadoria está pronta para coleta.\n\n")
	fmt.Fprintf(&b, "- Nota Fiscal Nº %s\n", f.InvoiceNumber)
	fmt.Fprintf(&b, "- Horários para coleta: %s\n", c.Business.Hours)
	fmt.Fprintf(&b, "- Endereço: %s", c.Business.Address)
	return c.message(c.withCountry(f.WhatsApp), b.String())
}

// Collection asks a carrier to schedule a collection.
func (c *Composer) Collection(f model.CollectionForm) Message {
	var b strings.Builder
	c.carrierHeader(&b, f.Name, "agendar uma coleta")
	c.cargoLines(&b, f.City, f.Volume, f.Weight, f.CubicMeters)
	c.carrierFooter(&b)
	return c.message(c.withCountry(f.WhatsApp), b.String())
}

// Quote asks a carrier for a freight quote.
func (c *Composer) Quote(f model.QuoteForm) Message {
	var b strings.Builder
	c.carrierHeader(&b, f.Name, "solicitar uma cotação de frete")
	c.cargoLines(&b, f.City, f.Volume, f.Weight, f.CubicMeters)
	fmt.Fprintf(&b, "- Valor da carga: R$ %s\n", f.CargoValue)
	c.carrierFooter(&b)
	return c.message(c.withCountry(f.WhatsApp), b.String())
}

func (c *Composer) carrierHeader(b *strings.Builder, name, purpose string) {
	fmt.Fprintf(b, "Olá, %s, tudo bem?\n\n", name)
	fmt.Fprintf(b, "Me chamo %s e falo da %s\n", c.Business.Sender, c.Business.Name)
	fmt.Fprintf(b, "Estou entrando em contato para %s.\n\n", purpose)
	fmt.Fprintf(b, "- CNPJ: %s\n", c.Business.CNPJ)
}

func (c *Composer) cargoLines(b *strings.Builder, city, volume, weight, cubic string) {
	fmt.Fprintf(b, "- Cidade destino: %s\n", city)
	fmt.Fprintf(b, "- Volume: %s vol.\n", volume)
	fmt.Fprintf(b, "- Peso: %s kg\n", weight)
	fmt.Fprintf(b, "- Cubagem: %s M³\n", cubic)
}

func (c *Composer) carrierFooter(b *strings.Builder) {
	fmt.Fprintf(b, "- Horários para coleta: %s\n", c.Business.Hours)
	fmt.Fprintf(b, "- Endereço: %s", c.Business.Address)
}

func (c *Composer) withCountry(phone string) string {
	return c.CountryCode + Digits(phone)
}

func (c *Composer) message(phone, text string) Message {
	return Message{Phone: phone, Text: text, URL: c.Link(phone, text)}
}

// Link renders BaseURL/<phone>?text=<text>. Spaces are encoded as %20 so the
// text survives clients that do not treat '+' as a space.
func (c *Composer) Link(phone, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("%s/%s?text=%s", c.BaseURL, phone, escaped)
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
