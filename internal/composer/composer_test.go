package composer

import (
	"net/url"
	"strings"
	"testing"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testComposer() *Composer {
	return New(Business{
		Name:    "Gplásticos",
		Sender:  "Lenoir",
		CNPJ:    "16.914.559/0001-67",
		Hours:   "Segunda a Sexta, das 08h às 18h",
		Address: "R. Demétrio Ângelo Tiburi, 1716",
	}, "https://wa.me/", "55")
}

func decodedText(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("text")
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "54999990000", Digits("(54) 99999-0000"))
	assert.Equal(t, "5554999990000", Digits("+55 54 99999 0000"))
	assert.Equal(t, "", Digits("abc"))
}

func TestReminder(t *testing.T) {
	c := testComposer()
	n := &model.Nota{
		CompanyName:   "Acme",
		InvoiceNumber: "NF-001",
		ContactName:   "Ana",
		ContactPhone:  "(54) 99999-0000",
	}

	msg := c.Reminder(n)

	assert.Equal(t, "Olá Ana, passando para lembrar que a Nota Fiscal NF-001 da Acme está disponível para retirada.", msg.Text)
	assert.Equal(t, "54999990000", msg.Phone)
	assert.True(t, strings.HasPrefix(msg.URL, "https://wa.me/54999990000?text="))
	assert.Equal(t, msg.Text, decodedText(t, msg.URL))
}

func TestIntake_PrependsCountryCode(t *testing.T) {
	c := testComposer()

	msg := c.Intake(model.PickupForm{
		WhatsApp:      "54 99999-0000",
		ContactName:   "Ana",
		CompanyName:   "Acme",
		InvoiceNumber: "123",
	})

	assert.Equal(t, "5554999990000", msg.Phone)
	assert.True(t, strings.HasPrefix(msg.URL, "https://wa.me/5554999990000?text="))
	assert.True(t, strings.HasPrefix(msg.Text, "Olá, Ana, tudo bem?\n\nMe chamo Lenoir e falo da Gplásticos.\n"))
	assert.Contains(t, msg.Text, "- Nota Fiscal Nº 123\n")
	assert.Contains(t, msg.Text, "- Horários para coleta: Segunda a Sexta, das 08h às 18h\n")
	assert.True(t, strings.HasSuffix(msg.Text, "- Endereço: R. Demétrio Ângelo Tiburi, 1716"))
	assert.Equal(t, msg.Text, decodedText(t, msg.URL))
}

func TestCollection(t *testing.T) {
	msg := testComposer().Collection(model.CollectionForm{
		WhatsApp:    "11 4000-1000",
		Name:        "Transportes Sul",
		City:        "Porto Alegre",
		Volume:      "3",
		Weight:      "120",
		CubicMeters: "1,5",
	})

	assert.Equal(t, "551140001000", msg.Phone)
	assert.Contains(t, msg.Text, "agendar uma coleta")
	assert.Contains(t, msg.Text, "- CNPJ: 16.914.559/0001-67\n")
	assert.Contains(t, msg.Text, "- Cidade destino: Porto Alegre\n")
	assert.Contains(t, msg.Text, "- Volume: 3 vol.\n")
	assert.Contains(t, msg.Text, "- Peso: 120 kg\n")
	assert.Contains(t, msg.Text, "- Cubagem: 1,5 M³\n")
	assert.NotContains(t, msg.Text, "Valor da carga")
}

func TestQuote(t *testing.T) {
	msg := testComposer().Quote(model.QuoteForm{
		WhatsApp:    "11 4000-1000",
		Name:        "Transportes Sul",
		City:        "Curitiba",
		Volume:      "2",
		Weight:      "80",
		CubicMeters: "0,8",
		CargoValue:  "1.500,00",
	})

	assert.Contains(t, msg.Text, "solicitar uma cotação de frete")
	assert.Contains(t, msg.Text, "- Valor da carga: R$ 1.500,00\n")
	assert.Equal(t, msg.Text, decodedText(t, msg.URL))
}

func TestLink_EncodesSpacesAndReservedCharacters(t *testing.T) {
	link := testComposer().Link("5511", "a b&c=d+e")
	assert.Equal(t, "https://wa.me/5511?text=a%20b%26c%3Dd%2Be", link)
}
