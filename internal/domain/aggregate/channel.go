package aggregate

import (
	"strings"

	"github.com/okian/debtscore/internal/domain/model"
	"github.com/okian/debtscore/internal/domain/schema"
)

// Canonical promise channels.
const (
	ChannelPurchasedPortfolio = "CARTERA_COMPRADA"
	ChannelCallCenter         = "CALL_CENTER"
	ChannelLegal              = "JURIDICO"
	ChannelDigital            = "DIGITAL"
	ChannelBranch             = "OFICINA"
	ChannelField              = "CAMPO"
)

var channelSynonyms = map[string][]string{
	ChannelPurchasedPortfolio: {
		"CARTERA COMPRADA", "COMPRA DE CARTERA", "COMPRA CARTERA", "CARTERA ADQUIRIDA",
		"PORTAFOLIO COMPRADO", "PURCHASED PORTFOLIO",
	},
	ChannelCallCenter: {
		"CALL CENTER", "CALLCENTER", "CONTACT CENTER", "TELEFONICO", "TELEFONO", "TELEFONIA",
		"LLAMADA", "IVR",
	},
	ChannelLegal: {"JURIDICO", "JURIDICA", "LEGAL", "ABOGADO", "COBRO JURIDICO"},
	ChannelDigital: {
		"DIGITAL", "WEB", "PORTAL", "APP", "EMAIL", "CORREO", "SMS", "WHATSAPP", "CHAT",
	},
	ChannelBranch: {"OFICINA", "SUCURSAL", "PRESENCIAL", "AGENCIA"},
	ChannelField:  {"CAMPO", "VISITA", "TERRENO", "GESTOR EXTERNO"},
}

var channelIndex = func() map[string]string {
	idx := map[string]string{}
	for canon, syn := range channelSynonyms {
		idx[schema.Token(canon)] = canon
		for _, s := range syn {
			idx[s] = canon
		}
	}
	return idx
}()

// NormalizeChannel maps a free-text channel to its canonical tag. Blank and
// unrecognized values map to model.UnknownChannel.
func NormalizeChannel(raw string) string {
	if c, ok := channelIndex[schema.Token(raw)]; ok {
		return c
	}
	return model.UnknownChannel
}

var fulfilledStatuses = map[string]bool{
	"CUMPLIDA": true, "CUMPLIDO": true, "CUMPLE": true, "PAGADA": true, "PAGADO": true,
	"FULFILLED": true, "KEPT": true, "PAID": true,
}

// Fulfilled reports whether a promise status means the promise was kept.
func Fulfilled(status string) bool {
	s := schema.Token(status)
	if fulfilledStatuses[s] {
		return true
	}
	return strings.HasPrefix(s, "CUMPLID") || strings.HasPrefix(s, "PAGAD")
}
