package fixtures

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/okian/debtscore/internal/domain/table"
	"github.com/okian/debtscore/pkg/logger"
)

var (
	firstHeader = []string{
		"Número Documento", "Nombre", "Saldo Capital", "Días Mora", "Producto",
		"Etapa Procesal", "Acuerdo",
	}
	secondHeader = []string{
		"NUMERO DOCUMENTO", "Nombre", "Saldo Capital", "Dias Mora", "Producto",
		"Etapa Procesal", "Acuerdo", "Abogado",
	}
	paymentsHeader = []string{"Identificación Deudor", "Valor Pago", "Fecha Pago", "Medio"}
	promisesHeader = []string{"Deudor", "Valor Promesa", "Fecha Promesa", "Estado", "Canal"}
	contactsHeader = []string{"Documento", "Fecha Gestión", "Tipificación", "Acción", "Respuesta"}

	products  = []string{"Libranza", "Consumo", "Tarjeta de Crédito", "Vehículo", "Hipotecario"}
	stages    = []string{"Prejurídico", "Demanda", "Mandamiento de Pago", "Embargo", "Remate"}
	lawyers   = []string{"Abogado 1", "Abogado 2", "Abogado 3"}
	media     = []string{"PSE", "Consignación", "Efectivo", "Débito"}
	channels  = []string{"Compra de cartera", "CARTERA COMPRADA", "Call center", "WhatsApp", "Oficina", "Jurídico", ""}
	responses = []string{"Sin respuesta", "Solicita llamar luego", "Acepta acuerdo", "No contestÃ³", "Número errado"}
)

// debtor is everything generated for one debtor.
type debtor struct {
	id       int
	cases    [][]any
	second   bool
	repeated bool
	payments [][]any
	promises [][]any
	contacts [][]any
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// Generate builds a portfolio. Debtors are generated concurrently, each from
// its own seeded source, so the output only depends on cfg.
func Generate(ctx context.Context, cfg *Config) (*Portfolio, *Stats, error) {
	start := time.Now()
	if cfg.Debtors <= 0 {
		return nil, nil, fmt.Errorf("debtors must be positive, got %d", cfg.Debtors)
	}
	logger.Get().Info(ctx, "generating portfolio",
		logger.Int("debtors", cfg.Debtors),
		logger.Int64("seed", cfg.Seed))

	type result struct {
		index int
		d     debtor
	}
	workers := max(1, min(cfg.Workers, cfg.Debtors))
	perWorker := cfg.Debtors / workers
	results := make(chan result, cfg.Debtors)

	for w := 0; w < workers; w++ {
		from := w * perWorker
		to := from + perWorker
		if w == workers-1 {
			to = cfg.Debtors
		}
		go func(from, to int) {
			for i := from; i < to; i++ {
				if ctx.Err() != nil {
					return
				}
				results <- result{index: i, d: generateDebtor(cfg, i)}
			}
		}(from, to)
	}

	debtors := make([]debtor, cfg.Debtors)
	for i := 0; i < cfg.Debtors; i++ {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("context cancelled during generation: %w", ctx.Err())
		case r := <-results:
			debtors[r.index] = r.d
		}
	}

	p := &Portfolio{
		Cases: []*table.Table{
			table.New(FirstExtract, firstHeader),
			table.New(SecondExtract, secondHeader),
		},
		Payments: table.New(PaymentsFile, paymentsHeader),
		Promises: table.New(PromisesFile, promisesHeader),
		Contacts: table.New(ContactsFile, contactsHeader),
	}
	stats := &Stats{Debtors: cfg.Debtors}
	for _, d := range debtors {
		if !d.second || d.repeated {
			p.Cases[0].Rows = append(p.Cases[0].Rows, d.cases[0])
		}
		if d.second {
			p.Cases[1].Rows = append(p.Cases[1].Rows, d.cases[len(d.cases)-1])
		}
		p.Payments.Rows = append(p.Payments.Rows, d.payments...)
		p.Promises.Rows = append(p.Promises.Rows, d.promises...)
		p.Contacts.Rows = append(p.Contacts.Rows, d.contacts...)
	}
	stats.CaseRows = p.Cases[0].Len() + p.Cases[1].Len()
	stats.Payments = p.Payments.Len()
	stats.Promises = p.Promises.Len()
	stats.Contacts = p.Contacts.Len()
	stats.Duration = time.Since(start)

	logger.Get().Info(ctx, "generated portfolio",
		logger.Int("caseRows", stats.CaseRows),
		logger.Int("payments", stats.Payments),
		logger.Int("promises", stats.Promises),
		logger.Int("contacts", stats.Contacts))
	return p, stats, nil
}

// generateDebtor draws one debtor from a source seeded by cfg.Seed and index.
func generateDebtor(cfg *Config, index int) debtor {
	rng := rand.New(rand.NewSource(cfg.Seed*1_000_003 + int64(index))) //nolint:gosec // reproducible fixtures
	d := debtor{id: firstDebtorID + index}

	product := rng.Intn(len(products))
	stage := rng.Intn(len(stages))
	balance := math.Round(minBalance + rng.ExpFloat64()*balanceSpread/8)
	dpd := float64(rng.Intn(maxDaysPastDue))
	hasAgreement := rng.Float64() < 0.2

	// Latent willingness to pay: small balances, early stages, agreements and
	// secured products pay more.
	z := 0.8 - 0.35*float64(stage) - balance/40_000_000 - dpd/600 + 0.3*float64(product%2)
	if hasAgreement {
		z += 1.2
	}
	z += rng.NormFloat64() * 0.5

	d.second = rng.Float64() < secondExtractShare
	d.repeated = d.second && rng.Float64() < repeatedShare/secondExtractShare
	agreement := ""
	if hasAgreement {
		agreement = "AC-" + strconv.Itoa(rng.Intn(900)+100)
	}
	name := "Deudor " + strconv.Itoa(d.id)
	caseRow := []any{
		padID(d.id), name, balance, dpd, products[product], stages[stage], agreement,
	}
	d.cases = append(d.cases, caseRow)
	if d.second {
		// The later extract may carry an updated balance.
		later := []any{
			padID(d.id), name, math.Round(balance * (0.85 + 0.15*rng.Float64())), dpd + 90,
			products[product], stages[min(stage+1, len(stages)-1)], agreement, lawyers[rng.Intn(len(lawyers))],
		}
		d.cases = append(d.cases, later)
	}

	// Orphans are logged under a number no case carries.
	aux := d.id
	if rng.Float64() < cfg.OrphanRate {
		aux += orphanOffset
	}
	auxID := strconv.Itoa(aux)
	reference := cfg.Reference
	day := func() time.Time {
		return reference.AddDate(0, 0, -rng.Intn(historyDays)-1)
	}

	contacted := rng.Float64() < sigmoid(z+1.0)
	if !contacted {
		return d
	}
	for n := rng.Intn(maxContacts) + 1; n > 0; n-- {
		d.contacts = append(d.contacts, []any{
			"CC " + auxID, day().Format("02/01/2006"), contactCategory(rng, z),
			[]string{"Llamada", "SMS", "Visita", "Correo"}[rng.Intn(4)],
			responses[rng.Intn(len(responses))],
		})
	}

	promised := rng.Float64() < sigmoid(z)
	if !promised {
		return d
	}
	paid := rng.Float64() < sigmoid(z-0.5)
	for n := rng.Intn(maxPromises) + 1; n > 0; n-- {
		status := "Incumplida"
		if paid && rng.Float64() < 0.6 {
			status = "Cumplida"
		} else if rng.Float64() < 0.3 {
			status = "Vigente"
		}
		d.promises = append(d.promises, []any{
			auxID + "-K", math.Round(balance * (0.05 + 0.2*rng.Float64())),
			day().Format(time.DateOnly), status, channels[rng.Intn(len(channels))],
		})
	}

	if !paid {
		return d
	}
	for n := rng.Intn(maxPayments) + 1; n > 0; n-- {
		var amount any = math.Round(balance*0.02*(1+rng.Float64())*100) / 100
		if rng.Float64() < cfg.InvalidAmountRate {
			amount = "N/D"
		}
		d.payments = append(d.payments, []any{
			float64(aux), amount, day(), media[rng.Intn(len(media))],
		})
	}
	return d
}

// contactCategory draws a category; likelier payers get better outcomes.
// A few rows carry a label outside the ranking.
func contactCategory(rng *rand.Rand, z float64) string {
	if rng.Float64() < 0.05 {
		return "Sin gestión"
	}
	good := []string{"Pago total", "Pago parcial", "Promesa de pago", "Negociación"}
	weak := []string{"Contacto titular", "Contacto tercero", "Mensaje", "No contacto"}
	if rng.Float64() < sigmoid(z) {
		return good[rng.Intn(len(good))]
	}
	return weak[rng.Intn(len(weak))]
}

// padID renders a case identifier the way the legal extracts do.
func padID(id int) string {
	return fmt.Sprintf("%0*d", idPadWidth, id)
}
