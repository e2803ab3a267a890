package aggregate

import "github.com/okian/debtscore/internal/domain/schema"

type field struct {
	name  string
	preds []schema.Predicate
}

// Field names used in Stats.Columns.
const (
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldValue    = "value"
	FieldStatus   = "status"
	FieldChannel  = "channel"
	FieldCategory = "category"
	FieldAction   = "action"
	FieldResponse = "response"
)

var (
	notDate = schema.Not(schema.Contains("fecha"))

	paymentFields = []field{
		{FieldAmount, []schema.Predicate{
			schema.Contains("valor"), schema.Contains("monto"), schema.Contains("importe"),
			schema.Contains("abono"), schema.All(schema.Contains("pago"), notDate),
		}},
		{FieldDate, []schema.Predicate{
			schema.Contains("fecha_pago"), schema.Contains("fecha"), schema.Contains("date"),
		}},
	}

	promiseFields = []field{
		{FieldValue, []schema.Predicate{
			schema.Contains("valor"), schema.Contains("monto"), schema.Contains("importe"),
		}},
		{FieldDate, []schema.Predicate{
			schema.Contains("prometid"), schema.Contains("compromiso"),
			schema.Contains("fecha_promesa"), schema.Contains("fecha"), schema.Contains("date"),
		}},
		{FieldStatus, []schema.Predicate{
			schema.Contains("estado"), schema.Contains("status"), schema.Contains("cumpl"),
		}},
		{FieldChannel, []schema.Predicate{
			schema.Contains("canal"), schema.Contains("fuente"), schema.Contains("origen"),
			schema.Contains("source"),
		}},
	}

	contactFields = []field{
		{FieldDate, []schema.Predicate{
			schema.Contains("fecha_gestion"), schema.Contains("fecha"), schema.Contains("date"),
		}},
		{FieldCategory, []schema.Predicate{
			schema.Contains("tipificacion"), schema.Contains("categoria"),
			schema.Contains("efectividad"), schema.Contains("resultado"),
		}},
		{FieldAction, []schema.Predicate{
			schema.Contains("accion"), schema.Contains("tipo_gestion"),
		}},
		{FieldResponse, []schema.Predicate{
			schema.Contains("respuesta"), schema.Contains("observacion"), schema.Contains("comentario"),
		}},
	}
)
