package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"gastos/internal/core"
	"gastos/internal/store"
)

// handleCreatePurchase records a credit-card purchase from the form.
func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	description := sanitizeInput(r.Form.Get("description"))
	dateStr := sanitizeInput(r.Form.Get("date"))
	pesosStr := sanitizeInput(r.Form.Get("total_pesos"))
	dollarsStr := sanitizeInput(r.Form.Get("total_dollars"))
	installmentsStr := sanitizeInput(r.Form.Get("installments"))

	purchaseDate, err := core.ParseDate(dateStr)
	if err != nil {
		UnprocessableEntityError("Fecha inválida").Write(w)
		return
	}

	pesosCents, err := core.ParseDecimalToCents(pesosStr)
	if err != nil {
		UnprocessableEntityError("Importe inválido").Write(w)
		return
	}

	// Dollar total is informational and optional
	dollarCents, err := core.ParseOptionalCents(dollarsStr)
	if err != nil {
		UnprocessableEntityError("Importe en dólares inválido").Write(w)
		return
	}

	installments, err := strconv.Atoi(installmentsStr)
	if err != nil {
		UnprocessableEntityError("Cantidad de cuotas inválida").Write(w)
		return
	}

	purchase := core.CreditPurchase{
		PurchaseDate: purchaseDate,
		Description:  description,
		TotalPesos:   core.Money{Cents: pesosCents},
		TotalDollars: core.Money{Cents: dollarCents},
		Installments: installments,
	}
	if err := purchase.Validate(); err != nil {
		UnprocessableEntityError("Datos inválidos: " + err.Error()).Write(w)
		return
	}

	id, err := s.ledger.CreatePurchase(r.Context(), purchase)
	if err != nil {
		slog.ErrorContext(r.Context(), "Purchase create failed", "error", err,
			"description", purchase.Description, "installments", purchase.Installments)
		InternalServerError("Error al guardar").Write(w)
		return
	}

	// Installments land on many months, drop everything cached
	s.invalidateAllMonths()

	inst, _, _ := core.InstallmentDueIn(purchase, purchaseDate.Month(), purchaseDate.Year())

	// 21% VAT preview, display only, never persisted
	ivaCents := (pesosCents*21 + 50) / 100

	NewHTMXResponse().
		TriggerPurchaseChanged().
		TriggerFormReset().
		BodyHTML(`<div class="success">Compra registrada: ` +
			template.HTMLEscapeString(purchase.Description) +
			` — ` + strconv.Itoa(purchase.Installments) + ` cuotas de ` +
			template.HTMLEscapeString(formatPesos(core.MoneyFromDecimal(inst.Amount).Cents)) +
			` (IVA 21%: ` + template.HTMLEscapeString(formatPesos(ivaCents)) + `)` +
			` <span class="ref">#` + template.HTMLEscapeString(id) + `</span></div>`).
		Write(w)
}

// handlePurchaseSchedule renders the full amortization schedule of one
// purchase. The store is list-only, so the purchase is resolved from a
// full snapshot.
func (s *Server) handlePurchaseSchedule(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	id := r.PathValue("id")

	purchases, err := s.ledger.ListPurchases(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Purchase list failed", "error", err)
		InternalServerError("Error cargando compras").Write(w)
		return
	}

	var purchase *core.CreditPurchase
	for i := range purchases {
		if purchases[i].ID == id {
			purchase = &purchases[i]
			break
		}
	}
	if purchase == nil {
		NotFoundError("Compra no encontrada").Write(w)
		return
	}

	schedule, err := core.ScheduleInstallments(*purchase)
	if err != nil {
		slog.WarnContext(r.Context(), "Malformed purchase in schedule view",
			"record_id", id, "error", err)
		UnprocessableEntityError("La compra tiene datos inválidos").Write(w)
		return
	}

	type row struct {
		Period string
		Amount string
	}
	data := struct {
		Desc         string
		Total        string
		Installments int
		Rows         []row
	}{
		Desc:         purchase.Description,
		Total:        formatPesos(purchase.TotalPesos.Cents),
		Installments: purchase.Installments,
	}
	for _, inst := range schedule {
		data.Rows = append(data.Rows, row{
			Period: fmt.Sprintf("%02d/%04d", inst.Month, inst.Year),
			Amount: formatPesos(core.MoneyFromDecimal(inst.Amount).Cents),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "purchase_schedule.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Schedule template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error de plantilla</div>`))
	}
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeletePurchase(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("Compra no encontrada").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Purchase delete failed", "error", err, "record_id", id)
		InternalServerError("Error al eliminar").Write(w)
		return
	}

	s.invalidateAllMonths()

	NewHTMXResponse().
		TriggerPurchaseChanged().
		Write(w)
}

// handlePurchaseList renders the purchases partial: every purchase with its
// installment standing in the requested month.
func (s *Server) handlePurchaseList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := ParseMonthParams(r.URL.Query())

	purchases, err := s.ledger.ListPurchases(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Purchase list failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error cargando compras</div>`))
		return
	}

	type row struct {
		ID           string
		Date         string
		Desc         string
		Total        string
		Installments int
		Due          bool
		MonthAmount  string
		Remaining    int
	}
	data := struct {
		Year  int
		Month int
		Total string
		Rows  []row
	}{Year: params.Year, Month: params.Month}

	for _, p := range purchases {
		inst, due, err := core.InstallmentDueIn(p, params.Month, params.Year)
		if err != nil {
			slog.WarnContext(r.Context(), "Skipping malformed purchase",
				"record_id", p.ID, "error", err)
			continue
		}
		rw := row{
			ID:           p.ID,
			Date:         p.PurchaseDate.Format("2006-01-02"),
			Desc:         p.Description,
			Total:        formatPesos(p.TotalPesos.Cents),
			Installments: p.Installments,
			Due:          due,
		}
		if due {
			rw.MonthAmount = formatPesos(core.MoneyFromDecimal(inst.Amount).Cents)
			rw.Remaining = inst.Remaining
		}
		data.Rows = append(data.Rows, rw)
	}

	total, recErrs := core.TotalDueIn(purchases, params.Month, params.Year)
	for _, re := range recErrs {
		slog.WarnContext(r.Context(), "Skipping malformed purchase in total",
			"record_id", re.ID, "error", re.Err)
	}
	data.Total = formatPesos(core.MoneyFromDecimal(total).Cents)

	if err := s.templates.ExecuteTemplate(w, "purchases.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Purchases template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error de plantilla</div>`))
	}
}
