package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/store"
)

// handleCreateEntry records an income or fixed expense from the ledger form.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	kind := core.Kind(sanitizeInput(r.Form.Get("kind")))
	category := sanitizeInput(r.Form.Get("category"))
	description := sanitizeInput(r.Form.Get("description"))
	amountStr := sanitizeInput(r.Form.Get("amount"))
	dateStr := sanitizeInput(r.Form.Get("date"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Importe inválido").Write(w)
		return
	}

	occurredAt := core.Date{Time: time.Now()}
	if dateStr != "" {
		occurredAt, err = core.ParseDate(dateStr)
		if err != nil {
			UnprocessableEntityError("Fecha inválida").Write(w)
			return
		}
	}

	recordedBy := ""
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		recordedBy = claims.Name
		if recordedBy == "" {
			recordedBy = claims.Email
		}
	}

	entry := core.LedgerEntry{
		Amount:      core.Money{Cents: cents},
		Kind:        kind,
		Category:    category,
		Description: description,
		OccurredAt:  occurredAt,
		RecordedBy:  recordedBy,
		Settled:     r.Form.Get("settled") == "on",
	}
	if err := entry.Validate(); err != nil {
		UnprocessableEntityError("Datos inválidos: " + err.Error()).Write(w)
		return
	}

	id, err := s.ledger.CreateEntry(r.Context(), entry)
	if err != nil {
		slog.ErrorContext(r.Context(), "Entry create failed", "error", err,
			"category", entry.Category, "amount_cents", entry.Amount.Cents)
		InternalServerError("Error al guardar").Write(w)
		return
	}

	year, month := occurredAt.Year(), occurredAt.Month()
	s.invalidateMonth(year, month)

	NewHTMXResponse().
		TriggerEntryChanged(year, month).
		TriggerFormReset().
		BodyHTML(`<div class="success">Registrado: ` +
			template.HTMLEscapeString(entry.Category) +
			` — ` + template.HTMLEscapeString(formatPesos(entry.Amount.Cents)) +
			` <span class="ref">#` + template.HTMLEscapeString(id) + `</span></div>`).
		Write(w)
}

// handleSettleEntry flips the settled flag.
func (s *Server) handleSettleEntry(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := r.PathValue("id")
	settled := r.Form.Get("settled") == "on" || r.Form.Get("settled") == "true"

	if err := s.ledger.SetSettled(r.Context(), id, settled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("Registro no encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry settle failed", "error", err, "record_id", id)
		InternalServerError("Error al actualizar").Write(w)
		return
	}

	params := ParseMonthParams(r.Form)
	s.invalidateMonth(params.Year, params.Month)

	NewHTMXResponse().
		TriggerEntryChanged(params.Year, params.Month).
		Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := r.PathValue("id")
	if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError("Registro no encontrado").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Entry delete failed", "error", err, "record_id", id)
		InternalServerError("Error al eliminar").Write(w)
		return
	}

	params := ParseMonthParams(r.Form)
	s.invalidateMonth(params.Year, params.Month)

	NewHTMXResponse().
		TriggerEntryChanged(params.Year, params.Month).
		Write(w)
}

// handleLedgerList renders the ledger partial for one month.
func (s *Server) handleLedgerList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := ParseMonthParams(r.URL.Query())

	entries, err := s.ledger.ListEntries(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ledger list failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error cargando registros</div>`))
		return
	}

	type row struct {
		ID       string
		Day      int
		Kind     string
		Category string
		Desc     string
		Amount   string
		By       string
		Settled  bool
	}
	data := struct {
		Year  int
		Month int
		Rows  []row
	}{Year: params.Year, Month: params.Month}

	for _, e := range entries {
		if e.Validate() != nil {
			continue
		}
		if e.OccurredAt.Year() != params.Year || e.OccurredAt.Month() != params.Month {
			continue
		}
		data.Rows = append(data.Rows, row{
			ID:       e.ID,
			Day:      e.OccurredAt.Day(),
			Kind:     string(e.Kind),
			Category: e.Category,
			Desc:     e.Description,
			Amount:   formatPesos(e.Amount.Cents),
			By:       e.RecordedBy,
			Settled:  e.Settled,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "ledger.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Ledger template execution failed", "error", err)
		_, _ = w.Write([]byte(`<div class="placeholder">Error de plantilla</div>`))
	}
}
