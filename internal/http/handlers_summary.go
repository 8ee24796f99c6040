package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"gastos/internal/auth"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	userName := ""
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		userName = claims.Name
		if userName == "" {
			userName = claims.Email
		}
	}

	data := struct {
		Year        int
		Month       int
		Today       string
		UserName    string
		AuthEnabled bool
	}{
		Year:        now.Year(),
		Month:       int(now.Month()),
		Today:       now.Format("2006-01-02"),
		UserName:    userName,
		AuthEnabled: s.authn != nil,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleMonthSummary renders the summary cards partial: income, fixed
// expenses, credit installments and what is left.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	params := ParseMonthParams(r.URL.Query())

	summary, err := s.getMonthSummary(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary failed", "error", err,
			"year", params.Year, "month", params.Month)
		_, _ = w.Write([]byte(`<section id="month-summary"><div class="placeholder">Error cargando resumen</div></section>`))
		return
	}

	breakdown, err := s.getBreakdown(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category breakdown failed", "error", err,
			"year", params.Year, "month", params.Month)
	}

	var maxCents int64
	for _, c := range breakdown {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
		}
	}

	type row struct {
		Name, Amount string
		Width        int
	}
	data := struct {
		Year      int
		Month     int
		Income    string
		Fixed     string
		Credit    string
		Remaining string
		Negative  bool
		Rows      []row
	}{
		Year:      summary.Year,
		Month:     summary.Month,
		Income:    formatPesos(summary.Income.Cents),
		Fixed:     formatPesos(summary.Fixed.Cents),
		Credit:    formatPesos(summary.Credit.Cents),
		Remaining: formatPesos(summary.Remaining.Cents),
		Negative:  summary.Remaining.Cents < 0,
	}

	for _, c := range breakdown {
		width := 0
		if maxCents > 0 && c.Amount.Cents > 0 {
			width = int((c.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, row{
			Name:   c.Name,
			Amount: formatPesos(c.Amount.Cents),
			Width:  width,
		})
	}

	if err := s.templates.ExecuteTemplate(w, "month_summary.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Summary template execution failed", "error", err)
		_, _ = w.Write([]byte(`<section id="month-summary"><div class="placeholder">Error de plantilla</div></section>`))
	}
}

// handleCategoryChart feeds the category pie chart.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query())

	breakdown, err := s.getBreakdown(r.Context(), params.Year, params.Month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Category chart failed", "error", err,
			"year", params.Year, "month", params.Month)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	type slice struct {
		Label string  `json:"label"`
		Pesos float64 `json:"pesos"`
	}
	out := struct {
		Year   int     `json:"year"`
		Month  int     `json:"month"`
		Slices []slice `json:"slices"`
	}{Year: params.Year, Month: params.Month, Slices: []slice{}}

	for _, c := range breakdown {
		out.Slices = append(out.Slices, slice{Label: c.Name, Pesos: c.Amount.Pesos()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.ErrorContext(r.Context(), "Chart encode failed", "error", err)
	}
}

// handleProjectionChart feeds the committed-installments bar chart: one bar
// per future month, sorted chronologically.
func (s *Server) handleProjectionChart(w http.ResponseWriter, r *http.Request) {
	projection, err := s.summary.CreditProjection(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Credit projection failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	months := make([]string, 0, len(projection))
	for m := range projection {
		months = append(months, m)
	}
	sort.Strings(months)

	type bar struct {
		Month string  `json:"month"`
		Pesos float64 `json:"pesos"`
	}
	out := struct {
		Bars []bar `json:"bars"`
	}{Bars: []bar{}}
	for _, m := range months {
		out.Bars = append(out.Bars, bar{Month: m, Pesos: projection[m].Pesos()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		slog.ErrorContext(r.Context(), "Projection encode failed", "error", err)
	}
}
