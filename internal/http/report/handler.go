package report

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	invoicehttp "github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

type Handler struct {
	invoices *invoice.Service
	notify   *notify.Service
	now      func() time.Time
}

func NewHandler(invoices *invoice.Service, notifySvc *notify.Service) *Handler {
	return &Handler{invoices: invoices, notify: notifySvc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
	r.Get("/html", h.html)
	r.Get("/xlsx", h.xlsx)
	r.Post("/send", h.send)
	r.Post("/overdue-notices", h.overdueNotices)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]*invoice.Invoice, bool) {
	filter, err := invoicehttp.ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	invs, err := h.invoices.List(r.Context(), respond.Session(r), filter)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return invs, true
}

func attachment(w http.ResponseWriter, contentType, ext string, now time.Time) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"invoice-report-%s.%s\"", now.Format(time.DateOnly), ext))
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	invs, ok := h.load(w, r)
	if !ok {
		return
	}

	now := h.now()
	attachment(w, "text/csv; charset=utf-8", "csv", now)
	w.Write(report.CSV(invs, now))
}

func (h *Handler) html(w http.ResponseWriter, r *http.Request) {
	invs, ok := h.load(w, r)
	if !ok {
		return
	}

	now := h.now()

	page, err := report.HTML(invs, now)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (h *Handler) xlsx(w http.ResponseWriter, r *http.Request) {
	invs, ok := h.load(w, r)
	if !ok {
		return
	}

	now := h.now()

	book, err := report.XLSX(invs, now)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", now)
	w.Write(book)
}

type sendRequest struct {
	Period string `json:"period"`
	Format string `json:"format"`
}

type sendResponse struct {
	EmailsSent int `json:"emails_sent"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	sent, err := h.notify.SendReport(r.Context(), respond.Session(r), notify.Period(req.Period), notify.Format(req.Format))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, sendResponse{EmailsSent: sent})
}

type overdueResponse struct {
	Message string `json:"message"`
}

func (h *Handler) overdueNotices(w http.ResponseWriter, r *http.Request) {
	msg, err := h.notify.SendOverdueNotices(r.Context(), respond.Session(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, overdueResponse{Message: msg})
}
