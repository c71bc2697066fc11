package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicetracker/internal/export"
	invoicehttp "github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/http/respond"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	Status     string `json:"status,omitempty"`
	Department string `json:"department,omitempty"`
	Search     string `json:"search,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
}

func (req exportRequest) filter() (invoice.ListFilter, error) {
	filter := invoice.ListFilter{Search: req.Search}

	if req.Status != "" {
		st, err := invoice.ParseStatus(req.Status)
		if err != nil {
			return filter, err
		}

		filter.Status = &st
	}

	if req.Department != "" {
		filter.Department = new(req.Department)
	}

	for _, d := range []struct {
		in  string
		out **time.Time
	}{{req.From, &filter.ReceivedFrom}, {req.To, &filter.ReceivedTo}} {
		if d.in == "" {
			continue
		}

		t, err := invoicehttp.ParseDate(d.in)
		if err != nil {
			return filter, err
		}

		*d.out = &t
	}

	return filter, nil
}

type itemResponse struct {
	InvoiceNumber string `json:"invoice_number"`
	Supplier      string `json:"supplier"`
	Amount        int64  `json:"amount"`
	FileURL       string `json:"file_url,omitempty"`
	HasAttachment bool   `json:"has_attachment"`
}

type exportMetadataResponse struct {
	Invoices []itemResponse `json:"invoices"`
	Summary  string         `json:"summary"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) (string, []export.Item, bool) {
	var req exportRequest
	if !respond.Decode(w, r, &req) {
		return "", nil, false
	}

	filter, err := req.filter()
	if err != nil {
		respond.Error(w, r, err)
		return "", nil, false
	}

	tmpDir, err := os.MkdirTemp("", "invoicetracker-export-*")
	if err != nil {
		respond.Error(w, r, err)
		return "", nil, false
	}

	items, err := h.svc.Export(r.Context(), respond.Session(r), filter, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		respond.Error(w, r, err)

		return "", nil, false
	}

	return tmpDir, items, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	tmpDir, items, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	resp := exportMetadataResponse{
		Invoices: make([]itemResponse, 0, len(items)),
		Summary:  export.Summary(items, time.Now()),
	}

	for _, item := range items {
		resp.Invoices = append(resp.Invoices, itemResponse{
			InvoiceNumber: item.Invoice.InvoiceNumber,
			Supplier:      item.Invoice.Supplier,
			Amount:        item.Invoice.Amount,
			FileURL:       item.Invoice.FileURL,
			HasAttachment: item.FilePath != "",
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	tmpDir, _, ok := h.run(w, r)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"invoices_%s.zip\"", time.Now().Format("20060102")))

	if err := export.Zip(w, tmpDir); err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
