package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

const (
	CSVName  = "report.csv"
	HTMLName = "report.html"
)

// Item represents a single exported invoice with its local attachment path.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

// Lister is the part of the invoice service the export needs.
type Lister interface {
	List(ctx context.Context, sess access.Session, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

// Service handles the export of invoices and their attachments.
type Service struct {
	invoices Lister
	origin   invoice.AttachmentOrigin
	client   *http.Client
	apiToken string
	now      func() time.Time
}

// NewService creates a new export Service. Attachments are only fetched from
// origin, and apiToken, when set, is only ever sent there.
func NewService(invoices Lister, origin invoice.AttachmentOrigin, apiToken string) *Service {
	s := &Service{
		invoices: invoices,
		origin:   origin,
		apiToken: apiToken,
		now:      time.Now,
	}

	s.client = &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}

			if !s.origin.Allows(req.URL.String()) {
				return fmt.Errorf("redirect to %s leaves the attachment host", req.URL.Host)
			}

			return nil
		},
	}

	return s
}

// Export downloads attachments for invoices matching the filter to the
// output directory and writes the CSV and HTML reports next to them.
func (s *Service) Export(ctx context.Context, sess access.Session, filter invoice.ListFilter, outputDir string) ([]Item, error) {
	invoices, err := s.invoices.List(ctx, sess, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(invoices))

	for _, inv := range invoices {
		item := Item{Invoice: inv}

		switch {
		case inv.FileURL == "":
		case !s.origin.Allows(inv.FileURL):
			slog.WarnContext(ctx, "skipping attachment outside the attachment host",
				"invoice", inv.InvoiceNumber, "url", inv.FileURL)
		default:
			path, err := s.downloadAttachment(ctx, inv, outputDir)
			if err != nil {
				return nil, fmt.Errorf("downloading attachment for invoice %s: %w", inv.InvoiceNumber, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	if err := s.writeReports(invoices, outputDir); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Service) writeReports(invoices []*invoice.Invoice, dir string) error {
	now := s.now()

	if err := os.WriteFile(filepath.Join(dir, CSVName), report.CSV(invoices, now), 0o644); err != nil {
		return fmt.Errorf("writing csv report: %w", err)
	}

	page, err := report.HTML(invoices, now)
	if err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, HTMLName), page, 0o644); err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}

	return nil
}

func (s *Service) downloadAttachment(ctx context.Context, inv *invoice.Invoice, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inv.FileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, inv.FileURL)
	}

	path := filepath.Join(dir, determineFilename(resp, inv))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

func determineFilename(resp *http.Response, inv *invoice.Invoice) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				return strings.ReplaceAll(filepath.Base(filename), " ", "_")
			}
		}
	}

	ext := ".pdf"

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	// YYYYMMDD_Supplier_Number.ext
	return fmt.Sprintf("%s_%s_%s%s",
		inv.ReceivedDate.Format("20060102"), sanitize(inv.Supplier), sanitize(inv.InvoiceNumber), ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, s)
}

// Summary creates a plain-text digest of the exported items, one line per
// invoice.
func Summary(items []Item, now time.Time) string {
	var sb strings.Builder

	for _, item := range items {
		inv := item.Invoice

		file := "no attachment"
		if item.FilePath != "" {
			file = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s | %s\n",
			inv.ReceivedDate.Format("2006-01-02"),
			inv.InvoiceNumber,
			inv.Supplier,
			report.FormatAmount(inv.Amount),
			inv.Display(now).Label,
			file,
		)
	}

	return sb.String()
}
