package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/export"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStateOptions
	exportStateExporting
	exportStateResult
)

type exportKind string

const (
	exportCSV         exportKind = "csv"
	exportHTML        exportKind = "html"
	exportXLSX        exportKind = "xlsx"
	exportAttachments exportKind = "attachments"
)

// ExportModel writes a report of the invoices received in a chosen range, or
// downloads their attachments alongside CSV and HTML reports.
type ExportModel struct {
	CommonModel
	invoiceService *invoice.Service
	exportService  *export.Service
	sess           access.Session

	state           exportState
	err             error
	timeframePicker TimeframePicker
	timeframe       TimeframeSelectedMsg

	form    *huh.Form
	spinner spinner.Model
	summary string
}

func NewExportModel(invSvc *invoice.Service, expSvc *export.Service, sess access.Session) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		invoiceService:  invSvc,
		exportService:   expSvc,
		sess:            sess,
		state:           exportStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		spinner:         s,
	}
}

func (m ExportModel) Title() string { return "Export Report" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}
	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tfMsg, ok := msg.(TimeframeSelectedMsg); ok {
		m.timeframe = tfMsg
		m.form = m.buildOptionsForm()
		m.state = exportStateOptions
		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		return m.updateTimeframe(msg)
	case exportStateOptions:
		return m.updateOptions(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)
	return m, cmd
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = exportStateTimeframe
			m.timeframePicker.Reset()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	kind := exportKind(m.form.GetString("kind"))
	path := m.form.GetString("path")

	m.state = exportStateExporting
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(kind, path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		if result.err != nil {
			m.err = result.err
		}
		m.summary = result.body
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}
	return m, nil
}

func (m ExportModel) buildOptionsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("kind").
				Title("Format").
				Options(
					huh.NewOption("CSV report", string(exportCSV)),
					huh.NewOption("HTML report", string(exportHTML)),
					huh.NewOption("Excel report", string(exportXLSX)),
					huh.NewOption("Attachments with CSV and HTML", string(exportAttachments)),
				).
				Value(new(string(exportCSV))),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(new("./exports")),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case exportStateOptions:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Received: %s\n\n%s", activeStyle(m.timeframe.Describe()), m.form.View()),
		)

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Exporting invoices...", m.spinner.View()),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			errorStyle.Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := okStyle.Bold(true).Render("Export Complete!")

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(kind exportKind, dir string) tea.Cmd {
	filter := invoice.ListFilter{}
	m.timeframe.Apply(&filter)

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		now := time.Now()

		if kind == exportAttachments {
			items, err := m.exportService.Export(ctx, m.sess, filter, dir)
			if err != nil {
				return exportResultMsg{err: err}
			}

			return exportResultMsg{body: fmt.Sprintf("Saved to %s\n\n%s", dir, export.Summary(items, now))}
		}

		invs, err := m.invoiceService.List(ctx, m.sess, filter)
		if err != nil {
			return exportResultMsg{err: err}
		}

		path, err := writeReport(kind, invs, dir, now)
		if err != nil {
			return exportResultMsg{err: err}
		}

		s := report.Summarize(invs, now)

		return exportResultMsg{body: fmt.Sprintf("Wrote %d invoices totalling %s to %s", len(invs), s.TotalAmount, path)}
	}
}

func writeReport(kind exportKind, invs []*invoice.Invoice, dir string, now time.Time) (string, error) {
	var (
		data []byte
		err  error
	)

	switch kind {
	case exportCSV:
		data = report.CSV(invs, now)
	case exportHTML:
		data, err = report.HTML(invs, now)
	case exportXLSX:
		data, err = report.XLSX(invs, now)
	default:
		return "", fmt.Errorf("unknown export format: %s", kind)
	}

	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("invoice-report-%s.%s", now.Format("2006-01-02"), kind))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
