package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStatePreview
	importStateResult
)

// ImportModel loads a CSV or XLSX invoice list, shows the parsed rows with
// any rejected lines, and creates the rows the user keeps selected.
type ImportModel struct {
	CommonModel
	invoiceService  *invoice.Service
	importService   *importer.Service
	supplierService *supplier.Service
	sess            access.Session

	state      importState
	filePicker filepicker.Model

	params    []invoice.CreateParams
	rowErrors []importer.RowError
	preview   list.Model
	selected  map[int]bool

	status string
	err    error
}

func NewImportModel(invSvc *invoice.Service, impSvc *importer.Service, supSvc *supplier.Service, sess access.Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		invoiceService:  invSvc,
		importService:   impSvc,
		supplierService: supSvc,
		sess:            sess,
		filePicker:      fp,
		selected:        make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Invoices" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Space: toggle | a: all | n: none | Enter: import | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.params = msg.result.Invoices
		m.rowErrors = msg.result.Errors
		m.selected = make(map[int]bool, len(m.params))

		for i := range m.params {
			m.selected[i] = true
		}

		items := make([]list.Item, len(m.params))
		for i, p := range m.params {
			items[i] = previewItem{params: p, index: i}
		}

		delegate := previewDelegate{selected: &m.selected}
		m.preview = list.New(items, delegate, 90, 18)
		m.preview.Title = fmt.Sprintf("%d invoices parsed, %d rows rejected", len(m.params), len(m.rowErrors))
		m.preview.SetShowStatusBar(false)
		m.preview.SetFilteringEnabled(false)
		m.preview.SetShowHelp(false)
		m.state = importStatePreview

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d invoices.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult, importStatePreview:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.params = nil
		m.rowErrors = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.preview.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.params {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.params {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		m.state = importStateImporting
		m.status = "Creating invoices..."

		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV or XLSX invoice list:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return m.viewPreview()
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewPreview() string {
	content := m.preview.View()

	if len(m.rowErrors) > 0 {
		var b strings.Builder

		b.WriteString("Rejected rows:\n")

		for _, e := range m.rowErrors {
			b.WriteString("  " + e.Error() + "\n")
		}

		content = lipgloss.JoinVertical(lipgloss.Left, content, errorStyle.Render(b.String()))
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + faintStyle.Render(m.ShortHelp()))
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(okStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if !m.sess.Can(access.ActionCreateInvoice) {
			return importResultMsg{err: access.ErrForbidden}
		}

		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		result, err := m.importService.Import(importer.FormatFromFilename(path), f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.supplierService.ResolveAll(ctx, result.Invoices); err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	params := m.params
	selected := m.selected

	return func() tea.Msg {
		var keep []invoice.CreateParams

		for i, p := range params {
			if selected[i] {
				keep = append(keep, p)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		invs, err := m.invoiceService.CreateBatch(ctx, m.sess, keep)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(invs)}
	}
}

// Preview list item

type previewItem struct {
	params invoice.CreateParams
	index  int
}

func (i previewItem) Title() string       { return i.params.InvoiceNumber }
func (i previewItem) Description() string { return i.params.Supplier }
func (i previewItem) FilterValue() string { return i.params.InvoiceNumber }

// Preview list delegate

type previewDelegate struct {
	selected *map[int]bool
}

func (d previewDelegate) Height() int                             { return 2 }
func (d previewDelegate) Spacing() int                            { return 0 }
func (d previewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d previewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(previewItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	p := item.params

	line1 := fmt.Sprintf("%s%s %s  %s  %s  %s",
		cursor, checkbox,
		FormatDate(p.ReceivedDate),
		p.InvoiceNumber,
		FormatAmount(p.Amount),
		p.Supplier,
	)

	line2 := fmt.Sprintf("      %s %s", p.Department, p.Description)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
