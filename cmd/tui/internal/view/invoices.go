package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

type invoicesState int

const (
	invoicesStateBrowse invoicesState = iota
	invoicesStateForm
)

type invoiceAction int

const (
	actionAssign invoiceAction = iota
	actionSendToFinance
	actionMarkPaid
	actionFinanceNotes
	actionSupplyChainNotes
	actionSearch
	actionDelete
)

var statusFilters = []*invoice.Status{
	nil,
	new(invoice.StatusPending),
	new(invoice.StatusAssignedToSupplyChain),
	new(invoice.StatusSentToFinance),
	new(invoice.StatusApproved),
	new(invoice.StatusRejected),
	new(invoice.StatusPaid),
}

var dateFilters = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeLast30Days}

// InvoicesModel lists invoices with their live status labels and drives the
// workflow actions. With overdue set it shows only unpaid invoices past the
// overdue threshold.
type InvoicesModel struct {
	CommonModel
	invoiceService *invoice.Service
	sess           access.Session
	overdue        bool
	now            func() time.Time

	state  invoicesState
	table  table.Model
	invs   []*invoice.Invoice
	form   *huh.Form
	action invoiceAction

	statusFilterIdx int
	dateFilterIdx   int
	filter          invoice.ListFilter

	loading bool
	err     error
	status  string
}

func NewInvoicesModel(svc *invoice.Service, sess access.Session, overdue bool) InvoicesModel {
	columns := []table.Column{
		{Title: "Received", Width: 12},
		{Title: "Number", Width: 14},
		{Title: "Supplier", Width: 24},
		{Title: "Amount", Width: 12},
		{Title: "Status", Width: 26},
		{Title: "Days", Width: 5},
		{Title: "Department", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return InvoicesModel{
		invoiceService: svc,
		sess:           sess,
		overdue:        overdue,
		now:            time.Now,
		table:          t,
		loading:        true,
	}
}

func (m InvoicesModel) Title() string {
	if m.overdue {
		return "Overdue Invoices"
	}
	return "Invoices"
}

func (m InvoicesModel) ShortHelp() string {
	if m.state == invoicesStateForm {
		return "Navigate form | Esc: cancel"
	}
	if m.overdue {
		return "Esc: back | r: refresh | g: assign | f: finance | p: paid"
	}
	return "Esc: back | s: status | d: date | /: search | r: refresh | a/x/o: approve/reject/reopen | g/f/p: assign/finance/paid | n/c: notes | D: delete"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.invs = msg.invs
		m.refreshTable()
		return m, nil

	case invoiceActionMsg:
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.status = msg.status
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case invoicesStateBrowse:
		return m.updateBrowse(msg)
	case invoicesStateForm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			if m.overdue {
				break
			}
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.filter.Status = statusFilters[m.statusFilterIdx]
			return m, m.loadCmd()
		case "d":
			if m.overdue {
				break
			}
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(dateFilters)
			m.applyDateFilter()
			return m, m.loadCmd()
		case "a":
			return m, m.simpleCmd("approved", m.invoiceService.Approve)
		case "x":
			return m, m.simpleCmd("rejected", m.invoiceService.Reject)
		case "o":
			return m, m.simpleCmd("reopened", m.invoiceService.Reopen)
		case "g":
			return m.openForm(actionAssign)
		case "f":
			return m.openForm(actionSendToFinance)
		case "p":
			return m.openForm(actionMarkPaid)
		case "n":
			return m.openForm(actionFinanceNotes)
		case "c":
			return m.openForm(actionSupplyChainNotes)
		case "/":
			if m.overdue {
				break
			}
			return m.openForm(actionSearch)
		case "D":
			return m.openForm(actionDelete)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m InvoicesModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invs) {
		return nil
	}
	return m.invs[idx]
}

func (m InvoicesModel) openForm(action invoiceAction) (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil && action != actionSearch {
		return m, nil
	}

	var fields []huh.Field

	switch action {
	case actionAssign:
		fields = []huh.Field{
			huh.NewInput().Key("assignee").Title("Assign To").Value(new(inv.AssignedTo)).
				Validate(required("assignee")),
			huh.NewText().Key("notes").Title("Supply Chain Notes").Value(new(inv.SupplyChainNotes)),
		}
	case actionSendToFinance:
		fields = []huh.Field{
			huh.NewText().Key("notes").Title("Supply Chain Notes").Value(new(inv.SupplyChainNotes)),
		}
	case actionMarkPaid:
		fields = []huh.Field{
			huh.NewInput().Key("date").Title("Payment Date").Placeholder("YYYY-MM-DD").
				Value(new(FormatDate(m.now()))).
				Validate(func(s string) error {
					_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
					return err
				}),
			huh.NewText().Key("notes").Title("Finance Notes").Value(new(inv.FinanceNotes)),
		}
	case actionFinanceNotes:
		fields = []huh.Field{
			huh.NewText().Key("notes").Title("Finance Notes").Value(new(inv.FinanceNotes)),
		}
	case actionSupplyChainNotes:
		fields = []huh.Field{
			huh.NewText().Key("notes").Title("Supply Chain Notes").Value(new(inv.SupplyChainNotes)),
		}
	case actionSearch:
		fields = []huh.Field{
			huh.NewInput().Key("search").Title("Search").
				Description("Number, supplier, description or assignee").
				Value(new(m.filter.Search)),
		}
	case actionDelete:
		fields = []huh.Field{
			huh.NewConfirm().Key("confirm").
				Title(fmt.Sprintf("Delete invoice %s from %s?", inv.InvoiceNumber, inv.Supplier)).
				Affirmative("Delete").
				Negative("Cancel"),
		}
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.action = action
	m.state = invoicesStateForm
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.action == actionSearch {
		m.filter.Search = strings.TrimSpace(m.form.GetString("search"))
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadCmd()
	}

	submit := m.submitCmd()
	m.state = invoicesStateBrowse
	m.form = nil
	m.table.Focus()

	return m, submit
}

func (m *InvoicesModel) applyDateFilter() {
	selectedRange(dateFilters[m.dateFilterIdx], m.now()).Apply(&m.filter)
}

func (m *InvoicesModel) refreshTable() {
	now := m.now()

	rows := make([]table.Row, 0, len(m.invs))
	for _, inv := range m.invs {
		rows = append(rows, table.Row{
			FormatDate(inv.ReceivedDate),
			inv.InvoiceNumber,
			inv.Supplier,
			FormatAmount(inv.Amount),
			inv.Display(now).Label,
			fmt.Sprintf("%d", inv.DaysElapsed(now)),
			inv.Department,
		})
	}
	m.table.SetRows(rows)
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(
			errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)",
		)
	}

	header := fmt.Sprintf("%s: %d unpaid past %d days", m.Title(), len(m.invs), invoice.OverdueDays)
	if !m.overdue {
		statusLabel := "All"
		if st := statusFilters[m.statusFilterIdx]; st != nil {
			statusLabel = st.Label()
		}

		search := ""
		if m.filter.Search != "" {
			search = fmt.Sprintf(" | [/] Search: %s", activeStyle(m.filter.Search))
		}

		header = fmt.Sprintf(
			"Filter: [s] Status: %s | [d] Received: %s%s",
			activeStyle(statusLabel),
			activeStyle(dateFilters[m.dateFilterIdx].String()),
			search,
		)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	panel := m.detailPanel()
	if m.state == invoicesStateForm && m.form != nil {
		panel = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	footer := faintStyle.Render(m.ShortHelp())
	if m.status != "" {
		footer = m.status + "\n" + footer
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + footer)
}

func (m InvoicesModel) detailPanel() string {
	inv := m.selected()
	if inv == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", lipgloss.NewStyle().Bold(true).Render(inv.InvoiceNumber), RenderDisplay(inv.Display(m.now())))
	fmt.Fprintf(&b, "Supplier:    %s\n", inv.Supplier)
	fmt.Fprintf(&b, "Amount:      %s\n", FormatAmount(inv.Amount))
	fmt.Fprintf(&b, "Assigned To: %s\n", inv.AssignedTo)

	if inv.PaymentDate != nil {
		fmt.Fprintf(&b, "Paid On:     %s\n", FormatDate(*inv.PaymentDate))
	}

	if inv.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", inv.Description)
	}

	if inv.SupplyChainNotes != "" {
		fmt.Fprintf(&b, "\nSupply chain: %s\n", inv.SupplyChainNotes)
	}

	if inv.FinanceNotes != "" {
		fmt.Fprintf(&b, "\nFinance: %s\n", inv.FinanceNotes)
	}

	next := invoice.NextStatuses(inv.Status)
	if len(next) > 0 {
		labels := make([]string, len(next))
		for i, s := range next {
			labels[i] = s.Label()
		}
		fmt.Fprintf(&b, "\nNext: %s", strings.Join(labels, ", "))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(48).
		Render(b.String())
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// Messages

type loadInvoicesMsg struct {
	invs []*invoice.Invoice
	err  error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if m.overdue {
			invs, err := m.invoiceService.ListOverdue(ctx, m.sess, m.now())
			return loadInvoicesMsg{invs: invs, err: err}
		}

		invs, err := m.invoiceService.List(ctx, m.sess, filter)
		return loadInvoicesMsg{invs: invs, err: err}
	}
}

type invoiceActionMsg struct {
	status string
	err    error
}

type simpleAction func(ctx context.Context, sess access.Session, id uuid.UUID) (*invoice.Invoice, error)

func (m InvoicesModel) simpleCmd(verb string, fn simpleAction) tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := fn(ctx, m.sess, inv.ID); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("Invoice %s %s.", inv.InvoiceNumber, verb)}
	}
}

func (m InvoicesModel) submitCmd() tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	action := m.action
	notes := strings.TrimSpace(m.form.GetString("notes"))
	assignee := strings.TrimSpace(m.form.GetString("assignee"))
	date := strings.TrimSpace(m.form.GetString("date"))
	confirmed := m.form.GetBool("confirm")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var (
			err    error
			status string
		)

		switch action {
		case actionAssign:
			_, err = m.invoiceService.AssignToSupplyChain(ctx, m.sess, inv.ID, assignee, notes)
			status = fmt.Sprintf("Invoice %s assigned to %s.", inv.InvoiceNumber, assignee)
		case actionSendToFinance:
			_, err = m.invoiceService.SendToFinance(ctx, m.sess, inv.ID, notes)
			status = fmt.Sprintf("Invoice %s sent to finance.", inv.InvoiceNumber)
		case actionMarkPaid:
			var paidOn time.Time
			paidOn, err = time.Parse("2006-01-02", date)
			if err == nil {
				_, err = m.invoiceService.MarkPaid(ctx, m.sess, inv.ID, paidOn, notes)
			}
			status = fmt.Sprintf("Invoice %s marked paid.", inv.InvoiceNumber)
		case actionFinanceNotes:
			_, err = m.invoiceService.UpdateFinanceNotes(ctx, m.sess, inv.ID, notes)
			status = "Finance notes saved."
		case actionSupplyChainNotes:
			_, err = m.invoiceService.UpdateSupplyChainNotes(ctx, m.sess, inv.ID, notes)
			status = "Supply chain notes saved."
		case actionDelete:
			if !confirmed {
				return invoiceActionMsg{status: "Delete cancelled."}
			}
			err = m.invoiceService.Delete(ctx, m.sess, inv.ID)
			status = fmt.Sprintf("Invoice %s deleted.", inv.InvoiceNumber)
		}

		return invoiceActionMsg{status: status, err: err}
	}
}
