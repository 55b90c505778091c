package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/dashboard"
	tea "github.com/charmbracelet/bubbletea"
)

// AdminTab is one panel of the admin view.
type AdminTab int

const (
	TabBalances AdminTab = iota
	TabWithdrawals
	TabAccess
)

var adminTabs = []string{"Balances", "Withdrawals", "Access"}

// AdminData is one refresh of the admin view.
type AdminData struct {
	Overview *dashboard.Overview
	Account  string
	// Access is nil when no account is connected.
	Access *access.Result
}

// AdminFetcher loads fresh data for the admin view.
type AdminFetcher func(ctx context.Context) (AdminData, error)

// AdminModel is the Bubble Tea model of the live admin view.
type AdminModel struct {
	network  string
	interval time.Duration
	fetch    AdminFetcher

	active     AdminTab
	data       AdminData
	loading    bool
	err        string
	lastUpdate time.Time
	quitting   bool
}

type adminTickMsg time.Time
type adminDataMsg AdminData
type adminErrMsg string

// NewAdminModel creates the model. A zero interval disables auto-refresh.
func NewAdminModel(network string, interval time.Duration, fetch AdminFetcher) AdminModel {
	return AdminModel{network: network, interval: interval, fetch: fetch, loading: true}
}

// RunAdmin runs the admin view until the user quits.
func RunAdmin(m AdminModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Active returns the selected tab.
func (m AdminModel) Active() AdminTab { return m.active }

func (m AdminModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), m.tick())
}

func (m AdminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "right", "l":
			m.active = (m.active + 1) % AdminTab(len(adminTabs))
		case "shift+tab", "left", "h":
			m.active = (m.active + AdminTab(len(adminTabs)) - 1) % AdminTab(len(adminTabs))
		case "1", "2", "3":
			m.active = AdminTab(msg.String()[0] - '1')
		case "r":
			if !m.loading {
				m.loading = true
				return m, m.fetchCmd()
			}
		}

	case adminTickMsg:
		if m.loading {
			return m, m.tick()
		}
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), m.tick())

	case adminDataMsg:
		m.data = AdminData(msg)
		m.loading = false
		m.err = ""
		m.lastUpdate = time.Now()

	case adminErrMsg:
		m.loading = false
		m.err = string(msg)
	}
	return m, nil
}

func (m AdminModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("Swapper admin · "+m.network) + "\n")

	tabs := make([]string, len(adminTabs))
	for i, name := range adminTabs {
		label := fmt.Sprintf("%d %s", i+1, name)
		if AdminTab(i) == m.active {
			tabs[i] = StyleActiveTab.Render(label)
		} else {
			tabs[i] = StyleTab.Render(label)
		}
	}
	sb.WriteString(strings.Join(tabs, " ") + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n\n")
	}

	switch {
	case m.data.Overview == nil:
		sb.WriteString(Meta("Loading...") + "\n")
	case m.active == TabBalances:
		sb.WriteString(RenderBalances(m.data.Overview) + "\n")
	case m.active == TabWithdrawals:
		sb.WriteString(RenderWithdrawals(m.data.Overview) + "\n")
	case m.active == TabAccess:
		if m.data.Access == nil {
			sb.WriteString(Meta("No wallet connected. Select one with --wallet.") + "\n")
		} else {
			sb.WriteString(RenderAccess(m.data.Account, *m.data.Access) + "\n")
		}
	}

	status := "updated " + m.lastUpdate.Format("15:04:05")
	if m.lastUpdate.IsZero() {
		status = "never updated"
	}
	if m.loading {
		status = "refreshing..."
	}
	sb.WriteString("\n" + Meta(status+" · tab/←→ switch · r refresh · q quit"))
	return sb.String()
}

func (m AdminModel) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		data, err := fetch(context.Background())
		if err != nil {
			return adminErrMsg(err.Error())
		}
		return adminDataMsg(data)
	}
}

func (m AdminModel) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return adminTickMsg(t) })
}
