package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

const (
	AppTitle        = "WEREWOLF GM"
	PlaceHolderText = "Type a command (help lists them)..."
)

// logKind selects the style a log line is rendered with.
type logKind int

const (
	logNarration logKind = iota
	logGM
	logInfo
	logPrivate
	logError
)

type logLine struct {
	kind logKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the game master cockpit.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *SessionView
	scenarioName string
	lines        []logLine
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type commandResultMsg struct {
	view *CommandView
	err  error
}

type commandDroppedMsg struct {
	view  *SessionView
	actor string
	err   error
}

type nightResolvedMsg struct {
	result *engine.NightResult
	err    error
}

type dayExecutedMsg struct {
	result *engine.DayResult
	err    error
}

type winResultMsg struct {
	result *engine.WinResult
	err    error
}

type sessionRefreshedMsg struct {
	view *SessionView
	err  error
}

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	gmStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")) // teal

	privateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")). // dark grey
			Strikethrough(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, session *SessionView, scenarioName string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		config:       cfg,
		client:       client,
		session:      session,
		scenarioName: scenarioName,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: metaVp,
	}
	ui.lines = append(ui.lines,
		logLine{logInfo, fmt.Sprintf("Session %s started: %s, %d players.",
			session.ID.String()[:8], scenarioName, len(session.State.Players))},
		logLine{logNarration, fmt.Sprintf("Night %d falls over the village. Call the roles in order and queue their actions.", session.State.Cycle)},
	)
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// The viewport component ignores events outside its bounds.
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.70) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(logWidth - 4)

		m.ready = true
		m.writeLogContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case commandResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(logError, "Error: "+msg.err.Error())
		} else if !msg.view.Success {
			m.appendLine(logError, "Rejected: "+msg.view.Message)
		} else {
			m.appendLine(logNarration, msg.view.Message)
			for k, v := range msg.view.Metadata {
				m.appendLine(logPrivate, fmt.Sprintf("(private) %s: %s", k, v))
			}
		}
		m.writeLogContent()
		return m, m.refreshSession()

	case commandDroppedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(logError, "Error: "+msg.err.Error())
			m.writeLogContent()
			return m, nil
		}
		m.session = msg.view
		m.appendLine(logInfo, fmt.Sprintf("Dropped the pending action of %s.", msg.actor))
		m.writeLogContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case nightResolvedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(logError, "Error: "+msg.err.Error())
		} else {
			m.narrateNight(msg.result)
		}
		m.writeLogContent()
		return m, m.refreshSession()

	case dayExecutedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(logError, "Error: "+msg.err.Error())
		} else {
			for _, line := range msg.result.Messages {
				m.appendLine(logNarration, line)
			}
			m.appendLine(logNarration, fmt.Sprintf("Night %d falls over the village.", msg.result.State.Cycle))
		}
		m.writeLogContent()
		return m, m.refreshSession()

	case winResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLine(logError, "Error: "+msg.err.Error())
		} else if !msg.result.Ended {
			m.appendLine(logInfo, "No winner yet. The game goes on.")
		} else {
			m.appendLine(logNarration, "GAME OVER: "+msg.result.Reason)
			m.appendLine(logInfo, "Winners: "+m.winnerNames(msg.result))
		}
		m.writeLogContent()
		return m, nil

	case sessionRefreshedMsg:
		if msg.err == nil && msg.view != nil {
			m.session = msg.view
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// handleInput parses a game master command line. Players are addressed
// by seat ID (p3) or by name; names with spaces need the seat ID.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	m.appendLine(logGM, "GM: "+input)

	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "help":
		m.appendHelp()

	case "players":
		m.appendRoster()

	case "pending":
		m.appendPending()

	case "copy":
		if err := clipboard.WriteAll(m.session.ID.String()); err != nil {
			m.appendLine(logError, "Clipboard unavailable: "+err.Error())
		} else {
			m.appendLine(logInfo, "Session ID copied to the clipboard.")
		}

	case "use":
		if len(args) < 2 {
			m.appendLine(logError, "Usage: use <skill> <actor> [targets...]")
			break
		}
		skill := strings.ToLower(args[0])
		actor, ok := m.resolvePlayer(args[1])
		if !ok {
			m.appendLine(logError, fmt.Sprintf("No player %q.", args[1]))
			break
		}
		var targets []string
		failed := false
		for _, tok := range args[2:] {
			p, ok := m.resolvePlayer(tok)
			if !ok {
				m.appendLine(logError, fmt.Sprintf("No player %q.", tok))
				failed = true
				break
			}
			targets = append(targets, p.ID)
		}
		if failed {
			break
		}
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.submit(skill, actor.ID, targets), progressTick())

	case "drop":
		if len(args) != 1 {
			m.appendLine(logError, "Usage: drop <actor>")
			break
		}
		actor, ok := m.resolvePlayer(args[0])
		if !ok {
			m.appendLine(logError, fmt.Sprintf("No player %q.", args[0]))
			break
		}
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.drop(actor), progressTick())

	case "resolve":
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.resolve(), progressTick())

	case "execute":
		if len(args) != 1 {
			m.appendLine(logError, "Usage: execute <player>")
			break
		}
		target, ok := m.resolvePlayer(args[0])
		if !ok {
			m.appendLine(logError, fmt.Sprintf("No player %q.", args[0]))
			break
		}
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.execute(target.ID), progressTick())

	case "undo":
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.undo(), progressTick())

	case "redo":
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.redo(), progressTick())

	case "win":
		m.loading = true
		m.progressTick = 0
		m.writeLogContent()
		return m, tea.Batch(m.win(), progressTick())

	default:
		m.appendLine(logError, fmt.Sprintf("Unknown command %q. Type help for the list.", verb))
	}

	m.writeLogContent()
	return m, nil
}

func (m *ConsoleUI) appendLine(kind logKind, text string) {
	m.lines = append(m.lines, logLine{kind, text})
}

func (m *ConsoleUI) appendHelp() {
	help := []string{
		"use <skill> <actor> [targets...]  queue a night action",
		"drop <actor>                      withdraw a queued action",
		"resolve                           resolve the night, narrate the morning",
		"execute <player>                  carry out the day vote",
		"undo / redo                       step the command history",
		"win                               check win conditions",
		"players                           show the roster",
		"pending                           show queued actions",
		"copy                              copy the session ID to the clipboard",
	}
	m.appendLine(logInfo, "Commands:")
	for _, h := range help {
		m.appendLine(logInfo, "  "+h)
	}
	m.appendLine(logInfo, "Players are addressed by seat ID (p3) or name; use the ID for names with spaces.")
}

func (m *ConsoleUI) appendRoster() {
	for _, p := range m.seatedPlayers() {
		line := fmt.Sprintf("%-4s %-14s %-12s %s", p.ID, p.Name, p.RoleID, p.Team)
		if !p.IsAlive() {
			line += "  dead (" + p.Meta.KilledBy + ")"
		}
		m.appendLine(logInfo, line)
	}
}

func (m *ConsoleUI) appendPending() {
	if len(m.session.Pending) == 0 {
		m.appendLine(logInfo, "No actions queued.")
		return
	}
	for _, d := range m.session.Pending {
		targets := make([]string, 0, len(d.TargetIDs))
		for _, id := range d.TargetIDs {
			targets = append(targets, m.playerName(id))
		}
		line := fmt.Sprintf("%s: %s %s", m.playerName(d.ActorID), d.Skill, strings.Join(targets, ", "))
		m.appendLine(logInfo, strings.TrimSpace(line))
	}
}

func (m *ConsoleUI) narrateNight(res *engine.NightResult) {
	m.appendLine(logNarration, fmt.Sprintf("--- Morning of day %d ---", res.State.Cycle))
	for _, line := range res.Messages {
		m.appendLine(logNarration, line)
	}
	for _, inv := range res.Investigations {
		m.appendLine(logPrivate, fmt.Sprintf("(private) Tell %s: %s reads as %s.",
			m.playerName(inv.ActorID), m.playerName(inv.TargetID), inv.ApparentTeam))
	}
	for _, eff := range res.Effects {
		if eff.Kind == "rejected" {
			m.appendLine(logError, "Rejected during the night: "+eff.Detail)
		}
	}
}

func (m ConsoleUI) winnerNames(res *engine.WinResult) string {
	names := make([]string, 0, len(res.WinnerIDs))
	for _, id := range res.WinnerIDs {
		names = append(names, m.playerName(id))
	}
	if len(names) == 0 {
		return "nobody"
	}
	return strings.Join(names, ", ")
}

func (m ConsoleUI) playerName(id string) string {
	if p, ok := m.session.State.Players[id]; ok {
		return p.Name
	}
	return id
}

// resolvePlayer matches a token against seat IDs first, then against
// names case-insensitively.
func (m ConsoleUI) resolvePlayer(token string) (player.Player, bool) {
	if p, ok := m.session.State.Players[token]; ok {
		return p, true
	}
	lower := strings.ToLower(token)
	for _, p := range m.session.State.Players {
		if strings.ToLower(p.Name) == lower {
			return p, true
		}
	}
	return player.Player{}, false
}

func (m ConsoleUI) seatedPlayers() []player.Player {
	players := make([]player.Player, 0, len(m.session.State.Players))
	for _, p := range m.session.State.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Position < players[j].Position
	})
	return players
}

func (m *ConsoleUI) writeLogContent() {
	logWidth := m.logViewport.Width - 6 // Account for panel padding
	if logWidth < 20 {
		logWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(AppTitle) + "\n\n")
	content.WriteString("Run the village from here. Type help for the command list.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", logWidth-6)) + "\n\n")

	for _, line := range m.lines {
		wrapped := wordwrap.String(line.text, logWidth)
		switch line.kind {
		case logNarration:
			content.WriteString(narratorStyle.Render(wrapped))
		case logGM:
			content.WriteString(gmStyle.Render(wrapped))
		case logPrivate:
			content.WriteString(privateStyle.Render(wrapped))
		case logError:
			content.WriteString(errorStyle.Render(wrapped))
		default:
			content.WriteString(wrapped)
		}
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	gs := m.session.State

	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("ID: " + m.session.ID.String()[:8] + "...\n")
	content.WriteString("Scenario: " + m.scenarioName + "\n")
	if gs.Phase == state.PhaseNight {
		content.WriteString(fmt.Sprintf("Phase: Night %d\n\n", gs.Cycle))
	} else {
		content.WriteString(fmt.Sprintf("Phase: Day %d\n\n", gs.Cycle))
	}

	content.WriteString(titleStyle.Render("ROSTER") + "\n")
	for _, p := range m.seatedPlayers() {
		line := fmt.Sprintf("%-3s %s", p.ID, p.Name)
		if p.IsAlive() {
			content.WriteString(line + "\n")
		} else {
			content.WriteString(deadStyle.Render(line) + "\n")
		}
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Queued actions: %d\n", len(m.session.Pending)))
	content.WriteString(fmt.Sprintf("Undo: %v  Redo: %v\n\n", m.session.CanUndo, m.session.CanRedo))

	content.WriteString("Keys:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Run command\n")

	return content.String()
}

func (m ConsoleUI) submit(skill, actorID string, targetIDs []string) tea.Cmd {
	return func() tea.Msg {
		view, err := submitCommand(m.client, m.config.APIBaseURL, m.session.ID, skill, actorID, targetIDs)
		return commandResultMsg{view, err}
	}
}

func (m ConsoleUI) drop(actor player.Player) tea.Cmd {
	return func() tea.Msg {
		view, err := unsubmitCommand(m.client, m.config.APIBaseURL, m.session.ID, actor.ID)
		return commandDroppedMsg{view, actor.Name, err}
	}
}

func (m ConsoleUI) resolve() tea.Cmd {
	return func() tea.Msg {
		res, err := resolveNight(m.client, m.config.APIBaseURL, m.session.ID)
		return nightResolvedMsg{res, err}
	}
}

func (m ConsoleUI) execute(targetID string) tea.Cmd {
	return func() tea.Msg {
		res, err := executeDay(m.client, m.config.APIBaseURL, m.session.ID, targetID)
		return dayExecutedMsg{res, err}
	}
}

func (m ConsoleUI) undo() tea.Cmd {
	return func() tea.Msg {
		view, err := undoCommand(m.client, m.config.APIBaseURL, m.session.ID)
		return commandResultMsg{view, err}
	}
}

func (m ConsoleUI) redo() tea.Cmd {
	return func() tea.Msg {
		view, err := redoCommand(m.client, m.config.APIBaseURL, m.session.ID)
		return commandResultMsg{view, err}
	}
}

func (m ConsoleUI) win() tea.Cmd {
	return func() tea.Msg {
		res, err := checkWin(m.client, m.config.APIBaseURL, m.session.ID)
		return winResultMsg{res, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		view, err := getSession(m.client, m.config.APIBaseURL, m.session.ID)
		return sessionRefreshedMsg{view, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Table?"))
	content.WriteString("\n\n")
	content.WriteString("The session is saved on the server and can be resumed later.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
