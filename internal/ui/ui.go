package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hitline/internal/models"
	"github.com/desertthunder/hitline/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	GeneratingView
	ResultView
	ErrorView
)

// Mode selects which playlist flow a prompt is sent to.
type Mode int

const (
	ModeSmall Mode = iota
	ModeLarge
	ModeMix
)

var modes = []Mode{ModeSmall, ModeLarge, ModeMix}

func (m Mode) String() string {
	switch m {
	case ModeLarge:
		return "large"
	case ModeMix:
		return "mix"
	default:
		return "small"
	}
}

// Source is the history source recorded for playlists generated in this mode.
func (m Mode) Source() models.PlaylistSource {
	switch m {
	case ModeLarge:
		return models.SourceLarge
	case ModeMix:
		return models.SourceMix
	default:
		return models.SourceSmall
	}
}

func (m Mode) defaultCount() int {
	if m == ModeLarge {
		return 100
	}
	return 20
}

// PlaylistSaver persists generated playlists. A nil saver disables saving.
type PlaylistSaver interface {
	Create(playlist *models.PersistedPlaylist) error
}

// ModelOpts contains the dependencies of the TUI. Only Engine is required.
type ModelOpts struct {
	Engine   *tasks.PlaylistEngine
	Store    PlaylistSaver
	MinSongs int // Mix results below this are shown as an error
	Mode     Mode
	Prompt   string
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	engine       *tasks.PlaylistEngine
	store        PlaylistSaver
	minSongs     int
	view         ViewState
	mode         Mode
	running      Mode
	prompt       textinput.Model
	count        textinput.Model
	focus        int
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan tasks.Result
	progress     tasks.ProgressUpdate
	submitted    string
	playlist     *models.Playlist
	resultList   list.Model
	savedID      string
	notice       string
	err          error
	help         help.Model
	keys         keyMap
	width        int
	height       int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	prompt := textinput.New()
	prompt.Placeholder = "90s female-fronted rock"
	prompt.CharLimit = 300
	prompt.Width = 50
	prompt.SetValue(opts.Prompt)
	prompt.Focus()

	count := textinput.New()
	count.CharLimit = 4
	count.Width = 6
	count.Placeholder = strconv.Itoa(opts.Mode.defaultCount())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.title

	return &Model{
		ctx:      ctx,
		engine:   opts.Engine,
		store:    opts.Store,
		minSongs: opts.MinSongs,
		view:     PromptView,
		mode:     opts.Mode,
		prompt:   prompt,
		count:    count,
		spinner:  s,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the cursor blink of the prompt input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == ResultView {
			m.resultList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case GeneratingView:
			return m.handleGeneratingKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ErrorView:
			return m.handleErrorKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != GeneratingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForProgress(m.progressChan, m.resultChan)

	case MsgGenerationComplete:
		m.finishGeneration(msg.data.(tasks.Result))
		return m, nil

	case MsgPlaylistSaved:
		saved := msg.data.(saveResult)
		if saved.err != nil {
			m.notice = styles.err.Render(fmt.Sprintf("Save failed: %v", saved.err))
			return m, nil
		}
		m.savedID = saved.id
		m.notice = styles.ok.Render(fmt.Sprintf("Saved as %s", saved.id))
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case GeneratingView:
		return m.renderGenerating()
	case ResultView:
		return m.renderResult()
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc:
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.toggleFocus()
		return m, nil
	case key.Matches(msg, m.keys.mode):
		m.cycleMode()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.startGeneration()
	}
	return m.updateInputs(msg)
}

func (m *Model) handleGeneratingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resultList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.restart):
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.save):
			return m, m.savePlaylist()
		}
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.reset()
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != PromptView {
		return m, nil
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.prompt, cmd = m.prompt.Update(msg)
	} else {
		m.count, cmd = m.count.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	m.focus = (m.focus + 1) % 2
	if m.focus == 0 {
		m.count.Blur()
		m.prompt.Focus()
	} else {
		m.prompt.Blur()
		m.count.Focus()
	}
}

func (m *Model) cycleMode() {
	m.mode = modes[(int(m.mode)+1)%len(modes)]
	m.count.Placeholder = strconv.Itoa(m.mode.defaultCount())
}

// reset returns to the prompt view, keeping the last prompt for editing.
func (m *Model) reset() {
	m.view = PromptView
	m.playlist = nil
	m.savedID = ""
	m.notice = ""
	m.err = nil
	m.progress = tasks.ProgressUpdate{}
}

// parsedCount reads the count input, falling back to the mode default when empty.
func (m *Model) parsedCount() (int, error) {
	raw := strings.TrimSpace(m.count.Value())
	if raw == "" {
		return m.mode.defaultCount(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("count must be a positive number, got %q", raw)
	}
	return n, nil
}

// startGeneration validates the form and runs the selected flow in the background.
func (m *Model) startGeneration() tea.Cmd {
	prompt := strings.TrimSpace(m.prompt.Value())
	if prompt == "" {
		m.notice = styles.warn.Render("Enter a prompt first")
		return nil
	}
	count, err := m.parsedCount()
	if err != nil {
		m.notice = styles.warn.Render(err.Error())
		return nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan tasks.Result, 1)

	m.cancel = cancel
	m.progressChan = progress
	m.resultChan = done
	m.submitted = prompt
	m.running = m.mode
	m.notice = ""
	m.progress = tasks.ProgressUpdate{Message: "Starting..."}
	m.view = GeneratingView

	go func(mode Mode) {
		defer close(progress)
		done <- m.run(ctx, mode, prompt, count, progress)
	}(m.running)

	return tea.Batch(m.spinner.Tick, waitForProgress(progress, done))
}

func (m *Model) run(ctx context.Context, mode Mode, prompt string, count int, progress chan<- tasks.ProgressUpdate) tasks.Result {
	switch mode {
	case ModeLarge:
		return m.engine.GenerateLargePlaylist(ctx, prompt, count, progress)
	case ModeMix:
		return m.engine.CreateValidatedPlaylist(ctx, prompt, count, progress)
	default:
		return m.engine.GenerateSmallPlaylist(ctx, prompt, count, progress)
	}
}

// waitForProgress relays the next update, or the final result once progress is closed.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan tasks.Result) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return generationCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) finishGeneration(res tasks.Result) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.progressChan = nil
	m.resultChan = nil

	if !res.Success {
		m.err = resultErr(res)
		m.view = ErrorView
		return
	}
	if m.running == ModeMix && m.minSongs > 0 {
		if err := res.Playlist.RequireMinimum(m.minSongs); err != nil {
			m.err = err
			m.view = ErrorView
			return
		}
	}

	m.playlist = res.Playlist
	m.savedID = ""
	m.resultList = list.New(playlistItems(res.Playlist), list.NewDefaultDelegate(), 0, 0)
	m.resultList.Title = res.Playlist.Name
	m.resultList.SetShowHelp(false)
	m.resultList.SetSize(m.width-4, m.height-6)
	m.view = ResultView
}

func resultErr(res tasks.Result) error {
	if err := res.Err(); err != nil {
		return err
	}
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return errors.New("generation failed")
}

func (m *Model) savePlaylist() tea.Cmd {
	switch {
	case m.store == nil:
		m.notice = styles.warn.Render("History is not configured")
		return nil
	case m.playlist == nil || m.savedID != "":
		return nil
	}

	store := m.store
	stored := models.NewPersistedPlaylist(0, m.submitted, m.running.Source(), *m.playlist)
	return func() tea.Msg {
		err := store.Create(stored)
		return playlistSavedMsg(stored.ID(), err)
	}
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("hitline")

	labels := make([]string, len(modes))
	for i, mode := range modes {
		if mode == m.mode {
			labels[i] = styles.active.Render(mode.String())
		} else {
			labels[i] = mode.String()
		}
	}

	form := fmt.Sprintf(
		"Mode:   %s\nPrompt: %s\nCount:  %s",
		strings.Join(labels, "  "),
		m.prompt.View(),
		m.count.View(),
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.next, m.keys.mode})
	out := fmt.Sprintf("%s\n%s\n", title, form)
	if m.notice != "" {
		out += "\n" + m.notice + "\n"
	}
	return fmt.Sprintf("%s\n%s", out, helpView)
}

func (m *Model) renderGenerating() string {
	title := styles.title.Render(fmt.Sprintf("Generating %s playlist", m.running))

	var phase string
	switch m.progress.Phase {
	case tasks.AccumulateBatch:
		phase = fmt.Sprintf("Batch %d/%d", m.progress.Step, m.progress.Total)
	case tasks.ValidateCandidates:
		phase = fmt.Sprintf("Checking songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AssemblePlaylist:
		phase = "Assembling playlist"
	default:
		phase = "Asking the model"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n%s %s\n%s\n\n%s", title, m.spinner.View(), phase, styles.help.Render(m.progress.Message), helpView)
}

func (m *Model) renderResult() string {
	summary := fmt.Sprintf("%d %s", m.playlist.Len(), m.playlist.Type)
	if m.playlist.Description != "" {
		summary = fmt.Sprintf("%s • %s", summary, m.playlist.Description)
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	if m.store != nil && m.savedID == "" {
		helpKeys = append([]key.Binding{m.keys.save}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	out := fmt.Sprintf("%s\n%s", m.resultList.View(), styles.help.Render(summary))
	if m.notice != "" {
		out += "\n" + m.notice
	}
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}

func (m *Model) renderError() string {
	msg := styles.err.Render(fmt.Sprintf("Generation failed: %v", m.err))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", msg, helpView)
}
