package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/checkpoint"
	"github.com/desertthunder/plcopy/internal/services"
	"github.com/desertthunder/plcopy/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceListView ViewState = iota
	ConfirmView
	TransferView
	ResultView
)

const barWidth = 40

// Transferer runs one transfer. [tasks.TransferEngine] satisfies it.
type Transferer interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.TransferResult, error)
}

// ModelOpts holds the dependencies of the TUI.
type ModelOpts struct {
	Lister        services.Lister
	Engine        Transferer
	Store         checkpoint.Store
	SourceID      string
	DestinationID string
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	lister services.Lister
	engine Transferer
	store  checkpoint.Store

	sourceID      string
	destinationID string

	width     int
	height    int
	loading   bool
	listReady bool
	spinner   spinner.Model
	videoList list.Model
	items     []services.PlaylistItem

	checkpoint    string
	hasCheckpoint bool

	pending  tea.Cmd
	progress tasks.ProgressUpdate
	done     int
	planned  int
	result   *tasks.TransferResult
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	return &Model{
		ctx:           ctx,
		view:          SourceListView,
		lister:        opts.Lister,
		engine:        opts.Engine,
		store:         opts.Store,
		sourceID:      opts.SourceID,
		destinationID: opts.DestinationID,
		loading:       true,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:          help.New(),
		keys:          newKeyMap(),
	}
}

// Init starts the spinner and lists the source playlist.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listItems())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.videoList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading && m.view != TransferView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case SourceListView:
			return m.handleSourceListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case TransferView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgItemsListed:
		data := msg.data.(itemsListed)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.items = data.items
		m.videoList = newVideoList(data.items, fmt.Sprintf("Source playlist %s", m.sourceID), m.width-4, m.height-8)
		m.listReady = true
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		if update.Phase == tasks.InsertItems {
			m.done, m.planned = update.Step, update.Total
		}
		return m, m.waitForProgress()

	case MsgTransferComplete:
		data := msg.data.(transferComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.pending = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SourceListView:
		return m.renderSourceList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleSourceListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.loading || m.err != nil || !m.listReady:
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.checkpoint, m.hasCheckpoint, _ = m.store.Read(m.ctx)
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = SourceListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = TransferView
		m.done, m.planned = 0, 0
		return m, tea.Batch(m.spinner.Tick, m.startTransfer())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = SourceListView
		m.result = nil
		m.err = nil
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.listItems())
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != SourceListView || !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.videoList, cmd = m.videoList.Update(msg)
	return m, cmd
}

func (m *Model) listItems() tea.Cmd {
	return func() tea.Msg {
		items, err := m.lister.ListPlaylistItems(m.ctx, m.sourceID)
		return itemsListedMsg(items, err)
	}
}

// startTransfer runs the engine in a goroutine; the channel is closed once Run returns.
func (m *Model) startTransfer() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)

	done := make(chan transferComplete, 1)
	go func() {
		result, err := m.engine.Run(m.ctx, progress)
		done <- transferComplete{result, err}
		close(progress)
	}()

	return m.waitForProgressOn(progress, done)
}

func (m *Model) waitForProgress() tea.Cmd {
	return m.pending
}

func (m *Model) waitForProgressOn(progress <-chan tasks.ProgressUpdate, done <-chan transferComplete) tea.Cmd {
	m.pending = func() tea.Msg {
		update, ok := <-progress
		if !ok {
			res := <-done
			return transferCompleteMsg(res.result, res.err)
		}
		return progressUpdateMsg(update)
	}
	return m.pending
}

func (m *Model) renderSourceList() string {
	if m.loading {
		return fmt.Sprintf("%s Fetching all videos from source playlist %s...", m.spinner.View(), m.sourceID)
	}

	transferKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transfer"))
	helpView := m.help.ShortHelpView([]key.Binding{transferKey, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.videoList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Copy %d videos to %s?", len(m.items), m.destinationID))

	resume := "No checkpoint found, starting from the beginning."
	if m.hasCheckpoint {
		resume = fmt.Sprintf("Checkpoint found: will resume after video %s.", m.checkpoint)
	}
	info := fmt.Sprintf("\nSource: %s\nDestination: %s\n%s\n", m.sourceID, m.destinationID, styles.warn.Render(resume))

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.ListSource:
		phase = "Listing source playlist..."
	case tasks.Resume:
		phase = "Reading checkpoint..."
	case tasks.InsertItems:
		phase = fmt.Sprintf("Adding videos (%d/%d)", m.done, m.planned)
	default:
		phase = "Processing..."
	}

	bar := Bar(m.done, m.planned, barWidth)
	return fmt.Sprintf("%s\n\n%s %s\n%s\n%s", title, m.spinner.View(), phase, bar, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.result == nil {
		return styles.err.Render(fmt.Sprintf("Transfer failed: %v", m.err)) + "\n\n" + helpView
	}

	var b strings.Builder
	switch m.result.State {
	case tasks.Completed:
		b.WriteString(styles.ok.Render("✓ Transfer Complete!"))
	case tasks.Aborted:
		b.WriteString(styles.warn.Render("Transfer stopped. Run again to resume."))
	default:
		b.WriteString(styles.err.Render("Transfer failed"))
	}
	b.WriteString("\n\n" + m.result.Summary())

	if m.result.StaleCheckpoint {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("Checkpoint %s was not in the source playlist and was ignored.", m.result.ResumedFrom)))
	}
	if m.result.FailedItemID != "" {
		message, reason := services.ErrorDetail(m.result.Err)
		b.WriteString(fmt.Sprintf("\nFailed on video %s: %s", m.result.FailedItemID, message))
		if reason != "" {
			b.WriteString(fmt.Sprintf(" (%s)", reason))
		}
	} else if m.err != nil {
		b.WriteString("\n" + styles.err.Render(m.err.Error()))
	}

	return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
}
