package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicplayer/internal/models"
	"github.com/desertthunder/musicplayer/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	SongListView
	ConfirmDeleteView
	SyncView
	ResultView
)

// Library is the part of [tasks.Engine] the TUI drives.
type Library interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
	Songs(ctx context.Context, id int64) ([]models.Song, error)
	Update(ctx context.Context, id int64, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
	Delete(ctx context.Context, id int64) error
}

// syncJob carries a running sync's progress and its final outcome.
type syncJob struct {
	progress chan tasks.ProgressUpdate
	done     chan syncPayload
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	library      Library
	width        int
	height       int
	playlistList list.Model
	songList     list.Model
	selected     *models.Playlist
	job          *syncJob
	progress     tasks.ProgressUpdate
	result       *tasks.SyncResult
	deleted      *models.Playlist
	err          error
	fatal        error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, library Library) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		library:      library,
		playlistList: newList(nil, "Playlists"),
		songList:     newList(nil, "Songs"),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init initializes the TUI by loading stored playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !m.filtering() {
			return m, tea.Quit
		}
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case SongListView:
			return m.handleSongListKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsPayload)
		if data.err != nil {
			m.fatal = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, p := range data.playlists {
			items[i] = playlistItem{playlist: p}
		}
		cmd := m.playlistList.SetItems(items)
		return m, cmd

	case MsgSongsFetched:
		data := msg.data.(songsPayload)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.songs))
		for i, s := range data.songs {
			items[i] = songItem{song: s}
		}
		m.songList.Title = fmt.Sprintf("Songs in '%s'", data.playlist.Title)
		cmd := m.songList.SetItems(items)
		m.songList.ResetSelected()
		m.view = SongListView
		return m, cmd

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSyncComplete:
		data := msg.data.(syncPayload)
		m.job = nil
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		return m, nil

	case MsgDeleteComplete:
		data := msg.data.(deletePayload)
		m.err = data.err
		m.result = nil
		if data.err == nil {
			m.deleted = &data.playlist
		}
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.fatal != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.fatal))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderList(m.playlistList, m.keys.enter, m.keys.sync, m.keys.delete, m.keys.quit)
	case SongListView:
		return m.renderList(m.songList, m.keys.sync, m.keys.back, m.keys.quit)
	case ConfirmDeleteView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) filtering() bool {
	switch m.view {
	case PlaylistListView:
		return m.playlistList.FilterState() == list.Filtering
	case SongListView:
		return m.songList.FilterState() == list.Filtering
	}
	return false
}

// selectedPlaylist returns the highlighted playlist in the playlist list.
func (m *Model) selectedPlaylist() *models.Playlist {
	if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
		p := item.playlist
		return &p
	}
	return nil
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.enter):
			if p := m.selectedPlaylist(); p != nil {
				m.selected = p
				m.err = nil
				return m, m.fetchSongs(*p)
			}
			return m, nil
		case key.Matches(msg, m.keys.sync):
			if p := m.selectedPlaylist(); p != nil {
				m.selected = p
				return m, m.startSync()
			}
			return m, nil
		case key.Matches(msg, m.keys.delete):
			if p := m.selectedPlaylist(); p != nil {
				m.selected = p
				m.view = ConfirmDeleteView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.back):
			m.view = PlaylistListView
			return m, nil
		case key.Matches(msg, m.keys.sync):
			return m, m.startSync()
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deletePlaylist(*m.selected)
	case key.Matches(msg, m.keys.no):
		m.view = PlaylistListView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.restart) {
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.deleted = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.library.Playlists(m.ctx)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchSongs(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.library.Songs(m.ctx, p.ID)
		return songsFetchedMsg(p, songs, err)
	}
}

func (m *Model) deletePlaylist(p models.Playlist) tea.Cmd {
	return func() tea.Msg {
		return deleteCompleteMsg(p, m.library.Delete(m.ctx, p.ID))
	}
}

// startSync runs an update sync in the background. The outcome travels on its own channel so the model
// is only mutated from Update.
func (m *Model) startSync() tea.Cmd {
	job := &syncJob{
		progress: make(chan tasks.ProgressUpdate, 50),
		done:     make(chan syncPayload, 1),
	}
	m.job = job
	m.err = nil
	m.result = nil
	m.progress = tasks.ProgressUpdate{}
	m.view = SyncView

	id := m.selected.ID
	go func() {
		result, err := m.library.Update(m.ctx, id, job.progress)
		close(job.progress)
		job.done <- syncPayload{result, err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	job := m.job
	return func() tea.Msg {
		if job == nil {
			return nil
		}
		update, ok := <-job.progress
		if !ok {
			outcome := <-job.done
			return syncCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList(l list.Model, keys ...key.Binding) string {
	view := l.View()
	if m.err != nil {
		view = fmt.Sprintf("%s\n%s", view, styles.err.Render(m.err.Error()))
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(keys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.selected.Title))
	info := styles.warn.Render(fmt.Sprintf("\nThe playlist, its songs and the folder %s will be removed.\n", m.selected.Folder))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render(fmt.Sprintf("Syncing '%s'", m.selected.Title))

	var phase string
	switch m.progress.Phase {
	case tasks.ResolvePlaylist:
		phase = "Resolving playlist..."
	case tasks.ReconcileSongs:
		phase = "Comparing with stored songs..."
	case tasks.DownloadSongs:
		phase = fmt.Sprintf("Downloading songs %s %d/%d",
			progressBar(m.progress.Step, m.progress.Total, 20), m.progress.Step, m.progress.Total)
	case tasks.RemoveSongs:
		phase = "Removing songs..."
	case tasks.Complete:
		phase = "Done"
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		out := styles.err.Render(fmt.Sprintf("Failed: %v", m.err))
		if m.result != nil && len(m.result.Added) > 0 {
			out += "\n" + styles.warn.Render(fmt.Sprintf("%d songs were downloaded before the failure and kept.", len(m.result.Added)))
		}
		return fmt.Sprintf("%s\n\n%s", out, helpView)
	}

	if m.deleted != nil {
		title := styles.ok.Render(fmt.Sprintf("✓ Deleted '%s'", m.deleted.Title))
		return fmt.Sprintf("%s\n\n%s", title, helpView)
	}

	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ Sync Complete!"))
	fmt.Fprintf(&b, "\n\nAdded: %d\nRemoved: %d", len(m.result.Added), len(m.result.Removed))
	for _, s := range m.result.Added {
		b.WriteString("\n" + styles.added.Render("  + "+s.Title))
	}
	for _, s := range m.result.Removed {
		b.WriteString("\n" + styles.removed.Render("  - "+s.Title))
	}
	return fmt.Sprintf("%s\n\n%s", b.String(), helpView)
}
