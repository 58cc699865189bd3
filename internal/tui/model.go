// Package tui is the terminal rendition of the proposal: it renders session
// snapshots with lipgloss and forwards key presses to the session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"

	"valentine/internal/invite"
	appLog "valentine/internal/log"
	"valentine/internal/model"
	"valentine/internal/music"
	"valentine/internal/sequence"
	"valentine/internal/share"
)

const (
	frameInterval = 50 * time.Millisecond
	noticeTTL     = 3 * time.Second

	defaultWidth  = 80
	defaultHeight = 24
)

// Deps are the collaborators the terminal UI drives.
type Deps struct {
	Session  *sequence.Session
	Timing   sequence.Timing
	Resolver *invite.Resolver
	Music    *music.Toggle

	Share       share.Capability
	Opener      share.Opener
	Platform    share.Platform
	PageURL     string
	DownloadDir string

	// Clock and Rand default to the system clock and a seeded generator.
	Clock sequence.Clock
	Rand  sequence.Rand
}

type (
	snapshotMsg  sequence.Snapshot
	countdownMsg time.Time
	frameMsg     time.Time
	shareMsg     share.Result
	musicMsg     bool
)

// Model is the bubbletea model.
type Model struct {
	ctx  context.Context
	deps Deps
	box  *mailbox

	snap    sequence.Snapshot
	details model.EventDetails
	left    invite.TimeLeft
	now     time.Time

	width, height int

	keys     keyMap
	help     help.Model
	progress progress.Model
	confetti *confetti
	card     *cardRenderer
	styles   styles

	playing  bool
	notice   string
	noticeAt time.Time
}

// New wires a Model to deps.Session. The session is started by Init.
func New(ctx context.Context, deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = sequence.SystemClock()
	}
	if deps.Rand == nil {
		deps.Rand = defaultRand()
	}
	if deps.Share == nil {
		deps.Share = share.Absent{}
	}
	if deps.Timing == (sequence.Timing{}) {
		deps.Timing = sequence.DefaultTiming()
	}

	box := newMailbox()
	deps.Session.SetObserver(box.put)

	now := deps.Clock.Now()
	m := Model{
		ctx:      ctx,
		deps:     deps,
		box:      box,
		snap:     deps.Session.Snapshot(),
		now:      now,
		width:    defaultWidth,
		height:   defaultHeight,
		keys:     defaultKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithGradient(colorBlush.Hex(), colorRose.Hex()), progress.WithoutPercentage()),
		confetti: newConfetti(deps.Rand),
		card:     &cardRenderer{},
		styles:   defaultStyles(),
	}
	m.progress.Width = 40
	m.refreshDetails(now)
	m.updateKeys()
	return m
}

func (m Model) Init() tea.Cmd {
	session := m.deps.Session
	return tea.Batch(
		func() tea.Msg {
			session.Start()
			return nil
		},
		m.box.wait(m.ctx),
		frame(),
	)
}

func defaultRand() sequence.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>13|1))
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = max(10, min(msg.Width-20, 50))
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		m.apply(sequence.Snapshot(msg))
		return m, m.box.wait(m.ctx)

	case frameMsg:
		m.now = time.Time(msg)
		m.tickConfetti()
		if m.notice != "" && m.now.Sub(m.noticeAt) > noticeTTL {
			m.notice = ""
		}
		return m, frame()

	case countdownMsg:
		m.now = time.Time(msg)
		if !m.now.Before(m.details.End) {
			m.refreshDetails(m.now)
		}
		m.left = invite.Until(m.now, m.details)
		if m.deps.Music != nil {
			m.playing = m.deps.Music.Playing()
		}
		return m, nil

	case musicMsg:
		m.playing = bool(msg)
		return m, nil

	case shareMsg:
		m.showResult(share.Result(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.deps.Session
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Continue):
		m.act(s.Continue)
	case key.Matches(msg, m.keys.Yes):
		if m.snap.Prompt.Open {
			m.act(s.ConfirmPrompt)
		} else {
			m.act(s.Confirm)
		}
	case key.Matches(msg, m.keys.No):
		m.act(s.Decline)
	case key.Matches(msg, m.keys.Dismiss):
		m.act(s.DismissPrompt)
	case key.Matches(msg, m.keys.Music):
		return m, m.toggleMusic()
	case key.Matches(msg, m.keys.Save):
		return m, m.saveDate()
	case key.Matches(msg, m.keys.Share):
		return m, m.shareInvite()
	}
	return m, nil
}

// act runs a session action and adopts the resulting snapshot right away,
// ahead of the observer's copy.
func (m *Model) act(f func() error) {
	if err := f(); err != nil {
		if !errors.Is(err, sequence.ErrNotReady) {
			appLog.Debug("key ignored", "view", m.snap.View.String(), "err", err)
		}
		return
	}
	m.apply(m.deps.Session.Snapshot())
}

func (m *Model) apply(s sequence.Snapshot) {
	if s.Seq < m.snap.Seq {
		return
	}
	entered := s.View != m.snap.View
	m.snap = s
	if entered {
		switch s.View {
		case sequence.Celebrating:
			m.burst()
		case sequence.Invitation:
			m.confetti.clear()
			m.refreshDetails(m.deps.Clock.Now())
		}
	}
	m.updateKeys()
}

func (m *Model) refreshDetails(now time.Time) {
	if m.deps.Resolver == nil {
		m.details = invite.Resolve(now)
	} else {
		m.details = m.deps.Resolver.Resolve(now)
	}
	m.left = invite.Until(now, m.details)
}

func (m *Model) updateKeys() {
	v := m.snap.View
	m.keys.Continue.SetEnabled(v == sequence.Greeting && m.snap.ContinueEnabled)
	m.keys.Yes.SetEnabled(v == sequence.Question)
	m.keys.No.SetEnabled(v == sequence.Question && !m.snap.Prompt.Open)
	m.keys.Dismiss.SetEnabled(m.snap.Prompt.Open)
	m.keys.Save.SetEnabled(v == sequence.Invitation)
	m.keys.Share.SetEnabled(v == sequence.Invitation)
	m.keys.Music.SetEnabled(m.deps.Music != nil)
}

func (m *Model) burst() {
	w, h := float64(m.width), float64(m.height)
	m.confetti.burst(40, w*0.25, h*0.8)
	m.confetti.burst(40, w*0.5, h*0.9)
	m.confetti.burst(40, w*0.75, h*0.8)
}

func (m *Model) tickConfetti() {
	if m.snap.View != sequence.Celebrating {
		return
	}
	m.confetti.step(frameInterval.Seconds(), m.width, m.height)
	if m.confetti.len() < 20 {
		m.burst()
	}
}

func (m *Model) showResult(res share.Result) {
	switch {
	case res.Outcome == share.OutcomeCancelled:
		return
	case res.Notice != "":
		m.notice = res.Notice
	case res.Outcome == share.OutcomeOpened:
		m.notice = "Opened in your calendar 📅"
	case res.Outcome == share.OutcomeFailed:
		m.notice = "Couldn't share right now"
	default:
		return
	}
	m.noticeAt = m.now
}

func (m Model) toggleMusic() tea.Cmd {
	if m.deps.Music == nil {
		return nil
	}
	ctx, t := m.ctx, m.deps.Music
	return func() tea.Msg { return musicMsg(t.Toggle(ctx)) }
}

func (m Model) saveDate() tea.Cmd {
	ctx, d, deps := m.ctx, m.details, m.deps
	return func() tea.Msg {
		return shareMsg(share.SaveDate(ctx, deps.Share, deps.Opener, d, deps.Platform, deps.DownloadDir))
	}
}

func (m Model) shareInvite() tea.Cmd {
	ctx, deps := m.ctx, m.deps
	return func() tea.Msg {
		return shareMsg(share.Invite(ctx, deps.Share, deps.PageURL))
	}
}

func (m Model) View() string {
	p := m.snap.FadeProgress(m.now)
	visible := m.snap.Visible(m.now)

	var body string
	if len(visible) == 2 && p < 0.5 {
		// First half of the cross-fade: the outgoing view dims out.
		body = m.renderView(visible[0], fadeOut(colorRose, p*2))
	} else {
		body = m.renderView(m.snap.View, fade(colorRose, max(0, p*2-1)))
	}

	footer := []string{m.help.View(m.keys)}
	if m.notice != "" {
		footer = append([]string{m.styles.notice.Render(m.notice)}, footer...)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, body, "", lipgloss.JoinVertical(lipgloss.Center, footer...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderView(v sequence.ViewState, accent colorful.Color) string {
	title := m.styles.title.Foreground(lg(accent))
	switch v {
	case sequence.Loading:
		return m.viewLoading(title)
	case sequence.Greeting:
		return m.viewGreeting(title)
	case sequence.Question:
		return m.viewQuestion(title)
	case sequence.Celebrating:
		return m.viewCelebrating(title)
	default:
		return m.viewInvitation(title)
	}
}

func (m Model) viewLoading(title lipgloss.Style) string {
	frac := 0.0
	if m.deps.Timing.Loading > 0 && m.snap.View == sequence.Loading {
		frac = float64(m.now.Sub(m.snap.EnteredAt)) / float64(m.deps.Timing.Loading)
	}
	frac = min(max(frac, 0), 1)
	return lipgloss.JoinVertical(lipgloss.Center,
		title.Render("🌹"),
		"",
		m.styles.subtitle.Render("Preparing something special..."),
		"",
		m.progress.ViewAs(ease.OutCubic(frac)),
	)
}

func (m Model) viewGreeting(title lipgloss.Style) string {
	rows := []string{
		title.Render("Happy Valentine's Day"),
		"",
		m.styles.subtitle.Render("Something special awaits you..."),
		"",
	}
	if m.snap.View == sequence.Greeting && m.snap.ContinueEnabled {
		rows = append(rows, m.styles.yes.Render("Open Your Gift 💝"))
	} else {
		rows = append(rows, " ")
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

// Nudge offsets are in page pixels; one terminal cell is roughly 10×25.
const (
	cellWidthPx  = 10
	cellHeightPx = 25
)

func (m Model) viewQuestion(title lipgloss.Style) string {
	d := m.snap.Decline
	if m.snap.Prompt.Open {
		box := m.styles.prompt.Render(lipgloss.JoinVertical(lipgloss.Center,
			title.Render(m.snap.Prompt.Message),
			"",
			m.styles.muted.Render("There's only one right answer here..."),
			"",
			lipgloss.JoinHorizontal(lipgloss.Center, m.styles.yes.Render("Yes! 💕"), "   ", m.styles.muted.Render("[esc] let me think")),
		))
		return box
	}

	yes := m.styles.yes.Render("Yes 💕")
	pad := max(0, int(2*d.Nudge.Scale+0.5))
	no := m.styles.no.Padding(0, pad).Render("No")
	no = lipgloss.NewStyle().
		MarginLeft(max(1, 6+int(d.Nudge.X/cellWidthPx))).
		MarginTop(max(0, 2+int(d.Nudge.Y/cellHeightPx))).
		Render(no)

	rows := []string{
		title.Render("Will you be my Valentine? 💘"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, yes, no),
	}
	if hint := d.Hint(); hint != "" {
		rows = append(rows, "", m.styles.hint.Render(hint))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func (m Model) viewCelebrating(title lipgloss.Style) string {
	field := m.confetti.render(m.width, max(0, m.height-8))
	return lipgloss.JoinVertical(lipgloss.Center,
		field,
		title.Render("YAY! 🎉"),
		m.styles.subtitle.Render("I knew you'd say yes!"),
		m.styles.muted.Render("Preparing your special invitation..."),
	)
}

func (m Model) viewInvitation(title lipgloss.Style) string {
	rows := []string{title.Render("💌")}
	if m.snap.Confirmed {
		rows = append(rows, m.styles.badge.Render("RSVP Confirmed ✓"), "")
	}
	rows = append(rows,
		m.styles.muted.Render("Counting down to our special day..."),
		m.countdown(),
		m.card.render(m.details, m.width),
	)
	if m.deps.Music != nil {
		state := "♪ music off"
		if m.playing {
			state = "♪ music on"
		}
		rows = append(rows, m.styles.muted.Render(state))
	}
	return lipgloss.JoinVertical(lipgloss.Center, rows...)
}

func (m Model) countdown() string {
	units := []struct {
		n    int
		name string
	}{
		{m.left.Days, "Days"},
		{m.left.Hours, "Hours"},
		{m.left.Minutes, "Minutes"},
		{m.left.Seconds, "Seconds"},
	}
	cells := make([]string, 0, len(units))
	for _, u := range units {
		cells = append(cells, lipgloss.JoinVertical(lipgloss.Center,
			m.styles.count.Render(fmt.Sprintf("%02d", u.n)),
			m.styles.unit.Render(u.name),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
