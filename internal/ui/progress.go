package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neoburger/burgerctl/internal/neo"
)

// WaitFunc submits a transaction and blocks until it is confirmed, failed
// or ctx is cancelled.
type WaitFunc func(ctx context.Context) neo.Outcome

type outcomeMsg neo.Outcome

type txTickMsg struct{}

func txTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return txTickMsg{} })
}

// txModel shows a spinner while a wallet submits and confirms one
// transaction. Interrupting cancels the wait; the outcome is then pending.
type txModel struct {
	title       string
	ctx         context.Context
	cancel      context.CancelFunc
	wait        WaitFunc
	frame       int
	interrupted bool
	outcome     *neo.Outcome
}

func newTxModel(ctx context.Context, title string, wait WaitFunc) txModel {
	ctx, cancel := context.WithCancel(ctx)
	return txModel{title: title, ctx: ctx, cancel: cancel, wait: wait}
}

func (m txModel) Init() tea.Cmd {
	return tea.Batch(txTick(), func() tea.Msg { return outcomeMsg(m.wait(m.ctx)) })
}

func (m txModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.interrupted = true
			m.cancel()
		}
	case txTickMsg:
		if m.outcome == nil {
			m.frame++
			return m, txTick()
		}
	case outcomeMsg:
		o := neo.Outcome(msg)
		m.outcome = &o
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m txModel) View() string {
	if m.outcome != nil {
		return RenderOutcome(*m.outcome) + "\n"
	}
	line := StyleAsset.Render(spinnerFrames[m.frame%len(spinnerFrames)]) + "  " + m.title
	if m.interrupted {
		line += StyleMeta.Render("  (stopping)")
	} else {
		line += StyleMeta.Render("  approve in your wallet, q to stop waiting")
	}
	return line + "\n"
}

// RunTx runs wait under a progress view and returns its outcome.
func RunTx(ctx context.Context, title string, wait WaitFunc) (neo.Outcome, error) {
	m := newTxModel(ctx, title, wait)
	defer m.cancel()
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return neo.Outcome{}, fmt.Errorf("progress: %w", err)
	}
	fm := final.(txModel)
	if fm.outcome == nil {
		return neo.Outcome{Status: neo.StatusPending}, nil
	}
	return *fm.outcome, nil
}

// RenderOutcome describes a transaction outcome in one line.
func RenderOutcome(o neo.Outcome) string {
	switch o.Status {
	case neo.StatusSuccess:
		return Success("confirmed " + Addr(o.TxID))
	case neo.StatusError:
		if o.Submitted() {
			return Err("transaction faulted " + Addr(o.TxID))
		}
		if o.Err != nil {
			return Err("not submitted: " + o.Err.Error())
		}
		return Err("not submitted")
	}
	if o.Submitted() {
		return Warn("still pending " + Addr(o.TxID) + ", check later with `burgerctl tx " + o.TxID + "`")
	}
	return Warn("not submitted")
}
