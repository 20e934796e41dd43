// Package ui hosts the transcript view in a terminal using tview.
package ui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/zhouzirui/chatfront/backend/internal/model/chat"
	"github.com/zhouzirui/chatfront/backend/internal/view"
)

// Terminal renders one conversation: transcript on top, input area below.
// Enter submits, Ctrl-R clears the conversation, /bye quits.
type Terminal struct {
	app        *tview.Application
	transcript *tview.TextView
	input      *tview.TextArea
	status     *tview.TextView
	view       *view.TranscriptView
	title      string
	modelID    string

	// busy 只在 UI 线程读写；禁用的 TextArea 仍会触发 input capture。
	busy  bool
	queue func(func())
}

// NewTerminal builds the layout around a conversation.
func NewTerminal(conv view.Conversation, title, modelID string) *Terminal {
	t := &Terminal{
		app:     tview.NewApplication(),
		view:    view.New(conv),
		title:   title,
		modelID: modelID,
	}

	t.transcript = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	t.transcript.SetTitle(" " + title + " ").SetBorder(true)
	t.transcript.SetScrollable(true)

	t.input = tview.NewTextArea().SetPlaceholder("Type a message, Enter to send, /help for commands")
	t.input.SetTitle(" Message ").SetBorder(true)

	t.status = tview.NewTextView().SetDynamicColors(true)

	t.queue = func(f func()) { t.app.QueueUpdateDraw(f) }
	t.input.SetInputCapture(t.handleKey)
	t.app.EnablePaste(true)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.transcript, 0, 1, false).
		AddItem(t.status, 1, 0, false).
		AddItem(t.input, 5, 0, true)

	t.app.SetRoot(layout, true).SetFocus(t.input)
	t.refresh()
	return t
}

// Run blocks until the user quits.
func (t *Terminal) Run() error {
	return t.app.Run()
}

func (t *Terminal) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlR:
		if t.busy {
			return nil
		}
		t.runAsync(func(ctx context.Context) { _ = t.view.Reset(ctx) })
		return nil
	case tcell.KeyEnter:
		if event.Modifiers()&tcell.ModAlt != 0 {
			return event
		}
		if t.busy {
			return nil
		}
		content := t.input.GetText()
		if strings.TrimSpace(content) == "" {
			return nil
		}
		t.input.SetText("", true)

		switch parseCommand(content) {
		case commandQuit:
			t.app.Stop()
		case commandReset:
			t.runAsync(func(ctx context.Context) { _ = t.view.Reset(ctx) })
		case commandHelp:
			t.status.SetText(helpText)
		default:
			t.runAsync(func(ctx context.Context) { _ = t.view.Submit(ctx, content) })
		}
		return nil
	}
	return event
}

// runAsync keeps the event loop responsive while the session call blocks.
// Keys are ignored until the call returns, so at most one call is in flight.
func (t *Terminal) runAsync(action func(ctx context.Context)) {
	t.busy = true
	t.input.SetDisabled(true)
	t.status.SetText("[yellow]waiting for the model...[-]")

	go func() {
		action(context.Background())
		t.queue(func() {
			t.busy = false
			t.refresh()
			t.input.SetDisabled(false)
			t.app.SetFocus(t.input)
		})
	}()
}

func (t *Terminal) refresh() {
	t.transcript.SetText(formatTranscript(t.view.Lines()))
	t.transcript.ScrollToEnd()

	if notice := t.view.Notice(); notice != "" {
		log.Printf("[ui] %s", notice)
		t.status.SetText("[red]" + tview.Escape(notice) + "[-]")
		return
	}
	t.status.SetText(fmt.Sprintf("[gray]model: %s  ·  Ctrl-R clears the chat[-]", tview.Escape(t.modelID)))
}

type command int

const (
	commandNone command = iota
	commandHelp
	commandReset
	commandQuit
)

const helpText = "[green]/help[-] commands  [green]/reset[-] clear chat  [green]/bye[-] quit"

func parseCommand(content string) command {
	switch strings.ToLower(strings.TrimSpace(content)) {
	case "/help":
		return commandHelp
	case "/reset", "/clear":
		return commandReset
	case "/bye", "/quit", "/exit":
		return commandQuit
	default:
		return commandNone
	}
}

func formatTranscript(lines []view.Line) string {
	var b strings.Builder
	for _, line := range lines {
		color := "green"
		if line.Role == chat.RoleUser {
			color = "red"
		}
		fmt.Fprintf(&b, "[%s::b]%s:[-:-:-]\n%s\n\n", color, line.Label, tview.Escape(line.Content))
	}
	return b.String()
}
