package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
	"github.com/rupestre-campos/pi-world-radio/internal/config"
)

const (
	MaxSuggestions = 10
	MaxShown       = 500
)

type colors struct {
	background      tcell.Color
	foreground      tcell.Color
	borders         tcell.Color
	highlight       tcell.Color
	fieldBackground tcell.Color
	placeholder     tcell.Color
	modalBackground tcell.Color
}

// TviewPrompter shows each prompt as a full-screen tview application. The
// screen is released between prompts so the player owns the terminal while
// a station plays.
type TviewPrompter struct {
	out    io.Writer
	colors colors
	screen tcell.Screen

	mu     sync.Mutex
	status string
}

// NewTviewPrompter creates a prompter themed from theme. Notices are also
// written to out so they stay visible after the screen is released.
func NewTviewPrompter(theme config.Theme, out io.Writer) *TviewPrompter {
	p := &TviewPrompter{out: out}
	p.colors.background = config.GetColor(theme.Background)
	p.colors.foreground = config.GetColor(theme.Foreground)
	p.colors.borders = config.GetColor(theme.Borders)
	p.colors.highlight = config.GetColor(theme.Highlight)
	p.colors.fieldBackground = config.GetColor(theme.FieldBackground)
	p.colors.placeholder = config.GetColor(theme.Placeholder)
	p.colors.modalBackground = config.GetColor(theme.ModalBackground)
	return p
}

func (p *TviewPrompter) Notify(msg string) {
	p.mu.Lock()
	p.status = msg
	p.mu.Unlock()
	if p.out != nil {
		fmt.Fprintln(p.out, msg)
	}
}

func (p *TviewPrompter) takeStatus() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := p.status
	p.status = ""
	return status
}

type askView struct {
	app    *tview.Application
	root   tview.Primitive
	input  *tview.InputField
	list   *tview.TextView
	answer string
	err    error
}

func (p *TviewPrompter) newAskView(label string, candidates []string) *askView {
	v := &askView{app: tview.NewApplication()}

	header := tview.NewTextView().
		SetDynamicColors(true).
		SetText(fmt.Sprintf(" [::b]%s[::-]  %s", config.AppName, config.AppTagline))
	header.SetTextColor(p.colors.highlight)
	header.SetBackgroundColor(p.colors.background)

	v.list = tview.NewTextView().SetDynamicColors(false).SetWrap(false)
	v.list.SetTextColor(p.colors.foreground)
	v.list.SetBackgroundColor(p.colors.background)
	v.list.SetBorder(true).
		SetBorderColor(p.colors.borders).
		SetTitle(fmt.Sprintf(" %s (%d) ", label, len(candidates))).
		SetTitleColor(p.colors.highlight)
	v.list.SetText(shownText(candidates, ""))

	status := tview.NewTextView().SetDynamicColors(true)
	status.SetBackgroundColor(p.colors.background)
	status.SetTextColor(p.colors.highlight)
	status.SetText(" " + tview.Escape(p.takeStatus()))

	keys := " Enter: choose (empty repeats or picks at random)  •  r: random  •  q: quit  •  Tab: complete  •  Ctrl+C: exit"
	if len(candidates) == 0 {
		keys = " Enter: confirm  •  Ctrl+C: exit"
	}
	hint := tview.NewTextView().
		SetDynamicColors(true).
		SetText("[::d]" + keys + "[::-]")
	hint.SetTextColor(p.colors.placeholder)
	hint.SetBackgroundColor(p.colors.background)

	v.input = tview.NewInputField().
		SetLabel(" " + label + ": ").
		SetLabelColor(p.colors.highlight).
		SetFieldBackgroundColor(p.colors.fieldBackground).
		SetFieldTextColor(p.colors.foreground).
		SetPlaceholder("type to filter").
		SetPlaceholderTextColor(p.colors.placeholder).
		SetFieldWidth(0)
	v.input.SetBackgroundColor(p.colors.background)

	v.input.SetAutocompleteFunc(func(text string) []string {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return Match(candidates, text, MaxSuggestions)
	})
	v.input.SetAutocompletedFunc(func(text string, index, source int) bool {
		if source != tview.AutocompletedNavigate {
			v.input.SetText(text)
		}
		return source == tview.AutocompletedEnter || source == tview.AutocompletedClick || source == tview.AutocompletedTab
	})
	v.input.SetChangedFunc(func(text string) {
		v.list.SetText(shownText(candidates, text))
		v.list.ScrollToBeginning()
	})
	v.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			v.answer = v.input.GetText()
			v.app.Stop()
		}
	})

	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			v.err = ErrInterrupted
			v.app.Stop()
			return nil
		}
		return event
	})

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(v.list, 0, 1, false).
		AddItem(status, 1, 0, false).
		AddItem(v.input, 1, 0, true).
		AddItem(hint, 1, 0, false)
	layout.SetBackgroundColor(p.colors.background)
	v.root = layout

	return v
}

func shownText(candidates []string, query string) string {
	matches := Match(candidates, query, MaxShown)
	text := strings.Join(matches, "\n")
	if len(candidates) > MaxShown && strings.TrimSpace(query) == "" {
		text += fmt.Sprintf("\n… %d more, type to filter", len(candidates)-MaxShown)
	}
	return text
}

func (p *TviewPrompter) Ask(ctx context.Context, label string, candidates []string) (string, error) {
	v := p.newAskView(label, candidates)
	if err := p.run(ctx, v.app, v.root, v.input); err != nil {
		return "", err
	}
	if v.err != nil {
		return "", v.err
	}
	log.Debug().Str("label", label).Str("answer", v.answer).Msg("Prompt answered")
	return v.answer, nil
}

type confirmView struct {
	app    *tview.Application
	modal  *tview.Modal
	answer bool
	err    error
}

func (p *TviewPrompter) newConfirmView(question string) *confirmView {
	v := &confirmView{app: tview.NewApplication()}

	v.modal = tview.NewModal().
		SetText(question).
		AddButtons([]string{"Yes", "No"}).
		SetDoneFunc(func(_ int, buttonLabel string) {
			v.answer = buttonLabel == "Yes"
			v.app.Stop()
		})
	v.modal.SetBackgroundColor(p.colors.modalBackground)
	v.modal.SetTextColor(p.colors.foreground)
	v.modal.SetBorderColor(p.colors.highlight)
	v.modal.SetButtonBackgroundColor(p.colors.fieldBackground)
	v.modal.SetButtonTextColor(p.colors.foreground)

	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			v.err = ErrInterrupted
			v.app.Stop()
			return nil
		case tcell.KeyEscape:
			v.answer = false
			v.app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'y', 'Y':
				v.answer = true
				v.app.Stop()
				return nil
			case 'n', 'N':
				v.answer = false
				v.app.Stop()
				return nil
			}
		}
		return event
	})

	return v
}

func (p *TviewPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	v := p.newConfirmView(question)
	if err := p.run(ctx, v.app, v.modal, v.modal); err != nil {
		return false, err
	}
	if v.err != nil {
		return false, v.err
	}
	return v.answer, nil
}

func (p *TviewPrompter) run(ctx context.Context, app *tview.Application, root, focus tview.Primitive) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.screen != nil {
		app.SetScreen(p.screen)
	}

	bgStyle := tcell.StyleDefault.Background(p.colors.background)
	app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		screen.SetStyle(bgStyle)
		screen.Clear()
		return false
	})
	var titleSet sync.Once
	app.SetAfterDrawFunc(func(screen tcell.Screen) {
		titleSet.Do(func() { screen.SetTitle(config.AppName) })
	})
	app.SetRoot(root, true).SetFocus(focus)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			app.Stop()
		case <-stop:
		}
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return ctx.Err()
}
