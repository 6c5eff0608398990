package terminal

import "github.com/gdamore/tcell/v2"

// Action is a reader operation bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionPageNext
	ActionPagePrevious
	ActionChapterNext
	ActionChapterPrevious
	ActionBookmark
	ActionTextLarger
	ActionTextSmaller
	ActionCycleColorScheme
	ActionSearch
	ActionCancel
	ActionQuit
	ActionTap
	ActionResize
	// ActionRune is a printable key, used while a prompt is open.
	ActionRune
	ActionBackspace
	ActionSubmit
)

var actionNames = [...]string{
	ActionNone:             "none",
	ActionPageNext:         "page-next",
	ActionPagePrevious:     "page-previous",
	ActionChapterNext:      "chapter-next",
	ActionChapterPrevious:  "chapter-previous",
	ActionBookmark:         "bookmark",
	ActionTextLarger:       "text-larger",
	ActionTextSmaller:      "text-smaller",
	ActionCycleColorScheme: "cycle-color-scheme",
	ActionSearch:           "search",
	ActionCancel:           "cancel",
	ActionQuit:             "quit",
	ActionTap:              "tap",
	ActionResize:           "resize",
	ActionRune:             "rune",
	ActionBackspace:        "backspace",
	ActionSubmit:           "submit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Input is a translated terminal event.
type Input struct {
	Action Action
	// Rune is set for key actions bound to a printable key.
	Rune rune
	// X is the tapped column. Width and Height are set on resize.
	X, Width, Height int
}

// Translate maps a tcell event to an input. Unbound events yield ActionNone.
func Translate(ev tcell.Event) Input {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return translateKey(e)
	case *tcell.EventMouse:
		if e.Buttons()&tcell.Button1 == 0 {
			return Input{}
		}
		x, _ := e.Position()
		return Input{Action: ActionTap, X: x}
	case *tcell.EventResize:
		w, h := e.Size()
		return Input{Action: ActionResize, Width: w, Height: h}
	default:
		return Input{}
	}
}

func translateKey(e *tcell.EventKey) Input {
	switch e.Key() {
	case tcell.KeyRight, tcell.KeyDown, tcell.KeyPgDn:
		return Input{Action: ActionPageNext}
	case tcell.KeyLeft, tcell.KeyUp, tcell.KeyPgUp:
		return Input{Action: ActionPagePrevious}
	case tcell.KeyEscape:
		return Input{Action: ActionCancel}
	case tcell.KeyEnter:
		return Input{Action: ActionSubmit}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return Input{Action: ActionBackspace}
	case tcell.KeyCtrlC:
		return Input{Action: ActionQuit}
	case tcell.KeyRune:
	default:
		return Input{}
	}

	r := e.Rune()
	in := Input{Rune: r}
	switch r {
	case ' ':
		in.Action = ActionPageNext
	case 'n':
		in.Action = ActionChapterNext
	case 'p':
		in.Action = ActionChapterPrevious
	case 'b':
		in.Action = ActionBookmark
	case '+', '=':
		in.Action = ActionTextLarger
	case '-':
		in.Action = ActionTextSmaller
	case 't':
		in.Action = ActionCycleColorScheme
	case '/':
		in.Action = ActionSearch
	case 'q':
		in.Action = ActionQuit
	default:
		in.Action = ActionRune
	}
	return in
}

// Repeats reports whether holding the key should be rate limited.
func (a Action) Repeats() bool {
	switch a {
	case ActionPageNext, ActionPagePrevious, ActionChapterNext, ActionChapterPrevious,
		ActionTextLarger, ActionTextSmaller, ActionCycleColorScheme:
		return true
	default:
		return false
	}
}
