package app_test

import "github.com/gdamore/tcell/v2"

func tcellRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}
