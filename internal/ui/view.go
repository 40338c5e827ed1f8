package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yash-srivastava19/floaty/internal/draft"
)

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	w := a.width

	count := fmt.Sprintf("%d notes", a.engine.Cache().Len())
	header := styleTitle.Render("floaty") + styleDivider.Render("  —  ") + styleSubtitle.Render(count)
	if a.engine.Saving() {
		header += styleDimItem.Render("  saving…")
	}
	b.WriteString(header + "\n")
	b.WriteString(styleDivider.Render(strings.Repeat("─", w)) + "\n")

	bodyH := a.bodyHeight()
	editor := lipgloss.NewStyle().Width(a.editorWidth()).Height(bodyH).Render(a.viewEditor(a.editorWidth(), bodyH))
	if a.fullWidth {
		b.WriteString(editor + "\n")
	} else {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Height(bodyH).Render(a.viewSidebar())
		sep := styleDivider.Render(strings.TrimRight(strings.Repeat("│\n", bodyH), "\n"))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, sep, editor) + "\n")
	}

	b.WriteString(styleDivider.Render(strings.Repeat("─", w)) + "\n")
	b.WriteString(a.viewStatus())
	return b.String()
}

func (a *App) viewStatus() string {
	switch {
	case a.statusMsg != "":
		sty := styleSuccess
		if a.statusIsError {
			sty = styleError
		}
		return sty.Render("  " + a.statusMsg)
	case a.engine.Err() != nil:
		return styleError.Render("  " + a.engine.Status() + ": " + a.engine.Err().Error())
	case a.engine.Status() != "":
		return styleSuccess.Render("  " + a.engine.Status())
	}

	switch a.engine.Mode() {
	case draft.ModeSettings:
		return styleHint.Render("  space toggle · esc back · ctrl+q quit")
	}
	switch a.focus {
	case inputSearch:
		return styleHint.Render("  type to filter · enter select · esc done")
	case inputTitle, inputContent:
		return styleHint.Render("  tab switch field · esc stop editing · ctrl+d delete · ctrl+p preview · ctrl+q quit")
	}
	return styleHint.Render(fmt.Sprintf("  j/k · enter edit · %s new · / search · ctrl+d del · ctrl+o settings · ctrl+f full · q quit", a.keys.New.Help().Key))
}

func (a *App) viewSidebar() string {
	var b strings.Builder
	inner := sidebarWidth - 2

	searchSty := styleInputBorder
	if a.focus == inputSearch {
		searchSty = styleInputActive
	}
	b.WriteString(searchSty.Width(inner - 2).Render(a.searchInput.View()) + "\n")

	ns := a.engine.Notes()
	listH := a.listHeight()
	switch {
	case len(ns) == 0:
		b.WriteString(styleSubtitle.Render("\n No notes yet") + "\n")
	case len(a.visible) == 0:
		b.WriteString(styleSubtitle.Render("\n no matches") + "\n")
	default:
		selected := a.engine.Selected()
		end := min(a.listOffset+listH, len(a.visible))
		for pos := a.listOffset; pos < end; pos++ {
			idx := a.visible[pos]
			n := ns[idx]
			age := noteAge(n)
			title := truncate(n.DisplayTitle(), inner-len(age)-4)
			pad := max(1, inner-3-lipgloss.Width(title)-len(age))
			spacer := strings.Repeat(" ", pad)
			if idx == selected {
				b.WriteString(" " + styleSelectedItem.Render("▸ "+title) + spacer + styleDimItem.Render(age) + "\n")
			} else {
				b.WriteString("   " + styleNormalItem.Render(title) + spacer + styleDimItem.Render(age) + "\n")
			}
		}
	}

	if n, ok := a.engine.Cache().At(a.engine.Selected()); ok {
		if preview := notePreview(n.Content, inner-2); preview != "" {
			b.WriteString("\n" + styleDimItem.Render(" "+preview))
		}
	}
	return b.String()
}

func (a *App) viewEditor(w, h int) string {
	switch phase := a.engine.Phase().(type) {
	case draft.Configuring:
		return a.viewSettings(w)
	case draft.Idle:
		msg := "Select a note"
		if a.engine.Cache().Len() == 0 {
			msg = fmt.Sprintf("No notes yet — press %s to write one", a.keys.New.Help().Key)
		}
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, styleSubtitle.Render(msg))
	case draft.Bound:
		return a.viewDraft(w, a.boundLabel(phase.Binding))
	default:
		return a.viewDraft(w, styleTag.Render("new note"))
	}
}

func (a *App) boundLabel(b draft.Binding) string {
	n, ok := a.engine.Cache().At(b.Index)
	if !ok {
		return ""
	}
	label := fmt.Sprintf("%d/%d", len(a.engine.Notes())-b.Index, len(a.engine.Notes()))
	if age := noteAge(n); age != "" {
		label += "  ·  edited " + age
	}
	return styleDimItem.Render(label)
}

func (a *App) viewDraft(w int, label string) string {
	var b strings.Builder
	b.WriteString(" " + label + "\n")

	titleSty := styleInputBorder
	if a.focus == inputTitle {
		titleSty = styleInputActive
	}
	b.WriteString(titleSty.Width(w - 4).Render(a.titleInput.View()) + "\n")

	if a.previewing {
		b.WriteString(stylePanelBorder.Width(w - 4).Render(a.viewport.View()))
		return b.String()
	}
	contentSty := styleInputBorder
	if a.focus == inputContent {
		contentSty = styleInputActive
	}
	b.WriteString(contentSty.Width(w - 4).Render(a.contentInput.View()))
	return b.String()
}

func (a *App) viewSettings(w int) string {
	s := a.engine.Settings()
	on := "off"
	if s.OpenSame {
		on = "on"
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(" settings") + "\n")
	b.WriteString(styleDivider.Render(" "+strings.Repeat("─", max(0, w-2))) + "\n\n")
	b.WriteString(" " + styleSelectedItem.Render("▸ open capture in this window") + "  " + styleTag.Render("["+on+"]") + "\n")
	b.WriteString(styleDimItem.Render("   the shortcut starts a new note here instead of a popup") + "\n\n")
	b.WriteString("   " + styleNormalItem.Render("new note key") + "  " + styleDimItem.Render(s.KeyCmd) + "\n")
	b.WriteString("   " + styleNormalItem.Render("notes") + "         " + styleDimItem.Render(truncate(a.cfg.NotesPath, max(10, w-20))) + "\n")
	b.WriteString("   " + styleNormalItem.Render("storage") + "       " + styleDimItem.Render(a.cfg.Storage) + "\n")
	b.WriteString("   " + styleNormalItem.Render("config") + "        " + styleDimItem.Render(truncate(a.cfg.File, max(10, w-20))) + "\n")
	return b.String()
}
