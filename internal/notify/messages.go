package notify

import (
	"fmt"
	"html"
	"strings"
)

func esc(s string) string { return html.EscapeString(s) }

// StatusChange renders a project or section status change. section and
// comment may be empty.
func StatusChange(project, section, oldLabel, newLabel, comment string) string {
	var b strings.Builder
	b.WriteString("📋 <b>Смена статуса проекта</b>\n\n")
	fmt.Fprintf(&b, "Проект: <b>%s</b>\n", esc(project))
	if section != "" {
		fmt.Fprintf(&b, "Раздел: %s\n", esc(section))
	}
	fmt.Fprintf(&b, "%s → %s", esc(oldLabel), esc(newLabel))
	if comment != "" {
		fmt.Fprintf(&b, "\nПримечание: %s", esc(comment))
	}
	return b.String()
}

func NewFile(project, section, file string) string {
	return fmt.Sprintf("📁 <b>Новый файл загружен</b>\n\nПроект: <b>%s</b>\nРаздел: %s\nФайл: %s",
		esc(project), esc(section), esc(file))
}

func NewComment(project, text, author string) string {
	if author == "" {
		author = "Система"
	}
	return fmt.Sprintf("💬 <b>Новый комментарий</b>\n\nПроект: <b>%s</b>\nОт: %s\nСообщение: %s",
		esc(project), esc(author), esc(text))
}

func NewProject(project, client string) string {
	msg := fmt.Sprintf("🆕 <b>Новый проект</b>\n\nПроект: <b>%s</b>", esc(project))
	if client != "" {
		msg += "\nКлиент: " + esc(client)
	}
	return msg
}

func Archived(project, link string) string {
	msg := fmt.Sprintf("📦 <b>Проект архивирован</b>\n\nПроект: <b>%s</b>", esc(project))
	if link != "" {
		msg += fmt.Sprintf("\n<a href=\"%s\">Google Drive</a>", esc(link))
	}
	return msg
}
