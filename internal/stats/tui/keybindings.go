package tui

// helpBinding represents a single keybinding entry for the help view.
type helpBinding struct {
	key  string
	desc string
}

func chartBindings() []helpBinding {
	return []helpBinding{
		{"h/l", "Move cursor"},
		{"g/G", "First / last bucket"},
		{"space", "Start or drop a selection"},
		{"enter", "Zoom into selection"},
		{"esc", "Cancel selection"},
		{"b", "Back to previous zoom"},
		{"r", "Reset to original range"},
		{"1", "Last 24 hours"},
		{"7", "Last 7 days"},
		{"3", "Last 30 days"},
		{"9", "Last 90 days"},
		{"u", "Toggle UTC"},
		{"p", "Toggle previous period"},
		{"tab", "Next organization"},
		{"shift+tab", "Previous organization"},
		{"y", "Copy command for this view"},
		{"ctrl+r", "Reload"},
		{"?", "Help"},
		{"q", "Quit"},
	}
}
