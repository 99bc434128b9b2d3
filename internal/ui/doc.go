// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two screens:
//  1. My page ([MyPageView]): profile block and subtitle list, with the add dialog ([AddProjectView]),
//     delete confirmation ([ConfirmDeleteView]) and profile edit form ([ProfileView]) on top of it
//  2. Edit ([EditView]): video link, editable subtitles, check, recommend and translate results
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Gateway calls run as commands through [tasks.Reconciler] and [tasks.EditSession]; the model renders from their state,
// so a failed list and an empty list look different, and an alert stays on screen until dismissed.
// Progress updates flow through a channel from the reconciler and edit sessions.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
