// Package ui contains the Bubble Tea program that renders the stack browser.
// Model only orchestrates messages; all navigation state lives in
// internal/ui/state.Navigator, which the model drives with decoded keys and
// reads back through Navigator.View when rendering.
//
// Message flow:
//   - Key presses are matched against KeyMap. Quit, help and reload are
//     handled by the model itself; everything else becomes a state.Key and
//     goes through Navigator.HandleKey. A load failure is shown in the status
//     panel and the last good lists stay on screen.
//   - Window size messages recompute the panel geometry and feed the visible
//     row count back into the navigator as its page size.
//   - A backend.Watcher, when configured, reports store revision changes.
//     The model only marks the lists as stale; the user reloads with r.
package ui
