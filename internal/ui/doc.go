// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one generation at a time:
//  1. [PromptView] : Enter a prompt, pick a mode (small, large, mix) and an optional count
//  2. [GeneratingView] : Monitor progress updates while the engine runs
//  3. [ResultView] : Browse the resulting artists or songs and optionally save them to history
//  4. [ErrorView] : Show why the generation failed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine, so a slow generation never blocks the interface.
package ui
