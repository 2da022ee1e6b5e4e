// Package ui implements the interactive terminal interfaces using bubbletea's Elm architecture.
//
// The dashboard [Model] walks the folder tree:
//  1. [FolderListView] : Browse folders, create (n) or delete (d) them
//  2. [FileListView] : Files of the selected folder, view (v) or delete (d)
//  3. [InputView] : Name a new folder
//  4. [ConfirmView] : Answer a destructive-action prompt raised by the controller
//
// Confirmation requests travel from the dashboard controller to the model through a [Prompter],
// whose channel the model polls the way it polls any other command result.
//
// [RecorderModel] drives a recording session with single-key transitions and a live transcript.
package ui
