// Package prompt asks the user to choose one profile in the terminal.
//
// Candidates are listed newest first. Arrow keys move the selection, typing
// narrows the list by fuzzy match, Enter confirms and Esc or Ctrl-C aborts.
package prompt
