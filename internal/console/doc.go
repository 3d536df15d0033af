// Package console is the operator's command line.
//
// Each input line is split on spaces, resolved against the command
// grammar, and dispatched. Everything that touches the instruction list or
// the output routing runs inside the instruction store's high-priority
// update, so the render loop never observes a half-applied command.
package console
