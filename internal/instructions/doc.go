// Package instructions owns the ordered instruction list that the console
// edits and the render loop replays.
//
// The list is only reachable through Store, which guards it with a
// prioritylock.Lock: Update runs edits with high priority, Read runs the
// render step with low priority. Every structural edit is followed by a
// refactor pass that prunes instructions whose layer references are no
// longer satisfied, so readers never see a dangling reference.
package instructions
