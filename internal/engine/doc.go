// Package engine rebuilds and draws the composited frame.
//
// Every iteration starts from nothing: the Executor walks the instruction
// list in order, defines layers from the camera or the image catalog,
// applies process instructions to the first layer of the named layer, and
// hands draw instructions to the output. Nothing is cached between frames,
// so an edit made at the console is visible on the very next frame.
//
// The Renderer drives the Executor in a loop, reading the list under the
// instruction store's low-priority lock so console edits always win.
package engine
