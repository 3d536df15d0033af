// Package ir holds the value types shared by every layercast package:
// flags, instructions, journal edits, and their canonical encodings.
//
// ir imports nothing internal so that grammar, instructions, engine and
// store can all depend on it without cycles.
package ir
