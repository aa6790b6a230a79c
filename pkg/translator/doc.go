// Package translator drives a translation run: it discovers the source
// units behind an input path, loads and classifies them, feeds them to a
// codegen.Emitter in order and commits the output file only when every
// command translated cleanly.
package translator
