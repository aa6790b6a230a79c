// Package codegen translates classified VM commands into Hack assembly.
//
// An Emitter threads a State through every command of a translation run.
// The State holds the counters that keep generated labels unique across the
// whole output and the namespace of the unit being translated, which
// qualifies static variables.
package codegen
