// Package vm classifies lines of the stack-machine intermediate language
// into typed commands.
//
// Pipeline: VM source → Scanner → Command → codegen.Emitter → Hack assembly text
package vm
