// Package trace converts device CPU profiles into Chrome Trace Event arrays.
//
// A [Transformer] turns a pulled profile, together with the bundle and source
// map it was recorded against, into a [Trace]. Two implementations exist:
// [Hermes] decodes Hermes sampling profiles natively, and [Command] delegates
// to any external program honouring the same three-argument contract.
package trace
