// Package device drives the Android Debug Bridge to find and copy CPU
// profiles written by an application on a connected device.
//
// The bridge executable is never reimplemented; [Bridge] only builds command
// lines, runs them, and classifies their output. Commands are not retried and
// carry no timeout beyond the caller's context.
package device
