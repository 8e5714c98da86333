// Package capture models the CPU profiles stored on a device and the rules
// for choosing one of them.
//
// A device listing (the output of "ls -lt" in the application's cache
// directory) is parsed by [ParseListing] into [Candidate] values. Candidates
// can be narrowed with a boolean [Filter] expression, presented with
// [Candidate.Display], and mapped back from a displayed answer with
// [Resolve].
package capture
