// Package convert runs the profile conversion pipeline: list the profiles of
// an application on the device, select one, pull it while downloading the
// matching bundle and source map, transform the three into a trace and write
// the result to the output directory.
//
// Every failure is terminal and is reported with exactly one of the stage
// errors defined in package pkg.
package convert
