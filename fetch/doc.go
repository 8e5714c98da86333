// Package fetch downloads the JavaScript bundle and source map of an
// application from a running development server.
//
// Downloads are streamed to disk. A [Client] never imposes its own timeout;
// the request context is the only bound on a transfer.
package fetch
