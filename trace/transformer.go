package trace

import "context"

// Inputs names the local files a transformation reads.
type Inputs struct {
	Profile   string
	SourceMap string
	Bundle    string
}

// Transformer converts a profile into a trace.
type Transformer interface {
	Transform(ctx context.Context, in Inputs) (Trace, error)
}

// TransformerFunc adapts a function to [Transformer].
type TransformerFunc func(ctx context.Context, in Inputs) (Trace, error)

// Transform calls f.
func (f TransformerFunc) Transform(ctx context.Context, in Inputs) (Trace, error) {
	return f(ctx, in)
}
