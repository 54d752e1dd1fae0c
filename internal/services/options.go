package services

type mutationOptions struct {
	updateHistory bool
}

// MutationOption tweaks how a single mutation is recorded.
type MutationOption func(*mutationOptions)

// SkipHistory applies the mutation without recording an undo/redo
// action. The history controller replays actions with this set so a
// replay never rewrites history.
func SkipHistory() MutationOption {
	return func(o *mutationOptions) {
		o.updateHistory = false
	}
}

func applyOptions(opts []MutationOption) mutationOptions {
	o := mutationOptions{updateHistory: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
