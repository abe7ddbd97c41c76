package copyregion

// Clipboard receives copied text. Implementations absorb their own failures.
type Clipboard interface {
	SetContents(text string)
}

type Relay struct {
	Clipboard Clipboard
}

// OnRegionOperationResult forwards payload verbatim.
func (r Relay) OnRegionOperationResult(payload string) {
	if r.Clipboard == nil {
		return
	}
	r.Clipboard.SetContents(payload)
}
