package filecache

// PackState is a pack's lifecycle state: Null (never touched) ->
// Init (claimed, about to load) -> Receiving (load in flight) ->
// Succeeded (ready to serve, whether or not the load itself errored).
type PackState int

const (
	PackNull PackState = iota
	PackInit
	PackReceiving
	PackSucceeded
)

// pack is one fixed-size window of a Cache's sliding buffer.
type pack struct {
	state PackState
	index int64 // pack number within the medium; offset = index*packSize
	data  []byte
	size  int // valid bytes in data (< len(data) at medium end)

	ready chan struct{} // closed exactly once, when state reaches Succeeded
	err   error

	loadAttempt int
}

func newPack(packSize int) *pack {
	return &pack{data: make([]byte, packSize), ready: make(chan struct{})}
}

func (p *pack) markSucceeded(n int, err error) {
	if p.state == PackSucceeded {
		return
	}
	p.size = n
	p.err = err
	p.state = PackSucceeded
	close(p.ready)
}
