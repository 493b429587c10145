package filecache

import (
	"sync"

	"github.com/adifgo/adif/config"
	"github.com/adifgo/adif/errs"
	"github.com/adifgo/adif/log"
	"golang.org/x/time/rate"
)

// Cache is a sliding-window pack cache over a Medium. The zero value
// is not usable; use New.
type Cache struct {
	mu    sync.Mutex // guards window/pack bookkeeping
	medMu sync.Mutex // serialises Medium.ReadAt calls

	medium Medium
	length int64 // medium.Len(), cached; -1 if unknown

	packSize int
	packNum  int

	prefixRatio  float64
	beginPack    int64
	beginPackMax int64 // -1 means no upper bound (unknown length)

	packs []*pack // window: packs[i] holds pack index beginPack+i

	seekPos int64

	opts            config.Options
	watchdogLimiter *rate.Limiter

	bufferingSize int

	log log.ILogger
}

// SetLogger attaches a logger for optional diagnostic tracing (pack
// loads, watchdog reloads). A nil logger is treated as log.NopLogger.
func (c *Cache) SetLogger(logger log.ILogger) {
	if logger == nil {
		logger = log.NopLogger()
	}
	c.log = logger
}

// New returns a Cache windowing medium with the pack size and count
// taken from opts. Diagnostic logging is a no-op until SetLogger is
// called.
func New(medium Medium, opts config.Options) *Cache {
	length := medium.Len()
	packSize := opts.PackSize
	packNum := opts.PackNum

	beginPackMax := int64(-1)
	if length >= 0 {
		totalPacks := (length + int64(packSize) - 1) / int64(packSize)
		if totalPacks > int64(packNum) {
			beginPackMax = totalPacks - int64(packNum)
		} else {
			beginPackMax = 0
		}
	}

	packs := make([]*pack, packNum)
	for i := range packs {
		p := newPack(packSize)
		p.index = int64(i)
		packs[i] = p
	}

	return &Cache{
		medium:          medium,
		length:          length,
		packSize:        packSize,
		packNum:         packNum,
		prefixRatio:     opts.PrefixRatio,
		beginPackMax:    beginPackMax,
		packs:           packs,
		opts:            opts,
		watchdogLimiter: rate.NewLimiter(rate.Limit(opts.WatchdogReloadRate), 1),
		log:             log.NopLogger(),
	}
}

// ReadPos returns the current logical cursor.
func (c *Cache) ReadPos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekPos
}

// FileSize returns the medium's total length, or -1 if unknown.
func (c *Cache) FileSize() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length
}

// Eof reports whether the cursor has reached the medium's known end.
func (c *Cache) Eof() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length >= 0 && c.seekPos >= c.length
}

// Seek repositions the cursor, sliding the pack window to keep a
// prefix of floor(packNum*prefixRatio) packs before the new position
// when possible, without exceeding beginPackMax.
func (c *Cache) Seek(pos int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if c.length >= 0 && pos > c.length {
		pos = c.length
	}
	c.seekPos = pos
	c.slideWindowLocked(pos)
	return c.seekPos
}

// slideWindowLocked recomputes begin_pack for a cursor at pos. Caller
// must hold c.mu.
func (c *Cache) slideWindowLocked(pos int64) {
	seekPack := pos / int64(c.packSize)
	prefix := int64(float64(c.packNum) * c.prefixRatio)
	newBegin := seekPack - prefix
	if newBegin < 0 {
		newBegin = 0
	}
	if c.beginPackMax >= 0 && newBegin > c.beginPackMax {
		newBegin = c.beginPackMax
	}
	if newBegin == c.beginPack {
		return
	}
	c.shiftWindowLocked(newBegin)
}

// shiftWindowLocked rebuilds the window around newBegin, reusing pack
// objects that remain in range and resetting (evicting) the rest to
// Null. Caller must hold c.mu.
func (c *Cache) shiftWindowLocked(newBegin int64) {
	n := int64(c.packNum)
	delta := newBegin - c.beginPack

	newPacks := make([]*pack, c.packNum)
	switch {
	case delta >= n || delta <= -n:
		for i := 0; i < c.packNum; i++ {
			p := newPack(c.packSize)
			p.index = newBegin + int64(i)
			newPacks[i] = p
		}
	case delta > 0:
		d := int(delta)
		copy(newPacks, c.packs[d:])
		for i := c.packNum - d; i < c.packNum; i++ {
			p := newPack(c.packSize)
			p.index = newBegin + int64(i)
			newPacks[i] = p
		}
	case delta < 0:
		d := int(-delta)
		copy(newPacks[d:], c.packs[:c.packNum-d])
		for i := 0; i < d; i++ {
			p := newPack(c.packSize)
			p.index = newBegin + int64(i)
			newPacks[i] = p
		}
	default:
		newPacks = c.packs
	}
	c.packs = newPacks
	c.beginPack = newBegin
}

// packAtLocked returns the pack holding medium pack-index idx if it is
// currently in the window, sliding the window to include it otherwise.
// Caller must hold c.mu.
func (c *Cache) packAtLocked(idx int64) *pack {
	if idx < c.beginPack || idx >= c.beginPack+int64(c.packNum) {
		c.slideWindowLocked(idx * int64(c.packSize))
	}
	rel := idx - c.beginPack
	if rel < 0 || rel >= int64(c.packNum) {
		return nil
	}
	return c.packs[rel]
}

// claimLocked transitions p from Null to Init (the caller becomes
// responsible for starting its load) and reports whether it did so.
// Caller must hold c.mu.
func claimLocked(p *pack) bool {
	if p.state == PackNull {
		p.state = PackInit
		return true
	}
	return false
}

// Read advances from the cursor filling dst, forcing loads of any
// missing packs. If nonblocking is true, Read returns WouldBlock as
// soon as it would otherwise have to wait on a pack.
func (c *Cache) Read(dst []byte, nonblocking bool) (int, error) {
	return c.scanRead(dst, nonblocking, 0)
}

// Recv is Read's blocking form, waiting up to waitMs milliseconds
// (0 means wait indefinitely) on each stalled pack. When that wait runs
// out it returns the bytes read so far, or a WouldBlock error if none
// were. Independently, the watchdog re-invokes a stalled pack's loader
// every opts.WatchdogInterval.
func (c *Cache) Recv(dst []byte, waitMs int) (int, error) {
	return c.scanRead(dst, false, waitMs)
}

func (c *Cache) scanRead(dst []byte, nonblocking bool, waitMs int) (int, error) {
	total := 0
	for total < len(dst) {
		c.mu.Lock()
		pos := c.seekPos
		if c.length >= 0 && pos >= c.length {
			c.mu.Unlock()
			break
		}
		idx := pos / int64(c.packSize)
		intra := int(pos % int64(c.packSize))
		p := c.packAtLocked(idx)
		if p == nil {
			c.mu.Unlock()
			break
		}
		needLoad := claimLocked(p)
		state := p.state
		c.mu.Unlock()

		if needLoad {
			c.startLoad(p)
		}

		if state != PackSucceeded {
			if nonblocking {
				if total > 0 {
					return total, nil
				}
				return 0, errs.New(errs.WouldBlock, "pack not ready")
			}
			if err := c.waitReady(p, waitMs); err != nil {
				if total > 0 {
					return total, nil
				}
				return total, err
			}
		}

		c.mu.Lock()
		if p.err != nil && total == 0 {
			err := p.err
			c.mu.Unlock()
			return 0, err
		}
		if intra >= p.size {
			c.mu.Unlock()
			break // medium end within this pack
		}
		n := copy(dst[total:], p.data[intra:p.size])
		c.seekPos += int64(n)
		c.mu.Unlock()

		total += n
	}
	return total, nil
}

// At returns the single byte at pos, loading its covering pack if
// absent and blocking briefly like Recv.
func (c *Cache) At(pos int64) (byte, error) {
	c.mu.Lock()
	if c.length >= 0 && (pos < 0 || pos >= c.length) {
		c.mu.Unlock()
		return 0, errs.New(errs.InvalidArgument, "position out of range")
	}
	idx := pos / int64(c.packSize)
	intra := int(pos % int64(c.packSize))
	p := c.packAtLocked(idx)
	if p == nil {
		c.mu.Unlock()
		return 0, errs.New(errs.InvalidArgument, "position out of range")
	}
	needLoad := claimLocked(p)
	state := p.state
	c.mu.Unlock()

	if needLoad {
		c.startLoad(p)
	}
	if state != PackSucceeded {
		if err := c.waitReady(p, 0); err != nil {
			return 0, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p.err != nil {
		return 0, p.err
	}
	if intra >= p.size {
		return 0, errs.New(errs.UnexpectedEof, "position past medium end")
	}
	return p.data[intra], nil
}

// SetBufferingSize records the caller's suffix-lookahead buffering
// policy (in bytes); it does not affect prefix retention.
func (c *Cache) SetBufferingSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bufferingSize = n
}

// BufferingRatio reports the fraction of the medium's known length
// currently held in Succeeded packs.
func (c *Cache) BufferingRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.length <= 0 {
		return 0
	}
	var succeeded int64
	for _, p := range c.packs {
		if p.state == PackSucceeded {
			succeeded += int64(p.size)
		}
	}
	ratio := float64(succeeded) / float64(c.length)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}
