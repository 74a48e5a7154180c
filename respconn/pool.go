package respconn

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/morikuni/resp/resp"
	spool "github.com/morikuni/slice/pool"
)

// codecPair is one reusable Decoder+Aggregator, the per-connection
// state the host needs and nothing more.
type codecPair struct {
	dec *resp.Decoder
	agg *resp.Aggregator
}

func newCodecPair() *codecPair {
	dec := resp.NewDecoder()
	return &codecPair{dec: dec, agg: resp.NewAggregator(dec)}
}

// CodecPool is a fixed-capacity pool of idle codec pairs, generalizing
// the teacher's connection-idle slice pool (pool.go's Pool) to pool
// reusable decode state instead of live net.Conns. A host that
// processes many short-lived requests on a small set of connections
// can borrow a pair instead of allocating a fresh Decoder/Aggregator
// per request.
type CodecPool struct {
	idles []*codecPair
	pool  *spool.Pool
	conf  *codecPoolConfig
	mu    sync.Mutex
}

type codecPoolConfig struct {
	maxIdle     int
	minIdle     int
	idleTimeout time.Duration
}

// CodecPoolOption configures NewCodecPool, mirroring the teacher's
// PoolOption pattern.
type CodecPoolOption func(*codecPoolConfig)

// MaxIdle caps the number of idle codec pairs the pool holds.
func MaxIdle(n int) CodecPoolOption {
	return func(c *codecPoolConfig) {
		c.maxIdle = n
	}
}

// IdleTimeout sets the idle timeout handed to the underlying slot pool
// when NewCodecPool builds it.
func IdleTimeout(d time.Duration) CodecPoolOption {
	return func(c *codecPoolConfig) {
		c.idleTimeout = d
	}
}

// NewCodecPool builds a CodecPool ready to hand out codec pairs.
func NewCodecPool(opts ...CodecPoolOption) (*CodecPool, error) {
	conf := &codecPoolConfig{
		maxIdle:     10 * runtime.NumCPU(),
		minIdle:     runtime.NumCPU(),
		idleTimeout: time.Minute,
	}
	for _, o := range opts {
		o(conf)
	}
	if conf.maxIdle <= 0 {
		return nil, fmt.Errorf("max idle must be positive, got %d", conf.maxIdle)
	}
	if conf.minIdle > conf.maxIdle {
		conf.minIdle = conf.maxIdle
	}

	idles := make([]*codecPair, conf.maxIdle)
	pl, err := spool.New(len(idles),
		spool.MinIdle(conf.minIdle),
		spool.IdleTimeout(conf.idleTimeout),
	)
	if err != nil {
		return nil, err
	}

	return &CodecPool{idles: idles, pool: pl, conf: conf}, nil
}

// Get returns an idle codec pair, or a freshly constructed one if the
// pool is empty.
func (p *CodecPool) Get() *codecPair {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pool.Get()
	if ok {
		return p.idles[idx]
	}
	return newCodecPair()
}

// Put returns a codec pair to the pool for reuse, or discards it if
// the pool has no free slot.
func (p *CodecPool) Put(pair *codecPair) error {
	if err := pair.agg.Release(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pool.Put()
	if !ok {
		return nil
	}
	p.idles[idx] = pair
	return nil
}
