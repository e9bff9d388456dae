package events

import (
	"fmt"
	"io"
	"sync"

	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Event Types
// --------------------------------------------------------------------------

type Type uint8

const (
	TPromote Type = iota // a table was replaced by another representation
	TGrow                // a bucket array doubled
	TCompact             // an ordered table dropped its tombstones
)

func (t Type) String() string {
	switch t {
	case TPromote:
		return "Promote"
	case TGrow:
		return "Grow"
	case TCompact:
		return "Compact"
	default:
		return "Unknown"
	}
}

// Event describes one structural change of a table
type Event struct {
	Type Type
	From string // representation before the change
	To   string // representation after the change
	Size int    // slot count (promote) or new bucket count (grow) or tombstones (compact)
}

func (e Event) String() string {
	switch e.Type {
	case TPromote:
		return fmt.Sprintf("promoted %s table to %s (%d slots)", e.From, e.To, e.Size)
	case TGrow:
		return fmt.Sprintf("grew %s table to %d buckets", e.From, e.Size)
	case TCompact:
		return fmt.Sprintf("compacted %s table with %d tombstones into %s", e.From, e.Size, e.To)
	default:
		return fmt.Sprintf("%s event", e.Type)
	}
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

var set = metrics.NewSet()

func promotionCounter(from, to string) *metrics.Counter {
	return set.GetOrCreateCounter(fmt.Sprintf(`dslot_promotions_total{from=%q,to=%q}`, from, to))
}

func growthCounter(table string) *metrics.Counter {
	return set.GetOrCreateCounter(fmt.Sprintf(`dslot_table_growth_total{table=%q}`, table))
}

var (
	compactions = set.NewCounter("dslot_compactions_total")
	fallbacks   = set.NewCounter("dslot_optimistic_fallbacks_total")
	lazyInits   = set.NewCounter("dslot_lazy_inits_total")
)

func init() {
	slot.SetLazyInitHook(lazyInits.Inc)
}

// WritePrometheus writes all counters in Prometheus text format
func WritePrometheus(w io.Writer) {
	set.WritePrometheus(w)
}

// Promotions returns how often a from table was promoted to a to table
func Promotions(from, to string) uint64 { return promotionCounter(from, to).Get() }

// Growths returns how often tables of the given kind doubled their bucket array
func Growths(table string) uint64 { return growthCounter(table).Get() }

// Compactions returns how often ordered tables were compacted
func Compactions() uint64 { return compactions.Get() }

// OptimisticFallbacks returns how often an optimistic read had to retry under the read lock
func OptimisticFallbacks() uint64 { return fallbacks.Get() }

// LazyInits returns how many lazy slots were initialized
func LazyInits() uint64 { return lazyInits.Get() }

// --------------------------------------------------------------------------
// Reporting
// --------------------------------------------------------------------------

var (
	queue     *util.Queue[Event]
	queueOnce sync.Once
)

// publish hands the event to the log consumer. It never blocks, so it is safe
// to call while a table lock is held.
func publish(e Event) {
	queueOnce.Do(func() {
		queue = util.NewQueue[Event]()
		go consume(queue)
	})
	queue.Push(&e)
}

func consume(q *util.Queue[Event]) {
	log := common.GetLogger("slotmap")
	for e := range q.Recv() {
		log.Debugf("%s", e)
	}
}

// Promoted records the replacement of a from table by a to table holding size slots
func Promoted(from, to string, size int) {
	promotionCounter(from, to).Inc()
	publish(Event{Type: TPromote, From: from, To: to, Size: size})
}

// Grew records a bucket array doubling to buckets entries
func Grew(table string, buckets int) {
	growthCounter(table).Inc()
	publish(Event{Type: TGrow, From: table, To: table, Size: buckets})
}

// Compacted records an ordered table being rebuilt because of too many tombstones
func Compacted(from, to string, tombstones int) {
	compactions.Inc()
	publish(Event{Type: TCompact, From: from, To: to, Size: tombstones})
}

// OptimisticFallback records a failed optimistic read. It only counts, the
// path is too hot for logging.
func OptimisticFallback() {
	fallbacks.Inc()
}
