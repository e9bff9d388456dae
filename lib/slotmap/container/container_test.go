package container

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/snapshot"
	smtesting "github.com/ValentinKolb/dSlot/lib/slotmap/testing"
)

func factory(table slotmap.Implementation, threadSafe bool) smtesting.TableFactory {
	return func(largeHashSize int) smtesting.Table {
		c, err := New(&Options{LargeHashSize: largeHashSize, Table: table, ThreadSafe: threadSafe})
		if err != nil {
			panic(err)
		}
		return c
	}
}

func Test(t *testing.T) {
	for _, table := range []slotmap.Implementation{slotmap.ImplEmbedded, slotmap.ImplOrdered} {
		smtesting.RunSlotMapTests(t, fmt.Sprintf("Uncontended(%s)", table), factory(table, false))
		smtesting.RunSlotMapTests(t, fmt.Sprintf("Shared(%s)", table), factory(table, true))
	}
}

func Benchmark(b *testing.B) {
	smtesting.RunSlotMapBenchmarks(b, "Uncontended", factory(slotmap.ImplEmbedded, false))
	smtesting.RunSlotMapBenchmarks(b, "Shared", factory(slotmap.ImplEmbedded, true))
}

func mustNew(t testing.TB, opts *Options) *Container {
	c, err := New(opts)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	return c
}

func TestOptions(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := mustNew(t, nil)
		if c.ThreadSafe() {
			t.Errorf("Expected the default container to be uncontended")
		}
		if c.Implementation() != slotmap.ImplEmpty {
			t.Errorf("Expected a new container to use the empty map, got %s", c.Implementation())
		}
		if c.Policy().LargeHashSize != slotmap.DefaultLargeHashSize {
			t.Errorf("Expected default large hash size, got %d", c.Policy().LargeHashSize)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := []*Options{
			{InitialCapacity: -1},
			{LargeHashSize: -5},
			{Table: slotmap.ImplHashed},
		}
		for _, opts := range cases {
			if _, err := New(opts); err == nil {
				t.Errorf("Expected error for options %+v", opts)
			}
		}
	})

	t.Run("FeatureOptimisticRead", func(t *testing.T) {
		if mustNew(t, nil).SupportsFeature(slotmap.FeatureOptimisticRead) {
			t.Errorf("Expected uncontended container without optimistic reads")
		}
		if !mustNew(t, &Options{ThreadSafe: true}).SupportsFeature(slotmap.FeatureOptimisticRead | slotmap.FeatureQuery) {
			t.Errorf("Expected shared container with optimistic reads")
		}
	})
}

func TestRemoveAndAdd(t *testing.T) {
	c := mustNew(t, nil)
	if c.Remove(slot.StringKey("x")) {
		t.Errorf("Expected Remove of a missing key to report false")
	}
	if err := c.Add(nil); !errors.Is(err, slot.ErrInvalidOperation) {
		t.Errorf("Expected InvalidOperation for a nil slot, got %v", err)
	}
	if err := c.Add(slot.New(slot.StringKey("x"), slot.Attributes(64))); !errors.Is(err, slot.ErrInvalidAttributes) {
		t.Errorf("Expected InvalidAttributes, got %v", err)
	}
	if err := c.Add(slot.New(slot.StringKey("x"), slot.Empty)); err != nil {
		t.Fatalf("Failed to add: %v", err)
	}
	if !c.Remove(slot.StringKey("x")) || !c.IsEmpty() {
		t.Errorf("Expected Remove to delete the slot")
	}
}

func TestPromotionTransparent(t *testing.T) {
	for _, threadSafe := range []bool{false, true} {
		t.Run(fmt.Sprintf("ThreadSafe=%v", threadSafe), func(t *testing.T) {
			c := mustNew(t, &Options{LargeHashSize: 50, ThreadSafe: threadSafe})
			seen := map[slotmap.Implementation]bool{}

			const n = 500
			for i := 0; i < n; i++ {
				s, err := c.Modify(slot.IndexKey(int32(i)), slot.Empty)
				if err != nil {
					t.Fatalf("Failed to modify: %v", err)
				}
				s.SetRawValue(i)
				seen[c.Implementation()] = true
			}

			for _, impl := range []slotmap.Implementation{slotmap.ImplSingle, slotmap.ImplEmbedded, slotmap.ImplHashed} {
				if !seen[impl] {
					t.Errorf("Expected the container to pass through %s", impl)
				}
			}
			if c.Size() != n {
				t.Errorf("Expected size %d, got %d", n, c.Size())
			}
			for i, s := range c.Slots() {
				if s.Key().Index() != int32(i) || s.Value() != i {
					t.Fatalf("Expected index %d at position %d, got %s=%v", i, i, s.Key(), s.Value())
				}
			}
		})
	}
}

func TestIterationGuard(t *testing.T) {
	c := mustNew(t, &Options{ThreadSafe: true})
	for i := 0; i < 10; i++ {
		_, _ = c.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}

	stamp := c.ReadLock()
	writerDone := make(chan struct{})
	go func() {
		_, _ = c.Modify(slot.StringKey("late"), slot.Empty)
		close(writerDone)
	}()

	count := 0
	for range c.All() {
		count++
	}
	select {
	case <-writerDone:
		t.Errorf("Expected the writer to wait for the iteration guard")
	default:
	}
	c.UnlockRead(stamp)
	<-writerDone

	if count != 10 {
		t.Errorf("Expected 10 slots under the guard, got %d", count)
	}
	if c.Size() != 11 {
		t.Errorf("Expected the writer to finish after the guard, got size %d", c.Size())
	}

	// Slots returns a copy that tolerates mutation
	for _, s := range c.Slots() {
		c.Remove(s.Key())
	}
	if !c.IsEmpty() {
		t.Errorf("Expected all slots removed while traversing a copy")
	}
}

func TestInfo(t *testing.T) {
	c := mustNew(t, &Options{ThreadSafe: true})
	for i := 0; i < 20; i++ {
		_, _ = c.Modify(slot.IndexKey(int32(i)), slot.Empty)
	}
	info := c.Info()
	if info.Implementation != slotmap.ImplEmbedded || info.Size != 20 || info.Buckets == 0 {
		t.Errorf("Expected embedded info with 20 slots, got %+v", info)
	}
	found := false
	for _, f := range info.SupportedFeatures {
		if f == slotmap.FeatureOptimisticRead {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected OptimisticRead in the features of a shared container")
	}
}

func TestSaveLoad(t *testing.T) {
	for name, newCodec := range snapshot.Codecs {
		t.Run(name, func(t *testing.T) {
			src := mustNew(t, &Options{LargeHashSize: 16})
			for i := 0; i < 100; i++ {
				s, _ := src.Modify(slot.StringKey(fmt.Sprintf("k%d", i)), slot.Attributes(i%4))
				s.SetRawValue(i)
			}
			src.Remove(slot.StringKey("k0"))
			_, _ = src.Modify(slot.StringKey("k0"), slot.Empty)

			var buf bytes.Buffer
			if err := src.Save(&buf, newCodec()); err != nil {
				t.Fatalf("Failed to save: %v", err)
			}

			dst := mustNew(t, &Options{Table: slotmap.ImplOrdered})
			if err := dst.Load(bytes.NewReader(buf.Bytes()), newCodec()); err != nil {
				t.Fatalf("Failed to load: %v", err)
			}

			want, got := src.Slots(), dst.Slots()
			if len(want) != len(got) {
				t.Fatalf("Expected %d slots, got %d", len(want), len(got))
			}
			for i := range want {
				if want[i].Key() != got[i].Key() || want[i].Value() != got[i].Value() || want[i].Attributes() != got[i].Attributes() {
					t.Errorf("Expected slot %s=%v at %d, got %s=%v", want[i].Key(), want[i].Value(), i, got[i].Key(), got[i].Value())
				}
			}

			if err := dst.Load(bytes.NewReader(buf.Bytes()), newCodec()); !errors.Is(err, slot.ErrInvalidOperation) {
				t.Errorf("Expected loading into a non-empty container to fail, got %v", err)
			}
		})
	}

	t.Run("NotSerializable", func(t *testing.T) {
		c := mustNew(t, nil)
		_, _ = c.Compute(slot.StringKey("acc"), slotmap.EnsureAccessor(slot.Empty))
		if err := c.Save(&bytes.Buffer{}, snapshot.NewBinaryCodec()); !errors.Is(err, slot.ErrNotSerializable) {
			t.Errorf("Expected NotSerializable, got %v", err)
		}
	})
}

func TestConcurrentPromotion(t *testing.T) {
	c := mustNew(t, &Options{LargeHashSize: 8, ThreadSafe: true})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := slot.StringKey(fmt.Sprintf("g%d-%d", g, i))
				if _, err := c.Modify(k, slot.Empty); err != nil {
					t.Errorf("Failed to modify: %v", err)
					return
				}
				if s := c.Query(k); s == nil || s.Key() != k {
					t.Errorf("Expected to read back %s", k)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Size() != 8*500 {
		t.Errorf("Expected %d slots, got %d", 8*500, c.Size())
	}
	if c.Implementation() != slotmap.ImplHashed {
		t.Errorf("Expected promotion to hashed, got %s", c.Implementation())
	}
}
