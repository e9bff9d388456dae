package testing

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
)

// promotionThreshold is passed to factories by tests that cross the large
// hash size, small enough to keep the tests fast
const promotionThreshold = 32

// RunSlotMapTests runs the contract test suite against a table implementation
func RunSlotMapTests(t *testing.T, name string, factory TableFactory) {
	defaultFactory := func() Table { return factory(slotmap.DefaultLargeHashSize) }

	t.Run(name, func(t *testing.T) {
		t.Run("QueryModify", func(t *testing.T) {
			testQueryModify(t, defaultFactory())
		})

		t.Run("InsertionOrder", func(t *testing.T) {
			testInsertionOrder(t, defaultFactory())
		})

		t.Run("Compute", func(t *testing.T) {
			testCompute(t, defaultFactory())
		})

		t.Run("ComputeErrors", func(t *testing.T) {
			testComputeErrors(t, defaultFactory())
		})

		t.Run("Add", func(t *testing.T) {
			testAdd(t, defaultFactory())
		})

		t.Run("InvalidAttributes", func(t *testing.T) {
			testInvalidAttributes(t, defaultFactory())
		})

		t.Run("KeyTypes", func(t *testing.T) {
			testKeyTypes(t, defaultFactory())
		})

		t.Run("CollisionHandling", func(t *testing.T) {
			testCollisionHandling(t, defaultFactory())
		})

		t.Run("ManyRemovals", func(t *testing.T) {
			testManyRemovals(t, defaultFactory())
		})

		t.Run("Promotion", func(t *testing.T) {
			testPromotion(t, factory(promotionThreshold))
		})

		t.Run("SlotConversion", func(t *testing.T) {
			testSlotConversion(t, defaultFactory())
		})

		t.Run("MutationDuringIteration", func(t *testing.T) {
			testMutationDuringIteration(t, defaultFactory)
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory(promotionThreshold))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the table supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, table Table, feature slotmap.Feature) {
	if !table.SupportsFeature(feature) {
		t.Skip()
	}
}

func key(i int) slot.Key {
	return slot.StringKey(fmt.Sprintf("key-%d", i))
}

func mustModify(t testing.TB, table Table, k slot.Key, attrs slot.Attributes) *slot.Slot {
	s, err := table.Modify(k, attrs)
	if err != nil {
		t.Fatalf("Failed to modify %s: %v", k, err)
	}
	return s
}

func mustCompute(t testing.TB, table Table, k slot.Key, fn slotmap.ComputeFunc) *slot.Slot {
	s, err := table.Compute(k, fn)
	if err != nil {
		t.Fatalf("Failed to compute %s: %v", k, err)
	}
	return s
}

// order renders the keys of the table in iteration order
func order(table Table) string {
	out := ""
	for i, s := range table.Slots() {
		if i > 0 {
			out += ","
		}
		out += s.Key().String()
	}
	return out
}

func expectOrder(t testing.TB, table Table, expected string) {
	t.Helper()
	if got := order(table); got != expected {
		t.Errorf("Expected order %q, got %q", expected, got)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testQueryModify(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureQuery|slotmap.FeatureModify)

	if !table.IsEmpty() || table.Size() != 0 {
		t.Fatalf("Expected new table to be empty, got size %d", table.Size())
	}
	if s := table.Query(slot.StringKey("missing")); s != nil {
		t.Errorf("Expected nil for missing key, got %v", s.Key())
	}

	k := slot.StringKey("x")
	s := mustModify(t, table, k, slot.DontEnum)
	if s.Key() != k || s.Hash() != k.Hash() {
		t.Errorf("Expected slot with key %s, got %s", k, s.Key())
	}
	if s.Attributes() != slot.DontEnum {
		t.Errorf("Expected attributes DontEnum, got %s", s.Attributes())
	}
	if s.Kind() != slot.KindValue {
		t.Errorf("Expected a value slot, got %s", s.Kind())
	}

	again := mustModify(t, table, k, slot.ReadOnly)
	if again != s {
		t.Errorf("Expected second Modify to return the same slot")
	}
	if again.Attributes() != slot.DontEnum {
		t.Errorf("Expected Modify of an existing slot to keep its attributes, got %s", again.Attributes())
	}
	if q := table.Query(k); q != s {
		t.Errorf("Expected Query to return the created slot")
	}
	if table.Size() != 1 || table.IsEmpty() {
		t.Errorf("Expected size 1, got %d", table.Size())
	}

	for i := 0; i < 100; i++ {
		mustModify(t, table, key(i), slot.Empty).SetRawValue(i)
	}
	if table.Size() != 101 {
		t.Errorf("Expected size 101, got %d", table.Size())
	}
	for i := 0; i < 100; i++ {
		s := table.Query(key(i))
		if s == nil {
			t.Errorf("Expected %s to exist", key(i))
			continue
		}
		if s.Value() != i {
			t.Errorf("Expected value %d for %s, got %v", i, key(i), s.Value())
		}
	}
}

func testInsertionOrder(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureOrderedIteration|slotmap.FeatureCompute)

	for _, name := range []string{"a", "b", "c"} {
		mustModify(t, table, slot.StringKey(name), slot.Empty)
	}
	expectOrder(t, table, "a,b,c")

	// replacing keeps the position
	b := slot.StringKey("b")
	replacement := slot.NewWithValue(b, slot.ReadOnly|slot.DontEnum, "new")
	if got := mustCompute(t, table, b, slotmap.Replace(replacement)); got != replacement {
		t.Errorf("Expected Compute to return the replacement")
	}
	expectOrder(t, table, "a,b,c")
	if s := table.Query(b); s != replacement || s.Attributes() != slot.ReadOnly|slot.DontEnum {
		t.Errorf("Expected b to be replaced with new attributes")
	}
	if table.Size() != 3 {
		t.Errorf("Expected size 3 after replace, got %d", table.Size())
	}

	// removal then reinsertion moves to the end
	mustCompute(t, table, slot.StringKey("a"), slotmap.Remove())
	expectOrder(t, table, "b,c")
	mustModify(t, table, slot.StringKey("a"), slot.Empty)
	expectOrder(t, table, "b,c,a")

	// replacing the first and the last slot
	mustCompute(t, table, b, slotmap.Replace(slot.New(b, slot.Empty)))
	mustCompute(t, table, slot.StringKey("a"), slotmap.Replace(slot.New(slot.StringKey("a"), slot.Empty)))
	expectOrder(t, table, "b,c,a")
	mustModify(t, table, slot.StringKey("d"), slot.Empty)
	expectOrder(t, table, "b,c,a,d")

	// removing the last slot keeps appends working
	mustCompute(t, table, slot.StringKey("d"), slotmap.Remove())
	mustModify(t, table, slot.StringKey("e"), slot.Empty)
	expectOrder(t, table, "b,c,a,e")
}

func testCompute(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureCompute)

	k := slot.StringKey("k")

	// nil on an absent key is a no-op
	var seen *slot.Slot
	called := false
	res := mustCompute(t, table, k, func(_ slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		called = true
		seen = existing
		return nil, nil
	})
	if !called || seen != nil || res != nil {
		t.Errorf("Expected fn to be called with nil and return nil")
	}
	if table.Size() != 0 {
		t.Errorf("Expected no-op on absent key, got size %d", table.Size())
	}

	// insert
	inserted := mustCompute(t, table, k, func(key slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		return slot.NewWithValue(key, slot.Empty, 1), nil
	})
	if table.Size() != 1 || table.Query(k) != inserted {
		t.Errorf("Expected Compute to insert the slot")
	}
	mustModify(t, table, slot.StringKey("other"), slot.Empty)

	// returning the existing slot changes nothing
	same := mustCompute(t, table, k, func(_ slot.Key, existing *slot.Slot) (*slot.Slot, error) {
		seen = existing
		return existing, nil
	})
	if seen != inserted || same != inserted || table.Size() != 2 {
		t.Errorf("Expected Compute returning existing to be a no-op")
	}

	// remove decrements by exactly one
	if res := mustCompute(t, table, k, slotmap.Remove()); res != nil {
		t.Errorf("Expected Remove to return nil")
	}
	if table.Size() != 1 || table.Query(k) != nil {
		t.Errorf("Expected k to be removed, size %d", table.Size())
	}
	if table.Query(slot.StringKey("other")) == nil {
		t.Errorf("Expected other key to survive the removal")
	}

	// WithAttributes on a missing key leaves it missing
	mustCompute(t, table, k, slotmap.WithAttributes(slot.ReadOnly))
	if table.Query(k) != nil {
		t.Errorf("Expected WithAttributes to not create a slot")
	}
	other := mustCompute(t, table, slot.StringKey("other"), slotmap.WithAttributes(slot.ReadOnly))
	if other == nil || other.Attributes() != slot.ReadOnly {
		t.Errorf("Expected attributes to change to ReadOnly")
	}
}

func testComputeErrors(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureCompute)

	k := slot.StringKey("k")
	mustModify(t, table, k, slot.Empty).SetRawValue("v")

	boom := errors.New("boom")
	_, err := table.Compute(k, func(_ slot.Key, _ *slot.Slot) (*slot.Slot, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected compute error to be returned, got %v", err)
	}
	if s := table.Query(k); s == nil || s.Value() != "v" {
		t.Errorf("Expected failed compute to leave the slot unchanged")
	}

	_, err = table.Compute(slot.StringKey("new"), slotmap.Replace(slot.New(slot.StringKey("wrong"), slot.Empty)))
	if !errors.Is(err, slot.ErrInvalidOperation) {
		t.Errorf("Expected InvalidOperation for a slot with the wrong key, got %v", err)
	}

	_, err = table.Compute(slot.StringKey("bad"), slotmap.Replace(slot.New(slot.StringKey("bad"), slot.Attributes(1<<10))))
	if !errors.Is(err, slot.ErrInvalidAttributes) {
		t.Errorf("Expected InvalidAttributes for a new slot with unknown bits, got %v", err)
	}
	_, err = table.Compute(k, slotmap.Replace(slot.NewWithValue(k, slot.Attributes(1<<10), "bad")))
	if !errors.Is(err, slot.ErrInvalidAttributes) {
		t.Errorf("Expected InvalidAttributes for a replacement with unknown bits, got %v", err)
	}
	if s := table.Query(k); s == nil || s.Value() != "v" {
		t.Errorf("Expected rejected replacement to leave the slot unchanged")
	}

	_, err = table.Compute(slot.StringKey("lambda"), slotmap.EnsureLambda(slot.Empty, nil, nil))
	if !errors.Is(err, slot.ErrInvalidOperation) {
		t.Errorf("Expected InvalidOperation for a lambda without closures, got %v", err)
	}
	if table.Query(slot.StringKey("lambda")) != nil {
		t.Errorf("Expected no slot for a rejected lambda")
	}

	if table.Size() != 1 {
		t.Errorf("Expected size 1 after rejected computes, got %d", table.Size())
	}
}

func testAdd(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureAdd)

	var added []*slot.Slot
	for i := 0; i < 50; i++ {
		s := slot.NewWithValue(key(i), slot.Empty, i)
		if err := table.Add(s); err != nil {
			t.Fatalf("Failed to add %s: %v", key(i), err)
		}
		added = append(added, s)
	}
	if table.Size() != 50 {
		t.Errorf("Expected size 50, got %d", table.Size())
	}
	for i, s := range table.Slots() {
		if s.Key() != added[i].Key() || s.Value() != i {
			t.Errorf("Expected %s at position %d, got %s", added[i].Key(), i, s.Key())
		}
	}
	for i := 0; i < 50; i++ {
		if table.Query(key(i)) == nil {
			t.Errorf("Expected %s to be found after Add", key(i))
		}
	}
}

func testInvalidAttributes(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureModify)

	if _, err := table.Modify(slot.StringKey("x"), slot.Attributes(1<<10)); !errors.Is(err, slot.ErrInvalidAttributes) {
		t.Errorf("Expected InvalidAttributes error, got %v", err)
	}
	if table.Size() != 0 {
		t.Errorf("Expected rejected Modify to not insert, got size %d", table.Size())
	}
}

func testKeyTypes(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureQuery|slotmap.FeatureModify)

	sym1 := slot.NewSymbol("same")
	sym2 := slot.NewSymbol("same")
	keys := []slot.Key{
		slot.StringKey("1"),
		slot.IndexKey(1),
		slot.IndexKey(0),
		slot.IndexKey(-1),
		slot.StringKey(""),
		slot.SymbolKey(sym1),
		slot.SymbolKey(sym2),
	}
	for i, k := range keys {
		mustModify(t, table, k, slot.Empty).SetRawValue(i)
	}
	if table.Size() != len(keys) {
		t.Fatalf("Expected %d distinct keys, got %d", len(keys), table.Size())
	}
	for i, k := range keys {
		s := table.Query(k)
		if s == nil || s.Value() != i {
			t.Errorf("Expected key %s to hold %d", k, i)
		}
	}
	if table.Query(slot.SymbolKey(slot.NewSymbol("same"))) != nil {
		t.Errorf("Expected a new symbol to not match existing symbols")
	}
}

func testCollisionHandling(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureQuery|slotmap.FeatureCompute)

	// an index key with the hash of a string key
	named := slot.StringKey("collide")
	index := slot.IndexKey(util.StringHash("collide"))
	if named.Hash() != index.Hash() {
		t.Fatalf("Expected equal hashes")
	}
	mustModify(t, table, named, slot.Empty).SetRawValue("named")
	mustModify(t, table, index, slot.Empty).SetRawValue("index")

	// index keys sharing buckets in small tables
	for i := int32(0); i < 64; i += 4 {
		mustModify(t, table, slot.IndexKey(i<<8), slot.Empty).SetRawValue(i)
	}

	if s := table.Query(named); s == nil || s.Value() != "named" {
		t.Errorf("Expected named key to hold 'named'")
	}
	if s := table.Query(index); s == nil || s.Value() != "index" {
		t.Errorf("Expected index key to hold 'index'")
	}

	// remove from the middle of chains
	mustCompute(t, table, named, slotmap.Remove())
	for i := int32(0); i < 64; i += 8 {
		mustCompute(t, table, slot.IndexKey(i<<8), slotmap.Remove())
	}
	if table.Query(named) != nil {
		t.Errorf("Expected named key to be removed")
	}
	if s := table.Query(index); s == nil || s.Value() != "index" {
		t.Errorf("Expected index key to survive the removal of its collision partner")
	}
	for i := int32(0); i < 64; i += 4 {
		s := table.Query(slot.IndexKey(i << 8))
		if removed := i%8 == 0; removed != (s == nil) {
			t.Errorf("Expected index %d removed=%v", i<<8, removed)
		}
	}
	if table.Size() != 1+8 {
		t.Errorf("Expected size 9, got %d", table.Size())
	}
}

func testManyRemovals(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureCompute)

	for i := 0; i < 60; i++ {
		mustModify(t, table, key(i), slot.Empty).SetRawValue(i)
	}
	expected := ""
	for i := 0; i < 60; i++ {
		if i%3 == 0 {
			mustCompute(t, table, key(i), slotmap.Remove())
			continue
		}
		if expected != "" {
			expected += ","
		}
		expected += key(i).String()
	}
	if table.Size() != 40 {
		t.Errorf("Expected size 40, got %d", table.Size())
	}
	expectOrder(t, table, expected)

	for i := 0; i < 60; i++ {
		s := table.Query(key(i))
		if i%3 == 0 && s != nil {
			t.Errorf("Expected %s to be removed", key(i))
		}
		if i%3 != 0 && (s == nil || s.Value() != i) {
			t.Errorf("Expected %s to hold %d", key(i), i)
		}
	}

	mustModify(t, table, key(0), slot.Empty)
	expectOrder(t, table, expected+","+key(0).String())
}

func testPromotion(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeaturePromotion)

	const n = promotionThreshold * 8
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			mustModify(t, table, key(i), slot.Empty).SetRawValue(i)
		} else {
			mustCompute(t, table, key(i), slotmap.Replace(slot.NewWithValue(key(i), slot.DontEnum, i)))
		}
	}

	if table.Implementation() != slotmap.ImplHashed {
		t.Errorf("Expected promotion to %s, got %s", slotmap.ImplHashed, table.Implementation())
	}
	if table.Size() != n {
		t.Errorf("Expected size %d after promotion, got %d", n, table.Size())
	}
	for i, s := range table.Slots() {
		if s.Key() != key(i) {
			t.Fatalf("Expected %s at position %d, got %s", key(i), i, s.Key())
		}
		if s.Value() != i {
			t.Errorf("Expected value %d for %s, got %v", i, key(i), s.Value())
		}
		if i%2 == 1 && s.Attributes() != slot.DontEnum {
			t.Errorf("Expected attributes to survive promotion for %s", key(i))
		}
	}
	for i := 0; i < n; i++ {
		if table.Query(key(i)) == nil {
			t.Errorf("Expected %s to be found after promotion", key(i))
		}
	}

	// the promoted table keeps the order contract
	mustCompute(t, table, key(0), slotmap.Remove())
	mustCompute(t, table, key(1), slotmap.Replace(slot.New(key(1), slot.Empty)))
	mustModify(t, table, key(0), slot.Empty)
	slots := table.Slots()
	if slots[0].Key() != key(1) || slots[len(slots)-1].Key() != key(0) {
		t.Errorf("Expected key-1 first and key-0 last after promotion, got %s and %s",
			slots[0].Key(), slots[len(slots)-1].Key())
	}
}

func testSlotConversion(t *testing.T, table Table) {
	requireFeature(t, table, slotmap.FeatureCompute)

	for _, name := range []string{"a", "b", "c"} {
		mustModify(t, table, slot.StringKey(name), slot.Empty).SetRawValue(name)
	}

	b := slot.StringKey("b")
	acc := mustCompute(t, table, b, slotmap.EnsureAccessor(slot.Empty))
	if acc.Kind() != slot.KindAccessor {
		t.Fatalf("Expected accessor slot, got %s", acc.Kind())
	}
	if v, _ := acc.GetValue(nil); v != "b" {
		t.Errorf("Expected converted accessor to keep value 'b', got %v", v)
	}
	if again := mustCompute(t, table, b, slotmap.EnsureAccessor(slot.Empty)); again != acc {
		t.Errorf("Expected existing accessor to be kept")
	}
	expectOrder(t, table, "a,b,c")

	calls := 0
	lazy := mustCompute(t, table, slot.StringKey("a"), slotmap.EnsureLazy(slot.Empty, func() (interface{}, error) {
		calls++
		return "init", nil
	}))
	if v, _ := table.Query(slot.StringKey("a")).GetValue(nil); v != "init" || calls != 1 {
		t.Errorf("Expected lazy slot to initialize once to 'init', got %v after %d calls", v, calls)
	}
	if v, _ := lazy.GetValue(nil); v != "init" || calls != 1 {
		t.Errorf("Expected lazy slot to not initialize again")
	}
	expectOrder(t, table, "a,b,c")

	lambda := mustCompute(t, table, slot.StringKey("d"), slotmap.EnsureLambda(slot.Empty,
		func(interface{}) (interface{}, error) { return "lambda", nil }, nil))
	if v, _ := lambda.GetValue(nil); v != "lambda" {
		t.Errorf("Expected lambda getter result, got %v", v)
	}
	expectOrder(t, table, "a,b,c,d")
}

func testMutationDuringIteration(t *testing.T, newTable func() Table) {
	keys := func(slots []*slot.Slot) []slot.Key {
		out := make([]slot.Key, 0, len(slots))
		for _, s := range slots {
			out = append(out, s.Key())
		}
		return out
	}
	expectKeys := func(t *testing.T, got, expected []slot.Key) {
		t.Helper()
		if fmt.Sprint(got) != fmt.Sprint(expected) {
			t.Errorf("Expected keys %v, got %v", expected, got)
		}
	}

	// Slots is a copy, so every table may be changed while it is traversed,
	// including removals that compact or additions that promote
	t.Run("Slots", func(t *testing.T) {
		table := newTable()
		for i := 0; i < 20; i++ {
			mustModify(t, table, key(i), slot.Empty)
		}

		visited := 0
		var expected []slot.Key
		for _, s := range table.Slots() {
			visited++
			mustCompute(t, table, s.Key(), slotmap.Remove())
			if visited%2 == 0 {
				mustModify(t, table, key(100+visited), slot.Empty)
				expected = append(expected, key(100+visited))
			}
		}
		if visited != 20 {
			t.Errorf("Expected 20 visited slots, got %d", visited)
		}
		expectKeys(t, keys(table.Slots()), expected)
	})

	live := func(t *testing.T, n int) Table {
		table := newTable()
		if table.ThreadSafe() {
			// All is guarded by the read lock in the shared regime
			t.Skip()
		}
		for i := 0; i < n; i++ {
			mustModify(t, table, key(i), slot.Empty)
		}
		requireFeature(t, table, slotmap.FeatureMutationDuringIteration)
		return table
	}

	t.Run("RemoveAhead", func(t *testing.T) {
		table := live(t, 8)
		var visited []slot.Key
		for s := range table.All() {
			visited = append(visited, s.Key())
			if s.Key() == key(2) {
				mustCompute(t, table, key(3), slotmap.Remove())
				mustModify(t, table, key(100), slot.Empty)
			}
		}
		expectKeys(t, visited, []slot.Key{key(0), key(1), key(2), key(4), key(5), key(6), key(7), key(100)})
	})

	t.Run("RemoveCurrentTail", func(t *testing.T) {
		table := live(t, 2)
		var visited []slot.Key
		for s := range table.All() {
			visited = append(visited, s.Key())
			if s.Key() == key(1) {
				mustCompute(t, table, key(1), slotmap.Remove())
				mustCompute(t, table, key(0), slotmap.Remove())
				mustModify(t, table, key(100), slot.Empty)
			}
		}
		expectKeys(t, visited, []slot.Key{key(0), key(1), key(100)})
		expectKeys(t, keys(table.Slots()), []slot.Key{key(100)})
	})

	t.Run("ManyRemovals", func(t *testing.T) {
		table := live(t, 30)
		var visited []slot.Key
		for s := range table.All() {
			visited = append(visited, s.Key())
			switch s.Key() {
			case key(0):
				for i := 1; i <= 15; i++ {
					mustCompute(t, table, key(i), slotmap.Remove())
				}
				mustModify(t, table, key(100), slot.Empty)
			case key(100):
				mustCompute(t, table, key(100), slotmap.Remove())
				mustModify(t, table, key(101), slot.Empty)
			}
		}

		expected := []slot.Key{key(0)}
		for i := 16; i < 30; i++ {
			expected = append(expected, key(i))
		}
		expected = append(expected, key(100), key(101))
		expectKeys(t, visited, expected)
		if table.Size() != 16 {
			t.Errorf("Expected 16 slots, got %d", table.Size())
		}
	})
}

func testConcurrentAccess(t *testing.T, table Table) {
	if !table.ThreadSafe() {
		t.Skip()
	}

	const (
		goroutines = 8
		operations = 10000
		keysPerG   = 200
	)

	gKey := func(g, i int) slot.Key {
		return slot.StringKey(fmt.Sprintf("g%d-%d", g, i))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		net    int
		errMsg []string
	)
	fail := func(format string, args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if len(errMsg) < 10 {
			errMsg = append(errMsg, fmt.Sprintf(format, args...))
		}
	}

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(g)))
			present := make(map[int]bool)

			for op := 0; op < operations; op++ {
				i := rng.Intn(keysPerG)
				k := gKey(g, i)
				switch rng.Intn(4) {
				case 0:
					s, err := table.Modify(k, slot.Empty)
					if err != nil || s.Key() != k {
						fail("modify %s returned wrong slot: %v", k, err)
					}
					present[i] = true
				case 1:
					if _, err := table.Compute(k, slotmap.Remove()); err != nil {
						fail("remove %s: %v", k, err)
					}
					present[i] = false
				case 2:
					// only this goroutine changes its keys, so the result is exact
					s := table.Query(k)
					if (s != nil) != present[i] {
						fail("query %s: expected present=%v", k, present[i])
					}
					if s != nil && s.Key() != k {
						fail("query %s returned slot %s", k, s.Key())
					}
				default:
					other := gKey(rng.Intn(goroutines), i)
					if s := table.Query(other); s != nil && s.Key() != other {
						fail("query %s returned slot %s", other, s.Key())
					}
				}
			}

			count := 0
			for _, p := range present {
				if p {
					count++
				}
			}
			mu.Lock()
			net += count
			mu.Unlock()
		}(g)
	}
	wg.Wait()

	for _, msg := range errMsg {
		t.Error(msg)
	}
	if table.Size() != net {
		t.Errorf("Expected size %d, got %d", net, table.Size())
	}
	if len(table.Slots()) != net {
		t.Errorf("Expected %d slots in iteration, got %d", net, len(table.Slots()))
	}
}
