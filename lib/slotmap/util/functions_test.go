package util

import "testing"

func TestStringHashStable(t *testing.T) {
	if StringHash("length") != StringHash("length") {
		t.Errorf("Expected equal hashes for equal strings")
	}
	if StringHash("a") == StringHash("b") {
		t.Errorf("Expected different hashes for a and b")
	}
	if HashString("x", 1) == HashString("x", 2) {
		t.Errorf("Expected the seed to change the hash")
	}
}

func TestBucketIndex(t *testing.T) {
	for _, size := range []int{1, 4, 8, 1024} {
		for _, h := range []int32{0, 1, -1, 12345, -98765} {
			idx := BucketIndex(h, size)
			if idx < 0 || idx >= size {
				t.Errorf("BucketIndex(%d, %d) = %d out of range", h, size, idx)
			}
		}
	}
	if BucketIndex(5, 4) != 1 {
		t.Errorf("Expected 5 & 3 == 1, got %d", BucketIndex(5, 4))
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for in, want := range cases {
		if got := NextPowerOfTwo(in); got != want {
			t.Errorf("NextPowerOfTwo(%d): expected %d, got %d", in, want, got)
		}
	}
}

func TestDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{2, 2, 2, 2})
	if even.DistributionQuality != 1 {
		t.Errorf("Expected perfect quality for even values, got %f", even.DistributionQuality)
	}
	skewed := NewDistributionStats([]float64{0, 0, 0, 8})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("Expected skewed quality below even quality")
	}
	if (NewStats(nil) != Stats{}) {
		t.Errorf("Expected zero stats for no values")
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram()
	for i := 0; i < 90; i++ {
		h.AddSample(1)
	}
	for i := 0; i < 10; i++ {
		h.AddSample(100)
	}
	if h.Count() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.Count())
	}
	if p := h.Percentile(50); p != 1 {
		t.Errorf("Expected p50 of 1, got %d", p)
	}
	if p := h.Percentile(99); p != 128 {
		t.Errorf("Expected overflow p99 of 128, got %d", p)
	}
	_, dist := h.Distribution()
	if dist[1] != 90 {
		t.Errorf("Expected 90%% in bucket 1, got %f", dist[1])
	}
	h.Reset()
	if h.Count() != 0 || h.Average() != 0 {
		t.Errorf("Expected empty histogram after reset")
	}
}
