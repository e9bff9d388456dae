package slotmap

import (
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/util"
)

// Feature represents capabilities of a representation as bit flags
type Feature uint64

const (
	FeatureQuery                   Feature = 1 << iota // Query lookups
	FeatureModify                                      // Modify create-or-fetch
	FeatureCompute                                     // atomic Compute
	FeatureAdd                                         // Add of known-absent slots
	FeatureOrderedIteration                            // All yields insertion order
	FeatureMutationDuringIteration                     // tables may change while All is traversed
	FeaturePromotion                                   // replaces itself when it outgrows its layout
	FeatureTombstones                                  // removal leaves a tombstone instead of relinking
	FeatureOptimisticRead                              // lock-free validated reads (shared regime)
)

// FeaturesAll are the operations every representation supports
const FeaturesAll = FeatureQuery | FeatureModify | FeatureCompute | FeatureAdd | FeatureOrderedIteration

func (f Feature) String() string {
	switch f {
	case FeatureQuery:
		return "Query"
	case FeatureModify:
		return "Modify"
	case FeatureCompute:
		return "Compute"
	case FeatureAdd:
		return "Add"
	case FeatureOrderedIteration:
		return "OrderedIteration"
	case FeatureMutationDuringIteration:
		return "MutationDuringIteration"
	case FeaturePromotion:
		return "Promotion"
	case FeatureTombstones:
		return "Tombstones"
	case FeatureOptimisticRead:
		return "OptimisticRead"
	default:
		return "Unknown"
	}
}

// MarshalText renders single features by name in JSON output
func (f Feature) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Split returns the single features contained in f
func (f Feature) Split() []Feature {
	var out []Feature
	for bit := Feature(1); bit != 0 && bit <= f; bit <<= 1 {
		if f&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Info
// --------------------------------------------------------------------------

// Info describes the state of a table
type Info struct {
	Implementation    Implementation `json:"implementation"`
	Size              int            `json:"size"`
	Buckets           int            `json:"buckets"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// ChainMetadata describes how slots are spread over the buckets of a table
type ChainMetadata struct {
	LoadFactor        float64                `json:"load_factor"`
	EmptyBuckets      int                    `json:"empty_buckets"`
	LongestChain      int                    `json:"longest_chain"`
	ChainP50          int                    `json:"chain_p50"`
	ChainP99          int                    `json:"chain_p99"`
	ChainDistribution util.DistributionStats `json:"chain_distribution"`
}

// NewChainMetadata walks every bucket chain and summarizes their lengths
func NewChainMetadata(buckets []*slot.Slot, count int) ChainMetadata {
	meta := ChainMetadata{}
	if len(buckets) == 0 {
		return meta
	}

	histogram := util.NewHistogram()
	lengths := make([]float64, len(buckets))
	for i, head := range buckets {
		n := 0
		for s := head; s != nil; s = s.Next() {
			n++
		}
		if n == 0 {
			meta.EmptyBuckets++
		}
		if n > meta.LongestChain {
			meta.LongestChain = n
		}
		lengths[i] = float64(n)
		histogram.AddSample(n)
	}

	meta.LoadFactor = float64(count) / float64(len(buckets))
	meta.ChainP50 = histogram.Percentile(50)
	meta.ChainP99 = histogram.Percentile(99)
	meta.ChainDistribution = util.NewDistributionStats(lengths)
	return meta
}
