package heap

import (
	"fmt"
	"os"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugAlloc = false

// Runtime flag for allocation logging - controlled by HEAPKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAPKIT_LOG_ALLOC") != ""

// Stats holds the allocator's operation counters.
type Stats struct {
	AllocCalls     int   // Total Alloc() calls
	AllocFastPath  int   // Allocations satisfied from the free index
	AllocSlowPath  int   // Allocations that required growing the heap
	FreeCalls      int   // Total Free() calls
	ReallocCalls   int   // Total Realloc() calls
	ReallocInPlace int   // Reallocs satisfied without the copy fallback
	GrowCalls      int   // Heap extensions
	GrowWords      int64 // Total words added by extensions
	SplitCount     int   // Placements that split off a remainder
	AbsorbCount    int   // Placements that absorbed a small remainder
	CoalesceNext   int   // Merges with the following block only
	CoalescePrev   int   // Merges with the preceding block only
	CoalesceBoth   int   // Three-way merges
}

// debugLogf prints debug messages when allocation logging is enabled.
func debugLogf(format string, args ...any) {
	if debugAlloc || logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] "+format+"\n", args...)
	}
}
