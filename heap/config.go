package heap

import (
	"fmt"

	"github.com/heapkit/heapkit/internal/word"
)

// Config defines the allocator's layout and search strategy.
// Different configurations trade fragmentation against search time.
type Config struct {
	// Name for this configuration (for benchmarking and logs)
	Name string

	// Alignment is the payload alignment in bytes. Power of two,
	// at least two words.
	Alignment int

	// MinBlockWords is the minimum total block size in words. Must be
	// large enough for header, footer and the two free-list links, and
	// a multiple of the alignment in words.
	MinBlockWords int

	// ChunkWords is the minimum heap extension in words.
	ChunkWords int

	// ScanLimit caps how many entries of one size class are examined
	// before falling through to the next class.
	ScanLimit int

	// ClassBounds are the inclusive upper bounds (total block words)
	// of each size class, ascending. A final catch-all class is
	// implied for larger blocks.
	ClassBounds []int

	// RoundSizes remaps specific request sizes (pre-overhead, bytes)
	// before adjustment. Used for workload-specific fragmentation
	// tuning; leave nil for exact sizing.
	RoundSizes map[int]int
}

// Predefined configurations.
var (
	// DefaultConfig matches the reference workload tuning, including
	// the 112→128 and 448→512 request remap.
	DefaultConfig = Config{
		Name:          "Default",
		Alignment:     16,
		MinBlockWords: 8,
		ChunkWords:    128,
		ScanLimit:     5,
		ClassBounds:   []int{128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768},
		RoundSizes:    map[int]int{112: 128, 448: 512},
	}

	// ConfigExact is DefaultConfig without the request remap, for
	// callers that need exact size accounting.
	ConfigExact = Config{
		Name:          "Exact",
		Alignment:     16,
		MinBlockWords: 8,
		ChunkWords:    128,
		ScanLimit:     5,
		ClassBounds:   []int{128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768},
	}
)

// validate checks structural constraints the block layout depends on.
func (c *Config) validate() error {
	if !word.IsPow2(c.Alignment) {
		return fmt.Errorf("heap: alignment %d is not a power of two", c.Alignment)
	}
	if c.Alignment < 2*word.Size {
		return fmt.Errorf("heap: alignment %d below minimum %d", c.Alignment, 2*word.Size)
	}

	alignWords := c.Alignment / word.Size

	// header + footer + two links
	if c.MinBlockWords < 4 {
		return fmt.Errorf("heap: min block %d words cannot hold tags and links", c.MinBlockWords)
	}
	if c.MinBlockWords%alignWords != 0 {
		return fmt.Errorf(
			"heap: min block %d words not a multiple of alignment (%d words)",
			c.MinBlockWords, alignWords,
		)
	}
	if c.ChunkWords < c.MinBlockWords {
		return fmt.Errorf("heap: chunk %d words below min block %d", c.ChunkWords, c.MinBlockWords)
	}
	if c.ChunkWords%alignWords != 0 {
		return fmt.Errorf(
			"heap: chunk %d words not a multiple of alignment (%d words)",
			c.ChunkWords, alignWords,
		)
	}
	if c.ScanLimit < 1 {
		return fmt.Errorf("heap: scan limit %d must be positive", c.ScanLimit)
	}
	if len(c.ClassBounds) == 0 {
		return fmt.Errorf("heap: no size classes configured")
	}
	for i := 1; i < len(c.ClassBounds); i++ {
		if c.ClassBounds[i] <= c.ClassBounds[i-1] {
			return fmt.Errorf(
				"heap: class bounds not ascending at index %d (%d after %d)",
				i, c.ClassBounds[i], c.ClassBounds[i-1],
			)
		}
	}
	return nil
}

// String returns the configuration name.
func (c *Config) String() string {
	return c.Name
}
