package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heapkit/heapkit/heap"
	"github.com/heapkit/heapkit/mem"
)

var (
	replayArenaCap int
	replayMmap     bool
	replayCheck    bool
	replayExact    bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().IntVar(&replayArenaCap, "arena-cap", 1<<28, "Arena capacity in bytes")
	cmd.Flags().BoolVar(&replayMmap, "mmap", false, "Back the arena with a reserved mapping")
	cmd.Flags().BoolVar(&replayCheck, "check", false, "Validate heap invariants after every operation")
	cmd.Flags().BoolVar(&replayExact, "exact", false, "Disable the workload size remap")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against a fresh heap",
		Long: `The replay command executes a trace file against a new allocator and
reports operation counts, heap growth, and utilization.

Trace files are line oriented; '#' starts a comment:

  a <id> <size>   allocate <size> bytes as block <id>
  r <id> <size>   resize block <id> to <size> bytes
  f <id>          free block <id>

Example:
  heapctl replay workload.rep
  heapctl replay workload.rep --check --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args[0])
		},
	}
}

// traceOp is one parsed trace line.
type traceOp struct {
	kind byte // 'a', 'r' or 'f'
	id   int
	size int
}

// parseTrace reads the line-oriented trace format.
func parseTrace(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		op := traceOp{kind: fields[0][0]}
		switch {
		case (fields[0] == "a" || fields[0] == "r") && len(fields) == 3:
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad id %q", lineNo, fields[1])
			}
			size, err := strconv.Atoi(fields[2])
			if err != nil || size < 0 {
				return nil, fmt.Errorf("line %d: bad size %q", lineNo, fields[2])
			}
			op.id, op.size = id, size
		case fields[0] == "f" && len(fields) == 2:
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad id %q", lineNo, fields[1])
			}
			op.id = id
		default:
			return nil, fmt.Errorf("line %d: unrecognized operation %q", lineNo, line)
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// replayReport is the replay summary, also used for --json output.
type replayReport struct {
	Trace       string     `json:"trace"`
	Ops         int        `json:"ops"`
	LiveBlocks  int        `json:"live_blocks"`
	LiveBytes   int64      `json:"live_bytes"`
	HeapBytes   int        `json:"heap_bytes"`
	Utilization float64    `json:"utilization"`
	Stats       heap.Stats `json:"stats"`
}

func runReplay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ops, err := parseTrace(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	var arena mem.Arena
	if replayMmap {
		ma, merr := mem.NewMmap(replayArenaCap)
		if merr != nil {
			return merr
		}
		defer ma.Close()
		arena = ma
	} else {
		arena = mem.NewSlice(replayArenaCap)
	}

	cfg := &heap.DefaultConfig
	if replayExact {
		cfg = &heap.ConfigExact
	}
	h, err := heap.New(arena, cfg)
	if err != nil {
		return err
	}

	report, err := runOps(h, ops)
	if err != nil {
		return err
	}
	report.Trace = path

	if jsonOut {
		return printJSON(report)
	}
	printInfo("replayed %d ops from %s\n", report.Ops, path)
	printInfo("  live:        %d blocks, %d bytes\n", report.LiveBlocks, report.LiveBytes)
	printInfo("  heap:        %d bytes (%d grows)\n", report.HeapBytes, report.Stats.GrowCalls)
	printInfo("  utilization: %.1f%%\n", report.Utilization*100)
	printInfo("  splits=%d absorbs=%d coalesce(next/prev/both)=%d/%d/%d\n",
		report.Stats.SplitCount, report.Stats.AbsorbCount,
		report.Stats.CoalesceNext, report.Stats.CoalescePrev, report.Stats.CoalesceBoth)
	return nil
}

// runOps executes the trace against h, tracking live blocks by id.
func runOps(h *heap.Heap, ops []traceOp) (*replayReport, error) {
	type live struct {
		ref  heap.Ref
		size int
	}
	blocks := make(map[int]live)

	for i, op := range ops {
		switch op.kind {
		case 'a':
			if _, exists := blocks[op.id]; exists {
				return nil, fmt.Errorf("op %d: block %d already allocated", i, op.id)
			}
			ref, _, err := h.Alloc(op.size)
			if err != nil {
				return nil, fmt.Errorf("op %d: alloc %d bytes: %w", i, op.size, err)
			}
			blocks[op.id] = live{ref, op.size}
			printVerbose("a %d %d -> ref %d\n", op.id, op.size, ref)

		case 'r':
			b, exists := blocks[op.id]
			if !exists {
				return nil, fmt.Errorf("op %d: resize of unknown block %d", i, op.id)
			}
			ref, _, err := h.Realloc(b.ref, op.size)
			if err != nil {
				return nil, fmt.Errorf("op %d: realloc block %d to %d bytes: %w", i, op.id, op.size, err)
			}
			if op.size == 0 {
				delete(blocks, op.id)
			} else {
				blocks[op.id] = live{ref, op.size}
			}
			printVerbose("r %d %d -> ref %d\n", op.id, op.size, ref)

		case 'f':
			b, exists := blocks[op.id]
			if !exists {
				return nil, fmt.Errorf("op %d: free of unknown block %d", i, op.id)
			}
			if err := h.Free(b.ref); err != nil {
				return nil, fmt.Errorf("op %d: free block %d: %w", i, op.id, err)
			}
			delete(blocks, op.id)
			printVerbose("f %d\n", op.id)
		}

		if replayCheck {
			if err := h.Check(false); err != nil {
				return nil, fmt.Errorf("op %d: %w", i, err)
			}
		}
	}

	var liveBytes int64
	for _, b := range blocks {
		liveBytes += int64(b.size)
	}
	report := &replayReport{
		Ops:        len(ops),
		LiveBlocks: len(blocks),
		LiveBytes:  liveBytes,
		HeapBytes:  h.Size(),
		Stats:      h.Stats(),
	}
	if report.HeapBytes > 0 {
		report.Utilization = float64(liveBytes) / float64(report.HeapBytes)
	}
	return report, nil
}
