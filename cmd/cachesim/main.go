// The cachesim command simulates a set-associative cache over a scripted
// sequence of reads and writes and prints one trace record per access.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

var (
	addressWidth  int
	cacheSize     uint64
	blockSize     uint64
	associativity int
	writeThrough  bool
	scriptPath    string
	dbPath        string
)

// referenceTrace is the demo sequence the simulator runs when no script is
// given.
var referenceTrace = []sim.Op{
	{Kind: sim.ReadOp, Addr: 0},
	{Kind: sim.ReadOp, Addr: 32},
	{Kind: sim.ReadOp, Addr: 1024},
	{Kind: sim.WriteOp, Addr: 1024, Word: 4},
	{Kind: sim.ReadOp, Addr: 1024},
	{Kind: sim.WriteOp, Addr: 32, Word: 12},
	{Kind: sim.ReadOp, Addr: 32},
}

var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "cachesim traces what a set-associative cache does for a sequence of loads and stores.",
	Long: `cachesim models a set-associative cache in front of a byte-addressable ` +
		`memory and traces every access: hit or miss, LRU eviction, dirty-bit ` +
		`tracking, and write-back or write-through stores. Without a script it ` +
		`replays the built-in reference trace.`,
	RunE: run,
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	builder := sim.MakeBuilder().
		WithAddressWidth(addressWidth).
		WithCacheSize(cacheSize).
		WithBlockSize(blockSize).
		WithWayAssociativity(associativity).
		WithTracer(trace.NewLogTracer(log.New(os.Stdout, "", 0)))

	if writeThrough {
		builder = builder.WithWriteThrough()
	}

	if dbPath != "" {
		recorder := trace.NewRecorder(dbPath)
		defer recorder.Close()

		builder = builder.WithTracer(trace.NewDBTracer(recorder))
	}

	simulator, err := builder.Build()
	if err != nil {
		return err
	}

	ops := referenceTrace
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return err
		}
		defer f.Close()

		ops, err = sim.ParseScript(f)
		if err != nil {
			return fmt.Errorf("%s: %w", scriptPath, err)
		}
	}

	return simulator.Run(ops)
}

func main() {
	rootCmd.Flags().IntVar(&addressWidth, "address-width", 16,
		"width of memory addresses in bits")
	rootCmd.Flags().Uint64Var(&cacheSize, "cache-size", 1024,
		"total cache capacity in bits")
	rootCmd.Flags().Uint64Var(&blockSize, "block-size", 64,
		"cache block size in bits")
	rootCmd.Flags().IntVar(&associativity, "associativity", 1,
		"number of blocks per set")
	rootCmd.Flags().BoolVar(&writeThrough, "write-through", false,
		"store to memory on every write instead of deferring to eviction")
	rootCmd.Flags().StringVar(&scriptPath, "script", "",
		"trace script to replay (r <addr> / w <addr> <word> per line)")
	rootCmd.Flags().StringVar(&dbPath, "db", "",
		"also record accesses into <path>.sqlite3")

	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
