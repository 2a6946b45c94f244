// Command volinfo inspects a volume dataset: sample format, value
// range, bricks per resolution level and storage footprint.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	units "github.com/docker/go-units"

	"github.com/gogpu/volren"
	"github.com/gogpu/volren/volume"
	_ "github.com/gogpu/volren/volume/rawvol"
)

func main() {
	var (
		verbose = flag.Bool("v", false, "enable debug logging")
		bricks  = flag.Bool("bricks", false, "list every brick")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: volinfo [-v] [-bricks] <dataset>\n")
		os.Exit(2)
	}
	if *verbose {
		volren.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ds, err := volume.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer ds.Close()

	min, max := ds.Range()
	fmt.Printf("file:       %s\n", ds.Filename())
	fmt.Printf("samples:    %d bit x %d component(s)\n", ds.BitWidth(), ds.ComponentCount())
	fmt.Printf("range:      [%g, %g]\n", min, max)
	fmt.Printf("byte order: host=%v\n", ds.SameEndianness())

	keys := ds.BrickKeys()
	perLOD := map[uint32]int{}
	perLODBytes := map[uint32]uint64{}
	var total uint64
	for _, key := range keys {
		dims, err := ds.BrickVoxelCounts(key)
		if err != nil {
			log.Fatalf("brick %v: %v", key, err)
		}
		n := dims.Bytes(ds.BitWidth(), ds.ComponentCount())
		perLOD[key.LOD]++
		perLODBytes[key.LOD] += n
		total += n
		if *bricks {
			fmt.Printf("  brick %-12s %-12s %s\n", key, dims, units.HumanSize(float64(n)))
		}
	}

	lods := make([]uint32, 0, len(perLOD))
	for lod := range perLOD {
		lods = append(lods, lod)
	}
	sort.Slice(lods, func(i, j int) bool { return lods[i] < lods[j] })

	fmt.Printf("bricks:     %d in %d level(s)\n", len(keys), len(lods))
	for _, lod := range lods {
		fmt.Printf("  level %-3d %4d brick(s), %s\n", lod, perLOD[lod], units.HumanSize(float64(perLODBytes[lod])))
	}
	fmt.Printf("raw size:   %s\n", units.HumanSize(float64(total)))
}
