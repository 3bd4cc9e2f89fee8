// Command gochess is a UCI chess engine. Run with no arguments to start the
// UCI loop on stdin/stdout, or "bench [depth [threads]]" to run the fixed
// benchmark suite and exit.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/maxflowmincut/FlareChessEngine/internal/engine"
	"github.com/maxflowmincut/FlareChessEngine/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "bench" {
		runBench(args[1:])
		return
	}

	eng := engine.NewEngine(64)
	protocol := uci.New(eng)
	protocol.Run()
}
