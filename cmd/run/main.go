package main

import "github.com/zintix-labs/smoothlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeBench, cfg.pprofmode)
}
