// Command vmsim replays a trace of virtual addresses through a simulated MMU
// and reports where every address lands in physical memory.
package main

func main() {
	Execute()
}
