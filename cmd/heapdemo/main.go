// Command heapdemo drives a blockheap.Heap from a simple trace format, one
// operation per line, and prints the result of each. It exists for manual
// poking and for reproducing a failing trace outside of `go test`.
//
// Trace lines:
//
//	alloc <name> <size>   allocate size bytes, bind the address to name and print it
//	free <name>           free the block bound to name
//	realloc <name> <size> resize the block bound to name and print its new address
//	check                 run CheckHeap and print any violations
//	dump                  print one line per block in the chain
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"blockheap"
)

func main() {
	capacity := flag.Int64("capacity", 1<<24, "heap capacity in bytes")
	tracePath := flag.String("trace", "", "path to a trace file; defaults to stdin")
	flag.Parse()

	h := blockheap.NewInMemory(*capacity)
	if err := h.Init(); err != nil {
		log.Fatalf("init: %v", err)
	}

	in := os.Stdin
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			log.Fatalf("open trace: %v", err)
		}
		defer f.Close()
		in = f
	}

	addrs := map[string]uint64{}
	scanner := bufio.NewScanner(in)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if err := run(h, addrs, fields); err != nil {
			fmt.Printf("line %d: %v\n", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read trace: %v", err)
	}
}

func run(h *blockheap.Heap, addrs map[string]uint64, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "alloc":
		if len(fields) != 3 {
			return fmt.Errorf("alloc <name> <size>")
		}
		size, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return err
		}
		addr, err := h.Allocate(size)
		if err != nil {
			return err
		}
		addrs[fields[1]] = addr
		fmt.Printf("%s = %d\n", fields[1], addr)

	case "free":
		if len(fields) != 2 {
			return fmt.Errorf("free <name>")
		}
		addr, ok := addrs[fields[1]]
		if !ok {
			return fmt.Errorf("unknown name %q", fields[1])
		}
		if err := h.Free(addr); err != nil {
			return err
		}
		delete(addrs, fields[1])

	case "realloc":
		if len(fields) != 3 {
			return fmt.Errorf("realloc <name> <size>")
		}
		addr, ok := addrs[fields[1]]
		if !ok {
			return fmt.Errorf("unknown name %q", fields[1])
		}
		size, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return err
		}
		newAddr, err := h.Reallocate(addr, size)
		if err != nil {
			return err
		}
		addrs[fields[1]] = newAddr
		fmt.Printf("%s = %d\n", fields[1], newAddr)

	case "check":
		violations := h.CheckHeap(nil)
		if len(violations) == 0 {
			fmt.Println("heap is consistent")
			break
		}
		for _, v := range violations {
			fmt.Println(v)
		}

	case "dump":
		h.CheckHeap(os.Stdout)

	default:
		return fmt.Errorf("unknown operation %q", fields[0])
	}
	return nil
}
