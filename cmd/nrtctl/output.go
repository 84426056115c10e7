package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/nrtkit/memsys"
)

// numbers groups digits in counters ("1,048,576").
var numbers = message.NewPrinter(language.English)

// printInfo prints an info message unless quiet or emitting JSON
func printInfo(format string, args ...any) {
	if !quiet && !jsonOut {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet && !jsonOut {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatCount(n uint64) string {
	return numbers.Sprintf("%d", n)
}

func printStats(st memsys.Stats) {
	printInfo("Blocks:\n")
	printInfo("  Allocated:  %s\n", formatCount(st.Alloc))
	printInfo("  Freed:      %s\n", formatCount(st.Free))
	printInfo("  Live:       %s\n", formatCount(st.LiveBlocks()))
	printInfo("Records:\n")
	printInfo("  Allocated:  %s\n", formatCount(st.RecordAlloc))
	printInfo("  Freed:      %s\n", formatCount(st.RecordFree))
	printInfo("  Live:       %s\n", formatCount(st.LiveRecords()))
}
