// Command nrtctl drives the allocation-record runtime from the command line.
package main

func main() {
	execute()
}
