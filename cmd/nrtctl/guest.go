package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/joshuapare/nrtkit/abi"
)

var guestSize int

// Guest memory offsets used for the payload round trip.
const (
	guestSrc     = 0
	guestDst     = 1024
	guestMessage = "hello from nrtctl"
)

func init() {
	cmd := newGuestCmd()
	cmd.Flags().IntVar(&guestSize, "size", 64, "Payload size of the record")
	rootCmd.AddCommand(cmd)
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Drive a record through the WebAssembly host entry points",
		Long: `The guest command registers the "nrt" host module in an in-process
WebAssembly runtime and calls its exports the way compiled code would:
allocate, acquire, copy bytes in and out through guest memory, release
twice, then read the counters.

Example:
  nrtctl guest
  nrtctl guest --size 4096 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGuest(cmd.Context())
		},
	}
}

// GuestCall records one host function invocation.
type GuestCall struct {
	Name    string   `json:"name"`
	Params  []uint64 `json:"params"`
	Results []uint64 `json:"results"`
}

func runGuest(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if guestSize < 0 {
		return fmt.Errorf("size must be non-negative")
	}
	sys, err := newSystem(atomicsHardware, allocatorGo)
	if err != nil {
		return err
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := abi.NewHostModule(sys).Instantiate(ctx, rt); err != nil {
		return err
	}
	guest, err := rt.Instantiate(ctx, abi.ProxyModule())
	if err != nil {
		return fmt.Errorf("instantiate guest: %w", err)
	}

	var calls []GuestCall
	call := func(name string, params ...uint64) ([]uint64, error) {
		fn := guest.ExportedFunction(name)
		if fn == nil {
			return nil, fmt.Errorf("guest does not export %s", name)
		}
		res, err := fn.Call(ctx, params...)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", name, err)
		}
		calls = append(calls, GuestCall{Name: name, Params: params, Results: res})
		printVerbose("%s%v -> %v\n", name, params, res)
		return res, nil
	}

	res, err := call("record_alloc", api.EncodeI64(int64(guestSize)))
	if err != nil {
		return err
	}
	h := res[0]
	if h == 0 {
		return fmt.Errorf("record_alloc(%d) failed", guestSize)
	}

	msg := []byte(guestMessage)[:min(len(guestMessage), guestSize)]
	n := api.EncodeU32(uint32(len(msg)))
	if !guest.Memory().Write(guestSrc, msg) {
		return fmt.Errorf("guest memory too small")
	}

	steps := []struct {
		name   string
		params []uint64
	}{
		{"record_refcount", []uint64{h}},
		{"record_acquire", []uint64{h}},
		{"record_refcount", []uint64{h}},
		{"record_write", []uint64{h, 0, api.EncodeU32(guestSrc), n}},
		{"record_read", []uint64{h, 0, api.EncodeU32(guestDst), n}},
		{"record_release", []uint64{h}},
		{"record_release", []uint64{h}},
		{"memsys_stats_record_alloc", nil},
		{"memsys_stats_record_free", nil},
	}
	for _, s := range steps {
		if _, err := call(s.name, s.params...); err != nil {
			return err
		}
	}

	back, ok := guest.Memory().Read(guestDst, uint32(len(msg)))
	if !ok || string(back) != string(msg) {
		return fmt.Errorf("payload round trip returned %q, want %q", back, msg)
	}

	if jsonOut {
		return printJSON(calls)
	}
	for _, c := range calls {
		printInfo("%-28s %v -> %v\n", c.Name, c.Params, c.Results)
	}
	st := sys.Stats()
	if !st.Balanced() {
		return fmt.Errorf("guest round trip left %d live records", st.LiveRecords())
	}
	return nil
}
