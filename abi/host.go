package abi

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/joshuapare/nrtkit/internal/buf"
	"github.com/joshuapare/nrtkit/internal/logger"
	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
)

// ModuleName is the import module name guests use for the record entry points.
const ModuleName = "nrt"

const failed = ^uint64(0) // -1 as i32/i64

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Signature describes one entry point of the "nrt" module.
type Signature struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Signatures lists every entry point in export order.
var Signatures = []Signature{
	{"record_alloc", []api.ValueType{i64}, []api.ValueType{i64}},
	{"record_alloc_safe", []api.ValueType{i64}, []api.ValueType{i64}},
	{"record_alloc_aligned", []api.ValueType{i64, i32}, []api.ValueType{i64}},
	{"record_alloc_safe_aligned", []api.ValueType{i64, i32}, []api.ValueType{i64}},
	{"record_alloc_varsize", []api.ValueType{i64}, []api.ValueType{i64}},
	{"record_varsize_realloc", []api.ValueType{i64, i64}, []api.ValueType{i32}},
	{"record_acquire", []api.ValueType{i64}, nil},
	{"record_release", []api.ValueType{i64}, []api.ValueType{i32}},
	{"record_size", []api.ValueType{i64}, []api.ValueType{i64}},
	{"record_refcount", []api.ValueType{i64}, []api.ValueType{i64}},
	{"record_read", []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i32}},
	{"record_write", []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i32}},
	{"memsys_stats_alloc", nil, []api.ValueType{i64}},
	{"memsys_stats_free", nil, []api.ValueType{i64}},
	{"memsys_stats_record_alloc", nil, []api.ValueType{i64}},
	{"memsys_stats_record_free", nil, []api.ValueType{i64}},
}

// HostModule binds a System and a handle Table to guest-callable functions.
type HostModule struct {
	sys   *memsys.System
	table *Table
}

// NewHostModule creates a host module over sys.
func NewHostModule(sys *memsys.System) *HostModule {
	return &HostModule{sys: sys, table: NewTable()}
}

// Table returns the handle table.
func (m *HostModule) Table() *Table { return m.table }

// System returns the System records are allocated from.
func (m *HostModule) System() *memsys.System { return m.sys }

// Instantiate registers the "nrt" host module in r. Guests importing it must
// be instantiated afterwards; the host module itself cannot be called from Go.
func (m *HostModule) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	funcs := map[string]api.GoFunction{
		"record_alloc":              api.GoFunc(m.recordAlloc),
		"record_alloc_safe":         api.GoFunc(m.recordAllocSafe),
		"record_alloc_aligned":      api.GoFunc(m.recordAllocAligned),
		"record_alloc_safe_aligned": api.GoFunc(m.recordAllocSafeAligned),
		"record_alloc_varsize":      api.GoFunc(m.recordAllocVarsize),
		"record_varsize_realloc":    api.GoFunc(m.recordVarsizeRealloc),
		"record_acquire":            api.GoFunc(m.recordAcquire),
		"record_release":            api.GoFunc(m.recordRelease),
		"record_size":               api.GoFunc(m.recordSize),
		"record_refcount":           api.GoFunc(m.recordRefcount),
		"memsys_stats_alloc":        m.stat(m.sys.StatsAlloc),
		"memsys_stats_free":         m.stat(m.sys.StatsFree),
		"memsys_stats_record_alloc": m.stat(m.sys.StatsRecordAlloc),
		"memsys_stats_record_free":  m.stat(m.sys.StatsRecordFree),
	}
	modFuncs := map[string]api.GoModuleFunction{
		"record_read":  api.GoModuleFunc(m.recordRead),
		"record_write": api.GoModuleFunc(m.recordWrite),
	}

	builder := r.NewHostModuleBuilder(ModuleName)
	for _, s := range Signatures {
		fb := builder.NewFunctionBuilder()
		if fn, ok := modFuncs[s.Name]; ok {
			fb.WithGoModuleFunction(fn, s.Params, s.Results).Export(s.Name)
			continue
		}
		fn, ok := funcs[s.Name]
		if !ok {
			return nil, fmt.Errorf("no implementation for %s.%s", ModuleName, s.Name)
		}
		fb.WithGoFunction(fn, s.Params, s.Results).Export(s.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s host module: %w", ModuleName, err)
	}
	return mod, nil
}

func (m *HostModule) stat(get func() uint64) api.GoFunction {
	return api.GoFunc(func(_ context.Context, stack []uint64) {
		stack[0] = get()
	})
}

// register turns a constructor result into a handle; 0 on failure.
func (m *HostModule) register(r *meminfo.Record, err error) Handle {
	if err != nil {
		logger.Debug("abi: alloc failed", "err", err)
		return 0
	}
	return m.table.Put(r)
}

// Alloc is record_alloc.
func (m *HostModule) Alloc(size int) Handle {
	return m.register(meminfo.Alloc(m.sys, size))
}

// AllocSafe is record_alloc_safe.
func (m *HostModule) AllocSafe(size int) Handle {
	return m.register(meminfo.AllocSafe(m.sys, size))
}

// AllocAligned is record_alloc_aligned.
func (m *HostModule) AllocAligned(size, align int) Handle {
	return m.register(meminfo.AllocAligned(m.sys, size, align))
}

// AllocSafeAligned is record_alloc_safe_aligned.
func (m *HostModule) AllocSafeAligned(size, align int) Handle {
	return m.register(meminfo.AllocSafeAligned(m.sys, size, align))
}

// AllocVarsize is record_alloc_varsize.
func (m *HostModule) AllocVarsize(size int) Handle {
	return m.register(meminfo.AllocVarsize(m.sys, size))
}

// VarsizeRealloc is record_varsize_realloc.
func (m *HostModule) VarsizeRealloc(h Handle, size int) error {
	return m.table.Do(h, func(r *meminfo.Record) error {
		_, err := r.VarsizeRealloc(size)
		return err
	})
}

// Acquire is record_acquire.
func (m *HostModule) Acquire(h Handle) error {
	return m.table.Do(h, func(r *meminfo.Record) error {
		r.Acquire()
		return nil
	})
}

// Release is record_release.
func (m *HostModule) Release(h Handle) (bool, error) { return m.table.Release(h) }

// Size is record_size.
func (m *HostModule) Size(h Handle) (int, error) {
	var n int
	err := m.table.Do(h, func(r *meminfo.Record) error {
		n = r.Size()
		return nil
	})
	return n, err
}

// Refcount is record_refcount; unknown handles report RefcountUnknown.
func (m *HostModule) Refcount(h Handle) uint64 {
	n := meminfo.RefcountUnknown
	_ = m.table.Do(h, func(r *meminfo.Record) error {
		n = r.Refcount()
		return nil
	})
	return n
}

// Read copies payload bytes [off, off+len(dst)) into dst.
func (m *HostModule) Read(h Handle, off int, dst []byte) (int, error) {
	var n int
	err := m.table.Do(h, func(r *meminfo.Record) error {
		src, err := payloadRange(r, off, len(dst))
		if err != nil {
			return err
		}
		n = copy(dst, src)
		return nil
	})
	return n, err
}

// Write copies src into payload bytes [off, off+len(src)).
func (m *HostModule) Write(h Handle, off int, src []byte) (int, error) {
	var n int
	err := m.table.Do(h, func(r *meminfo.Record) error {
		dst, err := payloadRange(r, off, len(src))
		if err != nil {
			return err
		}
		n = copy(dst, src)
		return nil
	})
	return n, err
}

func payloadRange(r *meminfo.Record, off, n int) ([]byte, error) {
	p, ok := buf.Slice(r.Data(), off, n)
	if !ok {
		return nil, fmt.Errorf("%w: payload [%d:+%d] of %d bytes", ErrOutOfRange, off, n, r.Size())
	}
	return p, nil
}

func (m *HostModule) recordAlloc(_ context.Context, stack []uint64) {
	stack[0] = uint64(m.Alloc(int(int64(stack[0]))))
}

func (m *HostModule) recordAllocSafe(_ context.Context, stack []uint64) {
	stack[0] = uint64(m.AllocSafe(int(int64(stack[0]))))
}

func (m *HostModule) recordAllocAligned(_ context.Context, stack []uint64) {
	stack[0] = uint64(m.AllocAligned(int(int64(stack[0])), int(api.DecodeI32(stack[1]))))
}

func (m *HostModule) recordAllocSafeAligned(_ context.Context, stack []uint64) {
	stack[0] = uint64(m.AllocSafeAligned(int(int64(stack[0])), int(api.DecodeI32(stack[1]))))
}

func (m *HostModule) recordAllocVarsize(_ context.Context, stack []uint64) {
	stack[0] = uint64(m.AllocVarsize(int(int64(stack[0]))))
}

func (m *HostModule) recordVarsizeRealloc(_ context.Context, stack []uint64) {
	if err := m.VarsizeRealloc(Handle(stack[0]), int(int64(stack[1]))); err != nil {
		logger.Debug("abi: varsize realloc failed", "err", err)
		stack[0] = 0
		return
	}
	stack[0] = 1
}

func (m *HostModule) recordAcquire(_ context.Context, stack []uint64) {
	if err := m.Acquire(Handle(stack[0])); err != nil {
		logger.Warn("abi: acquire", "handle", stack[0], "err", err)
	}
}

func (m *HostModule) recordRelease(_ context.Context, stack []uint64) {
	destroyed, err := m.Release(Handle(stack[0]))
	if err != nil {
		logger.Warn("abi: release", "handle", stack[0], "err", err)
	}
	stack[0] = 0
	if destroyed {
		stack[0] = 1
	}
}

func (m *HostModule) recordSize(_ context.Context, stack []uint64) {
	n, err := m.Size(Handle(stack[0]))
	if err != nil {
		stack[0] = failed
		return
	}
	stack[0] = uint64(n)
}

func (m *HostModule) recordRefcount(_ context.Context, stack []uint64) {
	stack[0] = m.Refcount(Handle(stack[0]))
}

func (m *HostModule) recordRead(_ context.Context, mod api.Module, stack []uint64) {
	m.copyGuest(mod, stack, false)
}

func (m *HostModule) recordWrite(_ context.Context, mod api.Module, stack []uint64) {
	m.copyGuest(mod, stack, true)
}

// copyGuest moves bytes between a payload and the calling module's memory.
// stack: handle, payload offset, guest pointer, length.
func (m *HostModule) copyGuest(mod api.Module, stack []uint64, toPayload bool) {
	h, off := Handle(stack[0]), int(int64(stack[1]))
	ptr, n := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])

	mem := mod.Memory()
	if mem == nil {
		stack[0] = api.EncodeI32(-1)
		return
	}
	guest, ok := mem.Read(ptr, n)
	if !ok {
		stack[0] = api.EncodeI32(-1)
		return
	}

	var (
		copied int
		err    error
	)
	if toPayload {
		copied, err = m.Write(h, off, guest)
	} else {
		copied, err = m.Read(h, off, guest)
	}
	if err != nil {
		logger.Debug("abi: guest copy failed", "handle", uint64(h), "err", err)
		stack[0] = api.EncodeI32(-1)
		return
	}
	stack[0] = api.EncodeI32(int32(copied))
}
