/*
 * Test helper functions
 */

package dosmux

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeFile is an OpenFile whose seeks work on an in-memory size
type fakeFile struct {
	name   string
	flags  uint8
	attr   uint8
	drive  uint8
	time   uint16
	date   uint16
	size   uint32
	pos    uint32
	device bool
	info   uint16
	refs   uint8
	seeks  int
}

func (f *fakeFile) RefCount() uint8     { return f.refs }
func (f *fakeFile) Flags() uint8        { return f.flags }
func (f *fakeFile) Attr() uint8         { return f.attr }
func (f *fakeFile) Time() uint16        { return f.time }
func (f *fakeFile) Date() uint16        { return f.date }
func (f *fakeFile) Drive() uint8        { return f.drive }
func (f *fakeFile) Name() string        { return f.name }
func (f *fakeFile) Information() uint16 { return f.info }
func (f *fakeFile) IsDevice() bool      { return f.device }
func (f *fakeFile) Close() error        { return nil }

func (f *fakeFile) Seek(pos uint32, whence int) (uint32, error) {
	f.seeks++
	switch whence {
	case io.SeekStart:
		f.pos = pos
	case io.SeekCurrent:
		f.pos += pos
	case io.SeekEnd:
		f.pos = f.size + pos
	default:
		return 0, fmt.Errorf("bad whence: %d", whence)
	}
	return f.pos, nil
}

type testEnv struct {
	d      *Dispatcher
	mem    *RAM
	files  *HandleTable
	cb     *CallbackTable
	tables *Tables
	logs   *observer.ObservedLogs
}

const (
	testSFTSeg   = 0x0100
	testMaxFiles = 20
)

// newTestEnv returns a Dispatcher with an SFT at 0100:0000 whose area
// is filled with 0xAA so untouched bytes can be spotted
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	env := &testEnv{
		mem:   NewRAM(),
		files: NewHandleTable(testMaxFiles),
		cb:    NewCallbackTable(),
		tables: &Tables{
			InfoBlockPt: RealMake(0x0080, 0x0026),
			DPBSeg:      0x00c8,
		},
		logs: logs,
	}
	env.mem.WriteD(Real2Phys(env.tables.InfoBlockPt)+4, uint32(RealMake(testSFTSeg, 0)))
	base := Real2Phys(RealMake(testSFTSeg, 0))
	for i := PhysPt(0); i < sftHeaderSize+sftFastHandles*sftEntrySize; i++ {
		env.mem.WriteB(base+i, 0xaa)
	}
	env.d = NewDispatcher(DispatcherConfig{
		Mem:       env.mem,
		Files:     env.files,
		Callbacks: env.cb,
		Tables:    env.tables,
		MaxFiles:  testMaxFiles,
		Log:       zap.New(core),
	})
	return env
}

func (e *testEnv) entry(n uint16) []byte {
	base := Real2Phys(RealMake(testSFTSeg, 0)) + PhysPt(sftEntryOffset(n))
	return e.mem.Slice(base, sftEntrySize)
}

func (e *testEnv) install(t *testing.T, f OpenFile) uint16 {
	t.Helper()
	h, err := e.files.Install(f)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func checkRegs(t *testing.T, got Registers, want Registers) {
	t.Helper()
	if got != want {
		t.Errorf("registers - got: %s, want: %s", &got, &want)
	}
}

func checkBytes(t *testing.T, what string, got []byte, want []byte) {
	t.Helper()
	if !bytes.Equal(got, want) {
		t.Errorf("%s - got: % X, want: % X", what, got, want)
	}
}
