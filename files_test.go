package dosmux

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHandleTable_Install(t *testing.T) {
	ht := NewHandleTable(3)
	for want := uint16(0); want < 3; want++ {
		got, err := ht.Install(NewDeviceFile("NUL", DevInfoNul))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Install - got: %d, want: %d", got, want)
		}
	}
	if _, err := ht.Install(NewDeviceFile("NUL", DevInfoNul)); !errors.Is(err, ErrNoHandles) {
		t.Errorf("Install - got: %v, want: %v", err, ErrNoHandles)
	}

	if err := ht.Close(1); err != nil {
		t.Fatal(err)
	}
	if f := ht.File(1); f != nil {
		t.Errorf("File(1) after Close - got: %v, want: nil", f)
	}
	got, err := ht.Install(NewDeviceFile("PRN", 0))
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("Install reuse - got: %d, want: 1", got)
	}
	if ht.Len() != 3 {
		t.Errorf("Len - got: %d, want: 3", ht.Len())
	}
}

func TestHandleTable_File_outOfRange(t *testing.T) {
	ht := NewHandleTable(2)
	if f := ht.File(2); f != nil {
		t.Errorf("File(2) - got: %v, want: nil", f)
	}
	if err := ht.Close(0); err == nil {
		t.Errorf("Close unopened - got: nil error, want: error")
	}
}

func TestHandleTable_CloseAll(t *testing.T) {
	ht := NewHandleTable(4)
	files := []*fakeFile{{name: "A"}, {name: "B"}}
	for _, f := range files {
		ht.Install(f)
	}
	if err := ht.CloseAll(); err != nil {
		t.Fatal(err)
	}
	for i := uint16(0); i < 4; i++ {
		if f := ht.File(i); f != nil {
			t.Errorf("File(%d) after CloseAll - got: %v, want: nil", i, f)
		}
	}
}

func TestPackDOSTime(t *testing.T) {
	cases := []struct {
		in       time.Time
		wantTime uint16
		wantDate uint16
	}{
		{time.Date(2023, 6, 15, 13, 45, 30, 0, time.UTC), 28079, 22223},
		{time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 0, 0x21},
		{time.Date(1975, 3, 2, 10, 0, 0, 0, time.UTC), 0, 0x21},
		{time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), 0xbf7d, 0x279f},
	}
	for _, c := range cases {
		gotTime, gotDate := PackDOSTime(c.in)
		if gotTime != c.wantTime || gotDate != c.wantDate {
			t.Errorf("PackDOSTime(%s) - got: %04X %04X, want: %04X %04X",
				c.in, gotTime, gotDate, c.wantTime, c.wantDate)
		}
	}
}

func TestOpenHostFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "save.dat")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := OpenHostFile(path, `C:\GAMES\SAVE.DAT`, OpenReadWrite, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.Name() != `C:\GAMES\SAVE.DAT` {
		t.Errorf("Name - got: %s, want: C:\\GAMES\\SAVE.DAT", f.Name())
	}
	if f.Attr() != AttrArchive {
		t.Errorf("Attr - got: %02X, want: %02X", f.Attr(), AttrArchive)
	}
	if f.Drive() != 2 || f.Information() != 2 {
		t.Errorf("Drive, Information - got: %d, %d, want: 2, 2",
			f.Drive(), f.Information())
	}
	if f.IsDevice() {
		t.Errorf("IsDevice - got: true, want: false")
	}
	if f.Flags() != OpenReadWrite {
		t.Errorf("Flags - got: %d, want: %d", f.Flags(), OpenReadWrite)
	}

	if pos, err := f.Seek(4, io.SeekStart); err != nil || pos != 4 {
		t.Errorf("Seek start - got: %d, %v, want: 4, nil", pos, err)
	}
	if pos, err := f.Seek(0, io.SeekEnd); err != nil || pos != 10 {
		t.Errorf("Seek end - got: %d, %v, want: 10, nil", pos, err)
	}
}

func TestOpenHostFile_readOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readme.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o444); err != nil {
		t.Fatal(err)
	}
	f, err := OpenHostFile(path, "README.TXT", OpenRead, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	want := uint8(AttrArchive | AttrReadOnly)
	if f.Attr() != want {
		t.Errorf("Attr - got: %02X, want: %02X", f.Attr(), want)
	}
}

func TestOpenHostFile_missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.dat")
	if _, err := OpenHostFile(path, "MISSING.DAT", OpenRead, 2); err == nil {
		t.Errorf("OpenHostFile - got: nil error, want: error")
	}
}

func TestDeviceFile(t *testing.T) {
	d := NewDeviceFile("CON", DevInfoStdin|DevInfoStdout)
	if d.Information() != 0x83 {
		t.Errorf("Information - got: %04X, want: 0083", d.Information())
	}
	if !d.IsDevice() || d.Drive() != 0xff {
		t.Errorf("IsDevice, Drive - got: %t, %02X, want: true, FF",
			d.IsDevice(), d.Drive())
	}
	if pos, err := d.Seek(100, io.SeekEnd); err != nil || pos != 0 {
		t.Errorf("Seek - got: %d, %v, want: 0, nil", pos, err)
	}
	if _, err := d.Seek(0, 7); err == nil {
		t.Errorf("Seek bad whence - got: nil error, want: error")
	}
}
