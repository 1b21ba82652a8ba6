/*
 * Open file handles
 *
 * The multiplex handler only reads file state, through OpenFile.
 * HandleTable, HostFile and DeviceFile are simple implementations used
 * by Machine.
 *
 * Copyright (C) 2023 Lawrence Woodman <lwoodman@vlifesystems.com>
 *
 * Licensed under an MIT licence.  Please see LICENCE.md for details.
 */

package dosmux

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// DOS open modes (low two bits of the open flags)
const (
	OpenRead      = 0x00
	OpenWrite     = 0x01
	OpenReadWrite = 0x02
)

// DOS file attributes
const (
	AttrReadOnly = 0x01
	AttrHidden   = 0x02
	AttrSystem   = 0x04
	AttrArchive  = 0x20
)

// Device information word bits
const (
	DevInfoDevice = 0x0080
	DevInfoStdin  = 0x0001
	DevInfoStdout = 0x0002
	DevInfoNul    = 0x0004
)

type OpenFile interface {
	RefCount() uint8
	Flags() uint8
	Attr() uint8
	Time() uint16
	Date() uint16
	Drive() uint8
	// Name is the name the file was opened with, possibly including a
	// drive and directories
	Name() string
	// Information returns the DOS device information word
	Information() uint16
	IsDevice() bool
	// Seek moves to pos relative to whence (io.SeekStart, io.SeekCurrent
	// or io.SeekEnd) and returns the new position
	Seek(pos uint32, whence int) (uint32, error)
	Close() error
}

// FileTable is the guest's table of open files, indexed by handle
type FileTable interface {
	// File returns nil if handle is not open
	File(handle uint16) OpenFile
	Len() int
}

var ErrNoHandles = errors.New("too many open files")

type HandleTable struct {
	files []OpenFile
}

func NewHandleTable(n int) *HandleTable {
	return &HandleTable{files: make([]OpenFile, n)}
}

// Install puts f in the first free slot and returns its handle
func (t *HandleTable) Install(f OpenFile) (uint16, error) {
	for i, e := range t.files {
		if e == nil {
			t.files[i] = f
			return uint16(i), nil
		}
	}
	return 0, ErrNoHandles
}

func (t *HandleTable) File(handle uint16) OpenFile {
	if int(handle) >= len(t.files) {
		return nil
	}
	return t.files[handle]
}

func (t *HandleTable) Len() int {
	return len(t.files)
}

// Close closes the file at handle and frees its slot
func (t *HandleTable) Close(handle uint16) error {
	f := t.File(handle)
	if f == nil {
		return fmt.Errorf("handle %d not open", handle)
	}
	t.files[handle] = nil
	return f.Close()
}

// CloseAll closes every open handle and returns the first error
func (t *HandleTable) CloseAll() error {
	var firstErr error
	for i := range t.files {
		if t.files[i] == nil {
			continue
		}
		if err := t.Close(uint16(i)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HostFile is a guest file backed by a host file
type HostFile struct {
	f     *os.File
	name  string
	flags uint8
	attr  uint8
	drive uint8
	time  uint16
	date  uint16
}

// OpenHostFile opens path with the DOS open mode in flags.  name is what
// the guest sees, e.g. C:\GAMES\SAVE.DAT, and drive is 0 for A:.
func OpenHostFile(path string, name string, flags uint8, drive uint8) (*HostFile, error) {
	var osFlag int
	switch flags & 3 {
	case OpenRead:
		osFlag = os.O_RDONLY
	case OpenWrite:
		osFlag = os.O_WRONLY
	default:
		osFlag = os.O_RDWR
	}
	f, err := os.OpenFile(path, osFlag, 0)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	attr := uint8(AttrArchive)
	if fi.Mode().Perm()&0o222 == 0 {
		attr |= AttrReadOnly
	}
	t, d := PackDOSTime(fi.ModTime())
	return &HostFile{f: f, name: name, flags: flags, attr: attr, drive: drive,
		time: t, date: d}, nil
}

func (h *HostFile) RefCount() uint8     { return 1 }
func (h *HostFile) Flags() uint8        { return h.flags }
func (h *HostFile) Attr() uint8         { return h.attr }
func (h *HostFile) Time() uint16        { return h.time }
func (h *HostFile) Date() uint16        { return h.date }
func (h *HostFile) Drive() uint8        { return h.drive }
func (h *HostFile) Name() string        { return h.name }
func (h *HostFile) IsDevice() bool      { return false }
func (h *HostFile) Information() uint16 { return uint16(h.drive) }
func (h *HostFile) Close() error        { return h.f.Close() }

func (h *HostFile) Seek(pos uint32, whence int) (uint32, error) {
	n, err := h.f.Seek(int64(pos), whence)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

// DeviceFile is a character device opened as a file, e.g. CON
type DeviceFile struct {
	name string
	info uint16
}

func NewDeviceFile(name string, info uint16) *DeviceFile {
	return &DeviceFile{name: name, info: info | DevInfoDevice}
}

func (d *DeviceFile) RefCount() uint8     { return 1 }
func (d *DeviceFile) Flags() uint8        { return OpenReadWrite }
func (d *DeviceFile) Attr() uint8         { return 0 }
func (d *DeviceFile) Time() uint16        { return 0 }
func (d *DeviceFile) Date() uint16        { return 0 }
func (d *DeviceFile) Drive() uint8        { return 0xff }
func (d *DeviceFile) Name() string        { return d.name }
func (d *DeviceFile) IsDevice() bool      { return true }
func (d *DeviceFile) Information() uint16 { return d.info }
func (d *DeviceFile) Close() error        { return nil }

func (d *DeviceFile) Seek(pos uint32, whence int) (uint32, error) {
	if whence < io.SeekStart || whence > io.SeekEnd {
		return 0, fmt.Errorf("%s: invalid whence: %d", d.name, whence)
	}
	return 0, nil
}

// PackDOSTime returns t as DOS packed time and date words.  Dates before
// 1980 are clamped to 1980-01-01 00:00:00.
func PackDOSTime(t time.Time) (uint16, uint16) {
	if t.Year() < 1980 {
		return 0, 1<<5 | 1
	}
	pt := uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	pd := uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	return pt, pd
}
