//go:build linux

// Package evdev reads raw events from Linux input event devices
// (/dev/input/event*), optionally grabbing the device so the unfiltered
// events are not delivered to anyone else.
package evdev

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/snapscroll/snapscroll/input"
)

// ioctl request encoding (Linux _IOC macro).
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// EVIOCGNAME(len) = _IOC(_IOC_READ, 'E', 0x06, len)
func eviocgname(size uint32) uintptr { return ioc(iocRead, 'E', 0x06, size) }

// EVIOCGRAB = _IOW('E', 0x90, int)
func eviocgrab() uintptr { return ioc(iocWrite, 'E', 0x90, uint32(unsafe.Sizeof(int32(0)))) }

// Device is an open event device. Not safe for concurrent reads.
type Device struct {
	f       *os.File
	name    string
	grabbed bool

	buf     [16 * input.RawEventSize]byte
	pending []byte
}

// Open opens an event device. With grab set, the device is grabbed
// exclusively so the raw events only reach this process.
func Open(path string, grab bool) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d := &Device{f: f}
	d.name = deviceName(int(f.Fd()))

	if grab {
		if err := grabFd(int(f.Fd()), 1); err != nil {
			f.Close()
			return nil, fmt.Errorf("grab %s: %w", path, err)
		}
		d.grabbed = true
	}
	return d, nil
}

// Name returns the kernel-reported device name, or "" if unavailable.
func (d *Device) Name() string { return d.name }

// Path returns the device node path.
func (d *Device) Path() string { return d.f.Name() }

// Close releases the grab (if held) and closes the device.
func (d *Device) Close() error {
	if d.grabbed {
		_ = grabFd(int(d.f.Fd()), 0)
		d.grabbed = false
	}
	return d.f.Close()
}

// ReadEvent blocks until the next event is available. Reads are buffered;
// a single kernel read may return several events.
func (d *Device) ReadEvent() (input.Event, error) {
	for len(d.pending) < input.RawEventSize {
		n, err := d.f.Read(d.buf[:])
		if err != nil {
			return input.Event{}, err
		}
		d.pending = append(d.pending, d.buf[:n]...)
	}
	ev, err := input.UnmarshalRaw(d.pending)
	d.pending = d.pending[input.RawEventSize:]
	return ev, err
}

func grabFd(fd int, value uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgrab(), value)
	if errno != 0 {
		return errno
	}
	return nil
}

func deviceName(fd int) string {
	var name [256]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), eviocgname(uint32(len(name))), uintptr(unsafe.Pointer(&name[0])))
	if errno != 0 {
		return ""
	}
	s := string(name[:])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// Info describes one enumerated event device.
type Info struct {
	Path string
	Name string
}

// Enumerate lists the event devices under /dev/input. Devices that cannot
// be opened (permissions) are reported with an empty name rather than
// dropped, so the listing still shows what exists.
func Enumerate() ([]Info, error) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	infos := make([]Info, 0, len(paths))
	for _, p := range paths {
		info := Info{Path: p}
		if f, err := os.OpenFile(p, os.O_RDONLY, 0); err == nil {
			info.Name = deviceName(int(f.Fd()))
			f.Close()
		}
		infos = append(infos, info)
	}
	return infos, nil
}
