//go:build linux

// Package uinput creates a virtual input device through /dev/uinput and
// writes events to it. The snapped scroll stream is re-emitted through
// such a device so downstream consumers see an ordinary wheel.
package uinput

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/snapscroll/snapscroll/input"
)

// uinput ioctls and limits (linux/uinput.h).
const (
	devCreate  = 0x5501
	devDestroy = 0x5502
	setEvBit   = 0x40045564
	setKeyBit  = 0x40045565
	setRelBit  = 0x40045566

	maxNameSize = 80
	absSize     = 64
	busVirtual  = 0x06
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev mirrors struct uinput_user_dev (legacy setup API).
type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	AbsMax     [absSize]int32
	AbsMin     [absSize]int32
	AbsFuzz    [absSize]int32
	AbsFlat    [absSize]int32
}

// Device is a created virtual device. Writes are not synchronized; one
// goroutine owns the sink.
type Device struct {
	f *os.File
}

// MouseButtons are the key codes enabled for button passthrough
// (BTN_LEFT through BTN_TASK).
var MouseButtons = []uint16{0x110, 0x111, 0x112, 0x113, 0x114, 0x115, 0x116, 0x117}

// Create registers a virtual device advertising the given relative and
// key codes (plus EV_SYN, which the kernel provides implicitly).
func Create(name string, relCodes, keyCodes []uint16) (*Device, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	fd := f.Fd()
	if err := ioctlInt(fd, setEvBit, uintptr(input.EvRel)); err != nil {
		f.Close()
		return nil, fmt.Errorf("enable EV_REL: %w", err)
	}
	for _, code := range relCodes {
		if err := ioctlInt(fd, setRelBit, uintptr(code)); err != nil {
			f.Close()
			return nil, fmt.Errorf("enable %s: %w", input.CodeName(code), err)
		}
	}
	if len(keyCodes) > 0 {
		if err := ioctlInt(fd, setEvBit, uintptr(input.EvKey)); err != nil {
			f.Close()
			return nil, fmt.Errorf("enable EV_KEY: %w", err)
		}
		for _, code := range keyCodes {
			if err := ioctlInt(fd, setKeyBit, uintptr(code)); err != nil {
				f.Close()
				return nil, fmt.Errorf("enable key %#x: %w", code, err)
			}
		}
	}

	var ud userDev
	copy(ud.Name[:maxNameSize-1], name)
	ud.ID = inputID{Bustype: busVirtual, Vendor: 0x1d6b, Product: 0x0104, Version: 1}

	buf := (*[unsafe.Sizeof(ud)]byte)(unsafe.Pointer(&ud))[:]
	if _, err := f.Write(buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write device setup: %w", err)
	}
	if err := ioctlInt(fd, devCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("create device: %w", err)
	}
	return &Device{f: f}, nil
}

// WriteEvent emits one event, followed by a SYN_REPORT when the event's
// Sync flag is set.
func (d *Device) WriteEvent(ev input.Event) error {
	if _, err := d.f.Write(input.MarshalRaw(ev)); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if ev.Sync {
		return d.Sync()
	}
	return nil
}

// Sync emits a SYN_REPORT, flushing the current report to consumers.
func (d *Device) Sync() error {
	syn := input.Event{Type: input.EvSyn, Code: input.SynReport}
	if _, err := d.f.Write(input.MarshalRaw(syn)); err != nil {
		return fmt.Errorf("write syn: %w", err)
	}
	return nil
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	_ = ioctlInt(d.f.Fd(), devDestroy, 0)
	return d.f.Close()
}

func ioctlInt(fd uintptr, req uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
