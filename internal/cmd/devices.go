package cmd

import (
	"fmt"

	"github.com/snapscroll/snapscroll/evdev"
)

// Devices lists the available input event devices so the user can pick
// one to filter.
type Devices struct{}

func (d *Devices) Run() error {
	infos, err := evdev.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("no input devices found (are you in the 'input' group?)")
		return nil
	}
	for _, info := range infos {
		name := info.Name
		if name == "" {
			name = "(no access)"
		}
		fmt.Printf("%-24s %s\n", info.Path, name)
	}
	return nil
}
