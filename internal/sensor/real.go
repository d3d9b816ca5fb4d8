//go:build linux

package sensor

import (
	"fmt"
	"log"
	"sort"

	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/onewire/onewirereg"
	"periph.io/x/host/v3"

	"github.com/arjenlentz/HomeResourceMonitor/internal/logic"
)

// DS18B20 function commands.
const (
	cmdConvertT       = 0x44
	cmdReadScratchpad = 0xbe
)

// ds18b20Family is the low address byte identifying a DS18B20.
const ds18b20Family = 0x28

// OneWireBus drives real DS18B20 devices on the host's 1-wire bus.
type OneWireBus struct {
	bus  onewire.BusCloser
	devs [2]onewire.Dev
}

// NewOneWireBus opens the host's first 1-wire bus and binds the collector and
// vat channels to the given device addresses. If both addresses are zero the
// bus is searched and DS18B20 devices are assigned in ascending address
// order (collector first).
func NewOneWireBus(collectorAddr, vatAddr uint64) (*OneWireBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := onewirereg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open 1-wire bus: %w", err)
	}

	if collectorAddr == 0 && vatAddr == 0 {
		collectorAddr, vatAddr, err = discover(bus)
		if err != nil {
			bus.Close()
			return nil, err
		}
		log.Printf("sensor: discovered collector=%#016x vat=%#016x", collectorAddr, vatAddr)
	}

	b := &OneWireBus{bus: bus}
	b.devs[logic.ChannelCollector] = onewire.Dev{Bus: bus, Addr: onewire.Address(collectorAddr)}
	b.devs[logic.ChannelVat] = onewire.Dev{Bus: bus, Addr: onewire.Address(vatAddr)}
	return b, nil
}

// discover searches the bus for DS18B20 devices and returns the two lowest
// addresses in ascending order.
func discover(bus onewire.Bus) (uint64, uint64, error) {
	addrs, err := bus.Search(false)
	if err != nil {
		return 0, 0, fmt.Errorf("search 1-wire bus: %w", err)
	}

	var found []uint64
	for _, a := range addrs {
		if byte(a) == ds18b20Family {
			found = append(found, uint64(a))
		}
	}
	if len(found) < 2 {
		return 0, 0, fmt.Errorf("found %d DS18B20 devices, need 2", len(found))
	}
	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found[0], found[1], nil
}

// Convert starts a temperature conversion, holding a strong pullup so
// parasitically powered devices can complete it.
func (b *OneWireBus) Convert(ch logic.Channel) error {
	return b.devs[ch].TxPower([]byte{cmdConvertT}, nil)
}

// ReadScratchpad reads the device's 9-byte scratchpad.
func (b *OneWireBus) ReadScratchpad(ch logic.Channel) ([9]byte, error) {
	var frame [9]byte
	if err := b.devs[ch].Tx([]byte{cmdReadScratchpad}, frame[:]); err != nil {
		return frame, err
	}
	return frame, nil
}

// Close releases the 1-wire bus.
func (b *OneWireBus) Close() error {
	return b.bus.Close()
}
