// Package profile loads scramble settings and simulated button presses
// from YAML.
//
//	start_delay: 5
//	channel_repeats: 3
//	power_repeats: 5
//	channel: down
//	presses:
//	  - at: 1s
//	  - at: 4.2s
//	    hold: 80ms
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sparques/irscram/internal/sim"
	"github.com/sparques/irscram/nec"
	"github.com/sparques/irscram/scramble"
)

// Profile is the on-disk form. Unset numeric fields take the firmware
// defaults.
type Profile struct {
	StartDelay     *uint8      `yaml:"start_delay"`
	ChannelRepeats *uint8      `yaml:"channel_repeats"`
	PowerRepeats   *uint16     `yaml:"power_repeats"`
	Channel        string      `yaml:"channel"`
	Presses        []sim.Press `yaml:"presses"`
}

// Load reads a profile from path.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode parses a single YAML document. Unknown keys are an error.
func Decode(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if _, err := p.Codes(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Params merges the profile over scramble.DefaultParams.
func (p *Profile) Params() scramble.Params {
	params := scramble.DefaultParams()
	if p.StartDelay != nil {
		params.StartDelay = *p.StartDelay
	}
	if p.ChannelRepeats != nil {
		params.ChannelRepeats = *p.ChannelRepeats
	}
	if p.PowerRepeats != nil {
		params.PowerRepeats = *p.PowerRepeats
	}
	return params
}

// Codes resolves the channel direction.
func (p *Profile) Codes() (scramble.Codes, error) {
	codes := scramble.DefaultCodes()
	switch p.Channel {
	case "", "up":
	case "down":
		codes.Channel = nec.ChannelDown
	default:
		return codes, fmt.Errorf("profile: channel must be up or down, got %q", p.Channel)
	}
	return codes, nil
}
