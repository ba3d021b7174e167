package notifications

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Payload covers the fields this service reads from the raw YAML
// notification text. ESI encodes timestamps either as 100ns ticks
// relative to the notification timestamp (timeLeft) or as absolute
// Windows filetimes (readyTime, decloakTime, reinforceExitTime).
type Payload struct {
	StructureID       int64  `yaml:"structureID"`
	SolarSystemID     int64  `yaml:"solarsystemID"`
	MoonID            int64  `yaml:"moonID"`
	PlanetID          int64  `yaml:"planetID"`
	StructureName     string `yaml:"structureName"`
	StructureTypeID   int64  `yaml:"structureTypeID"`
	TimeLeft          int64  `yaml:"timeLeft"`
	ReadyTime         int64  `yaml:"readyTime"`
	AutoTime          int64  `yaml:"autoTime"`
	DecloakTime       int64  `yaml:"decloakTime"`
	ReinforceExitTime int64  `yaml:"reinforceExitTime"`
}

func ParsePayload(text string) (*Payload, error) {
	var p Payload
	if err := yaml.Unmarshal([]byte(text), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReadyAt is the extraction ready time, or zero when absent.
func (p *Payload) ReadyAt() time.Time { return fromFiletime(p.ReadyTime) }

// ExitAt is the reinforcement exit time, or zero when absent.
func (p *Payload) ExitAt() time.Time { return fromFiletime(p.ReinforceExitTime) }

// DecloakAt is the sovereignty node decloak time, or zero when absent.
func (p *Payload) DecloakAt() time.Time { return fromFiletime(p.DecloakTime) }

// RemainingAfter adds the payload's relative timeLeft ticks to a base
// timestamp.
func (p *Payload) RemainingAfter(base time.Time) time.Time {
	if p.TimeLeft == 0 {
		return time.Time{}
	}
	return base.Add(ticksDuration(p.TimeLeft))
}

// filetime epoch offset to Unix in 100ns ticks
const filetimeEpochTicks = 116444736000000000

// fromFiletime converts a Windows filetime to UTC time. Zero maps to
// the zero time.
func fromFiletime(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	unixTicks := ticks - filetimeEpochTicks
	return time.Unix(unixTicks/10_000_000, (unixTicks%10_000_000)*100).UTC()
}

// ticksDuration converts a 100ns tick count to a duration.
func ticksDuration(ticks int64) time.Duration {
	return time.Duration(ticks * 100)
}
