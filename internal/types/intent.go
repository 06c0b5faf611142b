package types

import "github.com/moznion/go-optional"

type Intent string

const (
	IntentHold  Intent = "HOLD"
	IntentEnter Intent = "ENTER"
	IntentExit  Intent = "EXIT"
)

// Decision is what a policy wants to do on the current bar.
type Decision struct {
	Intent Intent `yaml:"intent" json:"intent"`
	// Size is the requested quantity for ENTER. EXIT always liquidates the whole position.
	Size   float64 `yaml:"size" json:"size"`
	Reason string  `yaml:"reason" json:"reason"`
	// HighWaterMark is set when the policy wants the lifecycle to raise the
	// position's high-water mark to this price.
	HighWaterMark optional.Option[float64] `yaml:"high_water_mark" json:"high_water_mark"`
	// Status is a rendered gauge line, only filled in verbose runs.
	Status string `yaml:"status,omitempty" json:"status,omitempty"`
}

// Hold returns a HOLD decision with the given reason.
func Hold(reason string) Decision {
	return Decision{Intent: IntentHold, Reason: reason}
}

// Enter returns an ENTER decision for size units.
func Enter(size float64, reason string) Decision {
	return Decision{Intent: IntentEnter, Size: size, Reason: reason}
}

// Exit returns an EXIT decision.
func Exit(reason string) Decision {
	return Decision{Intent: IntentExit, Reason: reason}
}

// WithHighWaterMark attaches a high-water mark update to the decision.
func (d Decision) WithHighWaterMark(price float64) Decision {
	d.HighWaterMark = optional.Some(price)

	return d
}
