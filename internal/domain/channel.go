package domain

import (
	"encoding/json"
	"strings"
)

// Method is one of the fixed payment channels.
type Method string

const (
	MethodCash     Method = "CASH"
	MethodCard     Method = "CARD"
	MethodTransfer Method = "TRANSFER"
	MethodOther    Method = "OTHER"
)

// Valid reports whether m is a known fixed channel.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return true
	}
	return false
}

// Channel is a register that money moves through: either a fixed Method or a
// hotel-defined custom label. The zero value is the OTHER method.
type Channel struct {
	method Method
	custom string
}

// StandardChannel builds a channel from a fixed method.
func StandardChannel(m Method) Channel {
	return Channel{method: m}
}

// CustomChannelLabel builds a channel from a free-text label.
func CustomChannelLabel(label string) Channel {
	return Channel{custom: strings.TrimSpace(label)}
}

// ChannelFromParts rebuilds a channel from its stored columns. A non-empty
// label wins over the method.
func ChannelFromParts(method, label string) Channel {
	if strings.TrimSpace(label) != "" {
		return CustomChannelLabel(label)
	}
	return StandardChannel(Method(method))
}

// IsZero reports whether neither a method nor a label was given.
func (c Channel) IsZero() bool { return c.method == "" && c.custom == "" }

// IsCustom reports whether the channel carries a custom label.
func (c Channel) IsCustom() bool { return c.custom != "" }

// Method returns the fixed method, or OTHER for custom and zero channels.
func (c Channel) Method() Method {
	if c.custom != "" || c.method == "" {
		return MethodOther
	}
	return c.method
}

// CustomLabel returns the custom label, empty for standard channels.
func (c Channel) CustomLabel() string { return c.custom }

// Label is the grouping key used in reports.
func (c Channel) Label() string {
	if c.custom != "" {
		return c.custom
	}
	return string(c.Method())
}

// Validate rejects unknown fixed methods.
func (c Channel) Validate() error {
	if c.custom == "" && c.method != "" && !c.method.Valid() {
		return invalidInput("unknown payment method " + string(c.method))
	}
	return nil
}

func (c Channel) String() string { return c.Label() }

type channelJSON struct {
	Method Method `json:"method,omitempty"`
	Custom string `json:"custom,omitempty"`
}

// MarshalJSON encodes the channel as a tagged object.
func (c Channel) MarshalJSON() ([]byte, error) {
	if c.custom != "" {
		return json.Marshal(channelJSON{Custom: c.custom})
	}
	return json.Marshal(channelJSON{Method: c.Method()})
}

// UnmarshalJSON decodes the tagged object form.
func (c *Channel) UnmarshalJSON(b []byte) error {
	var v channelJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = ChannelFromParts(string(v.Method), v.Custom)
	return nil
}
