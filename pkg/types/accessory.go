package types

import "encoding/json"

// Accessory is one device (physical or bridged) as returned by
// GET /api/accessories.
type Accessory struct {
	AID         uint32 `json:"aid"`
	IID         uint32 `json:"iid"`
	UUID        string `json:"uuid"`
	Type        string `json:"type"`
	HumanType   string `json:"humanType"`
	ServiceName string `json:"serviceName"`
	UniqueID    string `json:"uniqueId"`

	// ServiceCharacteristics keeps the order the hub reports them in.
	ServiceCharacteristics []Characteristic `json:"serviceCharacteristics"`

	AccessoryInformation map[string]any `json:"accessoryInformation,omitempty"`
	Values               map[string]any `json:"values,omitempty"`
	Instance             Instance       `json:"instance"`
}

// Characteristic is a single readable property of an accessory service,
// e.g. "On" of a "Lightbulb" or "CurrentTemperature" of a "TemperatureSensor".
type Characteristic struct {
	AID         uint32 `json:"aid"`
	IID         uint32 `json:"iid"`
	UUID        string `json:"uuid"`
	Type        string `json:"type"`
	ServiceType string `json:"serviceType"`
	ServiceName string `json:"serviceName"`
	Description string `json:"description"`
	// Format is the HAP value format: bool, int, float, string, uint8, ...
	Format string `json:"format"`
	Value  Value  `json:"value"`

	Perms    []string `json:"perms,omitempty"`
	CanRead  bool     `json:"canRead"`
	CanWrite bool     `json:"canWrite"`
	EV       bool     `json:"ev"`
}

// Instance identifies the Homebridge instance (child bridge or main bridge)
// that owns an accessory.
type Instance struct {
	Name                  string            `json:"name"`
	Username              string            `json:"username"`
	IPAddress             string            `json:"ipAddress"`
	Port                  uint16            `json:"port"`
	Services              []json.RawMessage `json:"services,omitempty"`
	ConnectionFailedCount uint16            `json:"connectionFailedCount"`
}
