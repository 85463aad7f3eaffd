package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValue_UnmarshalKinds(t *testing.T) {
	cases := []struct {
		in   string
		kind ValueKind
		want float64
	}{
		{`21.5`, KindNumber, 21.5},
		{`1`, KindNumber, 1},
		{`-3e2`, KindNumber, -300},
		{`true`, KindBool, 1},
		{`false`, KindBool, 0},
		{`"42"`, KindString, 42},
		{`" 7.25 "`, KindString, 7.25},
		{`"Living Room"`, KindString, 0},
		{`"NaN"`, KindString, 0},
		{`null`, KindNull, 0},
		{`[1,2]`, KindOther, 0},
		{`{"a":1}`, KindOther, 0},
	}
	for _, tc := range cases {
		var v Value
		if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tc.in, err)
		}
		if v.Kind() != tc.kind {
			t.Errorf("Unmarshal(%s) kind: got %v, want %v", tc.in, v.Kind(), tc.kind)
		}
		if got := v.Float(); got != tc.want {
			t.Errorf("Unmarshal(%s).Float(): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	if v.Kind() != KindNull {
		t.Errorf("zero Value kind: got %v, want null", v.Kind())
	}
	if v.Float() != 0 {
		t.Errorf("zero Value Float: got %v, want 0", v.Float())
	}
}

func TestValue_MissingFieldIsNull(t *testing.T) {
	var c Characteristic
	if err := json.Unmarshal([]byte(`{"type":"On","format":"bool"}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Value.Kind() != KindNull {
		t.Errorf("value kind: got %v, want null", c.Value.Kind())
	}
}

func TestValue_MarshalKeepsShape(t *testing.T) {
	for _, in := range []string{`21.5`, `true`, `"on"`, `null`, `[1,2]`} {
		var v Value
		if err := json.Unmarshal([]byte(in), &v); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", in, err)
		}
		if string(out) != in {
			t.Errorf("Marshal: got %s, want %s", out, in)
		}
	}
}

func TestAccessory_Decode(t *testing.T) {
	body := `{
  "aid": 12, "iid": 8, "uuid": "00000043-0000-1000-8000-0026BB765291",
  "type": "Lightbulb", "humanType": "Lightbulb", "serviceName": "Kitchen Light",
  "uniqueId": "abc123",
  "serviceCharacteristics": [
    {"aid": 12, "iid": 10, "uuid": "00000025-0000-1000-8000-0026BB765291", "type": "On",
     "serviceType": "Lightbulb", "serviceName": "Kitchen Light", "description": "On",
     "value": 1, "format": "bool", "perms": ["ev","pr","pw"], "canRead": true, "canWrite": true, "ev": true},
    {"aid": 12, "iid": 11, "uuid": "00000008-0000-1000-8000-0026BB765291", "type": "Brightness",
     "serviceType": "Lightbulb", "serviceName": "Kitchen Light", "description": "Brightness",
     "value": 65, "format": "int", "perms": ["ev","pr","pw"], "canRead": true, "canWrite": true, "ev": true}
  ],
  "accessoryInformation": {"Manufacturer": "Acme"},
  "values": {"On": 1, "Brightness": 65},
  "instance": {"name": "Homebridge", "username": "0E:...", "ipAddress": "10.0.0.2", "port": 51826,
               "services": [], "connectionFailedCount": 0}
}`
	var a Accessory
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if a.UniqueID != "abc123" {
		t.Errorf("uniqueId: got %q", a.UniqueID)
	}
	if len(a.ServiceCharacteristics) != 2 {
		t.Fatalf("characteristics: got %d, want 2", len(a.ServiceCharacteristics))
	}
	if got := a.ServiceCharacteristics[1].Value.Float(); got != 65 {
		t.Errorf("brightness: got %v, want 65", got)
	}
	if a.Instance.Port != 51826 {
		t.Errorf("instance.port: got %d", a.Instance.Port)
	}
}

func TestCredential_ValidAt(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &Credential{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600, IssuedAt: issued}

	if !c.ValidAt(issued) {
		t.Error("ValidAt(issued): got false, want true")
	}
	if !c.ValidAt(issued.Add(3599 * time.Second)) {
		t.Error("ValidAt(+3599s): got false, want true")
	}
	if c.ValidAt(issued.Add(3600 * time.Second)) {
		t.Error("ValidAt(+3600s): got true, want false")
	}
	if got := c.ExpiresAt(); !got.Equal(issued.Add(time.Hour)) {
		t.Errorf("ExpiresAt: got %v", got)
	}

	var nilCred *Credential
	if nilCred.ValidAt(issued) {
		t.Error("nil credential must be invalid")
	}
	empty := &Credential{ExpiresIn: 3600, IssuedAt: issued}
	if empty.ValidAt(issued) {
		t.Error("empty token must be invalid")
	}
}

func TestCredential_HugeExpiresIn(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := &Credential{AccessToken: "tok", ExpiresIn: 1 << 62, IssuedAt: issued}

	if c.Lifetime() <= 0 {
		t.Fatalf("Lifetime: got %v, want positive", c.Lifetime())
	}
	if !c.ValidAt(issued.Add(24 * time.Hour)) {
		t.Error("ValidAt: got false, want true for a near-infinite lifetime")
	}
	if !c.ExpiresAt().After(issued) {
		t.Errorf("ExpiresAt: got %v, want after %v", c.ExpiresAt(), issued)
	}
}
