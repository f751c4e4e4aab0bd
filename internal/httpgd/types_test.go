package httpgd

import (
	"errors"
	"testing"
)

func TestDecodeState(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RemoteState
		wantErr bool
	}{
		{"valid", `{"upid": 3, "hsize": 4, "active": true}`, RemoteState{UpdateID: 3, PlotCount: 4, DeviceActive: true}, false},
		{"surrounding whitespace", "  {\"upid\":0,\"hsize\":0,\"active\":false}\n", RemoteState{}, false},
		{"extra fields ignored", `{"upid":1,"hsize":2,"active":false,"extra":"x"}`, RemoteState{UpdateID: 1, PlotCount: 2}, false},
		{"empty", ``, RemoteState{}, true},
		{"plain text", `ping`, RemoteState{}, true},
		{"array", `[1,2,3]`, RemoteState{}, true},
		{"broken json", `{"upid":`, RemoteState{}, true},
		{"missing field", `{"upid":1,"hsize":2}`, RemoteState{}, true},
		{"wrong type", `{"upid":"1","hsize":2,"active":true}`, RemoteState{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeState([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPush) {
					t.Fatalf("DecodeState(%q) error = %v, want ErrMalformedPush", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeState(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("DecodeState(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRemoteStateEqual(t *testing.T) {
	base := RemoteState{UpdateID: 1, PlotCount: 2, DeviceActive: true}
	if !base.Equal(base) {
		t.Fatalf("Equal(self) = false")
	}
	for _, other := range []RemoteState{
		{UpdateID: 2, PlotCount: 2, DeviceActive: true},
		{UpdateID: 1, PlotCount: 3, DeviceActive: true},
		{UpdateID: 1, PlotCount: 2, DeviceActive: false},
	} {
		if base.Equal(other) {
			t.Fatalf("Equal(%#v) = true, want false", other)
		}
	}
}
