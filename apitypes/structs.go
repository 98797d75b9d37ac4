package apitypes

// Shared API response structs used by both handlers and clients.

type ApiError struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type ScriptStartResponse struct {
	State  string `json:"state"`
	Digest string `json:"digest"`
}

type ScriptStopResponse struct {
	State string `json:"state"`
}

type ScriptStatusResponse struct {
	State     string `json:"state"`
	Path      string `json:"path,omitempty"`
	Digest    string `json:"digest,omitempty"`
	LastError string `json:"lastError,omitempty"`
	Frames    uint64 `json:"frames"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type PadObservedResponse struct {
	Slot         int    `json:"slot"`
	Button       uint16 `json:"button"`
	StickX       uint8  `json:"stickX"`
	StickY       uint8  `json:"stickY"`
	SubstickX    uint8  `json:"substickX"`
	SubstickY    uint8  `json:"substickY"`
	TriggerLeft  uint8  `json:"triggerLeft"`
	TriggerRight uint8  `json:"triggerRight"`
}

type NunchukObserved struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
	C bool  `json:"c"`
	Z bool  `json:"z"`
}

type ClassicObserved struct {
	Buttons uint16 `json:"buttons"`
	LX      uint8  `json:"lx"`
	LY      uint8  `json:"ly"`
	RX      uint8  `json:"rx"`
	RY      uint8  `json:"ry"`
}

type WiimoteObservedResponse struct {
	Slot    int             `json:"slot"`
	Buttons uint16          `json:"buttons"`
	Nunchuk NunchukObserved `json:"nunchuk"`
	Classic ClassicObserved `json:"classic"`
}
