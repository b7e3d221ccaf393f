package neo

import "encoding/json"

// VM execution states.
const (
	VMStateHalt  = "HALT"
	VMStateFault = "FAULT"
)

// Execution is one entry of an application log.
type Execution struct {
	Trigger     string `json:"trigger,omitempty"`
	VMState     string `json:"vmstate"`
	Exception   string `json:"exception,omitempty"`
	GasConsumed string `json:"gasconsumed,omitempty"`
}

// UnmarshalJSON accepts both "vmstate" (RPC node, NeoLine, O3) and
// "vmState" (NeoDapi based wallets).
func (e *Execution) UnmarshalJSON(data []byte) error {
	var raw struct {
		Trigger     string  `json:"trigger"`
		VMState     string  `json:"vmstate"`
		VMStateAlt  string  `json:"vmState"`
		Exception   *string `json:"exception"`
		GasConsumed string  `json:"gasconsumed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Trigger = raw.Trigger
	e.VMState = raw.VMState
	if e.VMState == "" {
		e.VMState = raw.VMStateAlt
	}
	if raw.Exception != nil {
		e.Exception = *raw.Exception
	}
	e.GasConsumed = raw.GasConsumed
	return nil
}

// ApplicationLog is the execution record of a transaction.
type ApplicationLog struct {
	TxID       string      `json:"txid"`
	Executions []Execution `json:"executions"`
}

// Verdict classifies a log: ok is false while there is no execution data
// yet, otherwise status is success for HALT and error for anything else.
func (l *ApplicationLog) Verdict() (status Status, ok bool) {
	if l == nil || len(l.Executions) == 0 || l.Executions[0].VMState == "" {
		return StatusPending, false
	}
	if l.Executions[0].VMState == VMStateHalt {
		return StatusSuccess, true
	}
	return StatusError, true
}
