package neo

// Status is the tri-state result surfaced for a submitted transaction.
type Status string

// Transaction statuses.
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FailedTxID is what a wallet call resolves to when no transaction id could
// be obtained. It is never a valid transaction id.
const FailedTxID = "-1"

// Outcome is the result of a submit-and-confirm cycle.
//
// Status error with an empty TxID means submission itself failed; with a
// TxID it means the transaction executed and faulted.
type Outcome struct {
	Status Status `json:"status"`
	TxID   string `json:"txid,omitempty"`
	// Err is the cause of a failed submission. It is informational.
	Err error `json:"-"`
}

// Failed builds a submission-failure outcome.
func Failed(err error) Outcome {
	return Outcome{Status: StatusError, Err: err}
}

// Submitted reports whether the provider returned a transaction id.
func (o Outcome) Submitted() bool {
	return o.TxID != "" && o.TxID != FailedTxID
}
