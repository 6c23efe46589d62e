package requirement

// Record is one segmented requirement. Records carry no identity beyond their
// position in the output sequence.
type Record struct {
	Requirement string `json:"requirement"`
	Description string `json:"description"`
}
