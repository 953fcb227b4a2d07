package domain

import "encoding/json"

// JobStatus is the server-reported lifecycle label of an asynchronous job.
// The client never computes transitions itself; it only reads what the
// backend returns.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether polling should stop for this status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is the handle for a long-running backend task, created by a start call
// and mutated only by polling reads.
type Job struct {
	ID       string     `json:"id"`
	Status   JobStatus  `json:"status"`
	Progress int        `json:"progress,omitempty"`
	Output   string     `json:"output,omitempty"`
	Error    string     `json:"error,omitempty"`
	Result   *JobResult `json:"result,omitempty"`
}

// JobResult carries the typed fields the client acts on plus any extension
// data newer backends attach. Unknown keys survive a round trip through Extra
// instead of being dropped.
type JobResult struct {
	OutputFile string `json:"output_file,omitempty"`
	RowCount   int64  `json:"row_count,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (r *JobResult) UnmarshalJSON(data []byte) error {
	type known struct {
		OutputFile string `json:"output_file"`
		RowCount   int64  `json:"row_count"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "output_file")
	delete(raw, "row_count")

	r.OutputFile = k.OutputFile
	r.RowCount = k.RowCount
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

func (r JobResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+2)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.OutputFile != "" {
		out["output_file"] = r.OutputFile
	}
	if r.RowCount != 0 {
		out["row_count"] = r.RowCount
	}
	return json.Marshal(out)
}
