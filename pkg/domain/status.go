package domain

// StatusDocument is the execution status of a run.
//
// Any field may be nil while the workflow has not reported it.
type StatusDocument struct {
	Graphname     *string      `json:"graphname"`
	CompletedTime *string      `json:"completed_time"`
	Phase         *string      `json:"phase"`
	CreationTime  *string      `json:"creation_time"`
	Steps         []StepStatus `json:"steps"`
}

type StepStatus struct {
	Name         *string `json:"name"`
	State        *string `json:"state"`
	StartTime    *string `json:"start_time"`
	FinishTime   *string `json:"finish_time"`
	ErrorMessage *string `json:"error_message"`
}
