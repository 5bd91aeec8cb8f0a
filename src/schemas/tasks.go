package schemas

import "time"

type PriceRefreshResult struct {
	Requested int      `json:"requested"`
	Updated   int      `json:"updated"`
	Failed    []string `json:"failed"`
}

type TaskResponse struct {
	Task    string      `json:"task"`
	Started bool        `json:"started"`
	Result  interface{} `json:"result,omitempty"`
}

type ScheduleResponse struct {
	Task string    `json:"task"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
}
