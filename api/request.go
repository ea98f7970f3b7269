package api

// Vitals are the four clinical measurements of one patient.
type Vitals struct {
	Age           float64 `json:"age"`
	BloodPressure float64 `json:"bp"`
	Cholesterol   float64 `json:"chol"`
	MaxHeartRate  float64 `json:"heart_rate"`
}

type DiagnoseReq struct {
	RequestUuid string `json:"request_uuid"`

	Vitals Vitals `json:"vitals"`
	// Policy overrides the server's out-of-range policy when set
	// ("reject", "clamp" or "extrapolate").
	Policy string `json:"policy,omitempty"`

	ResSqsUrl string `json:"res_sqs_url"`
}
