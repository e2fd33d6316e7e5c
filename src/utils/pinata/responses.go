package pinata

type PinResponse struct {
	IpfsHash    string `json:"IpfsHash"`
	PinSize     int64  `json:"PinSize"`
	Timestamp   string `json:"Timestamp"`
	IsDuplicate bool   `json:"isDuplicate"`
}

type metadata struct {
	Name string `json:"name,omitempty"`
}

type options struct {
	CidVersion int `json:"cidVersion"`
}

type pinJSONRequest struct {
	PinataContent  any      `json:"pinataContent"`
	PinataMetadata metadata `json:"pinataMetadata"`
	PinataOptions  options  `json:"pinataOptions"`
}
