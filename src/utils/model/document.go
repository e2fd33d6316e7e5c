package model

import (
	"encoding/json"
)

// Description document stored in the content store
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	CreatedBy   string `json:"createdBy"`
	Symbol      string `json:"symbol"`
}

// Parses a JSON object. Missing or null fields stay empty.
func (self *Document) UnmarshalJSON(data []byte) (err error) {
	var raw map[string]json.RawMessage
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return
	}
	if raw == nil {
		return ErrMalformedContent
	}

	fields := map[string]*string{
		"name":        &self.Name,
		"description": &self.Description,
		"image":       &self.Image,
		"createdBy":   &self.CreatedBy,
		"symbol":      &self.Symbol,
	}
	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var s *string
		if json.Unmarshal(value, &s) == nil && s != nil {
			*dst = *s
		}
	}
	return
}
