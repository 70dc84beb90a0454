package models

import (
	"bytes"
	"encoding/json"
)

// SectionRef is a section reference that the API sends either populated
// (a full object) or as a bare id string.
type SectionRef struct {
	Section
}

// UnmarshalJSON accepts an object, a string id or null
func (r *SectionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = SectionRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = SectionRef{Section{ID: id}}
		return nil
	}
	return json.Unmarshal(data, &r.Section)
}

// UserRef is a user reference, populated or a bare id string.
type UserRef struct {
	User
}

// UnmarshalJSON accepts an object, a string id or null
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = UserRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = UserRef{User{ID: id}}
		return nil
	}
	return json.Unmarshal(data, &r.User)
}
