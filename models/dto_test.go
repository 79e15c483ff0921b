package models

import (
	"encoding/json"
	"testing"
)

func TestCreateActivityRequestAcceptsNumericStrings(t *testing.T) {
	payload := `{
		"name": "Sunrise Kayaking",
		"price": "45.5",
		"date": "2027-06-15T08:00:00Z",
		"location": "Lake Bled",
		"minParticipants": "2",
		"maxParticipants": 8
	}`

	var req CreateActivityRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Price != 45.5 {
		t.Errorf("price = %v, want 45.5", req.Price)
	}
	if req.MinParticipants != 2 || req.MaxParticipants != 8 {
		t.Errorf("participants = %d/%d", req.MinParticipants, req.MaxParticipants)
	}
	if req.Duration != nil {
		t.Errorf("absent duration decoded as %v, want nil", *req.Duration)
	}
}

func TestFlexTypesRejectNonNumericStrings(t *testing.T) {
	var f FlexFloat
	if err := json.Unmarshal([]byte(`"abc"`), &f); err == nil {
		t.Error("FlexFloat accepted a non-numeric string")
	}
	var i FlexInt
	if err := json.Unmarshal([]byte(`"1.5"`), &i); err == nil {
		t.Error("FlexInt accepted a fractional string")
	}
}

func TestUpdateActivityRequestDistinguishesAbsentFromZero(t *testing.T) {
	var patch UpdateActivityRequest
	if err := json.Unmarshal([]byte(`{"price": 0}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if patch.Price == nil || *patch.Price != 0 {
		t.Errorf("explicit zero price decoded as %v", patch.Price)
	}
	if patch.Name != nil || patch.Duration != nil {
		t.Error("absent fields decoded as present")
	}
}
