package types

import (
	"encoding/json"
	"testing"
)

type profilePatch struct {
	Username   *string        `json:"username"`
	ProfilePic NullableString `json:"profile_pic"`
}

func TestNullableStringPresence(t *testing.T) {
	var absent profilePatch
	if err := json.Unmarshal([]byte(`{"username":"ana"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.ProfilePic.Set {
		t.Fatal("absent field should not be set")
	}

	var cleared profilePatch
	if err := json.Unmarshal([]byte(`{"profile_pic":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.ProfilePic.Set || cleared.ProfilePic.Value != nil {
		t.Fatalf("expected explicit null, got %+v", cleared.ProfilePic)
	}

	var updated profilePatch
	if err := json.Unmarshal([]byte(`{"profile_pic":"img/ana.png"}`), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !updated.ProfilePic.Set || *updated.ProfilePic.Value != "img/ana.png" {
		t.Fatalf("expected value, got %+v", updated.ProfilePic)
	}

	out, err := json.Marshal(cleared.ProfilePic)
	if err != nil || string(out) != "null" {
		t.Fatalf("expected null, got %s %v", out, err)
	}
}

func TestNullableStringRejectsNonString(t *testing.T) {
	var p profilePatch
	if err := json.Unmarshal([]byte(`{"profile_pic":12}`), &p); err == nil {
		t.Fatal("expected type error")
	}
}
