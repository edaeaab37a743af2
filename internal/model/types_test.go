package model

import (
	"encoding/json"
	"testing"
)

func TestFilterTags(t *testing.T) {
	tags := []Tag{
		{Key: "team", Value: "storage"},
		{Key: "empty-value", Value: ""},
		{Key: "", Value: "empty-key"},
		{Key: "env", Value: "prod"},
	}
	got := FilterTags(tags)
	if len(got) != 2 {
		t.Fatalf("FilterTags = %+v, want 2 complete tags", got)
	}
	if got[0].Key != "team" || got[1].Key != "env" {
		t.Errorf("FilterTags = %+v, order not preserved", got)
	}
}

func TestFilterTagsEmptyInput(t *testing.T) {
	if got := FilterTags(nil); got == nil || len(got) != 0 {
		t.Errorf("FilterTags(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestRecommendationJSON(t *testing.T) {
	data, err := json.Marshal(Recommendation{Type: KindWarning, Message: "Slack space is high (~90%). Consider resizing."})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"warning","message":"Slack space is high (~90%). Consider resizing."}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestTagJSONUsesUppercaseKeys(t *testing.T) {
	// The report keeps the control plane's Key/Value casing.
	data, err := json.Marshal(Tag{Key: "team", Value: "storage"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Key":"team","Value":"storage"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
