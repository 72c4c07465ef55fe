package article

import (
	"encoding/json"
	"testing"
)

func TestRawRecord_DecodeObjectShapedID(t *testing.T) {
	payload := `{"_id": {"$oid": "663a1f0c9b1e8a0012345678"}, "title": "X"}`

	var raw RawRecord
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if raw.ID.String() != "663a1f0c9b1e8a0012345678" {
		t.Errorf("Expected coerced oid string, got '%s'", raw.ID.String())
	}
}

func TestRawRecord_DecodeNumericID(t *testing.T) {
	var raw RawRecord
	if err := json.Unmarshal([]byte(`{"id": 42}`), &raw); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if raw.LegacyID.String() != "42" {
		t.Errorf("Expected '42', got '%s'", raw.LegacyID.String())
	}
}

func TestRawRecord_DecodeNullID(t *testing.T) {
	var raw RawRecord
	if err := json.Unmarshal([]byte(`{"_id": null}`), &raw); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if !raw.ID.IsZero() {
		t.Errorf("Expected zero id for null, got '%s'", raw.ID.String())
	}
}

func TestStringList_DecodeMixedEntries(t *testing.T) {
	var list StringList
	if err := json.Unmarshal([]byte(`["fed", null, "", 7, "rates"]`), &list); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	want := []string{"fed", "7", "rates"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d entries, got %v", len(want), list)
	}
	for i, entry := range want {
		if list[i] != entry {
			t.Errorf("Expected entry %d to be '%s', got '%s'", i, entry, list[i])
		}
	}
}

func TestStringList_DecodeSingleString(t *testing.T) {
	var list StringList
	if err := json.Unmarshal([]byte(`"Jane Doe"`), &list); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if len(list) != 1 || list[0] != "Jane Doe" {
		t.Errorf("Expected single-entry list, got %v", list)
	}
}

func TestFlexString_DecodeNumber(t *testing.T) {
	var raw RawRecord
	if err := json.Unmarshal([]byte(`{"publish_date": 20240501}`), &raw); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if raw.PublishDate.String() != "20240501" {
		t.Errorf("Expected numeric date coerced to string, got '%s'", raw.PublishDate.String())
	}
}

func TestResolveDBID_PrefersCanonicalID(t *testing.T) {
	raw := RawRecord{ID: NewFlexID("abc"), LegacyID: NewFlexID("def")}

	if got := ResolveDBID(raw); got != "abc" {
		t.Errorf("Expected '_id' to win, got '%s'", got)
	}
}

func TestResolveDBID_FallsBackToLegacyID(t *testing.T) {
	raw := RawRecord{LegacyID: NewFlexID("def")}

	if got := ResolveDBID(raw); got != "def" {
		t.Errorf("Expected legacy id fallback, got '%s'", got)
	}
}

func TestResolveDBID_AbsentDisablesFavorites(t *testing.T) {
	a := Normalize(RawRecord{Title: "X"}, 0)

	if a.DBID != "" {
		t.Errorf("Expected empty db id, got '%s'", a.DBID)
	}
	if a.CanFavorite() {
		t.Error("Article without db id must not be favoritable")
	}
}
