package servicerec

import "testing"

func TestCollapse(t *testing.T) {
	cases := []struct {
		alignment, balancing bool
		want                 Type
		ok                   bool
	}{
		{true, true, TypeOther, true},
		{true, false, TypeAlignment, true},
		{false, true, TypeBalancing, true},
		{false, false, "", false},
	}
	for _, c := range cases {
		got, ok := Collapse(c.alignment, c.balancing)
		if got != c.want || ok != c.ok {
			t.Fatalf("Collapse(%v, %v) = (%q, %v), want (%q, %v)",
				c.alignment, c.balancing, got, ok, c.want, c.ok)
		}
	}
}

func TestDecodeListEnvelopes(t *testing.T) {
	// 后端历史上出现过的四种包裹格式都要能解
	payloads := map[string]string{
		"bare":     `[{"id":1,"customer":2,"vehicle":3,"service_type":"alignment"}]`,
		"data":     `{"data":[{"id":1,"customer":2,"vehicle":3,"service_type":"alignment"}]}`,
		"results":  `{"results":[{"id":1,"customer":2,"vehicle":3,"service_type":"alignment"}]}`,
		"services": `{"services":[{"id":1,"customer":2,"vehicle":3,"service_type":"alignment"}]}`,
	}
	for name, payload := range payloads {
		got, err := DecodeList([]byte(payload))
		if err != nil {
			t.Fatalf("%s: DecodeList: %v", name, err)
		}
		if len(got) != 1 || got[0].ID != 1 || got[0].Type != TypeAlignment {
			t.Fatalf("%s: unexpected records: %#v", name, got)
		}
	}
}

func TestDecodeListEmptyAndInvalid(t *testing.T) {
	got, err := DecodeList(nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for empty payload, got %#v, %v", got, err)
	}

	if _, err := DecodeList([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected error for unrecognized payload")
	}
	if _, err := DecodeList([]byte(`{"other_key":[]}`)); err == nil {
		t.Fatalf("expected error when no known envelope key is present")
	}
}
