package vehicle

import "testing"

func TestFilterByPlate(t *testing.T) {
	list := []Vehicle{
		{ID: 1, CustomerID: 1, Number: "KA01AB1234"},
		{ID: 2, CustomerID: 2, Number: "MH12CD5678"},
		{ID: 3, CustomerID: 1, Number: "ka05xy0001"},
	}

	got := FilterByPlate(list, "ka0")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected match: %#v", got)
	}

	if got := FilterByPlate(list, "ZZ99"); len(got) != 0 {
		t.Fatalf("expected no match, got %#v", got)
	}

	if got := FilterByPlate(list, "  "); got != nil {
		t.Fatalf("expected nil for blank query, got %#v", got)
	}
}

func TestOwnerIDs(t *testing.T) {
	list := []Vehicle{
		{ID: 1, CustomerID: 5},
		{ID: 2, CustomerID: 3},
		{ID: 3, CustomerID: 5},
	}
	ids := OwnerIDs(list)
	if len(ids) != 2 || ids[0] != 5 || ids[1] != 3 {
		t.Fatalf("unexpected owner ids: %#v", ids)
	}
}

func TestGroupByOwner(t *testing.T) {
	list := []Vehicle{
		{ID: 1, CustomerID: 5},
		{ID: 2, CustomerID: 3},
		{ID: 3, CustomerID: 5},
	}
	groups := GroupByOwner(list)
	if len(groups[5]) != 2 || len(groups[3]) != 1 {
		t.Fatalf("unexpected groups: %#v", groups)
	}
}
