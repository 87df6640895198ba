package pricelist

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Name,Unit,Cost,Trim %,Yield %,Category,Supplier",
		"Shallots,kg,$3.50,15,95,Produce,Greenline",
		"Double Cream,litres,4.80,,,Dairy,",
		"Takeaway Box,pcs,0.35,N/A,,Consumables,PackRight",
		"Saffron,pinch,12,,,,",
		",kg,1,,,,",
		"",
	}, "\n")

	list, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(list.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(list.Entries))
	}

	shallots := list.Entries[0]
	if shallots.Name != "Shallots" || shallots.Unit != "kg" || shallots.Cost != 3.5 {
		t.Fatalf("shallots = %+v", shallots)
	}
	if shallots.TrimPercent == nil || *shallots.TrimPercent != 15 {
		t.Fatalf("shallots trim = %v", shallots.TrimPercent)
	}
	if shallots.YieldPercent == nil || *shallots.YieldPercent != 95 {
		t.Fatalf("shallots yield = %v", shallots.YieldPercent)
	}

	cream := list.Entries[1]
	if cream.Unit != "l" || cream.TrimPercent != nil || cream.YieldPercent != nil || cream.Supplier != "" {
		t.Fatalf("cream = %+v", cream)
	}
	if box := list.Entries[2]; box.Unit != "each" || box.Category != "Consumables" {
		t.Fatalf("box = %+v", box)
	}

	if len(list.Issues) != 2 {
		t.Fatalf("Issues = %v, want 2", list.Issues)
	}
	if list.Issues[0].Line != 5 || !strings.Contains(list.Issues[0].Reason, "unknown unit") {
		t.Fatalf("first issue = %v", list.Issues[0])
	}
}

func TestParseCSVRequiresColumns(t *testing.T) {
	t.Parallel()

	_, err := ParseCSV(strings.NewReader("ingredient,price\nFlour,2\n"))
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("ParseCSV() error = %v, want ErrMissingColumns", err)
	}

	_, err = ParseCSV(strings.NewReader(""))
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("ParseCSV(empty) error = %v, want ErrEmpty", err)
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	t.Parallel()

	list, err := ParseCSV(strings.NewReader("Ingredient,UOM,Unit Cost,Waste\nPlain Flour,kg,2.00,10\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	entry := list.Entries[0]
	if entry.Name != "Plain Flour" || entry.Cost != 2 || entry.TrimPercent == nil || *entry.TrimPercent != 10 {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestParseText(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"Greenline Produce - Weekly Prices",
		"Shallots ........ 3.50 / kg",
		"Double Cream  $4.80/l",
		"Free Range Eggs 4,20 / dozen",
		"Truffle Dust 9.00 / sprinkle",
		"Delivery Monday",
	}, "\n")

	list, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}

	want := []Entry{
		{Name: "Shallots", Unit: "kg", Cost: 3.5},
		{Name: "Double Cream", Unit: "l", Cost: 4.8},
		{Name: "Free Range Eggs", Unit: "dozen", Cost: 4.2},
	}
	if len(list.Entries) != len(want) {
		t.Fatalf("Entries = %+v", list.Entries)
	}
	for i, entry := range list.Entries {
		if entry.Name != want[i].Name || entry.Unit != want[i].Unit || entry.Cost != want[i].Cost {
			t.Fatalf("Entries[%d] = %+v, want %+v", i, entry, want[i])
		}
	}
	if len(list.Issues) != 1 || list.Issues[0].Line != 5 {
		t.Fatalf("Issues = %v", list.Issues)
	}
}

func TestParseDispatchesByMime(t *testing.T) {
	t.Parallel()

	list, err := Parse([]byte("name,unit,cost\nFlour,kg,2\n"), "text/csv")
	if err != nil || len(list.Entries) != 1 {
		t.Fatalf("Parse(csv) = %+v, %v", list, err)
	}

	list, err = Parse([]byte("Flour 2.00 / kg\n"), "text/plain")
	if err != nil || len(list.Entries) != 1 {
		t.Fatalf("Parse(text) = %+v, %v", list, err)
	}

	if _, err := Parse([]byte("not a pdf"), "application/pdf"); err == nil {
		t.Fatal("expected error for invalid pdf")
	}

	if _, err := Parse([]byte("nothing priced here"), "text/plain"); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Parse(no prices) error = %v, want ErrEmpty", err)
	}
}

func TestMimeTypeFromName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"prices.CSV":     "text/csv",
		"greenline.pdf":  "application/pdf",
		"notes.txt":      "text/plain",
		"prices.numbers": "application/octet-stream",
	}
	for name, want := range cases {
		if got := MimeTypeFromName(name); got != want {
			t.Fatalf("MimeTypeFromName(%q) = %q, want %q", name, got, want)
		}
	}
}
