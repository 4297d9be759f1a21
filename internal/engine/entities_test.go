package engine

import "testing"

// =============================================================================
// ENTITY EXTRACTION TESTS
// =============================================================================

func TestExtractEntities_OrderNumbers(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{"anchored with is", "My order number is ORD123456", []string{"ORD123456"}},
		{"anchored with hash", "purchase #ABC-98765 hasn't arrived", []string{"ABC-98765"}},
		{"anchored with colon", "transaction id: TXN000111", []string{"TXN000111"}},
		{"bare token is not an order", "the code is 123456", nil},
		{"short token ignored", "order 123", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEntities(tt.message)
			if len(got.OrderNumbers) != len(tt.want) {
				t.Fatalf("OrderNumbers = %v, want %v", got.OrderNumbers, tt.want)
			}
			for i := range tt.want {
				if got.OrderNumbers[i] != tt.want[i] {
					t.Errorf("OrderNumbers[%d] = %q, want %q", i, got.OrderNumbers[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractEntities_Contacts(t *testing.T) {
	got := ExtractEntities("reach me at jane.doe@example.com or 555-123-4567")

	if len(got.Emails) != 1 || got.Emails[0] != "jane.doe@example.com" {
		t.Errorf("Emails = %v, want [jane.doe@example.com]", got.Emails)
	}
	if len(got.Phones) != 1 || got.Phones[0] != "555-123-4567" {
		t.Errorf("Phones = %v, want [555-123-4567]", got.Phones)
	}
}

func TestExtractEntities_URLsAndAmounts(t *testing.T) {
	got := ExtractEntities("I paid $49.99 via https://shop.example.com/checkout and then 20 dollars more")

	if len(got.URLs) != 1 || got.URLs[0] != "https://shop.example.com/checkout" {
		t.Errorf("URLs = %v", got.URLs)
	}
	if len(got.Amounts) != 2 {
		t.Fatalf("Amounts = %v, want 2 matches", got.Amounts)
	}
	if got.Amounts[0] != "$49.99" {
		t.Errorf("Amounts[0] = %q, want $49.99", got.Amounts[0])
	}
}

func TestExtractEntities_Empty(t *testing.T) {
	got := ExtractEntities("nothing structured here")

	if len(got.Emails) != 0 || len(got.Phones) != 0 || len(got.OrderNumbers) != 0 ||
		len(got.URLs) != 0 || len(got.Amounts) != 0 {
		t.Errorf("expected no entities, got %+v", got)
	}
}
