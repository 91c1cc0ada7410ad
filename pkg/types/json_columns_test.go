package types

import "testing"

func TestFlavorsValueAndScan(t *testing.T) {
	in := Flavors{{Name: "Mango", InStock: true}, {Name: "Mint", InStock: false}}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out Flavors
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 2 || out[1].Name != "Mint" || out[1].InStock {
		t.Fatalf("unexpected flavors %#v", out)
	}
	if got, ok := out.Find("Mango"); !ok || !got.InStock {
		t.Fatalf("expected Mango in stock, got %#v %v", got, ok)
	}
}

func TestEmptyListsPersistAsEmptyArrays(t *testing.T) {
	v, err := Variants(nil).Value()
	if err != nil || v != "[]" {
		t.Fatalf("expected [] for nil variants, got %v %v", v, err)
	}

	var out StringList
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", out)
	}
}

func TestScanRejectsUnsupportedTypes(t *testing.T) {
	var out Variants
	if err := out.Scan(42); err == nil {
		t.Fatal("expected error for int scan")
	}
}
