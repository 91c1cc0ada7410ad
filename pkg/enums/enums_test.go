package enums

import "testing"

func TestParseProductCategoryAcceptsLabelsAndSlugs(t *testing.T) {
	cases := map[string]ProductCategory{
		"PODKITS":      ProductCategoryPodKits,
		"nic-salts":    ProductCategoryNicSalts,
		"NIC & SALTS":  ProductCategoryNicSalts,
		"accessories":  ProductCategoryAccessories,
		"Most Selling": ProductCategoryMostSelling,
		" disposable ": ProductCategoryDisposable,
	}
	for input, want := range cases {
		got, err := ParseProductCategory(input)
		if err != nil {
			t.Fatalf("ParseProductCategory(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseProductCategory(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := ParseProductCategory("e-liquids"); err == nil {
		t.Fatal("expected unknown category to fail")
	}
	if ProductCategoryNicSalts.Slug() != "nic-salts" {
		t.Fatalf("unexpected slug %q", ProductCategoryNicSalts.Slug())
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("canceled")
	if err != nil || got != OrderStatusCancelled {
		t.Fatalf("expected Cancelled, got %q %v", got, err)
	}
	got, err = ParseOrderStatus("shipped")
	if err != nil || got != OrderStatusShipped {
		t.Fatalf("expected Shipped, got %q %v", got, err)
	}
	if _, err := ParseOrderStatus("Lost"); err == nil {
		t.Fatal("expected invalid status error")
	}
	if OrderStatusCancelled.CountsTowardRevenue() {
		t.Fatal("cancelled orders must not count toward revenue")
	}
	if !OrderStatusPending.CountsTowardRevenue() {
		t.Fatal("pending orders count toward revenue")
	}
}

func TestParseReviewFilterDefaultsToAll(t *testing.T) {
	got, err := ParseReviewFilter("")
	if err != nil || got != ReviewFilterAll {
		t.Fatalf("expected all, got %q %v", got, err)
	}
	if _, err := ParseReviewFilter("bots"); err == nil {
		t.Fatal("expected invalid filter error")
	}
}

func TestMediaKindFolder(t *testing.T) {
	if MediaKindBanner.Folder() != "banners" {
		t.Fatalf("unexpected folder %q", MediaKindBanner.Folder())
	}
	if _, err := ParseMediaKind("pdf"); err == nil {
		t.Fatal("expected pdf to be rejected")
	}
}

func TestParseMemberIsExact(t *testing.T) {
	if got, err := ParseOutboxEventType("order_created"); err != nil || got != EventOrderCreated {
		t.Fatalf("expected order_created, got %q %v", got, err)
	}
	_, err := ParseUserRole("Admin")
	if err == nil || err.Error() != `invalid user role "Admin"` {
		t.Fatalf("expected case-sensitive rejection, got %v", err)
	}
	if !NotificationTypeSystem.IsValid() || NotificationType("sms").IsValid() {
		t.Fatal("unexpected notification type validity")
	}
}
